package flags

import (
	"soulmem/pointer"
	"soulmem/process"
)

// maxTreeDepth bounds the node walk. A corrupt or mid-update tree can
// point at itself or at unmapped memory where every read comes back
// zero, and an unbounded walk would never terminate.
const maxTreeDepth = 128

// binaryTreeDecoder reads flags stored in the balanced tree keyed by
// flag group that Elden Ring and Armored Core VI share. A query splits
// the id into a group key and a bit remainder, finds the group's node
// by lower-bound search and tests one bit of its storage block.
type binaryTreeDecoder struct {
	rd     process.TypedReader
	anchor pointer.Chain
	cfg    BinaryTreeConfig
}

func newBinaryTreeDecoder(mem process.MemoryReader, anchor pointer.Chain, cfg BinaryTreeConfig) *binaryTreeDecoder {
	return &binaryTreeDecoder{
		rd:     process.TypedReader{Mem: mem},
		anchor: anchor,
		cfg:    cfg,
	}
}

func (d *binaryTreeDecoder) IsFlagSet(id uint32) bool {
	divisor := d.anchor.ReadINT32(d.cfg.DivisorOffset)
	if divisor == 0 {
		return false
	}

	category := id / uint32(divisor)
	remainder := id - category*uint32(divisor)

	// current trails the last node whose key was not below category
	// while sub runs ahead; the byte at +0x19 marks the leaf sentinel.
	current := d.anchor.RebaseFromAddress(d.cfg.RootOffset)
	sub := current.RebaseFromAddress(0x8)

	for depth := 0; sub.ReadUINT8(0x19) == 0; depth++ {
		if depth >= maxTreeDepth {
			return false
		}
		if uint32(sub.ReadINT32(0x20)) < category {
			sub = sub.RebaseFromAddress(0x10)
		} else {
			current = sub
			sub = sub.RebaseFromAddress(0x0)
		}
	}

	if current.Resolve() == sub.Resolve() || category < uint32(current.ReadINT32(0x20)) {
		return false
	}

	node := current.Resolve()

	// The word at node+0x28 selects the storage encoding: 1 is an
	// indexed block under the shared base, 2 carries no storage,
	// anything else keeps the block address inline at node+0x30.
	var block int64
	switch readI32(d.rd, node.AddOffset(0x28)) {
	case 1:
		mult := int64(d.anchor.ReadINT32(d.cfg.MultOffset))
		elem := int64(readI32(d.rd, node.AddOffset(0x30)))
		block = mult*elem + d.anchor.ReadINT64(d.cfg.BaseAddrOffset)
	case 2:
		return false
	default:
		block = readI64(d.rd, node.AddOffset(0x30))
	}
	if block == 0 {
		return false
	}

	bit := 7 - (remainder & 7)
	mask := int32(1) << bit
	value := readI32(d.rd, process.ProcessMemoryAddress(block).AddOffset(int64(remainder>>3)))
	return value&mask != 0
}

func (d *binaryTreeDecoder) GetCount(id uint32) int32 {
	return boolCount(d.IsFlagSet(id))
}
