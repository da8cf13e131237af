package flags

import (
	"soulmem/pointer"
	"soulmem/process"
)

// categoryDecoder reads flags stored as bit blocks behind a group
// table, where the block index (the "category") for world flags comes
// from walking the live world info list. Dark Souls III and Sekiro
// lay flags out this way, differing only in strides and in how the
// world owner hangs off the field area.
type categoryDecoder struct {
	mem       process.MemoryReader
	is64      bool
	man       pointer.Chain
	fieldArea pointer.Chain
	cfg       CategoryConfig
}

func newCategoryDecoder(mem process.MemoryReader, is64 bool, man, fieldArea pointer.Chain, cfg CategoryConfig) *categoryDecoder {
	return &categoryDecoder{
		mem:       mem,
		is64:      is64,
		man:       man,
		fieldArea: fieldArea,
		cfg:       cfg,
	}
}

// IsFlagSet decomposes the id digit by digit: the first digit picks a
// group table entry, digits two and three pick an area, digit four a
// sub-area, digit five a section, and the last three the bit inside
// the section.
func (d *categoryDecoder) IsFlagSet(id uint32) bool {
	group := int64((id / 10_000_000) % 10)
	area := int32((id / 100_000) % 100)
	subArea := int32((id / 10_000) % 10)
	section := int64((id / 1_000) % 10)

	category := d.worldBlockCategory(area, subArea)

	groupAddr := d.man.Append(d.cfg.GroupTableOffset, group*d.cfg.GroupStride, 0x0).Resolve()
	if groupAddr == 0 || category < 0 {
		return false
	}

	resultBase := (section << 4) + int64(groupAddr) + int64(category)*d.cfg.CategoryMultiplier
	result := pointer.New(d.mem, d.is64, process.ProcessMemoryAddress(resultBase), 0x0)
	if result.IsNull() {
		return false
	}

	local := id % 1000
	value := result.ReadUINT32(int64((local >> 5) * 4))
	bit := 0x1f - (local & 0x1f)
	return value&(uint32(1)<<bit) != 0
}

func (d *categoryDecoder) GetCount(id uint32) int32 {
	return boolCount(d.IsFlagSet(id))
}

// worldBlockCategory finds the block index for an area/sub-area pair
// in the world info list. Areas 90+ and the all-zero pair live in
// block zero without a lookup; anything the walk cannot match stays -1
// and the caller treats the flag as unset.
func (d *categoryDecoder) worldBlockCategory(area, subArea int32) int32 {
	if area >= 90 || area+subArea == 0 {
		return 0
	}

	if d.fieldArea.IsNull() {
		return -1
	}

	category := int32(-1)

	owner := d.fieldArea.Append(d.cfg.WorldOwnerOffsets...).RebaseFromAddress()
	size := owner.ReadINT32(0x8)
	vector := owner.Append(0x10)

	for i := int64(0); i < int64(size); i++ {
		entryArea := int32(vector.ReadUINT8(i*d.cfg.WorldInfoStride + 0xb))
		if entryArea != area {
			continue
		}

		count := vector.ReadUINT8(i*d.cfg.WorldInfoStride + 0x20)
		index := int64(0)
		found := false
		var blocks pointer.Chain

		if count >= 1 {
			for {
				blocks = vector.RebaseFromAddress(i*d.cfg.WorldInfoStride + 0x28)
				packed := blocks.ReadINT32(index*d.cfg.WorldBlockStride + 0x8)

				// The block header packs the area in the top byte and
				// the sub-area below it.
				if (packed>>0x10)&0xff == subArea && packed>>0x18 == area {
					found = true
					break
				}

				index++
				if int64(count) <= index {
					break
				}
			}
		}

		if found {
			category = blocks.ReadINT32(index*d.cfg.WorldBlockStride + 0x20)
			break
		}
	}

	if category >= 0 {
		category++
	}
	return category
}
