package flags

import (
	"fmt"
	"strconv"

	"soulmem/pointer"
	"soulmem/process"
)

// offsetTableDecoder reads flags from the flat array Dark Souls keeps:
// the decimal digits of the id select entries in static group and area
// tables and the rest is plain offset arithmetic into one block.
type offsetTableDecoder struct {
	rd     process.TypedReader
	anchor pointer.Chain
	cfg    OffsetTableConfig
}

func newOffsetTableDecoder(mem process.MemoryReader, anchor pointer.Chain, cfg OffsetTableConfig) *offsetTableDecoder {
	return &offsetTableDecoder{
		rd:     process.TypedReader{Mem: mem},
		anchor: anchor,
		cfg:    cfg,
	}
}

// IsFlagSet splits the zero-padded eight digit id as G AAA S NNN:
// group digit, area triple, section digit, bit number.
func (d *offsetTableDecoder) IsFlagSet(id uint32) bool {
	idStr := fmt.Sprintf("%08d", id)
	if len(idStr) != 8 {
		return false
	}

	groupOffset, ok := d.cfg.Groups[idStr[0:1]]
	if !ok {
		return false
	}
	areaIndex, ok := d.cfg.Areas[idStr[1:4]]
	if !ok {
		return false
	}
	section, err := strconv.Atoi(idStr[4:5])
	if err != nil {
		return false
	}
	number, err := strconv.Atoi(idStr[5:8])
	if err != nil {
		return false
	}

	offset := groupOffset
	offset += areaIndex * 0x500
	offset += int64(section) * 128
	offset += int64((number - number%32) / 8)

	mask := uint32(0x80000000) >> uint(number%32)

	base := d.anchor.Resolve()
	if base == 0 {
		return false
	}

	value, err := d.rd.ReadUINT32(base.AddOffset(offset))
	if err != nil {
		return false
	}
	return value&mask != 0
}

func (d *offsetTableDecoder) GetCount(id uint32) int32 {
	return boolCount(d.IsFlagSet(id))
}
