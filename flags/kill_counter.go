package flags

import (
	"soulmem/pointer"
)

// killCounterDecoder serves Dark Souls II, which keeps no general
// event flag container reachable from outside. What it does keep is a
// block of per-boss kill counters; ids under this rule are byte
// offsets into that block, listed in the config's bosses table.
type killCounterDecoder struct {
	counters pointer.Chain
}

func (d *killCounterDecoder) GetCount(id uint32) int32 {
	return d.counters.ReadINT32(int64(id))
}

func (d *killCounterDecoder) IsFlagSet(id uint32) bool {
	return d.GetCount(id) > 0
}
