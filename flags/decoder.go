package flags

import (
	"soulmem/process"
)

// Decoders probe live memory that can change or vanish between any two
// reads. The helpers below flatten read errors into zero so the walk
// logic stays linear; a zero address or value always terminates the
// containing walk as "flag unset".

func readI32(rd process.TypedReader, addr process.ProcessMemoryAddress) int32 {
	v, err := rd.ReadINT32(addr)
	if err != nil {
		return 0
	}
	return v
}

func readI64(rd process.TypedReader, addr process.ProcessMemoryAddress) int64 {
	v, err := rd.ReadINT64(addr)
	if err != nil {
		return 0
	}
	return v
}
