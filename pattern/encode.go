package pattern

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"

	"soulmem/process"
)

// FromInteger builds an exact-match pattern for a little-endian
// integer of the given byte size (1, 2, 4 or 8).
func FromInteger(value int64, size uint) (process.AOB, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(value))

	switch size {
	case 1, 2, 4, 8:
		return exactAOB(buf[:size]), nil
	default:
		return process.AOB{}, fmt.Errorf("unsupported integer size %d, want 1, 2, 4 or 8", size)
	}
}

// FromFloat builds an exact-match pattern for the IEEE-754 encoding of
// value, 4 bytes when isFloat32 is set and 8 otherwise.
func FromFloat(value float64, isFloat32 bool) process.AOB {
	if isFloat32 {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(value)))
		return exactAOB(buf)
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(value))
	return exactAOB(buf)
}

// FromString builds an exact-match pattern for the bytes of value,
// UTF-16LE encoded when isUTF16 is set (the encoding Windows game
// binaries store most of their text in).
func FromString(value string, isUTF16 bool) (process.AOB, error) {
	if len(value) == 0 {
		return process.AOB{}, fmt.Errorf("empty string pattern")
	}

	if !isUTF16 {
		return exactAOB([]byte(value)), nil
	}

	units := utf16.Encode([]rune(value))
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	return exactAOB(buf), nil
}

func exactAOB(data []byte) process.AOB {
	pat := make([]byte, len(data))
	copy(pat, data)
	mask := make([]byte, len(data))
	for i := range mask {
		mask[i] = 0xFF
	}
	return process.AOB{Pattern: pat, Mask: mask}
}
