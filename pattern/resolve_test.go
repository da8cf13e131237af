package pattern

import (
	"encoding/binary"
	"testing"

	"soulmem/process"
)

func TestResolveRIPRelativePositive(t *testing.T) {
	const base = process.ProcessMemoryAddress(0x140000000)
	data := make([]byte, 0x100)

	// mov rcx, [rip+0x1234] style encoding: displacement at +3, length 7.
	binary.LittleEndian.PutUint32(data[0x10+3:], 0x1234)
	mem := &fakeMemory{base: base, data: data}

	got, err := ResolveRIPRelative(mem, base+0x10, 3, 7)
	if err != nil {
		t.Fatal(err)
	}
	want := base + 0x10 + 7 + 0x1234
	if got != want {
		t.Errorf("ResolveRIPRelative = %#x, want %#x", uint64(got), uint64(want))
	}
}

func TestResolveRIPRelativeNegative(t *testing.T) {
	const base = process.ProcessMemoryAddress(0x140001000)
	data := make([]byte, 0x100)

	binary.LittleEndian.PutUint32(data[0x20+3:], uint32(0xFFFFFFF0)) // -16
	mem := &fakeMemory{base: base, data: data}

	got, err := ResolveRIPRelative(mem, base+0x20, 3, 7)
	if err != nil {
		t.Fatal(err)
	}
	want := base + 0x20 + 7 - 16
	if got != want {
		t.Errorf("ResolveRIPRelative = %#x, want %#x", uint64(got), uint64(want))
	}
}

func TestResolveRIPRelativeUnreadable(t *testing.T) {
	mem := &fakeMemory{base: 0x1000, data: make([]byte, 8)}
	if _, err := ResolveRIPRelative(mem, 0x5000, 3, 7); err == nil {
		t.Error("expected error for unreadable displacement")
	}
}

func TestResolveDeref(t *testing.T) {
	const base = process.ProcessMemoryAddress(0x2000)
	data := make([]byte, 0x40)
	binary.LittleEndian.PutUint64(data[0x18:], 0x7fff12345678)
	mem := &fakeMemory{base: base, data: data}

	got, err := ResolveDeref(mem, base+0x10, 0x8)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x7fff12345678 {
		t.Errorf("ResolveDeref = %#x, want 0x7fff12345678", uint64(got))
	}
}
