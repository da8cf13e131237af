package pod

import (
	"encoding/binary"
	"math"
	"testing"

	"soulmem/process"
	"soulmem/process_blob"

	"github.com/google/go-cmp/cmp"
)

const testBase = process.ProcessMemoryAddress(0x20000000)

type coords struct {
	X float32
	Y float32
	Z float32
}

func newPodSnapshot(t *testing.T) *process_blob.Snapshot {
	t.Helper()
	s := process_blob.NewSnapshot(4242, "pod-test")
	s.AddRegion(testBase, make([]byte, 0x1000))
	return s
}

func TestReadT(t *testing.T) {
	s := newPodSnapshot(t)

	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(1.5))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(-2.25))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(100))
	if err := s.WriteMemory(testBase+0x10, buf); err != nil {
		t.Fatal(err)
	}

	got, err := ReadT[coords](s, testBase+0x10)
	if err != nil {
		t.Fatalf("ReadT: %v", err)
	}

	want := coords{X: 1.5, Y: -2.25, Z: 100}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("coords mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTRejectsPointerTypes(t *testing.T) {
	s := newPodSnapshot(t)

	type bad struct {
		Name string
	}
	if _, err := ReadT[bad](s, testBase); err == nil {
		t.Fatal("expected error for type containing a string")
	}
}

func TestReadTUnmappedAddress(t *testing.T) {
	s := newPodSnapshot(t)

	if _, err := ReadT[uint64](s, 0xdeadbeef); err == nil {
		t.Fatal("expected error for unmapped address")
	}
}

func TestWriteTRoundTrip(t *testing.T) {
	s := newPodSnapshot(t)

	want := coords{X: 3, Y: 4, Z: 5}
	if err := s.WriteMemory(testBase+0x40, WriteT(want)); err != nil {
		t.Fatal(err)
	}

	got, err := ReadT[coords](s, testBase+0x40)
	if err != nil {
		t.Fatalf("ReadT: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadSliceT(t *testing.T) {
	s := newPodSnapshot(t)

	buf := make([]byte, 16)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(i*100))
	}
	if err := s.WriteMemory(testBase+0x80, buf); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSliceT[uint32](s, testBase+0x80, 4)
	if err != nil {
		t.Fatalf("ReadSliceT: %v", err)
	}
	want := []uint32{0, 100, 200, 300}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slice mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPointerList(t *testing.T) {
	s := newPodSnapshot(t)

	// Two mapped pointers, one null, one garbage
	if err := s.WriteUINT64(testBase+0x100, uint64(testBase+0x200)); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteUINT64(testBase+0x108, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteUINT64(testBase+0x110, 0x41414141); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteUINT64(testBase+0x118, uint64(testBase+0x300)); err != nil {
		t.Fatal(err)
	}

	got, err := ReadPointerList(s, testBase+0x100, 4)
	if err != nil {
		t.Fatalf("ReadPointerList: %v", err)
	}
	want := []process.ProcessMemoryAddress{testBase + 0x200, testBase + 0x300}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pointer list mismatch (-want +got):\n%s", diff)
	}
}
