package pointer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"soulmem/process_blob"
)

func newMemory(t *testing.T) *process_blob.Snapshot {
	t.Helper()
	s := process_blob.NewSnapshot(1, "fixture")
	s.AddRegion(0x1000, make([]byte, 0x1000))
	s.AddRegion(0x40000, make([]byte, 0x1000))
	return s
}

func TestResolveNoOffsets(t *testing.T) {
	// No offsets, nothing mapped: the base comes back untouched.
	empty := process_blob.NewSnapshot(1, "empty")
	c := New(empty, true, 0xdead0000)
	if got := c.Resolve(); got != 0xdead0000 {
		t.Errorf("Resolve = %#x, want 0xdead0000", uint64(got))
	}
}

func TestResolveSingleOffsetDoesNotDereference(t *testing.T) {
	// A single offset is added, never dereferenced, so this works even
	// though no memory is mapped at all.
	empty := process_blob.NewSnapshot(1, "empty")
	c := New(empty, true, 0x1000, 0x2ec)
	if got := c.Resolve(); got != 0x12ec {
		t.Errorf("Resolve = %#x, want 0x12ec", uint64(got))
	}
}

func TestResolveDereferencesAllButLast(t *testing.T) {
	mem := newMemory(t)
	// *(0x1000+0x8) = 0x40000; final = 0x40000+0x20
	if err := mem.WriteUINT64(0x1008, 0x40000); err != nil {
		t.Fatal(err)
	}

	c := New(mem, true, 0x1000, 0x8, 0x20)
	if got := c.Resolve(); got != 0x40020 {
		t.Errorf("Resolve = %#x, want 0x40020", uint64(got))
	}
}

func TestResolveNullPointerShortCircuits(t *testing.T) {
	mem := newMemory(t)
	// Slot at 0x1008 stays zero.
	c := New(mem, true, 0x1000, 0x8, 0x20)
	if got := c.Resolve(); got != 0 {
		t.Errorf("Resolve = %#x, want 0", uint64(got))
	}
	if !c.IsNull() {
		t.Error("IsNull = false, want true")
	}
}

func TestResolveUnreadableShortCircuits(t *testing.T) {
	mem := newMemory(t)
	// Base outside any region: the dereference at base+0x8 fails.
	c := New(mem, true, 0x999000, 0x8, 0x20)
	if got := c.Resolve(); got != 0 {
		t.Errorf("Resolve = %#x, want 0", uint64(got))
	}
}

func TestResolve32BitPointerWidth(t *testing.T) {
	mem := newMemory(t)
	// 4-byte pointer slot; the adjacent word holds garbage that would
	// corrupt the value if 8 bytes were read.
	if err := mem.WriteUINT32(0x1004, 0x40000); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteUINT32(0x1008, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}

	c := New(mem, false, 0x1000, 0x4, 0x10)
	if got := c.Resolve(); got != 0x40010 {
		t.Errorf("Resolve = %#x, want 0x40010", uint64(got))
	}
}

func TestNegativeOffset(t *testing.T) {
	empty := process_blob.NewSnapshot(1, "empty")
	c := New(empty, true, 0x2000, -0x10)
	if got := c.Resolve(); got != 0x1ff0 {
		t.Errorf("Resolve = %#x, want 0x1ff0", uint64(got))
	}
}

func TestAppendImmutability(t *testing.T) {
	mem := newMemory(t)
	base := New(mem, true, 0x1000, 0x8)
	extended := base.Append(0x20, 0x4)

	if diff := cmp.Diff([]int64{0x8}, base.Offsets()); diff != "" {
		t.Errorf("original offsets changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{0x8, 0x20, 0x4}, extended.Offsets()); diff != "" {
		t.Errorf("extended offsets (-want +got):\n%s", diff)
	}
}

func TestAppendTurnsLastOffsetIntoDereference(t *testing.T) {
	mem := newMemory(t)
	// chain [0x8]: resolves to 0x1008 (no deref).
	// chain [0x8, 0x10]: *(0x1000+0x8) then +0x10.
	if err := mem.WriteUINT64(0x1008, 0x40000); err != nil {
		t.Fatal(err)
	}

	plain := New(mem, true, 0x1000, 0x8)
	if got := plain.Resolve(); got != 0x1008 {
		t.Fatalf("plain Resolve = %#x, want 0x1008", uint64(got))
	}

	extended := plain.Append(0x10)
	if got := extended.Resolve(); got != 0x40010 {
		t.Errorf("extended Resolve = %#x, want 0x40010", uint64(got))
	}
}

func TestRebaseFromAddress(t *testing.T) {
	mem := newMemory(t)
	// *(0x1000+0x8) = 0x40000, so rebasing chain [0x8] lands on 0x40000
	// with no offsets left.
	if err := mem.WriteUINT64(0x1008, 0x40000); err != nil {
		t.Fatal(err)
	}

	rebased := New(mem, true, 0x1000, 0x8).RebaseFromAddress()
	if got := rebased.Base(); got != 0x40000 {
		t.Errorf("rebased base = %#x, want 0x40000", uint64(got))
	}
	if len(rebased.Offsets()) != 0 {
		t.Errorf("rebased offsets = %v, want empty", rebased.Offsets())
	}
}

func TestRebaseFromAddressWithExtra(t *testing.T) {
	mem := newMemory(t)
	// *(0x1000+0x8) = 0x40000, *(0x40000+0x28) = 0x40100
	if err := mem.WriteUINT64(0x1008, 0x40000); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteUINT64(0x40028, 0x40100); err != nil {
		t.Fatal(err)
	}

	rebased := New(mem, true, 0x1000, 0x8).RebaseFromAddress(0x28)
	if got := rebased.Base(); got != 0x40100 {
		t.Errorf("rebased base = %#x, want 0x40100", uint64(got))
	}
}

func TestRebaseFromDeadChainIsNull(t *testing.T) {
	mem := newMemory(t)
	rebased := New(mem, true, 0x1000, 0x8).RebaseFromAddress()
	if got := rebased.Base(); got != 0 {
		t.Errorf("rebased base = %#x, want 0", uint64(got))
	}
	if !rebased.IsNull() {
		t.Error("IsNull = false, want true")
	}
}

func TestTypedReadAtChainResult(t *testing.T) {
	mem := newMemory(t)
	// Chain [0x0] resolves to base+0 without dereferencing; the read
	// happens right there.
	if err := mem.WriteUINT32(0x1000, 0xabcd1234); err != nil {
		t.Fatal(err)
	}

	c := New(mem, true, 0x1000, 0x0)
	if got := c.ReadUINT32(); got != 0xabcd1234 {
		t.Errorf("ReadUINT32() = %#x, want 0xabcd1234", got)
	}
}

func TestTypedReadExtraOffsetDereferences(t *testing.T) {
	mem := newMemory(t)
	// With an extra offset the chain becomes [0x0, 0x8]: the formerly
	// final +0x0 turns into a dereference step.
	if err := mem.WriteUINT64(0x1000, 0x40000); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteUINT32(0x40008, 777); err != nil {
		t.Fatal(err)
	}

	c := New(mem, true, 0x1000, 0x0)
	if got := c.ReadUINT32(0x8); got != 777 {
		t.Errorf("ReadUINT32(0x8) = %d, want 777", got)
	}
}

func TestTypedReadFailureReturnsZero(t *testing.T) {
	mem := newMemory(t)
	c := New(mem, true, 0x999000, 0x0)
	if got := c.ReadINT32(); got != 0 {
		t.Errorf("ReadINT32 on unmapped = %d, want 0", got)
	}
	if got := c.ReadFLOAT32(); got != 0 {
		t.Errorf("ReadFLOAT32 on unmapped = %f, want 0", got)
	}
	if got := c.ReadINT64(); got != 0 {
		t.Errorf("ReadINT64 on unmapped = %d, want 0", got)
	}
}

func TestResolveTrace(t *testing.T) {
	mem := newMemory(t)
	if err := mem.WriteUINT64(0x1008, 0x40000); err != nil {
		t.Fatal(err)
	}

	hops, final := New(mem, true, 0x1000, 0x8, 0x20).ResolveTrace()
	wantHops := []Hop{{Address: 0x1008, Value: 0x40000}}
	if diff := cmp.Diff(wantHops, hops); diff != "" {
		t.Errorf("hops (-want +got):\n%s", diff)
	}
	if final != 0x40020 {
		t.Errorf("final = %#x, want 0x40020", uint64(final))
	}
}
