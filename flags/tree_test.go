package flags

import (
	"testing"

	"soulmem/process_blob"
)

// Tree node addresses for the fixture. The header node is the nil
// sentinel; its +0x8 slot points at the root. Keys 3000, 5000, 7000
// and 9000 cover both storage encodings plus the no-storage kind.
const (
	treeMan    = testHeapBase
	treeHeader = testHeapBase + 0x2000
	treeNodeA  = testHeapBase + 0x3000 // key 5000, root
	treeNodeB  = testHeapBase + 0x4000 // key 3000, left of A
	treeNodeC  = testHeapBase + 0x5000 // key 7000, right of A
	treeNodeD  = testHeapBase + 0xa000 // key 9000, right of C

	treeSharedBase  = testHeapBase + 0x6000 // indexed blocks start here
	treeInlineBlock = testHeapBase + 0x7000 // block C points at inline
)

func binaryTreeConfig() Config {
	return Config{
		Name:         "er-test",
		ProcessNames: []string{"eldenring.exe"},
		Anchors: map[string]AnchorConfig{
			"flag_man": {Pattern: "48 8b 05 ?? ?? ?? ?? 4d 85 e4", Offsets: []int64{0x0}},
		},
		Flags: RuleConfig{
			Rule:       RuleBinaryTree,
			BinaryTree: &BinaryTreeConfig{Anchor: "flag_man"},
		},
	}
}

func treeSnapshot(t *testing.T) *process_blob.Snapshot {
	t.Helper()

	snap := newGameSnapshot(t, "eldenring.exe", map[int64][]byte{
		0x100: movRIP([3]byte{0x48, 0x8b, 0x05}, 0x100, 0x2000, 0x4d, 0x85, 0xe4),
	})
	writeU64(t, snap, testModuleBase+0x2000, uint64(treeMan))

	// Manager: divisor, multiplier, shared block base, tree root.
	writeU32(t, snap, treeMan+0x1c, 1000)
	writeU32(t, snap, treeMan+0x20, 0x1000)
	writeU64(t, snap, treeMan+0x28, uint64(treeSharedBase))
	writeU64(t, snap, treeMan+0x38, uint64(treeHeader))

	writeU64(t, snap, treeHeader+0x8, uint64(treeNodeA))
	writeBytes(t, snap, treeHeader+0x19, []byte{1})

	// Root, key 5000, indexed storage at element 0.
	writeU64(t, snap, treeNodeA+0x0, uint64(treeNodeB))
	writeU64(t, snap, treeNodeA+0x10, uint64(treeNodeC))
	writeU32(t, snap, treeNodeA+0x20, 5000)
	writeU32(t, snap, treeNodeA+0x28, 1)
	writeU32(t, snap, treeNodeA+0x30, 0)

	// Key 3000, indexed storage at element 2.
	writeU64(t, snap, treeNodeB+0x0, uint64(treeHeader))
	writeU64(t, snap, treeNodeB+0x10, uint64(treeHeader))
	writeU32(t, snap, treeNodeB+0x20, 3000)
	writeU32(t, snap, treeNodeB+0x28, 1)
	writeU32(t, snap, treeNodeB+0x30, 2)

	// Key 7000, inline block address.
	writeU64(t, snap, treeNodeC+0x0, uint64(treeHeader))
	writeU64(t, snap, treeNodeC+0x10, uint64(treeNodeD))
	writeU32(t, snap, treeNodeC+0x20, 7000)
	writeU32(t, snap, treeNodeC+0x28, 3)
	writeU64(t, snap, treeNodeC+0x30, uint64(treeInlineBlock))

	// Key 9000, storage kind 2 carries no block.
	writeU64(t, snap, treeNodeD+0x0, uint64(treeHeader))
	writeU64(t, snap, treeNodeD+0x10, uint64(treeHeader))
	writeU32(t, snap, treeNodeD+0x20, 9000)
	writeU32(t, snap, treeNodeD+0x28, 2)

	// Set bits: group 5000 remainder 7, group 3000 remainder 123,
	// group 7000 remainder 42. Bits count from the byte's high end.
	writeBytes(t, snap, treeSharedBase+0x0, []byte{0x01})
	writeBytes(t, snap, treeSharedBase+0x1000*2+15, []byte{0x10})
	writeBytes(t, snap, treeInlineBlock+5, []byte{0x20})

	return snap
}

func TestBinaryTreeFlags(t *testing.T) {
	e, err := New(binaryTreeConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Initialize(treeSnapshot(t)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	for _, tt := range []struct {
		id   uint32
		want bool
	}{
		// Indexed storage, element 2 of the shared base.
		{3000123, true},
		{3000124, false},
		// Indexed storage, element 0.
		{5000007, true},
		{5000006, false},
		// Inline block.
		{7000042, true},
		{7000041, false},
		// Group between two keys, no node carries it.
		{4000000, false},
		// Node exists but its storage kind carries no block.
		{9000000, false},
		// Group above every key in the tree.
		{10000000, false},
	} {
		got, err := e.IsFlagSet(tt.id)
		if err != nil {
			t.Fatalf("IsFlagSet(%d): %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("IsFlagSet(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestBinaryTreeZeroDivisor(t *testing.T) {
	e, err := New(binaryTreeConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	snap := treeSnapshot(t)
	writeU32(t, snap, treeMan+0x1c, 0)
	if err := e.Initialize(snap); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if set, _ := e.IsFlagSet(3000123); set {
		t.Error("IsFlagSet with zero divisor = true, want false")
	}
}

// A manager whose root slot is still zero must answer false instead of
// chasing null pointers forever.
func TestBinaryTreeDeadRootTerminates(t *testing.T) {
	e, err := New(binaryTreeConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	snap := newGameSnapshot(t, "eldenring.exe", map[int64][]byte{
		0x100: movRIP([3]byte{0x48, 0x8b, 0x05}, 0x100, 0x2000, 0x4d, 0x85, 0xe4),
	})
	writeU64(t, snap, testModuleBase+0x2000, uint64(treeMan))
	writeU32(t, snap, treeMan+0x1c, 1000)

	if err := e.Initialize(snap); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if set, _ := e.IsFlagSet(3000123); set {
		t.Error("IsFlagSet on dead tree = true, want false")
	}
}
