package flags

import (
	"testing"

	"soulmem/process_blob"
)

// Heap layout for the category fixture. The world info list carries a
// decoy area entry and two blocks under area 30 so the walk has to
// match on both the area byte and the packed sub-area word.
const (
	catMan       = testHeapBase          // event flag manager object
	catFieldArea = testHeapBase + 0x100  // field area object
	catOwner     = testHeapBase + 0x200  // world info owner
	catEntries   = testHeapBase + 0x300  // world info array, stride 0x38
	catBlocks    = testHeapBase + 0x400  // block array for area 30, stride 0x70
	catGroupTab  = testHeapBase + 0x1000 // group table, stride 0x18
)

func categoryConfig() Config {
	return Config{
		Name:         "ds3-test",
		ProcessNames: []string{"DarkSoulsIII.exe"},
		Anchors: map[string]AnchorConfig{
			"event_flag_man": {Pattern: "48 8b 0d ?? ?? ?? ?? 48 89 5c", Offsets: []int64{0x0}},
			"field_area":     {Pattern: "4c 8b 3d ?? ?? ?? ?? 8b 45 87"},
		},
		Flags: RuleConfig{
			Rule: RuleCategoryDecomposition,
			CategoryDecomposition: &CategoryConfig{
				Anchor:    "event_flag_man",
				FieldArea: "field_area",
			},
		},
	}
}

func categorySnapshot(t *testing.T) *process_blob.Snapshot {
	t.Helper()

	snap := newGameSnapshot(t, "DarkSoulsIII.exe", map[int64][]byte{
		0x100: movRIP([3]byte{0x48, 0x8b, 0x0d}, 0x100, 0x2000, 0x48, 0x89, 0x5c),
		0x200: movRIP([3]byte{0x4c, 0x8b, 0x3d}, 0x200, 0x2008, 0x8b, 0x45, 0x87),
	})
	writeU64(t, snap, testModuleBase+0x2000, uint64(catMan))
	writeU64(t, snap, testModuleBase+0x2008, uint64(catFieldArea))

	// Field area -> world info owner -> entry array of two entries.
	writeU64(t, snap, catFieldArea+0x10, uint64(catOwner))
	writeU32(t, snap, catOwner+0x8, 2)
	writeU64(t, snap, catOwner+0x10, uint64(catEntries))

	// Entry 0 is a decoy for area 20 with no blocks.
	writeBytes(t, snap, catEntries+0xb, []byte{20})

	// Entry 1 holds area 30 with two blocks.
	writeBytes(t, snap, catEntries+0x38+0xb, []byte{30})
	writeBytes(t, snap, catEntries+0x38+0x20, []byte{2})
	writeU64(t, snap, catEntries+0x38+0x28, uint64(catBlocks))

	// Block 0 packs area 30 sub-area 5, block 1 area 30 sub-area 0.
	writeU32(t, snap, catBlocks+0x8, 30<<24|5<<16)
	writeU32(t, snap, catBlocks+0x20, 7)
	writeU32(t, snap, catBlocks+0x70+0x8, 30<<24)
	writeU32(t, snap, catBlocks+0x70+0x20, 2)

	// Group table: entries for group 1 and group 5.
	writeU64(t, snap, catMan+0x218, uint64(catGroupTab))
	writeU64(t, snap, catGroupTab+1*0x18, uint64(testHeapBase+0x1100))
	writeU64(t, snap, catGroupTab+5*0x18, uint64(testHeapBase+0x1200))

	// Flag 13000050: area 30 sub-area 0 finds block 1, category 2+1,
	// so the section sits at group base + 3*0xa8. Bit 13 of the second
	// word covers local id 50.
	writeU64(t, snap, testHeapBase+0x1100+3*0xa8, uint64(testHeapBase+0x1800))
	writeU32(t, snap, testHeapBase+0x1804, 0x2000)

	// Flag 13050050: sub-area 5 finds block 0, category 7+1.
	writeU64(t, snap, testHeapBase+0x1100+8*0xa8, uint64(testHeapBase+0x1b00))
	writeU32(t, snap, testHeapBase+0x1b04, 0x2000)

	// Flag 19000123: area 90 takes the fixed category 0 shortcut.
	writeU64(t, snap, testHeapBase+0x1100, uint64(testHeapBase+0x1900))
	writeU32(t, snap, testHeapBase+0x1900+12, 0x10)

	// Flag 50000010: area and sub-area both zero, same shortcut,
	// group 5.
	writeU64(t, snap, testHeapBase+0x1200, uint64(testHeapBase+0x1a00))
	writeU32(t, snap, testHeapBase+0x1a00, 1<<21)

	return snap
}

func TestCategoryDecompositionFlags(t *testing.T) {
	e, err := New(categoryConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Initialize(categorySnapshot(t)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	for _, tt := range []struct {
		id   uint32
		want bool
	}{
		// World flag through the area 30 / sub-area 0 block.
		{13000050, true},
		{13000051, false},
		// Same area, sub-area 5 matches the first block instead.
		{13050050, true},
		{13050051, false},
		// Area 90 and the all-zero area skip the world walk.
		{19000123, true},
		{19000124, false},
		{50000010, true},
		{50000011, false},
		// Area 40 has no world info entry.
		{14000000, false},
		// Group 2 has no table entry, the group chain dies.
		{23000050, false},
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

func TestCategoryCountMirrorsFlag(t *testing.T) {
	e, err := New(categoryConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Initialize(categorySnapshot(t)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if got, _ := e.GetCount(13000050); got != 1 {
		t.Errorf("GetCount(13000050) = %d, want 1", got)
	}
	if got, _ := e.GetCount(13000051); got != 0 {
		t.Errorf("GetCount(13000051) = %d, want 0", got)
	}
}

// With the field area slot still zero, world flags cannot find their
// block but area 90 flags keep answering through the shortcut. That is
// what happens on the main menu and during loads.
func TestCategoryFieldAreaGone(t *testing.T) {
	e, err := New(categoryConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	snap := categorySnapshot(t)
	writeU64(t, snap, testModuleBase+0x2008, 0)
	if err := e.Initialize(snap); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if set, _ := e.IsFlagSet(13000050); set {
		t.Error("world flag with dead field area = true, want false")
	}
	if set, _ := e.IsFlagSet(19000123); !set {
		t.Error("area 90 flag with dead field area = false, want true")
	}
}

func TestCategoryManagerGone(t *testing.T) {
	e, err := New(categoryConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	snap := categorySnapshot(t)
	writeU64(t, snap, testModuleBase+0x2000, 0)
	if err := e.Initialize(snap); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if set, _ := e.IsFlagSet(19000123); set {
		t.Error("flag with dead manager = true, want false")
	}
}
