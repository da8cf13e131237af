package flags

import (
	"testing"
)

// The counter block fixture mirrors the layout behind GameManagerImp:
// the anchor's static slot points at a manager object, a field inside
// it points at the block of per-boss kill counts.
func killCounterEngine(t *testing.T) *Engine {
	t.Helper()

	cfg := Config{
		Name:         "ds2-test",
		ProcessNames: []string{"DarkSoulsII.exe"},
		Anchors: map[string]AnchorConfig{
			"game_manager": {Pattern: "48 8b 35 ?? ?? ?? ?? 48 8b e9"},
		},
		Flags: RuleConfig{
			Rule: RuleKillCounter,
			KillCounter: &KillCounterRuleConfig{
				Anchor:  "game_manager",
				Offsets: []int64{0x0, 0x8},
				Bosses:  map[string]int64{"pursuer": 0x4, "last_giant": 0x8},
			},
		},
	}

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	snap := newGameSnapshot(t, "DarkSoulsII.exe", map[int64][]byte{
		0x100: movRIP([3]byte{0x48, 0x8b, 0x35}, 0x100, 0x2000, 0x48, 0x8b, 0xe9),
	})
	writeU64(t, snap, testModuleBase+0x2000, uint64(testHeapBase))
	writeU64(t, snap, testHeapBase+0x8, uint64(testHeapBase+0x1000))

	// Counter block: three i32 counts.
	writeU32(t, snap, testHeapBase+0x1000, 5)
	writeU32(t, snap, testHeapBase+0x1004, 0)
	writeU32(t, snap, testHeapBase+0x1008, 1)

	if err := e.Initialize(snap); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return e
}

func TestKillCounterCounts(t *testing.T) {
	e := killCounterEngine(t)

	for _, tt := range []struct {
		offset uint32
		want   int32
	}{
		{0x0, 5},
		{0x4, 0},
		{0x8, 1},
	} {
		got, err := e.GetCount(tt.offset)
		if err != nil {
			t.Fatalf("GetCount(%#x): %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("GetCount(%#x) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

func TestKillCounterFlagIsCountAboveZero(t *testing.T) {
	e := killCounterEngine(t)

	for _, tt := range []struct {
		offset uint32
		want   bool
	}{
		{0x0, true},
		{0x4, false},
		{0x8, true},
	} {
		got, err := e.IsFlagSet(tt.offset)
		if err != nil {
			t.Fatalf("IsFlagSet(%#x): %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("IsFlagSet(%#x) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestKillCounterDeadChain(t *testing.T) {
	cfg := Config{
		Name:         "ds2-test",
		ProcessNames: []string{"DarkSoulsII.exe"},
		Anchors: map[string]AnchorConfig{
			"game_manager": {Pattern: "48 8b 35 ?? ?? ?? ?? 48 8b e9"},
		},
		Flags: RuleConfig{
			Rule: RuleKillCounter,
			KillCounter: &KillCounterRuleConfig{
				Anchor:  "game_manager",
				Offsets: []int64{0x0, 0x8},
			},
		},
	}

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Static slot left zeroed: the manager has not been constructed
	// yet, as during the main menu.
	snap := newGameSnapshot(t, "DarkSoulsII.exe", map[int64][]byte{
		0x100: movRIP([3]byte{0x48, 0x8b, 0x35}, 0x100, 0x2000, 0x48, 0x8b, 0xe9),
	})
	if err := e.Initialize(snap); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if got, _ := e.GetCount(0x4); got != 0 {
		t.Errorf("GetCount on dead chain = %d, want 0", got)
	}
	if set, _ := e.IsFlagSet(0x4); set {
		t.Error("IsFlagSet on dead chain = true, want false")
	}
}
