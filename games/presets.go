package games

import (
	"soulmem/flags"
)

// The anchor patterns and offset chains below come from signature
// research against the shipping x86-64 builds of each title. They are
// version dependent: a game patch can move or re-encode an anchor
// instruction, at which point the pattern stops matching and Initialize
// reports the anchor as not found rather than resolving garbage.

// DarkSoulsRemastered targets DarkSoulsRemastered.exe (and the pre-2024
// DARKSOULS.exe). Flags live in the fixed offset table container.
func DarkSoulsRemastered() Preset {
	return Preset{
		PositionAxes: [3]int{0, 1, 2},
		Config: flags.Config{
			Name:         "Dark Souls Remastered",
			ProcessNames: []string{"DarkSoulsRemastered.exe", "DARKSOULS.exe"},
			Anchors: map[string]flags.AnchorConfig{
				"event_flags": {
					Pattern: "48 8B 0D ?? ?? ?? ?? 99 33 C2 45 33 C0 2B C2 8D 50 F6",
					Offsets: []int64{0x0, 0x0, 0x0},
				},
				"game_data_man": {
					Pattern: "48 8b 05 ?? ?? ?? ?? 48 8b 50 10 48 89 54 24 60",
					Offsets: []int64{0x0},
				},
				"game_man": {
					Pattern: "48 8b 05 ?? ?? ?? ?? c6 40 18 00",
					Offsets: []int64{0x0},
				},
				"world_chr_man": {
					Pattern: "48 8b 0d ?? ?? ?? ?? 0f 28 f1 48 85 c9 74 ?? 48 89 7c",
					Offsets: []int64{0x0},
				},
				"menu_man": {
					Pattern: "48 8b 15 ?? ?? ?? ?? 89 82 7c 08 00 00",
					Offsets: []int64{0x0},
				},
			},
			Pointers: map[string]flags.PointerConfig{
				"igt":              {Anchor: "game_data_man", Offsets: []int64{0x0, 0xa4}},
				"ng_level":         {Anchor: "game_data_man", Offsets: []int64{0x0, 0x78}},
				"player_game_data": {Anchor: "game_data_man", Offsets: []int64{0x0, 0x10}},
				"position":         {Anchor: "world_chr_man", Offsets: []int64{0x0, 0x68, 0x38}},
			},
			Flags: flags.RuleConfig{
				Rule: flags.RuleOffsetTable,
				OffsetTable: &flags.OffsetTableConfig{
					Anchor: "event_flags",
					Groups: map[string]int64{
						"0": 0x0,
						"1": 0x500,
						"5": 0x5F00,
						"6": 0xB900,
						"7": 0x11300,
					},
					Areas: map[string]int64{
						"000": 0, "100": 1, "101": 2, "102": 3, "110": 4,
						"120": 5, "121": 6, "130": 7, "131": 8, "132": 9,
						"140": 10, "141": 11, "150": 12, "151": 13, "160": 14,
						"170": 15, "180": 16, "181": 17, "200": 18, "210": 19,
					},
				},
			},
		},
	}
}

// DarkSouls2 targets the Scholar of the First Sin build. The title
// keeps no externally reachable flag container, so boss progress is
// tracked through its kill counter block; position is stored Y,Z,X.
func DarkSouls2() Preset {
	return Preset{
		PositionAxes: [3]int{2, 0, 1},
		Config: flags.Config{
			Name:         "Dark Souls II",
			ProcessNames: []string{"DarkSoulsII.exe"},
			Anchors: map[string]flags.AnchorConfig{
				"game_manager_imp": {
					Pattern: "48 8b 35 ?? ?? ?? ?? 48 8b e9 48 85 f6",
					Offsets: []int64{0x0},
				},
				"load_state": {
					Pattern: "48 89 05 ?? ?? ?? ?? b0 01 48 83 c4 28",
				},
			},
			Pointers: map[string]flags.PointerConfig{
				"position":   {Anchor: "game_manager_imp", Offsets: []int64{0x0, 0xd0, 0x180}},
				"attributes": {Anchor: "game_manager_imp", Offsets: []int64{0x0, 0xd0, 0x490}},
				"loading":    {Anchor: "load_state"},
			},
			Flags: flags.RuleConfig{
				Rule: flags.RuleKillCounter,
				KillCounter: &flags.KillCounterRuleConfig{
					Anchor:  "game_manager_imp",
					Offsets: []int64{0x0, 0x70, 0x28, 0x20, 0x8},
					Bosses: map[string]int64{
						"TheLastGiant":           0x0,
						"ThePursuer":             0x4,
						"TwinDragonRiders":       0x8,
						"NashandraThrone":        0xc,
						"AldiaThroneDefender":    0x10,
						"TheDukesDearFreja":      0x14,
						"TheLostSinner":          0x18,
						"OldIronKing":            0x1c,
						"Dragonrider":            0x20,
						"OldDragonslayer":        0x24,
						"FlexileSentry":          0x28,
						"TheRuinSentinels":       0x2c,
						"BelfryGargoyles":        0x30,
						"RoyalRatVanguard":       0x34,
						"ProwlingMagus":          0x38,
						"ScorpionessNajka":       0x3c,
						"RoyalRatAuthority":      0x40,
						"TheSkeletonLords":       0x44,
						"ExecutionersChariot":    0x48,
						"SmelterDemon":           0x50,
						"MythaTheBanefulQueen":   0x54,
						"CovetousDemon":          0x58,
						"LookingGlassKnight":     0x5c,
						"DragonslayerArmour":     0x60,
						"DemonOfSong":            0x64,
						"GiantLord":              0x68,
						"Guardian":               0x6c,
						"Darklurker":             0x70,
						"Vendrick":               0x74,
						"VelstadtTheRoyalAegis":  0x78,
						"FumeKnight":             0x7c,
						"ElanaTheSqualidQueen":   0x80,
						"SinhTheSleepingDragon":  0x84,
						"AfflictedGraverobber":   0x88,
						"SirAlonne":              0x8c,
						"BlueSmelterDemon":       0x90,
						"AavaTheKingsPet":        0x94,
						"BurntIvoryKing":         0x9c,
						"LudAndZallen":           0xa0,
					},
				},
			},
		},
	}
}

// DarkSouls3 targets DarkSoulsIII.exe. Flags use the category
// decomposition container with a 0x70 world block stride.
func DarkSouls3() Preset {
	return Preset{
		PositionAxes: [3]int{0, 1, 2},
		Config: flags.Config{
			Name:         "Dark Souls III",
			ProcessNames: []string{"DarkSoulsIII.exe"},
			Anchors: map[string]flags.AnchorConfig{
				"sprj_event_flag_man": {
					// mov qword ptr [rip+disp], 0 is a 11-byte encoding,
					// displacement still at byte 3.
					Pattern:        "48 c7 05 ? ? ? ? 00 00 00 00 48 8b 7c 24 38 c7 46 54 ff ff ff ff 48 83 c4 20 5e c3",
					InstructionLen: 11,
					Offsets:        []int64{0x0},
				},
				"field_area": {
					Pattern: "4c 8b 3d ? ? ? ? 8b 45 87 83 f8 ff 74 69 48 8d 4d 8f 48 89 4d 9f 89 45 8f 48 8d 55 8f 49 8b 4f 10",
				},
				"game_data_man": {
					Pattern: "48 8b 0d ? ? ? ? 4c 8d 44 24 40 45 33 c9 48 8b d3 40 88",
					Offsets: []int64{0x0},
				},
				"player_ins": {
					Pattern: "48 8b 0d ? ? ? ? 45 33 c0 48 8d 55 e7 e8 ? ? ? ? 0f 2f",
					Offsets: []int64{0x0},
				},
				"new_menu_system": {
					Pattern:  "48 8b 0d ? ? ? ? 48 8b 7c 24 20 48 8b 5c 24 30 48 85 c9",
					Offsets:  []int64{0x0},
					Optional: true,
				},
				"loading": {
					// mov byte ptr [rip+disp], imm8: displacement at byte
					// 2; the load state byte sits just before the target.
					Pattern:   "c6 05 ? ? ? ? ? e8 ? ? ? ? 84 c0 0f 94 c0 e9",
					RIPOffset: 2,
					Offset:    -1,
					Optional:  true,
				},
				"sprj_fade_imp": {
					Pattern:  "48 8b 0d ? ? ? ? 4c 8d 4c 24 38 4c 8d 44 24 48 33 d2",
					Offsets:  []int64{0x0},
					Optional: true,
				},
			},
			Pointers: map[string]flags.PointerConfig{
				"igt":              {Anchor: "game_data_man", Offsets: []int64{0x0, 0xa4}},
				"player_game_data": {Anchor: "game_data_man", Offsets: []int64{0x0, 0x10}},
				"position":         {Anchor: "player_ins", Offsets: []int64{0x0, 0x80, 0x40, 0xa8}},
				"player_ins":       {Anchor: "player_ins", Offsets: []int64{0x0}},
				"blackscreen":      {Anchor: "sprj_fade_imp", Offsets: []int64{0x0, 0x8, 0x2ec}},
				"loading":          {Anchor: "loading"},
			},
			Flags: flags.RuleConfig{
				Rule: flags.RuleCategoryDecomposition,
				CategoryDecomposition: &flags.CategoryConfig{
					Anchor:            "sprj_event_flag_man",
					FieldArea:         "field_area",
					WorldOwnerOffsets: []int64{0x0, 0x10},
					WorldBlockStride:  0x70,
				},
			},
		},
	}
}

// Sekiro targets sekiro.exe. Same container family as Dark Souls III
// with a wider world block and a single-hop world owner.
func Sekiro() Preset {
	return Preset{
		PositionAxes: [3]int{0, 1, 2},
		Config: flags.Config{
			Name:         "Sekiro",
			ProcessNames: []string{"sekiro.exe"},
			Anchors: map[string]flags.AnchorConfig{
				"event_flag_man": {
					Pattern: "48 8b 0d ? ? ? ? 48 89 5c 24 50 48 89 6c 24 58 48 89 74 24 60",
					Offsets: []int64{0x0},
				},
				"field_area": {
					Pattern: "48 8b 0d ? ? ? ? 48 85 c9 74 26 44 8b 41 28 48 8d 54 24 40",
				},
				"world_chr_man": {
					Pattern: "48 8B 35 ? ? ? ? 44 0F 28 18",
					Offsets: []int64{0x0},
				},
				"igt": {
					Pattern: "48 8b 05 ? ? ? ? 32 d2 48 8b 48",
					Offsets: []int64{0x0},
				},
				"player_game_data": {
					Pattern:  "48 8b 0d ? ? ? ? 48 8b 41 20 c6",
					Offsets:  []int64{0x0},
					Optional: true,
				},
				"fade_man_imp": {
					Pattern:  "48 89 35 ? ? ? ? 48 8b c7 48 8b",
					Offsets:  []int64{0x0},
					Optional: true,
				},
			},
			Pointers: map[string]flags.PointerConfig{
				"igt":              {Anchor: "igt", Offsets: []int64{0x0, 0x9c}},
				"position":         {Anchor: "world_chr_man", Offsets: []int64{0x0, 0x48, 0xa8}},
				"player_loaded":    {Anchor: "world_chr_man", Offsets: []int64{0x0, 0x88}},
				"player_game_data": {Anchor: "player_game_data", Offsets: []int64{0x0, 0x8}},
				"blackscreen":      {Anchor: "fade_man_imp", Offsets: []int64{0x0, 0x2e4}},
			},
			Flags: flags.RuleConfig{
				Rule: flags.RuleCategoryDecomposition,
				CategoryDecomposition: &flags.CategoryConfig{
					Anchor:            "event_flag_man",
					FieldArea:         "field_area",
					WorldOwnerOffsets: []int64{0x18},
					WorldBlockStride:  0xb0,
				},
			},
		},
	}
}

// EldenRing targets eldenring.exe. Flags live in the per-group binary
// tree container.
func EldenRing() Preset {
	return Preset{
		PositionAxes: [3]int{0, 1, 2},
		Config: flags.Config{
			Name:         "Elden Ring",
			ProcessNames: []string{"eldenring.exe"},
			Anchors: map[string]flags.AnchorConfig{
				"virtual_memory_flag": {
					// mov r12, [rip+disp] behind a spilled-store prologue:
					// the displacement sits at byte 8 of the match.
					Pattern:   "44 89 7c 24 28 4c 8b 25 ? ? ? ? 4d 85 e4",
					RIPOffset: 8,
					Offsets:   []int64{0x5},
				},
				"fd4_time": {
					Pattern: "48 8b 05 ? ? ? ? 4c 8b 40 08 4d 85 c0 74 0d 45 0f b6 80 be 00 00 00 e9 13 00 00 00",
					Offsets: []int64{0x0},
				},
				"world_chr_man": {
					Pattern: "48 8b 35 ? ? ? ? 48 85 f6 ? ? bb 01 00 00 00 89 5c 24 20 48 8b b6",
					Offsets: []int64{0x0},
				},
				"game_data_man": {
					Pattern: "48 8b 05 ? ? ? ? 48 8d 4d c0 41 b8 10 00 00 00 48 8b 10 48 83 c2 1c",
					Offsets: []int64{0x0},
				},
				"menu_man_imp": {
					Pattern:  "48 8b 0d ? ? ? ? 48 8b 53 08 48 8b 92 d8 00 00 00 48 83 c4 20 5b",
					Offsets:  []int64{0x0},
					Optional: true,
				},
			},
			Pointers: map[string]flags.PointerConfig{
				"igt":              {Anchor: "fd4_time", Offsets: []int64{0x0, 0xa0}},
				"player_ins":       {Anchor: "world_chr_man", Offsets: []int64{0x0, 0x1e508}},
				"position":         {Anchor: "world_chr_man", Offsets: []int64{0x0, 0x1ebdc}},
				"ng_level":         {Anchor: "game_data_man", Offsets: []int64{0x0, 0x120}},
				"player_game_data": {Anchor: "game_data_man", Offsets: []int64{0x0, 0x8}},
			},
			Flags: flags.RuleConfig{
				Rule: flags.RuleBinaryTree,
				BinaryTree: &flags.BinaryTreeConfig{
					Anchor: "virtual_memory_flag",
				},
			},
		},
	}
}

// ArmoredCore6 targets armoredcore6.exe, sharing Elden Ring's tree
// container behind a doubly indirected singleton.
func ArmoredCore6() Preset {
	return Preset{
		PositionAxes: [3]int{0, 1, 2},
		Config: flags.Config{
			Name:         "Armored Core VI",
			ProcessNames: []string{"armoredcore6.exe"},
			Anchors: map[string]flags.AnchorConfig{
				"cs_event_flag_man": {
					Pattern: "48 8b 35 ? ? ? ? 83 f8 ff 0f 44 c1",
					Offsets: []int64{0x0, 0x0},
				},
				"fd4_time": {
					Pattern: "48 8b 0d ? ? ? ? 0f 28 c8 f3 0f 59 0d",
					Offsets: []int64{0x0, 0x0},
				},
				"cs_menu_man": {
					Pattern:  "48 8b 35 ? ? ? ? 33 db 89 5c 24 20",
					Offsets:  []int64{0x0, 0x0},
					Optional: true,
				},
			},
			Pointers: map[string]flags.PointerConfig{
				"igt": {Anchor: "fd4_time", Offsets: []int64{0x0, 0x0, 0x114}},
			},
			Flags: flags.RuleConfig{
				Rule: flags.RuleBinaryTree,
				BinaryTree: &flags.BinaryTreeConfig{
					Anchor: "cs_event_flag_man",
				},
			},
		},
	}
}
