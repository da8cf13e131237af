package flags

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const ds3TestConfig = `
name = "ds3"
process_names = ["DarkSoulsIII.exe"]

[anchors.event_flag_man]
pattern = "48 c7 05 ?? ?? ?? ?? 00 00 00 00 48 8b 7c 24 38"
instruction_len = 11
offsets = [0x0]

[anchors.field_area]
pattern = "4c 8b 3d ?? ?? ?? ?? 8b 45 87"

[anchors.igt]
pattern = "48 8b 05 ?? ?? ?? ?? 32 d2"
optional = true

[pointers.igt_ms]
anchor = "igt"
offsets = [0x0, 0x9c]

[flags]
rule = "category_decomposition"

[flags.category_decomposition]
anchor = "event_flag_man"
field_area = "field_area"
`

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(ds3TestConfig)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if got, want := cfg.ModuleName(), "DarkSoulsIII.exe"; got != want {
		t.Errorf("ModuleName() = %q, want %q", got, want)
	}
	if !cfg.Is64Bit() {
		t.Error("Is64Bit() = false, want true by default")
	}

	man := cfg.Anchors["event_flag_man"]
	if man.Mode != ModeRIPRelative {
		t.Errorf("mode = %q, want %q", man.Mode, ModeRIPRelative)
	}
	if man.RIPOffset != 3 || man.InstructionLen != 11 {
		t.Errorf("rip = %d/%d, want 3/11", man.RIPOffset, man.InstructionLen)
	}

	fieldArea := cfg.Anchors["field_area"]
	if fieldArea.RIPOffset != 3 || fieldArea.InstructionLen != 7 {
		t.Errorf("field_area rip = %d/%d, want defaults 3/7",
			fieldArea.RIPOffset, fieldArea.InstructionLen)
	}

	if !cfg.Anchors["igt"].Optional {
		t.Error("igt anchor lost its optional flag")
	}

	igt := cfg.Pointers["igt_ms"]
	if igt.Anchor != "igt" {
		t.Errorf("pointer anchor = %q, want igt", igt.Anchor)
	}
	if diff := cmp.Diff([]int64{0x0, 0x9c}, igt.Offsets); diff != "" {
		t.Errorf("pointer offsets mismatch (-want +got):\n%s", diff)
	}

	want := &CategoryConfig{
		Anchor:             "event_flag_man",
		FieldArea:          "field_area",
		WorldOwnerOffsets:  []int64{0x0, 0x10},
		WorldInfoStride:    0x38,
		WorldBlockStride:   0x70,
		GroupTableOffset:   0x218,
		GroupStride:        0x18,
		CategoryMultiplier: 0xa8,
	}
	if diff := cmp.Diff(want, cfg.Flags.CategoryDecomposition); diff != "" {
		t.Errorf("category defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigBinaryTreeDefaults(t *testing.T) {
	cfg, err := ParseConfig(`
name = "er"
process_names = ["eldenring.exe"]

[anchors.flag_man]
pattern = "44 89 7c 24 28 4c 8b 25 ?? ?? ?? ?? 4d 85 e4"
rip_offset = 8
offsets = [0x5]

[flags]
rule = "binary_tree"

[flags.binary_tree]
anchor = "flag_man"
`)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	want := &BinaryTreeConfig{
		Anchor:         "flag_man",
		DivisorOffset:  0x1c,
		RootOffset:     0x38,
		MultOffset:     0x20,
		BaseAddrOffset: 0x28,
	}
	if diff := cmp.Diff(want, cfg.Flags.BinaryTree); diff != "" {
		t.Errorf("tree defaults mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.Anchors["flag_man"].RIPOffset; got != 8 {
		t.Errorf("rip_offset = %d, want 8", got)
	}
}

func TestParseConfigNoRule(t *testing.T) {
	cfg, err := ParseConfig(`
name = "watcher"
process_names = ["game.exe"]

[anchors.stats]
pattern = "48 8b 05 ?? ?? ?? ?? 32 d2"
`)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Flags.Rule != RuleNone {
		t.Errorf("rule = %q, want %q", cfg.Flags.Rule, RuleNone)
	}
}

func TestParseConfigRejectsMalformedTOML(t *testing.T) {
	if _, err := ParseConfig(`name = [unclosed`); err == nil {
		t.Fatal("ParseConfig accepted malformed TOML")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ds3.toml")
	if err := os.WriteFile(path, []byte(ds3TestConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "ds3" {
		t.Errorf("name = %q, want ds3", cfg.Name)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("LoadConfig on a missing file returned nil error")
	}
}

func TestValidateErrors(t *testing.T) {
	base := func() Config {
		return Config{
			ProcessNames: []string{"game.exe"},
			Anchors: map[string]AnchorConfig{
				"anchor": {Pattern: "48 8b 05 ?? ?? ?? ??"},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no module", func(c *Config) { c.ProcessNames = nil }},
		{"bad pointer size", func(c *Config) { c.PointerSize = 2 }},
		{"malformed pattern", func(c *Config) {
			c.Anchors["anchor"] = AnchorConfig{Pattern: "48 8g"}
		}},
		{"unknown mode", func(c *Config) {
			c.Anchors["anchor"] = AnchorConfig{Pattern: "48", Mode: "indirect"}
		}},
		{"dangling pointer anchor", func(c *Config) {
			c.Pointers = map[string]PointerConfig{"igt": {Anchor: "nope"}}
		}},
		{"unknown rule", func(c *Config) { c.Flags.Rule = "linear_probe" }},
		{"rule without section", func(c *Config) { c.Flags.Rule = RuleBinaryTree }},
		{"rule with dangling anchor", func(c *Config) {
			c.Flags.Rule = RuleKillCounter
			c.Flags.KillCounter = &KillCounterRuleConfig{Anchor: "nope"}
		}},
		{"category without field area", func(c *Config) {
			c.Flags.Rule = RuleCategoryDecomposition
			c.Flags.CategoryDecomposition = &CategoryConfig{Anchor: "anchor"}
		}},
		{"offset table without tables", func(c *Config) {
			c.Flags.Rule = RuleOffsetTable
			c.Flags.OffsetTable = &OffsetTableConfig{Anchor: "anchor"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			cfg.applyDefaults()
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
