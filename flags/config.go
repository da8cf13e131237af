// Package flags implements event flag decoding for FromSoftware titles:
// locating engine singletons by byte signature, resolving them through
// RIP-relative or absolute addressing, and reading individual flag bits
// through whichever container layout the game generation uses.
//
// Four flag storage rules are supported, one per engine generation:
//
//	category_decomposition  DS3, Sekiro
//	binary_tree             Elden Ring, Armored Core 6
//	offset_table            DS1
//	kill_counter            DS2 (boss kill counts, flags derived)
//
// The set is closed: a config selects exactly one rule by name, and
// unknown names are a config error.
package flags

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"soulmem/pattern"
	"soulmem/process"
)

// Anchor resolution modes.
const (
	ModeRIPRelative = "rip_relative"
	ModeAbsolute    = "absolute"
	ModeNone        = "none"
)

// Flag storage rules.
const (
	RuleCategoryDecomposition = "category_decomposition"
	RuleBinaryTree            = "binary_tree"
	RuleOffsetTable           = "offset_table"
	RuleKillCounter           = "kill_counter"
	RuleNone                  = "none"
)

// Config describes one game: how to find its flag singletons and which
// rule decodes flag ids against them. Configs come from TOML files or
// from the compiled-in presets in the games package.
type Config struct {
	Name         string   `toml:"name"`
	ProcessNames []string `toml:"process_names"`
	// Module is the executable whose image is scanned for anchor
	// patterns. Defaults to the first process name.
	Module string `toml:"module"`
	// PointerSize is the width of pointer slots in bytes, 4 or 8.
	// Defaults to 8.
	PointerSize uint `toml:"pointer_size"`

	Anchors  map[string]AnchorConfig  `toml:"anchors"`
	Pointers map[string]PointerConfig `toml:"pointers"`
	Flags    RuleConfig               `toml:"flags"`
}

// AnchorConfig locates one engine singleton. The pattern is scanned for
// in the game module; the match is then turned into an address per Mode
// and Offset, and Offsets (if any) root a pointer chain there.
type AnchorConfig struct {
	Pattern string `toml:"pattern"`
	// Mode selects how a pattern match becomes an address:
	// rip_relative decodes a RIP-relative displacement inside the
	// matched instruction, absolute reads a pointer slot at the match,
	// none takes the match address itself. Defaults to rip_relative.
	Mode string `toml:"mode"`
	// RIPOffset is where the 4-byte displacement sits inside the
	// matched instruction. Defaults to 3, the usual mov/lea encoding.
	RIPOffset uint `toml:"rip_offset"`
	// InstructionLen is the full encoded instruction length the
	// displacement is relative to. Defaults to 7.
	InstructionLen uint `toml:"instruction_len"`
	// DerefOffset is where the pointer slot sits relative to the match
	// in absolute mode.
	DerefOffset int64 `toml:"deref_offset"`
	// Offset is added to the resolved address, after mode resolution.
	Offset int64 `toml:"offset"`
	// Offsets root a pointer chain at the resolved address.
	Offsets []int64 `toml:"offsets"`
	// Optional anchors may fail to resolve without failing
	// initialization; whatever depends on them degrades instead.
	Optional bool `toml:"optional"`
}

// PointerConfig derives a named pointer chain from a resolved anchor.
// The chain roots at the anchor's resolved static address, not at the
// end of the anchor's own chain.
type PointerConfig struct {
	Anchor  string  `toml:"anchor"`
	Offsets []int64 `toml:"offsets"`
}

// RuleConfig selects the flag storage rule and its parameters.
type RuleConfig struct {
	Rule                  string                 `toml:"rule"`
	CategoryDecomposition *CategoryConfig        `toml:"category_decomposition"`
	BinaryTree            *BinaryTreeConfig      `toml:"binary_tree"`
	OffsetTable           *OffsetTableConfig     `toml:"offset_table"`
	KillCounter           *KillCounterRuleConfig `toml:"kill_counter"`
}

// CategoryConfig parameterizes the DS3/Sekiro flag container: flag ids
// decompose into digit fields, and a world-info traversal maps the
// area/sub-area digits to a block category that selects the flag page.
type CategoryConfig struct {
	// Anchor naming the event flag manager singleton.
	Anchor string `toml:"anchor"`
	// FieldArea names the field area singleton the world traversal
	// starts from.
	FieldArea string `toml:"field_area"`
	// WorldOwnerOffsets walk from the field area to the world info
	// owner. DS3 uses [0x0, 0x10], Sekiro [0x18].
	WorldOwnerOffsets []int64 `toml:"world_owner_offsets"`
	// WorldInfoStride is the world info entry size. Defaults to 0x38.
	WorldInfoStride int64 `toml:"world_info_stride"`
	// WorldBlockStride is the block entry size: 0x70 on DS3 (default),
	// 0xb0 on Sekiro.
	WorldBlockStride int64 `toml:"world_block_stride"`
	// GroupTableOffset is where the per-group page table sits inside
	// the event flag manager. Defaults to 0x218.
	GroupTableOffset int64 `toml:"group_table_offset"`
	// GroupStride is the page table entry size. Defaults to 0x18.
	GroupStride int64 `toml:"group_stride"`
	// CategoryMultiplier spaces flag pages per category. Defaults to 0xa8.
	CategoryMultiplier int64 `toml:"category_multiplier"`
}

// BinaryTreeConfig parameterizes the Elden Ring/AC6 flag container, a
// red-black tree keyed by flag id divided by a stored divisor. All
// offsets are relative to the object the rule's anchor chain resolves.
type BinaryTreeConfig struct {
	Anchor string `toml:"anchor"`
	// DivisorOffset holds the i32 the flag id is divided by. Defaults to 0x1c.
	DivisorOffset int64 `toml:"divisor_offset"`
	// RootOffset holds the tree root pointer. Defaults to 0x38.
	RootOffset int64 `toml:"root_offset"`
	// MultOffset and BaseAddrOffset feed the leaf address computation
	// for inline-allocated flag blocks. Default 0x20 and 0x28.
	MultOffset     int64 `toml:"mult_offset"`
	BaseAddrOffset int64 `toml:"base_addr_offset"`
}

// OffsetTableConfig parameterizes the DS1 flag container: the flag id's
// decimal digits index fixed tables straight to a bit position.
type OffsetTableConfig struct {
	Anchor string `toml:"anchor"`
	// Groups maps the first id digit to a byte offset block.
	Groups map[string]int64 `toml:"groups"`
	// Areas maps digits 2-4 to an area index.
	Areas map[string]int64 `toml:"areas"`
}

// KillCounterRuleConfig parameterizes the DS2 rule. There is no flag
// container; flag ids are byte offsets into a table of kill counters
// and a flag is "set" when its counter is positive.
type KillCounterRuleConfig struct {
	Anchor string `toml:"anchor"`
	// Offsets chain from the anchor's static address to the counter table.
	Offsets []int64 `toml:"offsets"`
	// Bosses optionally names well-known counter offsets.
	Bosses map[string]int64 `toml:"bosses"`
}

// LoadConfig reads, normalizes and validates a TOML config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseConfig is LoadConfig for in-memory TOML data.
func ParseConfig(data string) (Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ModuleName returns the module to scan, defaulting to the first
// process name.
func (c Config) ModuleName() string {
	if c.Module != "" {
		return c.Module
	}
	if len(c.ProcessNames) > 0 {
		return c.ProcessNames[0]
	}
	return ""
}

// Is64Bit reports whether pointer slots are 8 bytes wide.
func (c Config) Is64Bit() bool {
	return c.PointerSize == 8
}

// applyDefaults fills zero values with the conventional x86-64 game
// defaults, mirroring what the per-game research assumed.
func (c *Config) applyDefaults() {
	if c.PointerSize == 0 {
		c.PointerSize = 8
	}

	for name, a := range c.Anchors {
		if a.Mode == "" {
			a.Mode = ModeRIPRelative
		}
		if a.RIPOffset == 0 {
			a.RIPOffset = 3
		}
		if a.InstructionLen == 0 {
			a.InstructionLen = 7
		}
		c.Anchors[name] = a
	}

	if cat := c.Flags.CategoryDecomposition; cat != nil {
		if len(cat.WorldOwnerOffsets) == 0 {
			cat.WorldOwnerOffsets = []int64{0x0, 0x10}
		}
		if cat.WorldInfoStride == 0 {
			cat.WorldInfoStride = 0x38
		}
		if cat.WorldBlockStride == 0 {
			cat.WorldBlockStride = 0x70
		}
		if cat.GroupTableOffset == 0 {
			cat.GroupTableOffset = 0x218
		}
		if cat.GroupStride == 0 {
			cat.GroupStride = 0x18
		}
		if cat.CategoryMultiplier == 0 {
			cat.CategoryMultiplier = 0xa8
		}
	}

	if tree := c.Flags.BinaryTree; tree != nil {
		if tree.DivisorOffset == 0 {
			tree.DivisorOffset = 0x1c
		}
		if tree.RootOffset == 0 {
			tree.RootOffset = 0x38
		}
		if tree.MultOffset == 0 {
			tree.MultOffset = 0x20
		}
		if tree.BaseAddrOffset == 0 {
			tree.BaseAddrOffset = 0x28
		}
	}

	if c.Flags.Rule == "" {
		c.Flags.Rule = RuleNone
	}
}

// Validate checks structural consistency: patterns compile, modes and
// rules are known, and every cross reference names an existing anchor.
func (c Config) Validate() error {
	if c.ModuleName() == "" {
		return fmt.Errorf("%w: no module or process names", ErrInvalidConfig)
	}
	if c.PointerSize != 4 && c.PointerSize != 8 {
		return fmt.Errorf("%w: pointer_size %d, want 4 or 8", ErrInvalidConfig, c.PointerSize)
	}

	for name, a := range c.Anchors {
		if _, err := pattern.Parse(a.Pattern); err != nil {
			return fmt.Errorf("%w: anchor %q: %v", ErrInvalidConfig, name, err)
		}
		switch a.Mode {
		case ModeRIPRelative, ModeAbsolute, ModeNone:
		default:
			return fmt.Errorf("%w: anchor %q: unknown mode %q", ErrInvalidConfig, name, a.Mode)
		}
	}

	for name, p := range c.Pointers {
		if _, ok := c.Anchors[p.Anchor]; !ok {
			return fmt.Errorf("%w: pointer %q references unknown anchor %q", ErrInvalidConfig, name, p.Anchor)
		}
	}

	return c.validateRule()
}

func (c Config) validateRule() error {
	requireAnchor := func(rule, name string) error {
		if name == "" {
			return fmt.Errorf("%w: rule %s: missing anchor", ErrInvalidConfig, rule)
		}
		if _, ok := c.Anchors[name]; !ok {
			return fmt.Errorf("%w: rule %s references unknown anchor %q", ErrInvalidConfig, rule, name)
		}
		return nil
	}

	switch c.Flags.Rule {
	case RuleNone:
		return nil

	case RuleCategoryDecomposition:
		cat := c.Flags.CategoryDecomposition
		if cat == nil {
			return fmt.Errorf("%w: rule %s has no [flags.%s] section", ErrInvalidConfig, c.Flags.Rule, c.Flags.Rule)
		}
		if err := requireAnchor(c.Flags.Rule, cat.Anchor); err != nil {
			return err
		}
		return requireAnchor(c.Flags.Rule, cat.FieldArea)

	case RuleBinaryTree:
		tree := c.Flags.BinaryTree
		if tree == nil {
			return fmt.Errorf("%w: rule %s has no [flags.%s] section", ErrInvalidConfig, c.Flags.Rule, c.Flags.Rule)
		}
		return requireAnchor(c.Flags.Rule, tree.Anchor)

	case RuleOffsetTable:
		table := c.Flags.OffsetTable
		if table == nil {
			return fmt.Errorf("%w: rule %s has no [flags.%s] section", ErrInvalidConfig, c.Flags.Rule, c.Flags.Rule)
		}
		if len(table.Groups) == 0 || len(table.Areas) == 0 {
			return fmt.Errorf("%w: rule %s needs group and area tables", ErrInvalidConfig, c.Flags.Rule)
		}
		return requireAnchor(c.Flags.Rule, table.Anchor)

	case RuleKillCounter:
		kc := c.Flags.KillCounter
		if kc == nil {
			return fmt.Errorf("%w: rule %s has no [flags.%s] section", ErrInvalidConfig, c.Flags.Rule, c.Flags.Rule)
		}
		return requireAnchor(c.Flags.Rule, kc.Anchor)

	default:
		return fmt.Errorf("%w: unknown flag rule %q", ErrInvalidConfig, c.Flags.Rule)
	}
}

// compileAnchors parses every anchor pattern once, for scanning.
func (c Config) compileAnchors() (map[string]process.AOB, error) {
	compiled := make(map[string]process.AOB, len(c.Anchors))
	for name, a := range c.Anchors {
		aob, err := pattern.Parse(a.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: anchor %q: %v", ErrInvalidConfig, name, err)
		}
		compiled[name] = aob
	}
	return compiled, nil
}
