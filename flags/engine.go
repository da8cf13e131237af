package flags

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"soulmem/pattern"
	"soulmem/pointer"
	"soulmem/process"
	"soulmem/process/memory_map"
)

var (
	// ErrInvalidConfig marks errors in the config itself: malformed
	// patterns, unknown modes or rules, dangling references. These are
	// permanent until the config changes.
	ErrInvalidConfig = errors.New("invalid flag config")

	// ErrAnchorNotFound marks a required anchor pattern that did not
	// match the target. Unlike config errors this is a property of the
	// attached process (wrong version, wrong binary) and a later
	// Initialize against another target can succeed.
	ErrAnchorNotFound = errors.New("anchor pattern not found")

	// ErrNotInitialized is returned by queries before the first
	// successful Initialize.
	ErrNotInitialized = errors.New("flag engine not initialized")
)

// Decoder answers flag queries against an attached target. One decoder
// exists per flag storage rule; all are stateless between calls, every
// query re-walks the live pointer web.
type Decoder interface {
	// IsFlagSet reports whether the flag is set. Unresolvable ids
	// (dead chains, ids outside the container) read as unset.
	IsFlagSet(id uint32) bool

	// GetCount returns the counter behind the id where the rule has
	// one (kill counters), otherwise 1 or 0 mirroring IsFlagSet.
	GetCount(id uint32) int32
}

// State is one immutable attachment: resolved anchors, derived
// pointers and the decoder, all bound to a single process. Queries
// serve from whichever State was current when they started, so a
// concurrent re-Initialize never tears an in-flight query.
type State struct {
	proc     process.Process
	module   memory_map.ModuleRegion
	anchors  map[string]pointer.Chain
	pointers map[string]pointer.Chain
	decoder  Decoder
}

// Module returns the scanned module region.
func (s *State) Module() memory_map.ModuleRegion {
	return s.module
}

// Engine owns a validated config and, after Initialize, an immutable
// State it swaps atomically on re-attachment.
type Engine struct {
	log   *logger.Logger
	cfg   Config
	aobs  map[string]process.AOB
	state atomic.Pointer[State]
}

// New validates cfg and builds an engine ready to Initialize.
func New(cfg Config) (*Engine, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	aobs, err := cfg.compileAnchors()
	if err != nil {
		return nil, err
	}

	return &Engine{
		log:  logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "flags")),
		cfg:  cfg,
		aobs: aobs,
	}, nil
}

// Config returns the engine's normalized config.
func (e *Engine) Config() Config {
	return e.cfg
}

// Initialize scans proc's game module for every anchor, resolves them,
// builds the rule decoder and swaps the new state in. Required anchors
// that fail are fatal; optional ones are skipped with a warning and
// everything referencing them degrades to unresolved.
//
// Initialize may be called again at any time (new process, after a
// game restart); queries keep working against the previous state until
// the swap.
func (e *Engine) Initialize(proc process.Process) error {
	module, err := proc.FindModule(e.cfg.ModuleName())
	if err != nil {
		return fmt.Errorf("module %q: %w", e.cfg.ModuleName(), err)
	}
	return e.InitializeModule(proc, module)
}

// InitializeModule is Initialize with the scan region supplied by the
// caller, for targets where the module cannot be located by name
// (manually mapped images, partial dumps with no path metadata).
func (e *Engine) InitializeModule(proc process.Process, module memory_map.ModuleRegion) error {
	e.log.Infoln("scanning", module.Path, "at", fmt.Sprintf("0x%X", module.Address), "size", module.Size)

	is64 := e.cfg.Is64Bit()
	moduleBase := process.ProcessMemoryAddress(module.Address)
	moduleSize := process.ProcessMemorySize(module.Size)

	anchors := make(map[string]pointer.Chain, len(e.cfg.Anchors))
	for name, acfg := range e.cfg.Anchors {
		match, err := pattern.ScanRegionFirst(proc, moduleBase, moduleSize, e.aobs[name])
		if err != nil {
			if acfg.Optional {
				e.log.Warn("optional anchor", name, "not found")
				continue
			}
			return fmt.Errorf("anchor %q: %w", name, ErrAnchorNotFound)
		}

		base, err := resolveAnchor(proc, match, acfg)
		if err != nil {
			if acfg.Optional {
				e.log.Warn("optional anchor", name, "did not resolve:", err)
				continue
			}
			return fmt.Errorf("anchor %q: resolve: %w", name, err)
		}

		anchors[name] = pointer.New(proc, is64, base, acfg.Offsets...)
		e.log.Debugln("anchor", name, "at", base.ToString())
	}

	pointers := make(map[string]pointer.Chain, len(e.cfg.Pointers))
	for name, pcfg := range e.cfg.Pointers {
		anchor, ok := anchors[pcfg.Anchor]
		if !ok {
			e.log.Warn("pointer", name, "skipped, anchor", pcfg.Anchor, "unresolved")
			continue
		}
		pointers[name] = pointer.New(proc, is64, anchor.Base(), pcfg.Offsets...)
	}

	decoder, err := buildDecoder(e.cfg, proc, is64, anchors)
	if err != nil {
		return err
	}

	e.state.Store(&State{
		proc:     proc,
		module:   module,
		anchors:  anchors,
		pointers: pointers,
		decoder:  decoder,
	})
	e.log.Infoln("initialized", e.cfg.Name, "with", len(anchors), "anchors, rule", e.cfg.Flags.Rule)
	return nil
}

// resolveAnchor turns a pattern match address into the anchor's static
// address per the configured mode, plus the flat extra offset.
func resolveAnchor(mem process.MemoryReader, match process.ProcessMemoryAddress, cfg AnchorConfig) (process.ProcessMemoryAddress, error) {
	var base process.ProcessMemoryAddress
	var err error

	switch cfg.Mode {
	case ModeRIPRelative:
		base, err = pattern.ResolveRIPRelative(mem, match, cfg.RIPOffset, cfg.InstructionLen)
	case ModeAbsolute:
		base, err = pattern.ResolveDeref(mem, match, cfg.DerefOffset)
	case ModeNone:
		base = match
	default:
		err = fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, cfg.Mode)
	}
	if err != nil {
		return 0, err
	}

	return base.AddOffset(cfg.Offset), nil
}

// buildDecoder wires the configured rule to its resolved anchors. The
// rule set is closed; Validate has already rejected unknown names.
func buildDecoder(cfg Config, mem process.MemoryReader, is64 bool, anchors map[string]pointer.Chain) (Decoder, error) {
	ruleAnchor := func(rule, name string) (pointer.Chain, error) {
		anchor, ok := anchors[name]
		if !ok {
			return pointer.Chain{}, fmt.Errorf("rule %s: anchor %q: %w", rule, name, ErrAnchorNotFound)
		}
		return anchor, nil
	}

	switch cfg.Flags.Rule {
	case RuleNone:
		return noneDecoder{}, nil

	case RuleCategoryDecomposition:
		cat := cfg.Flags.CategoryDecomposition
		man, err := ruleAnchor(cfg.Flags.Rule, cat.Anchor)
		if err != nil {
			return nil, err
		}
		fieldArea, err := ruleAnchor(cfg.Flags.Rule, cat.FieldArea)
		if err != nil {
			return nil, err
		}
		return newCategoryDecoder(mem, is64, man, fieldArea, *cat), nil

	case RuleBinaryTree:
		tree := cfg.Flags.BinaryTree
		anchor, err := ruleAnchor(cfg.Flags.Rule, tree.Anchor)
		if err != nil {
			return nil, err
		}
		return newBinaryTreeDecoder(mem, anchor, *tree), nil

	case RuleOffsetTable:
		table := cfg.Flags.OffsetTable
		anchor, err := ruleAnchor(cfg.Flags.Rule, table.Anchor)
		if err != nil {
			return nil, err
		}
		return newOffsetTableDecoder(mem, anchor, *table), nil

	case RuleKillCounter:
		kc := cfg.Flags.KillCounter
		anchor, err := ruleAnchor(cfg.Flags.Rule, kc.Anchor)
		if err != nil {
			return nil, err
		}
		counters := pointer.New(mem, is64, anchor.Base(), kc.Offsets...)
		return &killCounterDecoder{counters: counters}, nil

	default:
		return nil, fmt.Errorf("%w: unknown flag rule %q", ErrInvalidConfig, cfg.Flags.Rule)
	}
}

func (e *Engine) current() (*State, error) {
	s := e.state.Load()
	if s == nil {
		return nil, ErrNotInitialized
	}
	return s, nil
}

// IsFlagSet reports whether the flag with the given id is set in the
// attached target.
func (e *Engine) IsFlagSet(id uint32) (bool, error) {
	s, err := e.current()
	if err != nil {
		return false, err
	}
	return s.decoder.IsFlagSet(id), nil
}

// GetCount returns the counter behind id for rules that track counts,
// 1/0 otherwise.
func (e *Engine) GetCount(id uint32) (int32, error) {
	s, err := e.current()
	if err != nil {
		return 0, err
	}
	return s.decoder.GetCount(id), nil
}

// Anchor returns the resolved chain for a named anchor.
func (e *Engine) Anchor(name string) (pointer.Chain, bool) {
	s := e.state.Load()
	if s == nil {
		return pointer.Chain{}, false
	}
	anchor, ok := s.anchors[name]
	return anchor, ok
}

// Pointer returns the derived chain for a named pointer.
func (e *Engine) Pointer(name string) (pointer.Chain, bool) {
	s := e.state.Load()
	if s == nil {
		return pointer.Chain{}, false
	}
	p, ok := s.pointers[name]
	return p, ok
}

// Module returns the scanned module region of the current attachment.
func (e *Engine) Module() (memory_map.ModuleRegion, error) {
	s, err := e.current()
	if err != nil {
		return memory_map.ModuleRegion{}, err
	}
	return s.module, nil
}

// noneDecoder serves configs that only use anchors and pointers
// (position tracking, timers) with no flag container at all.
type noneDecoder struct{}

func (noneDecoder) IsFlagSet(id uint32) bool { return false }
func (noneDecoder) GetCount(id uint32) int32 { return 0 }

func boolCount(set bool) int32 {
	if set {
		return 1
	}
	return 0
}
