// Package games carries compiled-in flag engine presets for the
// FromSoftware titles this library has been researched against, plus a
// Game handle that bundles an attached process with its initialized
// engine and the per-title convenience reads (in-game time, player
// position, load state).
package games

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"soulmem/flags"
	"soulmem/pod"
	"soulmem/pointer"
	"soulmem/process"
)

var (
	// ErrNotTracked is returned by convenience reads the preset has no
	// pointer for: not every title exposes every quantity.
	ErrNotTracked = errors.New("not tracked for this game")

	// ErrDeadPointer is returned when a tracked pointer chain currently
	// resolves to null, typically on the main menu or during loads.
	ErrDeadPointer = errors.New("pointer chain resolves to null")
)

// Vector3 is a player world position in the game's coordinate space.
type Vector3 struct {
	X float32
	Y float32
	Z float32
}

// Preset bundles a validated flag engine config with the per-title
// quirks that live outside it.
type Preset struct {
	Config flags.Config

	// PositionAxes reorders the three raw float slots behind the
	// position pointer into world X, Y, Z. Most titles store X,Y,Z in
	// order; Dark Souls II stores Y,Z,X.
	PositionAxes [3]int
}

// bosses returns the preset's named kill counter table, if any.
func (p Preset) bosses() map[string]int64 {
	if kc := p.Config.Flags.KillCounter; kc != nil {
		return kc.Bosses
	}
	return nil
}

// Game is one attached title: the process, the initialized flag engine
// and the preset the two were built from.
type Game struct {
	preset Preset
	proc   process.Process
	engine *flags.Engine
	log    *logger.Logger
}

// AttachProcess builds the engine for preset and initializes it
// against an already-open process (live or snapshot).
func AttachProcess(proc process.Process, preset Preset) (*Game, error) {
	engine, err := flags.New(preset.Config)
	if err != nil {
		return nil, err
	}
	if err := engine.Initialize(proc); err != nil {
		return nil, err
	}

	return &Game{
		preset: preset,
		proc:   proc,
		engine: engine,
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorTeal, coloransi.ColorOrange, preset.Config.Name)),
	}, nil
}

// Attach finds the preset's process by any of its known executable
// names, opens it and initializes the engine against it.
func Attach(helper process.ProcessHelper, preset Preset) (*Game, error) {
	for _, name := range preset.Config.ProcessNames {
		proc, err := helper.OpenProcessByName(name)
		if err != nil {
			continue
		}

		game, err := AttachProcess(proc, preset)
		if err != nil {
			proc.Close()
			return nil, err
		}
		return game, nil
	}
	return nil, fmt.Errorf("no running process for %q", preset.Config.Name)
}

// AttachAny tries every preset in turn and attaches to the first one
// whose process is running.
func AttachAny(helper process.ProcessHelper) (*Game, error) {
	for _, preset := range Presets() {
		game, err := Attach(helper, preset)
		if err == nil {
			return game, nil
		}
	}
	return nil, errors.New("no supported game process found")
}

// Name returns the preset's title name.
func (g *Game) Name() string {
	return g.preset.Config.Name
}

// Process returns the attached process.
func (g *Game) Process() process.Process {
	return g.proc
}

// Engine returns the initialized flag engine.
func (g *Game) Engine() *flags.Engine {
	return g.engine
}

// Refresh re-scans the game module and rebuilds every anchor, for use
// after the game restarts or reloads. Queries keep serving the old
// state until the refresh lands.
func (g *Game) Refresh() error {
	return g.engine.Initialize(g.proc)
}

// IsFlagSet reports whether the event flag with the given id is set.
func (g *Game) IsFlagSet(id uint32) (bool, error) {
	return g.engine.IsFlagSet(id)
}

// FlagCount returns the counter behind id for titles that keep counts,
// 1/0 otherwise.
func (g *Game) FlagCount(id uint32) (int32, error) {
	return g.engine.GetCount(id)
}

// Bosses lists the boss names the preset tracks kill counts for,
// sorted for stable output.
func (g *Game) Bosses() []string {
	bosses := g.preset.bosses()
	names := make([]string, 0, len(bosses))
	for name := range bosses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KillCount returns the kill counter for a named boss.
func (g *Game) KillCount(boss string) (int32, error) {
	id, ok := g.preset.bosses()[boss]
	if !ok {
		return 0, fmt.Errorf("%w: boss %q", ErrNotTracked, boss)
	}
	return g.engine.GetCount(uint32(id))
}

// tracked returns the named pointer chain or ErrNotTracked.
func (g *Game) tracked(name string) (pointer.Chain, error) {
	chain, ok := g.engine.Pointer(name)
	if !ok {
		return pointer.Chain{}, fmt.Errorf("%w: %s", ErrNotTracked, name)
	}
	return chain, nil
}

// InGameTime returns the save file's play time. The engine-side
// counter ticks in milliseconds on every supported title.
func (g *Game) InGameTime() (time.Duration, error) {
	chain, err := g.tracked("igt")
	if err != nil {
		return 0, err
	}
	if chain.IsNull() {
		return 0, ErrDeadPointer
	}
	return time.Duration(chain.ReadINT32()) * time.Millisecond, nil
}

// Position reads the player's world position, remapped into X, Y, Z
// regardless of the title's storage order.
func (g *Game) Position() (Vector3, error) {
	chain, err := g.tracked("position")
	if err != nil {
		return Vector3{}, err
	}

	addr := chain.Resolve()
	if addr == 0 {
		return Vector3{}, ErrDeadPointer
	}

	raw, err := pod.ReadT[[3]float32](g.proc, addr)
	if err != nil {
		return Vector3{}, err
	}

	axes := g.preset.PositionAxes
	return Vector3{
		X: raw[axes[0]],
		Y: raw[axes[1]],
		Z: raw[axes[2]],
	}, nil
}

// IsLoading reports whether the game is in a loading screen, on titles
// exposing a load state byte.
func (g *Game) IsLoading() (bool, error) {
	chain, err := g.tracked("loading")
	if err != nil {
		return false, err
	}
	return chain.ReadUINT8() != 0, nil
}

// BlackscreenActive reports whether the full-screen fade overlay is up
// (death, warps, cutscene edges), on titles exposing the fade system.
func (g *Game) BlackscreenActive() (bool, error) {
	chain, err := g.tracked("blackscreen")
	if err != nil {
		return false, err
	}
	return chain.ReadFLOAT32() > 0, nil
}

// PlayerLoaded reports whether a player character is currently
// instantiated in a world.
func (g *Game) PlayerLoaded() (bool, error) {
	if chain, err := g.tracked("player_loaded"); err == nil {
		return chain.ReadINT64() != 0, nil
	}
	// Titles without a dedicated slot derive it from the player
	// instance or game data chain being alive.
	for _, name := range []string{"player_ins", "player_game_data"} {
		if chain, err := g.tracked(name); err == nil {
			return !chain.IsNull(), nil
		}
	}
	return false, ErrNotTracked
}

// NewGameLevel returns the NG+ cycle counter.
func (g *Game) NewGameLevel() (int32, error) {
	chain, err := g.tracked("ng_level")
	if err != nil {
		return 0, err
	}
	if chain.IsNull() {
		return 0, ErrDeadPointer
	}
	return chain.ReadINT32(), nil
}

// Pointer exposes a preset pointer chain by name for callers needing
// reads beyond the convenience surface.
func (g *Game) Pointer(name string) (pointer.Chain, bool) {
	return g.engine.Pointer(name)
}
