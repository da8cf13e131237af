// Walkthrough: load a saved game dump (see cmd/snapsave), attach the
// matching preset and query flags, timers and position. Everything here
// works identically against a live process opened with the platform
// helper, e.g.:
//
//	game, err := games.AttachAny(process_linux.NewHelper())
package main

import (
	"fmt"
	"os"

	"soulmem/games"
	"soulmem/pod"
	"soulmem/process_blob"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: example <dump-dir>")
		os.Exit(1)
	}

	snap, err := process_blob.LoadSnapshot(os.Args[1])
	if err != nil {
		fmt.Printf("load snapshot: %v\n", err)
		os.Exit(1)
	}

	preset, ok := games.ByProcessName(snap.Name())
	if !ok {
		fmt.Printf("no preset for %q\n", snap.Name())
		os.Exit(1)
	}

	game, err := games.AttachProcess(snap, preset)
	if err != nil {
		fmt.Printf("attach: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("attached:", game.Name())

	// Event flags are queried by id; which ids exist is per-title
	// knowledge (cheat tables, speedrun autosplitter configs).
	for _, id := range []uint32{11010, 13000050, 60100} {
		if set, err := game.IsFlagSet(id); err == nil {
			fmt.Printf("flag %d: %v\n", id, set)
		}
	}

	if igt, err := game.InGameTime(); err == nil {
		fmt.Println("in-game time:", igt)
	}
	if pos, err := game.Position(); err == nil {
		fmt.Printf("position: %.2f %.2f %.2f\n", pos.X, pos.Y, pos.Z)
	}
	for _, boss := range game.Bosses() {
		count, _ := game.KillCount(boss)
		fmt.Printf("%s: %d kills\n", boss, count)
	}

	// Named pointer chains stay available for reads beyond the
	// convenience surface; pod handles whole structs.
	if chain, ok := game.Pointer("player_game_data"); ok && !chain.IsNull() {
		type levelBlock struct {
			Level uint32
			Souls uint32
		}
		if block, err := pod.ReadT[levelBlock](snap, chain.Resolve()); err == nil {
			fmt.Printf("level %d, souls %d\n", block.Level, block.Souls)
		}
	}
}
