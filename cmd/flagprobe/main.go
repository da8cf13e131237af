// flagprobe attaches to a supported game (live or via a saved dump)
// and answers event flag queries from the command line.
//
//	flagprobe                                # attach to whatever is running, print a summary
//	flagprobe -game "Elden Ring" 60100 60120 # query specific flag ids
//	flagprobe -snapshot ./dumps/boss 11010   # same, against a dump
//	flagprobe -config mygame.toml -pid 1234  # custom config against a pid
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"soulmem/flags"
	"soulmem/games"
	"soulmem/process"
	"soulmem/process_blob"
)

func main() {
	snapshotFlag := flag.String("snapshot", "", "load a saved dump directory instead of attaching live")
	pidFlag := flag.Int("pid", 0, "attach to a specific process ID")
	gameFlag := flag.String("game", "", "preset name (e.g. \"Dark Souls III\")")
	configFlag := flag.String("config", "", "TOML flag config to use instead of a compiled-in preset")
	flag.Parse()

	game, err := attach(*snapshotFlag, *pidFlag, *gameFlag, *configFlag)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Attached: %s\n", game.Name())

	if flag.NArg() == 0 {
		printSummary(game)
		return
	}

	for _, arg := range flag.Args() {
		id, err := strconv.ParseUint(arg, 0, 32)
		if err != nil {
			fmt.Printf("%s: not a flag id\n", arg)
			continue
		}
		set, err := game.IsFlagSet(uint32(id))
		if err != nil {
			fmt.Printf("%d: %v\n", id, err)
			continue
		}
		count, _ := game.FlagCount(uint32(id))
		fmt.Printf("%d: set=%v count=%d\n", id, set, count)
	}
}

func attach(snapshot string, pid int, gameName, configPath string) (*games.Game, error) {
	var proc process.Process
	var processName string

	switch {
	case snapshot != "":
		snap, err := process_blob.LoadSnapshot(snapshot)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		proc = snap
		processName = snap.Name()

	case pid != 0:
		p, err := getProcess(process.ProcessID(pid))
		if err != nil {
			return nil, fmt.Errorf("attach pid %d: %w", pid, err)
		}
		proc = p
	}

	preset, err := pickPreset(gameName, configPath, processName)
	if err != nil {
		return nil, err
	}

	if proc == nil {
		if preset != nil {
			return games.Attach(getHelper(), *preset)
		}
		return games.AttachAny(getHelper())
	}
	if preset == nil {
		return nil, fmt.Errorf("cannot pick a preset for this target, use -game or -config")
	}
	return games.AttachProcess(proc, *preset)
}

// pickPreset resolves the preset from, in priority order, an explicit
// config file, an explicit preset name, or the target's process name.
func pickPreset(gameName, configPath, processName string) (*games.Preset, error) {
	if configPath != "" {
		cfg, err := flags.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		return &games.Preset{Config: cfg, PositionAxes: [3]int{0, 1, 2}}, nil
	}
	if gameName != "" {
		preset, ok := games.ByName(gameName)
		if !ok {
			return nil, fmt.Errorf("no preset named %q", gameName)
		}
		return &preset, nil
	}
	if processName != "" {
		preset, ok := games.ByProcessName(processName)
		if !ok {
			return nil, fmt.Errorf("no preset for process %q, use -game or -config", processName)
		}
		return &preset, nil
	}
	return nil, nil
}

func printSummary(game *games.Game) {
	if igt, err := game.InGameTime(); err == nil {
		fmt.Printf("  in-game time: %s\n", igt)
	}
	if ng, err := game.NewGameLevel(); err == nil {
		fmt.Printf("  new game level: %d\n", ng)
	}
	if pos, err := game.Position(); err == nil {
		fmt.Printf("  position: %.2f %.2f %.2f\n", pos.X, pos.Y, pos.Z)
	}
	if loading, err := game.IsLoading(); err == nil {
		fmt.Printf("  loading: %v\n", loading)
	}
	if loaded, err := game.PlayerLoaded(); err == nil {
		fmt.Printf("  player loaded: %v\n", loaded)
	}
	for _, boss := range game.Bosses() {
		if count, err := game.KillCount(boss); err == nil && count > 0 {
			fmt.Printf("  %s: %d\n", boss, count)
		}
	}
}
