package games

import (
	"sort"
	"strings"
)

// Presets returns every compiled-in preset, release order.
func Presets() []Preset {
	return []Preset{
		DarkSoulsRemastered(),
		DarkSouls2(),
		DarkSouls3(),
		Sekiro(),
		EldenRing(),
		ArmoredCore6(),
	}
}

// ByName looks a preset up by its title name, case-insensitively.
func ByName(name string) (Preset, bool) {
	for _, p := range Presets() {
		if strings.EqualFold(p.Config.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// ByProcessName looks a preset up by one of its executable names,
// case-insensitively. Executable names on Windows and under Wine can
// surface in either case.
func ByProcessName(name string) (Preset, bool) {
	for _, p := range Presets() {
		for _, pn := range p.Config.ProcessNames {
			if strings.EqualFold(pn, name) {
				return p, true
			}
		}
	}
	return Preset{}, false
}

// ProcessNames returns every executable name any preset watches for,
// sorted and deduplicated.
func ProcessNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range Presets() {
		for _, pn := range p.Config.ProcessNames {
			if !seen[pn] {
				seen[pn] = true
				names = append(names, pn)
			}
		}
	}
	sort.Strings(names)
	return names
}
