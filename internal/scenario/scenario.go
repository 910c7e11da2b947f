// Package scenario holds the preset traffic patterns selectable from the CLI.
package scenario

import "sort"

// Stage is one leg of a scenario: a concurrency level held for a duration.
type Stage struct {
	ConcurrentUsers int
	DurationSeconds int
}

// Scenario is a named sequence of stages run back to back. Single-stage
// scenarios cover the common flat patterns; the ramp uses several.
type Scenario struct {
	Name        string
	Description string
	Stages      []Stage
}

var presets = map[string]Scenario{
	"normal": {
		Name:        "normal",
		Description: "Normal day traffic",
		Stages:      []Stage{{ConcurrentUsers: 50, DurationSeconds: 600}},
	},
	"flash-sale": {
		Name:        "flash-sale",
		Description: "Flash sale burst",
		Stages:      []Stage{{ConcurrentUsers: 150, DurationSeconds: 300}},
	},
	"gradual-ramp": {
		Name:        "gradual-ramp",
		Description: "Gradual ramp up",
		Stages: []Stage{
			{ConcurrentUsers: 20, DurationSeconds: 30},
			{ConcurrentUsers: 40, DurationSeconds: 30},
			{ConcurrentUsers: 60, DurationSeconds: 30},
			{ConcurrentUsers: 80, DurationSeconds: 30},
			{ConcurrentUsers: 100, DurationSeconds: 30},
		},
	},
	"stress": {
		Name:        "stress",
		Description: "High load stress test",
		Stages:      []Stage{{ConcurrentUsers: 200, DurationSeconds: 180}},
	},
}

// Lookup returns the named preset.
func Lookup(name string) (Scenario, bool) {
	s, ok := presets[name]
	return s, ok
}

// Names lists available presets in sorted order, for CLI help text.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
