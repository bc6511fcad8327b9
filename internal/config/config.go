// Package config loads the tournament/vis-server YAML configuration:
// RNG seeds, where map and brain files live, and the visualiser's
// listen address. It is adapted from reinforcement.FromYaml's
// viper-then-yaml.v3 double-unmarshal: viper reads the outer
// `kind`/`def` envelope (so a config directory can hold more than one
// kind of document), and the `def` payload is re-marshalled and decoded
// a second time, with yaml.v3, into the concrete Go struct.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// outerDoc is the `kind: tournament` / `def: {...}` envelope every
// config file is wrapped in.
type outerDoc struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Tournament holds everything the tournament driver and vis-server need
// beyond what's on the command line: the fixed seed list (one per map,
// popped in order, matching tournament.rs's behavior), and the
// filesystem layout of maps and ant-brain files.
type Tournament struct {
	// Seeds is popped from the back, one per map, same as the original
	// tournament entry point's `seeds.pop()`.
	Seeds []uint32 `mapstructure:"seeds" yaml:"seeds"`

	// MapsDir holds *.world map files; tiny.world is conventionally
	// excluded from full tournament runs.
	MapsDir string `mapstructure:"mapsDir" yaml:"mapsDir"`

	// BrainsDir holds *.ant brain files, named by the ant identifiers
	// passed on the command line.
	BrainsDir string `mapstructure:"brainsDir" yaml:"brainsDir"`

	// VisServerAddr is the listen address for the vis-server entry
	// point, e.g. "127.0.0.1:8000".
	VisServerAddr string `mapstructure:"visServerAddr" yaml:"visServerAddr"`

	// RoundsPerMatch is the number of simulator rounds a full match
	// runs before scoring, matching full_match's fixed iteration count.
	RoundsPerMatch int `mapstructure:"roundsPerMatch" yaml:"roundsPerMatch"`
}

// DefaultTournament mirrors the original tournament entry point's
// hard-coded seed list and round count, for callers with no config file.
func DefaultTournament() *Tournament {
	return &Tournament{
		Seeds:          []uint32{12345, 98765, 3566235, 375688, 864532, 42, 563845, 2071995, 8673, 35481},
		MapsDir:        "data",
		BrainsDir:      "data",
		VisServerAddr:  "127.0.0.1:8000",
		RoundsPerMatch: 100000,
	}
}

// FromYaml reads path, decodes the outer envelope with viper, and
// re-decodes its `def` payload with yaml.v3 into a Tournament.
func FromYaml(path string) (*Tournament, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var outer outerDoc
	if err := vp.Unmarshal(&outer); err != nil {
		return nil, fmt.Errorf("config: unmarshalling envelope: %w", err)
	}
	if outer.Kind != "" && outer.Kind != "tournament" {
		return nil, fmt.Errorf("config: unsupported config kind %q", outer.Kind)
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, fmt.Errorf("config: re-marshalling def: %w", err)
	}

	cfg := DefaultTournament()
	if err := yaml.Unmarshal(spec, cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling tournament config: %w", err)
	}
	return cfg, nil
}
