// Command antwars is the CLI entry point for the simulator, tournament
// driver, and HTTP visualiser: a no-frills subcommand table, the same
// shape as the original tool's build-time-generated ENTRY_POINTS table,
// adapted to Go as a plain map registered in init().
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"antwars/internal/antprog"
	"antwars/internal/config"
	"antwars/internal/geometry"
	"antwars/internal/rng"
	"antwars/internal/simulate"
	"antwars/internal/structured"
	"antwars/internal/tournament"
	"antwars/internal/trace"
	"antwars/internal/visserver"
	"antwars/internal/world"
)

// entryPoints maps a subcommand name to its handler. Registered in
// init(), same place the teacher registers its flags.
var entryPoints map[string]func([]string) error

func init() {
	entryPoints = map[string]func([]string) error{
		"run-match":          runMatchEP,
		"tournament":         tournamentEP,
		"vis-server":         visServerEP,
		"compile-structured": compileStructuredEP,
		"compile-trace":      compileTraceEP,
		"dump-trace":         dumpTraceEP,
		"dump-match":         dumpMatchEP,
	}
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	ep, ok := entryPoints[args[0]]
	if !ok {
		fmt.Printf("entry point %q not found.\n", args[0])
		printUsage()
		os.Exit(1)
	}
	if err := ep(args[1:]); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("possible entry points:")
	names := make([]string, 0, len(entryPoints))
	for name := range entryPoints {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(" -", name)
	}
}

// runMatchEP plays one full match between two named brains on one map
// and prints the winner.
func runMatchEP(args []string) error {
	fs := flag.NewFlagSet("run-match", flag.ContinueOnError)
	seed := fs.Uint("seed", 12345, "RNG seed")
	rounds := fs.Int("rounds", 100000, "rounds to play")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 3 {
		return fmt.Errorf("usage: run-match [-seed N] [-rounds N] <world> <red.ant> <black.ant>")
	}
	w, err := readWorld(rest[0])
	if err != nil {
		return err
	}
	red, err := readBrain(rest[1])
	if err != nil {
		return err
	}
	black, err := readBrain(rest[2])
	if err != nil {
		return err
	}

	r := rng.New(uint32(*seed))
	winner, ok := tournament.FullMatch(w, simulate.Brains{red, black}, r, *rounds)
	if !ok {
		fmt.Println("match result: draw")
		return nil
	}
	fmt.Printf("match result: %s wins\n", winner)
	return nil
}

// tournamentEP runs every map in the configured maps directory (minus
// tiny.world) against a named pair of brains, same shape as
// tournament_ep: two optional positional ant names, defaulting to
// "example_from_spec".
func tournamentEP(args []string) error {
	fs := flag.NewFlagSet("tournament", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a tournament config yaml (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	ant1, ant2 := "example_from_spec", "example_from_spec"
	if len(rest) > 0 {
		ant1 = rest[0]
	}
	if len(rest) > 1 {
		ant2 = rest[1]
	}

	cfg := config.DefaultTournament()
	if *configPath != "" {
		var err error
		cfg, err = config.FromYaml(*configPath)
		if err != nil {
			return err
		}
	}

	maps, err := listMaps(cfg.MapsDir)
	if err != nil {
		return err
	}
	redBrain, err := readBrain(filepath.Join(cfg.BrainsDir, ant1+".ant"))
	if err != nil {
		return err
	}
	blackBrain, err := readBrain(filepath.Join(cfg.BrainsDir, ant2+".ant"))
	if err != nil {
		return err
	}

	seeds := cfg.Seeds
	jobs := make([]tournament.Job, 0, len(maps))
	for _, mapPath := range maps {
		if len(seeds) == 0 {
			return fmt.Errorf("tournament: config has fewer seeds than maps (%d maps, ran out at %s)", len(maps), mapPath)
		}
		seed := seeds[len(seeds)-1]
		seeds = seeds[:len(seeds)-1]

		w, err := readWorld(mapPath)
		if err != nil {
			return err
		}
		jobs = append(jobs, tournament.Job{
			Name:   mapPath,
			World:  w,
			Brains: simulate.Brains{redBrain, blackBrain},
			Seed:   seed,
			Rounds: cfg.RoundsPerMatch,
		})
	}

	results, total, err := tournament.RunAll(context.Background(), jobs)
	if err != nil {
		return err
	}
	for _, res := range results {
		fmt.Printf("score on %s - %s %d : %d %s\n", res.Name, ant1, res.Score.Red, res.Score.Black, ant2)
	}
	fmt.Printf("final scores: %s %d, %s %d\n", ant1, total.Red, ant2, total.Black)
	return nil
}

// visServerEP starts the HTTP visualiser and blocks until it exits.
func visServerEP(args []string) error {
	fs := flag.NewFlagSet("vis-server", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a tournament config yaml (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.DefaultTournament()
	if *configPath != "" {
		var err error
		cfg, err = config.FromYaml(*configPath)
		if err != nil {
			return err
		}
	}

	srv := visserver.NewServer()
	log.Printf("vis-server listening on %s", cfg.VisServerAddr)
	return http.ListenAndServe(cfg.VisServerAddr, srv.Routes())
}

// compileStructuredEP compiles the canonical bouncing ant with the
// combinator compiler and writes its brain text to the given path.
func compileStructuredEP(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: compile-structured <out.ant>")
	}
	brain := structured.Compile(structuredBouncingAnt)
	return os.WriteFile(args[0], []byte(brain.Dump()), 0o644)
}

// compileTraceEP compiles traceBouncingAnt, a food-carrying variant of
// the bouncing ant, with the trace compiler and writes its brain text to
// the given path.
func compileTraceEP(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: compile-trace <out.ant>")
	}
	brain := trace.Traverse(traceBouncingAnt)
	return os.WriteFile(args[0], []byte(brain.Dump()), 0o644)
}

// dumpTraceEP reads a compiled brain file and prints each instruction
// with its state index, for eyeballing what a compiler produced.
func dumpTraceEP(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: dump-trace <brain.ant>")
	}
	brain, err := readBrain(args[0])
	if err != nil {
		return err
	}
	for i, insn := range brain {
		fmt.Printf("%3d: %s\n", i, insn)
	}
	return nil
}

// dumpMatchEP replays a match round by round, writing the full cell-by-
// cell world state after every round to out, in the same "cell (x, y):
// <description>" golden-file format world.DumpRound renders. Grounded
// on the original tool's dump_ep, which re-dumps the whole board after
// every one of 10000 rounds for offline diffing.
func dumpMatchEP(args []string) error {
	fs := flag.NewFlagSet("dump-match", flag.ContinueOnError)
	seed := fs.Uint("seed", 12345, "RNG seed")
	rounds := fs.Int("rounds", 10000, "rounds to dump")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 4 {
		return fmt.Errorf("usage: dump-match [-seed N] [-rounds N] <world> <red.ant> <black.ant> <out>")
	}
	w, err := readWorld(rest[0])
	if err != nil {
		return err
	}
	red, err := readBrain(rest[1])
	if err != nil {
		return err
	}
	black, err := readBrain(rest[2])
	if err != nil {
		return err
	}

	f, err := os.Create(rest[3])
	if err != nil {
		return fmt.Errorf("main: creating %s: %w", rest[3], err)
	}
	defer f.Close()

	fmt.Fprintf(f, "random seed: %d\n", *seed)
	r := rng.New(uint32(*seed))
	brains := simulate.Brains{red, black}
	for round := 0; round <= *rounds; round++ {
		fmt.Fprintln(f)
		fmt.Fprint(f, w.DumpRound(round))
		simulate.Round(w, brains, r)
	}
	return nil
}

// structuredBouncingAnt is the structured-compiler version of the
// bouncing ant described in spec.md §8: move forward; if blocked, turn
// around (three lefts) and try again next round.
func structuredBouncingAnt() {
	structured.Sense(geometry.Ahead, antprog.Rock, 0, func() {
		structured.Turn(geometry.Left)
		structured.Turn(geometry.Left)
		structured.Turn(geometry.Left)
	}, func() {
		structured.Move()
	})
}

// traceBouncingAnt is a richer demonstration of the trace compiler: an
// ant that walks in a straight line, picking up food where it stands
// and dropping it at home, turning around whenever it picks up, drops,
// or walks into an obstacle. Turning around at an obstacle picks a
// random direction instead of always reversing.
func traceBouncingAnt() error {
	hasFood := trace.NewVar("hasFood", false)
	defer hasFood.Release()

	for {
		if hasFood.Get() {
			atHome, err := trace.Call1("senseHome", func() (bool, error) {
				return trace.Sense(geometry.Here, antprog.Home, 0)
			})
			if err != nil {
				return err
			}
			if atHome {
				if err := trace.Call0("drop", trace.Drop); err != nil {
					return err
				}
				hasFood.Set(false)
				if err := trace.Call0("turnAround", traceTurnAround); err != nil {
					return err
				}
			}
		} else {
			atFood, err := trace.Call1("senseFood", func() (bool, error) {
				return trace.Sense(geometry.Here, antprog.Food, 0)
			})
			if err != nil {
				return err
			}
			if atFood {
				picked, err := trace.Call1("pickUp", trace.PickUp)
				if err != nil {
					return err
				}
				if picked {
					hasFood.Set(true)
					if err := trace.Call0("turnAround", traceTurnAround); err != nil {
						return err
					}
				}
			}
		}

		moved, err := trace.Call1("move", trace.Move)
		if err != nil {
			return err
		}
		if !moved {
			if err := trace.Call0("randomTurn", traceRandomTurn); err != nil {
				return err
			}
		}
	}
}

// traceTurnAround is three lefts, written as three distinct Call0
// statements (not a loop) so the trace compiler sees three distinct
// control states rather than collapsing them into one.
func traceTurnAround() error {
	if err := trace.Call0("turn", func() error { return trace.Turn(geometry.Left) }); err != nil {
		return err
	}
	if err := trace.Call0("turn", func() error { return trace.Turn(geometry.Left) }); err != nil {
		return err
	}
	if err := trace.Call0("turn", func() error { return trace.Turn(geometry.Left) }); err != nil {
		return err
	}
	return nil
}

// traceRandomTurn picks one of four turn amounts with equal probability
// via two coin flips, same shape as the original bouncing ant's
// random_turn.
func traceRandomTurn() error {
	left, err := trace.Call1("flip2a", func() (bool, error) { return trace.Flip(2) })
	if err != nil {
		return err
	}
	if left {
		lr, err := trace.Call1("flip2b", func() (bool, error) { return trace.Flip(2) })
		if err != nil {
			return err
		}
		if lr {
			return trace.Call0("turn", func() error { return trace.Turn(geometry.Left) })
		}
		return trace.Call0("turn", func() error { return trace.Turn(geometry.Right) })
	}

	lr, err := trace.Call1("flip2c", func() (bool, error) { return trace.Flip(2) })
	if err != nil {
		return err
	}
	if lr {
		if err := trace.Call0("turn", func() error { return trace.Turn(geometry.Left) }); err != nil {
			return err
		}
		return trace.Call0("turn", func() error { return trace.Turn(geometry.Left) })
	}
	if err := trace.Call0("turn", func() error { return trace.Turn(geometry.Right) }); err != nil {
		return err
	}
	return trace.Call0("turn", func() error { return trace.Turn(geometry.Right) })
}

func readWorld(path string) (*world.World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("main: reading world %s: %w", path, err)
	}
	return world.ParseMap(string(data))
}

func readBrain(path string) (antprog.Brain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("main: reading brain %s: %w", path, err)
	}
	return antprog.ParseBrain(string(data))
}

// listMaps returns every *.world file in dir except tiny.world, which
// the original tournament entry point excludes as a smoke-test map too
// small for a real match.
func listMaps(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("main: reading maps dir %s: %w", dir, err)
	}
	var maps []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".world" {
			continue
		}
		if e.Name() == "tiny.world" {
			continue
		}
		maps = append(maps, filepath.Join(dir, e.Name()))
	}
	sort.Strings(maps)
	return maps, nil
}
