package main

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"antwars/internal/antprog"
	"antwars/internal/structured"
	"antwars/internal/trace"
)

func TestEntryPointTable(t *testing.T) {
	Convey("Given the CLI entry point table", t, func() {
		Convey("It registers every documented subcommand", func() {
			for _, name := range []string{
				"run-match", "tournament", "vis-server",
				"compile-structured", "compile-trace", "dump-trace", "dump-match",
			} {
				So(entryPoints[name], ShouldNotBeNil)
			}
		})
	})
}

func TestListMapsExcludesTinyAndNonWorldFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.world", "b.world", "tiny.world", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}

	maps, err := listMaps(dir)
	if err != nil {
		t.Fatalf("listMaps: %v", err)
	}

	want := []string{filepath.Join(dir, "a.world"), filepath.Join(dir, "b.world")}
	if len(maps) != len(want) {
		t.Fatalf("maps = %v, want %v", maps, want)
	}
	for i := range want {
		if maps[i] != want[i] {
			t.Errorf("maps[%d] = %q, want %q", i, maps[i], want[i])
		}
	}
}

func TestStructuredBouncingAntCompilesAndRoundTrips(t *testing.T) {
	brain := structured.Compile(structuredBouncingAnt)
	if err := brain.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	dumped := brain.Dump()
	reparsed, err := antprog.ParseBrain(dumped)
	if err != nil {
		t.Fatalf("ParseBrain(Dump()): %v", err)
	}
	if len(reparsed) != len(brain) {
		t.Errorf("round-tripped brain has %d instructions, want %d", len(reparsed), len(brain))
	}
}

func TestTraceBouncingAntCompilesAndRoundTrips(t *testing.T) {
	brain := trace.Traverse(traceBouncingAnt)
	if err := brain.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	dumped := brain.Dump()
	reparsed, err := antprog.ParseBrain(dumped)
	if err != nil {
		t.Fatalf("ParseBrain(Dump()): %v", err)
	}
	if len(reparsed) != len(brain) {
		t.Errorf("round-tripped brain has %d instructions, want %d", len(reparsed), len(brain))
	}
}
