package world

import (
	"strings"
	"testing"

	"antwars/internal/antprog"
	"antwars/internal/geometry"
)

func tinyMap() string {
	return "3\n3\n# # #\n# + #\n# # #\n"
}

func TestParseMapMinimal(t *testing.T) {
	w, err := ParseMap(tinyMap())
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	if w.W != 3 || w.H != 3 {
		t.Fatalf("dims = %dx%d, want 3x3", w.W, w.H)
	}
	center := w.Cell(geometry.Pos{X: 1, Y: 1})
	if center.Rock || !center.HasAnthill || center.Anthill != antprog.Red {
		t.Errorf("center cell = %+v, want red anthill", center)
	}
	if center.Ant == nil || center.Ant.Color != antprog.Red {
		t.Errorf("expected a red ant spawned on the anthill")
	}
}

func TestParseMapForcesFrame(t *testing.T) {
	// Omit the frame: a single interior row with no surrounding rock.
	text := "1\n1\n.\n"
	w, err := ParseMap(text)
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	if !w.Cell(geometry.Pos{X: 0, Y: 0}).Rock {
		t.Errorf("single-cell map should be forced to rock (it's the frame)")
	}
}

func TestAntIndexConsistency(t *testing.T) {
	w, err := ParseMap(tinyMap())
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	p := geometry.Pos{X: 1, Y: 1}
	ant := w.Cell(p).Ant
	pos, ok := w.AntPos(ant.ID)
	if !ok || pos != p {
		t.Errorf("AntPos(%d) = %v,%v, want %v,true", ant.ID, pos, ok, p)
	}
}

func TestMoveAntIntoRockPanics(t *testing.T) {
	w, err := ParseMap(tinyMap())
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	from := geometry.Pos{X: 1, Y: 1}
	ant := w.Cell(from).Ant
	to := geometry.Pos{X: 1, Y: 1} // same cell; re-target a real neighbor below
	_ = to
	// Move isn't valid to itself; use an adjacent clear-ish cell instead.
	// In the tiny 3x3 map every neighbor is rock, so just verify the
	// invariant check panics rather than silently corrupting state.
	defer func() {
		if recover() == nil {
			t.Errorf("MoveAnt into rock should panic")
		}
	}()
	w.MoveAnt(from, geometry.Pos{X: 0, Y: 1})
	_ = ant
}

func TestDumpRoundFormat(t *testing.T) {
	w, err := ParseMap(tinyMap())
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	dump := w.DumpRound(0)
	if !strings.HasPrefix(dump, "After round 0...\n") {
		t.Errorf("dump should start with the round header, got %q", dump[:30])
	}
	if !strings.Contains(dump, "cell (1, 1): red hill; red ant of id 0, dir 0, food 0, state 0, resting 0") {
		t.Errorf("dump missing expected center-cell line:\n%s", dump)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	w, err := ParseMap(tinyMap())
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	c := w.Clone()
	p := geometry.Pos{X: 1, Y: 1}
	c.Cell(p).Food = 7
	if w.Cell(p).Food == 7 {
		t.Errorf("Clone should be a deep copy")
	}
}
