package antprog

import (
	"strings"
	"testing"

	"antwars/internal/geometry"
)

func TestParseInstructionExamples(t *testing.T) {
	cases := []struct {
		line string
		want Instruction
	}{
		{"Sense Ahead 1 3 Foe", Sense(geometry.Ahead, 1, 3, Foe, 0)},
		{"Mark 2 4", Mark(2, 4)},
		{"Flip 3 1 0", Flip(3, 1, 0)},
		{" droP  42  ; zzz", Drop(42)},
	}
	for _, c := range cases {
		got, err := ParseInstruction(c.line)
		if err != nil {
			t.Fatalf("ParseInstruction(%q): %v", c.line, err)
		}
		if got != c.want {
			t.Errorf("ParseInstruction(%q) = %+v, want %+v", c.line, got, c.want)
		}
	}
}

func TestDumpRoundTrip(t *testing.T) {
	src := "Sense Ahead 1 3 Foe\nMark 2 4\nFlip 3 1 0\nSense Here 0 1 Marker 5\n"
	brain, err := ParseBrain(src)
	if err != nil {
		t.Fatalf("ParseBrain: %v", err)
	}
	got := brain.Dump()
	wantLines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	gotLines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(wantLines) != len(gotLines) {
		t.Fatalf("line count mismatch: got %d, want %d", len(gotLines), len(wantLines))
	}
	for i := range wantLines {
		if !strings.EqualFold(wantLines[i], gotLines[i]) {
			t.Errorf("line %d: got %q, want %q", i, gotLines[i], wantLines[i])
		}
	}
}

func TestValidateCatchesOutOfRangeState(t *testing.T) {
	brain := Brain{Drop(5)}
	if err := brain.Validate(); err == nil {
		t.Errorf("Validate should reject a brain referencing an out-of-range state")
	}
}

func TestNewMarkerPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewMarker(6) should panic")
		}
	}()
	NewMarker(6)
}
