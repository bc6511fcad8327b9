package world

import (
	"fmt"
	"strconv"
	"strings"

	"antwars/internal/antprog"
)

// DumpRound renders the golden-file textual dump format for round r:
// a header line, then one "cell (x, y): <desc>" line per cell, sorted
// by (y, x).
func (w *World) DumpRound(r int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "After round %d...\n", r)
	for _, p := range w.Positions() {
		fmt.Fprintf(&sb, "cell (%d, %d): %s\n", p.X, p.Y, describeCell(w.Cell(p)))
	}
	return sb.String()
}

func describeCell(c *Cell) string {
	if c.Rock {
		return "rock"
	}

	var sb strings.Builder
	if c.Food > 0 {
		fmt.Fprintf(&sb, "%d food; ", c.Food)
	}
	if c.HasAnthill {
		if c.Anthill == antprog.Red {
			sb.WriteString("red hill; ")
		} else {
			sb.WriteString("black hill; ")
		}
	}
	if c.AnyMarker(antprog.Red) {
		sb.WriteString("red marks: " + markerDigits(c.Markers[antprog.Red]) + "; ")
	}
	if c.AnyMarker(antprog.Black) {
		sb.WriteString("black marks: " + markerDigits(c.Markers[antprog.Black]) + "; ")
	}
	if c.Ant != nil {
		a := c.Ant
		food := 0
		if a.HasFood {
			food = 1
		}
		fmt.Fprintf(&sb, "%s ant of id %d, dir %d, food %d, state %d, resting %d",
			a.Color, a.ID, a.Dir, food, a.State, a.Resting)
	}
	return sb.String()
}

func markerDigits(bits uint8) string {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		if bits&(1<<uint(i)) != 0 {
			sb.WriteString(strconv.Itoa(i))
		}
	}
	return sb.String()
}
