package world

import (
	"fmt"
	"strconv"
	"strings"

	"antwars/internal/antprog"
	"antwars/internal/geometry"
)

// ParseMap reads the world-file grammar: two lines of decimal
// dimensions X and Y, then Y rows of X space-separated tokens (`#` rock,
// `.` empty clear, `+` red anthill, `-` black anthill, a decimal food
// count). Odd rows are indented by one half-cell in the source text, but
// since tokens are whitespace-separated that indentation is invisible to
// this tokenizer. Ants are spawned in row-major scan order as anthill
// cells are encountered. The frame (row 0, row Y-1, col 0, col X-1) is
// forced to Rock if the input omits it.
func ParseMap(text string) (*World, error) {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("world: map file too short, need dimension header")
	}
	x, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return nil, fmt.Errorf("world: bad X dimension %q: %w", lines[0], err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(lines[1]))
	if err != nil {
		return nil, fmt.Errorf("world: bad Y dimension %q: %w", lines[1], err)
	}
	if x <= 0 || y <= 0 {
		return nil, fmt.Errorf("world: dimensions must be positive, got %dx%d", x, y)
	}

	rows := lines[2:]
	w := New(x, y)

	for row := 0; row < y; row++ {
		if row >= len(rows) {
			return nil, fmt.Errorf("world: expected %d rows of map data, file has %d", y, len(rows))
		}
		tokens := strings.Fields(rows[row])
		if len(tokens) != x {
			return nil, fmt.Errorf("world: row %d has %d tokens, want %d", row, len(tokens), x)
		}
		for col := 0; col < x; col++ {
			p := geometry.Pos{X: uint8(col), Y: uint8(row)}
			cell, err := parseToken(tokens[col])
			if err != nil {
				return nil, fmt.Errorf("world: row %d col %d: %w", row, col, err)
			}
			w.SetCell(p, cell)
		}
	}

	forceFrame(w)

	// Spawn ants on anthill cells, in row-major scan order.
	for row := 0; row < y; row++ {
		for col := 0; col < x; col++ {
			p := geometry.Pos{X: uint8(col), Y: uint8(row)}
			cell := w.Cell(p)
			if !cell.Rock && cell.HasAnthill {
				w.SpawnAnt(p, cell.Anthill)
			}
		}
	}

	return w, nil
}

func parseToken(tok string) (Cell, error) {
	switch tok {
	case "#":
		return Cell{Rock: true}, nil
	case ".":
		return Cell{}, nil
	case "+":
		return Cell{HasAnthill: true, Anthill: antprog.Red}, nil
	case "-":
		return Cell{HasAnthill: true, Anthill: antprog.Black}, nil
	default:
		n, err := strconv.ParseUint(tok, 10, 16)
		if err != nil {
			return Cell{}, fmt.Errorf("bad map token %q", tok)
		}
		return Cell{Food: uint16(n)}, nil
	}
}

// forceFrame makes the outer ring of the map Rock, inserting it if the
// input omitted it, per the world invariant that the outer frame is
// always Rock.
func forceFrame(w *World) {
	for col := 0; col < w.W; col++ {
		w.SetCell(geometry.Pos{X: uint8(col), Y: 0}, Cell{Rock: true})
		w.SetCell(geometry.Pos{X: uint8(col), Y: uint8(w.H - 1)}, Cell{Rock: true})
	}
	for row := 0; row < w.H; row++ {
		w.SetCell(geometry.Pos{X: 0, Y: uint8(row)}, Cell{Rock: true})
		w.SetCell(geometry.Pos{X: uint8(w.W - 1), Y: uint8(row)}, Cell{Rock: true})
	}
}
