// Package world holds the hex-grid map the simulator runs on: cells,
// food, marker trails, ants, anthills, and the id->position spatial
// index that makes "where is ant i?" an O(1) lookup.
package world

import (
	"fmt"

	"antwars/internal/antprog"
	"antwars/internal/geometry"
)

// Ant is a single finite-state automaton occupying a cell.
type Ant struct {
	ID      uint8
	Color   antprog.Color
	State   antprog.State
	Resting uint8
	Dir     geometry.Dir
	HasFood bool
}

// Cell is either Rock, or Clear with food, markers, an optional anthill
// label, and an optional ant occupant.
type Cell struct {
	Rock bool

	Food       uint16
	HasAnthill bool
	Anthill    antprog.Color

	// Markers[c] is the 6-bit marker bitset color c has set on this cell.
	Markers [2]uint8

	Ant *Ant
}

// HasMarker reports whether color c has set marker i on this cell.
func (c *Cell) HasMarker(color antprog.Color, i antprog.Marker) bool {
	return c.Markers[color]&(1<<uint(i)) != 0
}

// SetMarker sets marker i in color's bitset on this cell.
func (c *Cell) SetMarker(color antprog.Color, i antprog.Marker) {
	c.Markers[color] |= 1 << uint(i)
}

// ClearMarker clears marker i in color's bitset on this cell.
func (c *Cell) ClearMarker(color antprog.Color, i antprog.Marker) {
	c.Markers[color] &^= 1 << uint(i)
}

// AnyMarker reports whether color c has any marker bit set on this cell.
func (c *Cell) AnyMarker(color antprog.Color) bool {
	return c.Markers[color] != 0
}

// World is a rectangular grid of cells plus the ant_id->position index
// that backs O(1) "where is ant i" lookups.
type World struct {
	W, H int

	cells []Cell // row-major, index = y*W + x

	antPos map[uint8]geometry.Pos
	nextID uint8
}

// New returns an empty W x H world: every cell Rock. Callers build up
// the map with SetCell / SpawnAnt.
func New(w, h int) *World {
	cells := make([]Cell, w*h)
	for i := range cells {
		cells[i].Rock = true
	}
	return &World{
		W:      w,
		H:      h,
		cells:  cells,
		antPos: make(map[uint8]geometry.Pos),
	}
}

func (w *World) idx(p geometry.Pos) int {
	return int(p.Y)*w.W + int(p.X)
}

// InBounds reports whether p lies within this world's W x H extent.
func (w *World) InBounds(p geometry.Pos) bool {
	return int(p.X) < w.W && int(p.Y) < w.H
}

// Cell returns a pointer to the cell at p. Panics if p is out of bounds
// (a runtime-invariant violation: callers must bounds-check first).
func (w *World) Cell(p geometry.Pos) *Cell {
	if !w.InBounds(p) {
		panic(fmt.Sprintf("world: position %v out of bounds (%dx%d)", p, w.W, w.H))
	}
	return &w.cells[w.idx(p)]
}

// SetCell overwrites the cell at p.
func (w *World) SetCell(p geometry.Pos, c Cell) {
	w.cells[w.idx(p)] = c
}

// AntPos returns the position of the ant with the given id, and false
// if no such ant is alive.
func (w *World) AntPos(id uint8) (geometry.Pos, bool) {
	p, ok := w.antPos[id]
	return p, ok
}

// SpawnAnt places a new ant of the given color on the anthill cell at p,
// assigning it the next sequential id. The cell must already be a
// same-color anthill with no occupant.
func (w *World) SpawnAnt(p geometry.Pos, color antprog.Color) *Ant {
	cell := w.Cell(p)
	if cell.Rock || !cell.HasAnthill || cell.Anthill != color {
		panic(fmt.Sprintf("world: cannot spawn %v ant at %v: not a %v anthill", color, p, color))
	}
	if cell.Ant != nil {
		panic(fmt.Sprintf("world: cannot spawn ant at %v: already occupied", p))
	}
	ant := &Ant{
		ID:      w.nextID,
		Color:   color,
		State:   0,
		Resting: 0,
		Dir:     geometry.E,
		HasFood: false,
	}
	w.nextID++
	cell.Ant = ant
	w.antPos[ant.ID] = p
	return ant
}

// SpawnAntRaw places a new ant of the given color directly on a clear
// cell with no anthill requirement, for tests and tools that need to
// seed ants at arbitrary positions (the tournament's normal path is
// SpawnAnt, which enforces the anthill invariant).
func (w *World) SpawnAntRaw(p geometry.Pos, color antprog.Color) *Ant {
	cell := w.Cell(p)
	if cell.Rock {
		panic(fmt.Sprintf("world: cannot spawn ant on rock at %v", p))
	}
	if cell.Ant != nil {
		panic(fmt.Sprintf("world: cannot spawn ant at %v: already occupied", p))
	}
	ant := &Ant{
		ID:      w.nextID,
		Color:   color,
		State:   0,
		Resting: 0,
		Dir:     geometry.E,
		HasFood: false,
	}
	w.nextID++
	cell.Ant = ant
	w.antPos[ant.ID] = p
	return ant
}

// MoveAnt relocates the ant at `from` to `to`, updating both the grid
// and the ant index. `to` must be empty and not Rock.
func (w *World) MoveAnt(from, to geometry.Pos) {
	src := w.Cell(from)
	if src.Ant == nil {
		panic(fmt.Sprintf("world: no ant at %v to move", from))
	}
	dst := w.Cell(to)
	if dst.Rock || dst.Ant != nil {
		panic(fmt.Sprintf("world: cannot move ant to %v: blocked", to))
	}
	ant := src.Ant
	src.Ant = nil
	dst.Ant = ant
	w.antPos[ant.ID] = to
}

// KillAnt removes the ant at p (it has been surrounded) from the grid and
// the ant index. It does not change the cell's food: the caller adds the
// combat bounty, including the food the dead ant carried.
func (w *World) KillAnt(p geometry.Pos) {
	cell := w.Cell(p)
	if cell.Ant == nil {
		panic(fmt.Sprintf("world: no ant at %v to kill", p))
	}
	delete(w.antPos, cell.Ant.ID)
	cell.Ant = nil
}

// FoodAtAnthill sums the food sitting on every anthill cell of the given
// color: the tournament's scoring function.
func (w *World) FoodAtAnthill(color antprog.Color) int {
	total := 0
	for i := range w.cells {
		c := &w.cells[i]
		if !c.Rock && c.HasAnthill && c.Anthill == color {
			total += int(c.Food)
		}
	}
	return total
}

// Clone returns a deep copy of w, used by the tournament driver to play
// the two matches of a pairing from the same starting world.
func (w *World) Clone() *World {
	out := &World{
		W:      w.W,
		H:      w.H,
		cells:  make([]Cell, len(w.cells)),
		antPos: make(map[uint8]geometry.Pos, len(w.antPos)),
		nextID: w.nextID,
	}
	for i, c := range w.cells {
		cc := c
		if c.Ant != nil {
			a := *c.Ant
			cc.Ant = &a
		}
		out.cells[i] = cc
	}
	for id, p := range w.antPos {
		out.antPos[id] = p
	}
	return out
}

// Positions iterates every position in the grid in row-major (y, then
// x) order, the order the round dump and the anthill/rock scans use.
func (w *World) Positions() []geometry.Pos {
	out := make([]geometry.Pos, 0, len(w.cells))
	for y := 0; y < w.H; y++ {
		for x := 0; x < w.W; x++ {
			out = append(out, geometry.Pos{X: uint8(x), Y: uint8(y)})
		}
	}
	return out
}
