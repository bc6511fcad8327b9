// Package geometry implements the offset hex-coordinate grid the ant
// colony simulator runs on: directions, turns, adjacency, and the
// direction a Sense instruction looks in.
package geometry

import "fmt"

// Dir is one of the six hex directions, cyclically ordered E, SE, SW, W,
// NW, NE.
type Dir uint8

const (
	E Dir = iota
	SE
	SW
	W
	NW
	NE
)

func (d Dir) String() string {
	switch d {
	case E:
		return "East"
	case SE:
		return "Southeast"
	case SW:
		return "Southwest"
	case W:
		return "West"
	case NW:
		return "Northwest"
	case NE:
		return "Northeast"
	default:
		return fmt.Sprintf("Dir(%d)", uint8(d))
	}
}

// Cw rotates d by offset steps clockwise, offset in [0,6).
func (d Dir) Cw(offset uint8) Dir {
	return Dir((uint8(d) + offset) % 6)
}

// LR is a left/right turn.
type LR uint8

const (
	Left LR = iota
	Right
)

func (lr LR) String() string {
	if lr == Left {
		return "Left"
	}
	return "Right"
}

// Turn rotates dir by one step per lr: left is cw(5) (i.e. one step
// counter-clockwise), right is cw(1).
func Turn(lr LR, dir Dir) Dir {
	if lr == Left {
		return dir.Cw(5)
	}
	return dir.Cw(1)
}

// SenseDir is the direction a Sense instruction looks relative to the
// sensing ant's own orientation.
type SenseDir uint8

const (
	Here SenseDir = iota
	Ahead
	LeftAhead
	RightAhead
)

func (sd SenseDir) String() string {
	switch sd {
	case Here:
		return "Here"
	case Ahead:
		return "Ahead"
	case LeftAhead:
		return "LeftAhead"
	case RightAhead:
		return "RightAhead"
	default:
		return fmt.Sprintf("SenseDir(%d)", uint8(sd))
	}
}

// Pos is a position in the 100x100 grid. Both coordinates are 8-bit and
// must be in [0,100) to be valid (see Pos.Valid).
type Pos struct {
	X, Y uint8
}

const GridSize = 100

// Valid reports whether p lies within the fixed 100x100 grid.
func (p Pos) Valid() bool {
	return p.X < GridSize && p.Y < GridSize
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

func even(y uint8) bool {
	return y%2 == 0
}

// Adj returns the neighbor of p in direction d, and false if that
// neighbor would leave the grid. Offsets depend on the row parity of p.Y,
// per the offset hex-coordinate convention used by this map.
func Adj(p Pos, d Dir) (Pos, bool) {
	x, y := int(p.X), int(p.Y)
	switch d {
	case E:
		return clamp(x+1, y)
	case W:
		return clamp(x-1, y)
	case SE:
		if even(p.Y) {
			return clamp(x, y+1)
		}
		return clamp(x+1, y+1)
	case SW:
		if even(p.Y) {
			return clamp(x-1, y+1)
		}
		return clamp(x, y+1)
	case NW:
		if even(p.Y) {
			return clamp(x-1, y-1)
		}
		return clamp(x, y-1)
	case NE:
		if even(p.Y) {
			return clamp(x, y-1)
		}
		return clamp(x+1, y-1)
	default:
		panic(fmt.Sprintf("geometry: invalid direction %d", d))
	}
}

func clamp(x, y int) (Pos, bool) {
	if x < 0 || y < 0 || x >= GridSize || y >= GridSize {
		return Pos{}, false
	}
	return Pos{X: uint8(x), Y: uint8(y)}, true
}

// Adjs returns all six neighbors of p, in direction-enum order, omitting
// any that would leave the grid.
func Adjs(p Pos) []Pos {
	out := make([]Pos, 0, 6)
	for d := E; d <= NE; d++ {
		if q, ok := Adj(p, d); ok {
			out = append(out, q)
		}
	}
	return out
}

// SensedCell resolves the cell a Sense instruction with direction sd
// reads, given the sensing ant's position p and orientation d.
func SensedCell(p Pos, d Dir, sd SenseDir) (Pos, bool) {
	switch sd {
	case Here:
		return p, true
	case Ahead:
		return Adj(p, d)
	case LeftAhead:
		return Adj(p, Turn(Left, d))
	case RightAhead:
		return Adj(p, Turn(Right, d))
	default:
		panic(fmt.Sprintf("geometry: invalid sense direction %d", sd))
	}
}

