// Package antprog is the flat ant-program model: the instruction set ants
// are compiled to and interpreted from, independent of how a brain was
// produced (hand-written text, the structured compiler, or the trace
// compiler).
package antprog

import (
	"fmt"

	"antwars/internal/geometry"
)

// Color is one of the two competing colonies.
type Color uint8

const (
	Red Color = iota
	Black
)

// Other flips a color.
func (c Color) Other() Color {
	if c == Red {
		return Black
	}
	return Red
}

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// Marker is a 3-bit index, in [0,6), identifying one of the six marker
// bits a color may set on a cell.
type Marker uint8

// NewMarker validates i is in range and returns it as a Marker. Panics
// (a runtime-invariant violation per the engine's error strata) if not.
func NewMarker(i int) Marker {
	if i < 0 || i >= 6 {
		panic(fmt.Sprintf("antprog: marker index %d out of range [0,6)", i))
	}
	return Marker(i)
}

func (m Marker) String() string {
	return fmt.Sprintf("%d", uint8(m))
}

// SenseCondition is the predicate a Sense instruction tests at the sensed
// cell.
type SenseCondition uint8

const (
	Friend SenseCondition = iota
	Foe
	FriendWithFood
	FoeWithFood
	Food
	Rock
	CondMarker // paired with a Marker field on the condition-carrying instruction
	FoeMarker
	Home
	FoeHome
)

func (c SenseCondition) String() string {
	switch c {
	case Friend:
		return "Friend"
	case Foe:
		return "Foe"
	case FriendWithFood:
		return "FriendWithFood"
	case FoeWithFood:
		return "FoeWithFood"
	case Food:
		return "Food"
	case Rock:
		return "Rock"
	case CondMarker:
		return "Marker"
	case FoeMarker:
		return "FoeMarker"
	case Home:
		return "Home"
	case FoeHome:
		return "FoeHome"
	default:
		return fmt.Sprintf("SenseCondition(%d)", uint8(c))
	}
}

// State is a 16-bit index into a Brain's instruction table.
type State uint16

func (s State) String() string {
	return fmt.Sprintf("%d", uint16(s))
}

// Kind discriminates the Instruction tagged variant.
type Kind uint8

const (
	KindSense Kind = iota
	KindMark
	KindUnmark
	KindPickUp
	KindDrop
	KindTurn
	KindMove
	KindFlip
)

// Instruction is the tagged-union of the eight ant primitives. Only the
// fields relevant to Kind are meaningful; this flattened layout (rather
// than eight separate Go types) is what lets the simulator and both
// compilers dispatch on a single exhaustive switch over Kind, matching
// the "tagged variants, not class hierarchies" design of the model.
type Instruction struct {
	Kind Kind

	SenseDir  geometry.SenseDir
	Condition SenseCondition
	Marker    Marker
	LR        geometry.LR
	P         uint16 // Flip's probability denominator

	St1 State // success / then / first transition
	St2 State // failure / else / second transition (unused by 1-branch kinds)
}

// Sense builds a Sense instruction.
func Sense(sd geometry.SenseDir, st1, st2 State, cond SenseCondition, marker Marker) Instruction {
	return Instruction{Kind: KindSense, SenseDir: sd, St1: st1, St2: st2, Condition: cond, Marker: marker}
}

// Mark builds a Mark instruction.
func Mark(m Marker, st State) Instruction {
	return Instruction{Kind: KindMark, Marker: m, St1: st}
}

// Unmark builds an Unmark instruction.
func Unmark(m Marker, st State) Instruction {
	return Instruction{Kind: KindUnmark, Marker: m, St1: st}
}

// PickUp builds a PickUp instruction.
func PickUp(st1, st2 State) Instruction {
	return Instruction{Kind: KindPickUp, St1: st1, St2: st2}
}

// Drop builds a Drop instruction.
func Drop(st State) Instruction {
	return Instruction{Kind: KindDrop, St1: st}
}

// TurnInsn builds a Turn instruction.
func TurnInsn(lr geometry.LR, st State) Instruction {
	return Instruction{Kind: KindTurn, LR: lr, St1: st}
}

// Move builds a Move instruction.
func Move(st1, st2 State) Instruction {
	return Instruction{Kind: KindMove, St1: st1, St2: st2}
}

// Flip builds a Flip instruction with probability denominator p.
func Flip(p uint16, st1, st2 State) Instruction {
	return Instruction{Kind: KindFlip, P: p, St1: st1, St2: st2}
}

// NumTransitions reports how many successor-state slots this instruction
// carries: two for Sense/PickUp/Move/Flip, one for the rest.
func (i Instruction) NumTransitions() int {
	switch i.Kind {
	case KindSense, KindPickUp, KindMove, KindFlip:
		return 2
	default:
		return 1
	}
}

// Transitions returns the instruction's successor states, in St1, St2
// order (St2 omitted for 1-branch instructions).
func (i Instruction) Transitions() []State {
	if i.NumTransitions() == 2 {
		return []State{i.St1, i.St2}
	}
	return []State{i.St1}
}

// WithTransitions returns a copy of i with its successor states replaced,
// in the same order Transitions returns them.
func (i Instruction) WithTransitions(states []State) Instruction {
	out := i
	out.St1 = states[0]
	if len(states) > 1 {
		out.St2 = states[1]
	}
	return out
}

// Brain is an ant's complete instruction table; state 0 is its initial
// state.
type Brain []Instruction

// Validate checks the brain invariants: every transition state is within
// bounds, and every marker index is in [0,6) (the latter is already
// guaranteed by construction via NewMarker, but is re-checked here for
// brains built by hand or by a foreign parser).
func (b Brain) Validate() error {
	for idx, insn := range b {
		for _, st := range insn.Transitions() {
			if int(st) >= len(b) {
				return fmt.Errorf("antprog: instruction %d references out-of-range state %d (brain has %d states)", idx, st, len(b))
			}
		}
		usesMarker := insn.Kind == KindMark || insn.Kind == KindUnmark ||
			(insn.Kind == KindSense && insn.Condition == CondMarker)
		if usesMarker && insn.Marker > 5 {
			return fmt.Errorf("antprog: instruction %d has marker index %d out of range", idx, insn.Marker)
		}
	}
	return nil
}
