// Package simulate implements one round of the ant colony simulator:
// stepping each ant in id order, dispatching its current instruction,
// and resolving combat after every move.
package simulate

import (
	"fmt"

	"antwars/internal/antprog"
	"antwars/internal/geometry"
	"antwars/internal/rng"
	"antwars/internal/world"
)

// LastAntID is the highest id the round loop steps: ids 0..LastAntID are
// stepped every round, with missing ids silently skipped. It is fixed at
// 181 = 2*91-1, one less than twice the maximum number of anthill cells
// a single color can have.
const LastAntID = 181

// Brains indexes the two colonies' brains by antprog.Color (Red=0,
// Black=1), matching Ant.Color as an array index.
type Brains [2]antprog.Brain

// Round steps every ant with id 0..LastAntID once, in increasing id
// order, skipping ids with no live ant.
func Round(w *world.World, brains Brains, r *rng.Random) {
	for id := 0; id <= LastAntID; id++ {
		Step(w, brains, r, uint8(id))
	}
}

// Step executes one instruction for the ant with the given id, or does
// nothing if that ant no longer exists. A resting ant just decrements
// its rest counter.
func Step(w *world.World, brains Brains, r *rng.Random, id uint8) {
	pos, ok := w.AntPos(id)
	if !ok {
		return
	}
	cell := w.Cell(pos)
	ant := cell.Ant

	if ant.Resting > 0 {
		ant.Resting--
		return
	}

	brain := brains[ant.Color]
	if int(ant.State) >= len(brain) {
		panic(fmt.Sprintf("simulate: ant %d state %d out of range for brain of length %d", ant.ID, ant.State, len(brain)))
	}
	insn := brain[ant.State]

	switch insn.Kind {
	case antprog.KindSense:
		q, valid := geometry.SensedCell(pos, ant.Dir, insn.SenseDir)
		if evalCondition(w, q, valid, ant, insn.Condition, insn.Marker) {
			ant.State = insn.St1
		} else {
			ant.State = insn.St2
		}

	case antprog.KindMark:
		cell.SetMarker(ant.Color, insn.Marker)
		ant.State = insn.St1

	case antprog.KindUnmark:
		cell.ClearMarker(ant.Color, insn.Marker)
		ant.State = insn.St1

	case antprog.KindPickUp:
		if !ant.HasFood && cell.Food > 0 {
			cell.Food--
			ant.HasFood = true
			ant.State = insn.St1
		} else {
			ant.State = insn.St2
		}

	case antprog.KindDrop:
		if ant.HasFood {
			cell.Food++
			ant.HasFood = false
		}
		ant.State = insn.St1

	case antprog.KindTurn:
		ant.Dir = geometry.Turn(insn.LR, ant.Dir)
		ant.State = insn.St1

	case antprog.KindMove:
		q, valid := geometry.Adj(pos, ant.Dir)
		if !valid || moveBlocked(w, q) {
			ant.State = insn.St2
			return
		}
		w.MoveAnt(pos, q)
		ant.Resting = 14
		ant.State = insn.St1
		combatCheck(w, q)

	case antprog.KindFlip:
		if r.Flip(uint32(insn.P)) {
			ant.State = insn.St1
		} else {
			ant.State = insn.St2
		}

	default:
		panic(fmt.Sprintf("simulate: invalid instruction kind %d", insn.Kind))
	}
}

func moveBlocked(w *world.World, q geometry.Pos) bool {
	c := w.Cell(q)
	return c.Rock || c.Ant != nil
}

// evalCondition evaluates a Sense condition at the sensed position from
// the perspective of the sensing ant's own color. An out-of-bounds
// sensed position is treated as rock.
func evalCondition(w *world.World, q geometry.Pos, valid bool, ant *world.Ant, cond antprog.SenseCondition, marker antprog.Marker) bool {
	if !valid {
		return cond == antprog.Rock
	}
	c := w.Cell(q)
	if c.Rock {
		return cond == antprog.Rock
	}
	switch cond {
	case antprog.Friend:
		return c.Ant != nil && c.Ant.Color == ant.Color
	case antprog.Foe:
		return c.Ant != nil && c.Ant.Color != ant.Color
	case antprog.FriendWithFood:
		return c.Ant != nil && c.Ant.Color == ant.Color && c.Ant.HasFood
	case antprog.FoeWithFood:
		return c.Ant != nil && c.Ant.Color != ant.Color && c.Ant.HasFood
	case antprog.Food:
		return c.Food > 0
	case antprog.Rock:
		return false
	case antprog.CondMarker:
		return c.HasMarker(ant.Color, marker)
	case antprog.FoeMarker:
		return c.AnyMarker(ant.Color.Other())
	case antprog.Home:
		return c.HasAnthill && c.Anthill == ant.Color
	case antprog.FoeHome:
		return c.HasAnthill && c.Anthill == ant.Color.Other()
	default:
		panic(fmt.Sprintf("simulate: invalid sense condition %d", cond))
	}
}

// combatCheck resolves combat at the just-moved ant's new cell and its
// six neighbors, in that order. An ant is surrounded, and dies, if its
// cell has >= 5 neighbors occupied by the opposite color. The scan uses
// a single pass over cell state as of the start of the scan: a death
// decided partway through does not change the neighbor counts used to
// decide any other death in the same scan (this resolves the spec's
// open question in favor of the safer, deterministic reading).
func combatCheck(w *world.World, moved geometry.Pos) {
	candidates := append([]geometry.Pos{moved}, geometry.Adjs(moved)...)

	var toKill []geometry.Pos
	for _, p := range candidates {
		c := w.Cell(p)
		if c.Rock || c.Ant == nil {
			continue
		}
		color := c.Ant.Color
		foes := 0
		for _, q := range geometry.Adjs(p) {
			qc := w.Cell(q)
			if !qc.Rock && qc.Ant != nil && qc.Ant.Color != color {
				foes++
			}
		}
		if foes >= 5 {
			toKill = append(toKill, p)
		}
	}

	for _, p := range toKill {
		c := w.Cell(p)
		bonus := uint16(3)
		if c.Ant.HasFood {
			bonus++
		}
		c.Food += bonus
		w.KillAnt(p)
	}
}
