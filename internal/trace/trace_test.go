package trace

import (
	"testing"

	"antwars/internal/antprog"
	"antwars/internal/geometry"
)

// bouncingAnt moves forward forever; when blocked it turns around (three
// lefts) and tries again. Each turn is its own Call0 call site (three
// separate statements, not a loop) precisely so the three turns land on
// three distinct control states — a loop here would make all three
// turns collapse onto a single indistinguishable state, since nothing
// else about them differs.
func bouncingAnt() error {
	for {
		if err := Call0("moveOrTurn", moveOrTurn); err != nil {
			return err
		}
	}
}

func moveOrTurn() error {
	ok, err := Call1("move", Move)
	if err != nil {
		return err
	}
	if !ok {
		return Call0("turnAround", turnAround)
	}
	return nil
}

func turnAround() error {
	if err := Call0("turn", func() error { return Turn(geometry.Left) }); err != nil {
		return err
	}
	if err := Call0("turn", func() error { return Turn(geometry.Left) }); err != nil {
		return err
	}
	if err := Call0("turn", func() error { return Turn(geometry.Left) }); err != nil {
		return err
	}
	return nil
}

func TestBouncingAntCompiles(t *testing.T) {
	brain := Traverse(bouncingAnt)

	if err := brain.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(brain) > 20 {
		t.Errorf("brain length = %d, want <= 20", len(brain))
	}

	var moves, turns int
	for _, insn := range brain {
		switch insn.Kind {
		case antprog.KindMove:
			moves++
		case antprog.KindTurn:
			turns++
		}
	}
	if moves != 1 {
		t.Errorf("move count = %d, want 1", moves)
	}
	if turns != 3 {
		t.Errorf("turn count = %d, want 3", turns)
	}
}

// countingAnt drops food twice per tick, using a Var to tell the first
// drop's control state apart from the second's even though they share a
// call site: the two states differ because the counter's rendered value
// differs, not because of anything textual in the source.
func countingAnt() error {
	for {
		if err := Call0("tick", tick); err != nil {
			return err
		}
	}
}

func tick() error {
	n := NewVar("n", 0)
	defer n.Release()
	for n.Get() < 2 {
		if err := Call0("dropOnce", Drop); err != nil {
			return err
		}
		n.Set(n.Get() + 1)
	}
	return nil
}

func TestVarDistinguishesOtherwiseIdenticalStates(t *testing.T) {
	brain := Traverse(countingAnt)

	if err := brain.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(brain) != 2 {
		t.Fatalf("brain length = %d, want 2 (the var must split the two drops into distinct states)", len(brain))
	}
	for i, insn := range brain {
		if insn.Kind != antprog.KindDrop {
			t.Errorf("insn %d kind = %v, want Drop", i, insn.Kind)
		}
	}
	if brain[0].St1 != 1 {
		t.Errorf("first drop -> state %d, want 1", brain[0].St1)
	}
	if brain[1].St1 != 0 {
		t.Errorf("second drop -> state %d, want 0 (cycle restarts)", brain[1].St1)
	}
}
