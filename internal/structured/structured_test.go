package structured

import (
	"testing"

	"antwars/internal/antprog"
	"antwars/internal/geometry"
)

func TestCompileStraightLine(t *testing.T) {
	brain := Compile(func() {
		Mark(antprog.NewMarker(0))
		Drop()
	})

	if err := brain.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(brain) != 2 {
		t.Fatalf("len(brain) = %d, want 2", len(brain))
	}
	if brain[0].Kind != antprog.KindMark || brain[0].St1 != 1 {
		t.Errorf("insn 0 = %+v, want Mark -> state 1", brain[0])
	}
	if brain[1].Kind != antprog.KindDrop || brain[1].St1 != 0 {
		t.Errorf("insn 1 = %+v, want Drop -> state 0 (implicit main loop)", brain[1])
	}
}

func TestCompileBranching(t *testing.T) {
	// Ported from structured_compiler.rs's test_ant: sense a marker
	// ahead; if set, turn left, move, and pick up; otherwise flip a
	// coin and drop on the losing branch.
	brain := Compile(func() {
		Sense(geometry.Ahead, antprog.CondMarker, antprog.NewMarker(1), func() {
			Turn(geometry.Left)
			Move()
			PickUp()
		}, func() {
			Flip(3, func() {
				// do nothing
			}, func() {
				Drop()
			})
		})
	})

	if err := brain.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(brain) != 6 {
		t.Fatalf("len(brain) = %d, want 6, got %+v", len(brain), brain)
	}

	wantKinds := []antprog.Kind{
		antprog.KindSense,
		antprog.KindTurn,
		antprog.KindMove,
		antprog.KindPickUp,
		antprog.KindFlip,
		antprog.KindDrop,
	}
	for i, k := range wantKinds {
		if brain[i].Kind != k {
			t.Errorf("insn %d kind = %v, want %v", i, brain[i].Kind, k)
		}
	}

	sense := brain[0]
	if sense.St1 != 1 {
		t.Errorf("sense true-branch = %d, want 1 (Turn)", sense.St1)
	}
	if sense.St2 != 4 {
		t.Errorf("sense false-branch = %d, want 4 (Flip)", sense.St2)
	}

	pickup := brain[3]
	if pickup.St1 != 0 || pickup.St2 != 0 {
		t.Errorf("pickup = %+v, want both branches -> state 0 (implicit main loop)", pickup)
	}

	flip := brain[4]
	if flip.St1 != 0 {
		t.Errorf("flip 1/3 branch (do nothing) = %d, want 0 (implicit main loop)", flip.St1)
	}
	if flip.St2 != 5 {
		t.Errorf("flip else-branch = %d, want 5 (Drop)", flip.St2)
	}

	drop := brain[5]
	if drop.St1 != 0 {
		t.Errorf("drop = %+v, want state 0 (implicit main loop)", drop)
	}
}

func TestCompileIsReentrantAcrossCalls(t *testing.T) {
	// Compile must reset its context between calls; compiling twice in a
	// row shouldn't leak fixups or instructions from the first call.
	first := Compile(func() { Drop() })
	second := Compile(func() { Mark(antprog.NewMarker(2)); Drop() })

	if len(first) != 1 {
		t.Errorf("first brain len = %d, want 1", len(first))
	}
	if len(second) != 2 {
		t.Errorf("second brain len = %d, want 2", len(second))
	}
}
