// Package structured is the combinator-style brain compiler: callers
// build a program out of nested Go closures (Sense/Flip branch into two
// sub-programs, everything else is a straight-line step), and Compile
// flattens the call tree into a antprog.Brain with every forward jump
// patched to the address of the instruction that follows it.
//
// This mirrors the structured_compiler.rs design: instructions are
// appended as they're emitted, each one carrying "fixup" slots (shared
// handles) for its not-yet-known successor state(s); those slots get
// patched in once the following instruction (or the implicit top-level
// loop, for the very last one) is known. Rust's Rc<RefCell<State>>
// shared handle becomes a plain *antprog.State pointer in Go, and the
// Rust thread_local compiler context becomes a package-level context
// guarded by a mutex: Compile calls from different goroutines run one at
// a time, and an ant function must not itself call Compile.
package structured

import (
	"fmt"
	"sync"

	"antwars/internal/antprog"
	"antwars/internal/geometry"
)

const invalidState antprog.State = 0xFFFF

// fixup is a shared handle to a not-yet-known successor state. Several
// instruction slots may point at the same fixup (e.g. PickUp's success
// and failure slots, which this API always joins).
type fixup = *antprog.State

func makeFixup() fixup {
	s := invalidState
	return &s
}

func resolve(fx fixup) antprog.State {
	if *fx == invalidState {
		panic("structured: fixup never patched (missing fixup() call before compile finished)")
	}
	return *fx
}

// fixableInstruction mirrors antprog.Instruction but with fixup handles
// in place of concrete States.
type fixableInstruction struct {
	kind antprog.Kind

	senseDir  geometry.SenseDir
	condition antprog.SenseCondition
	marker    antprog.Marker
	lr        geometry.LR
	p         uint16

	st1, st2 fixup
}

func (fi fixableInstruction) resolve() antprog.Instruction {
	switch fi.kind {
	case antprog.KindSense:
		return antprog.Sense(fi.senseDir, resolve(fi.st1), resolve(fi.st2), fi.condition, fi.marker)
	case antprog.KindMark:
		return antprog.Mark(fi.marker, resolve(fi.st1))
	case antprog.KindUnmark:
		return antprog.Unmark(fi.marker, resolve(fi.st1))
	case antprog.KindPickUp:
		return antprog.PickUp(resolve(fi.st1), resolve(fi.st2))
	case antprog.KindDrop:
		return antprog.Drop(resolve(fi.st1))
	case antprog.KindTurn:
		return antprog.TurnInsn(fi.lr, resolve(fi.st1))
	case antprog.KindMove:
		return antprog.Move(resolve(fi.st1), resolve(fi.st2))
	case antprog.KindFlip:
		return antprog.Flip(fi.p, resolve(fi.st1), resolve(fi.st2))
	default:
		panic(fmt.Sprintf("structured: invalid kind %d", fi.kind))
	}
}

type compilerCtx struct {
	insns []fixableInstruction

	// fixups holds the jump-address handles that should be patched to
	// the address of the logically next instruction. There may be more
	// than one pending: both arms of an if/else join at the same next
	// instruction, and that can compound across nested if/else.
	fixups []fixup
}

func newCompilerCtx() *compilerCtx {
	return &compilerCtx{}
}

func (c *compilerCtx) patchTo(state antprog.State) {
	for _, fx := range c.fixups {
		*fx = state
	}
	c.fixups = nil
}

// fixup patches all pending fixups to the address of the instruction
// about to be appended.
func (c *compilerCtx) fixup() {
	c.patchTo(antprog.State(len(c.insns)))
}

// fixupMainloop patches all pending fixups to state 0: the implicit
// top-level loop every compiled brain ends with.
func (c *compilerCtx) fixupMainloop() {
	c.patchTo(antprog.State(0))
}

// setFixup registers a single fresh fixup as the sole pending one.
func (c *compilerCtx) setFixup() fixup {
	if len(c.fixups) != 0 {
		panic("structured: setFixup called with fixups already pending")
	}
	fx := makeFixup()
	c.fixups = append(c.fixups, fx)
	return fx
}

func (c *compilerCtx) toBrain() antprog.Brain {
	out := make(antprog.Brain, len(c.insns))
	for i, fi := range c.insns {
		out[i] = fi.resolve()
	}
	return out
}

var (
	mu  sync.Mutex
	ctx *compilerCtx
)

func current() *compilerCtx {
	if ctx == nil {
		panic("structured: builder function called outside Compile")
	}
	return ctx
}

// withFixup appends a single-successor instruction, fixing up whatever
// was pending to point at it and leaving a fresh fixup pending for
// whatever comes next.
func withFixup(build func(fx fixup) fixableInstruction) {
	c := current()
	c.fixup()
	fx := c.setFixup()
	c.insns = append(c.insns, build(fx))
}

// twoBranch appends a two-successor instruction and compiles branch1 and
// branch2 as the two sub-programs reached by it, joining their pending
// fixups so the instruction that follows the whole if/else patches both.
func twoBranch(branch1, branch2 func(), build func(fx1, fx2 fixup) fixableInstruction) {
	c := current()
	fixup1 := makeFixup()
	fixup2 := makeFixup()

	c.fixup()
	c.insns = append(c.insns, build(fixup1, fixup2))
	c.fixups = []fixup{fixup1}

	branch1()

	fixupsAfterBranch1 := c.fixups
	c.fixups = []fixup{fixup2}

	branch2()

	c.fixups = append(c.fixups, fixupsAfterBranch1...)
}

// Mark emits a Mark instruction.
func Mark(m antprog.Marker) {
	withFixup(func(fx fixup) fixableInstruction {
		return fixableInstruction{kind: antprog.KindMark, marker: m, st1: fx}
	})
}

// Unmark emits an Unmark instruction.
func Unmark(m antprog.Marker) {
	withFixup(func(fx fixup) fixableInstruction {
		return fixableInstruction{kind: antprog.KindUnmark, marker: m, st1: fx}
	})
}

// PickUp emits a PickUp instruction. The structured builder doesn't
// expose branching on pickup failure: both outcomes continue to the
// same next instruction.
func PickUp() {
	withFixup(func(fx fixup) fixableInstruction {
		return fixableInstruction{kind: antprog.KindPickUp, st1: fx, st2: fx}
	})
}

// Drop emits a Drop instruction.
func Drop() {
	withFixup(func(fx fixup) fixableInstruction {
		return fixableInstruction{kind: antprog.KindDrop, st1: fx}
	})
}

// Turn emits a Turn instruction.
func Turn(lr geometry.LR) {
	withFixup(func(fx fixup) fixableInstruction {
		return fixableInstruction{kind: antprog.KindTurn, lr: lr, st1: fx}
	})
}

// Move emits a Move instruction. Like PickUp, blocked and successful
// moves continue to the same next instruction in this builder.
func Move() {
	withFixup(func(fx fixup) fixableInstruction {
		return fixableInstruction{kind: antprog.KindMove, st1: fx, st2: fx}
	})
}

// Sense emits a Sense instruction, compiling branch1 as the
// condition-true continuation and branch2 as the condition-false one.
// marker is only meaningful when cond is antprog.CondMarker.
func Sense(dir geometry.SenseDir, cond antprog.SenseCondition, marker antprog.Marker, branch1, branch2 func()) {
	twoBranch(branch1, branch2, func(fx1, fx2 fixup) fixableInstruction {
		return fixableInstruction{kind: antprog.KindSense, senseDir: dir, condition: cond, marker: marker, st1: fx1, st2: fx2}
	})
}

// Flip emits a Flip instruction with probability denominator n,
// compiling branch1 as the 1/n continuation and branch2 as the rest.
func Flip(n uint16, branch1, branch2 func()) {
	twoBranch(branch1, branch2, func(fx1, fx2 fixup) fixableInstruction {
		return fixableInstruction{kind: antprog.KindFlip, p: n, st1: fx1, st2: fx2}
	})
}

// Compile runs ant, which builds a program by calling Mark/Sense/Move/
// etc., and flattens it into a antprog.Brain with an implicit top-level
// loop: whatever the program's last pending fixups are, they're patched
// to state 0 rather than left dangling.
//
// Compile takes an exclusive lock for its whole duration: ant must not
// itself call Compile, and two goroutines must not call Compile at once.
func Compile(ant func()) antprog.Brain {
	mu.Lock()
	defer mu.Unlock()

	ctx = newCompilerCtx()
	ant()
	ctx.fixupMainloop()
	brain := ctx.toBrain()
	ctx = nil
	return brain
}
