// Package trace is the "magic" compiler: an ant is written as an
// ordinary imperative Go function that calls the primitive operations
// below, and Traverse discovers every reachable control state by
// re-running that function from scratch, over and over, each time
// handing it one more prerecorded outcome than the last. A primitive
// that runs out of prerecorded outcomes suspends: it returns a
// *SuspensionError carrying the instruction it was about to execute and
// a snapshot of the logical call stack, instead of executing it.
//
// This ports magic.rs's call!/var! macro pair, which Go has no syntactic
// equivalent for, to explicit generic wrappers: Call0/Call1 replace
// call!, and Var[T] replaces var!. Where Rust relied on Drop to release
// a var's stack slot at scope exit, Go callers call Var.Release via
// defer, which is the idiomatic replacement for RAII here and satisfies
// the same "release on every exit path" discipline.
//
// Rust's thread_local compiler context becomes a package-level context
// guarded by a mutex, exactly as in the structured package: Traverse is
// not reentrant across goroutines, and an ant function must not itself
// call Traverse.
package trace

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"antwars/internal/antprog"
	"antwars/internal/geometry"
)

// Loc is a call site: the file and line of a Call0/Call1 invocation.
type Loc struct {
	File string
	Line int
}

type varEntry struct {
	name  string
	value string
}

type stackFrame struct {
	caller Loc
	fnName string
	vars   []varEntry
}

type pathEntry struct {
	insn   antprog.Instruction
	branch antprog.State
}

type traceCtx struct {
	stack       []*stackFrame
	prerecorded []pathEntry // consumed from the front: a true FIFO queue
}

var (
	mu  sync.Mutex
	ctx *traceCtx
)

func current() *traceCtx {
	if ctx == nil {
		panic("trace: primitive called outside Traverse")
	}
	return ctx
}

// SuspensionError is returned by a primitive (or propagated up through
// Call0/Call1) when the prerecorded outcome queue has run dry: Insn is
// the instruction about to execute, and ExeState is the call-stack
// snapshot that identifies this control state.
type SuspensionError struct {
	Insn     antprog.Instruction
	ExeState []stackFrame
}

func (e *SuspensionError) Error() string {
	return fmt.Sprintf("trace: suspended on %+v", e.Insn)
}

func snapshotStack(stack []*stackFrame) []stackFrame {
	out := make([]stackFrame, len(stack))
	for i, f := range stack {
		out[i] = stackFrame{
			caller: f.caller,
			fnName: f.fnName,
			vars:   append([]varEntry(nil), f.vars...),
		}
	}
	return out
}

// suspend is what every primitive calls: either it consumes the next
// prerecorded (instruction, branch) pair and returns the branch, or it
// suspends with a fresh SuspensionError.
func suspend(insn antprog.Instruction) (antprog.State, error) {
	c := current()
	if len(c.prerecorded) > 0 {
		entry := c.prerecorded[0]
		c.prerecorded = c.prerecorded[1:]
		if entry.insn != insn {
			panic(fmt.Sprintf("trace: ant is nondeterministic: recorded %+v but reached %+v", entry.insn, insn))
		}
		return entry.branch, nil
	}
	return 0, &SuspensionError{Insn: insn, ExeState: snapshotStack(c.stack)}
}

func callInternal(loc Loc, fnName string) {
	current().stack = append(current().stack, &stackFrame{caller: loc, fnName: fnName})
}

func retInternal() {
	c := current()
	n := len(c.stack)
	f := c.stack[n-1]
	if len(f.vars) != 0 {
		panic(fmt.Sprintf("trace: %q returned with %d live local(s) (missing Release)", f.fnName, len(f.vars)))
	}
	c.stack = c.stack[:n-1]
}

// Call0 instruments a call to a function returning only error: the
// replacement for call!(f()) when f has no useful result. It pushes a
// stack frame tagged with the caller's (file, line) and fnName, runs fn,
// and pops the frame again on every exit, suspension included: a
// suspending primitive has already copied the stack into its
// SuspensionError, and popping the frame leaves the caller's own frame on
// top for its deferred Var.Release calls.
func Call0(fnName string, fn func() error) error {
	_, file, line, _ := runtime.Caller(1)
	callInternal(Loc{File: file, Line: line}, fnName)
	err := fn()
	retInternal()
	return err
}

// Call1 is Call0 for a function returning (T, error).
func Call1[T any](fnName string, fn func() (T, error)) (T, error) {
	_, file, line, _ := runtime.Caller(1)
	callInternal(Loc{File: file, Line: line}, fnName)
	v, err := fn()
	retInternal()
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Var is a local variable whose current (name, rendered value) lives on
// the innermost stack frame, making it part of control-state equivalence.
// Callers must call Release (typically via defer) on every exit path,
// mirroring Rust's Drop-on-scope-exit.
type Var[T any] struct {
	name  string
	idx   int
	value T
}

// NewVar declares a local variable, named for diagnostics and control-
// state rendering, and pushes its initial value onto the current frame.
func NewVar[T any](name string, value T) *Var[T] {
	c := current()
	f := c.stack[len(c.stack)-1]
	idx := len(f.vars)
	f.vars = append(f.vars, varEntry{name: name, value: fmt.Sprintf("%v", value)})
	return &Var[T]{name: name, idx: idx, value: value}
}

// Get returns the variable's current value.
func (v *Var[T]) Get() T { return v.value }

// Set updates the variable's value and its rendering on the frame.
func (v *Var[T]) Set(value T) {
	v.value = value
	c := current()
	f := c.stack[len(c.stack)-1]
	if f.vars[v.idx].name != v.name {
		panic("trace: var stack discipline violated (Set after frame popped?)")
	}
	f.vars[v.idx].value = fmt.Sprintf("%v", value)
}

// Release pops this variable's slot off the current frame. It must be
// the most recently declared, not-yet-released variable on that frame.
func (v *Var[T]) Release() {
	c := current()
	f := c.stack[len(c.stack)-1]
	n := len(f.vars)
	if n == 0 || f.vars[n-1].name != v.name {
		panic("trace: var released out of declaration order")
	}
	f.vars = f.vars[:n-1]
}

// The eight primitives. Each suspends via the shared mechanism above;
// Sense/PickUp/Move/Flip report which of their two branches the prerecord
// resolved to (true = first/success branch), matching antprog's St1/St2
// ordering. Mark/Unmark/Drop/Turn have only one branch, so they report
// nothing beyond success or suspension.

func Sense(dir geometry.SenseDir, cond antprog.SenseCondition, marker antprog.Marker) (bool, error) {
	branch, err := suspend(antprog.Sense(dir, 0, 1, cond, marker))
	return branch == 0, err
}

func Mark(m antprog.Marker) error {
	_, err := suspend(antprog.Mark(m, 0))
	return err
}

func Unmark(m antprog.Marker) error {
	_, err := suspend(antprog.Unmark(m, 0))
	return err
}

func PickUp() (bool, error) {
	branch, err := suspend(antprog.PickUp(0, 1))
	return branch == 0, err
}

func Drop() error {
	_, err := suspend(antprog.Drop(0))
	return err
}

func Turn(lr geometry.LR) error {
	_, err := suspend(antprog.TurnInsn(lr, 0))
	return err
}

func Move() (bool, error) {
	branch, err := suspend(antprog.Move(0, 1))
	return branch == 0, err
}

func Flip(p uint16) (bool, error) {
	branch, err := suspend(antprog.Flip(p, 0, 1))
	return branch == 0, err
}

func renderExeState(stack []stackFrame) string {
	var sb strings.Builder
	for _, f := range stack {
		fmt.Fprintf(&sb, "%s@%s:%d[", f.fnName, f.caller.File, f.caller.Line)
		for _, v := range f.vars {
			fmt.Fprintf(&sb, "%s=%s,", v.name, v.value)
		}
		sb.WriteString("]|")
	}
	return sb.String()
}

func renderPath(path []pathEntry) string {
	var sb strings.Builder
	for _, e := range path {
		fmt.Fprintf(&sb, "%+v->%d;", e.insn, e.branch)
	}
	return sb.String()
}

// Traverse symbolically executes ant, an infinite-loop procedure built
// out of Call0/Call1 and the primitives above, and returns the flat
// antprog.Brain it discovers: one state per distinct reachable control
// state, with every placeholder branch resolved to the successor state
// it actually leads to.
//
// Traverse panics (a compile-time error, not a runtime one — see the
// package doc) if ant ever terminates, if it behaves non-deterministically
// for a given outcome history, or if some branch of some discovered
// instruction never leads anywhere (the ant failed to loop forever on
// that path).
func Traverse(ant func() error) antprog.Brain {
	mu.Lock()
	defer mu.Unlock()

	exeToState := map[string]antprog.State{}
	pathToState := map[string]int{}

	var insns []antprog.Instruction
	var branchToState []map[antprog.State]antprog.State

	paths := [][]pathEntry{nil} // start with the empty path

	for len(paths) > 0 {
		path := paths[len(paths)-1]
		paths = paths[:len(paths)-1]

		// The root frame holds Vars declared directly in ant, outside any
		// Call0/Call1.
		ctx = &traceCtx{
			stack:       []*stackFrame{{fnName: "<root>"}},
			prerecorded: append([]pathEntry(nil), path...),
		}
		err := ant()
		if err == nil {
			panic("trace: ant terminated; it must run forever")
		}
		susp, ok := err.(*SuspensionError)
		if !ok {
			panic(fmt.Sprintf("trace: ant returned an unexpected error: %v", err))
		}

		key := renderExeState(susp.ExeState)
		state, known := exeToState[key]
		if !known {
			idx := len(insns)
			state = antprog.State(idx)
			exeToState[key] = state
			insns = append(insns, susp.Insn)
			branchToState = append(branchToState, map[antprog.State]antprog.State{})

			pkey := renderPath(path)
			if _, exists := pathToState[pkey]; exists {
				panic("trace: internal error: path already mapped to a state")
			}
			pathToState[pkey] = idx

			for _, tr := range susp.Insn.Transitions() {
				newPath := append(append([]pathEntry(nil), path...), pathEntry{insn: susp.Insn, branch: tr})
				paths = append(paths, newPath)
			}
		}

		if len(path) > 0 {
			last := path[len(path)-1]
			prevKey := renderPath(path[:len(path)-1])
			prevState, ok := pathToState[prevKey]
			if !ok {
				panic("trace: internal error: predecessor path has no assigned state")
			}
			if _, exists := branchToState[prevState][last.branch]; exists {
				panic("trace: internal error: branch already assigned a successor")
			}
			branchToState[prevState][last.branch] = state
		} else if state != 0 {
			panic("trace: the initial suspension must be state 0")
		}
	}

	out := make(antprog.Brain, len(insns))
	for i, insn := range insns {
		placeholders := insn.Transitions()
		resolved := make([]antprog.State, len(placeholders))
		for j, ph := range placeholders {
			st, ok := branchToState[i][ph]
			if !ok {
				panic(fmt.Sprintf("trace: instruction %d's branch %d leads nowhere; the ant terminated on that path", i, ph))
			}
			resolved[j] = st
		}
		out[i] = insn.WithTransitions(resolved)
	}
	return out
}
