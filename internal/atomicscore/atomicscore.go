// Package atomicscore gives the tournament driver a lock-free match
// score tally so several match-pair workers can add to the same running
// total concurrently.
//
// This is adapted from atomic_float.AtomicFloat64, which CAS-loops a
// float64 through its bit pattern to dodge a mutex around a large
// matrix of worker-shared floats. The score domain here is small
// integer food counts (no floating-point numerics anywhere in the
// simulation or scoring domain), so the unsafe-pointer float-bits trick
// has nothing to do: sync/atomic already has a native int64 primitive,
// and AddRed/AddBlack below are just that.
package atomicscore

import "sync/atomic"

// Tally is a pair of lock-free running totals, one per colony: colony 0
// is red, colony 1 is black. Point scores accumulate here across every
// match-pair a tournament worker pool plays concurrently.
type Tally struct {
	red   int64
	black int64
}

// AddRed atomically adds delta to the red total.
func (t *Tally) AddRed(delta int64) {
	atomic.AddInt64(&t.red, delta)
}

// AddBlack atomically adds delta to the black total.
func (t *Tally) AddBlack(delta int64) {
	atomic.AddInt64(&t.black, delta)
}

// Load atomically reads both totals.
func (t *Tally) Load() (red, black int64) {
	return atomic.LoadInt64(&t.red), atomic.LoadInt64(&t.black)
}
