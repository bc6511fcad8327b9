// Package tournament plays matches and pairs of matches between two
// brains, and schedules a whole tournament (every map against a given
// pair of brains) across goroutines.
//
// full_match/match_pair are a direct port of tournament.rs: a match
// pair plays a map twice, swapping the brains (and a cloned copy of the
// starting world/RNG) between legs so that neither brain is advantaged
// by always moving first, then awards 2-0 / 1-1 / 0-2 depending on
// which colony (if either) ends with more anthill food.
//
// RunAll schedules one match pair per map concurrently via
// golang.org/x/sync/errgroup, same concurrency primitive the rest of the
// pack reaches for for fan-out/fan-in with first-error cancellation, and
// totals the per-map scores into an atomicscore.Tally shared by every
// worker.
package tournament

import (
	"context"

	"golang.org/x/sync/errgroup"

	"antwars/internal/antprog"
	"antwars/internal/atomicscore"
	"antwars/internal/rng"
	"antwars/internal/simulate"
	"antwars/internal/world"
)

// Score is a match or match-pair's point tally: 2 points for a win,
// 1-1 for a draw.
type Score struct {
	Red, Black int
}

// FullMatch runs `rounds` simulator rounds on w, mutating it in place,
// and reports which colony, if either, has more anthill food at the end.
// ok is false on a draw.
func FullMatch(w *world.World, brains simulate.Brains, r *rng.Random, rounds int) (winner antprog.Color, ok bool) {
	for i := 0; i < rounds; i++ {
		simulate.Round(w, brains, r)
	}
	red := w.FoodAtAnthill(antprog.Red)
	black := w.FoodAtAnthill(antprog.Black)
	switch {
	case red > black:
		return antprog.Red, true
	case black > red:
		return antprog.Black, true
	default:
		return antprog.Red, false
	}
}

// MatchPair plays the map twice: once as given, once with the two
// brains' colony assignments swapped, replaying the same starting world
// and RNG seed for the second leg so neither brain is favored by board
// position or draw order.
func MatchPair(w *world.World, brains simulate.Brains, r *rng.Random, rounds int) Score {
	var score Score

	worldCopy := w.Clone()
	rngCopy := r.Clone()

	if winner, ok := FullMatch(w, brains, r, rounds); !ok {
		score.Red++
		score.Black++
	} else if winner == antprog.Red {
		score.Red += 2
	} else {
		score.Black += 2
	}

	swapped := simulate.Brains{brains[antprog.Black], brains[antprog.Red]}
	if winner, ok := FullMatch(worldCopy, swapped, rngCopy, rounds); !ok {
		score.Red++
		score.Black++
	} else if winner == antprog.Red {
		// The swapped pairing's "Red" winner is the original Black brain.
		score.Black += 2
	} else {
		score.Red += 2
	}

	return score
}

// Job is one map to play a fixed pair of brains on.
type Job struct {
	Name   string
	World  *world.World
	Brains simulate.Brains
	Seed   uint32
	Rounds int
}

// Result is a single job's outcome.
type Result struct {
	Name  string
	Score Score
}

// RunAll plays every job's match pair concurrently (one goroutine per
// map) and returns each job's individual result alongside the grand
// total across all of them. It stops at the first job that panics by
// letting the panic propagate normally; errgroup itself has nothing to
// report here since playing a match pair cannot fail.
func RunAll(ctx context.Context, jobs []Job) ([]Result, Score, error) {
	results := make([]Result, len(jobs))
	var tally atomicscore.Tally

	g, _ := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			r := rng.New(job.Seed)
			score := MatchPair(job.World, job.Brains, r, job.Rounds)
			results[i] = Result{Name: job.Name, Score: score}
			tally.AddRed(int64(score.Red))
			tally.AddBlack(int64(score.Black))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Score{}, err
	}

	red, black := tally.Load()
	return results, Score{Red: int(red), Black: int(black)}, nil
}
