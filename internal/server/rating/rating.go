// Package rating implements the Elo-style rating engine: a pure pairwise
// update formula and a deterministic replay of an ordered match ledger.
//
// The engine holds no state of its own. Given the same ordered outcomes
// and the same baseline/K constants, Replay produces bit-identical
// results on every run. The update is order-dependent and
// non-commutative, so any structural edit to the ledger (out-of-order
// insert, deletion, cascading player removal) requires a full replay;
// only an append at the end of history may use ApplyResult incrementally.
package rating

import (
	"fmt"
	"math"

	"pong/internal/server/core"
)

const (
	// Baseline is the rating every player starts from.
	Baseline = 1000.0
	// KFactor scales the rating exchange per match.
	KFactor = 32.0

	// zeroSumTolerance bounds the acceptable floating-point drift of the
	// rating sum across a single match.
	zeroSumTolerance = 1e-9
)

// ExpectedScore returns the probability-like expected score of a player
// with the given rating against the opponent.
func ExpectedScore(rating, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-rating)/400.0))
}

// ApplyResult returns the post-match ratings of the winner and loser.
// The loser's delta is the exact negative of the winner's delta, so the
// sum of the two ratings is invariant across the exchange.
func ApplyResult(winner, loser float64) (newWinner, newLoser float64) {
	delta := KFactor * (1.0 - ExpectedScore(winner, loser))
	return winner + delta, loser - delta
}

// Outcome is one ledger entry as seen by the engine.
type Outcome struct {
	WinnerID string
	LoserID  string
}

// Standing is the replayed state of one player.
type Standing struct {
	Rating float64
	Wins   int
	Losses int
}

// GamesPlayed returns the derived games counter.
func (s Standing) GamesPlayed() int { return s.Wins + s.Losses }

// Snapshot is the pre-match rating pair observed while replaying one
// outcome, in the same position as the outcome in the ledger. Callers
// use it to refresh audit snapshots; it is never an engine input.
type Snapshot struct {
	Winner float64
	Loser  float64
}

// Replay folds the ordered outcomes from baseline and returns the final
// standing of every listed player plus the per-outcome pre-match rating
// snapshots. Players without outcomes keep the baseline standing.
//
// An outcome referencing a player outside playerIDs fails with
// core.ErrUnknownPlayer. A zero-sum violation beyond floating-point
// tolerance fails with core.ErrConsistency; both leave the caller's
// state untouched since Replay only writes to its own return values.
func Replay(playerIDs []string, outcomes []Outcome) (map[string]Standing, []Snapshot, error) {
	standings := make(map[string]Standing, len(playerIDs))
	for _, id := range playerIDs {
		standings[id] = Standing{Rating: Baseline}
	}

	snapshots := make([]Snapshot, 0, len(outcomes))
	for i, o := range outcomes {
		w, ok := standings[o.WinnerID]
		if !ok {
			return nil, nil, fmt.Errorf("outcome %d winner %s: %w", i, o.WinnerID, core.ErrUnknownPlayer)
		}
		l, ok := standings[o.LoserID]
		if !ok {
			return nil, nil, fmt.Errorf("outcome %d loser %s: %w", i, o.LoserID, core.ErrUnknownPlayer)
		}

		snapshots = append(snapshots, Snapshot{Winner: w.Rating, Loser: l.Rating})

		newW, newL := ApplyResult(w.Rating, l.Rating)
		if math.Abs((newW+newL)-(w.Rating+l.Rating)) > zeroSumTolerance {
			return nil, nil, fmt.Errorf("outcome %d: rating sum drifted: %w", i, core.ErrConsistency)
		}

		w.Rating = newW
		w.Wins++
		l.Rating = newL
		l.Losses++
		standings[o.WinnerID] = w
		standings[o.LoserID] = l
	}

	return standings, snapshots, nil
}
