package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"pong/internal/server/core"
	"pong/internal/server/rating"

	"github.com/google/uuid"
)

// RecordMatch validates and appends a match result to the ledger at the
// position implied by (playedAt, seq). A match that lands at the end of
// history updates the two ratings incrementally; anything earlier forces
// a full replay, because the Elo update is order-dependent and no
// incremental patch is correct under reordering.
//
// A nil playedAt defaults to now. Scores are optional display data from
// the original scoresheet; when present the winner's score must exceed
// the loser's (no draws).
func (s *Service) RecordMatch(winnerID, loserID string, winnerScore, loserScore int, playedAt *time.Time) (*core.Match, error) {
	if winnerID == loserID {
		return nil, core.ErrSamePlayer
	}
	if winnerScore < 0 || loserScore < 0 || (winnerScore != 0 || loserScore != 0) && winnerScore <= loserScore {
		return nil, fmt.Errorf("scores %d-%d: %w", winnerScore, loserScore, core.ErrInvalidScore)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	winner, ok := s.players[winnerID]
	if !ok {
		return nil, fmt.Errorf("winner %s: %w", winnerID, core.ErrUnknownPlayer)
	}
	loser, ok := s.players[loserID]
	if !ok {
		return nil, fmt.Errorf("loser %s: %w", loserID, core.ErrUnknownPlayer)
	}

	ts := time.Now().UTC()
	if playedAt != nil {
		ts = playedAt.UTC()
	}

	match := &core.Match{
		ID:          uuid.New().String(),
		Seq:         s.nextSeq,
		WinnerID:    winnerID,
		LoserID:     loserID,
		WinnerScore: winnerScore,
		LoserScore:  loserScore,
		PlayedAt:    ts,
	}

	pos := sort.Search(len(s.matches), func(i int) bool {
		return match.Before(s.matches[i])
	})

	var candidatePlayers map[string]*core.Player
	var candidateMatches []*core.Match

	if pos == len(s.matches) {
		// Live play: the match extends history, apply once at O(1)
		match.WinnerRatingBefore = winner.Rating
		match.LoserRatingBefore = loser.Rating
		newWinner, newLoser := rating.ApplyResult(winner.Rating, loser.Rating)

		candidatePlayers = clonePlayers(s.players)
		w := candidatePlayers[winnerID]
		w.Rating = newWinner
		w.Wins++
		w.GamesPlayed++
		l := candidatePlayers[loserID]
		l.Rating = newLoser
		l.Losses++
		l.GamesPlayed++

		candidateMatches = make([]*core.Match, 0, len(s.matches)+1)
		candidateMatches = append(candidateMatches, s.matches...)
		candidateMatches = append(candidateMatches, match)
	} else {
		// Retro-dated insert: replay the whole ledger
		candidateMatches = make([]*core.Match, 0, len(s.matches)+1)
		for _, m := range s.matches[:pos] {
			candidateMatches = append(candidateMatches, m.Clone())
		}
		candidateMatches = append(candidateMatches, match)
		for _, m := range s.matches[pos:] {
			candidateMatches = append(candidateMatches, m.Clone())
		}

		candidatePlayers = clonePlayers(s.players)
		if err := replayInto(candidatePlayers, candidateMatches); err != nil {
			return nil, fmt.Errorf("replay after insert failed: %w", err)
		}
	}

	if err := s.persistLocked(candidatePlayers, candidateMatches); err != nil {
		return nil, fmt.Errorf("failed to persist match: %w", err)
	}

	s.players = candidatePlayers
	s.matches = candidateMatches
	s.nextSeq++
	return match.Clone(), nil
}

// DeleteMatch removes a match from the ledger and replays the remaining
// history; every player's rating is recomputed since rating changes
// propagate transitively through match order.
func (s *Service) DeleteMatch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := -1
	for i, m := range s.matches {
		if m.ID == id {
			pos = i
			break
		}
	}
	if pos == -1 {
		return fmt.Errorf("%s: %w", id, core.ErrMatchNotFound)
	}

	candidateMatches := make([]*core.Match, 0, len(s.matches)-1)
	for i, m := range s.matches {
		if i != pos {
			candidateMatches = append(candidateMatches, m.Clone())
		}
	}

	candidatePlayers := clonePlayers(s.players)
	if err := replayInto(candidatePlayers, candidateMatches); err != nil {
		return fmt.Errorf("replay after deletion failed: %w", err)
	}

	if err := s.persistLocked(candidatePlayers, candidateMatches); err != nil {
		return fmt.Errorf("failed to persist deletion: %w", err)
	}

	s.players = candidatePlayers
	s.matches = candidateMatches
	return nil
}

// GetMatch retrieves a match by id
func (s *Service) GetMatch(id string) (*core.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.matches {
		if m.ID == id {
			return m.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", id, core.ErrMatchNotFound)
}

// ListMatches returns the ledger most-recent-first for display
func (s *Service) ListMatches() []*core.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]*core.Match, 0, len(s.matches))
	for i := len(s.matches) - 1; i >= 0; i-- {
		matches = append(matches, s.matches[i].Clone())
	}
	return matches
}

// Import bulk-loads a prior dataset, replacing the current registry and
// ledger. Records are validated up front and the imported history is
// replayed in full before any rating is served; rating columns carried
// by the source dataset are discarded.
func (s *Service) Import(req core.ImportRequest) (*core.ImportResponse, error) {
	now := time.Now().UTC()

	players := make(map[string]*core.Player, len(req.Players))
	byName := make(map[string]string, len(req.Players))
	for i, rec := range req.Players {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			return nil, fmt.Errorf("player %d: %w", i, core.ErrInvalidName)
		}
		if _, ok := byName[strings.ToLower(name)]; ok {
			return nil, fmt.Errorf("player %d %q: %w", i, name, core.ErrDuplicateName)
		}

		createdAt := now
		if rec.CreatedAt != nil {
			createdAt = rec.CreatedAt.UTC()
		}
		p := &core.Player{
			ID:        uuid.New().String(),
			Name:      name,
			Rating:    rating.Baseline,
			CreatedAt: createdAt,
		}
		players[p.ID] = p
		byName[strings.ToLower(name)] = p.ID
	}

	matches := make([]*core.Match, 0, len(req.Matches))
	for i, rec := range req.Matches {
		winnerID, ok := byName[strings.ToLower(strings.TrimSpace(rec.WinnerName))]
		if !ok {
			return nil, fmt.Errorf("match %d winner %q: %w", i, rec.WinnerName, core.ErrUnknownPlayer)
		}
		loserID, ok := byName[strings.ToLower(strings.TrimSpace(rec.LoserName))]
		if !ok {
			return nil, fmt.Errorf("match %d loser %q: %w", i, rec.LoserName, core.ErrUnknownPlayer)
		}
		if winnerID == loserID {
			return nil, fmt.Errorf("match %d: %w", i, core.ErrSamePlayer)
		}
		if rec.WinnerScore < 0 || rec.LoserScore < 0 || (rec.WinnerScore != 0 || rec.LoserScore != 0) && rec.WinnerScore <= rec.LoserScore {
			return nil, fmt.Errorf("match %d scores %d-%d: %w", i, rec.WinnerScore, rec.LoserScore, core.ErrInvalidScore)
		}

		matches = append(matches, &core.Match{
			ID:          uuid.New().String(),
			Seq:         int64(i + 1),
			WinnerID:    winnerID,
			LoserID:     loserID,
			WinnerScore: rec.WinnerScore,
			LoserScore:  rec.LoserScore,
			PlayedAt:    rec.PlayedAt.UTC(),
		})
	}

	// Ledger order; seq (input order) breaks timestamp ties
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Before(matches[j])
	})

	if err := replayInto(players, matches); err != nil {
		return nil, fmt.Errorf("import replay failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistLocked(players, matches); err != nil {
		return nil, fmt.Errorf("failed to persist import: %w", err)
	}

	s.players = players
	s.matches = matches
	s.nextSeq = int64(len(matches)) + 1
	return &core.ImportResponse{Players: len(players), Matches: len(matches)}, nil
}
