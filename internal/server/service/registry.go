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

// CreatePlayer registers a new player with the baseline rating and zero
// counters. Names are unique case-insensitively.
func (s *Service) CreatePlayer(name string) (*core.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, core.ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.players {
		if strings.EqualFold(p.Name, name) {
			return nil, fmt.Errorf("%q: %w", name, core.ErrDuplicateName)
		}
	}

	player := &core.Player{
		ID:        uuid.New().String(),
		Name:      name,
		Rating:    rating.Baseline,
		CreatedAt: time.Now().UTC(),
	}

	candidate := clonePlayers(s.players)
	candidate[player.ID] = player

	if err := s.persistLocked(candidate, s.matches); err != nil {
		return nil, fmt.Errorf("failed to persist player: %w", err)
	}

	s.players = candidate
	return player.Clone(), nil
}

// RemovePlayer deletes a player. A player referenced by the ledger is
// rejected unless cascade is requested; cascading removal drops their
// matches and replays the remaining ledger so every other rating is
// recomputed as if those matches never existed.
func (s *Service) RemovePlayer(id string, cascade bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return fmt.Errorf("%s: %w", id, core.ErrPlayerNotFound)
	}

	hasHistory := false
	for _, m := range s.matches {
		if m.References(id) {
			hasHistory = true
			break
		}
	}
	if hasHistory && !cascade {
		return fmt.Errorf("%s: %w", id, core.ErrPlayerHasHistory)
	}

	candidatePlayers := clonePlayers(s.players)
	delete(candidatePlayers, id)
	candidateMatches := s.matches

	if hasHistory {
		kept := make([]*core.Match, 0, len(s.matches))
		for _, m := range s.matches {
			if !m.References(id) {
				kept = append(kept, m.Clone())
			}
		}
		candidateMatches = kept

		if err := replayInto(candidatePlayers, candidateMatches); err != nil {
			return fmt.Errorf("cascade replay failed: %w", err)
		}
	}

	if err := s.persistLocked(candidatePlayers, candidateMatches); err != nil {
		return fmt.Errorf("failed to persist removal: %w", err)
	}

	s.players = candidatePlayers
	s.matches = candidateMatches
	return nil
}

// GetPlayer retrieves a player by id
func (s *Service) GetPlayer(id string) (*core.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, core.ErrPlayerNotFound)
	}
	return p.Clone(), nil
}

// ListPlayers returns the registry sorted by rating descending, ties
// broken by name ascending.
func (s *Service) ListPlayers() []*core.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedPlayersLocked()
}

func (s *Service) sortedPlayersLocked() []*core.Player {
	players := make([]*core.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p.Clone())
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Rating != players[j].Rating {
			return players[i].Rating > players[j].Rating
		}
		return players[i].Name < players[j].Name
	})
	return players
}

// Leaderboard projects the ranked standings from the current registry.
// It is recomputed on every call and never cached across mutations.
func (s *Service) Leaderboard() []core.LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := s.sortedPlayersLocked()
	entries := make([]core.LeaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = core.LeaderboardEntry{
			Rank:        i + 1,
			PlayerID:    p.ID,
			Name:        p.Name,
			Rating:      p.Rating,
			Wins:        p.Wins,
			Losses:      p.Losses,
			GamesPlayed: p.GamesPlayed,
		}
	}
	return entries
}
