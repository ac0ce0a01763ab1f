package service

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"pong/internal/server/core"
	"pong/internal/server/rating"
	"pong/internal/server/storage"

	"github.com/lixenwraith/auth"
)

const (
	// AdminTokenTTL bounds the lifetime of issued admin tokens
	AdminTokenTTL = 12 * time.Hour

	// driftTolerance is the maximum acceptable difference between a
	// stored rating and its replayed value before the stored state is
	// reported and corrected.
	driftTolerance = 1e-6
)

// Service owns the player registry and the match ledger. The two form
// one consistency domain guarded by a single lock: mutations (including
// the recomputation they trigger) run exclusively, reads share. Every
// mutation validates first, builds a full candidate state, persists it
// in one transaction, and only then swaps it in, so a failed operation
// leaves registry and ledger untouched.
type Service struct {
	mu        sync.RWMutex
	players   map[string]*core.Player
	matches   []*core.Match // ledger order: (PlayedAt, Seq)
	nextSeq   int64
	store     *storage.Store
	jwtSecret []byte
	adminHash string
}

// New creates a service instance with optional storage and admin auth.
// An empty adminHash disables the privileged operations over HTTP.
func New(store *storage.Store, jwtSecret []byte, adminHash string) *Service {
	return &Service{
		players:   make(map[string]*core.Player),
		nextSeq:   1,
		store:     store,
		jwtSecret: jwtSecret,
		adminHash: adminHash,
	}
}

// Load restores registry and ledger from storage and re-derives every
// rating by full replay. Stored rating columns are never trusted as-is;
// if they drifted from the replayed values the corrected state is
// logged and persisted back.
func (s *Service) Load() error {
	if s.store == nil {
		return nil
	}

	playerRecords, matchRecords, err := s.store.LoadState()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	players := make(map[string]*core.Player, len(playerRecords))
	for _, r := range playerRecords {
		players[r.PlayerID] = &core.Player{
			ID:        r.PlayerID,
			Name:      r.Name,
			CreatedAt: r.CreatedAt,
		}
	}

	matches := make([]*core.Match, 0, len(matchRecords))
	var maxSeq int64
	for _, r := range matchRecords {
		matches = append(matches, &core.Match{
			ID:          r.MatchID,
			Seq:         r.Seq,
			WinnerID:    r.WinnerID,
			LoserID:     r.LoserID,
			WinnerScore: r.WinnerScore,
			LoserScore:  r.LoserScore,
			PlayedAt:    r.PlayedAt.UTC(),
		})
		if r.Seq > maxSeq {
			maxSeq = r.Seq
		}
	}

	if err := replayInto(players, matches); err != nil {
		return fmt.Errorf("failed to replay loaded ledger: %w", err)
	}

	drifted := false
	for _, r := range playerRecords {
		p := players[r.PlayerID]
		if math.Abs(p.Rating-r.Rating) > driftTolerance || p.Wins != r.Wins || p.Losses != r.Losses {
			log.Printf("Stored state for player %s (%s) drifted from replay: rating %.4f -> %.4f",
				r.PlayerID, r.Name, r.Rating, p.Rating)
			drifted = true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = players
	s.matches = matches
	s.nextSeq = maxSeq + 1

	if drifted {
		if err := s.persistLocked(players, matches); err != nil {
			return fmt.Errorf("failed to persist corrected state: %w", err)
		}
		log.Printf("Corrected state persisted after replay")
	}

	return nil
}

// replayInto replays the ordered ledger from baseline and writes the
// resulting standings into the given players and the pre-match rating
// snapshots into the given matches. Both arguments must be candidate
// copies; on error they are discarded by the caller.
func replayInto(players map[string]*core.Player, matches []*core.Match) error {
	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}

	outcomes := make([]rating.Outcome, len(matches))
	for i, m := range matches {
		outcomes[i] = rating.Outcome{WinnerID: m.WinnerID, LoserID: m.LoserID}
	}

	standings, snapshots, err := rating.Replay(ids, outcomes)
	if err != nil {
		return err
	}

	for id, st := range standings {
		p := players[id]
		p.Rating = st.Rating
		p.Wins = st.Wins
		p.Losses = st.Losses
		p.GamesPlayed = st.GamesPlayed()
	}
	for i, m := range matches {
		m.WinnerRatingBefore = snapshots[i].Winner
		m.LoserRatingBefore = snapshots[i].Loser
	}

	return nil
}

// persistLocked writes the candidate state through the persistence
// collaborator in one transaction. Callers hold the write lock and only
// commit the candidate in memory after persistence succeeds.
func (s *Service) persistLocked(players map[string]*core.Player, matches []*core.Match) error {
	if s.store == nil {
		return nil
	}

	playerRecords := make([]storage.PlayerRecord, 0, len(players))
	for _, p := range players {
		playerRecords = append(playerRecords, storage.PlayerRecord{
			PlayerID:    p.ID,
			Name:        p.Name,
			Rating:      p.Rating,
			Wins:        p.Wins,
			Losses:      p.Losses,
			GamesPlayed: p.GamesPlayed,
			CreatedAt:   p.CreatedAt,
		})
	}

	matchRecords := make([]storage.MatchRecord, 0, len(matches))
	for _, m := range matches {
		matchRecords = append(matchRecords, storage.MatchRecord{
			MatchID:            m.ID,
			Seq:                m.Seq,
			WinnerID:           m.WinnerID,
			LoserID:            m.LoserID,
			WinnerScore:        m.WinnerScore,
			LoserScore:         m.LoserScore,
			WinnerRatingBefore: m.WinnerRatingBefore,
			LoserRatingBefore:  m.LoserRatingBefore,
			PlayedAt:           m.PlayedAt,
		})
	}

	return s.store.SaveState(playerRecords, matchRecords)
}

// clonePlayers returns a candidate copy of the registry
func clonePlayers(players map[string]*core.Player) map[string]*core.Player {
	clone := make(map[string]*core.Player, len(players))
	for id, p := range players {
		clone[id] = p.Clone()
	}
	return clone
}

// cloneMatches returns a candidate copy of the ledger
func cloneMatches(matches []*core.Match) []*core.Match {
	clone := make([]*core.Match, len(matches))
	for i, m := range matches {
		clone[i] = m.Clone()
	}
	return clone
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// AuthenticateAdmin verifies the administrative password
func (s *Service) AuthenticateAdmin(password string) error {
	if s.adminHash == "" {
		return errors.New("admin access disabled")
	}
	if err := auth.VerifyPassword(password, s.adminHash); err != nil {
		return errors.New("invalid credentials")
	}
	return nil
}

// GenerateAdminToken creates a short-lived token for privileged calls
func (s *Service) GenerateAdminToken() (string, time.Time, error) {
	expiresAt := time.Now().Add(AdminTokenTTL)
	token, err := auth.GenerateHS256Token(s.jwtSecret, "admin", map[string]any{
		"role": "admin",
	}, AdminTokenTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, expiresAt, nil
}

// ValidateToken verifies a token and returns its subject with claims
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	return auth.ValidateHS256Token(s.jwtSecret, token)
}

// Shutdown gracefully releases the service resources
func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	return nil
}
