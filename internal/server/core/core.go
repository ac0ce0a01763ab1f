package core

import (
	"time"
)

// Player is the registry entry for one roster member. Rating and the
// counters are derived from the match ledger; the ledger is the source
// of truth and these fields are rewritten on every full replay.
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Rating      float64   `json:"rating"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	GamesPlayed int       `json:"gamesPlayed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Clone returns a copy so candidate state can be built without touching
// the live registry.
func (p *Player) Clone() *Player {
	c := *p
	return &c
}

// Match is one ledger entry. Seq is a monotonic insertion counter that
// breaks timestamp ties, making the ledger order (PlayedAt, Seq) total.
// The RatingBefore fields are an audit snapshot of both players' ratings
// at this match's position in ledger order. They are display state only,
// refreshed on replay, and never fed back into the rating formula.
type Match struct {
	ID                 string    `json:"id"`
	Seq                int64     `json:"-"`
	WinnerID           string    `json:"winnerId"`
	LoserID            string    `json:"loserId"`
	WinnerScore        int       `json:"winnerScore"`
	LoserScore         int       `json:"loserScore"`
	WinnerRatingBefore float64   `json:"winnerRatingBefore"`
	LoserRatingBefore  float64   `json:"loserRatingBefore"`
	PlayedAt           time.Time `json:"playedAt"`
}

// Clone returns a copy of the match entry.
func (m *Match) Clone() *Match {
	c := *m
	return &c
}

// Before reports whether m sorts before other in ledger order.
func (m *Match) Before(other *Match) bool {
	if !m.PlayedAt.Equal(other.PlayedAt) {
		return m.PlayedAt.Before(other.PlayedAt)
	}
	return m.Seq < other.Seq
}

// References reports whether the match involves the given player.
func (m *Match) References(playerID string) bool {
	return m.WinnerID == playerID || m.LoserID == playerID
}

// LeaderboardEntry is one row of the projected standings.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	PlayerID    string  `json:"playerId"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	GamesPlayed int     `json:"gamesPlayed"`
}
