package api

import "time"

// Wire types mirroring the server API surface

type PlayerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Rating      float64   `json:"rating"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	GamesPlayed int       `json:"gamesPlayed"`
	CreatedAt   time.Time `json:"createdAt"`
}

type MatchResponse struct {
	ID                 string    `json:"id"`
	WinnerID           string    `json:"winnerId"`
	LoserID            string    `json:"loserId"`
	WinnerScore        int       `json:"winnerScore"`
	LoserScore         int       `json:"loserScore"`
	WinnerRatingBefore float64   `json:"winnerRatingBefore"`
	LoserRatingBefore  float64   `json:"loserRatingBefore"`
	PlayedAt           time.Time `json:"playedAt"`
}

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	PlayerID    string  `json:"playerId"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	GamesPlayed int     `json:"gamesPlayed"`
}

type CreatePlayerRequest struct {
	Name string `json:"name"`
}

type RecordMatchRequest struct {
	WinnerID    string     `json:"winnerId"`
	LoserID     string     `json:"loserId"`
	WinnerScore int        `json:"winnerScore"`
	LoserScore  int        `json:"loserScore"`
	PlayedAt    *time.Time `json:"playedAt,omitempty"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
