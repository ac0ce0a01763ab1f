package core

import "time"

// Request types

type CreatePlayerRequest struct {
	Name string `json:"name" validate:"required,min=1,max=40"`
}

type RecordMatchRequest struct {
	WinnerID    string     `json:"winnerId" validate:"required,uuid4"`
	LoserID     string     `json:"loserId" validate:"required,uuid4"`
	WinnerScore int        `json:"winnerScore" validate:"min=0,max=99"`
	LoserScore  int        `json:"loserScore" validate:"min=0,max=99"`
	PlayedAt    *time.Time `json:"playedAt,omitempty"` // defaults to now
}

type LoginRequest struct {
	Password string `json:"password" validate:"required,max=128"`
}

type ImportRequest struct {
	Players []ImportPlayer `json:"players" validate:"required,dive"`
	Matches []ImportMatch  `json:"matches" validate:"dive"`
}

// ImportPlayer is a validated record from a prior dataset. Any rating
// carried by the source is ignored; ratings are only ever derived by
// replaying the imported ledger.
type ImportPlayer struct {
	Name      string     `json:"name" validate:"required,min=1,max=40"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type ImportMatch struct {
	WinnerName  string    `json:"winnerName" validate:"required"`
	LoserName   string    `json:"loserName" validate:"required"`
	WinnerScore int       `json:"winnerScore" validate:"min=0,max=99"`
	LoserScore  int       `json:"loserScore" validate:"min=0,max=99"`
	PlayedAt    time.Time `json:"playedAt" validate:"required"`
}

// Response types

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ImportResponse struct {
	Players int `json:"players"`
	Matches int `json:"matches"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
