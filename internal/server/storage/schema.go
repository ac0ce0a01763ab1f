package storage

import "time"

// PlayerRecord represents a row in the players table. The rating and
// counter columns are a cached snapshot of replayed state; the matches
// table is the durable source of truth.
type PlayerRecord struct {
	PlayerID    string    `db:"player_id"`
	Name        string    `db:"name"`
	Rating      float64   `db:"rating"`
	Wins        int       `db:"wins"`
	Losses      int       `db:"losses"`
	GamesPlayed int       `db:"games_played"`
	CreatedAt   time.Time `db:"created_at"`
}

// MatchRecord represents a row in the matches table
type MatchRecord struct {
	MatchID            string    `db:"match_id"`
	Seq                int64     `db:"seq"`
	WinnerID           string    `db:"winner_id"`
	LoserID            string    `db:"loser_id"`
	WinnerScore        int       `db:"winner_score"`
	LoserScore         int       `db:"loser_score"`
	WinnerRatingBefore float64   `db:"winner_rating_before"`
	LoserRatingBefore  float64   `db:"loser_rating_before"`
	PlayedAt           time.Time `db:"played_at"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS players (
	player_id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL COLLATE NOCASE,
	rating REAL NOT NULL DEFAULT 1000.0,
	wins INTEGER NOT NULL DEFAULT 0,
	losses INTEGER NOT NULL DEFAULT 0,
	games_played INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_players_name ON players(name);
CREATE INDEX IF NOT EXISTS idx_players_rating ON players(rating);

CREATE TABLE IF NOT EXISTS matches (
	match_id TEXT PRIMARY KEY,
	seq INTEGER UNIQUE NOT NULL,
	winner_id TEXT NOT NULL,
	loser_id TEXT NOT NULL,
	winner_score INTEGER NOT NULL DEFAULT 0,
	loser_score INTEGER NOT NULL DEFAULT 0,
	winner_rating_before REAL NOT NULL,
	loser_rating_before REAL NOT NULL,
	played_at DATETIME NOT NULL,
	FOREIGN KEY (winner_id) REFERENCES players(player_id),
	FOREIGN KEY (loser_id) REFERENCES players(player_id),
	CHECK (winner_id != loser_id)
);

CREATE INDEX IF NOT EXISTS idx_matches_order ON matches(played_at, seq);
CREATE INDEX IF NOT EXISTS idx_matches_winner ON matches(winner_id);
CREATE INDEX IF NOT EXISTS idx_matches_loser ON matches(loser_id);
`
