package storage

import (
	"database/sql"
	"fmt"
)

// insertMatch writes one ledger row within a transaction
func insertMatch(tx *sql.Tx, record MatchRecord) error {
	query := `INSERT INTO matches (
		match_id, seq, winner_id, loser_id,
		winner_score, loser_score,
		winner_rating_before, loser_rating_before, played_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.Exec(query,
		record.MatchID, record.Seq, record.WinnerID, record.LoserID,
		record.WinnerScore, record.LoserScore,
		record.WinnerRatingBefore, record.LoserRatingBefore, record.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", record.MatchID, err)
	}
	return nil
}

// loadMatches retrieves the full ledger in replay order
func (s *Store) loadMatches() ([]MatchRecord, error) {
	query := `SELECT match_id, seq, winner_id, loser_id,
		winner_score, loser_score,
		winner_rating_before, loser_rating_before, played_at
	FROM matches ORDER BY played_at ASC, seq ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("match query failed: %w", err)
	}
	defer rows.Close()

	var matches []MatchRecord
	for rows.Next() {
		var m MatchRecord
		err := rows.Scan(
			&m.MatchID, &m.Seq, &m.WinnerID, &m.LoserID,
			&m.WinnerScore, &m.LoserScore,
			&m.WinnerRatingBefore, &m.LoserRatingBefore, &m.PlayedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("match scan failed: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// QueryMatches retrieves ledger rows with optional player filtering,
// newest first. Used by the db CLI.
func (s *Store) QueryMatches(playerID string) ([]MatchRecord, error) {
	query := `SELECT match_id, seq, winner_id, loser_id,
		winner_score, loser_score,
		winner_rating_before, loser_rating_before, played_at
	FROM matches`

	var args []interface{}
	if playerID != "" && playerID != "*" {
		query += ` WHERE winner_id = ? OR loser_id = ?`
		args = append(args, playerID, playerID)
	}
	query += ` ORDER BY played_at DESC, seq DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var matches []MatchRecord
	for rows.Next() {
		var m MatchRecord
		err := rows.Scan(
			&m.MatchID, &m.Seq, &m.WinnerID, &m.LoserID,
			&m.WinnerScore, &m.LoserScore,
			&m.WinnerRatingBefore, &m.LoserRatingBefore, &m.PlayedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}
