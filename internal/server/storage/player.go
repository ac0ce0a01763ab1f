package storage

import (
	"database/sql"
	"fmt"
)

// insertPlayer writes one player row within a transaction
func insertPlayer(tx *sql.Tx, record PlayerRecord) error {
	query := `INSERT INTO players (
		player_id, name, rating, wins, losses, games_played, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.Exec(query,
		record.PlayerID, record.Name, record.Rating,
		record.Wins, record.Losses, record.GamesPlayed, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player %s: %w", record.PlayerID, err)
	}
	return nil
}

// loadPlayers retrieves all players ordered by creation time
func (s *Store) loadPlayers() ([]PlayerRecord, error) {
	query := `SELECT player_id, name, rating, wins, losses, games_played, created_at
		FROM players ORDER BY created_at ASC, player_id ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("player query failed: %w", err)
	}
	defer rows.Close()

	var players []PlayerRecord
	for rows.Next() {
		var p PlayerRecord
		err := rows.Scan(
			&p.PlayerID, &p.Name, &p.Rating,
			&p.Wins, &p.Losses, &p.GamesPlayed, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("player scan failed: %w", err)
		}
		players = append(players, p)
	}

	return players, rows.Err()
}
