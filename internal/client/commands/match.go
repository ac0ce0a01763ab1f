package commands

import (
	"fmt"
	"strconv"

	"pong/internal/client/api"
	"pong/internal/client/display"
)

func (r *Registry) registerMatchCommands() {
	r.Register(&Command{
		Name:        "board",
		ShortName:   "b",
		Description: "Show the leaderboard",
		Usage:       "board",
		Handler:     boardHandler,
	})

	r.Register(&Command{
		Name:        "matches",
		ShortName:   "m",
		Description: "List recorded matches, newest first",
		Usage:       "matches",
		Handler:     matchesHandler,
	})

	r.Register(&Command{
		Name:        "record",
		ShortName:   "r",
		Description: "Record a match result",
		Usage:       "record <winner> <loser> [winnerScore loserScore]",
		Handler:     recordHandler,
	})

	r.Register(&Command{
		Name:        "retract",
		ShortName:   "t",
		Description: "Delete a recorded match (requires admin login)",
		Usage:       "retract <matchId>",
		Handler:     retractHandler,
	})
}

func boardHandler(s Session, args []string) error {
	cl, err := client(s)
	if err != nil {
		return err
	}

	board, err := cl.Leaderboard()
	if err != nil {
		return err
	}
	if len(board) == 0 {
		fmt.Println("No players registered")
		return nil
	}

	rows := make([][]string, 0, len(board))
	for _, e := range board {
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			e.Name,
			fmt.Sprintf("%.1f", e.Rating),
			strconv.Itoa(e.Wins),
			strconv.Itoa(e.Losses),
			strconv.Itoa(e.GamesPlayed),
		})
	}
	display.Leaderboard(rows)
	return nil
}

func matchesHandler(s Session, args []string) error {
	cl, err := client(s)
	if err != nil {
		return err
	}

	matches, err := cl.ListMatches()
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches recorded")
		return nil
	}

	// Player names read better than raw IDs
	names := make(map[string]string)
	if players, err := cl.ListPlayers(); err == nil {
		for _, p := range players {
			names[p.ID] = p.Name
		}
	}
	nameOf := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id[:8] + "..."
	}

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{
			m.ID[:8] + "...",
			nameOf(m.WinnerID),
			nameOf(m.LoserID),
			fmt.Sprintf("%d-%d", m.WinnerScore, m.LoserScore),
			m.PlayedAt.Format("2006-01-02 15:04"),
		})
	}
	display.Matches(rows)
	return nil
}

func recordHandler(s Session, args []string) error {
	if len(args) != 2 && len(args) != 4 {
		return fmt.Errorf("usage: record <winner> <loser> [winnerScore loserScore]")
	}
	cl, err := client(s)
	if err != nil {
		return err
	}

	winner, err := resolvePlayer(cl, args[0])
	if err != nil {
		return err
	}
	loser, err := resolvePlayer(cl, args[1])
	if err != nil {
		return err
	}

	// Default to a shutout when no score is given
	winnerScore, loserScore := 11, 0
	if len(args) == 4 {
		if winnerScore, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("invalid winner score: %s", args[2])
		}
		if loserScore, err = strconv.Atoi(args[3]); err != nil {
			return fmt.Errorf("invalid loser score: %s", args[3])
		}
	}

	match, err := cl.RecordMatch(&api.RecordMatchRequest{
		WinnerID:    winner.ID,
		LoserID:     loser.ID,
		WinnerScore: winnerScore,
		LoserScore:  loserScore,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%sMatch recorded: %s beat %s %d-%d%s\n",
		display.Green, winner.Name, loser.Name, match.WinnerScore, match.LoserScore, display.Reset)
	return nil
}

func retractHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: retract <matchId>")
	}
	cl, err := client(s)
	if err != nil {
		return err
	}

	// Accept an ID prefix, matching what the matches table shows
	matchID := args[0]
	if len(matchID) < 36 {
		matches, err := cl.ListMatches()
		if err != nil {
			return err
		}
		found := ""
		for _, m := range matches {
			if len(m.ID) >= len(matchID) && m.ID[:len(matchID)] == matchID {
				if found != "" {
					return fmt.Errorf("ambiguous match ID prefix: %s", matchID)
				}
				found = m.ID
			}
		}
		if found == "" {
			return fmt.Errorf("no match with ID prefix: %s", matchID)
		}
		matchID = found
	}

	if err := cl.DeleteMatch(matchID); err != nil {
		return err
	}

	fmt.Printf("%sMatch retracted, ratings recomputed%s\n", display.Green, display.Reset)
	return nil
}
