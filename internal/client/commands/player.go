package commands

import (
	"fmt"
	"strconv"
	"strings"

	"pong/internal/client/api"
	"pong/internal/client/display"
)

func (r *Registry) registerPlayerCommands() {
	r.Register(&Command{
		Name:        "players",
		ShortName:   "p",
		Description: "List all players",
		Usage:       "players",
		Handler:     playersHandler,
	})

	r.Register(&Command{
		Name:        "add",
		ShortName:   "a",
		Description: "Register a new player",
		Usage:       "add <name>",
		Handler:     addPlayerHandler,
	})

	r.Register(&Command{
		Name:        "player",
		ShortName:   "g",
		Description: "Show one player",
		Usage:       "player <name|id>",
		Handler:     getPlayerHandler,
	})

	r.Register(&Command{
		Name:        "remove",
		ShortName:   "d",
		Description: "Remove a player (requires admin login; -cascade drops their matches)",
		Usage:       "remove <name|id> [-cascade]",
		Handler:     removePlayerHandler,
	})
}

func client(s Session) (*api.Client, error) {
	cl, ok := s.GetClient().(*api.Client)
	if !ok {
		return nil, fmt.Errorf("no API client configured")
	}
	return cl, nil
}

// resolvePlayer accepts a player name or an ID prefix and returns the
// matching player.
func resolvePlayer(cl *api.Client, ref string) (*api.PlayerResponse, error) {
	players, err := cl.ListPlayers()
	if err != nil {
		return nil, err
	}

	for i := range players {
		if strings.EqualFold(players[i].Name, ref) {
			return &players[i], nil
		}
	}
	for i := range players {
		if strings.HasPrefix(players[i].ID, ref) {
			return &players[i], nil
		}
	}
	return nil, fmt.Errorf("no player matches %q", ref)
}

func playersHandler(s Session, args []string) error {
	cl, err := client(s)
	if err != nil {
		return err
	}

	players, err := cl.ListPlayers()
	if err != nil {
		return err
	}
	if len(players) == 0 {
		fmt.Println("No players registered")
		return nil
	}

	rows := make([][]string, 0, len(players))
	for _, p := range players {
		rows = append(rows, []string{
			p.ID[:8] + "...",
			p.Name,
			fmt.Sprintf("%.1f", p.Rating),
			strconv.Itoa(p.Wins),
			strconv.Itoa(p.Losses),
			strconv.Itoa(p.GamesPlayed),
		})
	}
	display.Players(rows)
	return nil
}

func addPlayerHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: add <name>")
	}
	cl, err := client(s)
	if err != nil {
		return err
	}

	player, err := cl.CreatePlayer(strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Printf("%sPlayer created: %s (%s)%s\n", display.Green, player.Name, player.ID[:8], display.Reset)
	return nil
}

func getPlayerHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: player <name|id>")
	}
	cl, err := client(s)
	if err != nil {
		return err
	}

	player, err := resolvePlayer(cl, args[0])
	if err != nil {
		return err
	}

	display.PrettyPrintJSON(player)
	return nil
}

func removePlayerHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: remove <name|id> [-cascade]")
	}
	cl, err := client(s)
	if err != nil {
		return err
	}

	cascade := false
	ref := args[0]
	for _, arg := range args[1:] {
		if arg == "-cascade" {
			cascade = true
		}
	}

	player, err := resolvePlayer(cl, ref)
	if err != nil {
		return err
	}

	if err := cl.RemovePlayer(player.ID, cascade); err != nil {
		return err
	}

	fmt.Printf("%sPlayer removed: %s%s\n", display.Green, player.Name, display.Reset)
	return nil
}
