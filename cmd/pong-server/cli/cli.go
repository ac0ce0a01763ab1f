package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"pong/internal/server/core"
	"pong/internal/server/service"
	"pong/internal/server/storage"

	"github.com/lixenwraith/auth"
	"golang.org/x/term"
)

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, import, hash")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "query":
		return runQuery(args[1:])
	case "import":
		return runImport(args[1:])
	case "hash":
		return runHash(args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Printf("Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Printf("Database deleted: %s\n", *path)
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	playerID := fs.String("playerId", "", "Player ID to filter (optional, * for all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	matches, err := store.QueryMatches(*playerID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("No matches found")
		return nil
	}

	// Print results in tabular format
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Match ID\tWinner\tLoser\tScore\tRatings Before\tPlayed At")
	fmt.Fprintln(w, strings.Repeat("-", 96))

	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d-%d\t%.1f / %.1f\t%s\n",
			m.MatchID[:8]+"...",
			m.WinnerID[:8]+"...",
			m.LoserID[:8]+"...",
			m.WinnerScore, m.LoserScore,
			m.WinnerRatingBefore, m.LoserRatingBefore,
			m.PlayedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Printf("\nFound %d match(es)\n", len(matches))
	return nil
}

// runImport loads a JSON dataset into a fresh or existing database,
// replacing its contents. All ratings are derived by replaying the
// imported ledger.
func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	file := fs.String("file", "", "JSON dataset file (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}
	if *file == "" {
		return fmt.Errorf("dataset file required")
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	var req core.ImportRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("failed to parse dataset: %w", err)
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Admin auth is irrelevant offline, but the service requires a secret
	svc := service.New(store, []byte("offline-import-secret-32-characters"), "")
	if err := svc.Load(); err != nil {
		return fmt.Errorf("failed to load existing state: %w", err)
	}

	resp, err := svc.Import(req)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Imported %d player(s) and %d match(es) into %s\n", resp.Players, resp.Matches, *path)
	return nil
}

// runHash prints an Argon2 hash suitable for pre-provisioning the admin
// password out of band.
func runHash(args []string) error {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	password := fs.String("password", "", "Password (optional, will prompt if not provided)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	pw := *password
	if pw == "" {
		fmt.Print("Enter password: ")
		pwBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		pw = string(pwBytes)
	}

	if len(pw) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(pw)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	fmt.Println(hash)
	return nil
}
