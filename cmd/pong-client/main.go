// Package main implements an interactive client for the rating server API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"pong/internal/client/api"
	"pong/internal/client/commands"
	"pong/internal/client/display"
	"pong/internal/client/session"

	"github.com/chzyer/readline"
)

func main() {
	apiURL := flag.String("api-url", "http://localhost:8080", "API server base URL")
	flag.Parse()

	s := &session.Session{
		APIBaseURL: *apiURL,
		Client:     api.New(*apiURL),
		Verbose:    false,
	}

	// Initialize readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("pong"),
		HistoryFile:     ".pong_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sPong Rating Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		// Check for verbose flag
		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		registry.Execute(line)
	}
}

func buildPrompt(s *session.Session) string {
	prompt := "pong"
	if s.AuthToken != "" {
		prompt += display.Yellow + " [" + display.Magenta + "admin" + display.Yellow + "]" + display.Reset
	}
	return display.Prompt(prompt)
}
