package commands

import (
	"fmt"
	"strings"

	"pong/internal/client/display"
)

func (r *Registry) registerUtilCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set the API base URL",
		Usage:       "url [newUrl]",
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send a raw API request",
		Usage:       "raw <method> <path> [jsonBody]",
		Handler:     rawHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear the screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
}

func healthHandler(s Session, args []string) error {
	cl, err := client(s)
	if err != nil {
		return err
	}

	resp, err := cl.Health()
	if err != nil {
		return err
	}

	fmt.Printf("%sStatus: %s, Storage: %s%s\n", display.Green, resp.Status, resp.Storage, display.Reset)
	return nil
}

func urlHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Printf("API base URL: %s\n", s.GetAPIBaseURL())
		return nil
	}

	s.SetAPIBaseURL(args[0])
	fmt.Printf("%sAPI base URL set to: %s%s\n", display.Green, args[0], display.Reset)
	return nil
}

func rawHandler(s Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <method> <path> [jsonBody]")
	}
	cl, err := client(s)
	if err != nil {
		return err
	}

	method := strings.ToUpper(args[0])
	path := args[1]
	body := ""
	if len(args) > 2 {
		body = strings.Join(args[2:], " ")
	}

	return cl.RawRequest(method, path, body)
}

func clearHandler(s Session, args []string) error {
	fmt.Print("\033[2J\033[H")
	return nil
}
