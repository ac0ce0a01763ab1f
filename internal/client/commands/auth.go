package commands

import (
	"fmt"
	"syscall"

	"pong/internal/client/display"

	"golang.org/x/term"
)

func (r *Registry) registerAuthCommands() {
	r.Register(&Command{
		Name:        "login",
		ShortName:   "l",
		Description: "Login as admin",
		Usage:       "login",
		Handler:     loginHandler,
	})

	r.Register(&Command{
		Name:        "logout",
		ShortName:   "o",
		Description: "Clear authentication",
		Usage:       "logout",
		Handler:     logoutHandler,
	})
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pwBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pwBytes), nil
}

func loginHandler(s Session, args []string) error {
	cl, err := client(s)
	if err != nil {
		return err
	}

	password, err := readPassword("Admin password: ")
	if err != nil {
		return err
	}

	resp, err := cl.Login(password)
	if err != nil {
		return err
	}

	s.SetAuthToken(resp.Token)
	fmt.Printf("%sLogged in as admin (token expires %s)%s\n",
		display.Green, resp.ExpiresAt.Format("15:04 MST"), display.Reset)
	return nil
}

func logoutHandler(s Session, args []string) error {
	s.SetAuthToken("")
	fmt.Printf("%sLogged out%s\n", display.Green, display.Reset)
	return nil
}
