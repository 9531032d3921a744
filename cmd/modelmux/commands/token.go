package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/yarenty/modelmux/internal/app"
)

// tokenCommand groups subcommands for managing the stored upstream secret.
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "manage the stored upstream secret",
		Commands: []*cli.Command{
			tokenSetCommand(),
		},
	}
}

// tokenSetCommand prompts for the upstream secret (a GCP service-account
// JSON key or a static bearer token, depending on auth.strategy) without
// echoing it to the terminal, then writes it to the configured TokenStore.
func tokenSetCommand() *cli.Command {
	return &cli.Command{
		Name:  "set",
		Usage: "prompt for the upstream secret and write it to the configured token store",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store, err := cfg.Auth.NewTokenStore()
			if err != nil {
				return fmt.Errorf("failed to create token store: %w", err)
			}

			fmt.Fprintf(cmd.Writer, "enter secret for %s storage (%s): ", cfg.Auth.Storage, cfg.Auth.Strategy)
			secret, err := readSecret()
			if err != nil {
				return fmt.Errorf("failed to read secret: %w", err)
			}
			fmt.Fprintln(cmd.Writer)

			if err := store.Write(ctx, secret); err != nil {
				return fmt.Errorf("failed to write secret: %w", err)
			}

			fmt.Fprintln(cmd.Writer, "secret stored")
			return nil
		},
	}
}

// readSecret reads a line from stdin without echoing it, falling back to a
// plain line read when stdin is not an interactive terminal (e.g. piped
// input in scripts or tests).
func readSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var line string
		if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
			return "", err
		}
		return line, nil
	}

	raw, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
