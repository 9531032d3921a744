package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/yarenty/modelmux/internal/app"
	"github.com/yarenty/modelmux/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "modelmux",
		Usage: "OpenAI-compatible proxy for Vertex AI hosted Claude models",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
		},
		Commands: []*cli.Command{
			proxyStartCommand(),
			tokenCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

func proxyStartCommand() *cli.Command {
	return &cli.Command{
		Name: "start",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "server--host",
				Usage: "server host",
				Value: app.DefaultConfigServerHost,
			},
			&cli.IntFlag{
				Name:  "server--port",
				Usage: "server port",
				Value: int(app.DefaultConfigServerPort),
			},
			&cli.StringFlag{
				Name:  "provider--full-url",
				Usage: "full Vertex resource URL override",
			},
			&cli.StringFlag{
				Name:  "provider--region",
				Usage: "Vertex region, e.g. us-east5",
			},
			&cli.StringFlag{
				Name:  "provider--project",
				Usage: "GCP project id",
			},
			&cli.StringFlag{
				Name:  "provider--publisher",
				Usage: "Vertex model publisher, e.g. anthropic",
			},
			&cli.StringFlag{
				Name:  "provider--model-id",
				Usage: "Vertex model id, e.g. claude-sonnet-4@20250514",
			},
			&cli.StringFlag{
				Name:  "auth--strategy",
				Usage: "auth strategy (gcp_service_account|static_bearer)",
				Value: string(app.DefaultConfigAuthStrategy),
			},
			&cli.StringFlag{
				Name:  "streaming--mode",
				Usage: "streaming mode (auto|non_stream|standard|buffered|always)",
				Value: string(app.DefaultConfigStreamingMode),
			},
			&cli.BoolFlag{
				Name:  "retry--enabled",
				Usage: "retry upstream quota-exceeded responses",
			},
		},
		Action: proxyStartAction,
	}
}

func proxyStartAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to set up observability layer: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	slog.InfoContext(ctx, "starting")

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("app failed to start: %w", err)
	}

	slog.InfoContext(ctx, "stopped gracefully")
	return nil
}
