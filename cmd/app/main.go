package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/opdeck/opdeck/internal"
	pkgconfig "github.com/opdeck/opdeck/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func exportData(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunExport(cfg, cmd.String("out"))
}

func importData(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunImport(cfg, cmd.String("in"))
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "opdeck",
		Usage:  "Local-first tactical dashboard: tasks, habits, goals, notes, and more behind one API",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio for LLM integration",
				Action: serveMCP,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "export",
				Usage:  "Write a full data archive",
				Action: exportData,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output file, or - for stdout",
						Value: "-",
					},
				},
			},
			{
				Name:   "import",
				Usage:  "Restore a data archive",
				Action: importData,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "in",
						Usage: "Input file, or - for stdin",
						Value: "-",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
