package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"finboard/cmd"
	"finboard/internal/db"
	"finboard/internal/source"
	"finboard/internal/ui"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, version, run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cmd.Config, logger *slog.Logger) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if len(cfg.Sources) == 0 {
		fmt.Fprintln(os.Stderr, "ℹ  No source configured, pass --source or set FINBOARD_SOURCE")
	}

	m := ui.New(ui.Options{
		DB:              database,
		Client:          source.NewClient(cfg.FetchTimeout, version),
		Sources:         cfg.Sources,
		Language:        cfg.LanguageOverride,
		DefaultLanguage: cfg.Language,
		Currency:        cfg.Currency,
		PageSize:        cfg.PageSize,
		PageIncrement:   cfg.PageIncrement,
		ScrollThreshold: cfg.ScrollThreshold,
		Logger:          logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
