package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/app"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/config"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/pattern"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	f, err := tea.LogToFile(cfg.LogFile, "athanor")
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))

	params := pattern.DefaultParams()
	canvas := tui.NewCanvas(90, 30, params.Width, params.Height)

	a, err := app.New(ctx, app.Options{Config: cfg, Logger: logger, Surface: canvas})
	if err != nil {
		fmt.Printf("Error creating app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.RestoreIfSaved(); err != nil {
		logger.Warn("saved session not restored", "error", err)
	}

	if err := tui.Run(a, canvas); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
