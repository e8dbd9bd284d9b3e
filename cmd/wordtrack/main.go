// cmd/wordtrack/main.go
//
// This is the entry point for the wordtrack CLI.
// Run `wordtrack` from the folder holding bible_plan.csv, or pass that folder
// as the only argument.
//
// Flow:
// 1. Make sure .wordtrack/ exists (config.yaml, logs/, exports/)
// 2. Load the plan and the progress file
// 3. Launch the dashboard

package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/wordtrack/internal/config"
	"github.com/kingrea/wordtrack/internal/tui"
)

func main() {
	projectDir, err := resolveProjectDir(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitTrackerDir(projectDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing %s directory: %v\n", config.TrackerDir, err)
		os.Exit(1)
	}

	app, err := tui.NewApp(projectDir)
	if err != nil {
		// nothing is rendered when the plan or progress file is unusable
		fmt.Fprintln(os.Stderr, tui.UserMessage(err))
		os.Exit(1)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func resolveProjectDir(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return filepath.Abs(args[0])
	}
	return os.Getwd()
}
