// cmd/arcade/main.go
//
// This is the entry point for the arcade CLI.
// When you run `arcade` from any directory, this is what executes.
//
// Flow:
// 1. Initialize the .arcade folder of the current directory
// 2. Handle the `status` and `failures` subcommands if one was given
// 3. Otherwise launch the TUI

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/arcade/internal/tui"
)

func main() {
	rt, err := openRuntime()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if code, handled := handleSubcommand(rt, os.Args[1:]); handled {
		rt.Close()
		os.Exit(code)
	}

	app, err := tui.NewApp(rt.cfg,
		tui.WithClassifier(rt.classifier),
		tui.WithLogger(rt.logger.Logger),
	)
	if err != nil {
		rt.Close()
		fmt.Fprintf(os.Stderr, "Error starting arcade: %v\n", err)
		os.Exit(1)
	}

	// Run blocks until the player quits
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	app.Close()
	rt.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
