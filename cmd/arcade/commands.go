package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/kingrea/arcade/internal/failure"
	"github.com/kingrea/arcade/internal/games"
	"github.com/kingrea/arcade/internal/module"
	"github.com/kingrea/arcade/internal/session"
	"github.com/kingrea/arcade/plugins"
)

// handleSubcommand runs `arcade status` or `arcade failures`. It reports
// false when args name no subcommand and the TUI should start.
func handleSubcommand(rt *runtime, args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	ctx := context.Background()
	switch args[0] {
	case "status":
		return runStatus(ctx, rt, args[1:], os.Stdout), true
	case "failures":
		return runFailures(ctx, rt, args[1:], os.Stdout), true
	case "help", "-h", "--help":
		fmt.Fprintln(os.Stdout, "Usage: arcade [status [--json] | failures [--json] [--clear]]")
		return 0, true
	}
	fmt.Fprintf(os.Stderr, "Unknown command %q\n", args[0])
	fmt.Fprintln(os.Stderr, "Usage: arcade [status [--json] | failures [--json] [--clear]]")
	return 2, true
}

type statusOutput struct {
	Summary module.Summary        `json:"summary"`
	Reports []module.StatusReport `json:"reports"`
}

func runStatus(ctx context.Context, rt *runtime, args []string, out io.Writer) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	reg := module.NewRegistry(session.NewManualHost(),
		module.WithLoader(games.RegisterBuiltins),
		module.WithLoader(plugins.Loader(rt.cfg)),
		module.WithFallback(games.Fallback),
		module.WithLogger(rt.logger.Logger),
	)
	summary := reg.AggregateStatus()
	result := statusOutput{Summary: summary}
	for _, entry := range summary.Entries {
		result.Reports = append(result.Reports, reg.CheckStatus(ctx, entry.ID))
	}
	if *asJSON {
		return writeJSON(out, result)
	}
	fmt.Fprintf(out, "Games: %d of %d implemented (%.0f%%) · %d fallback · %d missing\n",
		summary.Implemented, summary.Total, summary.ImplementationRate, summary.Fallback, summary.Missing)
	for _, report := range result.Reports {
		mark := "✔"
		if !report.Implemented {
			mark = "✘"
		}
		fmt.Fprintf(out, "  %s %-16s %-12s %s\n", mark, report.GameType, report.Status, report.Error)
	}
	return 0
}

func runFailures(ctx context.Context, rt *runtime, args []string, out io.Writer) int {
	fs := flag.NewFlagSet("failures", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print the persisted log as JSON")
	clearLog := fs.Bool("clear", false, "delete the persisted failure log")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *clearLog {
		if err := rt.classifier.Clear(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing failure log: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, "Failure log cleared.")
		return 0
	}
	records, err := rt.classifier.PersistedLog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading failure log: %v\n", err)
		return 1
	}
	if *asJSON {
		return writeJSON(out, records)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No failures recorded.")
		return 0
	}
	byKind := map[failure.Kind]int{}
	resolved := 0
	for _, rec := range records {
		byKind[rec.Kind]++
		if rec.Resolved {
			resolved++
		}
	}
	fmt.Fprintf(out, "%d failures, %d resolved\n", len(records), resolved)
	for _, kind := range failure.Kinds() {
		if n := byKind[kind]; n > 0 {
			fmt.Fprintf(out, "  %-10s %d\n", kind, n)
		}
	}
	for _, rec := range records {
		fmt.Fprintf(out, "%s %-14s %-8s %s\n", rec.Timestamp.Local().Format("2006-01-02 15:04:05"), rec.SessionKind, rec.Kind, rec.Message)
	}
	return 0
}

func writeJSON(out io.Writer, v any) int {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		return 1
	}
	return 0
}
