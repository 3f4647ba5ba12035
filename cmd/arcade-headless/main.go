// cmd/arcade-headless/main.go
//
// Plays one game without a terminal UI. The session runs on a ManualHost and
// is driven by a key script, which makes it useful for smoke tests of game
// definitions and for reproducing failures.
//
//	arcade-headless --game tap_sprint --keys 'space*40'

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/arcade/internal/config"
	"github.com/kingrea/arcade/internal/failure"
	"github.com/kingrea/arcade/internal/games"
	"github.com/kingrea/arcade/internal/logging"
	"github.com/kingrea/arcade/internal/module"
	"github.com/kingrea/arcade/internal/session"
	"github.com/kingrea/arcade/plugins"
)

type runOptions struct {
	game       string
	keys       []string
	keyEvery   time.Duration
	frame      time.Duration
	settings   session.Settings
	logLevel   string
	asJSON     bool
	projectDir string
}

type runReport struct {
	Game         string           `json:"game"`
	Kind         string           `json:"kind"`
	Presentation string           `json:"presentation"`
	Settings     session.Settings `json:"settings"`
	Result       session.Result   `json:"result"`
	Failures     []failure.Record `json:"failures,omitempty"`
}

func main() {
	gameID := flag.String("game", "", "game identifier to play (e.g. tap_sprint)")
	projectDir := flag.String("project", "", "path to the project directory (defaults to cwd)")
	keys := flag.String("keys", "", "comma separated key script, 'key*n' repeats a key")
	keyEvery := flag.Duration("key-every", 100*time.Millisecond, "time between scripted key presses")
	frame := flag.Duration("frame", 33*time.Millisecond, "simulated frame length")
	duration := flag.Float64("duration", 0, "override duration in seconds")
	target := flag.Int("target", 0, "override target score")
	difficulty := flag.String("difficulty", "", "override difficulty (easy, normal, hard)")
	logLevel := flag.String("log-level", "warn", "log level written to stderr")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	if strings.TrimSpace(*gameID) == "" {
		die("--game is required")
	}
	script, err := parseKeys(*keys)
	if err != nil {
		die("parse --keys: %v", err)
	}
	opts := runOptions{
		game:     strings.TrimSpace(*gameID),
		keys:     script,
		keyEvery: *keyEvery,
		frame:    *frame,
		settings: session.Settings{
			DurationSeconds: *duration,
			TargetScore:     *target,
			Difficulty:      session.Difficulty(strings.ToLower(strings.TrimSpace(*difficulty))),
		},
		logLevel:   *logLevel,
		asJSON:     *asJSON,
		projectDir: *projectDir,
	}
	report, err := run(context.Background(), opts, os.Stderr)
	if err != nil {
		die("%v", err)
	}
	if err := printReport(os.Stdout, report, opts.asJSON); err != nil {
		die("write report: %v", err)
	}
	if !report.Result.Success {
		os.Exit(3)
	}
}

// run plays opts.game to completion and reports the outcome together with
// every failure recorded on the way.
func run(ctx context.Context, opts runOptions, logOut io.Writer) (runReport, error) {
	if opts.frame <= 0 {
		return runReport{}, fmt.Errorf("frame must be positive")
	}
	project := opts.projectDir
	if project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return runReport{}, fmt.Errorf("determine working directory: %w", err)
		}
		project = cwd
	}
	project, err := filepath.Abs(project)
	if err != nil {
		return runReport{}, fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitArcadeDir(project); err != nil {
		return runReport{}, fmt.Errorf("init .arcade: %w", err)
	}
	cfg, err := config.NewConfig(project)
	if err != nil {
		return runReport{}, fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewHandlerLogger(opts.logLevel, cfg.Project.Logging.Format, logOut)

	classifier := failure.NewClassifier(
		failure.WithStore(failure.NewMemoryStore()),
		failure.WithPolicies(cfg.FailurePolicies()),
		failure.WithLogger(logger),
	)
	host := session.NewManualHost()
	reg := module.NewRegistry(host,
		module.WithLoader(games.RegisterBuiltins),
		module.WithLoader(plugins.Loader(cfg)),
		module.WithFallback(games.Fallback),
		module.WithRecorder(classifier),
		module.WithLogger(logger),
	)

	settings := opts.settings.WithDefaults(cfg.SettingsFor(opts.game))
	if settings.Difficulty != "" {
		if _, err := session.ParseDifficulty(string(settings.Difficulty)); err != nil {
			return runReport{}, err
		}
	}
	s := reg.Resolve(ctx, opts.game, settings,
		session.WithFailureHandler(func(err error) {
			classifier.Handle(ctx, err, opts.game, failure.Context{State: session.StatePlaying.String()})
		}),
		session.WithLogger(logger.With("game", opts.game)),
	)
	defer s.Destroy()
	s.Initialize()
	s.Start()

	limit := time.Duration(s.Settings().DurationSeconds*float64(time.Second)) + time.Second
	var played time.Duration
	next := 0
	sincePress := opts.keyEvery
	for !s.State().IsTerminal() && played <= limit {
		if next < len(opts.keys) && sincePress >= opts.keyEvery {
			s.HandleInput(opts.keys[next])
			next++
			sincePress = 0
		}
		host.Step(opts.frame)
		played += opts.frame
		sincePress += opts.frame
	}

	result, _ := s.Result()
	stats := classifier.Statistics(failureReportLimit)
	return runReport{
		Game:         opts.game,
		Kind:         s.Kind(),
		Presentation: s.Presentation().Name,
		Settings:     s.Settings(),
		Result:       result,
		Failures:     stats.Recent,
	}, nil
}

const failureReportLimit = 20

// parseKeys expands "space*3,left" into [space space space left].
func parseKeys(script string) ([]string, error) {
	var keys []string
	for _, part := range strings.Split(script, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, count := part, 1
		if i := strings.LastIndex(part, "*"); i > 0 {
			n, err := strconv.Atoi(part[i+1:])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid repeat in %q", part)
			}
			key, count = part[:i], n
		}
		for range count {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func printReport(out io.Writer, report runReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	outcome := "lost"
	if report.Result.Success {
		outcome = "won"
	}
	if _, err := fmt.Fprintf(out, "%s (%s) %s · score %d/%d · %.1fs\n",
		report.Presentation, report.Kind, outcome,
		report.Result.Score, report.Settings.TargetScore, report.Result.ElapsedSeconds); err != nil {
		return err
	}
	for _, rec := range report.Failures {
		if _, err := fmt.Fprintf(out, "  failure %s %s: %s\n", rec.SessionKind, rec.Kind, rec.Message); err != nil {
			return err
		}
	}
	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
