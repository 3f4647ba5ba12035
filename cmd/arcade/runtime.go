package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	"github.com/kingrea/arcade/internal/config"
	"github.com/kingrea/arcade/internal/failure"
	"github.com/kingrea/arcade/internal/logging"
)

// runtime holds what every arcade command needs: configuration, the log file
// and the failure classifier backed by the configured store.
type runtime struct {
	cfg        *config.Config
	logger     *logging.Logger
	classifier *failure.Classifier
	closers    []func() error
}

func openRuntime() (*runtime, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	projectDir, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitArcadeDir(projectDir); err != nil {
		return nil, fmt.Errorf("init .arcade: %w", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger, closers: []func() error{logger.Close}}

	store, err := openStore(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		rt.closers = append(rt.closers, closer.Close)
	}
	rt.classifier = failure.NewClassifier(
		failure.WithStore(store),
		failure.WithPolicies(cfg.FailurePolicies()),
		failure.WithLanguage(parseLanguage(cfg.Project.Failures.Language, logger.Logger)),
		failure.WithLogger(logger.Logger),
	)
	logger.Info("arcade runtime opened",
		"project", cfg.ProjectDir,
		"failure_store", cfg.Project.Failures.Store,
	)
	return rt, nil
}

func openStore(cfg *config.Config) (failure.Store, error) {
	switch cfg.Project.Failures.Store {
	case config.StoreSQLite:
		store, err := failure.OpenSQLiteStore(cfg.DatabasePath())
		if err != nil {
			return nil, fmt.Errorf("open failure database: %w", err)
		}
		return store, nil
	case config.StoreMemory:
		return failure.NewMemoryStore(), nil
	default:
		return failure.NewFileStore(cfg.StateDir()), nil
	}
}

func parseLanguage(value string, logger *slog.Logger) language.Tag {
	tag, err := language.Parse(value)
	if err != nil {
		logger.Warn("unknown failure language, using English", "language", value, "error", err)
		return language.English
	}
	return tag
}

// Close releases the store and the log file, newest first.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i]()
	}
	rt.closers = nil
}
