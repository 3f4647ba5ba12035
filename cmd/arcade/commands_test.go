package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kingrea/arcade/internal/config"
	"github.com/kingrea/arcade/internal/failure"
	"github.com/kingrea/arcade/internal/logging"
)

func newTestRuntime(t *testing.T) *runtime {
	t.Helper()
	projectDir := t.TempDir()
	require.NoError(t, config.InitArcadeDir(projectDir))
	cfg, err := config.NewConfig(projectDir)
	require.NoError(t, err)
	logger := &logging.Logger{Logger: logging.Discard()}
	return &runtime{
		cfg:        cfg,
		logger:     logger,
		classifier: failure.NewClassifier(failure.WithStore(failure.NewMemoryStore())),
	}
}

func TestRunStatusPrintsSummary(t *testing.T) {
	rt := newTestRuntime(t)
	var out bytes.Buffer
	require.Equal(t, 0, runStatus(context.Background(), rt, nil, &out))
	text := out.String()
	require.Contains(t, text, "Games: 3 of 5 implemented (60%)")
	require.Contains(t, text, "✘ memory_match")
	require.Contains(t, text, "✔ tap_sprint")

	out.Reset()
	require.Equal(t, 0, runStatus(context.Background(), rt, []string{"--json"}, &out))
	require.Contains(t, out.String(), `"game_type": "catch"`)

	require.Equal(t, 2, runStatus(context.Background(), rt, []string{"--bogus"}, &out))
}

func TestRunFailuresListsAndClears(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()
	var out bytes.Buffer
	require.Equal(t, 0, runFailures(ctx, rt, nil, &out))
	require.Contains(t, out.String(), "No failures recorded.")

	rt.classifier.Record(ctx, errors.New("texture upload failed"), "catch", failure.Context{State: "playing"})
	out.Reset()
	require.Equal(t, 0, runFailures(ctx, rt, nil, &out))
	text := out.String()
	require.Contains(t, text, "1 failures, 0 resolved")
	require.True(t, strings.Contains(text, "renderer"), text)

	out.Reset()
	require.Equal(t, 0, runFailures(ctx, rt, []string{"--clear"}, &out))
	log, err := rt.classifier.PersistedLog(ctx)
	require.NoError(t, err)
	require.Empty(t, log)
}

func TestHandleSubcommandFallsThroughToTUI(t *testing.T) {
	rt := newTestRuntime(t)
	_, handled := handleSubcommand(rt, nil)
	require.False(t, handled)
	code, handled := handleSubcommand(rt, []string{"dance"})
	require.True(t, handled)
	require.Equal(t, 2, code)
}
