package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/arcade/internal/session"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plays.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestRecordPlayAndFailure(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "logs", "plays.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.now = func() time.Time { return time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC) }
	book.RecordPlay("catch", session.Result{Success: true, Score: 15, ElapsedSeconds: 12.34})
	book.RecordPlay("reaction", session.Result{Score: 3, ElapsedSeconds: 20})
	book.RecordFailure("tap_sprint", "abc", "The game failed to start.")

	lines, total := book.Tail(10)
	if total != 3 {
		t.Fatalf("total lines = %d, want 3", total)
	}
	want := []string{
		"2024-03-09T08:00:00Z INFO  catch won score=15 time=12.3s",
		"2024-03-09T08:00:00Z WARN  reaction lost score=3 time=20.0s",
		"2024-03-09T08:00:00Z ERROR tap_sprint failure=abc The game failed to start.",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTailOnMissingOrNilLogbook(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "empty.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("expected empty tail, got %v %d", lines, total)
	}
	var nilBook *Logbook
	nilBook.RecordPlay("catch", session.Result{})
	if lines, total := nilBook.Tail(5); lines != nil || total != 0 {
		t.Fatalf("expected nil logbook to be inert")
	}
}
