package module

import (
	"context"
	"fmt"

	"github.com/kingrea/arcade/internal/session"
)

const maxStatusError = 120

// StatusReport is the result of probing one game type.
type StatusReport struct {
	GameType      string `json:"game_type"`
	Implemented   bool   `json:"implemented"`
	HasDescriptor bool   `json:"has_descriptor"`
	Status        Status `json:"status,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Summary aggregates descriptor statuses for dashboards.
type Summary struct {
	Total              int            `json:"total"`
	Implemented        int            `json:"implemented"`
	Fallback           int            `json:"fallback"`
	Missing            int            `json:"missing"`
	ImplementationRate float64        `json:"implementation_rate"`
	Entries            []SummaryEntry `json:"entries"`
}

// SummaryEntry is one row of a Summary.
type SummaryEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// CheckStatus builds a throwaway instance of gameType on an isolated host and
// destroys it immediately. Fallback tiers are not involved.
func (r *Registry) CheckStatus(ctx context.Context, gameType string) StatusReport {
	r.EnsureInitialized()
	report := StatusReport{GameType: gameType}
	desc, ok := r.Descriptor(gameType)
	if !ok {
		report.Error = truncate(fmt.Errorf("%w: %s", ErrUnknownGame, gameType).Error())
		return report
	}
	report.HasDescriptor = true
	report.Status = desc.Status

	probe := session.NewManualHost()
	settings := session.Settings{DurationSeconds: 1, TargetScore: 1, Difficulty: session.DifficultyEasy}
	s, err := construct(func() (session.Session, error) {
		return desc.Constructor(ctx, probe, settings)
	})
	if err != nil {
		report.Error = truncate(err.Error())
		return report
	}
	safeDestroy(s)
	report.Implemented = true
	return report
}

// AggregateStatus counts descriptors by status.
func (r *Registry) AggregateStatus() Summary {
	r.EnsureInitialized()
	var summary Summary
	for _, id := range r.IDs() {
		desc, ok := r.Descriptor(id)
		if !ok {
			continue
		}
		summary.Total++
		switch desc.Status {
		case StatusImplemented:
			summary.Implemented++
		case StatusFallback:
			summary.Fallback++
		case StatusMissing:
			summary.Missing++
		}
		summary.Entries = append(summary.Entries, SummaryEntry{ID: id, Name: desc.Metadata.Name, Status: desc.Status})
	}
	if summary.Total > 0 {
		summary.ImplementationRate = float64(summary.Implemented) * 100 / float64(summary.Total)
	}
	return summary
}

func truncate(msg string) string {
	runes := []rune(msg)
	if len(runes) <= maxStatusError {
		return msg
	}
	return string(runes[:maxStatusError-3]) + "..."
}
