package failure

import "context"

// Procedure attempts to repair the situation a record describes, for example
// by rebuilding the session.
type Procedure func(ctx context.Context, rec *Record) error

// Policy decides how a failure kind is resolved.
type Policy struct {
	AutoRetry       bool
	MaxRetries      int
	RemediationHint string
	Procedure       Procedure
}

// DefaultPolicies returns the built-in resolution table.
func DefaultPolicies() map[Kind]Policy {
	return map[Kind]Policy{
		KindRenderer: {AutoRetry: true, MaxRetries: 2, RemediationHint: "Resize the terminal or disable color and try again."},
		KindLoad:     {AutoRetry: true, MaxRetries: 3, RemediationHint: "The game module could not be loaded; a substitute is shown instead."},
		KindInput:    {AutoRetry: false, MaxRetries: 0, RemediationHint: "Check your keyboard and terminal key bindings."},
		KindAudio:    {AutoRetry: true, MaxRetries: 1, RemediationHint: "Audio is optional; the game continues muted."},
		KindMemory:   {AutoRetry: false, MaxRetries: 0, RemediationHint: "Close other programs and restart the arcade."},
		KindNetwork:  {AutoRetry: true, MaxRetries: 3, RemediationHint: "Check your connection."},
		KindInit:     {AutoRetry: true, MaxRetries: 2, RemediationHint: "The game failed to start; retrying usually helps."},
		KindRuntime:  {AutoRetry: true, MaxRetries: 1, RemediationHint: "Restart the game. Report it if this keeps happening."},
	}
}
