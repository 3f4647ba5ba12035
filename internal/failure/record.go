package failure

import "time"

// Context is the snapshot of the host taken when a failure is recorded.
type Context struct {
	State          string          `json:"state"`
	ViewportWidth  int             `json:"viewport_width"`
	ViewportHeight int             `json:"viewport_height"`
	Flags          map[string]bool `json:"flags,omitempty"`
}

// Record is one classified failure.
type Record struct {
	ID          string    `json:"id"`
	SessionKind string    `json:"session_kind"`
	Kind        Kind      `json:"kind"`
	Message     string    `json:"message"`
	Context     Context   `json:"context"`
	Timestamp   time.Time `json:"timestamp"`
	Resolved    bool      `json:"resolved"`
}

// Notification is raised for failures the player has to know about.
type Notification struct {
	Event           string
	FailureID       string
	Message         string
	CanRetry        bool
	RemediationHint string
	Record          Record
}

// Statistics summarizes recorded failures for diagnostics screens.
type Statistics struct {
	Total         int
	Resolved      int
	ByKind        map[Kind]int
	BySessionKind map[string]int
	Recent        []Record
}
