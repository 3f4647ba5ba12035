package failure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// NotifyEvent is the name carried by every Notification.
const NotifyEvent = "failure.notify"

// memoryCapacity bounds the in-process record list used for lookups and
// statistics. The persisted log is bounded separately by LogCapacity.
const memoryCapacity = 500

// Option customizes a Classifier.
type Option func(*Classifier)

// WithStore persists the failure log to store.
func WithStore(store Store) Option {
	return func(c *Classifier) {
		if store != nil {
			c.store = store
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPolicies overrides entries of the default policy table.
func WithPolicies(overrides map[Kind]Policy) Option {
	return func(c *Classifier) {
		for kind, policy := range overrides {
			c.policies[kind] = policy
		}
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLanguage selects the locale notifications are rendered in.
func WithLanguage(tag language.Tag) Option {
	return func(c *Classifier) {
		c.lang = tag
	}
}

type counterKey struct {
	sessionKind string
	kind        Kind
}

// Classifier sorts failures into kinds, applies resolution policies and keeps
// the bounded failure log. One instance serves the whole process.
type Classifier struct {
	mu          sync.Mutex
	policies    map[Kind]Policy
	counters    map[counterKey]int
	records     []*Record
	store       Store
	logger      *slog.Logger
	now         func() time.Time
	lang        language.Tag
	subscribers map[int]func(Notification)
	nextSubID   int
}

// NewClassifier returns a classifier with the default policy table and an
// in-memory store.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		policies:    DefaultPolicies(),
		counters:    map[counterKey]int{},
		store:       NewMemoryStore(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		lang:        language.English,
		subscribers: map[int]func(Notification){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Policy returns the resolution policy for kind.
func (c *Classifier) Policy(kind Kind) Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policyLocked(kind)
}

func (c *Classifier) policyLocked(kind Kind) Policy {
	if policy, ok := c.policies[kind]; ok {
		return policy
	}
	return c.policies[KindRuntime]
}

// SetProcedure installs the repair procedure for kind, keeping the rest of
// its policy.
func (c *Classifier) SetProcedure(kind Kind, procedure Procedure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	policy := c.policyLocked(kind)
	policy.Procedure = procedure
	c.policies[kind] = policy
}

// Subscribe registers fn for failure notifications.
func (c *Classifier) Subscribe(fn func(Notification)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSubID++
	id := c.nextSubID
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Record classifies err, stores it and writes it to the persisted log.
func (c *Classifier) Record(ctx context.Context, err error, sessionKind string, snapshot Context) *Record {
	msg := "unknown failure"
	if err != nil {
		msg = err.Error()
	}
	rec := &Record{
		ID:          uuid.NewString(),
		SessionKind: sessionKind,
		Kind:        Classify(msg),
		Message:     msg,
		Context:     snapshot,
		Timestamp:   c.now().UTC(),
	}

	c.mu.Lock()
	c.records = append(c.records, rec)
	if over := len(c.records) - memoryCapacity; over > 0 {
		c.records = append([]*Record(nil), c.records[over:]...)
	}
	c.mu.Unlock()

	if persistErr := c.persist(ctx, func(records []Record) []Record {
		return appendBounded(records, *rec, LogCapacity)
	}); persistErr != nil {
		c.logger.Warn("failure log not persisted", "error", persistErr)
	}
	c.logger.Error("session failure",
		"failure_id", rec.ID,
		"session_kind", rec.SessionKind,
		"kind", string(rec.Kind),
		"message", rec.Message,
		"state", rec.Context.State,
		"viewport", fmt.Sprintf("%dx%d", rec.Context.ViewportWidth, rec.Context.ViewportHeight),
	)
	return rec
}

// AttemptResolution applies the policy for rec.Kind. It reports whether the
// failure was resolved locally.
func (c *Classifier) AttemptResolution(ctx context.Context, rec *Record) bool {
	if rec == nil {
		return false
	}
	c.mu.Lock()
	policy := c.policyLocked(rec.Kind)
	if !policy.AutoRetry {
		c.mu.Unlock()
		c.logger.Info("failure not auto-retryable", "failure_id", rec.ID, "kind", string(rec.Kind))
		return false
	}
	key := counterKey{sessionKind: rec.SessionKind, kind: rec.Kind}
	if c.counters[key] >= policy.MaxRetries {
		c.mu.Unlock()
		c.logger.Warn("max retries reached",
			"failure_id", rec.ID,
			"session_kind", rec.SessionKind,
			"kind", string(rec.Kind),
			"max_retries", policy.MaxRetries,
		)
		return false
	}
	c.counters[key]++
	attempt := c.counters[key]
	c.mu.Unlock()

	if policy.Procedure != nil {
		if err := runProcedure(ctx, policy.Procedure, rec); err != nil {
			c.logger.Warn("resolution procedure failed",
				"failure_id", rec.ID,
				"attempt", attempt,
				"error", err,
			)
			return false
		}
	}

	c.mu.Lock()
	rec.Resolved = true
	c.mu.Unlock()
	if err := c.persist(ctx, func(records []Record) []Record {
		for i := range records {
			if records[i].ID == rec.ID {
				records[i].Resolved = true
			}
		}
		return records
	}); err != nil {
		c.logger.Warn("failure log not persisted", "error", err)
	}
	c.logger.Info("failure resolved", "failure_id", rec.ID, "attempt", attempt)
	return true
}

// RemainingRetries returns how many automatic attempts are left for the
// record's (session kind, failure kind) pair.
func (c *Classifier) RemainingRetries(rec *Record) int {
	if rec == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	policy := c.policyLocked(rec.Kind)
	if !policy.AutoRetry {
		return 0
	}
	left := policy.MaxRetries - c.counters[counterKey{sessionKind: rec.SessionKind, kind: rec.Kind}]
	if left < 0 {
		return 0
	}
	return left
}

// Notify tells subscribers about rec when it is unresolved or force is set.
func (c *Classifier) Notify(rec *Record, resolved, force bool) {
	if rec == nil || (resolved && !force) {
		return
	}
	policy := c.Policy(rec.Kind)
	note := Notification{
		Event:           NotifyEvent,
		FailureID:       rec.ID,
		Message:         LocalizedMessage(c.lang, rec.Kind),
		CanRetry:        c.RemainingRetries(rec) > 0,
		RemediationHint: policy.RemediationHint,
		Record:          *rec,
	}
	c.mu.Lock()
	ids := make([]int, 0, len(c.subscribers))
	for id := range c.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(Notification), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, c.subscribers[id])
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn(note)
	}
}

// Handle records err, attempts resolution and notifies when it stays
// unresolved.
func (c *Classifier) Handle(ctx context.Context, err error, sessionKind string, snapshot Context) *Record {
	rec := c.Record(ctx, err, sessionKind, snapshot)
	resolved := c.AttemptResolution(ctx, rec)
	c.Notify(rec, resolved, false)
	return rec
}

// Lookup finds a record by id in memory, then in the persisted log.
func (c *Classifier) Lookup(ctx context.Context, id string) (*Record, bool) {
	c.mu.Lock()
	for i := len(c.records) - 1; i >= 0; i-- {
		if c.records[i].ID == id {
			rec := c.records[i]
			c.mu.Unlock()
			return rec, true
		}
	}
	c.mu.Unlock()
	persisted, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("failure log not readable", "error", err)
		return nil, false
	}
	for i := range persisted {
		if persisted[i].ID == id {
			rec := persisted[i]
			return &rec, true
		}
	}
	return nil, false
}

// ManualRetry re-runs AttemptResolution for a previously recorded failure,
// for a player-triggered "try again".
func (c *Classifier) ManualRetry(ctx context.Context, id string) bool {
	rec, ok := c.Lookup(ctx, id)
	if !ok {
		c.logger.Warn("manual retry for unknown failure", "failure_id", id)
		return false
	}
	return c.AttemptResolution(ctx, rec)
}

// Statistics aggregates the in-memory records; recent bounds the number of
// newest records returned.
func (c *Classifier) Statistics(recent int) Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := Statistics{
		Total:         len(c.records),
		ByKind:        map[Kind]int{},
		BySessionKind: map[string]int{},
	}
	for _, rec := range c.records {
		stats.ByKind[rec.Kind]++
		stats.BySessionKind[rec.SessionKind]++
		if rec.Resolved {
			stats.Resolved++
		}
	}
	for i := len(c.records) - 1; i >= 0 && len(stats.Recent) < recent; i-- {
		stats.Recent = append(stats.Recent, *c.records[i])
	}
	return stats
}

// PersistedLog returns the persisted failure log, oldest first.
func (c *Classifier) PersistedLog(ctx context.Context) ([]Record, error) {
	return c.store.Load(ctx)
}

// Clear drops every record, retry counter and the persisted log.
func (c *Classifier) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.records = nil
	c.counters = map[counterKey]int{}
	c.mu.Unlock()
	if err := c.store.Save(ctx, nil); err != nil {
		return fmt.Errorf("failure: clear log: %w", err)
	}
	c.logger.Info("failure log cleared")
	return nil
}

func (c *Classifier) persist(ctx context.Context, mutate func([]Record) []Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	records, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	return c.store.Save(ctx, mutate(records))
}

func runProcedure(ctx context.Context, procedure Procedure, rec *Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failure: procedure panicked: %v", r)
		}
	}()
	return procedure(ctx, rec)
}
