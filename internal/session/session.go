// Package session implements the diagnostic run state machine: ordered
// progression through a catalog, per-test verdict capture, back/repeat
// navigation, and completion detection. A Session is single-writer: it is
// owned by one controller at a time and never awaits anything itself;
// asynchronous verdicts are resolved by the caller before Record.
package session

import (
	"errors"
	"time"

	"github.com/basket/clearvue/internal/catalog"
)

// Caller-contract violations. These signal a presentation-layer bug, not a
// user-facing condition, with one documented exception: a late-arriving
// external verdict whose test id no longer matches the current test is
// rejected with ErrInvalidTestID and should be discarded silently.
var (
	ErrInvalidTestID  = errors.New("test id does not match the current test")
	ErrNoPreviousTest = errors.New("no previous test to go back to")
)

// Status is the verdict recorded for a single test.
type Status string

const (
	StatusPass        Status = "pass"
	StatusFail        Status = "fail"
	StatusSkipped     Status = "skipped"
	StatusNotTestable Status = "not_testable"
)

// Phase is the session lifecycle state.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseRunning  Phase = "running"
	PhaseComplete Phase = "complete"
)

// Outcome is the recorded verdict for one test. At most one outcome exists
// per test id; re-recording overwrites.
type Outcome struct {
	TestID       string                   `json:"test_id"`
	Status       Status                   `json:"status"`
	Verification catalog.VerificationMode `json:"verification"`
	Detail       string                   `json:"detail,omitempty"`
	Timestamp    time.Time                `json:"timestamp"`
}

// Metadata holds fields collected out-of-band from per-test outcomes.
// All fields are optional at the session level.
type Metadata struct {
	IMEI        string `json:"imei,omitempty"`
	DeviceLabel string `json:"device_label,omitempty"` // from TAC lookup
	TAC         string `json:"tac,omitempty"`
}

// Session owns the cursor into a catalog and the outcomes accumulated so
// far. Invariants: 0 <= cursor <= catalog.Len(); cursor == Len iff the
// phase is Complete; every index below the cursor has an outcome except
// transiently inside GoBack/RepeatCurrent, which evict before rewinding.
type Session struct {
	cat       *catalog.Catalog
	cursor    int
	outcomes  map[string]Outcome
	startedAt time.Time
	phase     Phase
	meta      Metadata
	now       func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session in the Setup phase over the given catalog.
func New(cat *catalog.Catalog, opts ...Option) *Session {
	s := &Session{
		cat:      cat,
		outcomes: make(map[string]Outcome),
		phase:    PhaseSetup,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a fresh run: outcomes cleared, cursor at zero, startedAt
// stamped. Idempotent: callable from any phase, always yields a new run.
func (s *Session) Start() {
	s.outcomes = make(map[string]Outcome)
	s.cursor = 0
	s.startedAt = s.now()
	s.phase = PhaseRunning
}

// CurrentTest returns the definition under the cursor, or false when the
// session is complete. Pure read.
func (s *Session) CurrentTest() (catalog.Definition, bool) {
	if s.cursor >= s.cat.Len() {
		return catalog.Definition{}, false
	}
	return s.cat.At(s.cursor), true
}

// Record captures a verdict for the current test and advances the cursor.
// The test id must match the current test; otherwise the session is left
// unchanged and ErrInvalidTestID is returned.
func (s *Session) Record(testID string, status Status, detail string) error {
	cur, ok := s.CurrentTest()
	if !ok || cur.ID != testID {
		return ErrInvalidTestID
	}
	s.outcomes[testID] = Outcome{
		TestID:       testID,
		Status:       status,
		Verification: cur.Verification,
		Detail:       detail,
		Timestamp:    s.now(),
	}
	s.cursor++
	if s.cursor == s.cat.Len() {
		s.phase = PhaseComplete
	}
	return nil
}

// GoBack discards the verdict for the previous test and rewinds the cursor
// onto it. Re-answering is mandatory: the evicted outcome is gone.
func (s *Session) GoBack() error {
	if s.cursor == 0 {
		return ErrNoPreviousTest
	}
	s.cursor--
	delete(s.outcomes, s.cat.At(s.cursor).ID)
	s.phase = PhaseRunning
	return nil
}

// RepeatCurrent discards any verdict for the test under the cursor without
// moving it, forcing evidence collection to run again. No-op once complete.
func (s *Session) RepeatCurrent() {
	cur, ok := s.CurrentTest()
	if !ok {
		return
	}
	delete(s.outcomes, cur.ID)
}

// ExitTests abandons the run: outcomes discarded, cursor reset, phase back
// to Setup. Unlike Start it implies no intent to rerun immediately.
func (s *Session) ExitTests() {
	s.outcomes = make(map[string]Outcome)
	s.cursor = 0
	s.phase = PhaseSetup
	s.meta = Metadata{}
}

// Progress reports (current, total) for progress indicators.
func (s *Session) Progress() (current, total int) {
	return s.cursor, s.cat.Len()
}

// IsComplete reports whether every test has a recorded outcome.
func (s *Session) IsComplete() bool {
	return s.cursor == s.cat.Len()
}

// Phase returns the lifecycle state.
func (s *Session) Phase() Phase {
	return s.phase
}

// StartedAt returns the timestamp of the current run's Start call.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Catalog returns the catalog this session traverses.
func (s *Session) Catalog() *catalog.Catalog {
	return s.cat
}

// Outcome returns the recorded outcome for a test id, if any.
func (s *Session) Outcome(testID string) (Outcome, bool) {
	o, ok := s.outcomes[testID]
	return o, ok
}

// Outcomes returns a copy of the recorded outcomes keyed by test id.
func (s *Session) Outcomes() map[string]Outcome {
	out := make(map[string]Outcome, len(s.outcomes))
	for k, v := range s.outcomes {
		out[k] = v
	}
	return out
}

// SetMetadata replaces the session's auxiliary metadata.
func (s *Session) SetMetadata(meta Metadata) {
	s.meta = meta
}

// Metadata returns the auxiliary metadata collected so far.
func (s *Session) Metadata() Metadata {
	return s.meta
}
