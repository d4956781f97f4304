// Package report assembles an immutable diagnostic report snapshot from a
// completed session. A report carries everything a renderer needs to
// reproduce the pass/fail table without reaching back into the session.
package report

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/basket/clearvue/internal/catalog"
	"github.com/basket/clearvue/internal/session"
)

// ErrIncompleteSession is returned when a report is requested before every
// test has an outcome. Partial exports would be misleading; the caller must
// finish (or skip through) the run first.
var ErrIncompleteSession = errors.New("session is not complete")

// IDPrefix is the leading tag of generated report ids.
const IDPrefix = "CVR"

// Entry pairs a catalog definition with its recorded outcome, in catalog
// order.
type Entry struct {
	Definition catalog.Definition `json:"definition"`
	Outcome    session.Outcome    `json:"outcome"`
}

// DeviceMetadata holds caller-supplied device and environment fields. The
// builder copies them verbatim; validation (e.g. the IMEI Luhn check) is an
// input-layer concern.
type DeviceMetadata struct {
	Model            string `json:"model,omitempty"`
	OSVersion        string `json:"os_version,omitempty"`
	StorageTotal     int64  `json:"storage_total,omitempty"`
	StorageAvailable int64  `json:"storage_available,omitempty"`
	BatteryLevel     int    `json:"battery_level,omitempty"`
	IMEI             string `json:"imei,omitempty"`
	TAC              string `json:"tac,omitempty"`
	DeviceLabel      string `json:"device_label,omitempty"`
}

// Report is the immutable result of a diagnostic run. Never mutated after
// construction.
type Report struct {
	ID          string         `json:"id"`
	Entries     []Entry        `json:"entries"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	Device      DeviceMetadata `json:"device"`

	PassCount        int `json:"pass_count"`
	FailCount        int `json:"fail_count"`
	SkippedCount     int `json:"skipped_count"`
	NotTestableCount int `json:"not_testable_count"`
	TestedCount      int `json:"tested_count"`
}

// Builder constructs reports. The zero value is unusable; use NewBuilder.
type Builder struct {
	now  func() time.Time
	rand func() uint16
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the completion time source. Used by tests.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// WithRandSuffix overrides the report id suffix source. Used by tests.
func WithRandSuffix(f func() uint16) BuilderOption {
	return func(b *Builder) { b.rand = f }
}

// NewBuilder returns a Builder using the real clock and random source.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		now:  time.Now,
		rand: func() uint16 { return uint16(rand.UintN(1 << 16)) },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build projects a completed session into a report. Counts are recomputed
// by linear scan on every call; catalogs are small. Returns
// ErrIncompleteSession if any test lacks an outcome.
func (b *Builder) Build(s *session.Session, device DeviceMetadata) (*Report, error) {
	if !s.IsComplete() {
		return nil, ErrIncompleteSession
	}

	completedAt := b.now()
	r := &Report{
		ID:          b.generateID(completedAt),
		StartedAt:   s.StartedAt(),
		CompletedAt: completedAt,
		Device:      device,
	}

	cat := s.Catalog()
	r.Entries = make([]Entry, 0, cat.Len())
	for _, def := range cat.Definitions() {
		out, ok := s.Outcome(def.ID)
		if !ok {
			// Unreachable for a complete session; guards the projection
			// if export policy ever loosens.
			continue
		}
		r.Entries = append(r.Entries, Entry{Definition: def, Outcome: out})
		switch out.Status {
		case session.StatusPass:
			r.PassCount++
		case session.StatusFail:
			r.FailCount++
		case session.StatusSkipped:
			r.SkippedCount++
		case session.StatusNotTestable:
			r.NotTestableCount++
		}
	}
	r.TestedCount = r.PassCount + r.FailCount
	return r, nil
}

// generateID returns "CVR-YYYYMMDD-HHHH": the build date plus a random
// 16-bit hex suffix. Single-user, single-session use; collisions are
// immaterial.
func (b *Builder) generateID(at time.Time) string {
	return fmt.Sprintf("%s-%s-%04X", IDPrefix, at.Format("20060102"), b.rand())
}
