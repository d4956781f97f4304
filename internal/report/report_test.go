package report

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/basket/clearvue/internal/catalog"
	"github.com/basket/clearvue/internal/session"
)

var idPattern = regexp.MustCompile(`^CVR-\d{8}-[0-9A-F]{4}$`)

// completedSession runs the iPhone catalog to completion with the given
// statuses. Statuses shorter than the catalog are padded with pass.
func completedSession(t *testing.T, statuses []session.Status) *session.Session {
	t.Helper()

	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := session.New(catalog.IPhone(), session.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	s.Start()
	for i := 0; !s.IsComplete(); i++ {
		def, _ := s.CurrentTest()
		status := session.StatusPass
		if i < len(statuses) {
			status = statuses[i]
		}
		if err := s.Record(def.ID, status, ""); err != nil {
			t.Fatalf("Record(%s): %v", def.ID, err)
		}
	}
	return s
}

func TestBuildRejectsIncompleteSession(t *testing.T) {
	s := session.New(catalog.IPhone())
	s.Start()
	def, _ := s.CurrentTest()
	if err := s.Record(def.ID, session.StatusPass, ""); err != nil {
		t.Fatalf("Record: %v", err)
	}

	_, err := NewBuilder().Build(s, DeviceMetadata{})
	if !errors.Is(err, ErrIncompleteSession) {
		t.Fatalf("Build = %v, want ErrIncompleteSession", err)
	}
}

func TestBuildCounts(t *testing.T) {
	s := completedSession(t, []session.Status{
		session.StatusPass,
		session.StatusPass,
		session.StatusFail,
		session.StatusSkipped,
		session.StatusNotTestable,
		session.StatusSkipped,
		session.StatusNotTestable,
	})

	r, err := NewBuilder().Build(s, DeviceMetadata{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// 7 explicit statuses plus 6 padded passes.
	if r.PassCount != 8 {
		t.Fatalf("PassCount = %d, want 8", r.PassCount)
	}
	if r.FailCount != 1 {
		t.Fatalf("FailCount = %d, want 1", r.FailCount)
	}
	if r.SkippedCount != 2 {
		t.Fatalf("SkippedCount = %d, want 2", r.SkippedCount)
	}
	if r.NotTestableCount != 2 {
		t.Fatalf("NotTestableCount = %d, want 2", r.NotTestableCount)
	}
	if r.TestedCount != 9 {
		t.Fatalf("TestedCount = %d, want 9 (pass + fail)", r.TestedCount)
	}
	if len(r.Entries) != 13 {
		t.Fatalf("Entries = %d, want 13", len(r.Entries))
	}
}

func TestBuildEntriesFollowCatalogOrder(t *testing.T) {
	s := completedSession(t, nil)
	r, err := NewBuilder().Build(s, DeviceMetadata{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cat := s.Catalog()
	for i, e := range r.Entries {
		if want := cat.At(i).ID; e.Definition.ID != want {
			t.Fatalf("entry %d = %s, want %s", i, e.Definition.ID, want)
		}
		if e.Outcome.TestID != e.Definition.ID {
			t.Fatalf("entry %d outcome keyed %s, definition %s", i, e.Outcome.TestID, e.Definition.ID)
		}
	}
}

func TestBuildIDFormat(t *testing.T) {
	s := completedSession(t, nil)

	at := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)
	b := NewBuilder(
		WithClock(func() time.Time { return at }),
		WithRandSuffix(func() uint16 { return 0x0A2F }),
	)
	r, err := b.Build(s, DeviceMetadata{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.ID != "CVR-20260830-0A2F" {
		t.Fatalf("ID = %q, want CVR-20260830-0A2F", r.ID)
	}
	if !idPattern.MatchString(r.ID) {
		t.Fatalf("ID %q does not match %s", r.ID, idPattern)
	}
}

func TestBuildIDRandomSuffixShape(t *testing.T) {
	s := completedSession(t, nil)
	for i := 0; i < 20; i++ {
		r, err := NewBuilder().Build(s, DeviceMetadata{})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if !idPattern.MatchString(r.ID) {
			t.Fatalf("ID %q does not match %s", r.ID, idPattern)
		}
	}
}

func TestBuildTimestamps(t *testing.T) {
	s := completedSession(t, nil)
	r, err := NewBuilder().Build(s, DeviceMetadata{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !r.StartedAt.Equal(s.StartedAt()) {
		t.Fatalf("StartedAt = %v, want %v", r.StartedAt, s.StartedAt())
	}
	if r.CompletedAt.Before(r.StartedAt) {
		t.Fatalf("CompletedAt %v precedes StartedAt %v", r.CompletedAt, r.StartedAt)
	}
}

func TestBuildCopiesDeviceMetadata(t *testing.T) {
	s := completedSession(t, nil)
	meta := DeviceMetadata{
		Model:       "iPhone 15 Pro",
		OSVersion:   "18.2",
		IMEI:        "490154203237518",
		TAC:         "49015420",
		DeviceLabel: "Apple iPhone 15 Pro 256GB",
	}
	r, err := NewBuilder().Build(s, meta)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.Device != meta {
		t.Fatalf("Device = %+v, want %+v", r.Device, meta)
	}
}
