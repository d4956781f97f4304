package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/basket/clearvue/internal/catalog"
	"github.com/basket/clearvue/internal/report"
	"github.com/basket/clearvue/internal/session"
)

func builtReport(t *testing.T) *report.Report {
	t.Helper()

	cat := catalog.IPhone()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := start
	s := session.New(cat, session.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	s.Start()
	for i := 0; i < cat.Len(); i++ {
		def, _ := s.CurrentTest()
		status := session.StatusPass
		if i == 1 {
			status = session.StatusFail
		}
		if i == 2 {
			status = session.StatusSkipped
		}
		if err := s.Record(def.ID, status, ""); err != nil {
			t.Fatalf("Record(%s): %v", def.ID, err)
		}
	}

	b := report.NewBuilder(
		report.WithClock(func() time.Time { return start.Add(time.Hour) }),
		report.WithRandSuffix(func() uint16 { return 0xBEEF }),
	)
	r, err := b.Build(s, report.DeviceMetadata{
		Model:       "iPhone 15 Pro",
		OSVersion:   "18.2",
		DeviceLabel: "Apple iPhone 15 Pro 256GB",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return r
}

func TestWriteJSONRoundTrip(t *testing.T) {
	r := builtReport(t)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got report.Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal exported JSON: %v", err)
	}
	if got.ID != r.ID {
		t.Fatalf("id = %q, want %q", got.ID, r.ID)
	}
	if len(got.Entries) != len(r.Entries) {
		t.Fatalf("entries = %d, want %d", len(got.Entries), len(r.Entries))
	}
	if got.PassCount != r.PassCount || got.FailCount != r.FailCount {
		t.Fatalf("counts = %d/%d, want %d/%d", got.PassCount, got.FailCount, r.PassCount, r.FailCount)
	}
}

func TestSummaryRendersEveryTest(t *testing.T) {
	r := builtReport(t)
	out := Summary(r)

	if !strings.Contains(out, r.ID) {
		t.Fatalf("summary missing report id:\n%s", out)
	}
	if !strings.Contains(out, "Apple iPhone 15 Pro 256GB") {
		t.Fatalf("summary missing device label:\n%s", out)
	}
	for _, e := range r.Entries {
		if !strings.Contains(out, e.Definition.Name) {
			t.Fatalf("summary missing test %q:\n%s", e.Definition.Name, out)
		}
	}
	if !strings.Contains(out, "FAIL") || !strings.Contains(out, "SKIPPED") {
		t.Fatalf("summary missing statuses:\n%s", out)
	}
	if !strings.Contains(out, "11 passed, 1 failed, 1 skipped, 0 not testable (12 tested)") {
		t.Fatalf("summary missing totals line:\n%s", out)
	}
}
