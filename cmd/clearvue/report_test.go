package main

import (
	"context"
	"testing"
	"time"

	"github.com/basket/clearvue/internal/catalog"
	"github.com/basket/clearvue/internal/config"
	"github.com/basket/clearvue/internal/persistence"
	"github.com/basket/clearvue/internal/report"
	"github.com/basket/clearvue/internal/session"
)

func seedReport(t *testing.T, home string) string {
	t.Helper()

	store, err := persistence.Open(config.DBPath(home))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	s := session.New(catalog.IPhone())
	s.Start()
	for !s.IsComplete() {
		def, _ := s.CurrentTest()
		if err := s.Record(def.ID, session.StatusPass, ""); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	r, err := report.NewBuilder(report.WithClock(func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	})).Build(s, report.DeviceMetadata{Model: "iPhone 15"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := store.SaveReport(context.Background(), "seed-session", r); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	return r.ID
}

func TestRunReportCommand_ListShowExport(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CLEARVUE_HOME", home)
	id := seedReport(t, home)

	ctx := context.Background()
	if code := runReportCommand(ctx, []string{"list"}); code != 0 {
		t.Fatalf("list exit = %d", code)
	}
	if code := runReportCommand(ctx, []string{"show", id}); code != 0 {
		t.Fatalf("show exit = %d", code)
	}
	if code := runReportCommand(ctx, []string{"export", id}); code != 0 {
		t.Fatalf("export exit = %d", code)
	}
	if code := runReportCommand(ctx, []string{"export", id, "-text"}); code != 0 {
		t.Fatalf("export -text exit = %d", code)
	}
}

func TestRunReportCommand_NotFound(t *testing.T) {
	t.Setenv("CLEARVUE_HOME", t.TempDir())

	if code := runReportCommand(context.Background(), []string{"show", "CVR-20260101-FFFF"}); code != 1 {
		t.Fatalf("show missing report exit = %d, want 1", code)
	}
}

func TestRunReportCommand_Usage(t *testing.T) {
	ctx := context.Background()
	if code := runReportCommand(ctx, nil); code != 2 {
		t.Fatalf("no args exit = %d, want 2", code)
	}
	t.Setenv("CLEARVUE_HOME", t.TempDir())
	if code := runReportCommand(ctx, []string{"frobnicate"}); code != 2 {
		t.Fatalf("unknown action exit = %d, want 2", code)
	}
}
