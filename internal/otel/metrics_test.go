package otel

import (
	"context"
	"testing"
)

func TestNewMetrics_AllInstrumentsCreated(t *testing.T) {
	p, err := Init(context.Background(), Config{
		Enabled:  true,
		Exporter: "none",
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer p.Shutdown(context.Background())

	m, err := NewMetrics(p.Meter)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	if m.SessionDuration == nil {
		t.Error("SessionDuration is nil")
	}
	if m.TestsRecorded == nil {
		t.Error("TestsRecorded is nil")
	}
	if m.NavigationsBack == nil {
		t.Error("NavigationsBack is nil")
	}
	if m.VerifierDuration == nil {
		t.Error("VerifierDuration is nil")
	}
	if m.VerifierErrors == nil {
		t.Error("VerifierErrors is nil")
	}
	if m.ReportsBuilt == nil {
		t.Error("ReportsBuilt is nil")
	}
}
