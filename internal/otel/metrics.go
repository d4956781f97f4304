package otel

import "go.opentelemetry.io/otel/metric"

// Metrics holds all ClearVue metric instruments.
type Metrics struct {
	SessionDuration  metric.Float64Histogram
	TestsRecorded    metric.Int64Counter
	NavigationsBack  metric.Int64Counter
	VerifierDuration metric.Float64Histogram
	VerifierErrors   metric.Int64Counter
	ReportsBuilt     metric.Int64Counter
}

// NewMetrics creates all metric instruments from the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.SessionDuration, err = meter.Float64Histogram("clearvue.session.duration",
		metric.WithDescription("Diagnostic run duration from start to completion in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.TestsRecorded, err = meter.Int64Counter("clearvue.tests.recorded",
		metric.WithDescription("Test verdicts recorded, by status"),
	)
	if err != nil {
		return nil, err
	}

	m.NavigationsBack, err = meter.Int64Counter("clearvue.navigation.back",
		metric.WithDescription("goBack/repeat navigations within a run"),
	)
	if err != nil {
		return nil, err
	}

	m.VerifierDuration, err = meter.Float64Histogram("clearvue.verifier.duration",
		metric.WithDescription("External verifier call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.VerifierErrors, err = meter.Int64Counter("clearvue.verifier.errors",
		metric.WithDescription("External verifier call failures"),
	)
	if err != nil {
		return nil, err
	}

	m.ReportsBuilt, err = meter.Int64Counter("clearvue.reports.built",
		metric.WithDescription("Diagnostic reports assembled"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
