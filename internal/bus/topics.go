package bus

// Session lifecycle topics.
const (
	TopicSessionStarted   = "session.started"
	TopicSessionRecorded  = "session.test_recorded"
	TopicSessionWentBack  = "session.went_back"
	TopicSessionRepeated  = "session.test_repeated"
	TopicSessionCompleted = "session.completed"
	TopicSessionExited    = "session.exited"
)

// Report topics.
const (
	TopicReportBuilt = "report.built"
	TopicReportSaved = "report.saved"
)

// Verifier topics.
const (
	TopicVerifierCalled = "verifier.called"
	TopicVerifierFailed = "verifier.failed"
)

// TestRecordedEvent is published after a verdict is captured.
type TestRecordedEvent struct {
	SessionID string // Diagnostic run ID
	TestID    string // Catalog test ID
	Status    string // pass, fail, skipped, not_testable
	Cursor    int    // Position after the record
	Total     int    // Catalog length
}

// SessionEvent is published on start, back, repeat, completion, and exit.
type SessionEvent struct {
	SessionID string // Diagnostic run ID
	TestID    string // Affected test, when applicable
	Cursor    int    // Position after the operation
	Total     int    // Catalog length
}

// ReportEvent is published when a report is built or saved.
type ReportEvent struct {
	SessionID string // Diagnostic run ID
	ReportID  string // Generated CVR id
	PassCount int
	FailCount int
}

// VerifierEvent is published around external verifier calls.
type VerifierEvent struct {
	SessionID string // Diagnostic run ID
	TestID    string // Test that requested the verdict
	Kind      string // "lens" or "imei"
	Err       string // Non-empty on failure
}
