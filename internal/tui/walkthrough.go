// Package tui implements the interactive diagnostic walkthrough: device
// info collection, the per-test screens, and the results summary. All
// session mutations happen here on the bubbletea update goroutine; external
// verdicts arrive as messages and are resolved before Record.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/basket/clearvue/internal/bus"
	"github.com/basket/clearvue/internal/catalog"
	"github.com/basket/clearvue/internal/imei"
	"github.com/basket/clearvue/internal/report"
	"github.com/basket/clearvue/internal/session"
	"github.com/basket/clearvue/internal/verifier"
)

type walkStep int

const (
	stepIntro      walkStep = iota // Welcome + battery summary
	stepDeviceInfo                 // IMEI entry with Luhn gate
	stepTest                       // Current test screen
	stepAnalyzing                  // Awaiting an external lens verdict
	stepResults                    // Summary + save confirmation
)

// lensResultMsg carries an external lens verdict back to the update loop.
// testID pins the verdict to the test that requested it; a mismatch at
// arrival time means the user navigated away and the verdict is discarded.
type lensResultMsg struct {
	testID  string
	verdict verifier.Verdict
	err     error
}

type tacResultMsg struct {
	imei   string
	result verifier.TACResult
	err    error
}

// Deps wires the walkthrough to its collaborators. Lens and TAC may be nil;
// the affected flows degrade to manual verdicts.
type Deps struct {
	Session   *session.Session
	Builder   *report.Builder
	Lens      verifier.LensVerifier
	TAC       verifier.TACLookup
	Bus       *bus.Bus
	SessionID string
	DemoMode  bool

	// CapturePhoto returns a base64 JPEG for the given camera, or an error
	// when no capture device is available. Nil disables lens analysis.
	CapturePhoto func(position catalog.CameraPosition) (string, error)
}

type walkModel struct {
	deps Deps
	step walkStep

	// Device info entry.
	imeiInput string
	imeiErr   string
	tacBusy   bool
	tacNote   string

	// Per-test screen.
	testErr string

	report   *report.Report
	quitting bool
}

func newWalkModel(deps Deps) walkModel {
	return walkModel{deps: deps, step: stepIntro}
}

func (m walkModel) Init() tea.Cmd {
	return nil
}

func (m walkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			m.deps.Session.ExitTests()
			m.publishSession(bus.TopicSessionExited, "")
			m.quitting = true
			return m, tea.Quit
		}
		switch m.step {
		case stepIntro:
			return m.handleIntroKey(key)
		case stepDeviceInfo:
			return m.handleDeviceInfoKey(key)
		case stepTest:
			return m.handleTestKey(key)
		case stepAnalyzing:
			// Only escape hatch while a verdict is pending.
			if key == "esc" {
				m.step = stepTest
				m.testErr = "Analysis abandoned. Record the result manually."
			}
			return m, nil
		case stepResults:
			return m.handleResultsKey(key)
		}

	case tacResultMsg:
		return m.handleTACResult(msg)

	case lensResultMsg:
		return m.handleLensResult(msg)
	}
	return m, nil
}

func (m walkModel) handleIntroKey(key string) (tea.Model, tea.Cmd) {
	if key == "enter" {
		m.step = stepDeviceInfo
	}
	return m, nil
}

func (m walkModel) handleDeviceInfoKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter":
		trimmed := strings.TrimSpace(m.imeiInput)
		if trimmed != "" && !imei.Valid(trimmed) {
			m.imeiErr = "Not a valid IMEI. Check the 15 digits and try again."
			return m, nil
		}
		m.imeiErr = ""
		meta := m.deps.Session.Metadata()
		meta.IMEI = trimmed
		m.deps.Session.SetMetadata(meta)

		if trimmed != "" && m.deps.TAC != nil {
			m.tacBusy = true
			return m, m.lookupTACCmd(trimmed)
		}
		return m.beginTests()

	case "s":
		// Skip device info entirely.
		if m.imeiInput == "" {
			return m.beginTests()
		}
		m.imeiInput += "s"
	case "backspace":
		if len(m.imeiInput) > 0 {
			m.imeiInput = m.imeiInput[:len(m.imeiInput)-1]
		}
	default:
		if len(key) == 1 {
			m.imeiInput += key
		}
	}
	return m, nil
}

func (m walkModel) handleTACResult(msg tacResultMsg) (tea.Model, tea.Cmd) {
	m.tacBusy = false
	if msg.err != nil {
		// Lookup failure never blocks the run.
		m.tacNote = "Device lookup unavailable; continuing without device identity."
		m.publishVerifier("imei", "", msg.err)
		return m.beginTests()
	}
	m.publishVerifier("imei", "", nil)
	if msg.result.Valid {
		meta := m.deps.Session.Metadata()
		meta.TAC = msg.result.TAC
		meta.DeviceLabel = msg.result.DeviceLabel()
		m.deps.Session.SetMetadata(meta)
		if meta.DeviceLabel != "" {
			m.tacNote = "Identified: " + meta.DeviceLabel
		}
	} else if msg.result.Error != "" {
		m.tacNote = "Lookup: " + msg.result.Error
	}
	return m.beginTests()
}

func (m walkModel) beginTests() (tea.Model, tea.Cmd) {
	m.deps.Session.Start()
	m.publishSession(bus.TopicSessionStarted, "")
	m.step = stepTest
	m.testErr = ""
	return m, nil
}

func (m walkModel) handleTestKey(key string) (tea.Model, tea.Cmd) {
	cur, ok := m.deps.Session.CurrentTest()
	if !ok {
		m.step = stepResults
		return m, nil
	}

	switch key {
	case "p", "y":
		return m.record(cur, session.StatusPass, "")
	case "f":
		return m.record(cur, session.StatusFail, "")
	case "s":
		return m.record(cur, session.StatusSkipped, "")
	case "n":
		if !cur.AllowsNotSupported && cur.Verification != catalog.Untestable {
			m.testErr = "This test does not accept a not-supported verdict."
			return m, nil
		}
		return m.record(cur, session.StatusNotTestable, "not supported on this hardware")
	case "a":
		if cur.Category.Kind != catalog.KindCamera || m.deps.Lens == nil || m.deps.CapturePhoto == nil {
			m.testErr = "Automated analysis is not available for this test."
			return m, nil
		}
		photo, err := m.deps.CapturePhoto(cur.Category.Camera)
		if err != nil {
			m.testErr = fmt.Sprintf("Capture failed: %v. Record the result manually.", err)
			return m, nil
		}
		m.step = stepAnalyzing
		m.testErr = ""
		return m, m.analyzeLensCmd(cur.ID, photo, cur.Category.Camera)
	case "b", "esc":
		if err := m.deps.Session.GoBack(); err != nil {
			m.testErr = "Already at the first test."
			return m, nil
		}
		m.publishSession(bus.TopicSessionWentBack, "")
		m.testErr = ""
	case "r":
		m.deps.Session.RepeatCurrent()
		m.publishSession(bus.TopicSessionRepeated, cur.ID)
		m.testErr = ""
	}
	return m, nil
}

func (m walkModel) record(def catalog.Definition, status session.Status, detail string) (tea.Model, tea.Cmd) {
	if err := m.deps.Session.Record(def.ID, status, detail); err != nil {
		m.testErr = fmt.Sprintf("Could not record: %v", err)
		return m, nil
	}
	m.testErr = ""
	cursor, total := m.deps.Session.Progress()
	if m.deps.Bus != nil {
		m.deps.Bus.Publish(bus.TopicSessionRecorded, bus.TestRecordedEvent{
			SessionID: m.deps.SessionID,
			TestID:    def.ID,
			Status:    string(status),
			Cursor:    cursor,
			Total:     total,
		})
	}
	if m.deps.Session.IsComplete() {
		m.publishSession(bus.TopicSessionCompleted, "")
		return m.buildReport()
	}
	return m, nil
}

func (m walkModel) buildReport() (tea.Model, tea.Cmd) {
	meta := m.deps.Session.Metadata()
	device := report.DeviceMetadata{
		IMEI:        meta.IMEI,
		TAC:         meta.TAC,
		DeviceLabel: meta.DeviceLabel,
	}
	if m.deps.DemoMode {
		device.Model = "demo device"
	}
	r, err := m.deps.Builder.Build(m.deps.Session, device)
	if err != nil {
		m.testErr = fmt.Sprintf("Report failed: %v", err)
		return m, nil
	}
	m.report = r
	m.step = stepResults
	if m.deps.Bus != nil {
		m.deps.Bus.Publish(bus.TopicReportBuilt, bus.ReportEvent{
			SessionID: m.deps.SessionID,
			ReportID:  r.ID,
			PassCount: r.PassCount,
			FailCount: r.FailCount,
		})
	}
	return m, nil
}

func (m walkModel) handleLensResult(msg lensResultMsg) (tea.Model, tea.Cmd) {
	m.step = stepTest

	if msg.err != nil {
		m.publishVerifier("lens", msg.testID, msg.err)
		m.testErr = "Analysis unavailable. Record the result manually."
		return m, nil
	}
	m.publishVerifier("lens", msg.testID, nil)

	status := session.StatusFail
	if msg.verdict.Pass {
		status = session.StatusPass
	}
	if err := m.deps.Session.Record(msg.testID, status, msg.verdict.Explanation); err != nil {
		// A late verdict for a test the user navigated away from. Discard.
		return m, nil
	}
	cursor, total := m.deps.Session.Progress()
	if m.deps.Bus != nil {
		m.deps.Bus.Publish(bus.TopicSessionRecorded, bus.TestRecordedEvent{
			SessionID: m.deps.SessionID,
			TestID:    msg.testID,
			Status:    string(status),
			Cursor:    cursor,
			Total:     total,
		})
	}
	if m.deps.Session.IsComplete() {
		m.publishSession(bus.TopicSessionCompleted, "")
		return m.buildReport()
	}
	return m, nil
}

func (m walkModel) handleResultsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter", "q":
		m.quitting = false
		return m, tea.Quit
	case "x":
		// Discard and start over from device info.
		m.deps.Session.ExitTests()
		m.publishSession(bus.TopicSessionExited, "")
		m.report = nil
		m.imeiInput = ""
		m.tacNote = ""
		m.step = stepDeviceInfo
	}
	return m, nil
}

func (m walkModel) analyzeLensCmd(testID, photo string, position catalog.CameraPosition) tea.Cmd {
	lens := m.deps.Lens
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
		defer cancel()
		verdict, err := lens.AnalyzeLens(ctx, photo, position)
		return lensResultMsg{testID: testID, verdict: verdict, err: err}
	}
}

func (m walkModel) lookupTACCmd(code string) tea.Cmd {
	tac := m.deps.TAC
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		result, err := tac.LookupIMEI(ctx, code)
		return tacResultMsg{imei: code, result: result, err: err}
	}
}

func (m walkModel) publishSession(topic, testID string) {
	if m.deps.Bus == nil {
		return
	}
	cursor, total := m.deps.Session.Progress()
	m.deps.Bus.Publish(topic, bus.SessionEvent{
		SessionID: m.deps.SessionID,
		TestID:    testID,
		Cursor:    cursor,
		Total:     total,
	})
}

func (m walkModel) publishVerifier(kind, testID string, err error) {
	if m.deps.Bus == nil {
		return
	}
	ev := bus.VerifierEvent{SessionID: m.deps.SessionID, TestID: testID, Kind: kind}
	topic := bus.TopicVerifierCalled
	if err != nil {
		ev.Err = err.Error()
		topic = bus.TopicVerifierFailed
	}
	m.deps.Bus.Publish(topic, ev)
}

// Run drives the walkthrough to completion and returns the built report,
// or nil when the user quit before finishing.
func Run(ctx context.Context, deps Deps) (*report.Report, error) {
	defer bestEffortResetTTY()

	p := tea.NewProgram(newWalkModel(deps))

	done := make(chan error, 1)
	var finalModel tea.Model
	go func() {
		var err error
		finalModel, err = p.Run()
		done <- err
	}()

	select {
	case <-ctx.Done():
		p.Quit()
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, err
		}
	}

	wm, ok := finalModel.(walkModel)
	if !ok || wm.quitting {
		return nil, nil
	}
	return wm.report, nil
}
