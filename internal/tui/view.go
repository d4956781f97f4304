package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/basket/clearvue/internal/catalog"
	"github.com/basket/clearvue/internal/session"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headerStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).Padding(0, 2)
)

func (m walkModel) View() string {
	if m.quitting {
		return "  Diagnostic run cancelled.\n"
	}

	switch m.step {
	case stepIntro:
		return m.viewIntro()
	case stepDeviceInfo:
		return m.viewDeviceInfo()
	case stepTest:
		return m.viewTest()
	case stepAnalyzing:
		return m.viewAnalyzing()
	case stepResults:
		return m.viewResults()
	}
	return ""
}

func (m walkModel) viewIntro() string {
	var b strings.Builder
	cat := m.deps.Session.Catalog()

	b.WriteString("\n" + headerStyle.Render(titleStyle.Render("ClearVue Device Diagnostics")) + "\n\n")
	fmt.Fprintf(&b, "  %d checks will run in order. You can go back to any\n", cat.Len())
	b.WriteString("  previous test and re-answer it before the report is built.\n")
	if m.deps.DemoMode {
		b.WriteString("\n  " + warnStyle.Render("Demo mode: results will be labelled as off-device.") + "\n")
	}
	b.WriteString("\n  " + dimStyle.Render("[Enter] Begin  [Ctrl+C] Quit") + "\n")
	return b.String()
}

func (m walkModel) viewDeviceInfo() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Device Information") + "\n\n")
	b.WriteString("  Enter the IMEI (Settings > General > About), or leave\n")
	b.WriteString("  empty to continue without it:\n\n")
	fmt.Fprintf(&b, "  > %s█\n", m.imeiInput)
	if m.imeiErr != "" {
		b.WriteString("\n  " + failStyle.Render(m.imeiErr) + "\n")
	}
	if m.tacBusy {
		b.WriteString("\n  " + dimStyle.Render("Looking up device identity...") + "\n")
	}
	b.WriteString("\n  " + dimStyle.Render("[Enter] Continue  [Ctrl+C] Quit") + "\n")
	return b.String()
}

func (m walkModel) viewTest() string {
	cur, ok := m.deps.Session.CurrentTest()
	if !ok {
		return ""
	}
	cursor, total := m.deps.Session.Progress()

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s  %s\n\n",
		titleStyle.Render(cur.Name),
		dimStyle.Render(fmt.Sprintf("Test %d of %d", cursor+1, total)))
	b.WriteString("  " + cur.Description + "\n")

	if m.tacNote != "" {
		b.WriteString("\n  " + noteStyle.Render(m.tacNote) + "\n")
	}
	switch cur.Verification {
	case catalog.SelfReported:
		b.WriteString("\n  " + dimStyle.Render("Result is recorded on your word for this check.") + "\n")
	case catalog.Untestable:
		b.WriteString("\n  " + warnStyle.Render("This check cannot run in this environment.") + "\n")
	}
	if m.testErr != "" {
		b.WriteString("\n  " + failStyle.Render(m.testErr) + "\n")
	}

	keys := []string{"[P] Pass", "[F] Fail", "[S] Skip"}
	if cur.AllowsNotSupported || cur.Verification == catalog.Untestable {
		keys = append(keys, "[N] Not supported")
	}
	if cur.Category.Kind == catalog.KindCamera && m.deps.Lens != nil && m.deps.CapturePhoto != nil {
		keys = append(keys, "[A] Analyze lens")
	}
	if cursor > 0 {
		keys = append(keys, "[B] Back")
	}
	keys = append(keys, "[R] Repeat", "[Ctrl+C] Quit")
	b.WriteString("\n  " + dimStyle.Render(strings.Join(keys, "  ")) + "\n")
	return b.String()
}

func (m walkModel) viewAnalyzing() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Analyzing lens photo...") + "\n\n")
	b.WriteString("  Checking the captured image for scratches, cracks, and\n")
	b.WriteString("  internal dust. This can take up to 30 seconds.\n")
	b.WriteString("\n  " + dimStyle.Render("[Esc] Abandon and record manually") + "\n")
	return b.String()
}

func (m walkModel) viewResults() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Diagnostic Complete") + "\n\n")

	if m.report == nil {
		b.WriteString("  " + failStyle.Render("No report was produced.") + "\n")
		b.WriteString("\n  " + dimStyle.Render("[Enter] Exit") + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  Report %s\n", m.report.ID)
	if m.report.Device.DeviceLabel != "" {
		fmt.Fprintf(&b, "  %s\n", m.report.Device.DeviceLabel)
	}
	b.WriteString("\n")

	for _, e := range m.report.Entries {
		label := strings.ToUpper(string(e.Outcome.Status))
		switch e.Outcome.Status {
		case session.StatusPass:
			label = passStyle.Render("PASS   ")
		case session.StatusFail:
			label = failStyle.Render("FAIL   ")
		case session.StatusSkipped:
			label = dimStyle.Render("SKIPPED")
		case session.StatusNotTestable:
			label = dimStyle.Render("N/A    ")
		}
		fmt.Fprintf(&b, "  %s  %s\n", label, e.Definition.Name)
	}

	fmt.Fprintf(&b, "\n  %d passed, %d failed, %d skipped, %d not testable\n",
		m.report.PassCount, m.report.FailCount, m.report.SkippedCount, m.report.NotTestableCount)
	b.WriteString("\n  " + dimStyle.Render("[Enter] Save and exit  [X] Discard and restart  [Ctrl+C] Quit") + "\n")
	return b.String()
}
