// Package export renders a diagnostic report for sharing: canonical JSON
// for machine consumers and a plain-text pass/fail table for terminals.
// PDF layout is a separate renderer's concern; everything it needs is in
// the report itself.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/basket/clearvue/internal/report"
	"github.com/basket/clearvue/internal/session"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// statusLabel maps outcome statuses to their display strings.
func statusLabel(s session.Status) string {
	switch s {
	case session.StatusPass:
		return "PASS"
	case session.StatusFail:
		return "FAIL"
	case session.StatusSkipped:
		return "SKIPPED"
	case session.StatusNotTestable:
		return "N/A"
	}
	return strings.ToUpper(string(s))
}

// Summary renders the pass/fail table to a string.
func Summary(r *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Diagnostic Report %s\n", r.ID)
	if r.Device.DeviceLabel != "" {
		fmt.Fprintf(&b, "Device: %s\n", r.Device.DeviceLabel)
	} else if r.Device.Model != "" {
		fmt.Fprintf(&b, "Device: %s\n", r.Device.Model)
	}
	if r.Device.OSVersion != "" {
		fmt.Fprintf(&b, "OS: %s\n", r.Device.OSVersion)
	}
	fmt.Fprintf(&b, "Started: %s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Completed: %s\n\n", r.CompletedAt.Format("2006-01-02 15:04:05"))

	nameWidth := 0
	for _, e := range r.Entries {
		if len(e.Definition.Name) > nameWidth {
			nameWidth = len(e.Definition.Name)
		}
	}

	for _, e := range r.Entries {
		line := fmt.Sprintf("  %-*s  %-7s", nameWidth, e.Definition.Name, statusLabel(e.Outcome.Status))
		if e.Outcome.Detail != "" {
			line += "  " + e.Outcome.Detail
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\n%d passed, %d failed, %d skipped, %d not testable (%d tested)\n",
		r.PassCount, r.FailCount, r.SkippedCount, r.NotTestableCount, r.TestedCount)
	return b.String()
}
