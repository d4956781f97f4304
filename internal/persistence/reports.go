package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/basket/clearvue/internal/report"
)

// ErrNotFound is returned when a report id does not exist in the store.
var ErrNotFound = errors.New("report not found")

// ReportSummary is the listing projection of a stored report.
type ReportSummary struct {
	ID               string    `json:"id"`
	CompletedAt      time.Time `json:"completed_at"`
	PassCount        int       `json:"pass_count"`
	FailCount        int       `json:"fail_count"`
	SkippedCount     int       `json:"skipped_count"`
	NotTestableCount int       `json:"not_testable_count"`
	DeviceModel      string    `json:"device_model,omitempty"`
}

// SaveReport persists a built report: a summary row, the full JSON payload,
// and one row per outcome in catalog order.
func (s *Store) SaveReport(ctx context.Context, sessionID string, r *report.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report payload: %w", err)
	}

	return retryOnBusy(ctx, 5, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin save tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reports (id, session_id, started_at, completed_at,
				pass_count, fail_count, skipped_count, not_testable_count,
				device_model, payload)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
		`, r.ID, sessionID,
			r.StartedAt.UTC().Format(time.RFC3339Nano),
			r.CompletedAt.UTC().Format(time.RFC3339Nano),
			r.PassCount, r.FailCount, r.SkippedCount, r.NotTestableCount,
			r.Device.Model, string(payload)); err != nil {
			return fmt.Errorf("insert report: %w", err)
		}

		for i, e := range r.Entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO report_outcomes (report_id, position, test_id,
					test_name, status, verification, detail, recorded_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?);
			`, r.ID, i, e.Definition.ID, e.Definition.Name,
				string(e.Outcome.Status), string(e.Outcome.Verification),
				e.Outcome.Detail,
				e.Outcome.Timestamp.UTC().Format(time.RFC3339Nano)); err != nil {
				return fmt.Errorf("insert outcome %s: %w", e.Definition.ID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit save tx: %w", err)
		}
		return nil
	})
}

// GetReport loads a stored report by id.
func (s *Store) GetReport(ctx context.Context, id string) (*report.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE id = ?;`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	var r report.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("unmarshal report payload: %w", err)
	}
	return &r, nil
}

// ListReports returns the most recent reports, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, completed_at, pass_count, fail_count, skipped_count,
			not_testable_count, device_model
		FROM reports
		ORDER BY completed_at DESC
		LIMIT ?;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var sum ReportSummary
		var completed string
		if err := rows.Scan(&sum.ID, &completed, &sum.PassCount, &sum.FailCount,
			&sum.SkippedCount, &sum.NotTestableCount, &sum.DeviceModel); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, completed); err == nil {
			sum.CompletedAt = ts
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report rows: %w", err)
	}
	return out, nil
}

// DeleteReport removes a stored report and its outcome rows.
func (s *Store) DeleteReport(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneReports deletes reports completed before the cutoff. Returns the
// number removed. A zero retention means keep forever; callers skip the
// call in that case.
func (s *Store) PruneReports(ctx context.Context, olderThan time.Time) (int64, error) {
	var n int64
	err := retryOnBusy(ctx, 5, func() error {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM reports WHERE completed_at < ?;`,
			olderThan.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("prune reports: %w", err)
		}
		n, _ = res.RowsAffected()
		return nil
	})
	return n, err
}

// CountReports returns the total number of stored reports.
func (s *Store) CountReports(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM reports;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return count, nil
}
