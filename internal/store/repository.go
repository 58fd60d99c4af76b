package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"regrade/internal/flaw"
	"regrade/internal/report"
	"regrade/internal/similarity"
)

// ErrNoRuns is returned by LatestRun on an empty database.
var ErrNoRuns = errors.New("no runs stored")

// Run is one batch invocation.
type Run struct {
	ID          int64
	StartedAt   time.Time
	Fingerprint string
	Originals   string
	Corrections string
	Summary     report.Summary
}

// SaveRun stores the run and all of its records in one transaction and
// returns the new run id.
func (s *Store) SaveRun(ctx context.Context, run Run, records []report.Record) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sum := report.Summarize(records)
	var runID int64
	err = tx.QueryRowContext(ctx, s.rebind(
		`INSERT INTO runs(started_at, fingerprint, originals, corrections, total, comparable, needs_review, failed)
		 VALUES(?,?,?,?,?,?,?,?) RETURNING id`),
		run.StartedAt.Unix(), run.Fingerprint, run.Originals, run.Corrections,
		sum.Total, sum.Comparable, sum.NeedsReview, sum.Failed,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO records(run_id, question, old_path, new_path, comparable, edit_distance, ratio,
		 legit_lo, legit_hi, inspect, old_flaws_json, new_flaws_json, diagnostics_json, error)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`))
	if err != nil {
		return 0, fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		oldFlaws, err := json.Marshal(rec.Comparison.Old.Map())
		if err != nil {
			return 0, fmt.Errorf("encode flaws: %w", err)
		}
		newFlaws, err := json.Marshal(rec.Comparison.New.Map())
		if err != nil {
			return 0, fmt.Errorf("encode flaws: %w", err)
		}
		diags := rec.Diagnostics
		if diags == nil {
			diags = []string{}
		}
		diagJSON, err := json.Marshal(diags)
		if err != nil {
			return 0, fmt.Errorf("encode diagnostics: %w", err)
		}
		var lo, hi sql.NullInt64
		if rec.Calibration != nil {
			lo = sql.NullInt64{Int64: int64(rec.Calibration.Lo), Valid: true}
			hi = sql.NullInt64{Int64: int64(rec.Calibration.Hi), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			runID, rec.Question, rec.OldPath, rec.NewPath, rec.Comparable,
			rec.Comparison.EditDistance, rec.Comparison.Ratio, lo, hi,
			strings.Join(rec.Inspect, ","), string(oldFlaws), string(newFlaws), string(diagJSON), rec.Err,
		); err != nil {
			return 0, fmt.Errorf("insert record %s: %w", rec.NewPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return runID, nil
}

// LatestRun returns the most recent run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, fingerprint, originals, corrections, total, comparable, needs_review, failed
		 FROM runs ORDER BY id DESC LIMIT 1`)
	var (
		run     Run
		started int64
	)
	err := row.Scan(&run.ID, &started, &run.Fingerprint, &run.Originals, &run.Corrections,
		&run.Summary.Total, &run.Summary.Comparable, &run.Summary.NeedsReview, &run.Summary.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = time.Unix(started, 0)
	run.Summary.NotComparable = run.Summary.Total - run.Summary.Comparable - run.Summary.Failed
	return run, nil
}

// Records loads the records of a run in question/path order.
func (s *Store) Records(ctx context.Context, runID int64) ([]report.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT question, old_path, new_path, comparable, edit_distance, ratio, legit_lo, legit_hi,
		 inspect, old_flaws_json, new_flaws_json, diagnostics_json, error
		 FROM records WHERE run_id = ? ORDER BY question, new_path`), runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []report.Record
	for rows.Next() {
		var (
			rec                       report.Record
			lo, hi                    sql.NullInt64
			inspect, oldJSON, newJSON string
			diagJSON                  string
		)
		if err := rows.Scan(&rec.Question, &rec.OldPath, &rec.NewPath, &rec.Comparable,
			&rec.Comparison.EditDistance, &rec.Comparison.Ratio, &lo, &hi,
			&inspect, &oldJSON, &newJSON, &diagJSON, &rec.Err); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if lo.Valid && hi.Valid {
			rec.Calibration = &similarity.Calibration{Lo: int(lo.Int64), Hi: int(hi.Int64)}
		}
		if inspect != "" {
			rec.Inspect = strings.Split(inspect, ",")
		}
		if rec.Comparison.Old, err = decodeReport(oldJSON); err != nil {
			return nil, err
		}
		if rec.Comparison.New, err = decodeReport(newJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(diagJSON), &rec.Diagnostics); err != nil {
			return nil, fmt.Errorf("decode diagnostics: %w", err)
		}
		if len(rec.Diagnostics) == 0 {
			rec.Diagnostics = nil
		}
		rec.Expand()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// decodeReport restores a flaw report from its JSON map, in rule order,
// using each rule's expected kind to type the value.
func decodeReport(text string) (flaw.Report, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return flaw.Report{}, fmt.Errorf("decode flaws: %w", err)
	}
	var rep flaw.Report
	for _, rule := range flaw.Rules() {
		msg, ok := raw[rule.Name]
		if !ok {
			continue
		}
		var v flaw.Value
		switch rule.Expect.Kind {
		case flaw.KindInt:
			var n int
			if err := json.Unmarshal(msg, &n); err != nil {
				return flaw.Report{}, fmt.Errorf("decode flaw %s: %w", rule.Name, err)
			}
			v = flaw.Int(n)
		case flaw.KindBool:
			var b bool
			if err := json.Unmarshal(msg, &b); err != nil {
				return flaw.Report{}, fmt.Errorf("decode flaw %s: %w", rule.Name, err)
			}
			v = flaw.Bool(b)
		default:
			var s string
			if err := json.Unmarshal(msg, &s); err != nil {
				return flaw.Report{}, fmt.Errorf("decode flaw %s: %w", rule.Name, err)
			}
			v = flaw.Text(s)
		}
		rep.Entries = append(rep.Entries, flaw.Entry{Name: rule.Name, Value: v})
	}
	return rep, nil
}
