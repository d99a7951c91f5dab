package storage

import (
	"context"
	"database/sql"
)

// LogSubmission appends one compliance batch to the journal.
func (d *DB) LogSubmission(ctx context.Context, s Submission) (int64, error) {
	res, err := d.sql.ExecContext(ctx, `INSERT INTO submissions(submitted_at, supplier_id, compliance_date, metric_count, outcome, message, request_body) VALUES(CURRENT_TIMESTAMP,?,?,?,?,?,?)`,
		s.SupplierID, s.ComplianceDate, s.MetricCount, s.Outcome, nullIfEmpty(s.Message), nullIfEmpty(s.RequestBody))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSubmissions returns the newest journal lines, optionally for one
// supplier (supplierID > 0).
func (d *DB) ListSubmissions(ctx context.Context, supplierID, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	q := "SELECT id, submitted_at, supplier_id, compliance_date, metric_count, outcome, message, request_body FROM submissions"
	args := []interface{}{}
	if supplierID > 0 {
		q += " WHERE supplier_id = ?"
		args = append(args, supplierID)
	}
	q += " ORDER BY submitted_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		var (
			s             Submission
			submittedAt   string
			message, body sql.NullString
		)
		if err := rows.Scan(&s.ID, &submittedAt, &s.SupplierID, &s.ComplianceDate, &s.MetricCount, &s.Outcome, &message, &body); err != nil {
			return nil, err
		}
		s.SubmittedAt = parseTimestamp(submittedAt)
		s.Message = message.String
		s.RequestBody = body.String
		out = append(out, s)
	}
	return out, rows.Err()
}
