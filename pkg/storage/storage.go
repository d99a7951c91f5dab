package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sw33tLie/supplyscope/pkg/compliance"
	"github.com/sw33tLie/supplyscope/pkg/supplier"
)

// ErrAbortingRecordWipe is returned when the backend reports no records for
// a supplier whose mirrored history is not empty. Records are append-only
// server side, so an empty answer is treated as a bad response.
var ErrAbortingRecordWipe = errors.New("refusing to wipe mirrored compliance records")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS compliance_drafts (
  supplier_id   INTEGER PRIMARY KEY,
  body          TEXT NOT NULL,
  updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS supplier_drafts (
  id            INTEGER PRIMARY KEY CHECK (id = 1),
  body          TEXT NOT NULL,
  updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS suppliers (
  id               INTEGER PRIMARY KEY,
  name             TEXT NOT NULL,
  country          TEXT NOT NULL,
  contract_terms   TEXT NOT NULL DEFAULT '{}',
  compliance_score INTEGER NOT NULL DEFAULT 0,
  last_audit       TEXT,
  fingerprint      TEXT NOT NULL,
  first_seen_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  last_seen_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS compliance_records (
  id             INTEGER PRIMARY KEY,
  supplier_id    INTEGER NOT NULL,
  metric         TEXT NOT NULL,
  date_recorded  TEXT NOT NULL,
  result         TEXT,
  status         TEXT NOT NULL,
  fingerprint    TEXT NOT NULL,
  run_id         INTEGER NOT NULL DEFAULT 0,
  first_seen_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  last_seen_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_records_supplier ON compliance_records(supplier_id, date_recorded);
CREATE TABLE IF NOT EXISTS record_changes (
  id             INTEGER PRIMARY KEY,
  occurred_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  supplier_id    INTEGER NOT NULL,
  supplier_name  TEXT,
  subject        TEXT NOT NULL CHECK (subject IN ('supplier','record')),
  record_id      INTEGER,
  metric         TEXT,
  date_recorded  TEXT,
  result         TEXT,
  status         TEXT,
  change_type    TEXT NOT NULL CHECK (change_type IN ('added','updated','removed'))
);
CREATE INDEX IF NOT EXISTS idx_changes_time ON record_changes(occurred_at);
CREATE INDEX IF NOT EXISTS idx_changes_supplier ON record_changes(supplier_id, occurred_at);
CREATE TABLE IF NOT EXISTS submissions (
  id               INTEGER PRIMARY KEY,
  submitted_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  supplier_id      INTEGER NOT NULL,
  compliance_date  TEXT NOT NULL,
  metric_count     INTEGER NOT NULL,
  outcome          TEXT NOT NULL CHECK (outcome IN ('submitted','failed')),
  message          TEXT,
  request_body     TEXT
);
CREATE INDEX IF NOT EXISTS idx_submissions_supplier ON submissions(supplier_id, submitted_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// UpsertSuppliers mirrors the full supplier list. Suppliers missing from the
// list are removed along with their records.
func (d *DB) UpsertSuppliers(ctx context.Context, suppliers []supplier.Supplier) (changes []Change, err error) {
	now := time.Now().UTC()

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, "SELECT id, name, fingerprint FROM suppliers")
	if err != nil {
		return nil, err
	}
	type existing struct{ Name, Fingerprint string }
	existingMap := make(map[int]existing)
	for rows.Next() {
		var (
			id       int
			name, fp string
		)
		if err = rows.Scan(&id, &name, &fp); err != nil {
			rows.Close()
			return nil, err
		}
		existingMap[id] = existing{Name: name, Fingerprint: fp}
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(suppliers))
	for _, s := range suppliers {
		if s.ID <= 0 || seen[s.ID] {
			continue
		}
		seen[s.ID] = true

		var terms []byte
		terms, err = json.Marshal(s.ContractTerms)
		if err != nil {
			return nil, err
		}
		audit := NormalizeDate(s.LastAudit)
		fp := supplierFingerprint(s.Name, s.Country, string(terms), s.ComplianceScore, audit)

		ex, existed := existingMap[s.ID]
		switch {
		case !existed:
			_, err = tx.ExecContext(ctx, `INSERT INTO suppliers(id, name, country, contract_terms, compliance_score, last_audit, fingerprint) VALUES(?,?,?,?,?,?,?)`,
				s.ID, s.Name, s.Country, string(terms), s.ComplianceScore, nullIfEmpty(audit), fp)
			if err != nil {
				return nil, err
			}
			changes = append(changes, Change{OccurredAt: now, SupplierID: s.ID, SupplierName: s.Name, Subject: SubjectSupplier, ChangeType: ChangeAdded})
		case ex.Fingerprint != fp:
			_, err = tx.ExecContext(ctx, `UPDATE suppliers SET name = ?, country = ?, contract_terms = ?, compliance_score = ?, last_audit = ?, fingerprint = ?, last_seen_at = CURRENT_TIMESTAMP WHERE id = ?`,
				s.Name, s.Country, string(terms), s.ComplianceScore, nullIfEmpty(audit), fp, s.ID)
			if err != nil {
				return nil, err
			}
			changes = append(changes, Change{OccurredAt: now, SupplierID: s.ID, SupplierName: s.Name, Subject: SubjectSupplier, ChangeType: ChangeUpdated})
		default:
			_, err = tx.ExecContext(ctx, `UPDATE suppliers SET last_seen_at = CURRENT_TIMESTAMP WHERE id = ?`, s.ID)
			if err != nil {
				return nil, err
			}
		}
	}

	for id, ex := range existingMap {
		if seen[id] {
			continue
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM suppliers WHERE id = ?`, id); err != nil {
			return nil, err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM compliance_records WHERE supplier_id = ?`, id); err != nil {
			return nil, err
		}
		changes = append(changes, Change{OccurredAt: now, SupplierID: id, SupplierName: ex.Name, Subject: SubjectSupplier, ChangeType: ChangeRemoved})
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return changes, nil
}

// UpsertSupplierRecords mirrors the compliance history of one supplier and
// returns what changed since the last sync.
func (d *DB) UpsertSupplierRecords(ctx context.Context, supplierID int, supplierName string, records []compliance.Record) (changes []Change, err error) {
	now := time.Now().UTC()
	runID := now.UnixNano()

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, "SELECT id, fingerprint FROM compliance_records WHERE supplier_id = ?", supplierID)
	if err != nil {
		return nil, err
	}
	existingMap := make(map[int]string)
	for rows.Next() {
		var (
			id int
			fp string
		)
		if err = rows.Scan(&id, &fp); err != nil {
			rows.Close()
			return nil, err
		}
		existingMap[id] = fp
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}

	if len(records) == 0 && len(existingMap) > 0 {
		err = ErrAbortingRecordWipe
		return nil, err
	}

	for _, r := range records {
		date := NormalizeDate(r.DateRecorded)
		status := NormalizeStatus(string(r.Status))
		fp := recordFingerprint(r.Metric, date, r.Result, status)
		change := Change{
			OccurredAt:   now,
			SupplierID:   supplierID,
			SupplierName: supplierName,
			Subject:      SubjectRecord,
			RecordID:     r.ID,
			Metric:       r.Metric,
			DateRecorded: date,
			Result:       r.Result,
			Status:       status,
		}

		old, existed := existingMap[r.ID]
		switch {
		case !existed:
			_, err = tx.ExecContext(ctx, `INSERT INTO compliance_records(id, supplier_id, metric, date_recorded, result, status, fingerprint, run_id) VALUES(?,?,?,?,?,?,?,?)`,
				r.ID, supplierID, r.Metric, date, nullIfEmpty(r.Result), status, fp, runID)
			if err != nil {
				return nil, err
			}
			change.ChangeType = ChangeAdded
			changes = append(changes, change)
			existingMap[r.ID] = fp
		case old != fp:
			_, err = tx.ExecContext(ctx, `UPDATE compliance_records SET metric = ?, date_recorded = ?, result = ?, status = ?, fingerprint = ?, run_id = ?, last_seen_at = CURRENT_TIMESTAMP WHERE id = ?`,
				r.Metric, date, nullIfEmpty(r.Result), status, fp, runID, r.ID)
			if err != nil {
				return nil, err
			}
			change.ChangeType = ChangeUpdated
			changes = append(changes, change)
		default:
			_, err = tx.ExecContext(ctx, `UPDATE compliance_records SET run_id = ?, last_seen_at = CURRENT_TIMESTAMP WHERE id = ?`, runID, r.ID)
			if err != nil {
				return nil, err
			}
		}
	}

	// Sweep: records not touched in this run were removed upstream.
	staleRows, err := tx.QueryContext(ctx, "SELECT id, metric, date_recorded, result, status FROM compliance_records WHERE supplier_id = ? AND run_id != ?", supplierID, runID)
	if err != nil {
		return nil, err
	}
	var removed []Change
	for staleRows.Next() {
		var (
			c      = Change{OccurredAt: now, SupplierID: supplierID, SupplierName: supplierName, Subject: SubjectRecord, ChangeType: ChangeRemoved}
			result sql.NullString
		)
		if err = staleRows.Scan(&c.RecordID, &c.Metric, &c.DateRecorded, &result, &c.Status); err != nil {
			staleRows.Close()
			return nil, err
		}
		c.Result = result.String
		removed = append(removed, c)
	}
	if err = staleRows.Close(); err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		if _, err = tx.ExecContext(ctx, `DELETE FROM compliance_records WHERE supplier_id = ? AND run_id != ?`, supplierID, runID); err != nil {
			return nil, err
		}
		changes = append(changes, removed...)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return changes, nil
}

// LogChanges appends changes to the change log.
func (d *DB) LogChanges(ctx context.Context, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO record_changes(occurred_at, supplier_id, supplier_name, subject, record_id, metric, date_recorded, result, status, change_type) VALUES(CURRENT_TIMESTAMP,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, c := range changes {
		var recordID interface{}
		if c.Subject == SubjectRecord {
			recordID = c.RecordID
		}
		if _, err := stmt.ExecContext(ctx, c.SupplierID, nullIfEmpty(c.SupplierName), c.Subject, recordID, nullIfEmpty(c.Metric), nullIfEmpty(c.DateRecorded), nullIfEmpty(c.Result), nullIfEmpty(c.Status), c.ChangeType); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListRecentChanges returns the most recent N changes across all suppliers.
func (d *DB) ListRecentChanges(ctx context.Context, limit int) ([]Change, error) {
	if limit <= 0 {
		limit = 50
	}
	q := "SELECT occurred_at, supplier_id, supplier_name, subject, record_id, metric, date_recorded, result, status, change_type FROM record_changes ORDER BY occurred_at DESC, id DESC LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := []Change{}
	for rows.Next() {
		var (
			c                                  Change
			occurredAt                         string
			name, metric, date, result, status sql.NullString
			recordID                           sql.NullInt64
		)
		if err := rows.Scan(&occurredAt, &c.SupplierID, &name, &c.Subject, &recordID, &metric, &date, &result, &status, &c.ChangeType); err != nil {
			return nil, err
		}
		c.OccurredAt = parseTimestamp(occurredAt)
		c.SupplierName = name.String
		c.RecordID = int(recordID.Int64)
		c.Metric = metric.String
		c.DateRecorded = date.String
		c.Result = result.String
		c.Status = status.String
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

// GetSupplierCount returns how many suppliers are mirrored.
func (d *DB) GetSupplierCount(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM suppliers").Scan(&n)
	return n, err
}

// GetRecordCount returns how many records are mirrored for one supplier.
func (d *DB) GetRecordCount(ctx context.Context, supplierID int) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM compliance_records WHERE supplier_id = ?", supplierID).Scan(&n)
	return n, err
}

// ListRecords returns mirrored records of a supplier, newest first.
func (d *DB) ListRecords(ctx context.Context, supplierID int) ([]compliance.Record, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT id, supplier_id, metric, date_recorded, result, status FROM compliance_records WHERE supplier_id = ? ORDER BY date_recorded DESC, id DESC", supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []compliance.Record{}
	for rows.Next() {
		var (
			r      compliance.Record
			result sql.NullString
			status string
		)
		if err := rows.Scan(&r.ID, &r.SupplierID, &r.Metric, &r.DateRecorded, &result, &status); err != nil {
			return nil, err
		}
		r.Result = result.String
		r.Status = compliance.Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) GetStats(ctx context.Context) ([]SupplierStats, error) {
	query := `
		SELECT
			s.id,
			s.name,
			COUNT(r.id),
			COALESCE(SUM(CASE WHEN r.status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(MAX(r.date_recorded), '')
		FROM
			suppliers s
			LEFT JOIN compliance_records r ON r.supplier_id = s.id
		GROUP BY
			s.id, s.name
		ORDER BY
			s.id;
	`
	rows, err := d.sql.QueryContext(ctx, query, string(compliance.StatusNonCompliant))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SupplierStats
	for rows.Next() {
		var s SupplierStats
		if err := rows.Scan(&s.SupplierID, &s.Name, &s.RecordCount, &s.NonCompliant, &s.LastRecorded); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return stats, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
