package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sw33tLie/supplyscope/pkg/compliance"
	"github.com/sw33tLie/supplyscope/pkg/supplier"
)

// LoadComplianceDraft returns the saved draft for supplierID, or a fresh one
// when nothing was saved.
func (d *DB) LoadComplianceDraft(ctx context.Context, supplierID int) (*compliance.Draft, error) {
	var body string
	err := d.sql.QueryRowContext(ctx, "SELECT body FROM compliance_drafts WHERE supplier_id = ?", supplierID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return compliance.NewDraft(supplierID), nil
	}
	if err != nil {
		return nil, err
	}
	draft := &compliance.Draft{}
	if err := json.Unmarshal([]byte(body), draft); err != nil {
		return nil, fmt.Errorf("decoding compliance draft for supplier %d: %w", supplierID, err)
	}
	draft.SupplierID = supplierID
	return draft, nil
}

func (d *DB) SaveComplianceDraft(ctx context.Context, draft *compliance.Draft) error {
	body, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx, `INSERT INTO compliance_drafts(supplier_id, body, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(supplier_id) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`, draft.SupplierID, string(body))
	return err
}

func (d *DB) DeleteComplianceDraft(ctx context.Context, supplierID int) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM compliance_drafts WHERE supplier_id = ?", supplierID)
	return err
}

// ListComplianceDrafts returns the supplier ids that have a saved draft.
func (d *DB) ListComplianceDrafts(ctx context.Context) ([]int, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT supplier_id FROM compliance_drafts ORDER BY supplier_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LoadSupplierDraft returns the pending supplier creation draft, or an empty
// one.
func (d *DB) LoadSupplierDraft(ctx context.Context) (*supplier.Draft, error) {
	var body string
	err := d.sql.QueryRowContext(ctx, "SELECT body FROM supplier_drafts WHERE id = 1").Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return supplier.NewDraft(), nil
	}
	if err != nil {
		return nil, err
	}
	draft := supplier.NewDraft()
	if err := json.Unmarshal([]byte(body), draft); err != nil {
		return nil, fmt.Errorf("decoding supplier draft: %w", err)
	}
	return draft, nil
}

func (d *DB) SaveSupplierDraft(ctx context.Context, draft *supplier.Draft) error {
	body, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx, `INSERT INTO supplier_drafts(id, body, updated_at) VALUES(1, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`, string(body))
	return err
}

func (d *DB) DeleteSupplierDraft(ctx context.Context) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM supplier_drafts WHERE id = 1")
	return err
}
