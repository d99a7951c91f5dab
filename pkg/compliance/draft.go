package compliance

import (
	"encoding/json"
	"errors"
	"strings"
)

// ValidationMessage is shown when a draft is incomplete.
const ValidationMessage = "Please fill in all metric, result fields, and select a compliance date."

// ErrInvalidDraft is returned by Validate for any incomplete draft.
var ErrInvalidDraft = errors.New(ValidationMessage)

// Draft is a compliance submission being composed for one supplier.
type Draft struct {
	SupplierID int
	Date       string
	Metrics    *MetricList
}

// NewDraft returns an empty draft with one blank entry.
func NewDraft(supplierID int) *Draft {
	return &Draft{SupplierID: supplierID, Metrics: NewMetricList()}
}

// Reset clears the date and leaves exactly one blank entry.
func (d *Draft) Reset() {
	d.Date = ""
	d.Metrics = NewMetricList()
}

// Validate checks every entry first, then the date. All failures share one
// aggregated message.
func (d *Draft) Validate() error {
	if d.Metrics == nil || d.Metrics.Len() == 0 {
		return ErrInvalidDraft
	}
	for _, e := range d.Metrics.entries {
		if strings.TrimSpace(e.Metric) == "" || strings.TrimSpace(e.Result) == "" {
			return ErrInvalidDraft
		}
	}
	if strings.TrimSpace(d.Date) == "" {
		return ErrInvalidDraft
	}
	return nil
}

// Payload builds the request body with metric and result trimmed, keeping
// the entry order.
func (d *Draft) Payload() Payload {
	entries := d.Metrics.Entries()
	metrics := make([]Entry, 0, len(entries))
	for _, e := range entries {
		metrics = append(metrics, Entry{
			Metric: strings.TrimSpace(e.Metric),
			Result: strings.TrimSpace(e.Result),
			Status: e.Status,
		})
	}
	return Payload{
		SupplierID:     d.SupplierID,
		ComplianceDate: strings.TrimSpace(d.Date),
		Metrics:        metrics,
	}
}

type draftJSON struct {
	SupplierID int     `json:"supplier_id"`
	Date       string  `json:"compliance_date"`
	Metrics    []Entry `json:"metrics"`
}

func (d *Draft) MarshalJSON() ([]byte, error) {
	var entries []Entry
	if d.Metrics != nil {
		entries = d.Metrics.Entries()
	}
	return json.Marshal(draftJSON{SupplierID: d.SupplierID, Date: d.Date, Metrics: entries})
}

func (d *Draft) UnmarshalJSON(data []byte) error {
	var raw draftJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.SupplierID = raw.SupplierID
	d.Date = raw.Date
	d.Metrics = MetricListOf(raw.Metrics)
	return nil
}
