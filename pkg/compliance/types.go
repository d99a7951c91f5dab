// Package compliance holds the client-side model of a compliance submission:
// metric entries, the editable metric list, the submission draft and the
// records the backend returns for a supplier.
package compliance

import "strings"

// Status is the qualitative outcome of a single metric.
type Status string

const (
	StatusCompliant    Status = "compliant"
	StatusNonCompliant Status = "non-compliant"
)

// ParseStatus accepts the two known statuses, case-insensitively.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusCompliant:
		return StatusCompliant, true
	case StatusNonCompliant:
		return StatusNonCompliant, true
	}
	return "", false
}

// KnownMetrics lists the metric names offered for selection. Other non-empty
// names are accepted as well.
var KnownMetrics = []string{"Delivery Time", "Quality"}

// IsKnownMetric reports whether name is one of KnownMetrics.
func IsKnownMetric(name string) bool {
	for _, m := range KnownMetrics {
		if m == name {
			return true
		}
	}
	return false
}

// Entry is one metric inside a pending submission.
type Entry struct {
	Metric string `json:"metric"`
	Result string `json:"result"`
	Status Status `json:"status"`
}

// BlankEntry returns an empty entry with the default status.
func BlankEntry() Entry {
	return Entry{Status: StatusCompliant}
}

// Payload is the request body of POST /suppliers/check-compliance.
type Payload struct {
	SupplierID     int     `json:"supplier_id"`
	ComplianceDate string  `json:"compliance_date"`
	Metrics        []Entry `json:"metrics"`
}

// Result is the backend's answer to a compliance submission. Alerts are
// advisory and never mark the submission as failed.
type Result struct {
	Response string   `json:"response"`
	Alerts   []string `json:"alerts,omitempty"`
}

// Record is a persisted metric as returned by GET /compliance_records/{id}.
type Record struct {
	ID           int    `json:"id"`
	SupplierID   int    `json:"supplier_id"`
	Metric       string `json:"metric"`
	DateRecorded string `json:"date_recorded"`
	Result       string `json:"result"`
	Status       Status `json:"status"`
}
