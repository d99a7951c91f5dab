package storage

import "time"

// Change kinds recorded in record_changes.
const (
	ChangeAdded   = "added"
	ChangeUpdated = "updated"
	ChangeRemoved = "removed"
)

// Subjects a change can refer to.
const (
	SubjectSupplier = "supplier"
	SubjectRecord   = "record"
)

// Change captures a single change event seen while mirroring the backend.
type Change struct {
	OccurredAt time.Time

	// Supplier info
	SupplierID   int
	SupplierName string

	// Record info, empty for supplier changes
	Subject      string
	RecordID     int
	Metric       string
	DateRecorded string
	Result       string
	Status       string

	ChangeType string // added | updated | removed
}

// Submission is one journal line for a compliance batch sent from this
// machine.
type Submission struct {
	ID             int64
	SubmittedAt    time.Time
	SupplierID     int
	ComplianceDate string
	MetricCount    int
	Outcome        string // submitted | failed
	Message        string
	RequestBody    string
}

// SupplierStats summarizes the mirrored records of one supplier.
type SupplierStats struct {
	SupplierID   int
	Name         string
	RecordCount  int
	NonCompliant int
	LastRecorded string
}
