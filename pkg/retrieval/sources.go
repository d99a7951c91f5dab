package retrieval

import (
	"context"
	"strings"

	"github.com/sw33tLie/supplyscope/pkg/api"
	"github.com/sw33tLie/supplyscope/pkg/compliance"
)

const (
	NoInsightsMessage = "No insights available for this supplier yet."
	NoRecordsMessage  = "No compliance records found for this supplier."
)

// InsightSource fetches the AI narrative for a supplier.
type InsightSource interface {
	GetInsights(ctx context.Context, supplierID int) (string, error)
}

// RecordSource fetches the compliance history for a supplier.
type RecordSource interface {
	GetComplianceRecords(ctx context.Context, supplierID int) ([]compliance.Record, error)
}

// NewInsights returns an overlay showing a supplier's insight text.
func NewInsights(src InsightSource, log Logger) *Overlay[string] {
	return New(src.GetInsights,
		func(s string) bool { return strings.TrimSpace(s) == "" },
		NoInsightsMessage,
		func(err error) string {
			return "Failed to fetch insights for this supplier: " + api.DetailOr(err)
		},
		log)
}

// NewRecords returns an overlay listing a supplier's compliance records,
// newest first as the backend returns them.
func NewRecords(src RecordSource, log Logger) *Overlay[[]compliance.Record] {
	return New(src.GetComplianceRecords,
		func(r []compliance.Record) bool { return len(r) == 0 },
		NoRecordsMessage,
		func(err error) string {
			return "Failed to fetch compliance records: " + api.DetailOr(err)
		},
		log)
}
