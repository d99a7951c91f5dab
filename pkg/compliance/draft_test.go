package compliance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledDraft() *Draft {
	d := NewDraft(9)
	d.Date = "2024-01-10"
	d.Metrics.UpdateEntry(0, FieldMetric, " Quality ")
	d.Metrics.UpdateEntry(0, FieldResult, " Pass")
	d.Metrics.AddEntry()
	d.Metrics.UpdateEntry(1, FieldMetric, "Delivery Time")
	d.Metrics.UpdateEntry(1, FieldResult, "2 days late ")
	d.Metrics.UpdateEntry(1, FieldStatus, "non-compliant")
	return d
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Draft)
		valid  bool
	}{
		{"complete", func(d *Draft) {}, true},
		{"missing date", func(d *Draft) { d.Date = "" }, false},
		{"blank date", func(d *Draft) { d.Date = "   " }, false},
		{"missing metric", func(d *Draft) { d.Metrics.UpdateEntry(1, FieldMetric, "") }, false},
		{"whitespace result", func(d *Draft) { d.Metrics.UpdateEntry(0, FieldResult, "  ") }, false},
		{"nil metrics", func(d *Draft) { d.Metrics = nil }, false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d := filledDraft()
			tc.mutate(d)
			err := d.Validate()
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidDraft)
			assert.Equal(t, ValidationMessage, err.Error())
		})
	}
}

func TestPayloadTrimsAndKeepsOrder(t *testing.T) {
	p := filledDraft().Payload()
	assert.Equal(t, Payload{
		SupplierID:     9,
		ComplianceDate: "2024-01-10",
		Metrics: []Entry{
			{Metric: "Quality", Result: "Pass", Status: StatusCompliant},
			{Metric: "Delivery Time", Result: "2 days late", Status: StatusNonCompliant},
		},
	}, p)
}

func TestResetLeavesOneBlankEntry(t *testing.T) {
	d := filledDraft()
	d.Reset()
	assert.Equal(t, "", d.Date)
	assert.Equal(t, []Entry{BlankEntry()}, d.Metrics.Entries())
	assert.Equal(t, 9, d.SupplierID)
}

func TestDraftJSONRoundTrip(t *testing.T) {
	d := filledDraft()
	data, err := json.Marshal(d)
	require.NoError(t, err)

	var back Draft
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d.SupplierID, back.SupplierID)
	assert.Equal(t, d.Date, back.Date)
	assert.Equal(t, d.Metrics.Entries(), back.Metrics.Entries())
}
