package supplier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddTermRejectsEmptyKeyOrValue(t *testing.T) {
	d := NewDraft()
	assert.NoError(t, d.AddTerm("Payment Terms", "Net 30"))

	assert.ErrorIs(t, d.AddTerm("", "x"), ErrEmptyTerm)
	assert.ErrorIs(t, d.AddTerm("x", ""), ErrEmptyTerm)
	assert.ErrorIs(t, d.AddTerm("   ", " x "), ErrEmptyTerm)

	assert.Equal(t, map[string]string{"Payment Terms": "Net 30"}, d.ContractTerms.Map())
}

func TestAddTermOverwritesDuplicateKey(t *testing.T) {
	d := NewDraft()
	assert.NoError(t, d.AddTerm("k", "v"))
	assert.NoError(t, d.AddTerm(" k ", " w "))
	assert.Equal(t, map[string]string{"k": "w"}, d.ContractTerms.Map())
}

func TestUpdateAndRemoveTerm(t *testing.T) {
	d := NewDraft()
	_ = d.AddTerm("Warranty", "1 year")

	assert.False(t, d.UpdateTerm("Penalty", "5%"))
	assert.True(t, d.UpdateTerm("Warranty", "2 years"))
	v, _ := d.ContractTerms.Get("Warranty")
	assert.Equal(t, "2 years", v)

	assert.False(t, d.RemoveTerm("Penalty"))
	assert.True(t, d.RemoveTerm("Warranty"))
	assert.Equal(t, 0, d.ContractTerms.Len())
}

func TestSetScoreText(t *testing.T) {
	tests := map[string]int{
		"85":    85,
		" 70 ":  70,
		"91.8":  91,
		"":      0,
		"high":  0,
		"-4":    -4,
		"12abc": 0,
	}
	for in, want := range tests {
		d := NewDraft()
		d.SetScoreText(in)
		assert.Equal(t, want, d.ComplianceScore, "input %q", in)
	}
}

func TestValidateAndReset(t *testing.T) {
	d := NewDraft()
	assert.ErrorIs(t, d.Validate(), ErrMissingFields)

	d.Name = "GlobalTech"
	d.Country = "India"
	_ = d.AddTerm("Payment Terms", "Net 30")
	d.ComplianceScore = 80
	d.LastAudit = "2024-01-01"
	assert.NoError(t, d.Validate())

	d.Reset()
	assert.Equal(t, Draft{}, *d)
}
