package supplier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestListFromJSONLenientScore(t *testing.T) {
	body := `[
		{"id": 1, "name": "Acme", "country": "USA", "contract_terms": {"Payment Terms": "Net 30"}, "compliance_score": 85.0, "last_audit": "2024-01-10"},
		{"id": 2, "name": "Globex", "country": "India", "contract_terms": null, "compliance_score": "72.50", "last_audit": "2023-12-01"},
		{"id": 3, "name": "Initech", "country": "UK", "contract_terms": {"Limits": {"max": 3}}, "compliance_score": null}
	]`

	got := ListFromJSON(body)
	require.Len(t, got, 3)

	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 85, got[0].ComplianceScore)
	v, ok := got[0].ContractTerms.Get("Payment Terms")
	assert.True(t, ok)
	assert.Equal(t, "Net 30", v)

	assert.Equal(t, 72, got[1].ComplianceScore)
	assert.Equal(t, 0, got[1].ContractTerms.Len())

	assert.Equal(t, 0, got[2].ComplianceScore)
	raw, _ := got[2].ContractTerms.Get("Limits")
	assert.JSONEq(t, `{"max": 3}`, raw)
}

func TestFromJSONSingle(t *testing.T) {
	s := FromJSON(gjson.Parse(`{"id": 7, "name": "Umbrella", "country": "DE", "contract_terms": {}, "compliance_score": 90, "last_audit": "2024-02-02"}`))
	assert.Equal(t, Supplier{ID: 7, Name: "Umbrella", Country: "DE", ComplianceScore: 90, LastAudit: "2024-02-02"}, s)
}

func TestDraftMarshalsAsCreateBody(t *testing.T) {
	d := NewDraft()
	d.Name = "Acme"
	d.Country = "USA"
	_ = d.AddTerm("Payment Terms", "Net 30")
	d.ComplianceScore = 85
	d.LastAudit = "2024-01-10"

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Acme",
		"country": "USA",
		"contract_terms": {"Payment Terms": "Net 30"},
		"compliance_score": 85,
		"last_audit": "2024-01-10"
	}`, string(data))
}

func TestEmptyTermsMarshalAsObject(t *testing.T) {
	data, err := json.Marshal(NewDraft())
	require.NoError(t, err)
	assert.Equal(t, "{}", gjson.GetBytes(data, "contract_terms").Raw)
}
