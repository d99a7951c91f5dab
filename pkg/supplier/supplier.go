// Package supplier models supplier records and the supplier creation form.
package supplier

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Supplier is a vendor as returned by the backend.
type Supplier struct {
	ID              int           `json:"id"`
	Name            string        `json:"name"`
	Country         string        `json:"country"`
	ContractTerms   ContractTerms `json:"contract_terms"`
	ComplianceScore int           `json:"compliance_score"`
	LastAudit       string        `json:"last_audit"`
}

// FromJSON decodes a supplier object. The backend stores the score as a
// NUMERIC column, so it may arrive as 85, 85.0 or "85.00"; the integer part
// is kept. Non-string term values are kept in their JSON form.
func FromJSON(r gjson.Result) Supplier {
	s := Supplier{
		ID:              int(r.Get("id").Int()),
		Name:            r.Get("name").String(),
		Country:         r.Get("country").String(),
		ComplianceScore: scoreOf(r.Get("compliance_score")),
		LastAudit:       r.Get("last_audit").String(),
	}
	if terms := r.Get("contract_terms"); terms.IsObject() {
		terms.ForEach(func(key, value gjson.Result) bool {
			v := value.String()
			if value.Type == gjson.JSON {
				v = value.Raw
			}
			s.ContractTerms.Set(key.String(), v)
			return true
		})
	}
	return s
}

// ListFromJSON decodes a JSON array of suppliers.
func ListFromJSON(body string) []Supplier {
	items := gjson.Parse(body).Array()
	out := make([]Supplier, 0, len(items))
	for _, item := range items {
		out = append(out, FromJSON(item))
	}
	return out
}

func scoreOf(r gjson.Result) int {
	if !r.Exists() || r.Type == gjson.Null {
		return 0
	}
	return ParseScore(r.String())
}

// ParseScore parses a compliance score typed by the user or sent by the
// backend. Anything that is not a number yields 0; fractions are truncated.
func ParseScore(text string) int {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0
	}
	return int(d.IntPart())
}
