package supplier

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyTerm is returned when a contract term is missing its key or value.
	ErrEmptyTerm = errors.New("Please enter both a key and a value for the contract term.")
	// ErrMissingFields is returned when name or country is empty.
	ErrMissingFields = errors.New("Please fill in supplier name and country.")
)

// Draft is a supplier being composed for creation. It marshals to the body
// of POST /suppliers.
type Draft struct {
	Name            string        `json:"name"`
	Country         string        `json:"country"`
	ContractTerms   ContractTerms `json:"contract_terms"`
	ComplianceScore int           `json:"compliance_score"`
	LastAudit       string        `json:"last_audit"`
}

// NewDraft returns an empty creation draft.
func NewDraft() *Draft {
	return &Draft{}
}

// AddTerm adds one contract term. Key and value are trimmed; an empty one
// leaves the draft unchanged. An existing key is overwritten.
func (d *Draft) AddTerm(key, value string) error {
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if key == "" || value == "" {
		return ErrEmptyTerm
	}
	d.ContractTerms.Set(key, value)
	return nil
}

// UpdateTerm changes the value of an existing term only.
func (d *Draft) UpdateTerm(key, value string) bool {
	if _, ok := d.ContractTerms.Get(key); !ok {
		return false
	}
	d.ContractTerms.Set(key, value)
	return true
}

// RemoveTerm deletes one term.
func (d *Draft) RemoveTerm(key string) bool {
	return d.ContractTerms.Delete(key)
}

// SetScoreText sets the score from user input, falling back to 0.
func (d *Draft) SetScoreText(text string) {
	d.ComplianceScore = ParseScore(text)
}

// Validate checks the fields the creation form marks as required.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Country) == "" {
		return ErrMissingFields
	}
	return nil
}

// Reset returns the draft to its empty form.
func (d *Draft) Reset() {
	*d = Draft{}
}
