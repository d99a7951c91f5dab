package supplier

import (
	"encoding/json"
	"sort"
)

// ContractTerms is a set of free-form contract terms keyed by unique name.
// The zero value is an empty, usable set.
type ContractTerms struct {
	m map[string]string
}

// TermsOf copies m into a new ContractTerms.
func TermsOf(m map[string]string) ContractTerms {
	t := ContractTerms{}
	for k, v := range m {
		t.Set(k, v)
	}
	return t
}

// Set stores value under key, overwriting any previous value.
func (t *ContractTerms) Set(key, value string) {
	if t.m == nil {
		t.m = make(map[string]string)
	}
	t.m[key] = value
}

func (t ContractTerms) Get(key string) (string, bool) {
	v, ok := t.m[key]
	return v, ok
}

// Delete removes key and reports whether it was present.
func (t *ContractTerms) Delete(key string) bool {
	if _, ok := t.m[key]; !ok {
		return false
	}
	delete(t.m, key)
	return true
}

func (t ContractTerms) Len() int { return len(t.m) }

// Keys returns the term names in lexical order.
func (t ContractTerms) Keys() []string {
	keys := make([]string, 0, len(t.m))
	for k := range t.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the terms.
func (t ContractTerms) Map() map[string]string {
	out := make(map[string]string, len(t.m))
	for k, v := range t.m {
		out[k] = v
	}
	return out
}

func (t ContractTerms) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Map())
}

func (t *ContractTerms) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*t = TermsOf(m)
	return nil
}
