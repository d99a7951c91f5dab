package storage

import (
	"fmt"
	"strings"
)

// recordFingerprint identifies the mutable content of a record. Two
// fingerprints differ when the backend changed the record in place.
func recordFingerprint(metric, date, result, status string) string {
	return strings.Join([]string{metric, date, result, status}, "\x1f")
}

func supplierFingerprint(name, country, terms string, score int, audit string) string {
	return fmt.Sprintf("%s\x1f%s\x1f%s\x1f%d\x1f%s", name, country, terms, score, audit)
}
