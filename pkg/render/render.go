// Package render prints suppliers, drafts, records and mirror changes for
// the terminal.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sw33tLie/supplyscope/pkg/compliance"
	"github.com/sw33tLie/supplyscope/pkg/storage"
	"github.com/sw33tLie/supplyscope/pkg/supplier"
)

// DefaultFlags prints id, name and country.
const DefaultFlags = "inc"

// ErrInvalidFlag is returned for an unknown output flag.
var ErrInvalidFlag = errors.New("invalid print flag")

// SupplierLine builds one output line. Flags: i id, n name, c country,
// s score, a last audit, t contract terms.
func SupplierLine(s supplier.Supplier, outputFlags, delimiter string) (string, error) {
	var line string
	for _, f := range outputFlags {
		switch f {
		case 'i':
			line += fmt.Sprint(s.ID) + delimiter
		case 'n':
			line += s.Name + delimiter
		case 'c':
			line += s.Country + delimiter
		case 's':
			line += fmt.Sprint(s.ComplianceScore) + delimiter
		case 'a':
			line += s.LastAudit + delimiter
		case 't':
			line += FormatTerms(s.ContractTerms) + delimiter
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidFlag, f)
		}
	}
	return strings.TrimSuffix(line, delimiter), nil
}

// FormatTerms renders terms as key=value pairs in key order.
func FormatTerms(terms supplier.ContractTerms) string {
	keys := terms.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := terms.Get(k)
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ";")
}

func PrintSuppliers(w io.Writer, suppliers []supplier.Supplier, outputFlags, delimiter string) error {
	for _, s := range suppliers {
		line, err := SupplierLine(s, outputFlags, delimiter)
		if err != nil {
			return err
		}
		if len(line) > 0 {
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

// PrintSupplier prints every field of one supplier.
func PrintSupplier(w io.Writer, s supplier.Supplier) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", s.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", s.Name)
	fmt.Fprintf(tw, "Country:\t%s\n", s.Country)
	fmt.Fprintf(tw, "Compliance score:\t%d\n", s.ComplianceScore)
	fmt.Fprintf(tw, "Last audit:\t%s\n", s.LastAudit)
	if s.ContractTerms.Len() == 0 {
		fmt.Fprintf(tw, "Contract terms:\t-\n")
	} else {
		fmt.Fprintf(tw, "Contract terms:\t\n")
		for _, k := range s.ContractTerms.Keys() {
			v, _ := s.ContractTerms.Get(k)
			fmt.Fprintf(tw, "  %s\t%s\n", k, v)
		}
	}
	tw.Flush()
}

// PrintRecords prints a records table in the order given.
func PrintRecords(w io.Writer, records []compliance.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "DATE\tMETRIC\tRESULT\tSTATUS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.DateRecorded, r.Metric, r.Result, r.Status)
	}
	tw.Flush()
}

// PrintInsights prints the narrative as is, with a trailing newline.
func PrintInsights(w io.Writer, text string) {
	fmt.Fprintln(w, strings.TrimRight(text, "\n"))
}

func PrintComplianceDraft(w io.Writer, d *compliance.Draft) {
	date := d.Date
	if date == "" {
		date = "(not set)"
	}
	fmt.Fprintf(w, "Supplier: %d\nCompliance date: %s\n", d.SupplierID, date)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "#\tMETRIC\tRESULT\tSTATUS")
	for i, e := range d.Metrics.Entries() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, orDash(e.Metric), orDash(e.Result), e.Status)
	}
	tw.Flush()
}

func PrintSupplierDraft(w io.Writer, d *supplier.Draft) {
	PrintSupplier(w, supplier.Supplier{
		Name:            orDash(d.Name),
		Country:         orDash(d.Country),
		ContractTerms:   d.ContractTerms,
		ComplianceScore: d.ComplianceScore,
		LastAudit:       d.LastAudit,
	})
}

func PrintChanges(w io.Writer, changes []storage.Change) {
	for _, c := range changes {
		var emoji string
		switch c.ChangeType {
		case storage.ChangeAdded:
			emoji = "🆕"
		case storage.ChangeRemoved:
			emoji = "❌"
		case storage.ChangeUpdated:
			emoji = "🔄"
		}
		if c.Subject == storage.SubjectSupplier {
			fmt.Fprintf(w, "%s  supplier %d  %s\n", emoji, c.SupplierID, c.SupplierName)
			continue
		}
		fmt.Fprintf(w, "%s  %d  %s  %s  %s  %s  [%s]\n", emoji, c.SupplierID, c.SupplierName, c.DateRecorded, c.Metric, c.Result, c.Status)
	}
}

// PrintChangeLog prints stored changes with their timestamps.
func PrintChangeLog(w io.Writer, changes []storage.Change) {
	for _, c := range changes {
		ts := c.OccurredAt.Format("2006-01-02 15:04:05")
		if c.Subject == storage.SubjectSupplier {
			fmt.Fprintf(w, "%s  %-7s  supplier  %d  %s\n", ts, c.ChangeType, c.SupplierID, c.SupplierName)
			continue
		}
		fmt.Fprintf(w, "%s  %-7s  record    %d  %s  #%d  %s  %s  status=%s\n", ts, c.ChangeType, c.SupplierID, c.SupplierName, c.RecordID, c.DateRecorded, c.Metric, c.Status)
	}
}

func PrintStats(w io.Writer, stats []storage.SupplierStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SUPPLIER\tNAME\tRECORDS\tNON-COMPLIANT\tLAST RECORD\t")

	var totalRecords, totalNonCompliant int
	for _, s := range stats {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t\n", s.SupplierID, s.Name, s.RecordCount, s.NonCompliant, orDash(s.LastRecorded))
		totalRecords += s.RecordCount
		totalNonCompliant += s.NonCompliant
	}

	fmt.Fprintln(tw, " \t \t \t \t \t")
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t \t\n", len(stats), totalRecords, totalNonCompliant)
	tw.Flush()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
