package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw33tLie/supplyscope/pkg/compliance"
	"github.com/sw33tLie/supplyscope/pkg/supplier"
)

func TestParseMetricFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    compliance.Entry
		wantErr bool
	}{
		{in: "Quality|Pass|compliant", want: compliance.Entry{Metric: "Quality", Result: "Pass", Status: compliance.StatusCompliant}},
		{in: "Delivery Time|3 days late|Non-Compliant", want: compliance.Entry{Metric: "Delivery Time", Result: "3 days late", Status: compliance.StatusNonCompliant}},
		{in: "Quality|Pass", want: compliance.Entry{Metric: "Quality", Result: "Pass", Status: compliance.StatusCompliant}},
		{in: "Quality|Pass|", want: compliance.Entry{Metric: "Quality", Result: "Pass", Status: compliance.StatusCompliant}},
		{in: "Quality", wantErr: true},
		{in: "Quality|Pass|maybe", wantErr: true},
		{in: "a|b|compliant|extra", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseMetricFlag(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseTermFlag(t *testing.T) {
	k, v, err := parseTermFlag("payment=net 30")
	require.NoError(t, err)
	assert.Equal(t, "payment", k)
	assert.Equal(t, "net 30", v)

	k, v, err = parseTermFlag("formula=a=b")
	require.NoError(t, err)
	assert.Equal(t, "formula", k)
	assert.Equal(t, "a=b", v)

	_, _, err = parseTermFlag("novalue")
	assert.Error(t, err)
}

func TestCheckDate(t *testing.T) {
	assert.NoError(t, checkDate("2024-01-10"))
	assert.NoError(t, checkDate(" 2024-01-10 "))
	assert.Error(t, checkDate("10/01/2024"))
	assert.Error(t, checkDate("2024-13-01"))
	assert.Error(t, checkDate(""))
}

func TestApplySupplierFlags(t *testing.T) {
	newCmd := func() *cobra.Command {
		c := &cobra.Command{Use: "create"}
		c.Flags().String("name", "", "")
		c.Flags().String("country", "", "")
		c.Flags().StringArray("term", nil, "")
		c.Flags().String("score", "", "")
		c.Flags().String("audit", "", "")
		return c
	}

	c := newCmd()
	require.NoError(t, c.ParseFlags([]string{"--name", "Acme", "--term", "payment=net 30", "--term", "payment=net 60", "--score", "abc"}))
	d := supplier.NewDraft()
	d.Country = "DE"
	require.NoError(t, applySupplierFlags(c, d, &recordingNotifier{}))
	assert.Equal(t, "Acme", d.Name)
	assert.Equal(t, "DE", d.Country)
	assert.Equal(t, 0, d.ComplianceScore)
	v, _ := d.ContractTerms.Get("payment")
	assert.Equal(t, "net 60", v)
	assert.Equal(t, 1, d.ContractTerms.Len())

	c = newCmd()
	require.NoError(t, c.ParseFlags([]string{"--audit", "yesterday"}))
	assert.Error(t, applySupplierFlags(c, supplier.NewDraft(), &recordingNotifier{}))

	c = newCmd()
	require.NoError(t, c.ParseFlags([]string{"--term", "noequals"}))
	assert.Error(t, applySupplierFlags(c, supplier.NewDraft(), &recordingNotifier{}))
}

func TestApplySupplierFlagsSkipsEmptyTerm(t *testing.T) {
	c := &cobra.Command{Use: "create"}
	c.Flags().String("name", "", "")
	c.Flags().String("country", "", "")
	c.Flags().StringArray("term", nil, "")
	c.Flags().String("score", "", "")
	c.Flags().String("audit", "", "")
	require.NoError(t, c.ParseFlags([]string{
		"--term", " =x",
		"--name", "Globex",
		"--country", "India",
		"--term", "Warranty=1 year",
		"--score", "72",
	}))

	notes := &recordingNotifier{}
	d := supplier.NewDraft()
	require.NoError(t, applySupplierFlags(c, d, notes))

	assert.Equal(t, "Globex", d.Name)
	assert.Equal(t, "India", d.Country)
	assert.Equal(t, 72, d.ComplianceScore)
	v, ok := d.ContractTerms.Get("Warranty")
	assert.True(t, ok)
	assert.Equal(t, "1 year", v)
	assert.Equal(t, 1, d.ContractTerms.Len())
	require.Len(t, notes.errs, 1)
	assert.Contains(t, notes.errs[0], supplier.ErrEmptyTerm.Error())
}

func TestWarnUnknownMetric(t *testing.T) {
	for _, m := range compliance.KnownMetrics {
		assert.False(t, warnUnknownMetric(m), m)
	}
	assert.False(t, warnUnknownMetric("  "))
	assert.True(t, warnUnknownMetric("Carbon Footprint"))
	assert.True(t, warnUnknownMetric("quality"))
}

func TestMetricCompletion(t *testing.T) {
	got, dir := completeDraftSet(nil, []string{"0", "metric"}, "")
	assert.Equal(t, compliance.KnownMetrics, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, dir)

	got, _ = completeDraftSet(nil, []string{"0"}, "")
	assert.Equal(t, []string{"metric", "result", "status"}, got)

	got, _ = completeDraftSet(nil, []string{"0", "status"}, "")
	assert.Equal(t, []string{"compliant", "non-compliant"}, got)

	got, dir = completeMetricFlag(nil, nil, "")
	assert.Equal(t, []string{"Delivery Time|", "Quality|"}, got)
	assert.NotZero(t, dir&cobra.ShellCompDirectiveNoSpace)

	assert.Contains(t, complianceDraftSetCmd.Long, `"Delivery Time" and "Quality"`)
}

type recordingNotifier struct {
	success, warn, errs []string
}

func (n *recordingNotifier) Success(m string) { n.success = append(n.success, m) }
func (n *recordingNotifier) Warn(m string)    { n.warn = append(n.warn, m) }
func (n *recordingNotifier) Error(m string)   { n.errs = append(n.errs, m) }
