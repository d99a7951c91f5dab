package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricListStartsWithOneBlankEntry(t *testing.T) {
	l := NewMetricList()
	require.Equal(t, 1, l.Len())
	assert.Equal(t, Entry{Status: StatusCompliant}, l.Entries()[0])
	assert.False(t, l.CanRemove())
}

func TestAddEntryAppendsCompliantBlank(t *testing.T) {
	l := NewMetricList()
	l.UpdateEntry(0, FieldMetric, "Quality")
	l.AddEntry()

	got := l.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "Quality", got[0].Metric)
	assert.Equal(t, BlankEntry(), got[1])
}

func TestUpdateEntry(t *testing.T) {
	tests := []struct {
		name  string
		index int
		field Field
		value string
		ok    bool
		want  Entry
	}{
		{"metric", 0, FieldMetric, "Delivery Time", true, Entry{Metric: "Delivery Time", Status: StatusCompliant}},
		{"result", 0, FieldResult, "3 days late", true, Entry{Result: "3 days late", Status: StatusCompliant}},
		{"status", 0, FieldStatus, "non-compliant", true, Entry{Status: StatusNonCompliant}},
		{"bad status", 0, FieldStatus, "maybe", false, BlankEntry()},
		{"out of range", 3, FieldMetric, "Quality", false, BlankEntry()},
		{"negative index", -1, FieldMetric, "Quality", false, BlankEntry()},
		{"unknown field", 0, Field("owner"), "x", false, BlankEntry()},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			l := NewMetricList()
			assert.Equal(t, tc.ok, l.UpdateEntry(tc.index, tc.field, tc.value))
			assert.Equal(t, tc.want, l.Entries()[0])
			assert.Equal(t, 1, l.Len())
		})
	}
}

func TestMutationsDoNotAliasEarlierSnapshots(t *testing.T) {
	l := NewMetricList()
	l.AddEntry()
	before := l.Entries()

	l.UpdateEntry(1, FieldResult, "Pass")
	l.RemoveEntry(0)

	assert.Equal(t, "", before[1].Result)
	assert.Len(t, before, 2)
}

func TestRemoveEntry(t *testing.T) {
	l := NewMetricList()
	assert.False(t, l.RemoveEntry(0), "sole entry must not be removable")
	assert.Equal(t, 1, l.Len())

	l.UpdateEntry(0, FieldMetric, "Quality")
	l.AddEntry()
	l.UpdateEntry(1, FieldMetric, "Delivery Time")
	l.AddEntry()
	l.UpdateEntry(2, FieldMetric, "Packaging")

	assert.False(t, l.RemoveEntry(5))
	require.True(t, l.RemoveEntry(1))

	got := l.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "Quality", got[0].Metric)
	assert.Equal(t, "Packaging", got[1].Metric)
}

func TestMetricListOfFillsDefaults(t *testing.T) {
	l := MetricListOf([]Entry{{Metric: "Quality", Result: "Pass"}})
	assert.Equal(t, StatusCompliant, l.Entries()[0].Status)

	empty := MetricListOf(nil)
	assert.Equal(t, 1, empty.Len())
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus(" Non-Compliant ")
	assert.True(t, ok)
	assert.Equal(t, StatusNonCompliant, st)

	_, ok = ParseStatus("pending")
	assert.False(t, ok)
}
