package compliance

// Field names an editable column of an Entry.
type Field string

const (
	FieldMetric Field = "metric"
	FieldResult Field = "result"
	FieldStatus Field = "status"
)

// MetricList is the ordered, editable collection of entries in a draft.
// It always holds at least one entry. Every mutation swaps in a fresh slice,
// so slices handed out earlier are never modified.
type MetricList struct {
	entries []Entry
}

// NewMetricList returns a list holding a single blank entry.
func NewMetricList() *MetricList {
	return &MetricList{entries: []Entry{BlankEntry()}}
}

// MetricListOf rebuilds a list from stored entries. An empty input yields a
// list with one blank entry.
func MetricListOf(entries []Entry) *MetricList {
	if len(entries) == 0 {
		return NewMetricList()
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].Status == "" {
			out[i].Status = StatusCompliant
		}
	}
	return &MetricList{entries: out}
}

func (l *MetricList) Len() int { return len(l.entries) }

// Entries returns a copy of the current entries in order.
func (l *MetricList) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// AddEntry appends a blank entry.
func (l *MetricList) AddEntry() {
	next := make([]Entry, len(l.entries), len(l.entries)+1)
	copy(next, l.entries)
	l.entries = append(next, BlankEntry())
}

// UpdateEntry sets one field of one entry. Out-of-range indexes, unknown
// fields and unknown statuses leave the list untouched and return false.
func (l *MetricList) UpdateEntry(index int, field Field, value string) bool {
	if index < 0 || index >= len(l.entries) {
		return false
	}
	e := l.entries[index]
	switch field {
	case FieldMetric:
		e.Metric = value
	case FieldResult:
		e.Result = value
	case FieldStatus:
		st, ok := ParseStatus(value)
		if !ok {
			return false
		}
		e.Status = st
	default:
		return false
	}
	next := l.Entries()
	next[index] = e
	l.entries = next
	return true
}

// CanRemove reports whether an entry may be removed at all.
func (l *MetricList) CanRemove() bool { return len(l.entries) > 1 }

// RemoveEntry drops the entry at index. The last remaining entry is never
// removed.
func (l *MetricList) RemoveEntry(index int) bool {
	if !l.CanRemove() || index < 0 || index >= len(l.entries) {
		return false
	}
	next := make([]Entry, 0, len(l.entries)-1)
	next = append(next, l.entries[:index]...)
	next = append(next, l.entries[index+1:]...)
	l.entries = next
	return true
}
