package submission

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw33tLie/supplyscope/pkg/api"
	"github.com/sw33tLie/supplyscope/pkg/compliance"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []compliance.Payload
	result  compliance.Result
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeSubmitter) CheckCompliance(ctx context.Context, p compliance.Payload) (compliance.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingNotifier struct {
	success, warn, errs []string
}

func (n *recordingNotifier) Success(m string) { n.success = append(n.success, m) }
func (n *recordingNotifier) Warn(m string)    { n.warn = append(n.warn, m) }
func (n *recordingNotifier) Error(m string)   { n.errs = append(n.errs, m) }

func filledDraft(supplierID int) *compliance.Draft {
	d := compliance.NewDraft(supplierID)
	d.Date = "2024-01-10"
	d.Metrics.UpdateEntry(0, compliance.FieldMetric, "Quality")
	d.Metrics.UpdateEntry(0, compliance.FieldResult, "Pass")
	return d
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestSubmitSuccess(t *testing.T) {
	fake := &fakeSubmitter{result: compliance.Result{
		Response: "Supplier 4 is compliant.",
		Alerts:   []string{"Audit due soon"},
	}}
	notes := &recordingNotifier{}
	draft := filledDraft(4)
	c := New(draft, fake, WithNotifier(notes))

	out, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Submitted, out.State)
	assert.Equal(t, Submitted, c.State())
	assert.Equal(t, "Supplier 4 is compliant.", out.Narrative)
	assert.Equal(t, []string{"Audit due soon"}, out.Alerts)
	require.Equal(t, 1, fake.count())
	assert.Equal(t, compliance.Payload{
		SupplierID:     4,
		ComplianceDate: "2024-01-10",
		Metrics:        []compliance.Entry{{Metric: "Quality", Result: "Pass", Status: compliance.StatusCompliant}},
	}, fake.calls[0])

	// draft resets to one blank entry and no date
	assert.Equal(t, "", draft.Date)
	assert.Equal(t, []compliance.Entry{compliance.BlankEntry()}, draft.Metrics.Entries())

	assert.Equal(t, []string{SuccessMessage}, notes.success)
	assert.Equal(t, []string{"Audit due soon"}, notes.warn)
	assert.Empty(t, notes.errs)
}

func TestSubmitInvalidSendsNothing(t *testing.T) {
	cases := []struct {
		name string
		edit func(d *compliance.Draft)
	}{
		{"no date", func(d *compliance.Draft) { d.Date = "" }},
		{"blank metric", func(d *compliance.Draft) { d.Metrics.UpdateEntry(0, compliance.FieldMetric, "   ") }},
		{"blank result", func(d *compliance.Draft) { d.Metrics.UpdateEntry(0, compliance.FieldResult, "") }},
		{"second entry blank", func(d *compliance.Draft) { d.Metrics.AddEntry() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeSubmitter{}
			notes := &recordingNotifier{}
			draft := filledDraft(1)
			tc.edit(draft)
			before := draft.Metrics.Entries()

			c := New(draft, fake, WithNotifier(notes))
			out, err := c.Submit(context.Background())

			assert.ErrorIs(t, err, compliance.ErrInvalidDraft)
			assert.Equal(t, Invalid, out.State)
			assert.Equal(t, compliance.ValidationMessage, out.Message)
			assert.Equal(t, 0, fake.count())
			assert.Equal(t, before, draft.Metrics.Entries())
			assert.Equal(t, []string{compliance.ValidationMessage}, notes.errs)
		})
	}
}

func TestSubmitFailurePreservesDraft(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "server detail",
			err:  &api.APIError{Op: "check compliance", StatusCode: 400, Detail: "Supplier not found"},
			want: "Submission failed: Supplier not found",
		},
		{
			name: "transport",
			err:  &api.APIError{Op: "check compliance", Err: errors.New("connection refused")},
			want: UnexpectedMessage,
		},
		{
			name: "proxy error page",
			err:  &api.APIError{Op: "check compliance", StatusCode: 502, Title: "502 Bad Gateway"},
			want: UnexpectedMessage,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: UnexpectedMessage,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeSubmitter{err: tc.err}
			notes := &recordingNotifier{}
			draft := filledDraft(9)
			c := New(draft, fake, WithNotifier(notes))

			out, err := c.Submit(context.Background())
			assert.Error(t, err)
			assert.Equal(t, Failed, out.State)
			assert.Equal(t, tc.want, out.Message)
			assert.Equal(t, "2024-01-10", draft.Date)
			assert.Equal(t, "Quality", draft.Metrics.Entries()[0].Metric)
			assert.Equal(t, []string{tc.want}, notes.errs)
			assert.Empty(t, notes.success)
		})
	}
}

func TestSubmitBadGatewayPageIsUnexpected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html><head><title>502 Bad Gateway</title></head><body><center>nginx</center></body></html>`))
	}))
	defer srv.Close()

	client, err := api.NewClient(api.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	notes := &recordingNotifier{}
	draft := filledDraft(3)
	out, err := New(draft, client, WithNotifier(notes)).Submit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Failed, out.State)
	assert.Equal(t, UnexpectedMessage, out.Message)
	assert.Equal(t, []string{UnexpectedMessage}, notes.errs)
	assert.Equal(t, "Pass", draft.Metrics.Entries()[0].Result)
}

func TestSubmitRefusesWhileInFlight(t *testing.T) {
	fake := &fakeSubmitter{
		result:  compliance.Result{Response: "ok"},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c := New(filledDraft(2), fake)

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()

	select {
	case <-fake.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never reached the backend")
	}
	assert.Equal(t, Submitting, c.State())

	out, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, Submitting, out.State)

	close(fake.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fake.count())
	assert.Equal(t, Submitted, c.State())
}

func TestResubmitAfterFailure(t *testing.T) {
	fake := &fakeSubmitter{err: errors.New("down")}
	c := New(filledDraft(3), fake)

	_, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, Failed, c.State())

	fake.err = nil
	fake.result = compliance.Result{Response: "fine"}
	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fine", out.Narrative)
	assert.Equal(t, 2, fake.count())
	assert.Equal(t, Submitted, c.Outcome().State)
}

func TestEditDuringFlightDoesNotAffectPayload(t *testing.T) {
	fake := &fakeSubmitter{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		err:     errors.New("down"),
	}
	draft := filledDraft(5)
	c := New(draft, fake)

	done := make(chan struct{})
	go func() {
		_, _ = c.Submit(context.Background())
		close(done)
	}()
	<-fake.started
	c.Edit(func(d *compliance.Draft) { d.Metrics.UpdateEntry(0, compliance.FieldResult, "Fail") })
	close(fake.release)
	<-done

	assert.Equal(t, "Pass", fake.calls[0].Metrics[0].Result)
	assert.Equal(t, "Fail", draft.Metrics.Entries()[0].Result)
}
