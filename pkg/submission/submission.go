// Package submission drives one compliance draft through validation and
// transmission to the backend.
package submission

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sw33tLie/supplyscope/pkg/api"
	"github.com/sw33tLie/supplyscope/pkg/compliance"
)

// State is where the controller is in a submission cycle.
type State int

const (
	Idle State = iota
	Validating
	Invalid
	Submitting
	Submitted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Invalid:
		return "invalid"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

const (
	SuccessMessage    = "Compliance data submitted successfully!"
	UnexpectedMessage = "An unexpected error occurred during submission. Please try again."
)

// ErrInFlight is returned when Submit is called while a request is outstanding.
var ErrInFlight = errors.New("a submission is already in progress")

// Submitter is the backend operation the controller depends on.
type Submitter interface {
	CheckCompliance(ctx context.Context, p compliance.Payload) (compliance.Result, error)
}

// Notifier receives user-facing messages.
type Notifier interface {
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}

// Logger abstracts logging so callers can plug in logrus or anything similar.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Warn(string)    {}
func (nopNotifier) Error(string)   {}

// Outcome describes how the last cycle ended.
type Outcome struct {
	State     State
	Narrative string
	// Alerts are advisory warnings from an otherwise successful submission.
	Alerts []string
	// Message is the user-facing text for Invalid and Failed.
	Message string
	Payload compliance.Payload
	Err     error
}

// Controller owns a compliance draft for the length of a submission cycle.
type Controller struct {
	mu      sync.Mutex
	state   State
	draft   *compliance.Draft
	api     Submitter
	notify  Notifier
	log     Logger
	outcome Outcome
}

type Option func(*Controller)

func WithNotifier(n Notifier) Option { return func(c *Controller) { c.notify = n } }

func WithLogger(l Logger) Option { return func(c *Controller) { c.log = l } }

func New(draft *compliance.Draft, api Submitter, opts ...Option) *Controller {
	c := &Controller{
		state:  Idle,
		draft:  draft,
		api:    api,
		notify: nopNotifier{},
		log:    nopLogger{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Outcome returns the result of the last finished cycle.
func (c *Controller) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// Edit runs fn against the draft under the controller's lock. Edits are
// allowed while a request is outstanding.
func (c *Controller) Edit(fn func(d *compliance.Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.draft)
}

// Submit validates the draft and, when it is complete, sends it. Invalid
// drafts never reach the network. A successful submission resets the draft;
// a failed one leaves it as it was.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return Outcome{State: Submitting}, ErrInFlight
	}
	c.state = Validating
	if err := c.draft.Validate(); err != nil {
		out := Outcome{State: Invalid, Message: err.Error(), Err: err}
		c.finish(out)
		c.mu.Unlock()
		c.notify.Error(out.Message)
		return out, err
	}
	payload := c.draft.Payload()
	c.state = Submitting
	c.mu.Unlock()

	c.log.Debugf("Submitting %d metric(s) for supplier %d dated %s", len(payload.Metrics), payload.SupplierID, payload.ComplianceDate)
	res, err := c.api.CheckCompliance(ctx, payload)

	c.mu.Lock()
	if err != nil {
		out := Outcome{State: Failed, Message: failureMessage(err), Payload: payload, Err: err}
		c.finish(out)
		c.mu.Unlock()
		c.log.Errorf("Compliance submission for supplier %d failed: %v", payload.SupplierID, err)
		c.notify.Error(out.Message)
		return out, err
	}

	out := Outcome{State: Submitted, Narrative: res.Response, Payload: payload}
	if len(res.Alerts) > 0 {
		out.Alerts = append([]string(nil), res.Alerts...)
	}
	c.draft.Reset()
	c.finish(out)
	c.mu.Unlock()

	if len(out.Alerts) > 0 {
		c.notify.Warn(strings.Join(out.Alerts, "\n"))
	}
	c.notify.Success(SuccessMessage)
	return out, nil
}

// finish records a terminal state. The caller holds c.mu.
func (c *Controller) finish(out Outcome) {
	c.state = out.State
	c.outcome = out
}

func failureMessage(err error) string {
	if d := api.Detail(err); d != "" {
		return "Submission failed: " + d
	}
	return UnexpectedMessage
}
