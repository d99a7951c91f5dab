package supplier

import (
	"context"
	"errors"
	"sync"
)

const (
	createdMessage      = "Supplier added successfully!"
	createFailedMessage = "Error creating supplier. Please try again."
)

// ErrCreateFailed is returned by Form.Create when the backend rejects or
// cannot be reached. The cause is only logged.
var ErrCreateFailed = errors.New(createFailedMessage)

// Creator is the backend operation the form depends on.
type Creator interface {
	CreateSupplier(ctx context.Context, d Draft) (Supplier, error)
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

// Form owns a creation draft and submits it.
type Form struct {
	mu     sync.Mutex
	draft  *Draft
	api    Creator
	notify Notifier
	log    Logger
}

// NewForm wraps draft. notify and log may be nil.
func NewForm(draft *Draft, api Creator, notify Notifier, log Logger) *Form {
	if draft == nil {
		draft = NewDraft()
	}
	if notify == nil {
		notify = nopNotifier{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Form{draft: draft, api: api, notify: notify, log: log}
}

// Edit runs fn against the draft under the form's lock.
func (f *Form) Edit(fn func(d *Draft)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.draft)
}

// AddTerm adds a contract term, notifying the user when it is rejected.
func (f *Form) AddTerm(key, value string) error {
	f.mu.Lock()
	err := f.draft.AddTerm(key, value)
	f.mu.Unlock()
	if err != nil {
		f.notify.Error(err.Error())
	}
	return err
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := *f.draft
	d.ContractTerms = TermsOf(f.draft.ContractTerms.Map())
	return d
}

// Create sends the draft. On success the draft is reset; on failure it is
// kept as typed and the user only sees a generic message.
func (f *Form) Create(ctx context.Context) (Supplier, error) {
	d := f.Draft()
	if err := d.Validate(); err != nil {
		f.notify.Error(err.Error())
		return Supplier{}, err
	}

	created, err := f.api.CreateSupplier(ctx, d)
	if err != nil {
		f.log.Debugf("create supplier %q failed: %v", d.Name, err)
		f.notify.Error(createFailedMessage)
		return Supplier{}, ErrCreateFailed
	}

	f.mu.Lock()
	f.draft.Reset()
	f.mu.Unlock()

	f.log.Infof("Created supplier %q (id %d)", created.Name, created.ID)
	f.notify.Success(createdMessage)
	return created, nil
}
