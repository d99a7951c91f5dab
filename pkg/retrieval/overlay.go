// Package retrieval implements the insight and record overlays: a
// per-supplier fetch that can be opened, closed and re-opened, where only
// the newest request may change what is shown.
package retrieval

import (
	"context"
	"sync"
)

// State is the lifecycle of an overlay.
type State int

const (
	Closed State = iota
	Loading
	Loaded
	Errored
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	}
	return "unknown"
}

// FetchFunc loads the data for one supplier.
type FetchFunc[T any] func(ctx context.Context, supplierID int) (T, error)

// View is a snapshot of an overlay.
type View[T any] struct {
	State      State
	Visible    bool
	SupplierID int
	Data       T
	// Message is the text to show instead of Data: the empty-state message
	// when Loaded with nothing, or the error message when Errored.
	Message string
	Err     error
}

// Overlay tracks one outstanding fetch at a time. Every Open starts a new
// generation and responses from older generations are dropped.
type Overlay[T any] struct {
	mu         sync.Mutex
	gen        uint64
	state      State
	supplierID int
	data       T
	message    string
	err        error
	done       chan struct{}

	fetch    FetchFunc[T]
	isEmpty  func(T) bool
	emptyMsg string
	errMsg   func(error) string
	log      Logger
}

// Logger is the subset of logrus used by overlays.
type Logger interface {
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}

// New builds an overlay. isEmpty and errMsg may be nil.
func New[T any](fetch FetchFunc[T], isEmpty func(T) bool, emptyMsg string, errMsg func(error) string, log Logger) *Overlay[T] {
	if log == nil {
		log = nopLogger{}
	}
	if errMsg == nil {
		errMsg = func(err error) string { return err.Error() }
	}
	return &Overlay[T]{fetch: fetch, isEmpty: isEmpty, emptyMsg: emptyMsg, errMsg: errMsg, log: log}
}

// Open shows the overlay for supplierID and starts a fetch in the
// background. The result of any earlier fetch will be ignored.
func (o *Overlay[T]) Open(ctx context.Context, supplierID int) {
	o.mu.Lock()
	o.gen++
	gen := o.gen
	var zero T
	o.state = Loading
	o.supplierID = supplierID
	o.data = zero
	o.message = ""
	o.err = nil
	done := make(chan struct{})
	o.done = done
	o.mu.Unlock()

	go func() {
		defer close(done)
		data, err := o.fetch(ctx, supplierID)
		o.settle(gen, supplierID, data, err)
	}()
}

func (o *Overlay[T]) settle(gen uint64, supplierID int, data T, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen || o.state != Loading {
		o.log.Debugf("Discarding stale response for supplier %d", supplierID)
		return
	}
	if err != nil {
		o.state = Errored
		o.err = err
		o.message = o.errMsg(err)
		return
	}
	o.state = Loaded
	o.data = data
	if o.isEmpty != nil && o.isEmpty(data) {
		o.message = o.emptyMsg
	}
}

// Close hides the overlay and clears its data. A fetch still in flight
// completes without effect.
func (o *Overlay[T]) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	var zero T
	o.state = Closed
	o.done = nil
	o.supplierID = 0
	o.data = zero
	o.message = ""
	o.err = nil
}

// View returns the current snapshot.
func (o *Overlay[T]) View() View[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return View[T]{
		State:      o.state,
		Visible:    o.state != Closed,
		SupplierID: o.supplierID,
		Data:       o.data,
		Message:    o.message,
		Err:        o.err,
	}
}

// Empty reports whether a loaded overlay has nothing to show.
func (v View[T]) Empty() bool {
	return v.State == Loaded && v.Message != ""
}

// Wait blocks until the most recent fetch has settled or ctx is done, then
// returns the current view.
func (o *Overlay[T]) Wait(ctx context.Context) (View[T], error) {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return o.View(), ctx.Err()
		}
	}
	return o.View(), nil
}
