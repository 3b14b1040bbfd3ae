package runner

import (
	"context"
	"errors"
)

// ErrMaxFailures is returned by StopOnFailHandler once its configured
// failure budget is exhausted, signaling the Runner to abort the rest of
// the run.
var ErrMaxFailures = errors.New("maximum failures reached")

// Handler observes Events as a run progresses. Returning a non-nil error
// from Event stops the run; MultiHandler propagates the first such error
// and skips the remaining handlers for that Event.
type Handler interface {
	Event(ctx context.Context, event Event, result *Result) error
}

// MultiHandler fans one Event out to several Handlers in order, stopping
// at the first one that returns an error.
type MultiHandler struct {
	handlers []Handler
}

// NewMultiHandler composes handlers into one, evaluated in the given order.
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (m *MultiHandler) Event(ctx context.Context, event Event, result *Result) error {
	for _, h := range m.handlers {
		if err := h.Event(ctx, event, result); err != nil {
			return err
		}
	}

	return nil
}

// ResultHandler folds every Event into the shared Result. It never returns
// an error and is always the first handler in a Runner's chain.
type ResultHandler struct{}

// NewResultHandler returns a Handler that records Events into the Result
// passed to Event.
func NewResultHandler() *ResultHandler {
	return &ResultHandler{}
}

func (*ResultHandler) Event(_ context.Context, event Event, result *Result) error {
	result.Add(event)

	return nil
}

// StopOnFailHandler aborts the run once the number of Failed/Error/
// UnexpectedSuccess results recorded so far reaches max. A max of 0
// disables the budget entirely.
type StopOnFailHandler struct {
	max int
}

// NewStopOnFailHandler returns a handler enforcing a failure budget of max.
func NewStopOnFailHandler(max int) *StopOnFailHandler {
	return &StopOnFailHandler{max: max}
}

func (s *StopOnFailHandler) Event(_ context.Context, event Event, result *Result) error {
	if s.max <= 0 || !event.Action.IsTerminal() {
		return nil
	}

	if result.Failed+result.Errors >= s.max {
		return ErrMaxFailures
	}

	return nil
}
