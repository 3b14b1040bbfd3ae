package runner

import (
	"strings"
	"time"
)

// Action identifies what a runner Event reports.
type Action string

const (
	// ActionRun announces that a case is about to execute.
	ActionRun Action = "run"
	// ActionPass reports a case that finished with no failed assertion and
	// no runtime error, and was not decorated expected-failure.
	ActionPass Action = "pass"
	// ActionFail reports a case that failed an assertion or whose nested
	// case failed; a runtime error in its own statements is ActionError.
	ActionFail Action = "fail"
	// ActionSkip reports a skipped case. The Runner does not emit it: a case
	// excluded by a filter produces no event at all.
	ActionSkip Action = "skip"
	// ActionError reports a runtime error distinct from assertion failure
	// (undefined variable, transport error, and the like).
	ActionError Action = "error"
	// ActionExpectedFailure reports a case decorated expected-failure that
	// did in fact fail.
	ActionExpectedFailure Action = "expected_failure"
	// ActionUnexpectedSuccess reports a case decorated expected-failure
	// that passed cleanly.
	ActionUnexpectedSuccess Action = "unexpected_success"
	// ActionOutput carries one line produced by a PRINT statement.
	ActionOutput Action = "output"
	// ActionSetup announces setup-phase statement execution, ahead of the
	// case's own body.
	ActionSetup Action = "setup"
)

// IsTerminal reports whether an Action represents a case's final outcome,
// as opposed to progress or output reporting along the way.
func (a Action) IsTerminal() bool {
	switch a {
	case ActionPass, ActionFail, ActionSkip, ActionError, ActionExpectedFailure, ActionUnexpectedSuccess:
		return true
	case ActionRun, ActionOutput, ActionSetup:
		return false
	default:
		return false
	}
}

// Event is emitted by the Runner at each point a Handler might care about:
// a case starting, finishing, producing output, or failing.
type Event struct {
	Time     time.Time
	Action   Action
	Suite    string
	Path     []string
	Elapsed  time.Duration
	Field    string
	Expected any
	Actual   any
	Error    error
	Output   string
}

// PathString joins the dotted case path for display.
func (e Event) PathString() string {
	return strings.Join(e.Path, ".")
}

// TestName returns the innermost segment of the path: the name of the case
// the event concerns, independent of its ancestry.
func (e Event) TestName() string {
	if len(e.Path) == 0 {
		return ""
	}

	return e.Path[len(e.Path)-1]
}
