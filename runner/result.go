package runner

import (
	"strconv"
	"strings"
	"time"
)

// TestResult records the terminal Event for one discovered case, plus any
// ActionOutput lines it produced along the way.
type TestResult struct {
	Path     []string
	Action   Action
	Elapsed  time.Duration
	Field    string
	Expected any
	Actual   any
	Error    error
	Output   []string
}

// PathString joins the dotted case path for display.
func (t TestResult) PathString() string {
	return strings.Join(t.Path, ".")
}

// Ok reports whether this case's terminal action counts as a successful
// outcome: Pass, Skip, and ExpectedFailure all exit zero; Fail, Error, and
// UnexpectedSuccess do not.
func (t TestResult) Ok() bool {
	switch t.Action {
	case ActionPass, ActionSkip, ActionExpectedFailure:
		return true
	case ActionFail, ActionError, ActionUnexpectedSuccess:
		return false
	default:
		return true
	}
}

// Result accumulates Events emitted over a run into per-case TestResults
// and running totals.
type Result struct {
	Tests map[string]*TestResult
	order []string

	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  int

	start    time.Time
	finished bool
	elapsed  time.Duration
}

// NewResult returns an empty Result with its clock started.
func NewResult() *Result {
	return &Result{Tests: make(map[string]*TestResult), start: time.Now()}
}

// Add folds one Event into the result. Non-terminal events (ActionRun,
// ActionSetup) are ignored except ActionOutput, whose text is appended to
// the named case's Output log.
func (r *Result) Add(event Event) {
	name := event.PathString()

	if event.Action == ActionOutput {
		tr, ok := r.Tests[name]
		if !ok {
			tr = &TestResult{Path: event.Path}
			r.register(name, tr)
		}

		tr.Output = append(tr.Output, event.Output)

		return
	}

	if !event.Action.IsTerminal() {
		return
	}

	tr, ok := r.Tests[name]
	if !ok {
		tr = &TestResult{Path: event.Path}
		r.register(name, tr)
	}

	tr.Action = event.Action
	tr.Elapsed = event.Elapsed
	tr.Field = event.Field
	tr.Expected = event.Expected
	tr.Actual = event.Actual
	tr.Error = event.Error

	r.Total++

	switch event.Action {
	case ActionPass, ActionExpectedFailure:
		r.Passed++
	case ActionFail, ActionUnexpectedSuccess:
		r.Failed++
	case ActionSkip:
		r.Skipped++
	case ActionError:
		r.Errors++
	}
}

func (r *Result) register(name string, tr *TestResult) {
	r.Tests[name] = tr
	r.order = append(r.order, name)
}

// Names returns every recorded test's path string, in the order each was
// first recorded by Add (its first output or terminal event). A case's
// terminal event follows those of its nested cases, so a nested case that
// prints nothing before its parent does is listed ahead of the parent.
func (r *Result) Names() []string {
	return append([]string(nil), r.order...)
}

// Ok reports whether every recorded test's terminal action is Ok.
func (r *Result) Ok() bool {
	for _, name := range r.order {
		if !r.Tests[name].Ok() {
			return false
		}
	}

	return true
}

// FailedTests returns results whose terminal action is not Ok, in the
// order they were first recorded.
func (r *Result) FailedTests() []TestResult {
	var out []TestResult

	for _, name := range r.order {
		tr := r.Tests[name]
		if !tr.Ok() {
			out = append(out, *tr)
		}
	}

	return out
}

// Merge appends another Result's tests onto this one, for combining runs
// across multiple files.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}

	for _, name := range other.order {
		if _, exists := r.Tests[name]; !exists {
			r.order = append(r.order, name)
		}

		r.Tests[name] = other.Tests[name]
	}

	r.Total += other.Total
	r.Passed += other.Passed
	r.Failed += other.Failed
	r.Skipped += other.Skipped
	r.Errors += other.Errors
}

// Finish freezes the result's elapsed clock. Subsequent Elapsed calls
// return the same duration.
func (r *Result) Finish() {
	r.elapsed = time.Since(r.start)
	r.finished = true
}

// Elapsed returns the wall-clock duration of the run: the time since
// NewResult if still in progress, or the duration fixed by Finish.
func (r *Result) Elapsed() time.Duration {
	if r.finished {
		return r.elapsed
	}

	return time.Since(r.start)
}

// Summary renders a one-line pass/fail tally.
func (r *Result) Summary() string {
	return "passed=" + strconv.Itoa(r.Passed) + " failed=" + strconv.Itoa(r.Failed) + " total=" + strconv.Itoa(r.Total)
}
