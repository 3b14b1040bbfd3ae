// Package runner executes a parsed ChimeraScript file: it discovers cases
// marked (directly or by inheritance) with the test decorator, runs each
// one's statements and nested cases against a shared evaluator, unwinds its
// teardown stack, and classifies the outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	chimera "github.com/chimerascript/chimera"
	"github.com/chimerascript/chimera/eval"
)

// Runner executes the cases of a parsed Script.
type Runner struct {
	client   chimera.Client
	baseURL  string
	out      io.Writer
	handler  Handler
	failFast bool
	filter   *regexp.Regexp
	logger   *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithClient sets the HTTP client used to dispatch request expressions.
func WithClient(c chimera.Client) Option {
	return func(r *Runner) { r.client = c }
}

// WithBaseURL sets the base URL prefixed to every request path.
func WithBaseURL(url string) Option {
	return func(r *Runner) { r.baseURL = url }
}

// WithOut sets the writer PRINT statements write to.
func WithOut(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithHandler adds an extra Handler to the run, alongside the always-present
// ResultHandler.
func WithHandler(h Handler) Option {
	return func(r *Runner) { r.handler = h }
}

// WithFailFast stops the run once a failure budget of 1 is reached.
func WithFailFast(enabled bool) Option {
	return func(r *Runner) { r.failFast = enabled }
}

// WithFilter restricts reporting to cases whose dotted path matches
// pattern. A non-matching case whose descendant matches still executes,
// unreported, so the selected case sees its ancestors' variable bindings.
func WithFilter(pattern string) Option {
	return func(r *Runner) {
		if pattern != "" {
			r.filter = regexp.MustCompile(pattern)
		}
	}
}

// WithLogger sets the logger used for operational diagnostics (discovery,
// teardown failures). Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New constructs a Runner. A nil client is only valid if the script under
// test never evaluates an Http expression.
func New(opts ...Option) *Runner {
	r := &Runner{out: io.Discard, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes every top-level case of script and returns the accumulated
// Result. suitePath labels emitted Events (typically the source file path).
func (r *Runner) Run(ctx context.Context, script *chimera.Script, suitePath string) (*Result, error) {
	result := NewResult()

	handlers := []Handler{NewResultHandler()}
	if r.handler != nil {
		handlers = append(handlers, r.handler)
	}

	if r.failFast {
		handlers = append(handlers, NewStopOnFailHandler(1))
	}

	handler := NewMultiHandler(handlers...)

	for _, fn := range script.Cases {
		r.logger.Debug("running case", zap.String("case", fn.Name), zap.String("suite", suitePath))

		store := chimera.NewStore()
		ev := eval.New(store, r.client, r.baseURL, r.out)

		_, err := r.runNode(ctx, fn, ev, nil, false, suitePath, handler, result)
		if errors.Is(err, ErrMaxFailures) {
			break
		}
	}

	result.Finish()

	return result, nil
}

// runNode executes fn if it is (by inheritance) a test, recursing into its
// nested cases. It returns whether fn or any descendant failed.
func (r *Runner) runNode(
	ctx context.Context,
	fn *chimera.Function,
	ev *eval.Evaluator,
	parentPath []string,
	inheritedTest bool,
	suitePath string,
	handler Handler,
	result *Result,
) (bool, error) {
	isTest := fn.HasDecorator("test") || inheritedTest

	path := append(append([]string{}, parentPath...), fn.Name)

	if !isTest {
		return r.runChildren(ctx, fn, ev, path, false, suitePath, handler, result)
	}

	// A filtered-out case still executes (unreported) when a descendant
	// matches, since the descendant depends on its ancestors' statements.
	matched := r.filter == nil || r.filter.MatchString(strings.Join(path, "."))
	if !matched && !r.hasMatchingDescendant(fn, path) {
		return false, nil
	}

	start := time.Now()

	if matched {
		if err := handler.Event(ctx, Event{Time: start, Action: ActionRun, Suite: suitePath, Path: path}, result); err != nil {
			return false, err
		}
	}

	snap := ev.Store.Snapshot()

	// Statements and nested cases execute interleaved in source order, so a
	// statement placed after a nested case observes the writes the nested
	// case made to pre-existing variables. Teardown blocks only register
	// here; their statements run after the body, whatever its outcome.
	var (
		runErr      error
		childFailed bool
		childErr    error
	)

	for _, item := range fn.Block.Items {
		switch {
		case item.Stmt != nil:
			if err := ev.EvalStatement(ctx, item.Stmt); err != nil {
				runErr = err
			}

		case item.Nested != nil:
			failed, err := r.runNode(ctx, item.Nested, ev, path, true, suitePath, handler, result)

			childFailed = childFailed || failed
			childErr = err
		}

		if runErr != nil || childErr != nil {
			break
		}
	}

	r.runTeardown(ctx, fn, ev, path, suitePath, handler, result)

	ev.Store.Restore(snap)

	if childErr != nil {
		return childFailed, childErr
	}

	failed := runErr != nil || childFailed
	expectedFailure := fn.HasDecorator("expected-failure")

	action := classify(failed, expectedFailure, runErr)

	event := Event{
		Time:    time.Now(),
		Action:  action,
		Suite:   suitePath,
		Path:    path,
		Elapsed: time.Since(start),
	}

	if runErr != nil {
		event.Error = runErr

		var assertErr *eval.AssertionFailedError
		if errors.As(runErr, &assertErr) {
			event.Field = assertErr.Message
		}
	}

	if matched {
		if err := handler.Event(ctx, event, result); err != nil {
			return failed, err
		}
	}

	return failed, nil
}

// hasMatchingDescendant reports whether any case nested under fn has a
// dotted path matching the filter.
func (r *Runner) hasMatchingDescendant(fn *chimera.Function, path []string) bool {
	for _, nested := range fn.Block.NestedCases() {
		childPath := append(append([]string{}, path...), nested.Name)

		if r.filter.MatchString(strings.Join(childPath, ".")) || r.hasMatchingDescendant(nested, childPath) {
			return true
		}
	}

	return false
}

// classify maps a case's raw success/failure and expected-failure
// decoration onto the reportable Action.
func classify(failed, expectedFailure bool, runErr error) Action {
	switch {
	case expectedFailure && failed:
		return ActionExpectedFailure
	case expectedFailure && !failed:
		return ActionUnexpectedSuccess
	case failed && isRuntimeError(runErr):
		return ActionError
	case failed:
		return ActionFail
	default:
		return ActionPass
	}
}

// isRuntimeError reports whether err is a non-assertion runtime error
// (undefined variable, type error, transport failure, and the like), as
// opposed to an AssertionFailedError or nil (propagated child failure).
func isRuntimeError(err error) bool {
	if err == nil {
		return false
	}

	var assertErr *eval.AssertionFailedError

	return !errors.As(err, &assertErr)
}

func (r *Runner) runChildren(
	ctx context.Context,
	fn *chimera.Function,
	ev *eval.Evaluator,
	path []string,
	inheritedTest bool,
	suitePath string,
	handler Handler,
	result *Result,
) (bool, error) {
	childFailed := false

	for _, nested := range fn.Block.NestedCases() {
		failed, err := r.runNode(ctx, nested, ev, path, inheritedTest, suitePath, handler, result)
		if err != nil {
			return childFailed || failed, err
		}

		childFailed = childFailed || failed
	}

	return childFailed, nil
}

// runTeardown executes every TEARDOWN statement registered directly in
// fn's block, in source order. Each statement's error is reported
// individually and does not prevent the remaining statements from running.
func (r *Runner) runTeardown(
	ctx context.Context,
	fn *chimera.Function,
	ev *eval.Evaluator,
	path []string,
	suitePath string,
	handler Handler,
	result *Result,
) {
	for _, stmt := range fn.Block.TeardownStatements() {
		if err := ev.EvalStatement(ctx, stmt); err != nil {
			r.logger.Warn("teardown statement failed",
				zap.String("case", strings.Join(path, ".")),
				zap.Error(err),
			)

			_ = handler.Event(ctx, Event{
				Time:   time.Now(),
				Action: ActionOutput,
				Suite:  suitePath,
				Path:   path,
				Output: fmt.Sprintf("teardown error: %s", err),
			}, result)
		}
	}
}
