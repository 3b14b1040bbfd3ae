package runner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chimera "github.com/chimerascript/chimera"
	"github.com/chimerascript/chimera/httpclient"
	"github.com/chimerascript/chimera/runner"
)

func mustParse(t *testing.T, src string) *chimera.Script {
	t.Helper()

	script, err := chimera.ParseString(src)
	require.NoError(t, err)

	return script
}

func TestRunner_DiscoversOnlyDecoratedCases(t *testing.T) {
	t.Parallel()

	script := mustParse(t, `
		[test]
		case a() {
			ASSERT EQUALS 1 1;
		}

		case helper() {
			ASSERT EQUALS 1 1;
		}
	`)

	r := runner.New()

	result, err := r.Run(context.Background(), script, "suite.chimera")
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, result.Names())
}

func TestRunner_NestedCaseInheritsTestDecorator(t *testing.T) {
	t.Parallel()

	script := mustParse(t, `
		[test]
		case outer() {
			ASSERT EQUALS 1 1;

			case inner() {
				ASSERT EQUALS 1 1;
			}
		}
	`)

	r := runner.New()

	result, err := r.Run(context.Background(), script, "suite.chimera")
	require.NoError(t, err)

	// A parent's terminal event follows its nested cases', so inner is
	// recorded first.
	assert.Equal(t, []string{"outer.inner", "outer"}, result.Names())
	assert.True(t, result.Ok())
}

func TestRunner_ExpectedFailureDoesNotInherit(t *testing.T) {
	t.Parallel()

	// expected-failure on outer must not apply to inner: inner's own
	// assertion failure should classify as a plain Fail, not
	// ExpectedFailure, since the decorator does not propagate. Outer's own
	// statements must pass so that its nested case still runs (a failed
	// parent statement would skip its children entirely).
	script := mustParse(t, `
		[test, expected-failure]
		case outer() {
			ASSERT EQUALS 1 1;

			case inner() {
				ASSERT EQUALS 1 2;
			}
		}
	`)

	r := runner.New()

	result, err := r.Run(context.Background(), script, "suite.chimera")
	require.NoError(t, err)

	assert.Equal(t, runner.ActionExpectedFailure, result.Tests["outer"].Action)
	assert.Equal(t, runner.ActionFail, result.Tests["outer.inner"].Action, "decorator does not inherit")
}

func TestRunner_UnexpectedSuccess(t *testing.T) {
	t.Parallel()

	script := mustParse(t, `
		[test, expected-failure]
		case outer() {
			ASSERT EQUALS 1 1;
		}
	`)

	r := runner.New()

	result, err := r.Run(context.Background(), script, "suite.chimera")
	require.NoError(t, err)

	assert.Equal(t, runner.ActionUnexpectedSuccess, result.Tests["outer"].Action)
	assert.False(t, result.Ok(), "an unexpected success should make the result not Ok")
}

func TestRunner_RuntimeErrorClassifiesAsError(t *testing.T) {
	t.Parallel()

	script := mustParse(t, `
		[test]
		case outer() {
			PRINT (missing);
		}
	`)

	r := runner.New()

	result, err := r.Run(context.Background(), script, "suite.chimera")
	require.NoError(t, err)

	assert.Equal(t, runner.ActionError, result.Tests["outer"].Action)
}

func TestRunner_ChildFailurePropagatesToParent(t *testing.T) {
	t.Parallel()

	script := mustParse(t, `
		[test]
		case outer() {
			ASSERT EQUALS 1 1;

			case inner() {
				ASSERT EQUALS 1 2;
			}
		}
	`)

	r := runner.New()

	result, err := r.Run(context.Background(), script, "suite.chimera")
	require.NoError(t, err)

	assert.Equal(t, runner.ActionFail, result.Tests["outer"].Action, "inner failed")
	assert.Equal(t, runner.ActionFail, result.Tests["outer.inner"].Action)
}

// TestRunner_TeardownRunsEvenOnFailureAndInLIFOOrder checks that a nested
// case's own assertion failure still runs its teardown, and that the
// parent's teardown (unaffected by the nested failure, since its own
// statements passed) runs after the nested case's, unwinding innermost
// first.
func TestRunner_TeardownRunsEvenOnFailureAndInLIFOOrder(t *testing.T) {
	t.Parallel()

	fake := httpclient.NewFakeClient()
	fake.WithResponse("DELETE", "/inner", &chimera.HttpResponse{StatusCode: 204, Body: chimera.NullVal()})
	fake.WithResponse("DELETE", "/outer", &chimera.HttpResponse{StatusCode: 204, Body: chimera.NullVal()})

	script := mustParse(t, `
		[test]
		case outer() {
			ASSERT EQUALS 1 1;

			case inner() {
				ASSERT EQUALS 1 2;

				TEARDOWN {
					DELETE /inner;
				}
			}

			TEARDOWN {
				DELETE /outer;
			}
		}
	`)

	r := runner.New(runner.WithClient(fake))

	_, err := r.Run(context.Background(), script, "suite.chimera")
	require.NoError(t, err)

	require.Len(t, fake.Requests, 2, "both teardowns ran despite the parent failure")
	assert.Equal(t, "/inner", fake.Requests[0].Path, "innermost unwinds first")
	assert.Equal(t, "/outer", fake.Requests[1].Path)
}

func TestRunner_NestedScopingDiscardsNewVarsButKeepsReassignments(t *testing.T) {
	t.Parallel()

	script := mustParse(t, `
		[test]
		case outer() {
			var shared = LITERAL 1;

			case inner() {
				var shared = LITERAL 2;
				var only_inner = LITERAL "x";
				ASSERT EQUALS (shared) 2;
			}

			ASSERT EQUALS (shared) 2;
		}
	`)

	r := runner.New()

	result, err := r.Run(context.Background(), script, "suite.chimera")
	require.NoError(t, err)

	assert.True(t, result.Ok(), "expected all assertions to pass, got %+v", result.FailedTests())
}

func TestRunner_FilterSkipsNonMatchingCases(t *testing.T) {
	t.Parallel()

	script := mustParse(t, `
		[test]
		case wanted() {
			ASSERT EQUALS 1 1;
		}

		[test]
		case other() {
			ASSERT EQUALS 1 1;
		}
	`)

	r := runner.New(runner.WithFilter("wanted"))

	result, err := r.Run(context.Background(), script, "suite.chimera")
	require.NoError(t, err)

	assert.Equal(t, []string{"wanted"}, result.Names())
}

func TestRunner_FilterSelectsNestedCaseThroughParent(t *testing.T) {
	t.Parallel()

	script := mustParse(t, `
		[test]
		case outer() {
			var x = LITERAL 1;

			case inner() {
				ASSERT EQUALS (x) 1;
			}
		}

		[test]
		case other() {
			ASSERT EQUALS 1 1;
		}
	`)

	r := runner.New(runner.WithFilter("outer.inner"))

	result, err := r.Run(context.Background(), script, "suite.chimera")
	require.NoError(t, err)

	assert.Equal(t, []string{"outer.inner"}, result.Names(), "only the selected nested case is reported")
	assert.True(t, result.Ok(), "outer's setup ran so inner's assertion passes: %+v", result.FailedTests())
}

func TestRunner_FailFastStopsAfterFirstFailure(t *testing.T) {
	t.Parallel()

	script := mustParse(t, `
		[test]
		case a() {
			ASSERT EQUALS 1 2;
		}

		[test]
		case b() {
			ASSERT EQUALS 1 1;
		}
	`)

	r := runner.New(runner.WithFailFast(true))

	result, err := r.Run(context.Background(), script, "suite.chimera")
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, result.Names(), "run stopped after first failure")
}
