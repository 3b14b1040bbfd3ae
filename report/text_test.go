package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimerascript/chimera/report"
	"github.com/chimerascript/chimera/runner"
)

func TestTextReporter_Event(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	rep := report.NewTextReporter(&buf)

	result := runner.NewResult()

	err := rep.Event(context.Background(), runner.Event{Action: runner.ActionRun, Path: []string{"a"}}, result)
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "ActionRun should not write output")

	err = rep.Event(context.Background(), runner.Event{Action: runner.ActionPass, Path: []string{"a"}}, result)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "a")
}

func TestTextReporter_OutputLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	rep := report.NewTextReporter(&buf)

	err := rep.Event(context.Background(), runner.Event{
		Action: runner.ActionOutput,
		Path:   []string{"a"},
		Output: "hello from print",
	}, runner.NewResult())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "hello from print")
}

func TestTextReporter_FailureIncludesMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	rep := report.NewTextReporter(&buf)

	err := rep.Event(context.Background(), runner.Event{
		Action: runner.ActionFail,
		Path:   []string{"a"},
		Field:  "expected 1 to equal 2",
	}, runner.NewResult())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "expected 1 to equal 2")
}

func TestTextReporter_Finish(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	rep := report.NewTextReporter(&buf)

	result := runner.NewResult()
	result.Add(runner.Event{Action: runner.ActionPass, Path: []string{"a"}})
	result.Add(runner.Event{Action: runner.ActionFail, Path: []string{"b"}})
	result.Finish()

	require.NoError(t, rep.Finish(result))

	out := buf.String()
	assert.Contains(t, out, "passed=1 failed=1 total=2")
	assert.Contains(t, out, "b")
}

func TestJSONReporter_Finish(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	rep := report.NewJSONReporter(&buf)

	result := runner.NewResult()
	result.Add(runner.Event{Action: runner.ActionPass, Path: []string{"a"}, Elapsed: 0})
	result.Add(runner.Event{Action: runner.ActionFail, Path: []string{"b"}, Error: errTest{"boom"}})
	result.Finish()

	require.NoError(t, rep.Finish(result))

	var decoded map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.InEpsilon(t, float64(1), decoded["passed"], 0.0001)
	assert.InEpsilon(t, float64(1), decoded["failed"], 0.0001)

	tests, ok := decoded["tests"].([]any)
	require.True(t, ok)
	assert.Len(t, tests, 2)
}

type errTest struct{ msg string }

func (e errTest) Error() string { return e.msg }
