// Package report renders runner.Result and runner.Event streams for human
// and machine consumption: a plain-text line-per-case formatter, a JSON
// formatter, and a live bubbletea TUI.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/chimerascript/chimera/runner"
)

// TextReporter writes one line per terminal Event as it happens, then a
// summary block when the run finishes. It implements runner.Handler.
type TextReporter struct {
	out    io.Writer
	styles *Styles
}

// NewTextReporter returns a TextReporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{out: w, styles: DefaultStyles()}
}

func (t *TextReporter) Event(_ context.Context, event runner.Event, _ *runner.Result) error {
	switch event.Action {
	case runner.ActionRun, runner.ActionSetup:
		return nil
	case runner.ActionOutput:
		fmt.Fprintf(t.out, "%s  %s\n", t.styles.Dim.Render(event.PathString()), event.Output)

		return nil
	}

	symbol, style := t.statusGlyph(event.Action)

	fmt.Fprintf(t.out, "%s %s %s\n",
		style.Render(symbol),
		t.styles.TestName.Render(event.PathString()),
		t.styles.Duration.Render(event.Elapsed.Round(time.Millisecond).String()),
	)

	if event.Action == runner.ActionFail || event.Action == runner.ActionError || event.Action == runner.ActionUnexpectedSuccess {
		if event.Error != nil {
			fmt.Fprintf(t.out, "  %s\n", t.styles.Dim.Render(event.Error.Error()))
		} else if event.Field != "" {
			fmt.Fprintf(t.out, "  %s\n", t.styles.Dim.Render(event.Field))
		}
	}

	return nil
}

func (t *TextReporter) statusGlyph(action runner.Action) (string, interface {
	Render(...string) string
}) {
	switch action {
	case runner.ActionPass:
		return t.styles.SymbolPass, t.styles.Pass
	case runner.ActionFail, runner.ActionError:
		return t.styles.SymbolFail, t.styles.Fail
	case runner.ActionSkip:
		return t.styles.SymbolSkip, t.styles.Skip
	case runner.ActionExpectedFailure:
		return t.styles.SymbolXFail, t.styles.ExpectedFailure
	case runner.ActionUnexpectedSuccess:
		return t.styles.SymbolFail, t.styles.UnexpectedSuccess
	default:
		return t.styles.SymbolRunning, t.styles.Running
	}
}

// Finish prints the run's summary block.
func (t *TextReporter) Finish(result *runner.Result) error {
	fmt.Fprintln(t.out)
	fmt.Fprintf(t.out, "%s  %s\n", t.styles.Bold.Render("Summary"), result.Summary())

	for _, tr := range result.FailedTests() {
		fmt.Fprintf(t.out, "  %s %s\n", t.styles.Fail.Render(t.styles.SymbolFail), tr.PathString())
	}

	fmt.Fprintf(t.out, "elapsed %s\n", result.Elapsed().Round(time.Millisecond))

	return nil
}

// JSONReporter ignores individual Events and emits the final Result as one
// JSON document on Finish, for machine consumption (CI integration).
type JSONReporter struct {
	out io.Writer
}

// NewJSONReporter returns a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{out: w}
}

func (*JSONReporter) Event(_ context.Context, _ runner.Event, _ *runner.Result) error {
	return nil
}

type jsonTestResult struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Elapsed string `json:"elapsed"`
	Error   string `json:"error,omitempty"`
}

type jsonReport struct {
	Passed  int              `json:"passed"`
	Failed  int              `json:"failed"`
	Skipped int              `json:"skipped"`
	Errors  int              `json:"errors"`
	Elapsed string           `json:"elapsed"`
	Tests   []jsonTestResult `json:"tests"`
}

// Finish writes the accumulated Result as a single JSON object.
func (j *JSONReporter) Finish(result *runner.Result) error {
	report := jsonReport{
		Passed:  result.Passed,
		Failed:  result.Failed,
		Skipped: result.Skipped,
		Errors:  result.Errors,
		Elapsed: result.Elapsed().String(),
	}

	for _, name := range result.Names() {
		tr := result.Tests[name]

		entry := jsonTestResult{
			Path:    tr.PathString(),
			Status:  string(tr.Action),
			Elapsed: tr.Elapsed.String(),
		}

		if tr.Error != nil {
			entry.Error = tr.Error.Error()
		}

		report.Tests = append(report.Tests, entry)
	}

	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}
