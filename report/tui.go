package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	chimera "github.com/chimerascript/chimera"
	"github.com/chimerascript/chimera/runner"
)

// TUIReporter renders a live, animated view of a run: a tree of every
// discovered case with a spinner on the ones still running, settling into
// a static summary once the run finishes. When out is not a TTY it reads no
// keyboard input but still renders the same view to out.
type TUIReporter struct {
	program *tea.Program
	model   *tuiModel

	mu       sync.Mutex
	finished bool
}

// NewTUIReporter builds a TUIReporter over every case discoverable in
// script. Only test cases (own or inherited decorator) are drawn; a non-test
// case is not shown, though its test descendants are.
func NewTUIReporter(w io.Writer, script *chimera.Script) *TUIReporter {
	model := newTUIModel(script)

	opts := []tea.ProgramOption{
		tea.WithOutput(w),
		tea.WithoutSignalHandler(),
		tea.WithAltScreen(),
	}

	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		opts = append(opts, tea.WithInput(nil))
	}

	return &TUIReporter{
		program: tea.NewProgram(model, opts...),
		model:   model,
	}
}

// Start begins the TUI event loop; call it before the run starts.
func (t *TUIReporter) Start() error {
	go func() {
		_, _ = t.program.Run()
	}()

	time.Sleep(20 * time.Millisecond)

	return nil
}

func (t *TUIReporter) Event(_ context.Context, event runner.Event, _ *runner.Result) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return nil
	}

	t.program.Send(eventMsg(event))

	return nil
}

// Finish waits for the user to dismiss the final view (ESC/q/ctrl+c), then
// prints the static summary to stdout once the alternate screen closes.
func (t *TUIReporter) Finish(result *runner.Result) error {
	t.mu.Lock()
	t.finished = true
	t.mu.Unlock()

	t.program.Send(doneMsg{result: result})
	t.program.Wait()

	_, err := io.WriteString(os.Stdout, t.model.finalView()+"\n")

	return err
}

type caseNode struct {
	path     string
	name     string
	depth    int
	isTest   bool
	action   runner.Action
	elapsed  time.Duration
	detail   string
	children []*caseNode
}

type (
	tickMsg  time.Time
	eventMsg runner.Event
	doneMsg  struct{ result *runner.Result }
)

type tuiModel struct {
	styles  *Styles
	spinner spinner.Model

	root  []*caseNode
	byKey map[string]*caseNode

	total, done int

	startTime time.Time
	isDone    bool
	result    *runner.Result
}

func newTUIModel(script *chimera.Script) *tuiModel {
	s := spinner.New()
	s.Spinner = spinner.Spinner{Frames: SpinnerFrames(), FPS: time.Second / 10}
	s.Style = DefaultStyles().Running

	m := &tuiModel{
		styles:    DefaultStyles(),
		spinner:   s,
		byKey:     make(map[string]*caseNode),
		startTime: time.Now(),
	}

	for _, fn := range script.Cases {
		node := buildCaseNode(fn, nil, 0, false, m.byKey)
		m.root = append(m.root, node)
	}

	m.total = countTests(m.root)

	return m
}

func buildCaseNode(fn *chimera.Function, parentPath []string, depth int, inheritedTest bool, byKey map[string]*caseNode) *caseNode {
	isTest := fn.HasDecorator("test") || inheritedTest
	path := append(append([]string{}, parentPath...), fn.Name)

	node := &caseNode{
		path:   strings.Join(path, "."),
		name:   fn.Name,
		depth:  depth,
		isTest: isTest,
	}

	for _, nested := range fn.Block.NestedCases() {
		node.children = append(node.children, buildCaseNode(nested, path, depth+1, isTest, byKey))
	}

	byKey[node.path] = node

	return node
}

func countTests(nodes []*caseNode) int {
	n := 0

	for _, node := range nodes {
		if node.isTest {
			n++
		}

		n += countTests(node.children)
	}

	return n
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.QuitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc", "q":
			if m.isDone {
				return m, tea.Quit
			}
		}

	case tickMsg:
		if !m.isDone {
			cmds = append(cmds, tickCmd())
		}

	case spinner.TickMsg:
		if !m.isDone {
			var cmd tea.Cmd

			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case eventMsg:
		m.applyEvent(runner.Event(msg))

	case doneMsg:
		m.isDone = true
		m.result = msg.result
	}

	return m, tea.Batch(cmds...)
}

func (m *tuiModel) applyEvent(event runner.Event) {
	node, ok := m.byKey[event.PathString()]
	if !ok {
		return
	}

	if event.Action == runner.ActionRun {
		node.action = runner.ActionRun

		return
	}

	if !event.Action.IsTerminal() {
		return
	}

	node.action = event.Action
	node.elapsed = event.Elapsed

	if event.Field != "" {
		node.detail = event.Field
	}

	m.done++
}

func (m *tuiModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %d/%d cases\n\n", m.styles.Bold.Render("chimera"), m.done, m.total)

	for _, node := range m.root {
		m.renderNode(&b, node)
	}

	if m.isDone {
		b.WriteString("\n" + m.styles.Dim.Render("press q to exit") + "\n")
	}

	return b.String()
}

func (m *tuiModel) finalView() string {
	var b strings.Builder

	for _, node := range m.root {
		m.renderNode(&b, node)
	}

	if m.result != nil {
		fmt.Fprintf(&b, "\n%s  %s  (%s)\n", m.styles.Bold.Render("Summary"), m.result.Summary(), m.result.Elapsed().Round(time.Millisecond))
	}

	return b.String()
}

func (m *tuiModel) renderNode(b *strings.Builder, node *caseNode) {
	if node.isTest {
		indent := strings.Repeat("  ", node.depth)
		symbol, style := m.glyph(node)

		fmt.Fprintf(b, "%s%s %s", indent, style.Render(symbol), m.styles.TestName.Render(node.name))

		if node.elapsed > 0 {
			fmt.Fprintf(b, " %s", m.styles.Duration.Render(node.elapsed.Round(time.Millisecond).String()))
		}

		b.WriteByte('\n')

		if node.detail != "" && (node.action == runner.ActionFail || node.action == runner.ActionError) {
			fmt.Fprintf(b, "%s  %s\n", indent, m.styles.Dim.Render(node.detail))
		}
	}

	for _, child := range node.children {
		m.renderNode(b, child)
	}
}

func (m *tuiModel) glyph(node *caseNode) (string, lipglossRenderer) {
	switch node.action {
	case runner.ActionPass:
		return m.styles.SymbolPass, m.styles.Pass
	case runner.ActionFail, runner.ActionError:
		return m.styles.SymbolFail, m.styles.Fail
	case runner.ActionSkip:
		return m.styles.SymbolSkip, m.styles.Skip
	case runner.ActionExpectedFailure:
		return m.styles.SymbolXFail, m.styles.ExpectedFailure
	case runner.ActionUnexpectedSuccess:
		return m.styles.SymbolFail, m.styles.UnexpectedSuccess
	case runner.ActionRun:
		return m.spinner.View(), m.styles.Running
	default:
		return m.styles.Dim.Render("·"), m.styles.Dim
	}
}

// lipglossRenderer is the subset of lipgloss.Style used for glyph coloring,
// named so glyph's return type doesn't repeat the full lipgloss import.
type lipglossRenderer interface {
	Render(...string) string
}
