package report

import "github.com/charmbracelet/lipgloss"

// Status colors, one per runner.Action outcome.
var (
	colorPass    = lipgloss.Color("#10b981") // green-500
	colorFail    = lipgloss.Color("#ef4444") // red-500
	colorSkip    = lipgloss.Color("#eab308") // yellow-500
	colorRunning = lipgloss.Color("#06b6d4") // cyan-500
	colorXFail   = lipgloss.Color("#d946ef") // fuchsia-500, expected-failure

	colorDim    = lipgloss.Color("#6b7280") // gray-500
	colorMuted  = lipgloss.Color("#9ca3af") // gray-400
	colorBorder = lipgloss.Color("#374151") // gray-700
	colorAccent = lipgloss.Color("#3b82f6") // blue-500
)

// Styles holds the lipgloss styles shared by the plain-text and TUI
// reporters.
type Styles struct {
	Pass              lipgloss.Style
	Fail              lipgloss.Style
	Skip              lipgloss.Style
	Running           lipgloss.Style
	ExpectedFailure   lipgloss.Style
	UnexpectedSuccess lipgloss.Style
	Error             lipgloss.Style

	Dim      lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	TestName lipgloss.Style
	Duration lipgloss.Style
	Path     lipgloss.Style

	SymbolPass    string
	SymbolFail    string
	SymbolSkip    string
	SymbolRunning string
	SymbolXFail   string
	SymbolPointer string

	TreeMiddle string
	TreeEnd    string
	TreeBar    string

	StatusWidth int
}

// DefaultStyles returns the reporter's default color scheme.
func DefaultStyles() *Styles {
	return &Styles{
		Pass:              lipgloss.NewStyle().Foreground(colorPass).Bold(true),
		Fail:              lipgloss.NewStyle().Foreground(colorFail).Bold(true),
		Skip:              lipgloss.NewStyle().Foreground(colorSkip).Bold(true),
		Running:           lipgloss.NewStyle().Foreground(colorRunning).Bold(true),
		ExpectedFailure:   lipgloss.NewStyle().Foreground(colorXFail).Bold(true),
		UnexpectedSuccess: lipgloss.NewStyle().Foreground(colorFail).Bold(true),
		Error:             lipgloss.NewStyle().Foreground(colorFail).Bold(true),

		Dim:      lipgloss.NewStyle().Foreground(colorDim),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted),
		Bold:     lipgloss.NewStyle().Bold(true),
		TestName: lipgloss.NewStyle().Foreground(lipgloss.Color("#f8fafc")),
		Duration: lipgloss.NewStyle().Foreground(colorDim),
		Path:     lipgloss.NewStyle().Foreground(colorAccent),

		SymbolPass:    "✓",
		SymbolFail:    "✗",
		SymbolSkip:    "↓",
		SymbolRunning: "◐",
		SymbolXFail:   "⚑",
		SymbolPointer: "❯",

		TreeMiddle: "├─",
		TreeEnd:    "╰─",
		TreeBar:    "│ ",

		StatusWidth: 9,
	}
}

// SpinnerFrames returns the braille spinner animation frames used by the
// live TUI while a case is running.
func SpinnerFrames() []string {
	return []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
}
