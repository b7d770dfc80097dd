package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	groupStyle   = lipgloss.NewStyle().Bold(true)
	excludeStyle = lipgloss.NewStyle().Faint(true)
	problemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle  = lipgloss.NewStyle().Faint(true)
)

// headerLines and footerLines frame the viewport.
const (
	headerLines = 2
	footerLines = 1
)

// TUI implements UI with Bubble Tea for the interactive plan browser and
// falls back to SimpleUI output for everything else.
type TUI struct {
	*SimpleUI
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{
		SimpleUI: NewSimpleUI(cmd),
		output:   cmd.OutOrStdout(),
	}
}

// BrowsePlan shows the plan in a scrollable viewport.
func (t *TUI) BrowsePlan(ctx context.Context, plan m.TestPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newPlanBrowserModel(plan)

	if f, ok := t.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model = model.resize(width, height)
		}
	}

	// Short plans are printed directly.
	if !model.needsPagination() {
		_, err := fmt.Fprint(t.output, model.render())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

type planBrowserModel struct {
	title    string
	lines    []string
	viewport viewport.Model
	ready    bool
	quitting bool
}

func newPlanBrowserModel(plan m.TestPlan) planBrowserModel {
	outline := planLines(plan)

	return planBrowserModel{
		title: outline[0],
		lines: styleLines(outline[1:]),
	}
}

func styleLines(lines []string) []string {
	styled := make([]string, len(lines))

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasSuffix(trimmed, "cases)"):
			styled[i] = groupStyle.Render(line)
		case strings.HasPrefix(trimmed, "x "):
			styled[i] = excludeStyle.Render(line)
		case strings.Contains(line, "  ! "):
			styled[i] = problemStyle.Render(line)
		default:
			styled[i] = line
		}
	}

	return styled
}

func (pm planBrowserModel) resize(width, height int) planBrowserModel {
	bodyHeight := max(height-headerLines-footerLines, 1)

	if !pm.ready {
		pm.viewport = viewport.New(width, bodyHeight)
		pm.viewport.SetContent(strings.Join(pm.lines, "\n"))
		pm.ready = true

		return pm
	}

	pm.viewport.Width = width
	pm.viewport.Height = bodyHeight

	return pm
}

func (pm planBrowserModel) needsPagination() bool {
	return pm.ready && len(pm.lines) > pm.viewport.Height
}

func (pm planBrowserModel) Init() tea.Cmd {
	return nil
}

func (pm planBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return pm.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		}
	}

	var cmd tea.Cmd

	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm planBrowserModel) View() string {
	if pm.quitting {
		return ""
	}

	if !pm.ready {
		return pm.render()
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(pm.title))
	b.WriteString("\n\n")
	b.WriteString(pm.viewport.View())
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll, q quit", pm.viewport.ScrollPercent()*100)))

	return b.String()
}

// render draws the whole plan without a viewport.
func (pm planBrowserModel) render() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(pm.title))
	b.WriteString("\n\n")

	for _, line := range pm.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
