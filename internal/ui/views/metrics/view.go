package metrics

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	metricsdto "cgmlens/internal/modules/metrics/dto"
	"cgmlens/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the metrics use-case.
type Port interface {
	Compute(ctx context.Context, uploadID string, applyMask bool, low, high float64) (metricsdto.ReportOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// ReportReadyMsg is sent when a metrics computation finishes.
type ReportReadyMsg struct {
	Report metricsdto.ReportOutput
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the self-contained Bubble Tea model for the Metrics tab.
type Model struct {
	port    Port
	output  viewport.Model
	spinner spinner.Model
	report  metricsdto.ReportOutput
	hasData bool
	loading bool
	width   int
	height  int
}

func New(port Port) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, output: vp, spinner: sp}
}

// ComputeFor triggers a metrics computation for the given upload. Zero bounds
// fall back to the standard 70-180 mg/dL target range.
func (m *Model) ComputeFor(uploadID string, applyMask bool) tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.loading = true
	return tea.Batch(m.computeCmd(uploadID, applyMask), m.spinner.Tick)
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.Width = m.width - 4
		m.output.Height = m.height - 4

	case ReportReadyMsg:
		m.loading = false
		if msg.Err != nil {
			m.output.SetContent(theme.Hot.Render("Error: " + msg.Err.Error()))
			m.hasData = false
		} else {
			m.report = msg.Report
			m.hasData = true
			m.output.SetContent(m.renderReport())
		}
		m.output.GotoTop()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var vCmd tea.Cmd
	m.output, vCmd = m.output.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Computing metrics…")
	}
	if !m.hasData {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("Select an upload and press m to compute metrics"))
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(m.width - 2).
		Height(m.height - 2).
		Render(m.output.View())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderReport() string {
	r := m.report
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(r.UploadTitle) + "\n\n")
	sb.WriteString(fmt.Sprintf("%s%.0f-%.0f mg/dL\n", theme.Muted.Render("range:    "), r.LowBound, r.HighBound))
	if r.MaskApplied {
		sb.WriteString(fmt.Sprintf("%s%d points excluded by instability mask\n",
			theme.Muted.Render("mask:     "), r.Excluded))
	}
	sb.WriteString(fmt.Sprintf("%s%d\n\n", theme.Muted.Render("points:   "), r.Points))

	sb.WriteString(theme.Hot.Render(fmt.Sprintf("TIR %5.1f%%", r.InRange*100)) + "\n")
	sb.WriteString(fmt.Sprintf("TBR %5.1f%%\n", r.BelowRange*100))
	sb.WriteString(fmt.Sprintf("TAR %5.1f%%\n\n", r.AboveRange*100))

	sb.WriteString(fmt.Sprintf("%s%.2f%%\n\n", theme.Muted.Render("GMI:      "), r.GMI))

	sb.WriteString(fmt.Sprintf("%smean %.1f  sd %.1f  cv %.1f%%\n",
		theme.Muted.Render("glucose:  "), r.Mean, r.SD, r.CV*100))
	sb.WriteString(fmt.Sprintf("%smedian %.1f  min %.1f  max %.1f\n",
		theme.Muted.Render("          "), r.Median, r.Min, r.Max))

	if r.ReportPath != "" {
		sb.WriteString("\n" + theme.Muted.Render("report:   ") + r.ReportPath + "\n")
	}
	return sb.String()
}

func (m Model) computeCmd(uploadID string, applyMask bool) tea.Cmd {
	return func() tea.Msg {
		report, err := m.port.Compute(context.Background(), uploadID, applyMask, 0, 0)
		return ReportReadyMsg{Report: report, Err: err}
	}
}
