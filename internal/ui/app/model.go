package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	detectdto "cgmlens/internal/modules/detect/dto"
	metricsdto "cgmlens/internal/modules/metrics/dto"
	plugindto "cgmlens/internal/modules/plugin/dto"
	readingsdto "cgmlens/internal/modules/readings/dto"
	sessiondto "cgmlens/internal/modules/session/dto"
	"cgmlens/internal/ui/components"
	"cgmlens/internal/ui/theme"
	metricsview "cgmlens/internal/ui/views/metrics"
	pluginsview "cgmlens/internal/ui/views/plugins"
	uploadsview "cgmlens/internal/ui/views/uploads"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type readingsPort interface {
	ListUploads(ctx context.Context) ([]readingsdto.UploadOutput, error)
	GetUpload(ctx context.Context, id string) (readingsdto.UploadOutput, error)
	Reindex(ctx context.Context) error
}

type detectPort interface {
	Analyze(ctx context.Context, uploadID string, withPlugins bool) (detectdto.AnalysisOutput, error)
}

type metricsPort interface {
	Compute(ctx context.Context, uploadID string, applyMask bool, low, high float64) (metricsdto.ReportOutput, error)
}

type sessionPort interface {
	Evaluate(ctx context.Context, uploadID string) ([]sessiondto.SessionOutput, error)
}

type pluginPort interface {
	ListCommands(ctx context.Context, pluginName string) ([]plugindto.CommandInfo, error)
	Execute(ctx context.Context, input plugindto.ExecuteInput) (plugindto.ExecuteOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabUploads tabID = iota
	tabMetrics
	tabPlugins
	tabCount
)

var tabLabels = [tabCount]string{
	"Uploads", "Metrics", "Plugins",
}

// ─── async messages ───────────────────────────────────────────────────────────

type analysisDoneMsg struct {
	out detectdto.AnalysisOutput
	err error
}

type sessionsDoneMsg struct {
	sessions []sessiondto.SessionOutput
	err      error
}

type reindexDoneMsg struct{ err error }

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab      key.Binding
	Help     key.Binding
	Palette  key.Binding
	Quit     key.Binding
	Analyze  key.Binding
	Metrics  key.Binding
	Sessions key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Analyze:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "analyze upload")),
		Metrics:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "compute metrics")),
		Sessions: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "evaluate sessions")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Analyze, k.Metrics, k.Sessions},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the global help
// overlay, and the command palette. All business logic is delegated to port
// interfaces; all rendering is delegated to sub-views.
type Model struct {
	dataPath string

	// ports used at this orchestration level only
	readings readingsPort
	detect   detectPort
	session  sessionPort

	// sub-views (one per tab)
	uploadsView uploadsview.Model
	metricsView metricsview.Model
	pluginView  pluginsview.Model

	// global UI state
	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(
	dataPath string,
	readings readingsPort,
	detect detectPort,
	metrics metricsPort,
	session sessionPort,
	plugin pluginPort,
) Model {
	var metricsV metricsview.Model
	if metrics != nil {
		metricsV = metricsview.New(metricsPortBridge{p: metrics})
	} else {
		metricsV = metricsview.New(nil)
	}

	var pluginV pluginsview.Model
	if plugin != nil {
		pluginV = pluginsview.New(pluginPortBridge{p: plugin}, dataPath)
	} else {
		pluginV = pluginsview.New(nil, dataPath)
	}

	return Model{
		dataPath:    dataPath,
		readings:    readings,
		detect:      detect,
		session:     session,
		uploadsView: uploadsview.New(readingsPortBridge{p: readings}),
		metricsView: metricsV,
		pluginView:  pluginV,
		activeTab:   tabUploads,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.uploadsView.Init(),
		m.pluginView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case analysisDoneMsg:
		if msg.err != nil {
			m.status = "analysis failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("analysis: %d/%d points flagged across %d detectors",
				msg.out.Flagged, msg.out.Points, len(msg.out.Detectors))
		}

	case sessionsDoneMsg:
		if msg.err != nil {
			m.status = "sessions failed: " + msg.err.Error()
		} else {
			early := 0
			for _, s := range msg.sessions {
				if s.EndedEarly {
					early++
				}
			}
			m.status = fmt.Sprintf("sessions: %d found, %d ended early", len(msg.sessions), early)
		}

	case reindexDoneMsg:
		if msg.err != nil {
			m.status = "reindex failed: " + msg.err.Error()
		} else {
			m.status = "reindex completed"
		}
		cmds = append(cmds, m.uploadsView.Reload())

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	// DetailLoadedMsg is produced by the uploads view but bubbles up through
	// the top level so the plugin execution context tracks the selection.
	case uploadsview.DetailLoadedMsg:
		if msg.Err == nil {
			m.pluginView.SetContext(msg.Detail.ID)
		}

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		case "a":
			if m.activeTab == tabUploads {
				if id, ok := m.uploadsView.SelectedUploadID(); ok {
					m.status = "analyzing " + m.uploadsView.SelectedUploadTitle()
					cmds = append(cmds, m.analyzeCmd(id, false))
				}
			}
		case "m":
			if m.activeTab == tabUploads {
				if id, ok := m.uploadsView.SelectedUploadID(); ok {
					m.activeTab = tabMetrics
					cmds = append(cmds, m.metricsView.ComputeFor(id, false))
				}
			}
		case "s":
			if m.activeTab == tabUploads {
				if id, ok := m.uploadsView.SelectedUploadID(); ok {
					cmds = append(cmds, m.sessionsCmd(id))
				}
			}
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabUploads:
		m.uploadsView, tabCmd = m.uploadsView.Update(msg)
	case tabMetrics:
		m.metricsView, tabCmd = m.metricsView.Update(msg)
	case tabPlugins:
		m.pluginView, tabCmd = m.pluginView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabUploads:
		return m.uploadsView.View()
	case tabMetrics:
		return m.metricsView.View()
	case tabPlugins:
		return m.pluginView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "cgmlens  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	selected, _ := m.uploadsView.SelectedUploadID()

	switch parts[0] {
	case "analyze", "analyze:plugins":
		if selected == "" {
			m.status = "no upload selected"
			return m, nil
		}
		m.status = "analyzing " + m.uploadsView.SelectedUploadTitle()
		return m, m.analyzeCmd(selected, parts[0] == "analyze:plugins")

	case "metrics:compute", "metrics:compute-masked":
		if selected == "" {
			m.status = "no upload selected"
			return m, nil
		}
		m.activeTab = tabMetrics
		return m, m.metricsView.ComputeFor(selected, parts[0] == "metrics:compute-masked")

	case "sessions:evaluate":
		if selected == "" {
			m.status = "no upload selected"
			return m, nil
		}
		return m, m.sessionsCmd(selected)

	case "plugin:exec":
		if len(parts) < 3 {
			m.status = "usage: plugin:exec <plugin> <command> [json]"
			return m, nil
		}
		prefix := parts[0] + " " + parts[1] + " " + parts[2]
		inputJSON := strings.TrimSpace(strings.TrimPrefix(input, prefix))
		m.activeTab = tabPlugins
		return m, m.pluginView.ExecCommand(parts[1], parts[2], inputJSON)

	case "plugin:commands":
		m.activeTab = tabPlugins
		m.status = "switched to Plugins tab"
		return m, nil

	case "reindex":
		m.status = "reindexing"
		return m, m.reindexCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabUploads:
		return m.uploadsView.Filtering()
	case tabPlugins:
		return m.pluginView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.uploadsView, _ = m.uploadsView.Update(sz)
	m.metricsView, _ = m.metricsView.Update(sz)
	m.pluginView, _ = m.pluginView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) analyzeCmd(uploadID string, withPlugins bool) tea.Cmd {
	return func() tea.Msg {
		out, err := m.detect.Analyze(context.Background(), uploadID, withPlugins)
		return analysisDoneMsg{out: out, err: err}
	}
}

func (m Model) sessionsCmd(uploadID string) tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.session.Evaluate(context.Background(), uploadID)
		return sessionsDoneMsg{sessions: sessions, err: err}
	}
}

func (m Model) reindexCmd() tea.Cmd {
	return func() tea.Msg {
		return reindexDoneMsg{err: m.readings.Reindex(context.Background())}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view, keeping view packages free of knowledge about the wider
// port surface.

type readingsPortBridge struct{ p readingsPort }

func (b readingsPortBridge) ListUploads(ctx context.Context) ([]readingsdto.UploadOutput, error) {
	return b.p.ListUploads(ctx)
}
func (b readingsPortBridge) GetUpload(ctx context.Context, id string) (readingsdto.UploadOutput, error) {
	return b.p.GetUpload(ctx, id)
}

type metricsPortBridge struct{ p metricsPort }

func (b metricsPortBridge) Compute(ctx context.Context, uploadID string, applyMask bool, low, high float64) (metricsdto.ReportOutput, error) {
	return b.p.Compute(ctx, uploadID, applyMask, low, high)
}

type pluginPortBridge struct{ p pluginPort }

func (b pluginPortBridge) ListCommands(ctx context.Context, name string) ([]plugindto.CommandInfo, error) {
	return b.p.ListCommands(ctx, name)
}
func (b pluginPortBridge) Execute(ctx context.Context, input plugindto.ExecuteInput) (plugindto.ExecuteOutput, error) {
	return b.p.Execute(ctx, input)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
