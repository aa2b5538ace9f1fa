package uploads

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	readingsdto "cgmlens/internal/modules/readings/dto"
	"cgmlens/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type UploadsPort interface {
	ListUploads(ctx context.Context) ([]readingsdto.UploadOutput, error)
	GetUpload(ctx context.Context, id string) (readingsdto.UploadOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type UploadsLoadedMsg struct {
	Uploads []readingsdto.UploadOutput
	Err     error
}

type DetailLoadedMsg struct {
	Detail readingsdto.UploadOutput
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type uploadItem struct {
	upload readingsdto.UploadOutput
}

func (i uploadItem) Title() string { return i.upload.Title }
func (i uploadItem) Description() string {
	return fmt.Sprintf("%s  %d readings", i.upload.DeviceID, i.upload.Readings)
}
func (i uploadItem) FilterValue() string { return i.upload.Title }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    UploadsPort
	list    list.Model
	detail  readingsdto.UploadOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port UploadsPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Uploads"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadUploadsCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case UploadsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Uploads — " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Uploads))
		for i, u := range msg.Uploads {
			items[i] = uploadItem{upload: u}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Uploads) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Uploads[0].ID))
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Detail
			m.preview.SetContent(m.renderDetail())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(uploadItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.upload.ID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading uploads…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// SelectedUploadID returns the current selection's upload ID, if any.
func (m Model) SelectedUploadID() (string, bool) {
	if item, ok := m.list.SelectedItem().(uploadItem); ok {
		return item.upload.ID, true
	}
	return "", false
}

// SelectedUploadTitle returns the current selection's title.
func (m Model) SelectedUploadTitle() string {
	if item, ok := m.list.SelectedItem().(uploadItem); ok {
		return item.upload.Title
	}
	return ""
}

// Filtering reports whether the list's search filter is currently active.
// The app model checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Reload refreshes the upload list, used after an import or reindex.
func (m *Model) Reload() tea.Cmd {
	return m.loadUploadsCmd()
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	d := m.detail
	if d.ID == "" {
		return theme.Muted.Render("Select an upload to see details")
	}
	gaps := d.Count - d.Readings
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.Title) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:       ") + d.ID + "\n")
	sb.WriteString(theme.Muted.Render("device:   ") + d.DeviceID + "\n")
	sb.WriteString(fmt.Sprintf("%s%d slots, %d readings, %d gaps\n",
		theme.Muted.Render("series:   "), d.Count, d.Readings, gaps))
	if !d.StartAt.IsZero() {
		sb.WriteString(theme.Muted.Render("range:    ") +
			d.StartAt.Format("2006-01-02 15:04") + " → " + d.EndAt.Format("2006-01-02 15:04") + "\n")
	}
	if d.NotePath != "" {
		sb.WriteString(theme.Muted.Render("note:     ") + d.NotePath + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("a: analyze  m: metrics  s: sessions"))
	return sb.String()
}

func (m Model) loadUploadsCmd() tea.Cmd {
	return func() tea.Msg {
		uploads, err := m.port.ListUploads(context.Background())
		return UploadsLoadedMsg{Uploads: uploads, Err: err}
	}
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.GetUpload(context.Background(), id)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}
