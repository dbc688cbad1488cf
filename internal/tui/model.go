package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/figures"
	"github.com/Mr-Dark-debug/slidefigs/internal/render"
)

// ────────────────────────────────────────────────────────────
// Pane focuses
// ────────────────────────────────────────────────────────────

// Pane represents which UI pane currently has keyboard focus.
type Pane int

const (
	PaneList Pane = iota
	PaneDetail
	PaneHistory
)

const paneCount = 3

// Runner renders figures. *render.Renderer satisfies it.
type Runner interface {
	Run(ctx context.Context, req render.Request) (*render.Summary, error)
}

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Model is the root BubbleTea model of the figure browser.
type Model struct {
	store    database.Store
	runner   Runner
	template render.Request
	now      func() time.Time

	// Data
	figures []figures.Figure
	latest  map[string]*database.Artifact
	history []*database.Artifact

	// UI state
	activePane    Pane
	selected      int // index into visible()
	historyScroll int
	width         int
	height        int
	filterMode    bool
	filter        string

	// Rendering
	spinner   spinner.Model
	rendering bool

	// Status
	statusMsg string
	err       error
}

// NewModel creates a browser over the store. Renders triggered from the
// browser use template for everything but the figure selection.
func NewModel(store database.Store, runner Runner, template render.Request) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		store:     store,
		runner:    runner,
		template:  template,
		now:       time.Now,
		figures:   figures.All(),
		latest:    make(map[string]*database.Artifact),
		spinner:   sp,
		statusMsg: "Loading render history...",
	}
}

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

type latestLoadedMsg []*database.Artifact
type historyLoadedMsg struct {
	figureID  string
	artifacts []*database.Artifact
}
type renderDoneMsg struct {
	summary *render.Summary
	err     error
}
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// ────────────────────────────────────────────────────────────
// Init
// ────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadLatest(), m.loadHistory())
}

func (m Model) loadLatest() tea.Cmd {
	return func() tea.Msg {
		arts, err := m.store.LatestArtifacts()
		if err != nil {
			return errMsg{err}
		}
		return latestLoadedMsg(arts)
	}
}

func (m Model) loadHistory() tea.Cmd {
	f, ok := m.current()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		arts, err := m.store.FigureHistory(f.ID, 50)
		if err != nil {
			return errMsg{err}
		}
		return historyLoadedMsg{figureID: f.ID, artifacts: arts}
	}
}

func (m Model) renderFigures(ids []string) tea.Cmd {
	req := m.template
	req.Figures = ids
	req.Env = figures.Env{Now: m.now()}
	return func() tea.Msg {
		sum, err := m.runner.Run(context.Background(), req)
		return renderDoneMsg{summary: sum, err: err}
	}
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.rendering {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case latestLoadedMsg:
		m.latest = make(map[string]*database.Artifact, len(msg))
		for _, a := range msg {
			m.latest[a.FigureID] = a
		}
		if !m.rendering && m.err == nil {
			m.statusMsg = fmt.Sprintf("%d figures  %d rendered", len(m.figures), len(m.latest))
		}
		return m, nil

	case historyLoadedMsg:
		if f, ok := m.current(); ok && f.ID == msg.figureID {
			m.history = msg.artifacts
			m.historyScroll = 0
		}
		return m, nil

	case renderDoneMsg:
		m.rendering = false
		m.statusMsg = renderStatus(msg.summary, msg.err)
		return m, tea.Batch(m.loadLatest(), m.loadHistory())

	case errMsg:
		m.err = msg.err
		m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		return m, nil
	}

	return m, nil
}

// renderStatus summarizes a finished render for the status bar.
func renderStatus(sum *render.Summary, err error) string {
	if sum == nil {
		return fmt.Sprintf("Render failed: %v", err)
	}
	ok := len(sum.Results) - sum.Failed
	took := sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond)
	switch {
	case errors.Is(err, render.ErrFiguresFailed):
		return fmt.Sprintf("Rendered %d, %d failed in %s", ok, sum.Failed, took)
	case err != nil:
		return fmt.Sprintf("Render failed: %v", err)
	case len(sum.Results) == 1:
		return fmt.Sprintf("Rendered %s in %s", sum.Results[0].File, took)
	default:
		return fmt.Sprintf("Rendered %d figures in %s", ok, took)
	}
}

// handleKey routes keyboard input based on current mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// ── Filter mode ──

	if m.filterMode {
		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			m.filterMode = false
		case "esc":
			m.filterMode = false
			m.filter = ""
		case "backspace":
			if r := []rune(m.filter); len(r) > 0 {
				m.filter = string(r[:len(r)-1])
			}
		default:
			if msg.Type == tea.KeyRunes {
				m.filter += string(msg.Runes)
			}
		}
		m.selected = clamp(m.selected, 0, maxInt(len(m.visible())-1, 0))
		return m, m.loadHistory()
	}

	// ── Global ──

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.activePane = (m.activePane + 1) % paneCount
		return m, nil

	case "shift+tab":
		m.activePane = (m.activePane + paneCount - 1) % paneCount
		return m, nil

	case "esc":
		if m.filter != "" {
			m.filter = ""
			return m, m.loadHistory()
		}
		m.activePane = PaneList
		return m, nil

	case "/":
		m.filterMode = true
		m.filter = ""
		m.activePane = PaneList
		return m, nil

	case "enter", "r":
		f, ok := m.current()
		if !ok || m.rendering {
			return m, nil
		}
		m.rendering = true
		m.statusMsg = fmt.Sprintf("Rendering %s...", f.File(m.template.Options.Format))
		return m, tea.Batch(m.spinner.Tick, m.renderFigures([]string{f.ID}))

	case "R":
		if m.rendering {
			return m, nil
		}
		m.rendering = true
		m.statusMsg = fmt.Sprintf("Rendering %d figures...", len(m.figures))
		return m, tea.Batch(m.spinner.Tick, m.renderFigures(nil))
	}

	// ── Pane-specific ──

	switch m.activePane {
	case PaneList, PaneDetail:
		switch key {
		case "j", "down":
			if m.selected < len(m.visible())-1 {
				m.selected++
				m.history = nil
				return m, m.loadHistory()
			}
		case "k", "up":
			if m.selected > 0 {
				m.selected--
				m.history = nil
				return m, m.loadHistory()
			}
		}

	case PaneHistory:
		switch key {
		case "j", "down":
			if m.historyScroll < len(m.history)-1 {
				m.historyScroll++
			}
		case "k", "up":
			if m.historyScroll > 0 {
				m.historyScroll--
			}
		}
	}

	return m, nil
}

// visible returns the figures matching the current filter.
func (m Model) visible() []figures.Figure {
	return filterFigures(m.figures, m.filter)
}

// current returns the selected figure, if any is visible.
func (m Model) current() (figures.Figure, bool) {
	vis := m.visible()
	if m.selected < 0 || m.selected >= len(vis) {
		return figures.Figure{}, false
	}
	return vis[m.selected], true
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := renderHeader(&m)
	footer := renderFooter(&m)
	body := m.renderMainLayout(m.height - 2) // header + footer

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderMainLayout places the list on the left and detail over history
// on the right.
func (m Model) renderMainLayout(totalHeight int) string {
	// Responsive: collapse to single pane on narrow terminals
	if m.width < 60 {
		return m.renderCompactLayout(totalHeight)
	}

	leftWidth := m.width * 45 / 100
	rightWidth := m.width - leftWidth
	topHeight := totalHeight * 55 / 100
	bottomHeight := totalHeight - topHeight

	list := renderListPanel(&m, leftWidth, totalHeight)
	detail := renderDetailPanel(&m, rightWidth, topHeight)
	history := renderHistoryPanel(&m, rightWidth, bottomHeight)

	right := lipgloss.JoinVertical(lipgloss.Left, detail, history)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, right)
}

// renderCompactLayout is used when the terminal is narrow (< 60 cols).
// Only the focused pane is shown.
func (m Model) renderCompactLayout(totalHeight int) string {
	switch m.activePane {
	case PaneDetail:
		return renderDetailPanel(&m, m.width, totalHeight)
	case PaneHistory:
		return renderHistoryPanel(&m, m.width, totalHeight)
	default:
		return renderListPanel(&m, m.width, totalHeight)
	}
}
