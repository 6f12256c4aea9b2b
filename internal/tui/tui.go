// Package tui is the interactive terminal front end: the analysis dashboard
// and the indexed search browser.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
	"github.com/Zuo-Peng/chatlens/internal/chart"
	"github.com/Zuo-Peng/chatlens/internal/config"
	"github.com/Zuo-Peng/chatlens/internal/filter"
	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/report"
	"github.com/Zuo-Peng/chatlens/internal/search"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const debounceDelay = 200 * time.Millisecond

type tuiMode int

const (
	modeDashboard tuiMode = iota
	modeSearch
)

// message types

type searchResultMsg struct {
	query   string
	results []search.Result
	err     error
}

type debounceTickMsg struct {
	query string
}

// DashboardOptions configures RunDashboard.
type DashboardOptions struct {
	Analyzer   *analyze.Analyzer
	Charts     *chart.Renderer
	Report     report.Options
	ReportPath string // "" = config.DefaultReportName
}

// model

type model struct {
	mode tuiMode

	// dashboard
	title     string
	msgs      []parse.Message
	users     []item
	dash      DashboardOptions
	summaries map[string]*analyze.Summary

	// search
	db         *index.DB
	searchOpts search.Options
	selected   *item

	query       string
	items       []item
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewKey  string // avoids duplicate renders
	status      string
	statusErr   bool
	width       int
	height      int
	ready       bool
	quitting    bool
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.SetValue(value)
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256
	return ti
}

func dashboardModel(title string, msgs []parse.Message, opts DashboardOptions) model {
	if opts.Analyzer == nil {
		opts.Analyzer = analyze.New(analyze.Options{})
	}
	if opts.ReportPath == "" {
		opts.ReportPath = config.DefaultReportName
	}

	counts := make(map[string]int)
	for _, m := range msgs {
		counts[m.User]++
	}
	var users []item
	for _, u := range filter.UserOptions(msgs) {
		n := counts[u]
		if u == parse.Overall {
			n = len(msgs)
		}
		users = append(users, userItem(u, n))
	}

	m := model{
		mode:        modeDashboard,
		title:       title,
		msgs:        msgs,
		users:       users,
		dash:        opts,
		summaries:   make(map[string]*analyze.Summary),
		filterInput: newInput("Filter users...", ""),
		preview:     viewport.New(0, 0),
	}
	m.items = filterUsers(users, "")
	return m
}

func searchModel(db *index.DB, opts search.Options) model {
	return model{
		mode:        modeSearch,
		db:          db,
		searchOpts:  opts,
		query:       opts.Query,
		filterInput: newInput("Search...", opts.Query),
		preview:     viewport.New(0, 0),
	}
}

// RunDashboard shows the analysis of msgs with a user picker. It blocks
// until the user quits.
func RunDashboard(title string, msgs []parse.Message, opts DashboardOptions) error {
	if len(msgs) == 0 {
		return analyze.ErrEmpty
	}
	p := tea.NewProgram(dashboardModel(title, msgs, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// RunSearch starts the search browser. If the user selects a hit, the
// command that opens it is copied to the clipboard.
func RunSearch(db *index.DB, opts search.Options) error {
	p := tea.NewProgram(searchModel(db, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	if fm.selected != nil {
		return copyOpenCommand(*fm.selected)
	}
	return nil
}

// copyOpenCommand puts the open command for a hit on the clipboard, or
// prints it when no clipboard is available.
func copyOpenCommand(it item) error {
	cmd := fmt.Sprintf("chatlens open %s --hit %d", it.key, it.seq)
	if err := clipboard.WriteAll(cmd); err != nil {
		fmt.Printf("%s\n", cmd)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", cmd)
	return nil
}

// filterUsers keeps users whose name contains query, case-insensitively.
// The all-users entry always stays on top.
func filterUsers(users []item, query string) []item {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []item
	for _, u := range users {
		if q == "" || u.key == parse.Overall || strings.Contains(strings.ToLower(u.key), q) {
			out = append(out, u)
		}
	}
	return out
}

// Init triggers the initial load.
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.mode == modeSearch && m.query != "" {
		cmds = append(cmds, m.doSearch(m.query))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		// Widths changed, so cached renders are stale.
		m.previewKey = ""
		if len(m.items) > 0 && m.cursor < len(m.items) {
			cmds = append(cmds, m.loadCurrentPreview())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			if m.mode == modeSearch && len(m.items) > 0 && m.cursor < len(m.items) {
				it := m.items[m.cursor]
				m.selected = &it
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, keys.Copy):
			if s := m.currentSummary(); s != nil {
				if err := clipboard.WriteAll(strings.Join(s.Insights.Lines(), "\n")); err != nil {
					m.setStatus("clipboard: "+err.Error(), true)
				} else {
					m.setStatus("Insights copied to clipboard", false)
				}
			}
			return m, nil

		case key.Matches(msg, keys.Report):
			if s := m.currentSummary(); s != nil && m.dash.Charts != nil {
				m.setStatus("Writing "+m.dash.ReportPath+"...", false)
				return m, writeReportCmd(m.dash.Charts, m.dash.Report, s, m.dash.ReportPath)
			}
			return m, nil

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}

		// Pass remaining keys to text input
		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		newQuery := m.filterInput.Value()
		if newQuery != m.query {
			m.query = newQuery
			if m.mode == modeDashboard {
				m.items = filterUsers(m.users, newQuery)
				m.cursor = 0
				m.listOffset = 0
				cmds = append(cmds, m.loadCurrentPreview())
			} else {
				cmds = append(cmds, m.scheduleDebouncedSearch(newQuery))
			}
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if !m.ready || len(m.items) == 0 {
			return m, nil
		}

		region, itemIdx := m.hitTest(msg.X, msg.Y)

		switch {
		case region == regionList && msg.Button == tea.MouseButtonWheelUp:
			if m.listOffset > 0 {
				m.listOffset--
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonWheelDown:
			visibleItems := m.panelHeight() / linesPerItem
			maxOffset := len(m.items) - visibleItems
			if maxOffset < 0 {
				maxOffset = 0
			}
			if m.listOffset < maxOffset {
				m.listOffset++
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if itemIdx >= 0 && itemIdx < len(m.items) && m.cursor != itemIdx {
				m.cursor = itemIdx
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case region == regionPreview && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
			var vpCmd tea.Cmd
			m.preview, vpCmd = m.preview.Update(msg)
			if vpCmd != nil {
				cmds = append(cmds, vpCmd)
			}
			return m, tea.Batch(cmds...)
		}

		return m, nil

	case debounceTickMsg:
		// Only fire search if query hasn't changed since debounce was scheduled
		if msg.query == m.query {
			cmds = append(cmds, m.doSearch(msg.query))
		}
		return m, tea.Batch(cmds...)

	case searchResultMsg:
		if msg.query != m.query {
			return m, nil
		}
		if msg.err != nil {
			m.items = nil
			m.cursor = 0
			m.listOffset = 0
			m.preview.SetContent("Error: " + msg.err.Error())
			m.previewKey = ""
			return m, nil
		}
		items := make([]item, 0, len(msg.results))
		for _, r := range msg.results {
			items = append(items, resultItem(r))
		}
		m.items = items
		m.cursor = 0
		m.listOffset = 0
		if len(m.items) > 0 {
			cmds = append(cmds, m.loadCurrentPreview())
		} else {
			m.preview.SetContent("")
			m.previewKey = ""
		}
		return m, tea.Batch(cmds...)

	case previewRenderedMsg:
		if msg.key == m.previewKey {
			return m, nil
		}
		if len(m.items) > 0 && m.cursor < len(m.items) && msg.key != previewCacheKey(m.items[m.cursor]) {
			return m, nil // stale preview
		}
		if msg.summary != nil {
			m.summaries[msg.key] = msg.summary
		}
		switch {
		case errors.Is(msg.err, analyze.ErrEmpty):
			m.preview.SetContent("No messages for " + msg.key + " in this range.")
		case msg.err != nil:
			m.preview.SetContent("Preview error: " + msg.err.Error())
		default:
			m.preview.SetContent(msg.content)
			if msg.hitLine > 0 {
				m.preview.SetYOffset(msg.hitLine)
			} else {
				m.preview.GotoTop()
			}
		}
		m.previewKey = msg.key
		return m, nil

	case reportWrittenMsg:
		if msg.err != nil {
			m.setStatus("report: "+msg.err.Error(), true)
		} else {
			m.setStatus("Report written to "+msg.path, false)
		}
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	inputRow := m.filterInput.View()
	if m.title != "" {
		inputRow = lipgloss.JoinHorizontal(lipgloss.Top,
			styleStatusBar.Render(m.title), inputRow)
	}

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, m.statusBar())
}

// helper methods

func (m *model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// currentSummary is the dashboard summary shown for the selected user, if
// it has been computed.
func (m model) currentSummary() *analyze.Summary {
	if m.mode != modeDashboard || len(m.items) == 0 || m.cursor >= len(m.items) {
		return nil
	}
	return m.summaries[m.items[m.cursor].key]
}

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	// the dashboard list only holds names
	pct := 40
	if m.mode == modeDashboard {
		pct = 25
	}
	w := m.width*pct/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := m.width - m.listWidth() - 8
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract input row (1) + status bar (1) + borders (4)
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	pH := m.panelHeight()
	contentYStart := 2 // input row (1) + top border (1)
	contentYEnd := contentYStart + pH - 1

	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	listBoxRight := lw + 1 // col 0=border, 1..lw=content, lw+1=border

	if x >= 1 && x <= lw {
		return regionList, m.listOffset + (relY / linesPerItem)
	}

	if x > listBoxRight+1 {
		return regionPreview, -1
	}

	return regionNone, -1
}

func (m model) statusBar() string {
	if m.status != "" {
		if m.statusErr {
			return styleStatusError.Render(m.status)
		}
		return styleStatusBar.Render(m.status)
	}
	var parts []string
	if m.mode == modeDashboard {
		parts = append(parts, fmt.Sprintf("%d users", len(m.items)-1))
		parts = append(parts, "up/dn user")
		parts = append(parts, "scroll/C-u/C-d analysis")
		parts = append(parts, "C-y copy insights")
		parts = append(parts, "C-r PDF report")
	} else {
		parts = append(parts, fmt.Sprintf("%d results", len(m.items)))
		parts = append(parts, "click/up/dn navigate")
		parts = append(parts, "scroll/C-u/C-d preview")
		parts = append(parts, "Enter copy open cmd")
	}
	parts = append(parts, "Esc quit")
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) doSearch(query string) tea.Cmd {
	db := m.db
	opts := m.searchOpts
	opts.Query = query
	return func() tea.Msg {
		if strings.TrimSpace(query) == "" {
			return searchResultMsg{query: query}
		}
		results, err := search.Search(db, opts)
		return searchResultMsg{query: query, results: results, err: err}
	}
}

func (m model) scheduleDebouncedSearch(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) loadCurrentPreview() tea.Cmd {
	if len(m.items) == 0 || m.cursor >= len(m.items) {
		return nil
	}
	it := m.items[m.cursor]
	if previewCacheKey(it) == m.previewKey {
		return nil // already showing this preview
	}
	if m.mode == modeDashboard {
		return loadSummaryCmd(m.dash.Analyzer, m.msgs, it.key, m.previewWidth())
	}
	return loadConversationCmd(m.db, it, m.query, m.previewWidth())
}
