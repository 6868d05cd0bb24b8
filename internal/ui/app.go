package ui

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"finboard/internal/db"
	"finboard/internal/i18n"
	"finboard/internal/model"
	"finboard/internal/source"
	"finboard/internal/table"
)

const defaultCurrency = "EUR"

// Options configures the root model.
type Options struct {
	DB      *sql.DB
	Client  *source.Client
	Sources []string
	// Language overrides the stored language preference when set.
	Language string
	// DefaultLanguage is used when neither Language nor a stored
	// preference is present.
	DefaultLanguage string
	Currency        string
	PageSize        int
	PageIncrement   int
	ScrollThreshold int
	Logger          *slog.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	opts   Options
	logger *slog.Logger
	cat    *i18n.Catalog
	screen model.Screen
	mode   model.Mode
	gState GState

	width  int
	height int

	error       string
	info        string
	showingHelp bool
	columnJump  bool
	loading     bool

	filters table.FilterStore
	store   table.PersistenceStore

	dash       *dashboard
	detail     *DetailModel
	filterForm *FilterFormModel
	help       *helpScreen
	spinner    spinner.Model

	keys KeyMap
}

// New creates a new root model.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Currency == "" {
		opts.Currency = defaultCurrency
	}
	if opts.Client == nil {
		opts.Client = source.NewClient(0, "dev")
	}

	var store table.PersistenceStore = table.NewMemoryStore()
	if opts.DB != nil {
		store = db.NewSortStore(opts.DB)
	}

	cat := i18n.MustLoad(resolveLanguage(opts))
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		opts:    opts,
		logger:  opts.Logger,
		cat:     cat,
		screen:  model.ScreenTransactions,
		mode:    model.ModeNav,
		gState:  GStateIdle,
		loading: len(opts.Sources) > 0,
		filters: table.NewColumnFilters(),
		store:   store,
		help:    newHelpScreen(cat.T("help.body")),
		spinner: sp,
		keys:    DefaultKeyMap(),
	}
	m.dash = newDashboard(m.dashboardConfig(), cat)
	return m
}

// resolveLanguage picks the explicit language, then the stored preference,
// then the configured default.
func resolveLanguage(opts Options) string {
	if opts.Language != "" {
		return i18n.Normalize(opts.Language)
	}
	if opts.DB != nil {
		lang, ok, err := db.GetPreference(opts.DB, db.PrefLanguage)
		if err != nil {
			opts.Logger.Warn("failed to read language preference", "err", err)
		} else if ok {
			return i18n.Normalize(lang)
		}
	}
	return i18n.Normalize(opts.DefaultLanguage)
}

func (m Model) dashboardConfig() dashboardConfig {
	return dashboardConfig{
		conn:            m.opts.DB,
		logger:          m.logger,
		currency:        m.opts.Currency,
		pageSize:        m.opts.PageSize,
		pageIncrement:   m.opts.PageIncrement,
		scrollThreshold: m.opts.ScrollThreshold,
		filters:         m.filters,
		store:           m.store,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if !m.loading {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	return loadDataCmd(m.opts.DB, m.opts.Client, m.opts.Sources, m.logger)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.mode == model.ModeFilter {
			return m.handleFilterMode(msg)
		}

		if m.columnJump {
			return m.handleColumnJump(msg)
		}

		if key.Matches(msg, m.keys.Help) {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
				return m, nil
			}
			return m, m.help.Update(msg)
		}

		return m.handleNavMode(msg)

	case model.ErrorMsg:
		m.loading = false
		m.error = msg.Err.Error()
		return m, nil

	case model.DataLoadedMsg:
		m.loading = false
		m.error = ""
		m.dash.setData(msg.Data)
		m.info = m.cat.T("status.loaded", len(msg.Data.Rows))
		return m, nil

	case model.FilterClosedMsg:
		m.mode = model.ModeNav
		m.filterForm = nil
		switch {
		case msg.Cleared:
			m.info = m.cat.T("info.filter_cleared")
		case msg.Applied:
			m.info = m.cat.T("info.filter_applied")
		default:
			m.info = m.cat.T("info.filter_cancelled")
		}
		return m, nil

	case model.OpenDetailMsg:
		cols := m.dash.view(TableTransactions).Columns()
		m.detail = NewDetailModel(msg.Row, cols, m.cat, m.opts.Currency)
		m.screen = model.ScreenDetail
		return m, nil

	case model.LanguageChangedMsg:
		m.setLanguage(msg.Lang)
		return m, nil
	}

	if m.mode == model.ModeFilter && m.filterForm != nil {
		return m.handleFilterMode(msg)
	}
	return m, nil
}

// setLanguage rebuilds the tables with the new catalog. Filters, sort
// state and table preferences carry over.
func (m *Model) setLanguage(lang string) {
	m.cat = i18n.MustLoad(lang)
	data := m.dash.data
	m.dash.close()
	m.dash = newDashboard(m.dashboardConfig(), m.cat)
	m.dash.setData(data)
	m.help.SetBody(m.cat.T("help.body"))
	if m.detail != nil {
		m.detail = NewDetailModel(m.detail.row, m.dash.view(TableTransactions).Columns(), m.cat, m.opts.Currency)
	}
	m.info = m.cat.T("status.language", m.cat.Lang())
}

func (m Model) switchLanguageCmd() tea.Cmd {
	next := i18n.Next(m.cat.Lang())
	conn := m.opts.DB
	return func() tea.Msg {
		if conn != nil {
			if err := db.SetPreference(conn, db.PrefLanguage, next); err != nil {
				return model.ErrorMsg{Err: err}
			}
		}
		return model.LanguageChangedMsg{Lang: next}
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return m.help.View(m.width, m.height)
	}

	showTabs := m.screen != model.ScreenDetail
	breadcrumbParts := []string{m.tabLabel(m.screen)}
	if m.screen == model.ScreenDetail {
		breadcrumbParts = []string{m.tabLabel(model.ScreenTransactions), m.cat.T("detail.title")}
	}

	sections := []string{m.renderHeader(breadcrumbParts)}
	if showTabs {
		sections = append(sections, m.renderTabs(), m.dash.kpi.View(m.width))
	}
	if m.error != "" {
		sections = append(sections, ErrorStyle.Width(m.width).Render(m.cat.T("error.prefix", m.error)))
	}
	if m.dash.data.FromSnapshot() {
		at := m.dash.data.SnapshotAt.Local().Format("2006-01-02 15:04")
		sections = append(sections, WarningStyle.Width(m.width).Render(m.cat.T("status.snapshot", at)))
	}
	if m.info != "" {
		sections = append(sections, SuccessStyle.Width(m.width).Render(m.info))
	}
	if m.mode == model.ModeFilter && m.filterForm != nil {
		sections = append(sections, m.filterForm.View(m.width))
	}

	footer := RenderHelp(m.screen, m.mode, m.keys, DefaultFilterKeyMap(), m.width)

	used := lipgloss.Height(footer)
	for _, s := range sections {
		used += lipgloss.Height(s)
	}
	contentHeight := max(3, m.height-used)

	var content string
	if m.screen == model.ScreenDetail {
		if m.detail != nil {
			content = m.detail.View(m.width, contentHeight)
		}
	} else if v := m.currentView(); v != nil {
		content = v.View(m.width, contentHeight)
	}

	// Ensure content fills the available height to anchor footer at bottom
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Render(content)

	sections = append(sections, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) tabLabel(screen model.Screen) string {
	switch screen {
	case model.ScreenMonthly:
		return m.cat.T("tab.monthly")
	case model.ScreenCategories:
		return m.cat.T("tab.categories")
	}
	return m.cat.T("tab.transactions")
}

var tabScreens = []model.Screen{model.ScreenTransactions, model.ScreenMonthly, model.ScreenCategories}

func (m Model) renderTabs() string {
	var tabStrings []string
	for i, screen := range tabScreens {
		tabStyle := lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)
		if m.screen == screen {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}
		tabStrings = append(tabStrings, tabStyle.Render(fmt.Sprintf("%d %s", i+1, m.tabLabel(screen))))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...)

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 2).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		Render(tabBar)
}

func (m Model) renderHeader(breadcrumbParts []string) string {
	title := HeaderStyle.Render(m.cat.T("app.title"))

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	right := BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	if m.loading {
		right = m.spinner.View() + " " + BreadcrumbStyle.Render(m.cat.T("status.loading")) + "  "
	}

	padding := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	headerContent := left + strings.Repeat(" ", padding) + right
	return TitleStyle.Width(m.width).Render(headerContent)
}

func tableIDFor(screen model.Screen) string {
	switch screen {
	case model.ScreenMonthly:
		return TableMonthly
	case model.ScreenCategories:
		return TableCategories
	case model.ScreenTransactions:
		return TableTransactions
	}
	return ""
}

func (m Model) currentView() *TableView {
	id := tableIDFor(m.screen)
	if id == "" {
		return nil
	}
	return m.dash.view(id)
}

func (m Model) currentTable() tableController {
	if v := m.currentView(); v != nil {
		return v
	}
	return nil
}

func (m *Model) persistCurrentTablePrefs() {
	id := tableIDFor(m.screen)
	if id == "" {
		return
	}
	if err := m.dash.savePrefs(id); err != nil {
		m.logger.Error("failed to save table prefs", "table", id, "err", err)
		m.error = err.Error()
	}
}

func (m Model) handleColumnJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.columnJump = false
		m.info = ""
		return m, nil
	}
	n, err := strconv.Atoi(msg.String())
	if err != nil {
		return m, nil
	}
	t := m.currentTable()
	if t != nil && t.JumpToColumn(n) {
		m.columnJump = false
		m.info = m.cat.T("info.column_jumped", n)
		m.persistCurrentTablePrefs()
		return m, nil
	}
	m.info = m.cat.T("info.column_unavailable", n)
	return m, nil
}

func (m Model) handleFilterMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.filterForm == nil {
		m.mode = model.ModeNav
		return m, nil
	}
	form, cmd := m.filterForm.Update(msg)
	m.filterForm = &form
	return m, cmd
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "g" {
		if m.gState == GStateIdle {
			m.gState = GStateFirstG
			return m, nil
		}
		m.gState = GStateIdle
		if t := m.currentTable(); t != nil {
			t.JumpToTop()
		}
		return m, nil
	}
	m.gState = GStateIdle

	switch {
	case key.Matches(msg, m.keys.Refresh):
		if m.loading || len(m.opts.Sources) == 0 {
			return m, nil
		}
		m.loading = true
		m.info = ""
		return m, tea.Batch(m.spinner.Tick, m.loadCmd())
	case key.Matches(msg, m.keys.Language):
		return m, m.switchLanguageCmd()
	}

	if m.screen == model.ScreenDetail {
		return m.handleDetailNav(msg)
	}
	return m.handleTableNav(msg)
}

func (m Model) handleDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = model.ScreenTransactions
		m.detail = nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleTableNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab1):
		m.screen = model.ScreenTransactions
		return m, nil
	case key.Matches(msg, m.keys.Tab2):
		m.screen = model.ScreenMonthly
		return m, nil
	case key.Matches(msg, m.keys.Tab3):
		m.screen = model.ScreenCategories
		return m, nil
	case key.Matches(msg, m.keys.NextTable):
		m.screen = tabScreens[(int(m.screen)+1)%len(tabScreens)]
		return m, nil
	case key.Matches(msg, m.keys.PrevTable):
		m.screen = tabScreens[(int(m.screen)+len(tabScreens)-1)%len(tabScreens)]
		return m, nil
	}

	v := m.currentView()
	if v == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Select):
		if m.screen != model.ScreenTransactions {
			return m, nil
		}
		row, ok := v.SelectedRow()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return model.OpenDetailMsg{Row: row}
		}
	case key.Matches(msg, m.keys.Down):
		v.MoveDown()
	case key.Matches(msg, m.keys.Up):
		v.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		v.JumpToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		v.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		v.HalfPageUp()
	case key.Matches(msg, m.keys.NextColumn):
		v.NextColumn()
		m.persistCurrentTablePrefs()
	case key.Matches(msg, m.keys.PrevColumn):
		v.PrevColumn()
		m.persistCurrentTablePrefs()
	case key.Matches(msg, m.keys.ColumnJump):
		m.columnJump = true
		m.info = m.cat.T("info.column_jump")
	case key.Matches(msg, m.keys.Sort):
		m.info = m.sortActiveColumn(v)
	case key.Matches(msg, m.keys.HideColumn):
		if v.HideActiveColumn() {
			m.info = m.cat.T("info.column_hidden")
			m.persistCurrentTablePrefs()
		} else {
			m.info = m.cat.T("info.cannot_hide")
		}
	case key.Matches(msg, m.keys.ShowColumns):
		v.ShowAllColumns()
		m.info = m.cat.T("info.columns_shown")
		m.persistCurrentTablePrefs()
	case key.Matches(msg, m.keys.EditFilter):
		col := v.ActiveColumn()
		if !col.Searchable {
			m.info = m.cat.T("info.not_filterable", col.Label)
			return m, nil
		}
		form := NewFilterFormModel(v.Engine(), col, m.cat)
		m.filterForm = &form
		m.mode = model.ModeFilter
		m.info = ""
	case key.Matches(msg, m.keys.FilterValue):
		if v.FilterBySelectedValue() {
			m.info = m.cat.T("info.filter_applied")
		} else {
			m.info = m.cat.T("info.no_filter_value")
		}
	case key.Matches(msg, m.keys.ClearFilter):
		if v.ClearFilter() {
			m.info = m.cat.T("info.filter_cleared")
		}
	case key.Matches(msg, m.keys.ClearFilters):
		v.ClearAllFilters()
		m.info = m.cat.T("info.filters_cleared")
	}
	return m, nil
}

func (m Model) sortActiveColumn(v *TableView) string {
	col := v.ActiveColumn()
	if !col.Sortable {
		return m.cat.T("info.not_sortable", col.Label)
	}
	info, sorted := v.CycleSortActiveColumn()
	if !sorted {
		return m.cat.T("info.sort_cleared", col.Label)
	}
	return m.cat.T("info.sorted", col.Label, m.cat.T("dir."+string(info.Direction)))
}
