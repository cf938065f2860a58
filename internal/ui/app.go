package ui

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"upsend/internal/db"
	"upsend/internal/logging"
	"upsend/internal/model"
)

// Model is the root Bubble Tea model.
type Model struct {
	db     *sql.DB
	logger *log.Logger
	opts   Options
	screen model.Screen
	mode   model.Mode
	gState GState

	width  int
	height int

	info        alert
	err         alert
	showingHelp bool

	// Screen models
	campaigns *CampaignsModel
	logs      *LogsModel
	detail    *CampaignDetailModel
	preview   *PreviewModel
	form      *CampaignFormModel
	toaster   *Toaster

	keys      KeyMap
	undoStack []undoAction
	redoStack []undoAction
}

// New creates a new root model. A nil logger discards everything.
func New(database *sql.DB, logger *log.Logger, opts Options) Model {
	if logger == nil {
		logger = logging.Discard()
	}
	return Model{
		db:      database,
		logger:  logger,
		opts:    opts,
		screen:  model.ScreenCampaigns,
		mode:    model.ModeNav,
		gState:  GStateIdle,
		info:    alert{kind: alertInfo},
		err:     alert{kind: alertError},
		toaster: NewToaster(opts.ToastDuration),
		keys:    DefaultKeyMap(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return loadCampaignsCmd(m.db)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.toaster.Update(msg); ok {
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.mode == model.ModeSearch {
			return m.handleSearchMode(msg)
		}

		if key.Matches(msg, m.keys.Help) && m.mode == model.ModeNav {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" || msg.String() == "?" {
				m.showingHelp = false
			}
			return m, nil
		}

		if m.mode == model.ModeNav {
			return m.handleNavMode(msg)
		}
		return m.handleInsertMode(msg)

	case DebounceMsg:
		for _, t := range m.tables() {
			if term, ok := t.SettledSearch(msg); ok {
				m.logger.Debug("search settled", "box", msg.ID, "term", term, "matches", t.Table().VisibleLen())
				break
			}
		}
		return m, nil

	case alertExpiredMsg:
		m.info.expire(msg)
		m.err.expire(msg)
		return m, nil

	case AnimateProgressMsg, progressFrameMsg:
		var cmds []tea.Cmd
		if m.detail != nil {
			cmds = append(cmds, m.detail.bar.Update(msg))
		}
		if m.preview != nil {
			cmds = append(cmds, m.preview.bar.Update(msg))
		}
		return m, tea.Batch(cmds...)

	case model.ErrorMsg:
		m.logger.Error("command failed", "screen", m.screen, "err", msg.Err)
		return m, m.setError(msg.Err.Error())

	case model.CampaignsLoadedMsg:
		m.campaigns = NewCampaignsModel(msg.Campaigns, m.opts)
		m.logger.Debug("campaigns loaded", "count", len(msg.Campaigns))
		return m, nil

	case model.LogsLoadedMsg:
		m.logs = NewLogsModel(msg.Logs, m.opts)
		m.logger.Debug("logs loaded", "count", len(msg.Logs))
		return m, nil

	case model.CampaignDetailLoadedMsg:
		detail, cmd := NewCampaignDetailModel(msg.Detail, m.opts)
		m.detail = detail
		m.screen = model.ScreenCampaignDetail
		return m, tea.Batch(cmd, m.setError(""))

	case model.CampaignSavedMsg:
		m.pushUndoAction(m.buildDraftSavedAction(msg))
		m.logger.Info("draft saved", "id", msg.Campaign.ID, "ref", msg.Campaign.Ref, "recipients", msg.Campaign.Total)
		preview, cmd := NewPreviewModel(msg.Campaign, msg.Batch, msg.Preview, m.opts)
		m.preview = preview
		m.form = nil
		m.mode = model.ModeNav
		m.screen = model.ScreenPreview
		return m, tea.Batch(
			cmd,
			m.setError(""),
			m.toaster.Push("Draft saved", ToastSuccess),
			loadCampaignsCmd(m.db),
		)

	case model.FormCancelledMsg:
		m.mode = model.ModeNav
		m.form = nil
		m.screen = model.ScreenCampaigns
		return m, nil

	case model.DeleteCampaignMsg:
		m.pushUndoAction(m.buildDeleteCampaignAction(msg))
		m.logger.Info("campaign deleted", "id", msg.ID, "logs", len(msg.Logs))
		m.screen = model.ScreenCampaigns
		m.detail = nil
		return m, tea.Batch(m.setInfo("Campaign deleted (u to undo)"), m.reloadCmd())

	case undoAppliedMsg:
		return m, m.applyUndoResult(msg)

	default:
		if m.mode == model.ModeInsert {
			return m.handleInsertMode(msg)
		}
	}

	return m, nil
}

func (m *Model) setInfo(text string) tea.Cmd {
	return m.info.set(text, m.opts.AlertTimeout)
}

func (m *Model) setError(text string) tea.Cmd {
	return m.err.set(text, m.opts.AlertTimeout)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var content string
	var breadcrumbParts []string

	showTabs := m.screen == model.ScreenCampaigns || m.screen == model.ScreenLogs

	var banners []string
	if m.err.text != "" {
		banners = append(banners, ErrorStyle.Width(m.width).Render("Error: "+m.err.text))
	}
	if m.info.text != "" {
		banners = append(banners, SuccessStyle.Width(m.width).Render(m.info.text))
	}

	// Header: 2 lines, footer: 2 lines, tabs: 2 lines when shown.
	contentHeight := m.height - 4 - len(banners)
	if showTabs {
		contentHeight -= 2
	}

	switch m.screen {
	case model.ScreenCampaigns:
		breadcrumbParts = []string{"Campaigns"}
		if m.campaigns != nil {
			content = m.campaigns.View(m.width, contentHeight)
		}
	case model.ScreenLogs:
		breadcrumbParts = []string{"Delivery logs"}
		if m.logs != nil {
			content = m.logs.View(m.width, contentHeight)
		}
	case model.ScreenCampaignDetail:
		breadcrumbParts = []string{"Campaigns", "Detail"}
		if m.detail != nil {
			breadcrumbParts = []string{"Campaigns", m.detail.campaign.Subject}
			content = m.detail.View(m.width, contentHeight)
		}
	case model.ScreenCampaignForm:
		breadcrumbParts = []string{"Campaigns", "New"}
		if m.form != nil {
			content = m.form.View(m.width, contentHeight)
		}
	case model.ScreenPreview:
		breadcrumbParts = []string{"Campaigns", "Preview"}
		if m.preview != nil {
			content = m.preview.View(m.width, contentHeight)
		}
	}

	header := renderHeader(breadcrumbParts, m.width)
	footer := RenderHelp(m.screen, m.mode, m.width)

	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)
	content = overlayTopRight(content, m.toaster.View(), m.width)

	parts := []string{header}
	if showTabs {
		parts = append(parts, renderTabs(m.screen, m.width))
	}
	parts = append(parts, banners...)
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderTabs(screen model.Screen, width int) string {
	tabs := []struct {
		name   string
		screen model.Screen
	}{
		{"Campaigns", model.ScreenCampaigns},
		{"Delivery logs", model.ScreenLogs},
	}

	var tabStrings []string
	for _, tab := range tabs {
		tabStyle := lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

		if screen == tab.screen {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}
		tabStrings = append(tabStrings, tabStyle.Render(tab.name))
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...)
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		Render(tabBar)
}

func renderHeader(breadcrumbParts []string, width int) string {
	title := HeaderStyle.Render("upsend")
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

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// handleSearchMode routes keys to the focused search box.
func (m Model) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.currentTable()
	if t == nil {
		m.mode = model.ModeNav
		return m, nil
	}
	switch msg.String() {
	case "esc", "enter":
		t.BlurSearch()
		m.mode = model.ModeNav
		return m, nil
	}
	return m, t.UpdateSearch(msg)
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if t := m.currentTable(); t != nil {
		switch {
		case key.Matches(msg, m.keys.Sort):
			return m, m.sortResult(t.SortActiveColumn())
		case key.Matches(msg, m.keys.SortColumn):
			n, _ := strconv.Atoi(msg.String())
			return m, m.sortResult(t.SortColumn(n))
		case key.Matches(msg, m.keys.Search):
			if cmd, ok := t.FocusSearch(); ok {
				m.mode = model.ModeSearch
				return m, cmd
			}
			return m, nil
		}
		if cmd, ok := t.HandleKey(msg, m.keys, m.height/2); ok {
			m.gState = GStateIdle
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Undo):
		if len(m.undoStack) == 0 {
			return m, m.setInfo("Nothing to undo")
		}
		return m, m.undoCmd()
	case key.Matches(msg, m.keys.Redo):
		if len(m.redoStack) == 0 {
			return m, m.setInfo("Nothing to redo")
		}
		return m, m.redoCmd()
	}

	// Handle "gg" state machine
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

	switch m.screen {
	case model.ScreenCampaigns:
		return m.handleCampaignsNav(msg)
	case model.ScreenLogs:
		return m.handleLogsNav(msg)
	case model.ScreenCampaignDetail:
		return m.handleDetailNav(msg)
	case model.ScreenPreview:
		return m.handlePreviewNav(msg)
	}
	return m, nil
}

func (m *Model) sortResult(text string, err error) tea.Cmd {
	if err != nil {
		return m.toaster.Push(err.Error(), ToastWarning)
	}
	return m.setInfo(text)
}

func (m *Model) currentTable() tableController {
	if v := m.currentTableView(); v != nil {
		return v
	}
	return nil
}

func (m *Model) currentTableView() *TableView {
	switch m.screen {
	case model.ScreenCampaigns:
		if m.campaigns != nil {
			return m.campaigns.view
		}
	case model.ScreenLogs:
		if m.logs != nil {
			return m.logs.view
		}
	case model.ScreenCampaignDetail:
		if m.detail != nil {
			return m.detail.logs
		}
	case model.ScreenPreview:
		if m.preview != nil {
			return m.preview.recipients
		}
	}
	return nil
}

func (m *Model) tables() []*TableView {
	var out []*TableView
	if m.campaigns != nil {
		out = append(out, m.campaigns.view)
	}
	if m.logs != nil {
		out = append(out, m.logs.view)
	}
	if m.detail != nil {
		out = append(out, m.detail.logs)
	}
	if m.preview != nil {
		out = append(out, m.preview.recipients)
	}
	return out
}

// handleInsertMode handles form input.
func (m Model) handleInsertMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.screen == model.ScreenCampaignForm && m.form != nil {
		newForm, cmd := m.form.Update(msg)
		m.form = &newForm
		return m, cmd
	}
	return m, nil
}

func (m *Model) reloadCmd() tea.Cmd {
	cmds := []tea.Cmd{loadCampaignsCmd(m.db)}
	if m.logs != nil {
		cmds = append(cmds, loadLogsCmd(m.db))
	}
	return tea.Batch(cmds...)
}

func (m Model) handleCampaignsNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case msg.String() == "right" || key.Matches(msg, m.keys.Logs):
		m.screen = model.ScreenLogs
		if m.logs == nil {
			return m, loadLogsCmd(m.db)
		}
		return m, nil
	case key.Matches(msg, m.keys.NewCampaign):
		m.mode = model.ModeInsert
		m.screen = model.ScreenCampaignForm
		m.form = NewCampaignFormModel(m.db, m.opts.SenderEmail)
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.reloadCmd()
	}

	if m.campaigns == nil {
		return m, nil
	}
	c, ok := m.campaigns.Selected()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Select):
		return m, loadCampaignDetailCmd(m.db, c.ID)
	case key.Matches(msg, m.keys.Delete):
		return m, deleteCampaignCmd(m.db, c.ID)
	}
	return m, nil
}

func (m Model) handleLogsNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case msg.String() == "left" || key.Matches(msg, m.keys.Campaigns):
		m.screen = model.ScreenCampaigns
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, loadLogsCmd(m.db)
	}
	return m, nil
}

func (m Model) handleDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = model.ScreenCampaigns
		m.detail = nil
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if m.detail != nil {
			return m, deleteCampaignCmd(m.db, m.detail.campaign.ID)
		}
	}
	return m, nil
}

func (m Model) handlePreviewNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = model.ScreenCampaigns
		m.preview = nil
		return m, nil
	case key.Matches(msg, m.keys.Select):
		if m.preview != nil {
			return m, loadCampaignDetailCmd(m.db, m.preview.campaign.ID)
		}
	}
	return m, nil
}

// Commands

func loadCampaignsCmd(database *sql.DB) tea.Cmd {
	return func() tea.Msg {
		campaigns, err := db.ListCampaigns(database)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.CampaignsLoadedMsg{Campaigns: campaigns}
	}
}

func loadLogsCmd(database *sql.DB) tea.Cmd {
	return func() tea.Msg {
		logs, err := db.ListLogs(database, 0)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.LogsLoadedMsg{Logs: logs}
	}
}

func loadCampaignDetailCmd(database *sql.DB, id int64) tea.Cmd {
	return func() tea.Msg {
		detail, err := db.GetCampaignDetail(database, id)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load campaign: %w", err)}
		}
		return model.CampaignDetailLoadedMsg{Detail: detail}
	}
}

func deleteCampaignCmd(database *sql.DB, id int64) tea.Cmd {
	return func() tea.Msg {
		deleted, logs, err := db.DeleteCampaign(database, id)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to delete campaign: %w", err)}
		}
		return model.DeleteCampaignMsg{ID: id, Deleted: deleted, Logs: logs}
	}
}
