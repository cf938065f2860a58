package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"upsend/internal/campaign"
	"upsend/internal/model"
	"upsend/internal/table"
	"upsend/internal/util"
)

// Options carries the settings the UI reads from config.
type Options struct {
	Locale           string
	SenderEmail      string
	ToastDuration    time.Duration
	AlertTimeout     time.Duration
	SearchDebounce   time.Duration
	ProgressDuration time.Duration
}

func (o Options) tableOptions() []table.Option {
	if o.Locale == "" {
		return nil
	}
	return []table.Option{table.WithLocale(o.Locale)}
}

func rowID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// CampaignsModel is the campaign history screen.
type CampaignsModel struct {
	view *TableView
	byID map[string]model.Campaign
}

var campaignColumns = []table.Column{
	{Key: "id", Label: "#", Sortable: true},
	{Key: "subject", Label: "subject", Sortable: true},
	{Key: "mode", Label: "mode", Sortable: true},
	{Key: "total", Label: "recipients", Sortable: true},
	{Key: "sent", Label: "sent", Sortable: true},
	{Key: "failed", Label: "failed", Sortable: true},
	{Key: "rate", Label: "success", Sortable: true},
	{Key: "status", Label: "status", Sortable: true},
	// Timestamps compare by their leading year only, so they are not
	// offered for sorting; # orders campaigns by creation.
	{Key: "created", Label: "created"},
}

// NewCampaignsModel builds the history table. Sort and search state start fresh.
func NewCampaignsModel(campaigns []model.Campaign, opts Options) *CampaignsModel {
	rows := make([]table.Row, len(campaigns))
	byID := make(map[string]model.Campaign, len(campaigns))
	for i, c := range campaigns {
		id := rowID(c.ID)
		byID[id] = c
		rows[i] = table.Row{ID: id, Cells: []string{
			id,
			c.Subject,
			c.Mode,
			strconv.Itoa(c.Total),
			strconv.Itoa(c.Sent),
			strconv.Itoa(c.Failed),
			util.FormatPercent(campaign.SuccessRate(c.Sent, c.Total)),
			c.Status,
			util.FormatTimestamp(c.CreatedAt),
		}}
	}
	tbl := table.New("campaigns", campaignColumns, rows, opts.tableOptions()...)
	return &CampaignsModel{
		view: NewTableView(tbl,
			WithNoun("campaign"),
			WithEmptyText("No campaigns yet.\nPress  a  to prepare your first campaign, or run  upsend import campaigns <file.csv>."),
			WithSearch(opts.SearchDebounce),
		),
		byID: byID,
	}
}

// Selected returns the campaign under the cursor.
func (m *CampaignsModel) Selected() (model.Campaign, bool) {
	row, ok := m.view.Selected()
	if !ok {
		return model.Campaign{}, false
	}
	c, ok := m.byID[row.ID]
	return c, ok
}

func (m *CampaignsModel) View(width, height int) string {
	return m.view.View(width, height)
}

// LogsModel lists delivery logs across campaigns.
type LogsModel struct {
	view *TableView
}

var logColumns = []table.Column{
	{Key: "recipient", Label: "recipient", Sortable: true},
	{Key: "campaign", Label: "campaign", Sortable: true},
	{Key: "status", Label: "status", Sortable: true},
	{Key: "error", Label: "error"},
	{Key: "sent_at", Label: "sent at"},
}

// NewLogsModel builds the delivery log table.
func NewLogsModel(logs []model.LogRow, opts Options) *LogsModel {
	rows := make([]table.Row, len(logs))
	for i, l := range logs {
		rows[i] = table.Row{ID: rowID(l.ID), Cells: []string{
			l.RecipientEmail,
			l.CampaignSubject,
			l.Status,
			l.ErrorMessage,
			util.FormatTimestamp(l.SentAt),
		}}
	}
	tbl := table.New("logs", logColumns, rows, opts.tableOptions()...)
	return &LogsModel{
		view: NewTableView(tbl,
			WithNoun("log"),
			WithEmptyText("No delivery logs yet."),
			WithSearch(opts.SearchDebounce),
		),
	}
}

func (m *LogsModel) View(width, height int) string {
	return m.view.View(width, height)
}

const (
	successBarID = "campaign-success"
	validBarID   = "preview-valid"
)

// CampaignDetailModel shows one campaign and its per-recipient logs. Its log
// table has no search box.
type CampaignDetailModel struct {
	campaign model.Campaign
	logs     *TableView
	bar      *ProgressBar
}

var detailLogColumns = []table.Column{
	{Key: "recipient", Label: "recipient", Sortable: true},
	{Key: "status", Label: "status", Sortable: true},
	{Key: "error", Label: "error"},
	{Key: "sent_at", Label: "sent at"},
}

// NewCampaignDetailModel builds the detail screen and the command that
// animates its success bar.
func NewCampaignDetailModel(detail model.CampaignDetail, opts Options) (*CampaignDetailModel, tea.Cmd) {
	rows := make([]table.Row, len(detail.Logs))
	for i, l := range detail.Logs {
		rows[i] = table.Row{ID: rowID(l.ID), Cells: []string{
			l.RecipientEmail,
			l.Status,
			l.ErrorMessage,
			util.FormatTimestamp(l.SentAt),
		}}
	}
	tbl := table.New("campaign-logs-"+rowID(detail.Campaign.ID), detailLogColumns, rows, opts.tableOptions()...)
	m := &CampaignDetailModel{
		campaign: detail.Campaign,
		logs:     NewTableView(tbl, WithNoun("log"), WithEmptyText("No emails were sent for this campaign.")),
		bar:      NewProgressBar(successBarID),
	}
	rate := campaign.SuccessRate(detail.Campaign.Sent, detail.Campaign.Total) / 100
	return m, AnimateProgress(successBarID, 0, rate, opts.ProgressDuration)
}

func (m *CampaignDetailModel) View(width, height int) string {
	c := m.campaign
	fields := []string{
		detailLine("Subject", c.Subject),
		detailLine("Reference", c.Ref),
		detailLine("Sender", util.OrDash(c.Sender)),
		detailLine("Mode", c.Mode),
		detailLine("Status", statusStyle(c.Status).Render(c.Status)),
		detailLine("Template", util.OrDash(c.TemplateFile)),
		detailLine("Recipients", util.OrDash(c.CSVFile)),
		detailLine("Created", util.FormatTimestamp(c.CreatedAt)+"  "+HelpDescStyle.Render(util.FormatTimeHuman(c.CreatedAt, time.Now()))),
		detailLine("Completed", util.FormatOptionalTimestamp(c.CompletedAt)),
		detailLine("Delivered", fmt.Sprintf("%d sent, %d failed of %d", c.Sent, c.Failed, c.Total)),
		"",
		LabelStyle.Render("Success rate"),
		m.bar.View(min(width-8, 60)),
	}
	panel := PanelStyle.Width(width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, fields...))
	tableHeight := max(4, height-lipgloss.Height(panel))
	return lipgloss.JoinVertical(lipgloss.Left, panel, m.logs.View(width, tableHeight))
}

// PreviewModel shows a prepared draft: the message rendered for the first
// valid recipient and every recipient row with its problems.
type PreviewModel struct {
	campaign   model.Campaign
	preview    string
	valid      int
	total      int
	recipients *TableView
	bar        *ProgressBar
}

// NewPreviewModel builds the draft preview and the command animating its
// valid-recipient bar.
func NewPreviewModel(c model.Campaign, batch *campaign.Batch, preview string, opts Options) (*PreviewModel, tea.Cmd) {
	extra := make([]string, 0, len(batch.Headers))
	for _, h := range batch.Headers {
		if h != campaign.EmailColumn && !slices.Contains(extra, h) {
			extra = append(extra, h)
		}
	}

	cols := []table.Column{
		{Key: "line", Label: "line", Sortable: true},
		{Key: "email", Label: "email", Sortable: true},
	}
	for _, h := range extra {
		cols = append(cols, table.Column{Key: "field:" + h, Label: h, Sortable: true})
	}
	cols = append(cols,
		table.Column{Key: "state", Label: "state", Sortable: true},
		table.Column{Key: "issues", Label: "issues"},
	)

	var rows []table.Row
	add := func(r campaign.Recipient, state string) {
		cells := []string{strconv.Itoa(r.Line), r.Email()}
		for _, h := range extra {
			cells = append(cells, r.Fields[h])
		}
		cells = append(cells, state, strings.Join(r.Missing, ", "))
		rows = append(rows, table.Row{ID: strconv.Itoa(r.Line), Cells: cells})
	}
	for _, r := range batch.Valid {
		add(r, "valid")
	}
	for _, r := range batch.Invalid {
		add(r, "invalid")
	}

	tbl := table.New("recipients", cols, rows, opts.tableOptions()...)
	m := &PreviewModel{
		campaign: c,
		preview:  preview,
		valid:    len(batch.Valid),
		total:    batch.Total(),
		recipients: NewTableView(tbl,
			WithNoun("recipient"),
			WithSearch(opts.SearchDebounce),
		),
		bar: NewProgressBar(validBarID),
	}
	target := 0.0
	if m.total > 0 {
		target = float64(m.valid) / float64(m.total)
	}
	return m, AnimateProgress(validBarID, 0, target, opts.ProgressDuration)
}

func (m *PreviewModel) View(width, height int) string {
	summary := lipgloss.JoinVertical(lipgloss.Left,
		detailLine("Subject", m.campaign.Subject),
		detailLine("Sender", util.OrDash(m.campaign.Sender)),
		detailLine("Mode", m.campaign.Mode),
		detailLine("Reference", m.campaign.Ref),
		detailLine("Valid", fmt.Sprintf("%s of %d", util.FormatCount(m.valid, "recipient"), m.total)),
		m.bar.View(min(width-8, 60)),
	)
	previewBox := PanelStyle.Width(width - 4).Render(lipgloss.JoinVertical(lipgloss.Left,
		LabelStyle.Render("Preview"),
		m.preview,
	))
	top := lipgloss.JoinVertical(lipgloss.Left, PanelStyle.Width(width-4).Render(summary), previewBox)
	tableHeight := max(4, height-lipgloss.Height(top))
	return lipgloss.JoinVertical(lipgloss.Left, top, m.recipients.View(width, tableHeight))
}

func detailLine(label, value string) string {
	return LabelStyle.Width(12).Render(label) + " " + value
}
