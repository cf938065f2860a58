package ui

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upsend/internal/db"
	"upsend/internal/model"
)

func testOptions() Options {
	return Options{
		Locale:           "en",
		SenderEmail:      "team@upgrad.com",
		ToastDuration:    5 * time.Second,
		AlertTimeout:     5 * time.Second,
		SearchDebounce:   150 * time.Millisecond,
		ProgressDuration: 600 * time.Millisecond,
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "upsend.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func sampleCampaigns() []model.Campaign {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return []model.Campaign{
		{ID: 2, Ref: "b", Subject: "Results out", Mode: "bulk", Total: 4, Sent: 4, Status: model.StatusCompleted, CreatedAt: created},
		{ID: 1, Ref: "a", Subject: "Welcome batch", Mode: "personalized", Total: 10, Sent: 8, Failed: 2, Status: model.StatusCompleted, CreatedAt: created},
	}
}

func loadedModel(t *testing.T, database *sql.DB) Model {
	t.Helper()
	m := New(database, nil, testOptions())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = update(t, m, model.CampaignsLoadedMsg{Campaigns: sampleCampaigns()})
	return m
}

func TestModel_RendersCampaigns(t *testing.T) {
	m := loadedModel(t, nil)

	view := m.View()
	assert.Contains(t, view, "Welcome batch")
	assert.Contains(t, view, "Results out")
	assert.Contains(t, view, "80%")
	assert.Contains(t, view, "2/2 campaigns")
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := New(nil, nil, testOptions())
	assert.Empty(t, m.View())
}

func TestModel_SortShowsInfoBanner(t *testing.T) {
	m := loadedModel(t, nil)

	m, cmd := update(t, m, runes("2"))
	assert.NotNil(t, cmd)
	assert.Equal(t, "Sorted SUBJECT ascending", m.info.text)
	assert.Contains(t, m.View(), "SUBJECT ↑")

	sel, ok := m.campaigns.Selected()
	require.True(t, ok)
	assert.Equal(t, "Results out", sel.Subject)
}

func TestModel_SearchMode(t *testing.T) {
	m := loadedModel(t, nil)

	m, _ = update(t, m, runes("/"))
	require.Equal(t, model.ModeSearch, m.mode)

	m, cmd := update(t, m, runes("welcome"))
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.campaigns.view.Table().VisibleLen(), "filtered before any tick")

	// q is text while searching, not quit.
	m, _ = update(t, m, runes("q"))
	assert.Equal(t, model.ModeSearch, m.mode)
	assert.Zero(t, m.campaigns.view.Table().VisibleLen())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, 1, m.campaigns.view.Table().VisibleLen())

	// The settle tick only reports; it never changes what is shown.
	m, _ = update(t, m, DebounceMsg{ID: "search-campaigns", Seq: 3, Payload: "welcome"})
	assert.Equal(t, 1, m.campaigns.view.Table().VisibleLen())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, model.ModeNav, m.mode)
	assert.Equal(t, "welcome", m.campaigns.view.Table().State().Term)
}

func TestModel_SlashWithoutSearchBoxDoesNothing(t *testing.T) {
	m := loadedModel(t, nil)
	detail := model.CampaignDetail{Campaign: sampleCampaigns()[1]}
	m, _ = update(t, m, model.CampaignDetailLoadedMsg{Detail: detail})
	require.Equal(t, model.ScreenCampaignDetail, m.screen)

	m, cmd := update(t, m, runes("/"))
	assert.Nil(t, cmd)
	assert.Equal(t, model.ModeNav, m.mode)
}

func TestModel_NotSortableRaisesWarningToast(t *testing.T) {
	m := New(nil, nil, testOptions())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = update(t, m, model.LogsLoadedMsg{Logs: []model.LogRow{
		{EmailLog: model.EmailLog{ID: 1, RecipientEmail: "priya@example.com", Status: model.LogFailed, ErrorMessage: "timeout"}, CampaignSubject: "Welcome"},
	}})
	m.screen = model.ScreenLogs

	m, _ = update(t, m, runes("4"))
	assert.Equal(t, []string{"column ERROR is not sortable"}, m.toaster.Messages())
	assert.Empty(t, m.info.text)
}

func TestModel_TimestampColumnsNotSortable(t *testing.T) {
	m := loadedModel(t, nil)

	m, _ = update(t, m, runes("9"))
	assert.Equal(t, []string{"column CREATED is not sortable"}, m.toaster.Messages())
	assert.Equal(t, -1, m.campaigns.view.Table().State().SortColumn)

	m, _ = update(t, m, runes("1"))
	assert.Equal(t, "Sorted # ascending", m.info.text)
	sel, ok := m.campaigns.Selected()
	require.True(t, ok)
	assert.Equal(t, "Welcome batch", sel.Subject)
}

func TestModel_ToastAndAlertExpiry(t *testing.T) {
	m := loadedModel(t, nil)

	m, _ = update(t, m, ShowToastMsg{Message: "Copied to clipboard!", Kind: ToastSuccess})
	assert.Contains(t, m.View(), "Copied to clipboard!")
	m, _ = update(t, m, toastExpiredMsg{id: 1})
	assert.NotContains(t, m.View(), "Copied to clipboard!")

	m, _ = update(t, m, model.ErrorMsg{Err: assert.AnError})
	assert.Contains(t, m.View(), "Error: ")
	m, _ = update(t, m, alertExpiredMsg{kind: alertError, seq: 1})
	assert.Empty(t, m.err.text)
}

func TestModel_TabsAndHelp(t *testing.T) {
	m := loadedModel(t, nil)

	m, cmd := update(t, m, runes("L"))
	assert.Equal(t, model.ScreenLogs, m.screen)
	assert.NotNil(t, cmd)

	m, _ = update(t, m, runes("c"))
	assert.Equal(t, model.ScreenCampaigns, m.screen)

	m, _ = update(t, m, runes("?"))
	assert.True(t, m.showingHelp)
	assert.Contains(t, m.View(), "Campaign Form")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showingHelp)
}

func TestModel_FormOpenAndCancel(t *testing.T) {
	m := loadedModel(t, nil)

	m, _ = update(t, m, runes("a"))
	require.Equal(t, model.ScreenCampaignForm, m.screen)
	require.Equal(t, model.ModeInsert, m.mode)
	assert.Equal(t, "team@upgrad.com", m.form.Value(fieldSender))

	// Keys are text in the form.
	m, _ = update(t, m, runes("q"))
	assert.Equal(t, "q", m.form.Value(fieldSubject))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, model.ScreenCampaigns, m.screen)
	assert.Equal(t, model.ModeNav, m.mode)
	assert.Nil(t, m.form)
}

func TestModel_DeleteAndUndo(t *testing.T) {
	database := openTestDB(t)
	id, err := db.InsertCampaign(database, model.NewCampaign{Ref: "r1", Subject: "Welcome batch", Mode: "personalized", Total: 1, Status: model.StatusCompleted})
	require.NoError(t, err)
	_, err = db.InsertLog(database, model.NewEmailLog{CampaignID: id, RecipientEmail: "priya@example.com", Status: model.LogSent})
	require.NoError(t, err)

	m := New(database, nil, testOptions())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = update(t, m, m.Init()())
	require.NotNil(t, m.campaigns)

	m, cmd := update(t, m, runes("d"))
	require.NotNil(t, cmd)
	msg := cmd()
	deleted, ok := msg.(model.DeleteCampaignMsg)
	require.True(t, ok, "got %#v", msg)
	assert.Len(t, deleted.Logs, 1)

	m, _ = update(t, m, deleted)
	assert.Len(t, m.undoStack, 1)
	assert.Equal(t, "Campaign deleted (u to undo)", m.info.text)

	campaigns, err := db.ListCampaigns(database)
	require.NoError(t, err)
	assert.Empty(t, campaigns)

	m, cmd = update(t, m, runes("u"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Len(t, m.redoStack, 1)
	assert.Contains(t, m.info.text, "Undid")

	restored, err := db.GetCampaignDetail(database, id)
	require.NoError(t, err)
	assert.Equal(t, "Welcome batch", restored.Campaign.Subject)
	assert.Len(t, restored.Logs, 1)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Len(t, m.undoStack, 1)
	_, err = db.GetCampaign(database, id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestModel_FailedUndoKeepsAction(t *testing.T) {
	m := loadedModel(t, nil)
	broken := errors.New("database is locked")
	calls := 0
	m.undoStack = []undoAction{{
		label: `campaign "Welcome batch" deleted`,
		undo: func() error {
			calls++
			return broken
		},
		redo: func() error { return broken },
	}}

	m, cmd := update(t, m, runes("u"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Len(t, m.undoStack, 1)
	assert.Empty(t, m.redoStack)
	assert.Contains(t, m.err.text, "undo failed: database is locked")

	// Still there, so u tries again.
	m, cmd = update(t, m, runes("u"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, 2, calls)
	assert.Len(t, m.undoStack, 1)

	m.redoStack, m.undoStack = m.undoStack, nil
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Len(t, m.redoStack, 1)
	assert.Empty(t, m.undoStack)
}

func TestModel_UndoWithEmptyStack(t *testing.T) {
	m := loadedModel(t, nil)
	m, _ = update(t, m, runes("u"))
	assert.Equal(t, "Nothing to undo", m.info.text)
}

func TestModel_ProgressRoutedToDetailBar(t *testing.T) {
	m := loadedModel(t, nil)
	detail := model.CampaignDetail{Campaign: sampleCampaigns()[1]}
	m, cmd := update(t, m, model.CampaignDetailLoadedMsg{Detail: detail})
	require.NotNil(t, cmd)

	m, _ = update(t, m, AnimateProgressMsg{ID: successBarID, From: 0, Target: 0.8})
	m, _ = update(t, m, progressFrameMsg{id: successBarID, gen: 1, now: time.Now()})
	assert.Equal(t, 0.8, m.detail.bar.Value())
}
