package db

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upsend/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "upsend.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedCampaign(t *testing.T, db *sql.DB, subject string, created time.Time) int64 {
	t.Helper()
	id, err := InsertCampaign(db, model.NewCampaign{
		Ref:       "ref-" + subject,
		Subject:   subject,
		Mode:      "personalized",
		CSVFile:   "recipients.csv",
		Total:     3,
		Sent:      2,
		Failed:    1,
		Status:    model.StatusCompleted,
		CreatedAt: &created,
	})
	require.NoError(t, err)
	return id
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upsend.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestInsertAndGetCampaign(t *testing.T) {
	db := openTestDB(t)
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	id := seedCampaign(t, db, "Welcome", created)

	c, err := GetCampaign(db, id)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", c.Subject)
	assert.Equal(t, "personalized", c.Mode)
	assert.Equal(t, "recipients.csv", c.CSVFile)
	assert.Empty(t, c.TemplateFile)
	assert.Equal(t, 3, c.Total)
	assert.Equal(t, model.StatusCompleted, c.Status)
	assert.True(t, c.CreatedAt.Equal(created))
	assert.Nil(t, c.CompletedAt)
}

func TestInsertCampaign_DefaultsToDraft(t *testing.T) {
	db := openTestDB(t)

	id, err := InsertCampaign(db, model.NewCampaign{Ref: "r", Subject: "Draft", Mode: "bulk"})
	require.NoError(t, err)

	c, err := GetCampaign(db, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, c.Status)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestInsertCampaign_RejectsUnknownMode(t *testing.T) {
	db := openTestDB(t)
	_, err := InsertCampaign(db, model.NewCampaign{Ref: "r", Subject: "x", Mode: "blast"})
	assert.Error(t, err)
}

func TestListCampaigns_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedCampaign(t, db, "old", base)
	seedCampaign(t, db, "new", base.Add(48*time.Hour))
	seedCampaign(t, db, "mid", base.Add(24*time.Hour))

	list, err := ListCampaigns(db)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].Subject)
	assert.Equal(t, "mid", list[1].Subject)
	assert.Equal(t, "old", list[2].Subject)
}

func TestLogs(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()
	a := seedCampaign(t, db, "A", now)
	b := seedCampaign(t, db, "B", now)

	_, err := InsertLog(db, model.NewEmailLog{CampaignID: a, RecipientEmail: "x@example.com", Status: model.LogSent})
	require.NoError(t, err)
	_, err = InsertLog(db, model.NewEmailLog{CampaignID: a, RecipientEmail: "y@example.com", Status: model.LogFailed, ErrorMessage: "550 mailbox unavailable"})
	require.NoError(t, err)
	_, err = InsertLog(db, model.NewEmailLog{CampaignID: b, RecipientEmail: "z@example.com", Status: model.LogSent})
	require.NoError(t, err)

	all, err := ListLogs(db, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := ListLogs(db, a)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	for _, l := range onlyA {
		assert.Equal(t, "A", l.CampaignSubject)
	}

	detail, err := GetCampaignDetail(db, a)
	require.NoError(t, err)
	require.Len(t, detail.Logs, 2)
	assert.Equal(t, "x@example.com", detail.Logs[0].RecipientEmail)
	assert.Equal(t, "550 mailbox unavailable", detail.Logs[1].ErrorMessage)
}

func TestDeleteAndRestoreCampaign(t *testing.T) {
	db := openTestDB(t)
	id := seedCampaign(t, db, "Gone", time.Date(2024, 5, 5, 5, 5, 5, 0, time.UTC))
	_, err := InsertLog(db, model.NewEmailLog{CampaignID: id, RecipientEmail: "x@example.com", Status: model.LogSent})
	require.NoError(t, err)

	deleted, logs, err := DeleteCampaign(db, id)
	require.NoError(t, err)
	assert.Equal(t, "Gone", deleted.Subject)
	require.Len(t, logs, 1)

	_, err = GetCampaign(db, id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	remaining, err := ListLogs(db, 0)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	require.NoError(t, RestoreCampaign(db, deleted, logs))

	restored, err := GetCampaign(db, id)
	require.NoError(t, err)
	assert.Equal(t, deleted.Ref, restored.Ref)
	assert.True(t, deleted.CreatedAt.Equal(restored.CreatedAt))
	restoredLogs, err := ListLogs(db, id)
	require.NoError(t, err)
	require.Len(t, restoredLogs, 1)
	assert.Equal(t, logs[0].ID, restoredLogs[0].ID)
}

func TestDeleteCampaign_Missing(t *testing.T) {
	db := openTestDB(t)
	_, _, err := DeleteCampaign(db, 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestImportCampaignsAndLogs(t *testing.T) {
	db := openTestDB(t)

	campaigns := "\ufeffref,subject,mode,total,sent,failed,status,created_at\n" +
		"c-1,Welcome,Personalized,2,1,1,completed,2024-02-01T10:00:00Z\n" +
		",Newsletter,bulk,5,5,0,,\n"
	n, err := ImportCampaigns(db, strings.NewReader(campaigns))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := ListCampaigns(db)
	require.NoError(t, err)
	require.Len(t, list, 2)
	var welcome, newsletter model.Campaign
	for _, c := range list {
		switch c.Subject {
		case "Welcome":
			welcome = c
		case "Newsletter":
			newsletter = c
		}
	}
	assert.Equal(t, "personalized", welcome.Mode)
	assert.Equal(t, model.StatusCompleted, newsletter.Status)
	assert.NotEmpty(t, newsletter.Ref)

	logs := "campaign_ref,recipient_email,status,error_message\n" +
		"c-1,a@example.com,sent,\n" +
		"c-1,b@example.com,FAILED,bounced\n"
	n, err = ImportLogs(db, strings.NewReader(logs))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := ListLogs(db, welcome.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestImport_Errors(t *testing.T) {
	db := openTestDB(t)

	_, err := ImportCampaigns(db, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ImportCampaigns(db, strings.NewReader("subject\nHello\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ImportCampaigns(db, strings.NewReader("subject,mode,total\nHi,bulk,lots\n"))
	assert.Error(t, err)

	_, err = ImportLogs(db, strings.NewReader("recipient_email,status\na@example.com,sent\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ImportLogs(db, strings.NewReader("campaign_ref,recipient_email,status\nnope,a@example.com,sent\n"))
	assert.ErrorIs(t, err, sql.ErrNoRows)

	list, err := ListCampaigns(db)
	require.NoError(t, err)
	assert.Empty(t, list)
}
