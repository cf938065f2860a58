package db

import (
	"database/sql"
	"fmt"
	"time"

	"upsend/internal/model"
)

const campaignColumns = `id, ref, subject, sender, mode, template_file, csv_file, total, sent, failed, status, created_at, completed_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func scanCampaign(s scanner) (model.Campaign, error) {
	var c model.Campaign
	var sender, templateFile, csvFile, completedAt sql.NullString
	var createdAt string

	err := s.Scan(&c.ID, &c.Ref, &c.Subject, &sender, &c.Mode, &templateFile, &csvFile,
		&c.Total, &c.Sent, &c.Failed, &c.Status, &createdAt, &completedAt)
	if err != nil {
		return model.Campaign{}, err
	}

	c.Sender = sender.String
	c.TemplateFile = templateFile.String
	c.CSVFile = csvFile.String
	c.CreatedAt = parseTime(createdAt)
	if completedAt.Valid {
		if t := parseTime(completedAt.String); !t.IsZero() {
			c.CompletedAt = &t
		}
	}
	return c, nil
}

// ListCampaigns retrieves the campaign history, newest first.
func ListCampaigns(db *sql.DB) ([]model.Campaign, error) {
	rows, err := db.Query(`SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var results []model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign row: %w", err)
		}
		results = append(results, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign rows: %w", err)
	}

	return results, nil
}

// GetCampaign retrieves a single campaign by ID.
func GetCampaign(db *sql.DB, id int64) (model.Campaign, error) {
	c, err := scanCampaign(db.QueryRow(`SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id))
	if err != nil {
		return model.Campaign{}, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

// GetCampaignDetail retrieves a campaign with all its delivery logs.
func GetCampaignDetail(db *sql.DB, id int64) (model.CampaignDetail, error) {
	c, err := GetCampaign(db, id)
	if err != nil {
		return model.CampaignDetail{}, err
	}
	logs, err := GetLogsByCampaign(db, id)
	if err != nil {
		return model.CampaignDetail{}, err
	}
	return model.CampaignDetail{Campaign: c, Logs: logs}, nil
}

// InsertCampaign creates a new campaign.
func InsertCampaign(db *sql.DB, c model.NewCampaign) (int64, error) {
	return insertCampaign(db, c)
}

func insertCampaign(db execer, c model.NewCampaign) (int64, error) {
	query := `
		INSERT INTO campaigns (ref, subject, sender, mode, template_file, csv_file, total, sent, failed, status, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	status := c.Status
	if status == "" {
		status = model.StatusDraft
	}
	createdAt := formatTime(time.Now())
	if c.CreatedAt != nil {
		createdAt = formatTime(*c.CreatedAt)
	}
	var completedAt interface{}
	if c.CompletedAt != nil {
		completedAt = formatTime(*c.CompletedAt)
	}

	result, err := db.Exec(query, c.Ref, c.Subject, nullable(c.Sender), c.Mode, nullable(c.TemplateFile), nullable(c.CSVFile),
		c.Total, c.Sent, c.Failed, status, createdAt, completedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert campaign: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}

// DeleteCampaign deletes a campaign and all its logs, returning what was
// removed so the caller can offer an undo.
func DeleteCampaign(db *sql.DB, id int64) (model.Campaign, []model.EmailLog, error) {
	c, err := GetCampaign(db, id)
	if err != nil {
		return model.Campaign{}, nil, err
	}
	logs, err := GetLogsByCampaign(db, id)
	if err != nil {
		return model.Campaign{}, nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return model.Campaign{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM email_logs WHERE campaign_id = ?", id); err != nil {
		return model.Campaign{}, nil, fmt.Errorf("failed to delete email logs: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM campaigns WHERE id = ?", id); err != nil {
		return model.Campaign{}, nil, fmt.Errorf("failed to delete campaign: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Campaign{}, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return c, logs, nil
}

// RestoreCampaign re-inserts a deleted campaign and its logs with their original IDs.
func RestoreCampaign(db *sql.DB, c model.Campaign, logs []model.EmailLog) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var completedAt interface{}
	if c.CompletedAt != nil {
		completedAt = formatTime(*c.CompletedAt)
	}
	createdAt := formatTime(time.Now())
	if !c.CreatedAt.IsZero() {
		createdAt = formatTime(c.CreatedAt)
	}

	_, err = tx.Exec(`
		INSERT INTO campaigns (id, ref, subject, sender, mode, template_file, csv_file, total, sent, failed, status, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Ref, c.Subject, nullable(c.Sender), c.Mode, nullable(c.TemplateFile), nullable(c.CSVFile),
		c.Total, c.Sent, c.Failed, c.Status, createdAt, completedAt)
	if err != nil {
		return fmt.Errorf("failed to restore campaign: %w", err)
	}

	for _, l := range logs {
		_, err := tx.Exec(`
			INSERT INTO email_logs (id, campaign_id, recipient_email, status, error_message, sent_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, l.ID, l.CampaignID, l.RecipientEmail, l.Status, nullable(l.ErrorMessage), formatTime(l.SentAt))
		if err != nil {
			return fmt.Errorf("failed to restore email log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
