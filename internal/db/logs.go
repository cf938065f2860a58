package db

import (
	"database/sql"
	"fmt"
	"time"

	"upsend/internal/model"
)

// ListLogs retrieves email logs joined with their campaign subject.
// A campaignID of 0 lists every log.
func ListLogs(db *sql.DB, campaignID int64) ([]model.LogRow, error) {
	query := `
		SELECT l.id, l.campaign_id, l.recipient_email, l.status, COALESCE(l.error_message, ''), l.sent_at, c.subject
		FROM email_logs l
		JOIN campaigns c ON c.id = l.campaign_id
		WHERE (? = 0 OR l.campaign_id = ?)
		ORDER BY l.sent_at DESC, l.id DESC
	`

	rows, err := db.Query(query, campaignID, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list email logs: %w", err)
	}
	defer rows.Close()

	var results []model.LogRow
	for rows.Next() {
		var r model.LogRow
		var sentAt string
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.RecipientEmail, &r.Status, &r.ErrorMessage, &sentAt, &r.CampaignSubject); err != nil {
			return nil, fmt.Errorf("failed to scan email log row: %w", err)
		}
		r.SentAt = parseTime(sentAt)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating email log rows: %w", err)
	}

	return results, nil
}

// GetLogsByCampaign retrieves the raw logs of one campaign in insertion order.
func GetLogsByCampaign(db *sql.DB, campaignID int64) ([]model.EmailLog, error) {
	rows, err := db.Query(`
		SELECT id, campaign_id, recipient_email, status, COALESCE(error_message, ''), sent_at
		FROM email_logs
		WHERE campaign_id = ?
		ORDER BY id
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get email logs: %w", err)
	}
	defer rows.Close()

	var logs []model.EmailLog
	for rows.Next() {
		var l model.EmailLog
		var sentAt string
		if err := rows.Scan(&l.ID, &l.CampaignID, &l.RecipientEmail, &l.Status, &l.ErrorMessage, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan email log: %w", err)
		}
		l.SentAt = parseTime(sentAt)
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating email logs: %w", err)
	}

	return logs, nil
}

// InsertLog records the delivery outcome for one recipient.
func InsertLog(db *sql.DB, l model.NewEmailLog) (int64, error) {
	return insertLog(db, l)
}

func insertLog(db execer, l model.NewEmailLog) (int64, error) {
	sentAt := formatTime(time.Now())
	if l.SentAt != nil {
		sentAt = formatTime(*l.SentAt)
	}

	result, err := db.Exec(`
		INSERT INTO email_logs (campaign_id, recipient_email, status, error_message, sent_at)
		VALUES (?, ?, ?, ?, ?)
	`, l.CampaignID, l.RecipientEmail, l.Status, nullable(l.ErrorMessage), sentAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert email log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}
