package model

import "time"

// Campaign statuses.
const (
	StatusDraft     = "draft"
	StatusSending   = "sending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Delivery statuses for a single recipient.
const (
	LogSent   = "sent"
	LogFailed = "failed"
)

// Campaign represents one email campaign in the history.
type Campaign struct {
	ID           int64
	Ref          string
	Subject      string
	Sender       string
	Mode         string // personalized, bulk
	TemplateFile string
	CSVFile      string
	Total        int
	Sent         int
	Failed       int
	Status       string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// EmailLog represents the delivery outcome for one recipient.
type EmailLog struct {
	ID             int64
	CampaignID     int64
	RecipientEmail string
	Status         string
	ErrorMessage   string
	SentAt         time.Time
}

// LogRow represents an email log with joined campaign data for list display.
type LogRow struct {
	EmailLog
	CampaignSubject string
}

// CampaignDetail represents a campaign with all its delivery logs.
type CampaignDetail struct {
	Campaign Campaign
	Logs     []EmailLog
}

// NewCampaign represents data for creating a campaign.
type NewCampaign struct {
	Ref          string
	Subject      string
	Sender       string
	Mode         string
	TemplateFile string
	CSVFile      string
	Total        int
	Sent         int
	Failed       int
	Status       string
	CreatedAt    *time.Time
	CompletedAt  *time.Time
}

// NewEmailLog represents data for creating an email log entry.
type NewEmailLog struct {
	CampaignID     int64
	RecipientEmail string
	Status         string
	ErrorMessage   string
	SentAt         *time.Time
}
