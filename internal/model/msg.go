package model

import "upsend/internal/campaign"

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// CampaignsLoadedMsg is sent when the campaign history is loaded.
type CampaignsLoadedMsg struct {
	Campaigns []Campaign
}

// LogsLoadedMsg is sent when email logs are loaded.
type LogsLoadedMsg struct {
	Logs []LogRow
}

// CampaignDetailLoadedMsg is sent when a campaign detail is loaded.
type CampaignDetailLoadedMsg struct {
	Detail CampaignDetail
}

// CampaignSavedMsg is sent when a draft campaign has been stored.
type CampaignSavedMsg struct {
	Campaign Campaign
	Batch    *campaign.Batch
	Preview  string
}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// DeleteCampaignMsg is sent after a campaign and its logs were deleted.
type DeleteCampaignMsg struct {
	ID      int64
	Deleted Campaign
	Logs    []EmailLog
}

// Screen represents different app screens.
type Screen int

const (
	ScreenCampaigns Screen = iota
	ScreenLogs
	ScreenCampaignDetail
	ScreenCampaignForm
	ScreenPreview
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
	ModeSearch
)
