package models

// CampaignLoadRequest represents a request to load a campaign from the CRM
type CampaignLoadRequest struct {
	CampaignID string `json:"campaign_id" validate:"required"`
}

// CampaignLoadResponse reports how many leads were queued
type CampaignLoadResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// CampaignStatsResponse mirrors the dialer counters
type CampaignStatsResponse struct {
	Total        int `json:"total"`
	Dialed       int `json:"dialed"`
	Connected    int `json:"connected"`
	Appointments int `json:"appointments"`
}

// CampaignStatusResponse is the live view of a campaign run
type CampaignStatusResponse struct {
	IsRunning bool                  `json:"is_running"`
	Stats     CampaignStatsResponse `json:"stats"`
	Progress  string                `json:"progress"`
}
