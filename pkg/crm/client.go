package crm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// LeadRecord is a raw CRM lead row as returned by campaign queries
type LeadRecord struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Company      string `json:"company"`
	Status       string `json:"status"`
	City         string `json:"city"`
	State        string `json:"state"`
	Description  string `json:"description"`
	Type         string `json:"type,omitempty"`
	LoanAmount   string `json:"loan_amount,omitempty"`
	InterestRate string `json:"interest_rate,omitempty"`
	DoNotCall    bool   `json:"do_not_call"`
}

// DashboardStats summarizes today's outreach for the dashboard
type DashboardStats struct {
	CallsToday   int    `json:"calls_today"`
	Appointments int    `json:"appointments"`
	SyncStatus   string `json:"sync_status"`
}

// Client is the CRM capability consumed by the campaign dialer and the
// agent engine. Implementations must be safe for concurrent use.
type Client interface {
	CreateTask(ctx context.Context, leadID, subject, description string, dueDate time.Time, priority string) (string, error)
	UpdateDisposition(ctx context.Context, leadID, disposition, notes string) error
	QueryLeadsForCampaign(ctx context.Context, campaignID string) ([]LeadRecord, error)
	LogActivity(ctx context.Context, leadName, status, company, notes, recordingURL string) error
	Stats(ctx context.Context) (DashboardStats, error)
}

// MapDispositionToStatus maps an agent disposition to a CRM lead status
func MapDispositionToStatus(disposition string) string {
	mapping := map[string]string{
		"INTERESTED":         "Working - Contacted",
		"CALLBACK_SCHEDULED": "Working - Contacted",
		"NOT_INTERESTED":     "Closed - Not Converted",
		"VOICEMAIL":          "Open - Not Contacted",
		"NO_ANSWER":          "Open - Not Contacted",
		"WRONG_NUMBER":       "Closed - Not Converted",
		"DO_NOT_CALL":        "Closed - Not Converted",
		"APPOINTMENT_BOOKED": "Qualified",
	}
	if status, ok := mapping[disposition]; ok {
		return status
	}
	return "Open - Not Contacted"
}

// SimulatedClient is the demo-mode CRM used when no vendor credentials
// are configured. Lead queries return deterministic records; every write
// lands in the shared activity feed.
type SimulatedClient struct {
	activity *ActivityLog
	mu       sync.Mutex
	taskSeq  int
}

// NewSimulatedClient creates a demo-mode CRM client backed by the feed
func NewSimulatedClient(activity *ActivityLog) *SimulatedClient {
	return &SimulatedClient{activity: activity}
}

// CreateTask records a follow-up task in the activity feed
func (c *SimulatedClient) CreateTask(ctx context.Context, leadID, subject, description string, dueDate time.Time, priority string) (string, error) {
	c.mu.Lock()
	c.taskSeq++
	taskID := fmt.Sprintf("task_%d", c.taskSeq)
	c.mu.Unlock()
	c.activity.Add(leadID, "Task Created", "", fmt.Sprintf("%s: %s", subject, description), "")
	return taskID, nil
}

// UpdateDisposition applies a call disposition to a lead
func (c *SimulatedClient) UpdateDisposition(ctx context.Context, leadID, disposition, notes string) error {
	status := MapDispositionToStatus(disposition)
	if notes == "" {
		notes = fmt.Sprintf("AI Agent call - %s", disposition)
	}
	c.activity.Add(leadID, status, "", notes, "")
	return nil
}

// QueryLeadsForCampaign returns deterministic demo leads
func (c *SimulatedClient) QueryLeadsForCampaign(ctx context.Context, campaignID string) ([]LeadRecord, error) {
	records := make([]LeadRecord, 0, 5)
	for i := 1; i <= 5; i++ {
		records = append(records, demoLead(fmt.Sprintf("lead_00%d", i)))
	}
	return records, nil
}

// LogActivity appends a dashboard-visible entry
func (c *SimulatedClient) LogActivity(ctx context.Context, leadName, status, company, notes, recordingURL string) error {
	c.activity.Add(leadName, status, company, notes, recordingURL)
	return nil
}

// Stats derives today's call and appointment counts from the feed
func (c *SimulatedClient) Stats(ctx context.Context) (DashboardStats, error) {
	stats := DashboardStats{SyncStatus: "Demo Mode"}

	today := startOfDay(time.Now())
	for _, entry := range c.activity.Recent(ActivityCapacity) {
		if entry.Timestamp.Before(today) {
			continue
		}
		if strings.HasPrefix(entry.Status, "Dialing") {
			stats.CallsToday++
		}
		if strings.HasPrefix(entry.Status, "Qualified") {
			stats.Appointments++
		}
	}
	return stats, nil
}

// startOfDay returns midnight of t's day in t's own location, so the
// dashboard day boundary tracks the deployment timezone
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// LogCall composes a completed-call task from outcome and duration
func (c *SimulatedClient) LogCall(ctx context.Context, leadID, outcome string, duration time.Duration, notes string, callNumber int) (string, error) {
	subject := fmt.Sprintf("AI Agent Call #%d - %s", callNumber, outcome)
	description := fmt.Sprintf("Call Duration: %dm %ds\nOutcome: %s\n\nNotes: %s",
		int(duration.Minutes()), int(duration.Seconds())%60, outcome, notes)
	return c.CreateTask(ctx, leadID, subject, description, time.Now().AddDate(0, 0, 1), "Normal")
}

func demoLead(id string) LeadRecord {
	return LeadRecord{
		ID:          id,
		FirstName:   "Demo",
		LastName:    "User",
		Phone:       "+1-555-123-4567",
		Email:       "demo@example.com",
		Company:     "Demo Company",
		Status:      "Open - Not Contacted",
		City:        "Seattle",
		State:       "WA",
		Description: "Demo lead for testing",
	}
}
