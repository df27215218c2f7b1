package leads

import "time"

// Lead statuses follow the CRM pipeline tokens.
const (
	StatusNew       = "new"
	StatusWorking   = "working-contacted"
	StatusQualified = "qualified"
	StatusClosed    = "closed"
)

// Lead is a validated lead record owned by the Store
type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name" validate:"required,min=1"`
	Email     string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string     `json:"phone,omitempty"`
	Company   string     `json:"company,omitempty"`
	Notes     string     `json:"notes"`
	Source    string     `json:"source"`
	Status    string     `json:"status"`
	Score     int        `json:"score" validate:"min=0"`
	DoNotCall bool       `json:"do_not_call"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ConversationEntry is one turn of a lead's transcript
type ConversationEntry struct {
	LeadID    string         `json:"lead_id"`
	Role      string         `json:"role"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Meta      map[string]any `json:"meta,omitempty"`
}
