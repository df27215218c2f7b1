package campaign

import "errors"

var (
	// ErrCampaignBusy is returned when a load is attempted mid-run
	ErrCampaignBusy = errors.New("campaign is running; stop it before reloading")
	// ErrFormat is returned when an import payload cannot be parsed
	ErrFormat = errors.New("unparseable campaign payload")
)

// Lead type affects the greeting script
const (
	TypeBroker   = "broker"
	TypeConsumer = "consumer"
)

// Lead is the working copy of a lead used during a campaign run.
// It is created at load time and discarded on reload; mutations never
// flow back to the lead store.
type Lead struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Company      string `json:"company"`
	Type         string `json:"type,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	LoanAmount   string `json:"loan_amount,omitempty"`
	InterestRate string `json:"interest_rate,omitempty"`
	DoNotCall    bool   `json:"do_not_call"`
}

// Stats are the aggregate counters for one campaign run. All counters
// are monotonically non-decreasing within a run and reset on load.
type Stats struct {
	Total        int `json:"total"`
	Dialed       int `json:"dialed"`
	Connected    int `json:"connected"`
	Appointments int `json:"appointments"`
}

// Status is a consistent snapshot of the campaign state
type Status struct {
	IsRunning bool   `json:"is_running"`
	Stats     Stats  `json:"stats"`
	Progress  string `json:"progress"`
}
