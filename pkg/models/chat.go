package models

// ChatRequest represents a chat turn from the operator console
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	LeadID  string `json:"lead_id,omitempty"`
}

// ChatAction is a structured action the agent asked to perform
type ChatAction struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ChatResponse represents the agent's reply
type ChatResponse struct {
	Text      string       `json:"text"`
	Persona   string       `json:"persona"`
	Timestamp string       `json:"timestamp"`
	Actions   []ChatAction `json:"actions,omitempty"`
	Paywall   bool         `json:"paywall,omitempty"`
	Error     bool         `json:"error,omitempty"`
}
