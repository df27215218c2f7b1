package models

// ProfileUpdateRequest carries partial business profile updates.
// Nil fields are left unchanged.
type ProfileUpdateRequest struct {
	Name               *string `json:"name,omitempty"`
	Industry           *string `json:"industry,omitempty"`
	ProductDescription *string `json:"product_description,omitempty"`
	Goals              *string `json:"goals,omitempty"`
	ComplianceRules    *string `json:"compliance_rules,omitempty"`
	AgentName          *string `json:"agent_name,omitempty" validate:"omitempty,min=1"`
	Tone               *string `json:"tone,omitempty"`
}

// SubscriptionResponse exposes the quota gate state
type SubscriptionResponse struct {
	IsActive   bool   `json:"is_active"`
	PlanName   string `json:"plan_name"`
	UsageCount int    `json:"usage_count"`
	UsageLimit int    `json:"usage_limit"`
}

// UpgradeResponse reports the result of an upgrade request.
// CheckoutURL is set when Stripe is configured; otherwise the
// upgrade is applied directly.
type UpgradeResponse struct {
	Success     bool   `json:"success"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}
