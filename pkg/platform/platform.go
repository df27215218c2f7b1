package platform

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jordanlanch/outreach/pkg/logger"
	"github.com/jordanlanch/outreach/pkg/models"
)

// BusinessProfile configures the agent persona and product context
type BusinessProfile struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Industry           string `json:"industry"`
	ProductDescription string `json:"product_description"`
	Goals              string `json:"goals"`
	ComplianceRules    string `json:"compliance_rules"`
	AgentName          string `json:"agent_name"`
	Tone               string `json:"tone"`
}

// Subscription is the quota gate state
type Subscription struct {
	IsActive   bool   `json:"is_active"`
	PlanName   string `json:"plan_name"`
	UsageCount int    `json:"usage_count"`
	UsageLimit int    `json:"usage_limit"`
}

// DefaultProfile returns the out-of-the-box business profile
func DefaultProfile() BusinessProfile {
	return BusinessProfile{
		ID:                 "default_biz",
		Name:               "Generic Business",
		Industry:           "General",
		ProductDescription: "Our amazing products and services.",
		Goals:              "Help customers find the right product.",
		ComplianceRules:    "Be polite and helpful.",
		AgentName:          "Assistant",
		Tone:               "Professional and friendly",
	}
}

// DefaultSubscription returns the free tier subscription
func DefaultSubscription() Subscription {
	return Subscription{
		IsActive:   false,
		PlanName:   "Free",
		UsageCount: 0,
		UsageLimit: 10,
	}
}

// persistedState is the on-disk document layout: a single JSON file with
// profile and subscription keys, rewritten wholesale on every mutation.
type persistedState struct {
	Profile      BusinessProfile `json:"profile"`
	Subscription Subscription    `json:"subscription"`
}

// Manager owns the business profile and the usage-counted access gate.
// The mutex is held across check-and-increment and the persistence write
// so two concurrent callers can never both take the last free slot.
type Manager struct {
	mu           sync.Mutex
	dataFile     string
	profile      BusinessProfile
	subscription Subscription
	log          logger.Logger
}

// NewManager loads platform state from dataFile, creating it with
// defaults when missing
func NewManager(dataFile string, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.Default()
	}

	m := &Manager{
		dataFile:     dataFile,
		profile:      DefaultProfile(),
		subscription: DefaultSubscription(),
		log:          log,
	}

	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.dataFile)
	if os.IsNotExist(err) {
		return m.save()
	}
	if err != nil {
		return fmt.Errorf("failed to read platform data: %w", err)
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to parse platform data: %w", err)
	}

	m.profile = state.Profile
	m.subscription = state.Subscription
	return nil
}

// save rewrites the whole document atomically. Callers must hold the lock
// (or be the constructor before the manager is shared).
func (m *Manager) save() error {
	state := persistedState{
		Profile:      m.profile,
		Subscription: m.subscription,
	}

	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal platform data: %w", err)
	}

	tmp := m.dataFile + ".tmp"
	if dir := filepath.Dir(m.dataFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write platform data: %w", err)
	}
	if err := os.Rename(tmp, m.dataFile); err != nil {
		return fmt.Errorf("failed to replace platform data: %w", err)
	}
	return nil
}

// CheckAccess reports whether a completion request is allowed.
// Active subscriptions always pass. Otherwise the free-tier counter is
// incremented and persisted while the lock is held; a denied request is
// never counted.
func (m *Manager) CheckAccess() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscription.IsActive {
		return true
	}

	if m.subscription.UsageCount < m.subscription.UsageLimit {
		m.subscription.UsageCount++
		if err := m.save(); err != nil {
			m.log.Error("failed to persist usage increment", "error", err)
		}
		return true
	}

	return false
}

// Upgrade activates the premium subscription
func (m *Manager) Upgrade() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subscription.IsActive = true
	m.subscription.PlanName = "Premium"
	return m.save()
}

// ResetUsage zeroes the free-tier usage counter
func (m *Manager) ResetUsage() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subscription.UsageCount = 0
	return m.save()
}

// Subscription returns a snapshot of the gate state
func (m *Manager) Subscription() Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscription
}

// Profile returns a snapshot of the business profile
func (m *Manager) Profile() BusinessProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// UpdateProfile merges the provided fields into the profile and persists it
func (m *Manager) UpdateProfile(update models.ProfileUpdateRequest) (BusinessProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if update.Name != nil {
		m.profile.Name = *update.Name
	}
	if update.Industry != nil {
		m.profile.Industry = *update.Industry
	}
	if update.ProductDescription != nil {
		m.profile.ProductDescription = *update.ProductDescription
	}
	if update.Goals != nil {
		m.profile.Goals = *update.Goals
	}
	if update.ComplianceRules != nil {
		m.profile.ComplianceRules = *update.ComplianceRules
	}
	if update.AgentName != nil {
		m.profile.AgentName = *update.AgentName
	}
	if update.Tone != nil {
		m.profile.Tone = *update.Tone
	}

	if err := m.save(); err != nil {
		return BusinessProfile{}, err
	}
	return m.profile, nil
}

// SetUsageLimit adjusts the free-tier limit (used by tests and admin tooling)
func (m *Manager) SetUsageLimit(limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subscription.UsageLimit = limit
	return m.save()
}
