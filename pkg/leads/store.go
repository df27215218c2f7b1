package leads

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jordanlanch/outreach/pkg/logger"
)

// ErrLeadNotFound is returned when a lead does not exist in the store
var ErrLeadNotFound = errors.New("lead not found")

// Store holds validated lead records and per-lead conversation history.
// All access is in-memory; the store is the single owner of lead data,
// callers always get copies.
type Store struct {
	mu       sync.RWMutex
	leads    map[string]Lead
	history  map[string][]ConversationEntry
	validate *validator.Validate
	log      logger.Logger
}

// NewStore creates an empty lead store
func NewStore(log logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	return &Store{
		leads:    make(map[string]Lead),
		history:  make(map[string][]ConversationEntry),
		validate: validator.New(),
		log:      log,
	}
}

// Save validates and inserts or updates a lead, returning its ID
func (s *Store) Save(lead Lead) (string, error) {
	if lead.Status == "" {
		lead.Status = StatusNew
	}
	if lead.Source == "" {
		lead.Source = "unknown"
	}

	if err := s.validate.Struct(lead); err != nil {
		return "", fmt.Errorf("invalid lead: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if lead.ID == "" {
		lead.ID = uuid.NewString()
		lead.CreatedAt = now
	} else if existing, ok := s.leads[lead.ID]; ok {
		lead.CreatedAt = existing.CreatedAt
	} else if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = &now

	s.leads[lead.ID] = lead
	return lead.ID, nil
}

// Get retrieves a single lead by ID
func (s *Store) Get(id string) (Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return Lead{}, ErrLeadNotFound
	}
	return lead, nil
}

// All returns every lead, newest first
func (s *Store) All() []Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		out = append(out, lead)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Delete removes a lead and its conversation history
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[id]; !ok {
		return ErrLeadNotFound
	}
	delete(s.leads, id)
	delete(s.history, id)
	return nil
}

// Count returns the number of stored leads
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

// AppendConversation logs a conversation turn for a lead
func (s *Store) AppendConversation(leadID, role, message string, meta map[string]any) error {
	if leadID == "" || role == "" {
		return fmt.Errorf("invalid conversation entry: lead_id and role are required")
	}

	entry := ConversationEntry{
		LeadID:    leadID,
		Role:      role,
		Message:   message,
		Timestamp: time.Now(),
		Meta:      meta,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[leadID] = append(s.history[leadID], entry)
	return nil
}

// History returns the conversation transcript for a lead in order
func (s *Store) History(leadID string) []ConversationEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[leadID]
	out := make([]ConversationEntry, len(entries))
	copy(out, entries)
	return out
}

// Rescore recalculates the score of every stored lead
func (s *Store) Rescore() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for id, lead := range s.leads {
		score := Score(lead)
		if score != lead.Score {
			lead.Score = score
			now := time.Now()
			lead.UpdatedAt = &now
			s.leads[id] = lead
			updated++
		}
	}
	return updated
}
