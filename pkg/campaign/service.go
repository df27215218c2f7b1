package campaign

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jordanlanch/outreach/pkg/crm"
	"github.com/jordanlanch/outreach/pkg/logger"
	"github.com/jordanlanch/outreach/pkg/metrics"
	"github.com/jordanlanch/outreach/pkg/platform"
	"github.com/jordanlanch/outreach/pkg/telephony"
)

// ProfileSource supplies the persona used in call scripts
type ProfileSource interface {
	Profile() platform.BusinessProfile
}

// Pacing scales the dialer's randomized waits. The windows between
// dial steps are fixed multiples of Unit: ringing [2,4], conversation
// [3,6], inter-call [2,5].
type Pacing struct {
	Unit time.Duration
}

// Config holds dialer tunables
type Config struct {
	Pacing      Pacing
	CallTimeout time.Duration
	NCCO        telephony.NCCOConfig
}

// Service owns the single active campaign: the working lead list, the
// dialer goroutine, and run statistics. All exported methods are safe
// for concurrent use.
type Service struct {
	mu       sync.Mutex
	leads    []Lead
	cursor   int
	running  bool
	stopCh   chan struct{}
	loopDone chan struct{}
	stats    Stats

	caller     telephony.CallProvider
	crm        crm.Client
	classifier Classifier
	profile    ProfileSource
	metrics    *metrics.Metrics
	cfg        Config
	log        logger.Logger
}

// NewService creates a campaign service. A nil classifier falls back to
// the weighted simulator; a nil metrics sink disables instrumentation.
func NewService(caller telephony.CallProvider, crmClient crm.Client, classifier Classifier, profile ProfileSource, m *metrics.Metrics, cfg Config, log logger.Logger) *Service {
	if classifier == nil {
		classifier = NewWeightedSimulator(nil)
	}
	if cfg.Pacing.Unit <= 0 {
		cfg.Pacing.Unit = time.Second
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		caller:     caller,
		crm:        crmClient,
		classifier: classifier,
		profile:    profile,
		metrics:    m,
		cfg:        cfg,
		log:        log,
	}
}

// LoadLeads replaces the working lead list and resets all counters.
// Loading while the dialer is running returns ErrCampaignBusy.
func (s *Service) LoadLeads(leads []Lead) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return 0, ErrCampaignBusy
	}
	s.leads = leads
	s.cursor = 0
	s.stats = Stats{Total: len(leads)}
	s.log.Info("campaign loaded", "count", len(leads))
	return len(leads), nil
}

// LoadFromCSV parses a CSV export and loads it as the active campaign.
// An empty file loads an empty campaign, which is not an error.
func (s *Service) LoadFromCSV(r io.Reader) (int, error) {
	leads, err := ParseLeads(r)
	if err != nil {
		return 0, err
	}
	count, err := s.LoadLeads(leads)
	if err != nil {
		return 0, err
	}
	s.countLoad("csv")
	return count, nil
}

// LoadFromCRM pulls the members of a CRM campaign into the working list
func (s *Service) LoadFromCRM(ctx context.Context, campaignID string) (int, error) {
	records, err := s.crm.QueryLeadsForCampaign(ctx, campaignID)
	if err != nil {
		return 0, fmt.Errorf("query campaign %s: %w", campaignID, err)
	}
	leads := make([]Lead, 0, len(records))
	for _, rec := range records {
		leads = append(leads, fromRecord(rec))
	}
	count, err := s.LoadLeads(leads)
	if err != nil {
		return 0, err
	}
	s.countLoad("crm")
	return count, nil
}

// Start launches the dialer goroutine. Starting a running campaign is
// a no-op; the dialer resumes from the current cursor, so a stopped
// campaign continues where it left off. A previous loop may still be
// finishing its claimed lead after Stop; Start waits for it to exit so
// only one loop ever owns the cursor.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	done := s.loopDone
	s.mu.Unlock()

	if done != nil {
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.loopDone = make(chan struct{})
	go s.run(s.stopCh, s.loopDone)
}

// Stop requests a cooperative stop. The in-flight call finishes; the
// dialer exits before picking up the next lead. Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}

// Status returns a consistent snapshot of the campaign state
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		IsRunning: s.running,
		Stats:     s.stats,
		Progress:  fmt.Sprintf("%d/%d", s.cursor, len(s.leads)),
	}
}

func (s *Service) countLoad(source string) {
	if s.metrics != nil {
		s.metrics.CampaignsLoaded.WithLabelValues(source).Inc()
	}
}

func fromRecord(rec crm.LeadRecord) Lead {
	name := strings.TrimSpace(rec.FirstName + " " + rec.LastName)
	if name == "" {
		name = "Unknown"
	}
	return Lead{
		ID:           rec.ID,
		Name:         name,
		Email:        rec.Email,
		Phone:        rec.Phone,
		Company:      rec.Company,
		Type:         strings.ToLower(rec.Type),
		City:         rec.City,
		State:        rec.State,
		LoanAmount:   rec.LoanAmount,
		InterestRate: rec.InterestRate,
		DoNotCall:    rec.DoNotCall,
	}
}
