package campaign

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jordanlanch/outreach/pkg/telephony"
)

// run is the dialer loop. It owns the cursor: each iteration claims
// exactly one lead under the lock, then works on it without the lock so
// Status stays responsive during waits. The stop flag is only honored
// between iterations; a claimed lead is always processed to completion.
// done is closed on exit; Start waits on it before spawning a successor.
func (s *Service) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	s.log.Info("campaign dialer started")

	for {
		s.mu.Lock()
		if !s.running || s.cursor >= len(s.leads) {
			s.running = false
			s.mu.Unlock()
			break
		}
		lead := s.leads[s.cursor]
		s.cursor++
		s.mu.Unlock()

		s.dial(lead, stop)
	}

	s.log.Info("campaign completed")
}

// dial processes a single lead end to end. Vendor failures are logged
// and absorbed so one bad lead never kills the run.
func (s *Service) dial(lead Lead, stop <-chan struct{}) {
	if lead.DoNotCall {
		s.log.Info("skipping lead, do-not-call flag set", "lead", lead.Name)
		if s.metrics != nil {
			s.metrics.LeadsSkippedDNC.Inc()
		}
		return
	}

	s.mu.Lock()
	s.stats.Dialed++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.CallsDialed.Inc()
	}
	s.log.Info("initiating outbound call", "lead", lead.Name, "phone", lead.Phone)

	callRef := s.placeCall(lead)
	if err := s.crm.LogActivity(context.Background(), lead.Name, "Dialing...", lead.Company,
		fmt.Sprintf("Vonage Call UUID: %s", callRef), ""); err != nil {
		s.log.Warn("dialing log failed", "lead", lead.Name, "error", err)
	}

	// ringing
	s.pause(stop, 2, 4)

	outcome := s.classifier.Classify(lead)
	if outcome.Connected {
		// conversation
		s.pause(stop, 3, 6)
	}

	s.mu.Lock()
	if outcome.Connected {
		s.stats.Connected++
	}
	if outcome.Appointment {
		s.stats.Appointments++
	}
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordOutcome(outcome.Connected, outcome.Appointment)
	}

	if err := s.crm.LogActivity(context.Background(), lead.Name, outcome.Status, lead.Company,
		outcome.Notes, recordingURL(lead.Name)); err != nil {
		s.log.Warn("outcome log failed", "lead", lead.Name, "error", err)
	}

	// settle before the next lead
	s.pause(stop, 2, 5)
}

// placeCall triggers the outbound call and returns a reference for the
// activity feed. Any failure degrades to the simulated reference.
func (s *Service) placeCall(lead Lead) string {
	ncco := telephony.BuildNCCO(s.greeting(lead), s.cfg.NCCO)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CallTimeout)
	defer cancel()

	callID, err := s.caller.TriggerCall(ctx, lead.Phone, ncco)
	if err != nil {
		s.log.Warn("call trigger failed", "lead", lead.Name, "error", err)
		return "SIMULATED"
	}
	if callID == "" {
		return "SIMULATED"
	}
	s.log.Info("call active", "call_id", callID)
	return callID
}

func (s *Service) greeting(lead Lead) string {
	persona := "Assistant"
	if s.profile != nil {
		if name := s.profile.Profile().AgentName; name != "" {
			persona = name
		}
	}
	if lead.Type == TypeBroker {
		return fmt.Sprintf("Hi %s, this is %s calling from the local office. I'm reaching out because we've launched some new programs that could be a huge asset for your agents' listings right now.", lead.Name, persona)
	}
	return fmt.Sprintf("Hello %s, this is %s, an AI specialist. I'm calling to follow up on your interest.", lead.Name, persona)
}

// pause sleeps a random duration in [lo,hi] pacing units. A stop
// request cuts the wait short; the caller still finishes its iteration.
func (s *Service) pause(stop <-chan struct{}, lo, hi float64) {
	d := time.Duration((lo + rand.Float64()*(hi-lo)) * float64(s.cfg.Pacing.Unit))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-stop:
	}
}

func recordingURL(name string) string {
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf("/api/recordings/demo_%s.mp3", strings.ReplaceAll(name, " ", "_"))
}
