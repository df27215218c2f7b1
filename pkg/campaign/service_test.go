package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/outreach/pkg/crm"
	"github.com/jordanlanch/outreach/pkg/platform"
	"github.com/jordanlanch/outreach/pkg/telephony"
)

type fakeCaller struct {
	mu    sync.Mutex
	calls []string
	err   error
	empty bool
}

func (f *fakeCaller) TriggerCall(ctx context.Context, toNumber string, ncco telephony.NCCO) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, toNumber)
	if f.empty {
		return "", nil
	}
	return fmt.Sprintf("call_%d", len(f.calls)), nil
}

func (f *fakeCaller) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type activityRecord struct {
	LeadName     string
	Status       string
	Company      string
	Notes        string
	RecordingURL string
}

// fakeCRM records activity writes and serves canned campaign queries
type fakeCRM struct {
	mu       sync.Mutex
	activity []activityRecord
	records  []crm.LeadRecord
	queryErr error
	logErr   error
}

func (f *fakeCRM) CreateTask(ctx context.Context, leadID, subject, description string, dueDate time.Time, priority string) (string, error) {
	return "task_1", nil
}

func (f *fakeCRM) UpdateDisposition(ctx context.Context, leadID, disposition, notes string) error {
	return nil
}

func (f *fakeCRM) QueryLeadsForCampaign(ctx context.Context, campaignID string) ([]crm.LeadRecord, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.records, nil
}

func (f *fakeCRM) LogActivity(ctx context.Context, leadName, status, company, notes, recordingURL string) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activity = append(f.activity, activityRecord{leadName, status, company, notes, recordingURL})
	return nil
}

func (f *fakeCRM) Stats(ctx context.Context) (crm.DashboardStats, error) {
	return crm.DashboardStats{}, nil
}

func (f *fakeCRM) entries() []activityRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]activityRecord, len(f.activity))
	copy(out, f.activity)
	return out
}

// fixedClassifier returns the same outcome for every lead
type fixedClassifier struct{ outcome Outcome }

func (c fixedClassifier) Classify(_ Lead) Outcome { return c.outcome }

type fakeProfile struct{ agent string }

func (f fakeProfile) Profile() platform.BusinessProfile {
	return platform.BusinessProfile{AgentName: f.agent}
}

var voicemail = Outcome{
	Label:  "Voicemail",
	Status: "Open - Not Contacted",
	Notes:  "Left voicemail about refinance rates.",
}

var appointment = Outcome{
	Label:       "Appointment Booked",
	Status:      "Qualified - Appointment",
	Notes:       "Scheduled consultation for refinance!",
	Connected:   true,
	Appointment: true,
}

func newTestService(caller telephony.CallProvider, crmClient crm.Client, classifier Classifier) *Service {
	cfg := Config{
		Pacing:      Pacing{Unit: time.Millisecond},
		CallTimeout: 100 * time.Millisecond,
	}
	return NewService(caller, crmClient, classifier, fakeProfile{agent: "Kim"}, nil, cfg, nil)
}

func testLeads(n int) []Lead {
	leads := make([]Lead, 0, n)
	for i := 1; i <= n; i++ {
		leads = append(leads, Lead{
			Name:    fmt.Sprintf("Lead %d", i),
			Phone:   fmt.Sprintf("+1206555010%d", i),
			Company: "General Services",
		})
	}
	return leads
}

func waitForCompletion(t *testing.T, svc *Service) {
	t.Helper()
	require.Eventually(t, func() bool {
		return !svc.Status().IsRunning
	}, 5*time.Second, 2*time.Millisecond)
}

func TestService_RunToCompletion(t *testing.T) {
	caller := &fakeCaller{}
	sink := &fakeCRM{}
	svc := newTestService(caller, sink, fixedClassifier{outcome: voicemail})

	count, err := svc.LoadLeads(testLeads(5))
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, "0/5", svc.Status().Progress)

	svc.Start()
	waitForCompletion(t, svc)

	status := svc.Status()
	assert.Equal(t, 5, status.Stats.Total)
	assert.Equal(t, 5, status.Stats.Dialed)
	assert.Equal(t, 0, status.Stats.Connected)
	assert.Equal(t, 0, status.Stats.Appointments)
	assert.Equal(t, "5/5", status.Progress)
	assert.Equal(t, 5, caller.count())

	// every lead produces a dialing entry and an outcome entry
	entries := sink.entries()
	require.Len(t, entries, 10)
	assert.Equal(t, "Dialing...", entries[0].Status)
	assert.Contains(t, entries[0].Notes, "Vonage Call UUID: call_1")
	assert.Equal(t, "Open - Not Contacted", entries[1].Status)
	assert.Equal(t, "/api/recordings/demo_Lead_1.mp3", entries[1].RecordingURL)
}

func TestService_ConnectedOutcomes(t *testing.T) {
	caller := &fakeCaller{}
	sink := &fakeCRM{}
	svc := newTestService(caller, sink, fixedClassifier{outcome: appointment})

	_, err := svc.LoadLeads(testLeads(3))
	require.NoError(t, err)

	svc.Start()
	waitForCompletion(t, svc)

	stats := svc.Status().Stats
	assert.Equal(t, 3, stats.Dialed)
	assert.Equal(t, 3, stats.Connected)
	assert.Equal(t, 3, stats.Appointments)
	assert.LessOrEqual(t, stats.Appointments, stats.Connected)
	assert.LessOrEqual(t, stats.Connected, stats.Dialed)
	assert.LessOrEqual(t, stats.Dialed, stats.Total)
}

func TestService_DoNotCallSkipped(t *testing.T) {
	caller := &fakeCaller{}
	sink := &fakeCRM{}
	svc := newTestService(caller, sink, fixedClassifier{outcome: voicemail})

	leads := testLeads(3)
	leads[1].DoNotCall = true
	_, err := svc.LoadLeads(leads)
	require.NoError(t, err)

	svc.Start()
	waitForCompletion(t, svc)

	status := svc.Status()
	assert.Equal(t, 2, status.Stats.Dialed, "flagged lead must not count as dialed")
	assert.Equal(t, "3/3", status.Progress, "flagged lead still advances the cursor")
	assert.Equal(t, 2, caller.count())

	for _, entry := range sink.entries() {
		assert.NotEqual(t, "Lead 2", entry.LeadName)
	}
}

func TestService_StopIsCooperativeAndIdempotent(t *testing.T) {
	caller := &fakeCaller{}
	sink := &fakeCRM{}
	svc := newTestService(caller, sink, fixedClassifier{outcome: voicemail})

	// stop before any start is a no-op
	svc.Stop()

	_, err := svc.LoadLeads(testLeads(50))
	require.NoError(t, err)

	svc.Start()
	svc.Stop()
	svc.Stop()
	waitForCompletion(t, svc)

	dialed := svc.Status().Stats.Dialed
	assert.Less(t, dialed, 50, "stop must interrupt the run")

	// counters are stable once the dialer has exited
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, dialed, svc.Status().Stats.Dialed)
}

// trackingCaller measures how many TriggerCall invocations overlap
type trackingCaller struct {
	mu       sync.Mutex
	inFlight int
	peak     int
}

func (f *trackingCaller) TriggerCall(ctx context.Context, toNumber string, ncco telephony.NCCO) (string, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return "call_1", nil
}

func (f *trackingCaller) maxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}

func TestService_RestartDuringInFlightLead(t *testing.T) {
	caller := &trackingCaller{}
	sink := &fakeCRM{}
	svc := newTestService(caller, sink, fixedClassifier{outcome: voicemail})

	_, err := svc.LoadLeads(testLeads(60))
	require.NoError(t, err)

	// restart while the first loop is still working its claimed lead
	svc.Start()
	time.Sleep(2 * time.Millisecond)
	svc.Stop()
	svc.Start()
	waitForCompletion(t, svc)

	status := svc.Status()
	assert.Equal(t, 60, status.Stats.Dialed)
	assert.Equal(t, "60/60", status.Progress)
	assert.Equal(t, 1, caller.maxInFlight(), "a restart must never leave two dialer loops placing calls")
}

func TestService_ResumeAfterStop(t *testing.T) {
	caller := &fakeCaller{}
	sink := &fakeCRM{}
	svc := newTestService(caller, sink, fixedClassifier{outcome: voicemail})

	_, err := svc.LoadLeads(testLeads(4))
	require.NoError(t, err)

	svc.Start()
	svc.Stop()
	waitForCompletion(t, svc)

	svc.Start()
	waitForCompletion(t, svc)

	status := svc.Status()
	assert.Equal(t, 4, status.Stats.Dialed, "restart continues from the cursor")
	assert.Equal(t, "4/4", status.Progress)
}

func TestService_LoadWhileRunning(t *testing.T) {
	caller := &fakeCaller{}
	sink := &fakeCRM{}
	svc := newTestService(caller, sink, fixedClassifier{outcome: voicemail})

	_, err := svc.LoadLeads(testLeads(20))
	require.NoError(t, err)
	svc.Start()

	_, err = svc.LoadLeads(testLeads(1))
	assert.ErrorIs(t, err, ErrCampaignBusy)

	svc.Stop()
	waitForCompletion(t, svc)
}

func TestService_LoadResetsCounters(t *testing.T) {
	caller := &fakeCaller{}
	sink := &fakeCRM{}
	svc := newTestService(caller, sink, fixedClassifier{outcome: appointment})

	_, err := svc.LoadLeads(testLeads(2))
	require.NoError(t, err)
	svc.Start()
	waitForCompletion(t, svc)
	require.Equal(t, 2, svc.Status().Stats.Dialed)

	count, err := svc.LoadLeads(testLeads(7))
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	status := svc.Status()
	assert.Equal(t, Stats{Total: 7}, status.Stats)
	assert.Equal(t, "0/7", status.Progress)
}

func TestService_CallFailureDoesNotAbortRun(t *testing.T) {
	caller := &fakeCaller{err: errors.New("vendor down")}
	sink := &fakeCRM{}
	svc := newTestService(caller, sink, fixedClassifier{outcome: voicemail})

	_, err := svc.LoadLeads(testLeads(3))
	require.NoError(t, err)

	svc.Start()
	waitForCompletion(t, svc)

	assert.Equal(t, 3, svc.Status().Stats.Dialed)
	entries := sink.entries()
	require.Len(t, entries, 6)
	assert.Contains(t, entries[0].Notes, "SIMULATED")
}

func TestService_ActivityLogFailureDoesNotAbortRun(t *testing.T) {
	caller := &fakeCaller{}
	sink := &fakeCRM{logErr: errors.New("feed unavailable")}
	svc := newTestService(caller, sink, fixedClassifier{outcome: voicemail})

	_, err := svc.LoadLeads(testLeads(3))
	require.NoError(t, err)

	svc.Start()
	waitForCompletion(t, svc)

	assert.Equal(t, 3, svc.Status().Stats.Dialed)
	assert.Equal(t, 3, caller.count())
}

func TestService_LoadFromCSV(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		svc := newTestService(&fakeCaller{}, &fakeCRM{}, fixedClassifier{outcome: voicemail})
		csv := "Name,Phone\nJane Doe,+12065550100\nJohn Roe,+12065550101\n"
		count, err := svc.LoadFromCSV(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, 2, svc.Status().Stats.Total)
	})

	t.Run("empty payload", func(t *testing.T) {
		svc := newTestService(&fakeCaller{}, &fakeCRM{}, fixedClassifier{outcome: voicemail})
		count, err := svc.LoadFromCSV(strings.NewReader(""))
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("malformed payload", func(t *testing.T) {
		svc := newTestService(&fakeCaller{}, &fakeCRM{}, fixedClassifier{outcome: voicemail})
		_, err := svc.LoadFromCSV(strings.NewReader("Name\n\"broken"))
		assert.ErrorIs(t, err, ErrFormat)
	})
}

func TestService_LoadFromCRM(t *testing.T) {
	sink := &fakeCRM{records: []crm.LeadRecord{
		{ID: "lead_001", FirstName: "Demo", LastName: "User", Phone: "+12065550100", Company: "Demo Co", Type: "Broker"},
		{ID: "lead_002", Phone: "+12065550101", DoNotCall: true},
	}}
	svc := newTestService(&fakeCaller{}, sink, fixedClassifier{outcome: voicemail})

	count, err := svc.LoadFromCRM(context.Background(), "cmp_001")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	svc.mu.Lock()
	leads := svc.leads
	svc.mu.Unlock()
	assert.Equal(t, "Demo User", leads[0].Name)
	assert.Equal(t, TypeBroker, leads[0].Type)
	assert.Equal(t, "Unknown", leads[1].Name)
	assert.True(t, leads[1].DoNotCall)
}

func TestService_LoadFromCRMQueryError(t *testing.T) {
	sink := &fakeCRM{queryErr: errors.New("crm unavailable")}
	svc := newTestService(&fakeCaller{}, sink, fixedClassifier{outcome: voicemail})

	_, err := svc.LoadFromCRM(context.Background(), "cmp_001")
	assert.Error(t, err)
	assert.Zero(t, svc.Status().Stats.Total)
}

func TestService_Greeting(t *testing.T) {
	svc := newTestService(&fakeCaller{}, &fakeCRM{}, fixedClassifier{outcome: voicemail})

	broker := svc.greeting(Lead{Name: "Bob", Type: TypeBroker})
	assert.Contains(t, broker, "Hi Bob, this is Kim calling from the local office")

	consumer := svc.greeting(Lead{Name: "Jane"})
	assert.Contains(t, consumer, "Hello Jane, this is Kim, an AI specialist")
}
