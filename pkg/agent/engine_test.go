package agent

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/outreach/pkg/comms"
	"github.com/jordanlanch/outreach/pkg/crm"
	"github.com/jordanlanch/outreach/pkg/leads"
	"github.com/jordanlanch/outreach/pkg/metrics"
	"github.com/jordanlanch/outreach/pkg/models"
	"github.com/jordanlanch/outreach/pkg/platform"
)

// mockCompleter returns a canned completion
type mockCompleter struct {
	content string
	err     error
	calls   int
}

func (m *mockCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.calls++
	if m.err != nil {
		return openai.ChatCompletionResponse{}, m.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.content}},
		},
	}, nil
}

func newTestEngine(t *testing.T, completer chatCompleter) (*Engine, *crm.ActivityLog, *leads.Store, *platform.Manager) {
	t.Helper()

	pm, err := platform.NewManager(filepath.Join(t.TempDir(), "platform.json"), nil)
	require.NoError(t, err)

	activity := crm.NewActivityLog(nil, nil)
	crmClient := crm.NewSimulatedClient(activity)
	store := leads.NewStore(nil)
	orchestrator := comms.NewOrchestrator(nil, nil, nil, "", nil)

	engine := NewEngine("", Config{}, pm, orchestrator, crmClient, store, nil, nil)
	engine.client = completer
	return engine, activity, store, pm
}

func TestParseActions(t *testing.T) {
	t.Run("fenced json block", func(t *testing.T) {
		content := "Sounds great, I'll confirm by text.\n```json\n{\"actions\":[{\"type\":\"send_sms\",\"payload\":{\"message\":\"Confirmed\"}}]}\n```"
		text, actions := parseActions(content)
		assert.Equal(t, "Sounds great, I'll confirm by text.", text)
		require.Len(t, actions, 1)
		assert.Equal(t, ActionSendSMS, actions[0].Type)
		assert.Equal(t, "Confirmed", actions[0].Payload["message"])
	})

	t.Run("trailing json object", func(t *testing.T) {
		content := `Happy to help. {"actions":[{"type":"create_task","payload":{"subject":"Follow up","priority":"High"}}]}`
		text, actions := parseActions(content)
		assert.Equal(t, "Happy to help.", text)
		require.Len(t, actions, 1)
		assert.Equal(t, ActionCreateTask, actions[0].Type)
	})

	t.Run("no actions", func(t *testing.T) {
		text, actions := parseActions("Just a plain reply.")
		assert.Equal(t, "Just a plain reply.", text)
		assert.Empty(t, actions)
	})

	t.Run("malformed block is ignored", func(t *testing.T) {
		text, actions := parseActions("Reply. ```json\n{not valid}\n```")
		assert.Contains(t, text, "Reply.")
		assert.Empty(t, actions)
	})
}

func TestEngine_Respond(t *testing.T) {
	ctx := context.Background()

	t.Run("plain reply", func(t *testing.T) {
		engine, _, _, _ := newTestEngine(t, &mockCompleter{content: "Hello, how can I help?"})

		resp, err := engine.Respond(ctx, "Hi", "")
		require.NoError(t, err)
		assert.Equal(t, "Hello, how can I help?", resp.Text)
		assert.Equal(t, "Assistant", resp.Persona)
		assert.False(t, resp.Paywall)
		assert.NotEmpty(t, resp.ThoughtSignature)
	})

	t.Run("actions are dispatched", func(t *testing.T) {
		content := "Booked!\n```json\n{\"actions\":[{\"type\":\"handoff\",\"payload\":{\"reason\":\"pricing question\"}}]}\n```"
		engine, activity, store, _ := newTestEngine(t, &mockCompleter{content: content})

		leadID, err := store.Save(leads.Lead{Name: "Jane Smith", Phone: "+12125550123"})
		require.NoError(t, err)

		resp, err := engine.Respond(ctx, "Can I talk to a person?", leadID)
		require.NoError(t, err)
		require.Len(t, resp.Actions, 1)

		entries := activity.Recent(1)
		require.Len(t, entries, 1)
		assert.Equal(t, "Handoff Requested", entries[0].Status)

		// Both turns land in the transcript
		history := store.History(leadID)
		require.Len(t, history, 2)
		assert.Equal(t, "user", history[0].Role)
		assert.Equal(t, "agent", history[1].Role)
	})

	t.Run("paywall when quota exhausted", func(t *testing.T) {
		completer := &mockCompleter{content: "should not be called"}
		engine, _, _, pm := newTestEngine(t, completer)
		require.NoError(t, pm.SetUsageLimit(0))

		resp, err := engine.Respond(ctx, "Hi", "")
		require.NoError(t, err)
		assert.True(t, resp.Paywall)
		assert.Equal(t, PaywallMessage, resp.Text)
		// The model is never consulted on a denied request
		assert.Equal(t, 0, completer.calls)
	})

	t.Run("completion error propagates", func(t *testing.T) {
		engine, _, _, _ := newTestEngine(t, &mockCompleter{err: assert.AnError})

		_, err := engine.Respond(ctx, "Hi", "")
		assert.Error(t, err)
	})
}

func TestEngine_RespondMetrics(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()

	engine, _, _, pm := newTestEngine(t, &mockCompleter{content: "Hello"})
	engine.metrics = m

	_, err := engine.Respond(ctx, "Hi", "")
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ChatRequests))
	assert.Zero(t, testutil.ToFloat64(m.PaywallDenials))

	require.NoError(t, pm.SetUsageLimit(0))
	resp, err := engine.Respond(ctx, "Hi again", "")
	require.NoError(t, err)
	assert.True(t, resp.Paywall)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ChatRequests))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PaywallDenials))
}

func TestEngine_SystemPrompt(t *testing.T) {
	engine, _, _, pm := newTestEngine(t, &mockCompleter{})

	prompt := engine.SystemPrompt(nil)
	assert.Contains(t, prompt, "You are Assistant")
	assert.Contains(t, prompt, "STRUCTURED ACTIONS")

	name := "Riley"
	_, err := pm.UpdateProfile(models.ProfileUpdateRequest{AgentName: &name})
	require.NoError(t, err)

	lead := &leads.Lead{Name: "Jane Smith", Company: "Acme"}
	prompt = engine.SystemPrompt(lead)
	assert.Contains(t, prompt, "You are Riley")
	assert.Contains(t, prompt, "ACTIVE CONTEXT")
	assert.Contains(t, prompt, "Jane Smith")
}
