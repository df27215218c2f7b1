package agent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jordanlanch/outreach/pkg/comms"
	"github.com/jordanlanch/outreach/pkg/crm"
	"github.com/jordanlanch/outreach/pkg/leads"
	"github.com/jordanlanch/outreach/pkg/logger"
	"github.com/jordanlanch/outreach/pkg/metrics"
	"github.com/jordanlanch/outreach/pkg/platform"
	"github.com/sashabaranov/go-openai"
)

// PaywallMessage is shown when the free-tier quota is exhausted
const PaywallMessage = "Usage limit reached. Please upgrade your subscription to continue using this agent."

// chatCompleter is the slice of the OpenAI client the engine needs;
// *openai.Client satisfies it.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Response is the validated result of one agent turn
type Response struct {
	Text             string    `json:"text"`
	Persona          string    `json:"persona"`
	Timestamp        time.Time `json:"timestamp"`
	ThoughtSignature string    `json:"thought_signature,omitempty"`
	Actions          []Action  `json:"actions,omitempty"`
	Paywall          bool      `json:"paywall,omitempty"`
	Error            bool      `json:"error,omitempty"`
}

// Config for the agent engine
type Config struct {
	Model       string  // default: gpt-4-turbo-preview
	Temperature float32 // default: 0.7
	MaxTokens   int     // default: 2000
}

// Engine orchestrates persona prompting, LLM completion, and structured
// action dispatch. Every turn is gated by the platform quota first.
type Engine struct {
	client      chatCompleter
	model       string
	temperature float32
	maxTokens   int
	platform    *platform.Manager
	comms       *comms.Orchestrator
	crm         crm.Client
	store       *leads.Store
	metrics     *metrics.Metrics
	log         logger.Logger
}

// NewEngine creates an agent engine. A nil metrics sink disables
// instrumentation.
func NewEngine(apiKey string, cfg Config, pm *platform.Manager, orchestrator *comms.Orchestrator, crmClient crm.Client, store *leads.Store, m *metrics.Metrics, log logger.Logger) *Engine {
	if cfg.Model == "" {
		cfg.Model = "gpt-4-turbo-preview"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	if log == nil {
		log = logger.Default()
	}

	return &Engine{
		client:      openai.NewClient(apiKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		platform:    pm,
		comms:       orchestrator,
		crm:         crmClient,
		store:       store,
		metrics:     m,
		log:         log,
	}
}

// SystemPrompt generates the unified persona based on the business profile
func (e *Engine) SystemPrompt(lead *leads.Lead) string {
	profile := e.platform.Profile()

	base := fmt.Sprintf(`You are %s, representing %s (%s).
Your mission is: %s

PRODUCT KNOWLEDGE:
%s

BEHAVIORAL RULES:
- Tone: %s
- Compliance: %s
- Role: Act as a helpful assistant/sales representative. Qualified leads should be guided towards a purchase or booking.

STRUCTURED ACTIONS (Orchestration):
You can trigger the following channels by including them in a json code block with an "actions" array:
1. create_task: {"subject": str, "priority": "High"|"Normal"}
2. update_cadence: {"stage": str, "notes": str}
3. send_sms: {"message": str}
4. send_email: {"subject": str, "body": str}
5. send_physical_mail: {"template": "ThankYouCard"|"ProgramFlyer", "address": str}
6. handoff: {"target": "Human Agent", "reason": str}

Always prioritize helpful conversation.`,
		profile.AgentName, profile.Name, profile.Industry, profile.Goals,
		profile.ProductDescription, profile.Tone, profile.ComplianceRules)

	if lead != nil {
		info := lead.Notes
		if info == "" {
			info = lead.Company
		}
		base += fmt.Sprintf("\n\nACTIVE CONTEXT (LEAD):\n- Name: %s\n- Info: %s", lead.Name, info)
	}

	return base
}

// Respond runs one chat turn: quota gate, completion, action dispatch.
// Action failures are logged per action and never fail the turn.
func (e *Engine) Respond(ctx context.Context, text, leadID string) (*Response, error) {
	persona := e.platform.Profile().AgentName
	if e.metrics != nil {
		e.metrics.ChatRequests.Inc()
	}

	if !e.platform.CheckAccess() {
		if e.metrics != nil {
			e.metrics.PaywallDenials.Inc()
		}
		return &Response{
			Text:      PaywallMessage,
			Persona:   persona,
			Timestamp: time.Now(),
			Paywall:   true,
			Error:     true,
		}, nil
	}

	var lead *leads.Lead
	if leadID != "" {
		if found, err := e.store.Get(leadID); err == nil {
			lead = &found
		}
	}

	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: e.SystemPrompt(lead)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	content := resp.Choices[0].Message.Content
	reply, actions := parseActions(content)

	e.dispatchActions(ctx, actions, lead)
	e.recordConversation(leadID, text, reply)

	return &Response{
		Text:             reply,
		Persona:          persona,
		Timestamp:        time.Now(),
		ThoughtSignature: thoughtSignature(content),
		Actions:          actions,
	}, nil
}

// dispatchActions bridges model actions to CRM and comms channels
func (e *Engine) dispatchActions(ctx context.Context, actions []Action, lead *leads.Lead) {
	contact := comms.Contact{}
	leadID := ""
	if lead != nil {
		leadID = lead.ID
		contact = comms.Contact{
			Name:  lead.Name,
			Phone: lead.Phone,
			Email: lead.Email,
		}
	}

	for _, action := range actions {
		var err error
		switch action.Type {
		case ActionCreateTask:
			subject, _ := action.Payload["subject"].(string)
			priority, _ := action.Payload["priority"].(string)
			if priority == "" {
				priority = "Normal"
			}
			_, err = e.crm.CreateTask(ctx, leadID, subject, "Created by agent", time.Now().AddDate(0, 0, 1), priority)
		case ActionUpdateCadence:
			stage, _ := action.Payload["stage"].(string)
			notes, _ := action.Payload["notes"].(string)
			_, err = e.crm.CreateTask(ctx, leadID, fmt.Sprintf("Cadence: %s", stage), notes, time.Now().AddDate(0, 0, 1), "Normal")
		case ActionHandoff:
			reason, _ := action.Payload["reason"].(string)
			err = e.crm.LogActivity(ctx, contact.Name, "Handoff Requested", "", reason, "")
		case ActionSendSMS, ActionSendEmail, ActionSendPhysicalMail:
			err = e.comms.ExecuteAction(ctx, action.Type, action.Payload, contact)
		default:
			e.log.Warn("ignoring unknown agent action", "type", action.Type)
			continue
		}

		if err != nil {
			e.log.Error("agent action failed", "type", action.Type, "error", err)
		}
	}
}

func (e *Engine) recordConversation(leadID, userText, agentText string) {
	if leadID == "" {
		return
	}
	if err := e.store.AppendConversation(leadID, "user", userText, nil); err != nil {
		e.log.Warn("failed to record user turn", "error", err)
	}
	if err := e.store.AppendConversation(leadID, "agent", agentText, nil); err != nil {
		e.log.Warn("failed to record agent turn", "error", err)
	}
}

// thoughtSignature produces a short fingerprint of the raw model output
// for audit trails
func thoughtSignature(content string) string {
	sum := sha256.Sum256([]byte(time.Now().Format(time.RFC3339Nano) + ":" + content))
	return "tsig_" + hex.EncodeToString(sum[:])[:16]
}
