package agent

import (
	"encoding/json"
	"strings"
)

// Action types the model may request in its structured output
const (
	ActionCreateTask       = "create_task"
	ActionUpdateCadence    = "update_cadence"
	ActionSendSMS          = "send_sms"
	ActionSendEmail        = "send_email"
	ActionSendPhysicalMail = "send_physical_mail"
	ActionHandoff          = "handoff"
)

// Action is a structured channel instruction emitted by the model
type Action struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type actionEnvelope struct {
	Actions []Action `json:"actions"`
}

// parseActions extracts a structured actions block from the model reply.
// The block may arrive as a fenced ```json section or as a trailing JSON
// object with an "actions" key; either way it is stripped from the
// conversational text. Replies with no block yield no actions.
func parseActions(content string) (string, []Action) {
	if text, actions, ok := parseFencedActions(content); ok {
		return text, actions
	}

	idx := strings.Index(content, `{"actions"`)
	if idx < 0 {
		return strings.TrimSpace(content), nil
	}

	var envelope actionEnvelope
	if err := json.Unmarshal([]byte(content[idx:]), &envelope); err != nil {
		return strings.TrimSpace(content), nil
	}
	return strings.TrimSpace(content[:idx]), envelope.Actions
}

func parseFencedActions(content string) (string, []Action, bool) {
	start := strings.Index(content, "```json")
	if start < 0 {
		return "", nil, false
	}

	rest := content[start+len("```json"):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", nil, false
	}

	var envelope actionEnvelope
	if err := json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), &envelope); err != nil {
		return "", nil, false
	}

	text := content[:start] + rest[end+len("```"):]
	return strings.TrimSpace(text), envelope.Actions, true
}
