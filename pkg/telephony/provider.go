package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/outreach/pkg/logger"
)

// CallProvider triggers outbound telephony. The returned call ID may be
// empty; callers treat a missing ID as non-fatal.
type CallProvider interface {
	TriggerCall(ctx context.Context, toNumber string, ncco NCCO) (string, error)
}

// SimulatedProvider stands in for the voice vendor when credentials are
// missing. Every dial succeeds with a synthetic call UUID.
type SimulatedProvider struct {
	log logger.Logger
}

// NewSimulatedProvider creates a simulation-mode call provider
func NewSimulatedProvider(log logger.Logger) *SimulatedProvider {
	if log == nil {
		log = logger.Default()
	}
	return &SimulatedProvider{log: log}
}

// TriggerCall logs the dial and returns a synthetic identifier
func (p *SimulatedProvider) TriggerCall(ctx context.Context, toNumber string, ncco NCCO) (string, error) {
	p.log.Info("simulated outbound call", "to", toNumber, "actions", len(ncco))
	return "sim_" + uuid.NewString(), nil
}

// VonageConfig holds Vonage Voice API credentials
type VonageConfig struct {
	APIKey        string
	APISecret     string
	ApplicationID string
	FromNumber    string
}

// VonageProvider triggers real calls through the Vonage Voice REST API
type VonageProvider struct {
	config     VonageConfig
	httpClient *http.Client
	baseURL    string
	log        logger.Logger
}

// NewVonageProvider creates a Vonage-backed call provider
func NewVonageProvider(cfg VonageConfig, log logger.Logger) *VonageProvider {
	if log == nil {
		log = logger.Default()
	}
	return &VonageProvider{
		config:     cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://api.nexmo.com/v1/calls",
		log:        log,
	}
}

// Configured reports whether credentials are present
func (p *VonageProvider) Configured() bool {
	return p.config.APIKey != "" && p.config.ApplicationID != ""
}

type createCallRequest struct {
	To   []map[string]string `json:"to"`
	From map[string]string   `json:"from"`
	NCCO NCCO                `json:"ncco"`
}

type createCallResponse struct {
	UUID   string `json:"uuid"`
	Status string `json:"status"`
}

// TriggerCall initiates an outbound call with the specified NCCO
func (p *VonageProvider) TriggerCall(ctx context.Context, toNumber string, ncco NCCO) (string, error) {
	payload := createCallRequest{
		To:   []map[string]string{{"type": "phone", "number": toNumber}},
		From: map[string]string{"type": "phone", "number": p.config.FromNumber},
		NCCO: ncco,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal call request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(p.config.APIKey, p.config.APISecret)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to trigger outbound call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("call API returned status %d", resp.StatusCode)
	}

	var result createCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode call response: %w", err)
	}

	return result.UUID, nil
}
