package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/jordanlanch/outreach/pkg/logger"
	"github.com/jordanlanch/outreach/pkg/platform"
)

// Config holds Stripe configuration
type Config struct {
	SecretKey     string
	WebhookSecret string
	PricePremium  string
	SuccessURL    string
	CancelURL     string
}

// CheckoutResponse is returned to the client to redirect into Stripe
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

// Service handles Stripe billing for the business subscription. When no
// secret key is configured, upgrades complete immediately in demo mode.
type Service struct {
	platform *platform.Manager
	config   Config
	log      logger.Logger
}

// NewService creates a billing service bound to the platform manager
func NewService(pm *platform.Manager, config Config, log logger.Logger) *Service {
	if config.SecretKey != "" {
		stripe.Key = config.SecretKey
	}
	return &Service{platform: pm, config: config, log: log}
}

// Configured reports whether real Stripe payments are enabled
func (s *Service) Configured() bool {
	return s.config.SecretKey != ""
}

// CreateCheckoutSession starts a Stripe checkout for the premium plan.
// In demo mode the upgrade is applied directly and no session is created.
func (s *Service) CreateCheckoutSession(ctx context.Context) (*CheckoutResponse, error) {
	if !s.Configured() {
		s.log.Info("stripe not configured, applying demo upgrade")
		if err := s.platform.Upgrade(); err != nil {
			return nil, err
		}
		return &CheckoutResponse{SessionID: "demo", URL: s.config.SuccessURL}, nil
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.config.PricePremium),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.config.SuccessURL),
		CancelURL:  stripe.String(s.config.CancelURL),
		Metadata: map[string]string{
			"plan": "Premium",
		},
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// HandleWebhook processes Stripe webhook events. Only completed
// checkouts mutate the subscription; everything else is logged.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}

	s.log.Info("stripe webhook received", "type", event.Type)

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(event)
	case "customer.subscription.deleted":
		s.log.Warn("subscription cancelled via stripe")
		return nil
	default:
		s.log.Debug("unhandled webhook event", "type", event.Type)
	}
	return nil
}

func (s *Service) handleCheckoutCompleted(event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	s.log.Info("checkout completed", "session_id", sess.ID)
	return s.platform.Upgrade()
}
