package comms

import (
	"context"
	"errors"
	"fmt"

	"github.com/jordanlanch/outreach/pkg/logger"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	// ErrNoDestination is returned when the lead has no address for the channel
	ErrNoDestination = errors.New("no destination for channel")
	// ErrUnknownChannel is returned for unrecognized action types
	ErrUnknownChannel = errors.New("unknown communication channel")
)

// SMSProvider defines the interface for SMS delivery providers (Vonage, Twilio, etc.)
type SMSProvider interface {
	SendSMS(ctx context.Context, to, from, body string) (string, error)
}

// EmailProvider sends outbound email
type EmailProvider interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// MailProvider triggers physical mail delivery (Lob, PostGrid, etc.)
type MailProvider interface {
	SendLetter(ctx context.Context, toAddress, template string) error
}

// Contact is the destination context for multi-channel actions
type Contact struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// Orchestrator bridges agent actions to physical communication channels.
// Missing providers degrade to logging so a partially configured install
// still works end to end.
type Orchestrator struct {
	sms        SMSProvider
	email      EmailProvider
	mail       MailProvider
	fromNumber string
	log        logger.Logger
}

// NewOrchestrator creates a comms orchestrator; any provider may be nil
func NewOrchestrator(sms SMSProvider, email EmailProvider, mailer MailProvider, fromNumber string, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Default()
	}
	return &Orchestrator{
		sms:        sms,
		email:      email,
		mail:       mailer,
		fromNumber: fromNumber,
		log:        log,
	}
}

// SendSMS sends an SMS follow-up
func (o *Orchestrator) SendSMS(ctx context.Context, to, message string) error {
	if to == "" {
		return ErrNoDestination
	}
	if o.sms == nil {
		o.log.Info("sms channel not configured, logging only", "to", to)
		return nil
	}

	id, err := o.sms.SendSMS(ctx, to, o.fromNumber, message)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	o.log.Info("sms sent", "to", to, "message_id", id)
	return nil
}

// SendEmail sends a professional email follow-up
func (o *Orchestrator) SendEmail(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return ErrNoDestination
	}
	if o.email == nil {
		o.log.Info("email channel not configured, logging only", "to", to, "subject", subject)
		return nil
	}

	if err := o.email.SendEmail(ctx, to, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	o.log.Info("email sent", "to", to, "subject", subject)
	return nil
}

// SendPhysicalMail triggers a physical mail delivery
func (o *Orchestrator) SendPhysicalMail(ctx context.Context, toAddress, template string) error {
	if toAddress == "" {
		return ErrNoDestination
	}
	if o.mail == nil {
		o.log.Info("physical mail channel not configured, logging only", "to", toAddress, "template", template)
		return nil
	}

	if err := o.mail.SendLetter(ctx, toAddress, template); err != nil {
		return fmt.Errorf("failed to send physical mail: %w", err)
	}
	o.log.Info("physical mail queued", "to", toAddress, "template", template)
	return nil
}

// ExecuteAction routes an agent action to the matching channel
func (o *Orchestrator) ExecuteAction(ctx context.Context, actionType string, payload map[string]any, contact Contact) error {
	switch actionType {
	case "send_sms":
		return o.SendSMS(ctx, contact.Phone, stringValue(payload, "message"))
	case "send_email":
		return o.SendEmail(ctx, contact.Email, stringValue(payload, "subject"), stringValue(payload, "body"))
	case "send_physical_mail":
		address := stringValue(payload, "address")
		if address == "" {
			address = contact.Address
		}
		template := stringValue(payload, "template")
		if template == "" {
			template = "Default"
		}
		return o.SendPhysicalMail(ctx, address, template)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownChannel, actionType)
	}
}

func stringValue(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

// SendGridEmailProvider sends email through SendGrid
type SendGridEmailProvider struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGridEmailProvider creates a SendGrid-backed email provider
func NewSendGridEmailProvider(apiKey, from, fromName string) *SendGridEmailProvider {
	return &SendGridEmailProvider{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

// SendEmail sends a single email
func (p *SendGridEmailProvider) SendEmail(ctx context.Context, to, subject, body string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail(p.fromName, p.from),
		subject,
		mail.NewEmail("", to),
		body,
		body,
	)

	resp, err := p.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
