// Package mailer sends templated HTML email.
package mailer

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"

	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names understood by Send.
const (
	TemplateContactSupport    = "contact_support"
	TemplateContactAck        = "contact_ack"
	TemplateOrderConfirmation = "order_confirmation"
	TemplateOrderStatus       = "order_status"
)

// ErrUnknownTemplate is returned when a message names a template that does not exist.
var ErrUnknownTemplate = errors.New("unknown email template")

// Message is a single email rendered from a named template.
type Message struct {
	To       []string
	ReplyTo  string
	Subject  string
	Template string
	Data     any
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds SMTP connection details.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers messages through an SMTP relay.
type SMTPMailer struct {
	cfg       Config
	templates *template.Template
}

// NewSMTPMailer parses the bundled templates and returns a mailer for the given relay.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &SMTPMailer{cfg: cfg, templates: tmpl}, nil
}

// Send renders and delivers msg, opening a new SMTP session per call.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out, err := m.build(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("failed to send %q to %v: %w", msg.Subject, msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) build(msg Message) (*mail.Msg, error) {
	tmpl := m.templates.Lookup(msg.Template + ".html")
	if tmpl == nil {
		return nil, fmt.Errorf("%q: %w", msg.Template, ErrUnknownTemplate)
	}

	out := mail.NewMsg()
	if err := out.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := out.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}
	out.Subject(msg.Subject)
	if err := out.SetBodyHTMLTemplate(tmpl, msg.Data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", msg.Template, err)
	}
	return out, nil
}

// LogMailer writes messages to the log instead of sending them. Used when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("Email (%s) to %v: %s", msg.Template, msg.To, msg.Subject)
	return nil
}
