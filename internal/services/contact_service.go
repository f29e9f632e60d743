package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/pkg/mailer"

	"golang.org/x/sync/errgroup"
)

// ContactService forwards contact-form submissions to support and acknowledges them to the sender.
type ContactService struct {
	mailer       mailer.Mailer
	supportEmail string
}

// NewContactService creates a new ContactService.
func NewContactService(m mailer.Mailer, supportEmail string) *ContactService {
	return &ContactService{mailer: m, supportEmail: supportEmail}
}

// Submit sends the support email and the acknowledgement concurrently. It fails if either send fails.
func (s *ContactService) Submit(ctx context.Context, req models.ContactRequest) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.mailer.Send(ctx, mailer.Message{
			To:       []string{s.supportEmail},
			ReplyTo:  req.Email,
			Subject:  "Contact: " + req.Subject,
			Template: mailer.TemplateContactSupport,
			Data:     req,
		})
	})
	g.Go(func() error {
		return s.mailer.Send(ctx, mailer.Message{
			To:       []string{req.Email},
			Subject:  "We received your message",
			Template: mailer.TemplateContactAck,
			Data:     req,
		})
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to send contact email: %w", err)
	}
	return nil
}
