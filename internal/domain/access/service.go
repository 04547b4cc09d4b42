package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsort/docsort-api/internal/pkg/email"
)

var (
	// ErrInvalidCaptcha is returned when the captcha token fails
	// verification
	ErrInvalidCaptcha = errors.New("invalid captcha")

	// ErrNotConfigured is returned when no admin recipient is set
	ErrNotConfigured = errors.New("access requests not configured")
)

// Mailer sends email notifications.
type Mailer interface {
	Send(ctx context.Context, msg *email.Message) error
}

// Service verifies access requests and notifies the administrator.
type Service struct {
	captcha    CaptchaVerifier
	mailer     Mailer
	adminEmail string
}

func NewService(captcha CaptchaVerifier, mailer Mailer, adminEmail string) *Service {
	return &Service{
		captcha:    captcha,
		mailer:     mailer,
		adminEmail: adminEmail,
	}
}

// Submit verifies the captcha and emails the access request to the
// administrator.
func (s *Service) Submit(ctx context.Context, req *Request) error {
	if s.adminEmail == "" || s.mailer == nil {
		return ErrNotConfigured
	}

	ok, err := s.captcha.Verify(ctx, req.RecaptchaToken)
	if err != nil {
		return fmt.Errorf("verify captcha: %w", err)
	}
	if !ok {
		return ErrInvalidCaptcha
	}

	msg := email.AccessRequestEmail(s.adminEmail, req.Email, req.BusinessType, req.IntendedUse)
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	return nil
}
