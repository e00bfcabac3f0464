// Package notification delivers out-of-band messages to users. Today that is
// a single scenario: the one-time passcode email. Delivery is best-effort;
// callers treat failures as retriable (the user can request a fresh code)
// rather than failing the surrounding operation.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"linkup-api/internal/notification/templates"
)

// emailSender abstracts the SMTP transport. Not exposed outside the package.
type emailSender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// Service is the notification gateway consumed by the auth flows.
type Service interface {
	// SendOTPCode renders and delivers the OTP email for the given recipient.
	SendOTPCode(ctx context.Context, to, name, code string) error
}

type service struct {
	log    *slog.Logger
	engine *templates.Engine
	email  emailSender
	from   string
}

// NewService creates a new notification service.
func NewService(log *slog.Logger, email emailSender, from string) Service {
	return &service{
		log:    log,
		engine: templates.NewEngine(),
		email:  email,
		from:   from,
	}
}

func (s *service) SendOTPCode(ctx context.Context, to, name, code string) error {
	rendered, err := templates.Render(s.engine, templates.OTPCode, templates.OTPCodeData{
		Name:         name,
		Code:         code,
		Date:         time.Now().Format("02 January 2006"),
		SupportEmail: s.from,
	})
	if err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}

	s.log.Info("dispatching otp email", "recipient", to)
	if err := s.email.Send(ctx, to, rendered.Subject, rendered.EmailHTML, rendered.EmailText); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}
