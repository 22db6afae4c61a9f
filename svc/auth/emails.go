package auth

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/blogkit/pkg/async"
	"github.com/dmitrymomot/blogkit/pkg/email"
	"github.com/dmitrymomot/blogkit/pkg/logger"
)

const confirmBody = `<p>Hi,</p>
<p>Welcome to %s! Please confirm your account by following this link:</p>
<p><a href="%s">%s</a></p>
<p>If you did not register, simply ignore this email.</p>`

const resetBody = `<p>Hi,</p>
<p>To reset your %s password, follow this link:</p>
<p><a href="%s">%s</a></p>
<p>If you did not request a password reset, simply ignore this email.</p>`

const emailChangeBody = `<p>Hi,</p>
<p>To confirm your new %s email address, follow this link:</p>
<p><a href="%s">%s</a></p>
<p>If you did not request an email change, simply ignore this email.</p>`

func composeConfirmEmail(cfg Config, sendTo, tok string) email.SendEmailParams {
	link := fmt.Sprintf("%s/auth/confirm?token=%s", cfg.BaseURL, tok)
	return email.SendEmailParams{
		SendTo:   sendTo,
		Subject:  fmt.Sprintf("%s - confirm your account", cfg.AppName),
		BodyHTML: fmt.Sprintf(confirmBody, cfg.AppName, link, link),
		Tag:      "confirm",
	}
}

func composeResetEmail(cfg Config, sendTo, tok string) email.SendEmailParams {
	link := fmt.Sprintf("%s/auth/reset?token=%s", cfg.BaseURL, tok)
	return email.SendEmailParams{
		SendTo:   sendTo,
		Subject:  fmt.Sprintf("%s - reset your password", cfg.AppName),
		BodyHTML: fmt.Sprintf(resetBody, cfg.AppName, link, link),
		Tag:      "reset",
	}
}

func composeEmailChangeEmail(cfg Config, sendTo, tok string) email.SendEmailParams {
	link := fmt.Sprintf("%s/auth/change-email?token=%s", cfg.BaseURL, tok)
	return email.SendEmailParams{
		SendTo:   sendTo,
		Subject:  fmt.Sprintf("%s - confirm your new email address", cfg.AppName),
		BodyHTML: fmt.Sprintf(emailChangeBody, cfg.AppName, link, link),
		Tag:      "change_email",
	}
}

// sendAsync dispatches an email without blocking the calling request.
// Delivery outlives the request context; failures are logged, not returned,
// because the user can always request another link.
func (s *Service) sendAsync(ctx context.Context, params email.SendEmailParams) {
	future := async.Async(context.WithoutCancel(ctx), params,
		func(ctx context.Context, p email.SendEmailParams) (struct{}, error) {
			return struct{}{}, s.mailer.SendEmail(ctx, p)
		})

	go func() {
		if _, err := future.Await(); err != nil {
			s.log.Error("failed to send email", logger.Error(err),
				logger.Event(params.Tag))
		}
	}()
}
