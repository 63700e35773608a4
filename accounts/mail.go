package accounts

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

const DefaultPasswdURL = "http://localhost:3000/accounts/me/password-reset"

// Mailer delivers account mails.
type Mailer interface {
	SendSignupMail(ctx context.Context, code, email string) error
	SendPasswordResetMail(ctx context.Context, token, username, email string) error
}

// LogMailer writes mails to the log instead of sending them.
type LogMailer struct {
	passwdURL string
}

func NewLogMailer(passwdURL string) *LogMailer {
	if passwdURL == "" {
		passwdURL = DefaultPasswdURL
	}
	return &LogMailer{passwdURL: strings.TrimSuffix(passwdURL, "/")}
}

func (m *LogMailer) SendSignupMail(_ context.Context, code, email string) error {
	log.Info().Str("tag", "accounts").Str("subject", "Signup code").Str("to", email).Str("code", code).Msg("mail")
	return nil
}

func (m *LogMailer) SendPasswordResetMail(_ context.Context, token, username, email string) error {
	log.Info().Str("tag", "accounts").Str("subject", "Password reset").Str("to", email).
		Str("username", username).Str("url", m.passwdURL+"/"+token).Msg("mail")
	return nil
}

// sendMail delivers one mail under a lock keyed on the recipient, so a burst
// of identical requests sends it once. Failures are logged and never reach the caller.
func (s *Service) sendMail(ctx context.Context, name, recipient string, send func(ctx context.Context) error) {
	err := s.limiter.WithLock(ctx, name, recipient, 0, false, func() error {
		return send(ctx)
	})
	if err != nil {
		log.Err(err).Str("mail", name).Msg("Service.sendMail")
	}
}
