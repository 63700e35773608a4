package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/jrsteele09/go-notes-server/internal/config"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// InitialiseSystem creates the superuser on first start. The password is
// taken from config, or generated and logged once.
func (s *Server) InitialiseSystem(ctx context.Context, c config.EnvConfig) error {
	username := c.GetAdminUsername()
	generatedPassword, err := s.createSuperuser(ctx, username, c.GetAdminPassword(), time.Now())
	if err != nil {
		return errors.Wrap(err, "Server.InitialiseSystem")
	}

	if generatedPassword != "" {
		log.Info().
			Str("base_url", c.GetBaseURL()).
			Str("username", username).
			Str("password", generatedPassword).
			Msg("superuser created")
	}
	return nil
}

// createSuperuser returns an empty password when the user already exists.
func (s *Server) createSuperuser(ctx context.Context, username, defaultPassword string, now time.Time) (string, error) {
	existing, err := s.services.Users.GetByUsername(ctx, username)
	if err == nil && existing != nil {
		log.Debug().Str("username", username).Msg("superuser already exists")
		return "", nil
	}
	if err != nil && !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return "", errors.Wrap(err, "Server.createSuperuser lookup")
	}

	password := defaultPassword
	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", errors.Wrap(err, "Server.createSuperuser generate password")
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
	}

	admin := users.New(username, now)
	admin.FirstName = "System"
	admin.LastName = "Administrator"
	admin.Staff = true
	admin.Superuser = true
	if err := admin.SetPassword(password, false, now); err != nil {
		return "", errors.Wrap(err, "Server.createSuperuser password")
	}
	if err := s.services.Users.Upsert(ctx, admin); err != nil {
		return "", errors.Wrap(err, "Server.createSuperuser")
	}
	return password, nil
}
