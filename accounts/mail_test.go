package accounts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-notes-server/accounts"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })
	return &buf
}

func TestLogMailer(t *testing.T) {
	buf := captureLog(t)
	mailer := accounts.NewLogMailer("https://notes.example.com/reset/")

	require.NoError(t, mailer.SendPasswordResetMail(context.Background(), "abc", "user", "user@example.com"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "https://notes.example.com/reset/abc", entry["url"])
	require.Equal(t, "user@example.com", entry["to"])

	buf.Reset()
	require.NoError(t, accounts.NewLogMailer("").SendSignupMail(context.Background(), "123456", "new@example.com"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "123456", entry["code"])
	require.Equal(t, "Signup code", entry["subject"])
}
