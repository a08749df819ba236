package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"library-backend/internal/platform/config"
	"library-backend/internal/platform/logging"
)

func TestTLSPolicy(t *testing.T) {
	for in, want := range map[string]mail.TLSPolicy{
		"":              mail.TLSOpportunistic,
		"opportunistic": mail.TLSOpportunistic,
		"Mandatory":     mail.TLSMandatory,
		"none":          mail.NoTLS,
	} {
		got, err := tlsPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := tlsPolicy("starttls-ish")
	assert.Error(t, err)
}

func TestBuildMessage(t *testing.T) {
	m, err := buildMessage("library@example.com", "alice@example.com", "Книга возвращена", "body")
	require.NoError(t, err)

	assert.Equal(t, []string{"<library@example.com>"}, m.GetFromString())
	assert.Equal(t, []string{"<alice@example.com>"}, m.GetToString())

	_, err = buildMessage("library@example.com", "not an address", "s", "b")
	assert.Error(t, err)
}

func TestNewSMTPSender(t *testing.T) {
	s, err := NewSMTPSender(config.MailConfig{
		Host: "smtp.example.com", Port: 587, Auth: true,
		Username: "u", Password: "p", From: "library@example.com", TLS: "mandatory",
	})
	require.NoError(t, err)
	assert.Equal(t, "library@example.com", s.from)

	_, err = NewSMTPSender(config.MailConfig{Host: "smtp.example.com", TLS: "bogus"})
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	err := NewLogSender(log).Send(context.Background(), "alice@example.com", "subject", "hello")

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "to=alice@example.com")
	assert.Contains(t, buf.String(), "component=mailer")
}
