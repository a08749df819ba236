package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_OverlaysFileOnDefaults(t *testing.T) {
	path := writeConfig(t, `
mode: release
database:
  host: db.internal
  dbname: books
auth:
  token_ttl: 2h
reservation:
  sweep_cron: "30 6 * * *"
  sweep_on_start: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 3306, cfg.DB.Port, "port keeps its default")
	assert.Equal(t, "books", cfg.DB.DBName)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "30 6 * * *", cfg.Reservation.SweepCron)
	assert.True(t, cfg.Reservation.SweepOnStart)
	assert.Equal(t, "ru", cfg.Mail.Locale)
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, "mode: dev\n")
	t.Setenv("LIBRARY_DB_PASSWORD", "db-pass")
	t.Setenv("LIBRARY_JWT_SECRET", "jwt-secret")
	t.Setenv("LIBRARY_MAIL_PASSWORD", "mail-pass")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db-pass", cfg.DB.Password)
	assert.Equal(t, "jwt-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "mail-pass", cfg.Mail.Password)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "mode: [broken"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "mode: staging\n"))
	assert.ErrorContains(t, err, "invalid mode")

	_, err = Load(writeConfig(t, "mail:\n  enabled: true\n"))
	assert.ErrorContains(t, err, "mail.host")
}
