package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matifood/internal/config"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "production", cfg.Mode)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "http://localhost:8080", cfg.BackendURL)
	assert.Equal(t, 1<<20, cfg.BodyLimit)
	assert.Contains(t, cfg.Recaptcha.ScriptURL, "recaptcha/api.js")
	assert.False(t, cfg.Mail.Configured())
}

func TestParseOverrides(t *testing.T) {
	cfg, err := config.Parse(map[string]string{
		"PORT":                    ":9000",
		"APP_ENV":                 "Development",
		"BACKEND_URL":             "https://api.matifood.test/",
		"RECAPTCHA_SITE_KEY":      "site-key",
		"RECAPTCHA_SECRET":        "shh",
		"MAILGUN_DOMAIN":          "mg.matifood.test",
		"MAILGUN_API_KEY":         "key-1",
		"MAILGUN_INBOX":           "team@matifood.test",
		"BODY_LIMIT":              "0",
		"REDIS_URL":               "redis://localhost:6379/0",
		"MAILGUN_NEWSLETTER_LIST": "news@mg.matifood.test",
	})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "https://api.matifood.test", cfg.BackendURL)
	assert.Equal(t, "site-key", cfg.Recaptcha.SiteKey)
	assert.Equal(t, "shh", cfg.Recaptcha.Secret)
	assert.True(t, cfg.Mail.Configured())
	assert.Equal(t, "team@matifood.test", cfg.Mail.Inbox)
	assert.Equal(t, "news@mg.matifood.test", cfg.Mail.NewsletterList)
	assert.Equal(t, 1<<20, cfg.BodyLimit)
}

func TestParseRejectsBadInt(t *testing.T) {
	_, err := config.Parse(map[string]string{"BODY_LIMIT": "lots"})
	require.Error(t, err)
}
