package webhookcreate

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(cfg *Config)
		wantErr string
	}{
		{name: "valid", modify: func(*Config) {}},
		{
			name:    "missing token",
			modify:  func(cfg *Config) { cfg.Discord.Token = "" },
			wantErr: "Token",
		},
		{
			name:    "bad database type",
			modify:  func(cfg *Config) { cfg.DatabaseType = "mysql" },
			wantErr: "DatabaseType",
		},
		{
			name:    "bad embed color",
			modify:  func(cfg *Config) { cfg.Bot.EmbedColor = "blue" },
			wantErr: "bot.embed_color",
		},
		{
			name:    "bad error color",
			modify:  func(cfg *Config) { cfg.Bot.ErrorColor = "#12" },
			wantErr: "bot.error_color",
		},
		{
			name:    "feedback channel not a snowflake",
			modify:  func(cfg *Config) { cfg.Bot.FeedbackChannelID = "general" },
			wantErr: "FeedbackChannelID",
		},
		{
			name:    "support link not a url",
			modify:  func(cfg *Config) { cfg.Bot.SupportLink = "join us" },
			wantErr: "SupportLink",
		},
		{
			name:    "webhook server without public key",
			modify:  func(cfg *Config) { cfg.Discord.WebhookServer.Enabled = true },
			wantErr: "PublicKey",
		},
		{
			name:    "pagination timeout too short",
			modify:  func(cfg *Config) { cfg.Pagination.IdleTimeout = 10 * time.Millisecond },
			wantErr: "IdleTimeout",
		},
		{
			name:    "lookup rate",
			modify:  func(cfg *Config) { cfg.Lookup.RequestsPerSecond = 0 },
			wantErr: "RequestsPerSecond",
		},
		{
			name:    "ai temperature",
			modify:  func(cfg *Config) { cfg.AI.Temperature = 3 },
			wantErr: "Temperature",
		},
		{
			name:    "session max age",
			modify:  func(cfg *Config) { cfg.API.SessionMaxAge = time.Minute },
			wantErr: "SessionMaxAge",
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				cfg := newTestConfig(t)
				tc.modify(cfg)
				err := cfg.Validate()
				if tc.wantErr == "" {
					require.NoError(t, err)
					return
				}
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			},
		)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, dbTypeSQLite, cfg.DatabaseType)
	assert.Equal(t, DefaultPaginationIdleTimeout, cfg.Pagination.IdleTimeout)
	assert.Equal(t, DefaultScriptSearchIdleTimeout, cfg.Pagination.ScriptSearchIdleTimeout)
	assert.Equal(t, 0x0099ff, cfg.Bot.embedColor())
	assert.Equal(t, 0xff0000, cfg.Bot.errorColor())
	assert.False(t, cfg.Bot.supportConfigured())
	assert.False(t, cfg.Bot.feedbackConfigured())

	cfg.Bot.FeedbackChannelID = PlaceholderFeedbackChannelID
	assert.False(t, cfg.Bot.feedbackConfigured())
	cfg.Bot.FeedbackChannelID = "700000000000000001"
	assert.True(t, cfg.Bot.feedbackConfigured())

	// level vars are not shared between configs
	other := DefaultConfig()
	other.LogLevel.Set(slog.LevelError)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel.Level())
}

func TestConfig_LogValueRedacted(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.AI.Token = "sk-very-secret"
	cfg.ImageGen.APIKey = "image-secret"

	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, nil))
	logger.Info("config", "config", cfg)

	out := sb.String()
	assert.NotContains(t, out, "test-token")
	assert.NotContains(t, out, "sk-very-secret")
	assert.NotContains(t, out, "image-secret")
	assert.NotContains(t, out, "test-secret")
	assert.Contains(t, out, "[redacted]")
	assert.Contains(t, out, cfg.Discord.ApplicationID)
}

func TestCORSConfig_GINConfig(t *testing.T) {
	c := DefaultCORSConfig()
	c.AllowOrigins = []string{"https://admin.example.com"}
	gc := c.GINConfig()
	assert.Equal(t, []string{"https://admin.example.com"}, gc.AllowOrigins)
	assert.Equal(t, DefaultCORSMaxAge, gc.MaxAge)
	assert.True(t, gc.AllowCredentials)
	assert.Contains(t, gc.AllowHeaders, xRequestIDHeader)
}

func TestConfig_Redacted(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.AI.Token = "sk-very-secret"
	cfg.API.Secret = "cookie-secret"

	r := cfg.Redacted()
	assert.Equal(t, redactedValue, r.Discord.Token)
	assert.Equal(t, redactedValue, r.AI.Token)
	assert.Equal(t, redactedValue, r.API.Secret)
	assert.Empty(t, r.ImageGen.APIKey)
	assert.Equal(t, cfg.Discord.ApplicationID, r.Discord.ApplicationID)

	// the original isn't modified
	assert.Equal(t, "sk-very-secret", cfg.AI.Token)
	assert.Equal(t, "cookie-secret", cfg.API.Secret)
	assert.NotEqual(t, redactedValue, cfg.Discord.Token)
}
