package cmd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigCommand(t *testing.T) {
	envFile := writeEnvFile(
		t, `
WC_DISCORD_TOKEN=super-secret-token
WC_DISCORD_APPLICATION_ID=100000000000000001
WC_AI_TOKEN=super-secret-ai-token
WC_API_SECRET=super-secret-cookie
WC_PAGINATION_IDLE_TIMEOUT=90s
`,
	)
	t.Cleanup(
		func() {
			validateConfig = false
		},
	)

	out, err := executeRoot(t, fmt.Sprintf("--config=%s", envFile), "config")
	require.NoError(t, err)

	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "[redacted]")
	assert.Contains(t, out, "100000000000000001")

	var printed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &printed))
	pagination, ok := printed["pagination"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1m30s", pagination["idle_timeout"])
	assert.Equal(t, "INFO", pagination["log_level"])

	// the loaded config still has the real values
	assert.Equal(t, "super-secret-token", cfg.Discord.Token)

	_, err = executeRoot(t, fmt.Sprintf("--config=%s", envFile), "config", "--validate")
	assert.NoError(t, err)
}

func TestConfigCommand_ValidateFails(t *testing.T) {
	envFile := writeEnvFile(t, "WC_BOT_EMBED_COLOR=blue\n")
	t.Cleanup(
		func() {
			validateConfig = false
		},
	)

	_, err := executeRoot(t, fmt.Sprintf("--config=%s", envFile), "config", "--validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
