package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENV", "development")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.KVBackend)
	assert.Equal(t, 30, cfg.MaxConversations)
	assert.Equal(t, 120*time.Second, cfg.ResponderTimeout)
	assert.Equal(t, 55*time.Second, cfg.ResponderAttemptTimeout)
	assert.Less(t, cfg.ResponderAttemptTimeout*time.Duration(cfg.ResponderMaxRetries), cfg.ResponderTimeout,
		"every attempt fits in the send budget")
	assert.Empty(t, cfg.TrashRetentionCron)
}

func TestLoadFromEnv_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENV", "development")
	t.Setenv("KV_BACKEND", "Pebble")
	t.Setenv("MAX_CONVERSATIONS", "5")
	t.Setenv("RESPONDER_TIMEOUT", "0")
	t.Setenv("LOGIN_WINDOW", "2m")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "pebble", cfg.KVBackend)
	assert.Equal(t, 5, cfg.MaxConversations)
	assert.Equal(t, time.Duration(0), cfg.ResponderTimeout)
	assert.Equal(t, 2*time.Minute, cfg.LoginWindow)
}

func TestLoadFromEnv_FileThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "agentdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: \"9090\"\nmax_conversations: 12\ntrash_retention_cron: \"0 3 * * *\"\n"), 0o600))
	t.Setenv("ENV", "development")
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, 12, cfg.MaxConversations)
	assert.Equal(t, "0 3 * * *", cfg.TrashRetentionCron)
}

func TestLoadFromEnv_BadNumber(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENV", "development")
	t.Setenv("MAX_CONVERSATIONS", "lots")

	_, err := LoadFromEnv()
	assert.ErrorContains(t, err, "MAX_CONVERSATIONS")
}

func TestValidate_Production(t *testing.T) {
	cfg := Defaults()
	cfg.Environment = "production"
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET_KEY")

	cfg.JWTSecretKey = "s3cret"
	cfg.LLMAPIKey = "sk-live"
	assert.NoError(t, cfg.Validate())

	cfg.KVBackend = "memory"
	assert.Error(t, cfg.Validate())
}

func TestValidate_Redis(t *testing.T) {
	cfg := Defaults()
	cfg.KVBackend = "redis"
	assert.ErrorContains(t, cfg.Validate(), "REDIS_URL")
	cfg.RedisURL = "redis://localhost:6379/0"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_AttemptTimeout(t *testing.T) {
	cfg := Defaults()
	cfg.ResponderAttemptTimeout = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "RESPONDER_ATTEMPT_TIMEOUT")

	cfg.ResponderAttemptTimeout = cfg.ResponderTimeout + time.Second
	assert.ErrorContains(t, cfg.Validate(), "cannot exceed")

	cfg.ResponderTimeout = 0
	assert.NoError(t, cfg.Validate(), "an unbounded send allows any attempt timeout")
}

func TestLoadFromEnv_AttemptTimeout(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENV", "development")
	t.Setenv("RESPONDER_ATTEMPT_TIMEOUT", "20")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, cfg.ResponderAttemptTimeout)
}
