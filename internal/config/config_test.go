package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 2233
redis:
  addr: "redis.local:6380"
  db: 2
game:
  join_batch_delay_ms: 500
  session_ttl: 5
advisor:
  base_url: "https://llm.local/v1"
  model: "test-model"
  timeout: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 2233, cfg.Server.Port)
	assert.Equal(t, "redis.local:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.JoinBatchDelay())
	assert.Equal(t, 5*time.Minute, cfg.Game.SessionTTLDuration())
	assert.Equal(t, "https://llm.local/v1", cfg.Advisor.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Advisor.TimeoutDuration())
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, `server: {}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 1988, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 200, cfg.Game.JoinBatchDelayMs)
	assert.Equal(t, 10, cfg.Game.SessionTTL)
	assert.Equal(t, "gpt-4o-mini", cfg.Advisor.Model)
	assert.Equal(t, 15*time.Second, cfg.Advisor.TimeoutDuration())
}

func TestLoadRedisPasswordFromEnv(t *testing.T) {
	t.Setenv("REDIS_PASSWORD", "secret-from-env")
	path := writeConfig(t, `
redis:
  password: "from-file"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", cfg.Redis.Password)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1988, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 200*time.Millisecond, cfg.Game.JoinBatchDelay())
	assert.Equal(t, "https://api.openai.com/v1", cfg.Advisor.BaseURL)
}
