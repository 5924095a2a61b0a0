package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skbidisigma1/groupme-cli/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultAPIBase, cfg.APIBase)
	assert.Equal(t, DefaultPushURL, cfg.PushURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.Token)
}

func TestValidateMissingToken(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingToken)
	assert.True(t, errors.IsInvalid(err))
}

func TestValidateBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Token = "tok"
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `token: file-token
api_base: https://api.example.test/v3
http_timeout: 5s
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Token)
	assert.Equal(t, "https://api.example.test/v3", cfg.APIBase)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset fields fall back to defaults.
	assert.Equal(t, DefaultPushURL, cfg.PushURL)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadTokenFromEnv(t *testing.T) {
	t.Setenv(EnvToken, "env-token")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestLoadFileTokenWinsOverEnv(t *testing.T) {
	t.Setenv(EnvToken, "env-token")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: file-token\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Token)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoadNoTokenAnywhere(t *testing.T) {
	t.Setenv(EnvToken, "")
	_, err := Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingToken)
}
