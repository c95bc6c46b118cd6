package config

import (
	"os"
	"path/filepath"
	"testing"

	"hlsimple/pkg/errs"
	"hlsimple/pkg/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsToMainnet(t *testing.T) {
	t.Setenv("HL_ENV", "")
	t.Setenv("HL_PUBLIC_ADDRESS", "")
	t.Setenv("HL_PRIVATE_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, types.EnvMainnet, cfg.Env)
	assert.True(t, cfg.IsMainnet())
	assert.Equal(t, MainnetAPIURL, cfg.APIURL())
	assert.Equal(t, MainnetWSURL, cfg.WSURL())
}

func TestLoadTestnet(t *testing.T) {
	t.Setenv("HL_ENV", "testnet")
	t.Setenv("HL_PUBLIC_ADDRESS", "0x7Ea2d7B5351317FE024647ef0DAd9A7D20C3eC59")
	t.Setenv("HL_PRIVATE_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsMainnet())
	assert.Equal(t, TestnetAPIURL, cfg.APIURL())
	assert.Equal(t, "0x7Ea2d7B5351317FE024647ef0DAd9A7D20C3eC59", cfg.PublicAddress)
}

func TestLoadRejectsUnknownEnv(t *testing.T) {
	t.Setenv("HL_ENV", "staging")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestLoadTaskConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbols:\n  - SOL\nwatch: true\n"), 0o644))

	cfg, err := LoadTaskConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SOL"}, cfg.Symbols)
	assert.True(t, cfg.Watch)
}

func TestLoadTaskConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watch: false\n"), 0o644))

	cfg, err := LoadTaskConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH"}, cfg.Symbols)

	_, err = LoadTaskConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
