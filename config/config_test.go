package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := ParseConfig(New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Chat.ReconcileDelay)
	assert.Equal(t, 8, cfg.Chat.CategorizeConcurrency)
	assert.True(t, cfg.Chat.RefreshOnFocus)
	assert.Equal(t, "Messages", cfg.AWS.MessagesTable)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("chat:\n  reconcileDelay: 250ms\n  sortByRecency: true\nserver:\n  port: \"9090\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), content, 0o600))

	v := New()
	v.AddConfigPath(dir)
	require.NoError(t, LoadConfig(v, "test"))

	cfg, err := ParseConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Chat.ReconcileDelay)
	assert.True(t, cfg.Chat.SortByRecency)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	v := New()
	assert.NoError(t, LoadConfig(v, "does-not-exist"))
}
