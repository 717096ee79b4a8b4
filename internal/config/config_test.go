package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "10s", cfg.ShutdownTimeout)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, "image_metadata.db", cfg.Store.SQLite.Path)
	assert.Equal(t, "exiftool", cfg.Extractor.Command)
	assert.Equal(t, 100, cfg.Scan.BatchSize)
	assert.Equal(t, 24, cfg.Scan.Workers)
	assert.Equal(t, []string{"*.png", "*.jpg", "*.jpeg"}, cfg.Scan.Patterns)
	assert.Equal(t, "Parameters", cfg.Search.DefaultKey)
}

func TestLoadConfig_Override(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("scan.workers", 4)
	viper.Set("store.type", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, "memory", cfg.Store.Type)
}
