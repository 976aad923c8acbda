package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite://./data/catalog.db", cfg.Database.URL)
	assert.True(t, cfg.Import.Commerce)
	assert.Equal(t, "pjm_", cfg.Import.MediaPrefix)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, int64(40000000), cfg.Storage.ThumbnailMaxPixels)
	assert.Equal(t, 30*time.Second, cfg.Export.HTTPTimeout)
	assert.Equal(t, cfg.Import.DataRoot, cfg.Export.OutputDir, "export writes into the data root by default")
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://catalog@db/catalog")
	t.Setenv("IMPORT_DATA_ROOT", "/srv/feed")
	t.Setenv("IMPORT_COMMERCE_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("API_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://catalog@db/catalog", cfg.Database.URL)
	assert.False(t, cfg.Import.Commerce)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "0.0.0.0:9090", cfg.API.Address())
	assert.Equal(t, filepath.Join("/srv/feed", "products.json"), cfg.Import.FeedPath())
}

func TestFeedPathAbsolute(t *testing.T) {
	cfg := ImportConfig{DataRoot: "/srv/feed", FeedFile: "/tmp/other.json"}

	assert.Equal(t, "/tmp/other.json", cfg.FeedPath())
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("EXPORT_HTTP_TIMEOUT", "soon")

	_, err := Load()

	assert.Error(t, err)
}
