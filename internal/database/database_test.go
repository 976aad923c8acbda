package database

import (
	"path/filepath"
	"testing"

	"catalogsync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestNewSQLiteMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := New("sqlite://"+path, "silent")
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []interface{}{&models.Product{}, &models.Asset{}, &models.ImportRun{}} {
		assert.True(t, db.DB.Migrator().HasTable(table))
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, parseLogLevel("silent"))
	assert.Equal(t, logger.Error, parseLogLevel("ERROR"))
	assert.Equal(t, logger.Info, parseLogLevel("debug"))
	assert.Equal(t, logger.Warn, parseLogLevel(""))
}
