package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/stevehedden/kgcatalog/internal/models"
)

func TestOpenSQLiteInMemoryAndMigrate(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	entry := models.CacheEntry{
		Key:       "catalog:ontology",
		Value:     datatypes.JSON(`[{"id":"Q1"}]`),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(&entry).Error)

	var loaded models.CacheEntry
	require.NoError(t, db.Take(&loaded, "key = ?", "catalog:ontology").Error)
	require.JSONEq(t, `[{"id":"Q1"}]`, string(loaded.Value))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
