package database

import (
	"github.com/stevehedden/kgcatalog/internal/models"
)

// migratedModels lists every model the schema migration manages. The catalog
// persists only the result cache; everything else is derived live.
func migratedModels() []any {
	return []any{
		&models.CacheEntry{},
	}
}
