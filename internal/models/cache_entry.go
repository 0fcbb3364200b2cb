package models

import (
	"time"

	"gorm.io/datatypes"
)

// CacheEntry represents a cached query result stored in the database backend.
// Values are always JSON: either an encoded row set or a counter.
type CacheEntry struct {
	Key       string         `gorm:"primaryKey;size:256"`
	Value     datatypes.JSON `gorm:"type:json"`
	ExpiresAt time.Time      `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
