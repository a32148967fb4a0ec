package models

import (
	"time"

	"gorm.io/datatypes"
)

// CacheRun is the header of one project's fix cache
type CacheRun struct {
	ID      uint   `gorm:"primaryKey"`
	Project string `gorm:"type:varchar(1024);uniqueIndex;not null"`

	// Invalidation
	FormatVersion    int    `gorm:"not null"`
	EngineVersion    string `gorm:"type:varchar(32);not null"`
	RulesFingerprint string `gorm:"type:varchar(64);not null"`

	// Resolved rule map the entries were computed with
	Rules datatypes.JSON `gorm:"type:json"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// Relationships
	Files []CacheFile `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// CacheFile is the cached outcome of one file
type CacheFile struct {
	ID    uint   `gorm:"primaryKey"`
	RunID uint   `gorm:"uniqueIndex:idx_cache_files_run_path;not null"`
	Path  string `gorm:"type:varchar(4096);uniqueIndex:idx_cache_files_run_path;not null"`

	Hash    string `gorm:"type:varchar(64);not null"` // SHA256 of the content
	Outcome string `gorm:"type:varchar(16);not null"` // unchanged or changed
}

// TableName customizations for cleaner names
func (CacheRun) TableName() string  { return "cache_runs" }
func (CacheFile) TableName() string { return "cache_files" }
