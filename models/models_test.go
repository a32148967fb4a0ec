package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(&CacheRun{}, &CacheFile{}))
	return db
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "cache_runs", CacheRun{}.TableName())
	assert.Equal(t, "cache_files", CacheFile{}.TableName())
}

func TestCacheRunWithFiles(t *testing.T) {
	db := setupTestDB(t)

	run := CacheRun{
		Project:          "/work/app",
		FormatVersion:    1,
		EngineVersion:    "1.0.0",
		RulesFingerprint: "abc",
		Rules:            datatypes.JSON(`{"line_ending":true}`),
		Files: []CacheFile{
			{Path: "a.go", Hash: "h1", Outcome: "unchanged"},
			{Path: "b.go", Hash: "h2", Outcome: "changed"},
		},
	}
	require.NoError(t, db.Create(&run).Error)
	assert.NotZero(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	var loaded CacheRun
	require.NoError(t, db.Preload("Files").Where("project = ?", "/work/app").First(&loaded).Error)
	assert.Equal(t, "abc", loaded.RulesFingerprint)
	assert.JSONEq(t, `{"line_ending":true}`, string(loaded.Rules))
	assert.Len(t, loaded.Files, 2)
}

func TestCacheRunProjectUnique(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&CacheRun{Project: "p", FormatVersion: 1, EngineVersion: "1", RulesFingerprint: "x"}).Error)
	err := db.Create(&CacheRun{Project: "p", FormatVersion: 1, EngineVersion: "1", RulesFingerprint: "y"}).Error
	assert.Error(t, err)
}

func TestCacheFilePathUniquePerRun(t *testing.T) {
	db := setupTestDB(t)

	one := CacheRun{Project: "one", FormatVersion: 1, EngineVersion: "1", RulesFingerprint: "x"}
	two := CacheRun{Project: "two", FormatVersion: 1, EngineVersion: "1", RulesFingerprint: "x"}
	require.NoError(t, db.Create(&one).Error)
	require.NoError(t, db.Create(&two).Error)

	require.NoError(t, db.Create(&CacheFile{RunID: one.ID, Path: "a.go", Hash: "h", Outcome: "unchanged"}).Error)
	require.NoError(t, db.Create(&CacheFile{RunID: two.ID, Path: "a.go", Hash: "h", Outcome: "unchanged"}).Error)
	assert.Error(t, db.Create(&CacheFile{RunID: one.ID, Path: "a.go", Hash: "h2", Outcome: "changed"}).Error)
}

func TestCacheFilesCascade(t *testing.T) {
	db := setupTestDB(t)

	run := CacheRun{
		Project: "p", FormatVersion: 1, EngineVersion: "1", RulesFingerprint: "x",
		Files: []CacheFile{{Path: "a.go", Hash: "h", Outcome: "unchanged"}},
	}
	require.NoError(t, db.Create(&run).Error)
	require.NoError(t, db.Delete(&CacheRun{}, run.ID).Error)

	var count int64
	require.NoError(t, db.Model(&CacheFile{}).Count(&count).Error)
	assert.Zero(t, count)
}
