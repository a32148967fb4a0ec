package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stylefx/models"
)

func TestConnect(t *testing.T) {
	tests := []struct {
		name  string
		dsn   string
		debug bool
	}{
		{name: "memory database", dsn: ":memory:"},
		{name: "memory database with debug", dsn: ":memory:", debug: true},
		{name: "file database", dsn: filepath.Join(t.TempDir(), "cache.db")},
		{name: "nested directory creation", dsn: filepath.Join(t.TempDir(), "nested", "path", "cache.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Connect(tt.dsn, tt.debug)
			require.NoError(t, err)
			defer Close(db)

			sqlDB, err := db.DB()
			require.NoError(t, err)
			require.NoError(t, sqlDB.Ping())

			var fkEnabled int
			require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fkEnabled).Error)
			assert.Equal(t, 1, fkEnabled)

			for _, table := range []string{"cache_runs", "cache_files"} {
				assert.True(t, db.Migrator().HasTable(table), "table %s should exist", table)
			}

			run := models.CacheRun{Project: "p", FormatVersion: 1, EngineVersion: "1.0.0", RulesFingerprint: "f"}
			require.NoError(t, db.Create(&run).Error)
			assert.NotZero(t, run.ID)

			if !isMemory(tt.dsn) {
				_, err := os.Stat(tt.dsn)
				assert.NoError(t, err)
			}
		})
	}
}

func TestConnectErrors(t *testing.T) {
	_, err := Connect("", false)
	assert.Error(t, err)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	_, err = Connect(filepath.Join(blocker, "sub", "cache.db"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create database directory")
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Connect(":memory:", false)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.CacheFile{}))
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		dsn      string
		expected bool
	}{
		{"http://example.com", true},
		{"https://example.com", true},
		{"libsql://test.turso.io", true},
		{"/path/to/database.db", false},
		{"database.db", false},
		{":memory:", false},
		{"", false},
		{"http", false},
		{"https:/", false},
		{"libsq", false},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.expected, isURL(tt.dsn))
		})
	}
}

func TestIsMemory(t *testing.T) {
	assert.True(t, isMemory(":memory:"))
	assert.True(t, isMemory("file::memory:?cache=shared"))
	assert.False(t, isMemory("memory.db"))
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)", withForeignKeys("a.db"))
	assert.Equal(t, "a.db?mode=rwc&_pragma=foreign_keys(1)", withForeignKeys("a.db?mode=rwc"))
}
