package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oxhq/stylefx/internal/model"
	"github.com/oxhq/stylefx/internal/ruleset"
	"github.com/oxhq/stylefx/models"
)

// DBStore keeps the cache in a database, one run row per key. The key
// separates projects sharing one database; the working directory is a
// good choice.
type DBStore struct {
	db    *gorm.DB
	key   string
	rules datatypes.JSON
}

// NewDBStore creates a store over db. rules is stored with the header so
// the cached configuration can be inspected; it takes no part in
// invalidation, the fingerprint does.
func NewDBStore(db *gorm.DB, key string, rules ruleset.Resolved) (*DBStore, error) {
	data, err := json.Marshal(rules)
	if err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}
	return &DBStore{db: db, key: key, rules: datatypes.JSON(data)}, nil
}

func (s *DBStore) Load(ctx context.Context) (*State, error) {
	var run models.CacheRun
	err := s.db.WithContext(ctx).Where("project = ?", s.key).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cache run: %w", err)
	}
	if run.FormatVersion != model.CacheFormatVersion {
		return nil, fmt.Errorf("cache run %q has format version %d, want %d", s.key, run.FormatVersion, model.CacheFormatVersion)
	}

	var files []models.CacheFile
	if err := s.db.WithContext(ctx).Where("run_id = ?", run.ID).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("load cache files: %w", err)
	}

	state := &State{
		Signature: Signature{EngineVersion: run.EngineVersion, RulesFingerprint: run.RulesFingerprint},
		Files:     make(map[string]Entry, len(files)),
	}
	for _, f := range files {
		state.Files[f.Path] = Entry{ContentHash: f.Hash, Outcome: Outcome(f.Outcome)}
	}
	return state, nil
}

// Save replaces the run and all its files in one transaction.
func (s *DBStore) Save(ctx context.Context, state *State) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var run models.CacheRun
		err := tx.Where("project = ?", s.key).First(&run).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			run = models.CacheRun{Project: s.key}
		case err != nil:
			return err
		}

		run.FormatVersion = model.CacheFormatVersion
		run.EngineVersion = state.Signature.EngineVersion
		run.RulesFingerprint = state.Signature.RulesFingerprint
		run.Rules = s.rules
		if err := tx.Save(&run).Error; err != nil {
			return fmt.Errorf("save cache run: %w", err)
		}

		if err := tx.Where("run_id = ?", run.ID).Delete(&models.CacheFile{}).Error; err != nil {
			return fmt.Errorf("clear cache files: %w", err)
		}
		if len(state.Files) == 0 {
			return nil
		}

		files := make([]models.CacheFile, 0, len(state.Files))
		for path, entry := range state.Files {
			files = append(files, models.CacheFile{
				RunID:   run.ID,
				Path:    path,
				Hash:    entry.ContentHash,
				Outcome: string(entry.Outcome),
			})
		}
		if err := tx.CreateInBatches(files, 200).Error; err != nil {
			return fmt.Errorf("save cache files: %w", err)
		}
		return nil
	})
}
