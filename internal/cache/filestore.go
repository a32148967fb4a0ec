package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/oxhq/stylefx/core"
	"github.com/oxhq/stylefx/internal/model"
)

// blob is the on-disk layout of a FileStore.
type blob struct {
	Version int              `json:"version"`
	Engine  string           `json:"engine"`
	Rules   string           `json:"rules"`
	Files   map[string]Entry `json:"files"`
}

// FileStore keeps the cache in one JSON file, replaced atomically on Save.
type FileStore struct {
	path   string
	writer *core.AtomicWriter
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string, writer *core.AtomicWriter) *FileStore {
	if writer == nil {
		writer = core.NewAtomicWriter(core.DefaultAtomicConfig())
	}
	return &FileStore{path: path, writer: writer}
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", s.path, err)
	}

	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", s.path, err)
	}
	if b.Version != model.CacheFormatVersion {
		return nil, fmt.Errorf("cache %s has format version %d, want %d", s.path, b.Version, model.CacheFormatVersion)
	}
	if b.Files == nil {
		b.Files = make(map[string]Entry)
	}
	for path, entry := range b.Files {
		if entry.Outcome != Unchanged && entry.Outcome != Changed {
			return nil, fmt.Errorf("cache %s: entry %s has unknown outcome %q", s.path, path, entry.Outcome)
		}
	}
	return &State{
		Signature: Signature{EngineVersion: b.Engine, RulesFingerprint: b.Rules},
		Files:     b.Files,
	}, nil
}

func (s *FileStore) Save(ctx context.Context, state *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	files := state.Files
	if files == nil {
		files = map[string]Entry{}
	}
	data, err := json.MarshalIndent(blob{
		Version: model.CacheFormatVersion,
		Engine:  state.Signature.EngineVersion,
		Rules:   state.Signature.RulesFingerprint,
		Files:   files,
	}, "", "  ")
	if err != nil {
		return err
	}
	return s.writer.WriteFile(s.path, append(data, '\n'))
}
