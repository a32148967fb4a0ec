// Package cache remembers, per file, the content hash of the last run and
// whether that content needed fixing, so unchanged files are skipped.
//
// The whole cache is tied to a Signature. Entries written under another
// engine version or another set of active fixers are discarded on load.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/logging"
	"github.com/oxhq/stylefx/internal/model"
)

// Outcome is what the last run found for a file.
type Outcome string

const (
	Unchanged Outcome = "unchanged"
	Changed   Outcome = "changed"
)

// Entry is the cached state of one file.
type Entry struct {
	ContentHash string  `json:"hash"`
	Outcome     Outcome `json:"outcome"`
}

// Signature identifies the configuration a cache was built with.
type Signature struct {
	EngineVersion    string
	RulesFingerprint string
}

// NewSignature returns the signature of the current engine running the
// active fixers, in order, with their options. language is the forced
// tokenizer language, empty when languages are detected per file.
func NewSignature(active []fixer.Active, language string) Signature {
	type activeRule struct {
		Name    string         `json:"name"`
		Options map[string]any `json:"options,omitempty"`
	}
	payload := struct {
		Language string       `json:"language,omitempty"`
		Fixers   []activeRule `json:"fixers"`
	}{Language: language, Fixers: make([]activeRule, 0, len(active))}
	for _, a := range active {
		payload.Fixers = append(payload.Fixers, activeRule{Name: a.Name(), Options: a.Config})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		data = fmt.Appendf(nil, "%s %v", language, payload.Fixers)
	}
	sum := sha256.Sum256(data)
	return Signature{
		EngineVersion:    model.Version,
		RulesFingerprint: hex.EncodeToString(sum[:]),
	}
}

// State is everything a Store persists.
type State struct {
	Signature Signature
	Files     map[string]Entry
}

// Store persists cache state. Load returns a nil state and no error when
// nothing was stored yet.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
}

// Manager is the in-memory view of the cache for one run. Lookup is safe
// for concurrent use; Record and Flush belong to the coordinator.
type Manager struct {
	store     Store
	signature Signature
	logger    *slog.Logger
	disabled  bool

	mu      sync.RWMutex
	entries map[string]Entry
	dirty   bool

	hits   atomic.Int64
	misses atomic.Int64
}

// NewManager creates a manager over store. Call Load before the first
// Lookup.
func NewManager(store Store, signature Signature, logger *slog.Logger) *Manager {
	return &Manager{
		store:     store,
		signature: signature,
		logger:    logging.OrDiscard(logger),
		entries:   make(map[string]Entry),
	}
}

// Disabled returns a manager that always misses and never persists.
func Disabled() *Manager {
	return &Manager{
		disabled: true,
		logger:   logging.Discard(),
		entries:  make(map[string]Entry),
	}
}

// Enabled reports whether the manager is backed by a store.
func (m *Manager) Enabled() bool {
	return !m.disabled && m.store != nil
}

// Load reads the persisted state. Unreadable or corrupt state is logged
// and returned as an error, but the manager is usable either way: it then
// starts empty. A state with another signature is dropped silently.
func (m *Manager) Load(ctx context.Context) error {
	if !m.Enabled() {
		return nil
	}
	state, err := m.store.Load(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)

	if err != nil {
		m.dirty = true
		m.logger.Warn("cache unreadable, starting empty", "error", err)
		return err
	}
	if state == nil {
		return nil
	}
	if state.Signature != m.signature {
		m.dirty = true
		m.logger.Info("cache invalidated",
			"engine", state.Signature.EngineVersion,
			"rules", state.Signature.RulesFingerprint)
		return nil
	}
	maps.Copy(m.entries, state.Files)
	m.logger.Debug("cache loaded", "entries", len(m.entries))
	return nil
}

// Lookup returns the cached outcome for path when its content hash still
// matches.
func (m *Manager) Lookup(path, contentHash string) (Outcome, bool) {
	if m.disabled {
		return "", false
	}
	m.mu.RLock()
	entry, ok := m.entries[key(path)]
	m.mu.RUnlock()

	if !ok || entry.ContentHash != contentHash {
		m.misses.Add(1)
		return "", false
	}
	m.hits.Add(1)
	return entry.Outcome, true
}

// Record stores the outcome for path.
func (m *Manager) Record(path, contentHash string, outcome Outcome) {
	if m.disabled {
		return
	}
	entry := Entry{ContentHash: contentHash, Outcome: outcome}

	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(path)
	if m.entries[k] != entry {
		m.entries[k] = entry
		m.dirty = true
	}
}

// Forget drops the entry for path.
func (m *Manager) Forget(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(path)
	if _, ok := m.entries[k]; ok {
		delete(m.entries, k)
		m.dirty = true
	}
}

// Flush persists the entries when anything changed since Load. Failures
// wrap model.ErrCachePersist; the in-memory entries stay valid.
func (m *Manager) Flush(ctx context.Context) error {
	if !m.Enabled() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty {
		return nil
	}

	state := &State{Signature: m.signature, Files: maps.Clone(m.entries)}
	if err := m.store.Save(ctx, state); err != nil {
		return model.Wrap(model.ErrCachePersist, "", "", err)
	}
	m.dirty = false
	m.logger.Debug("cache flushed", "entries", len(state.Files))
	return nil
}

// Len returns the number of entries.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Stats returns the lookup hit and miss counts.
func (m *Manager) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}

func key(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
