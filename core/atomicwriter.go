package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oxhq/stylefx/internal/model"
)

// FileLock represents a file lock for concurrent access control
type FileLock struct {
	file *os.File
	path string
}

// AtomicWriteConfig controls atomic writing behavior
type AtomicWriteConfig struct {
	UseFsync       bool          // Force fsync for durability
	LockTimeout    time.Duration // Max time to wait for file lock
	TempSuffix     string        // Suffix for temporary files
	BackupOriginal bool          // Keep a copy of the previous content
}

// DefaultAtomicConfig provides sensible defaults
func DefaultAtomicConfig() AtomicWriteConfig {
	return AtomicWriteConfig{
		UseFsync:    false,
		LockTimeout: 5 * time.Second,
		TempSuffix:  ".stylefx.tmp",
	}
}

// AtomicWriter writes files through a temporary file and a rename, holding
// a lock file next to the target while it does so. Other stylefx processes
// honor the lock; stale locks of dead processes are removed.
type AtomicWriter struct {
	config AtomicWriteConfig
	locks  map[string]*FileLock
	mu     sync.Mutex
}

// NewAtomicWriter creates a new atomic writer
func NewAtomicWriter(config AtomicWriteConfig) *AtomicWriter {
	if config.TempSuffix == "" {
		config.TempSuffix = DefaultAtomicConfig().TempSuffix
	}
	return &AtomicWriter{
		config: config,
		locks:  make(map[string]*FileLock),
	}
}

// WriteFile atomically replaces path with content.
func (aw *AtomicWriter) WriteFile(path string, content []byte) error {
	return aw.write(path, content, nil)
}

// WriteFileIfUnchanged replaces path only while it still matches expect,
// the stamp taken when it was read. A mismatch fails with
// model.ErrWriteRace and leaves the file alone.
func (aw *AtomicWriter) WriteFileIfUnchanged(path string, content []byte, expect FileStamp) error {
	return aw.write(path, content, &expect)
}

func (aw *AtomicWriter) write(path string, content []byte, expect *FileStamp) error {
	if err := aw.acquireLock(path); err != nil {
		return fmt.Errorf("failed to acquire lock for %s: %w", path, err)
	}
	defer aw.releaseLock(path)

	var fileMode os.FileMode = 0o644
	originalInfo, err := os.Stat(path)
	switch {
	case err == nil:
		fileMode = originalInfo.Mode().Perm()
		if expect != nil && !expect.Equal(StampOf(originalInfo)) {
			return model.Errorf(model.ErrWriteRace, path, "size or modification time changed since it was read")
		}
	case expect != nil:
		return model.Wrap(model.ErrWriteRace, path, "file disappeared since it was read", err)
	}

	if aw.config.BackupOriginal && originalInfo != nil {
		if err := aw.createBackup(path); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tempPath := path + aw.config.TempSuffix
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tempFile.Write(content); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write content: %w", err)
	}

	if aw.config.UseFsync {
		if err := tempFile.Sync(); err != nil {
			tempFile.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to sync: %w", err)
		}
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// The rename is the atomic step.
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to atomic rename: %w", err)
	}
	return nil
}

// acquireLock creates path.lock exclusively, waiting up to LockTimeout for
// another holder to finish.
func (aw *AtomicWriter) acquireLock(path string) error {
	lockPath := path + ".lock"
	deadline := time.Now().Add(aw.config.LockTimeout)
	for {
		lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(lockFile, "%d\n", os.Getpid())

			aw.mu.Lock()
			aw.locks[path] = &FileLock{file: lockFile, path: lockPath}
			aw.mu.Unlock()
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}

		if aw.isLockStale(lockPath) {
			os.Remove(lockPath)
			continue
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("timeout waiting for lock on %s", path)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// releaseLock releases the file lock
func (aw *AtomicWriter) releaseLock(path string) {
	aw.mu.Lock()
	lock, exists := aw.locks[path]
	delete(aw.locks, path)
	aw.mu.Unlock()

	if exists {
		lock.file.Close()
		os.Remove(lock.path)
	}
}

// isLockStale checks if a lock file is from a dead process (cross-platform)
func (aw *AtomicWriter) isLockStale(lockPath string) bool {
	content, err := os.ReadFile(lockPath)
	if err != nil {
		return errors.Is(err, os.ErrNotExist)
	}

	var pid int
	if _, err := fmt.Sscanf(string(content), "%d", &pid); err != nil {
		// The holder may not have written its PID yet, or died before it
		// could. Give it LockTimeout.
		info, err := os.Stat(lockPath)
		if err != nil {
			return errors.Is(err, os.ErrNotExist)
		}
		return time.Since(info.ModTime()) > aw.config.LockTimeout
	}
	return !isProcessAlive(pid)
}

// createBackup copies the current content to path.bak.
func (aw *AtomicWriter) createBackup(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path+".bak", content, 0o644)
}

// Cleanup removes all locks (call on shutdown)
func (aw *AtomicWriter) Cleanup() {
	aw.mu.Lock()
	paths := make([]string, 0, len(aw.locks))
	for path := range aw.locks {
		paths = append(paths, path)
	}
	aw.mu.Unlock()

	for _, path := range paths {
		aw.releaseLock(path)
	}
}
