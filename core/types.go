package core

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"time"
)

// FileScope defines which files a run operates on.
type FileScope struct {
	Paths          []string `json:"paths"`               // Files or directories; directories are walked
	Include        []string `json:"include,omitempty"`   // File patterns to include (*.go, **/*.ts)
	Exclude        []string `json:"exclude,omitempty"`   // File patterns to exclude
	MaxDepth       int      `json:"max_depth,omitempty"` // Max directory depth (0 = unlimited)
	MaxFiles       int      `json:"max_files,omitempty"` // Max files to return (0 = unlimited)
	FollowSymlinks bool     `json:"follow_symlinks"`     // Follow symbolic links
	NoGitignore    bool     `json:"no_gitignore"`        // Do not honor .gitignore files
	Language       string   `json:"language,omitempty"`  // Force a language instead of detecting it
}

// WalkResult represents a discovered file
type WalkResult struct {
	Path     string
	Info     fs.FileInfo
	Language string
	Error    error
}

// FileStamp identifies one version of a file on disk. A file whose stamp
// changed between read and write was modified by someone else.
type FileStamp struct {
	Size    int64
	ModTime time.Time
}

// StampOf builds a stamp from file info.
func StampOf(info fs.FileInfo) FileStamp {
	return FileStamp{Size: info.Size(), ModTime: info.ModTime()}
}

// Stamp stats path and returns its stamp.
func Stamp(path string) (FileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileStamp{}, err
	}
	return StampOf(info), nil
}

// Equal reports whether two stamps describe the same file version.
func (s FileStamp) Equal(other FileStamp) bool {
	return s.Size == other.Size && s.ModTime.Equal(other.ModTime)
}

// Checksum returns the hex sha256 of content.
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
