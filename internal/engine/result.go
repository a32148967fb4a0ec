package engine

import (
	"errors"
	"time"

	"github.com/oxhq/stylefx/internal/model"
)

// ExitStatus is the process exit code of a run, a union of bits.
type ExitStatus int

const (
	ExitOK         ExitStatus = 0
	ExitUnparsable ExitStatus = 4  // some files could not be tokenized
	ExitChanged    ExitStatus = 8  // some files were fixed, or need fixing in a dry run
	ExitConfig     ExitStatus = 16 // the configuration was rejected before any file was read
	ExitOther      ExitStatus = 64 // fixer failures, divergence, I/O errors
)

// Has reports whether every bit of flag is set.
func (s ExitStatus) Has(flag ExitStatus) bool {
	return s&flag == flag
}

// FileResult is the outcome of one file.
type FileResult struct {
	Path        string             `json:"path"`
	Index       int                `json:"-"`
	Language    string             `json:"language,omitempty"`
	Changed     bool               `json:"changed"`
	Cached      bool               `json:"cached"`
	Iterations  int                `json:"iterations,omitempty"`
	Applied     []string           `json:"applied,omitempty"`
	Diff        string             `json:"diff,omitempty"`
	Diagnostics []model.Diagnostic `json:"diagnostics,omitempty"`
	Err         error              `json:"-"`
}

// Failed reports whether the file ended in an error.
func (r FileResult) Failed() bool {
	return r.Err != nil
}

// Status returns a short word for the outcome of the file.
func (r FileResult) Status() string {
	switch {
	case errors.Is(r.Err, model.ErrUnparsableSource):
		return "unparsable"
	case r.Err != nil:
		return "error"
	case r.Changed:
		return "changed"
	default:
		return "ok"
	}
}

// Summary counts file outcomes.
type Summary struct {
	Total      int `json:"total"`
	Changed    int `json:"changed"`
	Cached     int `json:"cached"`
	Unparsable int `json:"unparsable"`
	Failed     int `json:"failed"`
}

// Report is the merged outcome of a run. Files are in input order.
type Report struct {
	Files        []FileResult
	ConfigErrors []error
	CacheErr     error
	DryRun       bool
	Duration     time.Duration
}

// ConfigReport returns a report for a run the configuration aborted.
func ConfigReport(dryRun bool, errs ...error) *Report {
	return &Report{ConfigErrors: errs, DryRun: dryRun}
}

// Summary counts the file outcomes.
func (r *Report) Summary() Summary {
	s := Summary{Total: len(r.Files)}
	for _, f := range r.Files {
		switch {
		case errors.Is(f.Err, model.ErrUnparsableSource):
			s.Unparsable++
		case f.Err != nil:
			s.Failed++
		case f.Changed:
			s.Changed++
		}
		if f.Cached {
			s.Cached++
		}
	}
	return s
}

// ExitStatus folds every file outcome into the exit code. Cache problems
// are warnings and set no bit.
func (r *Report) ExitStatus() ExitStatus {
	status := ExitOK
	if len(r.ConfigErrors) > 0 {
		status |= ExitConfig
	}
	for _, f := range r.Files {
		switch {
		case errors.Is(f.Err, model.ErrUnparsableSource):
			status |= ExitUnparsable
		case f.Err != nil:
			status |= ExitOther
		case f.Changed:
			status |= ExitChanged
		}
	}
	return status
}
