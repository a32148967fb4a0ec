// Package report renders the outcome of a run for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oxhq/stylefx/internal/engine"
	"github.com/oxhq/stylefx/internal/model"
)

// Format names an output format.
type Format string

const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	case "text":
		return FormatText, nil
	}
	return "", model.Errorf(model.ErrInvalidConfig, "", "unknown format %q, want txt or json", s)
}

// Options controls text rendering.
type Options struct {
	// Verbose lists unchanged files too.
	Verbose bool
}

// Render writes r in format f.
func Render(w io.Writer, f Format, r *engine.Report, opts Options) error {
	if f == FormatJSON {
		return JSON(w, r)
	}
	return Text(w, r, opts)
}

// Text writes one line per file worth mentioning, the configuration
// errors, a cache warning and a summary line.
func Text(w io.Writer, r *engine.Report, opts Options) error {
	var b strings.Builder

	if len(r.ConfigErrors) > 0 {
		b.WriteString("Configuration errors:\n")
		for _, err := range r.ConfigErrors {
			fmt.Fprintf(&b, "  - %v\n", err)
		}
		if len(r.Files) == 0 {
			_, err := io.WriteString(w, b.String())
			return err
		}
		b.WriteString("\n")
	}

	for _, f := range r.Files {
		writeFile(&b, f, r.DryRun, opts)
	}

	if r.CacheErr != nil {
		fmt.Fprintf(&b, "warning: %v\n", r.CacheErr)
	}
	b.WriteString(summaryLine(r))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFile(b *strings.Builder, f engine.FileResult, dryRun bool, opts Options) {
	switch status := f.Status(); status {
	case "ok":
		if !opts.Verbose {
			return
		}
		line := "ok         " + f.Path
		if f.Cached {
			line += " (cached)"
		}
		b.WriteString(line + "\n")
	case "changed":
		word := "fixed     "
		if dryRun {
			word = "would fix "
		}
		line := word + " " + f.Path
		if len(f.Applied) > 0 {
			line += " (" + strings.Join(f.Applied, ", ") + ")"
		} else if f.Cached {
			line += " (cached)"
		}
		b.WriteString(line + "\n")
		if f.Diff != "" {
			b.WriteString(f.Diff)
			if !strings.HasSuffix(f.Diff, "\n") {
				b.WriteString("\n")
			}
		}
	default:
		fmt.Fprintf(b, "%-10s %s: %s\n", status, f.Path, describe(f.Err, f.Path))
	}
}

// describe drops the leading path from err, which the line already shows.
func describe(err error, path string) string {
	if err == nil {
		return "unknown error"
	}
	return strings.TrimPrefix(err.Error(), path+": ")
}

func summaryLine(r *engine.Report) string {
	s := r.Summary()

	var head string
	if r.DryRun {
		head = fmt.Sprintf("Found %d of %d files to fix", s.Changed, s.Total)
	} else {
		head = fmt.Sprintf("Fixed %d of %d files", s.Changed, s.Total)
	}
	head += " in " + r.Duration.Round(time.Millisecond).String()

	var extra []string
	if s.Unparsable > 0 {
		extra = append(extra, fmt.Sprintf("%d unparsable", s.Unparsable))
	}
	if s.Failed > 0 {
		extra = append(extra, fmt.Sprintf("%d failed", s.Failed))
	}
	if s.Cached > 0 {
		extra = append(extra, fmt.Sprintf("%d cached", s.Cached))
	}
	if len(extra) > 0 {
		head += " (" + strings.Join(extra, ", ") + ")"
	}
	return head
}

type jsonFile struct {
	Status string `json:"status"`
	engine.FileResult
}

type jsonReport struct {
	DryRun       bool               `json:"dry_run"`
	ExitStatus   int                `json:"exit_status"`
	DurationMS   int64              `json:"duration_ms"`
	Summary      engine.Summary     `json:"summary"`
	Files        []jsonFile         `json:"files"`
	ConfigErrors []model.Diagnostic `json:"config_errors,omitempty"`
	CacheWarning string             `json:"cache_warning,omitempty"`
}

// JSON writes r as one indented JSON document.
func JSON(w io.Writer, r *engine.Report) error {
	out := jsonReport{
		DryRun:     r.DryRun,
		ExitStatus: int(r.ExitStatus()),
		DurationMS: r.Duration.Milliseconds(),
		Summary:    r.Summary(),
		Files:      make([]jsonFile, 0, len(r.Files)),
	}
	for _, f := range r.Files {
		out.Files = append(out.Files, jsonFile{Status: f.Status(), FileResult: f})
	}
	for _, err := range r.ConfigErrors {
		out.ConfigErrors = append(out.ConfigErrors, model.DiagnosticFromError(err))
	}
	if r.CacheErr != nil {
		out.CacheWarning = r.CacheErr.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
