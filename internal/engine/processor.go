package engine

import (
	"context"
	"errors"
	"os"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/oxhq/stylefx/core"
	"github.com/oxhq/stylefx/internal/cache"
	"github.com/oxhq/stylefx/internal/model"
	"github.com/oxhq/stylefx/providers/catalog"
)

// SourceReader reads file contents.
type SourceReader interface {
	ReadFile(path string) ([]byte, error)
}

// Stamper is implemented by readers that can stamp a file before reading
// it. Writes then fail with model.ErrWriteRace when the file changed in
// between. Without a Stamper the writer receives a zero stamp.
type Stamper interface {
	Stamp(path string) (core.FileStamp, error)
}

// SourceWriter replaces a file unless it changed since it was stamped.
// *core.AtomicWriter implements it.
type SourceWriter interface {
	WriteFileIfUnchanged(path string, content []byte, expect core.FileStamp) error
}

// Tokenizers looks up the tokenizer for a file. *catalog.Catalog
// implements it.
type Tokenizers interface {
	ForPath(path string) (catalog.Tokenizer, bool)
	Get(language string) (catalog.Tokenizer, bool)
}

// OSReader reads from the local file system.
type OSReader struct{}

func (OSReader) ReadFile(path string) ([]byte, error)      { return os.ReadFile(path) }
func (OSReader) Stamp(path string) (core.FileStamp, error) { return core.Stamp(path) }

// cacheUpdate is what a worker wants recorded for its file once all
// workers are done.
type cacheUpdate struct {
	path    string
	hash    string
	outcome cache.Outcome
}

// process runs one file through read, cache lookup, tokenize, fix and
// write. It never panics on behalf of a fixer and never touches state
// shared with other workers apart from read-only lookups.
func (c *Coordinator) process(ctx context.Context, index int, path string) (FileResult, *cacheUpdate) {
	res := FileResult{Path: path, Index: index}
	fail := func(err error) (FileResult, *cacheUpdate) {
		res.Err = err
		res.Diagnostics = append(res.Diagnostics, model.DiagnosticFromError(err))
		c.logger.Debug("file failed", "path", path, "error", err)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	tokenizer, ok := c.tokenizer(path)
	if !ok {
		return fail(model.Errorf(model.ErrUnparsableSource, path, "no tokenizer handles this file"))
	}
	res.Language = tokenizer.Language()

	var stamp core.FileStamp
	if stamper, ok := c.opts.Reader.(Stamper); ok && !c.opts.DryRun {
		s, err := stamper.Stamp(path)
		if err != nil {
			return fail(model.Wrap(model.ErrReadFile, path, "", err))
		}
		stamp = s
	}
	content, err := c.opts.Reader.ReadFile(path)
	if err != nil {
		return fail(model.Wrap(model.ErrReadFile, path, "", err))
	}
	hash := core.Checksum(content)

	if outcome, hit := c.opts.Cache.Lookup(path, hash); hit {
		switch {
		case outcome == cache.Unchanged:
			res.Cached = true
			c.logger.Debug("cache hit", "path", path)
			return res, nil
		case c.opts.DryRun && !c.opts.Diff:
			res.Cached = true
			res.Changed = true
			c.logger.Debug("cache hit", "path", path, "outcome", outcome)
			return res, nil
		}
	}

	stream, err := tokenizer.Tokenize(ctx, content)
	if err != nil {
		return fail(withPath(err, path))
	}

	loop, err := c.loop.Run(ctx, path, stream)
	res.Iterations = loop.Iterations
	res.Applied = loop.Applied
	if err != nil {
		return fail(err)
	}

	output := stream.Render()
	if output == string(content) {
		return res, &cacheUpdate{path: path, hash: hash, outcome: cache.Unchanged}
	}
	res.Changed = true
	if c.opts.Diff {
		res.Diff = unifiedDiff(path, string(content), output)
	}

	if c.opts.DryRun {
		return res, &cacheUpdate{path: path, hash: hash, outcome: cache.Changed}
	}

	if err := c.opts.Writer.WriteFileIfUnchanged(path, []byte(output), stamp); err != nil {
		res.Changed = false
		if !errors.Is(err, model.ErrWriteRace) {
			err = model.Wrap(model.ErrWriteFile, path, "", err)
		}
		return fail(err)
	}
	c.logger.Info("fixed", "path", path, "fixers", loop.Applied, "passes", loop.Iterations)
	return res, &cacheUpdate{path: path, hash: core.Checksum([]byte(output)), outcome: cache.Unchanged}
}

func (c *Coordinator) tokenizer(path string) (catalog.Tokenizer, bool) {
	if c.opts.Language != "" {
		return c.opts.Tokenizers.Get(c.opts.Language)
	}
	return c.opts.Tokenizers.ForPath(path)
}

// withPath fills in the path of a model error raised below the file level.
func withPath(err error, path string) error {
	var merr *model.Error
	if errors.As(err, &merr) && merr.Path == "" {
		copied := *merr
		copied.Path = path
		return &copied
	}
	return err
}

func unifiedDiff(path, original, modified string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: path,
		ToFile:   path + " (fixed)",
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
