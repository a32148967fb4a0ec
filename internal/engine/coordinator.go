// Package engine runs the fix loop over files: one loop per file, files
// spread over a bounded pool of workers, outcomes merged in input order.
package engine

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/oxhq/stylefx/core"
	"github.com/oxhq/stylefx/internal/cache"
	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/logging"
	"github.com/oxhq/stylefx/providers"
)

// Options configures a Coordinator. Everything in it is shared read-only
// by the workers.
type Options struct {
	Tokenizers    Tokenizers     // default: every built-in language
	Fixers        []fixer.Active // ordered, as returned by fixer.Registry.Select
	Cache         *cache.Manager // default: disabled
	Reader        SourceReader   // default: OSReader
	Writer        SourceWriter   // default: a core.AtomicWriter
	Workers       int            // 0 means runtime.NumCPU
	MaxIterations int            // 0 means DefaultMaxIterations
	Language      string         // force one tokenizer for every file
	DryRun        bool
	Diff          bool
	Logger        *slog.Logger
}

// Coordinator runs the fix loop over many files in parallel.
type Coordinator struct {
	opts   Options
	loop   *Loop
	logger *slog.Logger
}

// NewCoordinator fills in defaults for unset options.
func NewCoordinator(opts Options) *Coordinator {
	if opts.Tokenizers == nil {
		opts.Tokenizers = providers.DefaultCatalog()
	}
	if opts.Cache == nil {
		opts.Cache = cache.Disabled()
	}
	if opts.Reader == nil {
		opts.Reader = OSReader{}
	}
	if opts.Writer == nil {
		opts.Writer = core.NewAtomicWriter(core.DefaultAtomicConfig())
	}
	logger := logging.OrDiscard(opts.Logger)
	return &Coordinator{
		opts:   opts,
		logger: logger,
		loop: &Loop{
			Fixers:        opts.Fixers,
			MaxIterations: opts.MaxIterations,
			Logger:        logger,
		},
	}
}

// Workers returns the pool size for n files.
func (c *Coordinator) Workers(n int) int {
	workers := c.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return max(1, min(workers, n))
}

// Run processes files and returns their outcomes in input order. File i
// goes to worker i mod n; each worker handles its partition sequentially.
// Cache updates are recorded and flushed once after every worker is done;
// a flush failure is reported in Report.CacheErr.
func (c *Coordinator) Run(ctx context.Context, files []string) *Report {
	start := time.Now()
	report := &Report{
		Files:  make([]FileResult, len(files)),
		DryRun: c.opts.DryRun,
	}
	updates := make([]*cacheUpdate, len(files))

	workers := c.Workers(len(files))
	c.logger.Debug("run started", "files", len(files), "workers", workers, "fixers", len(c.opts.Fixers))

	var wg sync.WaitGroup
	for w := 0; w < workers && w < len(files); w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(files); i += workers {
				report.Files[i], updates[i] = c.process(ctx, i, files[i])
			}
		}(w)
	}
	wg.Wait()

	for _, u := range updates {
		if u != nil {
			c.opts.Cache.Record(u.path, u.hash, u.outcome)
		}
	}
	if err := c.opts.Cache.Flush(context.WithoutCancel(ctx)); err != nil {
		report.CacheErr = err
		c.logger.Warn("cache not saved", "error", err)
	}

	report.Duration = time.Since(start)
	c.logger.Debug("run finished", "duration", report.Duration)
	return report
}
