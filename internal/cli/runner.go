package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"github.com/oxhq/stylefx/core"
	"github.com/oxhq/stylefx/db"
	"github.com/oxhq/stylefx/internal/cache"
	"github.com/oxhq/stylefx/internal/config"
	"github.com/oxhq/stylefx/internal/engine"
	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/logging"
	"github.com/oxhq/stylefx/internal/model"
	"github.com/oxhq/stylefx/internal/report"
	"github.com/oxhq/stylefx/internal/rules"
	"github.com/oxhq/stylefx/internal/ruleset"
	"github.com/oxhq/stylefx/providers"
	"github.com/oxhq/stylefx/providers/catalog"
)

// Runner executes one fix or check run.
type Runner struct {
	opts   *RootOptions
	flags  *pflag.FlagSet
	stdout io.Writer
	stderr io.Writer
	dryRun bool
}

// NewRunner creates a runner for the parsed flags of a command.
func NewRunner(opts *RootOptions, flags *pflag.FlagSet, stdout, stderr io.Writer, dryRun bool) *Runner {
	return &Runner{opts: opts, flags: flags, stdout: stdout, stderr: stderr, dryRun: dryRun}
}

// Run loads the configuration, finds the files under paths (the
// configured finder paths when empty), fixes or checks them and renders
// the report. The returned status is the process exit code.
func (r *Runner) Run(ctx context.Context, paths []string) (engine.ExitStatus, error) {
	format, err := report.ParseFormat(r.opts.Format)
	if err != nil {
		return r.configFailure(report.FormatText, err)
	}

	cfg, err := config.Load(config.LoadOptions{
		File:        r.opts.ConfigFile,
		Flags:       r.flags,
		InlineRules: r.opts.Rules,
	})
	if err != nil {
		return r.configFailure(format, err)
	}
	logger := r.logger(cfg)

	resolved, err := cfg.Resolve()
	if err != nil {
		return r.configFailure(format, err)
	}
	active, err := rules.NewRegistry().Select(resolved, fixer.Policy{AllowRisky: cfg.RiskyAllowed})
	if err != nil {
		return r.configFailure(format, splitErrors(err)...)
	}
	logger.Debug("rules resolved", "enabled", len(active), "config", cfg.File, "fingerprint", resolved.Fingerprint())

	tokenizers := providers.DefaultCatalog()
	files, err := r.collect(ctx, tokenizers, cfg, paths)
	if err != nil {
		return r.configFailure(format, err)
	}

	manager, closeCache := r.openCache(ctx, cfg, resolved, active, logger)
	defer closeCache()

	coordinator := engine.NewCoordinator(engine.Options{
		Tokenizers:    tokenizers,
		Fixers:        active,
		Cache:         manager,
		Workers:       cfg.Workers,
		MaxIterations: cfg.MaxIterations,
		Language:      cfg.Language,
		DryRun:        r.dryRun,
		Diff:          r.opts.Diff,
		Logger:        logger,
	})
	rep := coordinator.Run(ctx, files)
	if manager.Enabled() {
		hits, misses := manager.Stats()
		logger.Info("cache", "hits", hits, "misses", misses)
	}

	if err := r.render(format, rep); err != nil {
		return engine.ExitOther, err
	}
	return rep.ExitStatus(), nil
}

func (r *Runner) logger(cfg *config.Config) *slog.Logger {
	level := logging.LevelFromVerbosity(r.opts.Verbose, r.opts.Quiet)
	if r.opts.Verbose == 0 && !r.opts.Quiet && cfg != nil {
		level = logging.LevelFromString(cfg.LogLevel)
	}
	return logging.New(r.stderr, level)
}

// collect walks paths and returns the files to process in a stable
// order. Explicit files no language handles are kept; the engine reports
// them as unparsable.
func (r *Runner) collect(ctx context.Context, tokenizers *catalog.Catalog, cfg *config.Config, paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = cfg.Finder.Paths
	}
	walker := core.NewFileWalker(tokenizers)
	results, err := walker.Collect(ctx, core.FileScope{
		Paths:          paths,
		Include:        cfg.Finder.Include,
		Exclude:        cfg.Finder.Exclude,
		MaxDepth:       cfg.Finder.MaxDepth,
		FollowSymlinks: cfg.Finder.FollowSymlinks,
		NoGitignore:    cfg.Finder.NoGitignore,
		Language:       cfg.Language,
	})
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(results))
	for _, res := range results {
		files = append(files, res.Path)
	}
	return files, nil
}

// openCache builds the cache manager for cfg. Cache problems never fail a
// run: they are logged and the run continues without a cache.
func (r *Runner) openCache(ctx context.Context, cfg *config.Config, resolved ruleset.Resolved, active []fixer.Active, logger *slog.Logger) (*cache.Manager, func()) {
	noop := func() {}
	if !cfg.UsingCache {
		return cache.Disabled(), noop
	}

	var (
		store   cache.Store
		closeFn = noop
	)
	if cfg.CacheDSN != "" {
		gdb, err := db.Connect(cfg.CacheDSN, r.opts.Verbose > 2)
		if err != nil {
			logger.Warn("cache database unavailable, running without cache", "error", err)
			return cache.Disabled(), noop
		}
		closeFn = func() { closeDB(gdb, logger) }

		store, err = cache.NewDBStore(gdb, projectKey(), resolved)
		if err != nil {
			closeFn()
			logger.Warn("cache disabled", "error", err)
			return cache.Disabled(), noop
		}
	} else {
		store = cache.NewFileStore(cfg.CacheFile, nil)
	}

	manager := cache.NewManager(store, cache.NewSignature(active, cfg.Language), logger)
	// Load already logged the problem; the run starts from an empty cache.
	_ = manager.Load(ctx)
	return manager, closeFn
}

func closeDB(gdb *gorm.DB, logger *slog.Logger) {
	if err := db.Close(gdb); err != nil {
		logger.Warn("closing cache database", "error", err)
	}
}

// projectKey identifies the working tree in a shared cache database.
func projectKey() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.ToSlash(wd)
}

func (r *Runner) render(format report.Format, rep *engine.Report) error {
	if r.opts.Quiet && format == report.FormatText {
		return nil
	}
	return report.Render(r.stdout, format, rep, report.Options{Verbose: r.opts.Verbose > 0})
}

func (r *Runner) configFailure(format report.Format, errs ...error) (engine.ExitStatus, error) {
	rep := engine.ConfigReport(r.dryRun, errs...)
	if err := r.render(format, rep); err != nil {
		return engine.ExitOther, err
	}
	if r.opts.Quiet && format == report.FormatText {
		for _, err := range errs {
			if _, werr := io.WriteString(r.stderr, err.Error()+"\n"); werr != nil {
				return engine.ExitOther, werr
			}
		}
	}
	return rep.ExitStatus(), nil
}

// splitErrors unpacks an errors.Join so each problem is listed on its own.
func splitErrors(err error) []error {
	if _, ok := err.(*model.Error); ok {
		return []error{err}
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
