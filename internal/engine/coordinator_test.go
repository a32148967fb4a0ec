package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stylefx/core"
	"github.com/oxhq/stylefx/internal/cache"
	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/model"
	"github.com/oxhq/stylefx/internal/rules"
	"github.com/oxhq/stylefx/internal/ruleset"
	"github.com/oxhq/stylefx/internal/token"
)

func TestCoordinatorKeepsInputOrder(t *testing.T) {
	files := map[string]string{}
	var paths []string
	for i := range 23 {
		path := fmt.Sprintf("f%02d.txt", 22-i)
		files[path] = fmt.Sprintf("word%d\n", i)
		paths = append(paths, path)
	}
	cat, _ := newWordCatalog(t)
	fs := newMemFS(files)

	report := NewCoordinator(Options{
		Tokenizers: cat,
		Fixers:     active(upper()),
		Reader:     fs,
		Writer:     fs,
		Workers:    4,
	}).Run(context.Background(), paths)

	require.Len(t, report.Files, len(paths))
	for i, res := range report.Files {
		assert.Equal(t, paths[i], res.Path)
		assert.Equal(t, i, res.Index)
		assert.True(t, res.Changed)
		assert.Equal(t, "words", res.Language)
		assert.Equal(t, strings.ToUpper(files[res.Path]), fs.get(res.Path))
	}
	assert.Equal(t, ExitChanged, report.ExitStatus())
	assert.Len(t, fs.written(), len(paths))
}

func TestCoordinatorWritesOnlyChangedFiles(t *testing.T) {
	cat, _ := newWordCatalog(t)
	fs := newMemFS(map[string]string{
		"a.txt": "lower case\n",
		"b.txt": "UPPER CASE\n",
	})

	report := NewCoordinator(Options{
		Tokenizers: cat,
		Fixers:     active(upper()),
		Reader:     fs,
		Writer:     fs,
		Workers:    1,
	}).Run(context.Background(), []string{"a.txt", "b.txt"})

	assert.True(t, report.Files[0].Changed)
	assert.Equal(t, []string{"upper"}, report.Files[0].Applied)
	assert.False(t, report.Files[1].Changed)
	assert.Equal(t, []string{"a.txt"}, fs.written())
	assert.Equal(t, "LOWER CASE\n", fs.get("a.txt"))

	s := report.Summary()
	assert.Equal(t, Summary{Total: 2, Changed: 1}, s)
}

func TestCoordinatorDryRun(t *testing.T) {
	cat, tok := newWordCatalog(t)
	fs := newMemFS(map[string]string{"a.txt": "abc\n", "b.txt": "ABC\n"})
	store := cache.NewFileStore(filepath.Join(t.TempDir(), "cache.json"), nil)
	sig := cache.Signature{EngineVersion: model.Version, RulesFingerprint: "upper"}

	run := func() *Report {
		mgr := cache.NewManager(store, sig, nil)
		require.NoError(t, mgr.Load(context.Background()))
		return NewCoordinator(Options{
			Tokenizers: cat,
			Fixers:     active(upper()),
			Reader:     fs,
			Writer:     fs,
			Cache:      mgr,
			DryRun:     true,
		}).Run(context.Background(), []string{"a.txt", "b.txt"})
	}

	first := run()
	assert.True(t, first.DryRun)
	assert.True(t, first.Files[0].Changed)
	assert.False(t, first.Files[0].Cached)
	assert.False(t, first.Files[1].Changed)
	assert.Empty(t, fs.written(), "a dry run writes nothing")
	assert.Equal(t, "abc\n", fs.get("a.txt"))
	assert.Equal(t, ExitChanged, first.ExitStatus())
	assert.Equal(t, int64(2), tok.calls.Load())

	second := run()
	assert.True(t, second.Files[0].Cached)
	assert.True(t, second.Files[0].Changed, "a cached changed outcome is still reported")
	assert.True(t, second.Files[1].Cached)
	assert.False(t, second.Files[1].Changed)
	assert.Equal(t, ExitChanged, second.ExitStatus())
	assert.Equal(t, int64(2), tok.calls.Load(), "cached files are not tokenized again")
}

func TestCoordinatorFixRunCachesWrittenContent(t *testing.T) {
	cat, tok := newWordCatalog(t)
	fs := newMemFS(map[string]string{"a.txt": "abc\n"})
	sig := cache.Signature{EngineVersion: model.Version, RulesFingerprint: "upper"}
	mgr := cache.NewManager(cache.NewFileStore(filepath.Join(t.TempDir(), "cache.json"), nil), sig, nil)
	require.NoError(t, mgr.Load(context.Background()))

	coord := NewCoordinator(Options{
		Tokenizers: cat,
		Fixers:     active(upper()),
		Reader:     fs,
		Writer:     fs,
		Cache:      mgr,
	})

	first := coord.Run(context.Background(), []string{"a.txt"})
	require.True(t, first.Files[0].Changed)
	outcome, ok := mgr.Lookup("a.txt", core.Checksum([]byte("ABC\n")))
	require.True(t, ok, "the written content is cached")
	assert.Equal(t, cache.Unchanged, outcome)

	second := coord.Run(context.Background(), []string{"a.txt"})
	assert.True(t, second.Files[0].Cached)
	assert.False(t, second.Files[0].Changed)
	assert.Equal(t, ExitOK, second.ExitStatus())
	assert.Equal(t, int64(1), tok.calls.Load())
}

func TestCoordinatorIsolatesFailures(t *testing.T) {
	cat, _ := newWordCatalog(t)
	boom := funcFixer{name: "boom", apply: func(s *token.Stream) (bool, error) {
		if strings.Contains(s.Render(), "boom") {
			panic("exploded")
		}
		return false, nil
	}}
	fs := newMemFS(map[string]string{
		"ok.txt":       "fine\n",
		"bad.txt":      "what!!\n",
		"boom.txt":     "boom\n",
		"readonly.txt": "lower\n",
	})

	report := NewCoordinator(Options{
		Tokenizers: cat,
		Fixers:     active(boom, upper()),
		Reader:     fs,
		Writer:     fs,
		Workers:    2,
	}).Run(context.Background(), []string{"ok.txt", "bad.txt", "boom.txt", "missing.txt", "notes.md", "readonly.txt"})

	byPath := map[string]FileResult{}
	for _, r := range report.Files {
		byPath[r.Path] = r
	}

	assert.NoError(t, byPath["ok.txt"].Err)
	assert.True(t, byPath["ok.txt"].Changed)

	bad := byPath["bad.txt"]
	require.ErrorIs(t, bad.Err, model.ErrUnparsableSource)
	assert.Contains(t, bad.Err.Error(), "bad.txt")
	assert.Equal(t, "unparsable", bad.Status())
	require.Len(t, bad.Diagnostics, 1)
	assert.Equal(t, model.ECUnparsable, bad.Diagnostics[0].Code)

	assert.ErrorIs(t, byPath["boom.txt"].Err, model.ErrFixerApply)
	assert.Equal(t, "boom\n", fs.get("boom.txt"), "a failed file is left alone")
	assert.ErrorIs(t, byPath["missing.txt"].Err, model.ErrReadFile)
	assert.ErrorIs(t, byPath["notes.md"].Err, model.ErrUnparsableSource)

	readonly := byPath["readonly.txt"]
	assert.ErrorIs(t, readonly.Err, model.ErrWriteFile)
	assert.False(t, readonly.Changed)

	status := report.ExitStatus()
	assert.True(t, status.Has(ExitUnparsable))
	assert.True(t, status.Has(ExitOther))
	assert.True(t, status.Has(ExitChanged))
	assert.False(t, status.Has(ExitConfig))

	s := report.Summary()
	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 1, s.Changed)
	assert.Equal(t, 2, s.Unparsable)
	assert.Equal(t, 3, s.Failed)
}

func TestCoordinatorDivergedFileIsNotWritten(t *testing.T) {
	cat, _ := newWordCatalog(t)
	fs := newMemFS(map[string]string{"a.txt": "x y"})

	report := NewCoordinator(Options{
		Tokenizers:    cat,
		Fixers:        active(retype("a_to_b", token.Identifier, token.Keyword), retype("b_to_a", token.Keyword, token.Identifier)),
		Reader:        fs,
		Writer:        fs,
		MaxIterations: 2,
	}).Run(context.Background(), []string{"a.txt"})

	res := report.Files[0]
	require.ErrorIs(t, res.Err, model.ErrDiverged)
	assert.Equal(t, 3, res.Iterations)
	assert.Empty(t, fs.written())
	assert.Equal(t, ExitOther, report.ExitStatus())
}

func TestCoordinatorDiff(t *testing.T) {
	cat, _ := newWordCatalog(t)
	fs := newMemFS(map[string]string{"a.txt": "keep\nabc def\n"})

	report := NewCoordinator(Options{
		Tokenizers: cat,
		Fixers:     active(upper()),
		Reader:     fs,
		Writer:     fs,
		DryRun:     true,
		Diff:       true,
	}).Run(context.Background(), []string{"a.txt"})

	diff := report.Files[0].Diff
	assert.Contains(t, diff, "--- a.txt")
	assert.Contains(t, diff, "+++ a.txt (fixed)")
	assert.Contains(t, diff, "-abc def\n")
	assert.Contains(t, diff, "+ABC DEF\n")
}

func TestCoordinatorWriteRace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc\n"), 0o644))

	cat, _ := newWordCatalog(t)
	meddler := funcFixer{name: "meddler", apply: func(s *token.Stream) (bool, error) {
		// Another process edits the file while it is being fixed.
		if err := os.WriteFile(path, []byte("edited elsewhere\n"), 0o644); err != nil {
			return false, err
		}
		return false, nil
	}}

	report := NewCoordinator(Options{
		Tokenizers: cat,
		Fixers:     active(upper(), meddler),
	}).Run(context.Background(), []string{path})

	res := report.Files[0]
	require.ErrorIs(t, res.Err, model.ErrWriteRace)
	assert.Equal(t, model.ECWriteRace, res.Diagnostics[0].Code)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "edited elsewhere\n", string(got))
}

func TestCoordinatorFixesRealFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1   \n\n\n\ny = 2"), 0o644))

	registry := rules.NewRegistry()
	resolved, err := ruleset.NewDefaultResolver().Resolve(ruleset.Fragment{
		{Name: ruleset.PresetWhitespace, Value: ruleset.Enabled()},
	})
	require.NoError(t, err)
	fixers, err := registry.Select(resolved, fixer.Policy{})
	require.NoError(t, err)

	report := NewCoordinator(Options{Fixers: fixers}).Run(context.Background(), []string{path})
	res := report.Files[0]
	require.NoError(t, res.Err)
	assert.True(t, res.Changed)
	assert.Equal(t, "python", res.Language)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n\ny = 2\n", string(got))
}

func TestCoordinatorThreeTokenFile(t *testing.T) {
	fs := newMemFS(map[string]string{"x.py": "x=1"})
	report := NewCoordinator(Options{Reader: fs, Writer: fs}).Run(context.Background(), []string{"x.py"})

	res := report.Files[0]
	require.NoError(t, res.Err)
	assert.False(t, res.Changed)
	assert.Equal(t, 1, res.Iterations)
	assert.Empty(t, fs.written())
	assert.Equal(t, ExitOK, report.ExitStatus())
}

func TestCoordinatorForcedLanguage(t *testing.T) {
	cat, _ := newWordCatalog(t)
	fs := newMemFS(map[string]string{"README": "abc"})

	report := NewCoordinator(Options{
		Tokenizers: cat,
		Fixers:     active(upper()),
		Reader:     fs,
		Writer:     fs,
		Language:   "words",
	}).Run(context.Background(), []string{"README"})

	require.NoError(t, report.Files[0].Err)
	assert.Equal(t, "ABC", fs.get("README"))
}

type brokenStore struct{}

func (brokenStore) Load(context.Context) (*cache.State, error) { return nil, nil }
func (brokenStore) Save(context.Context, *cache.State) error   { return errors.New("read-only volume") }

func TestCoordinatorCacheFlushFailureIsAWarning(t *testing.T) {
	cat, _ := newWordCatalog(t)
	fs := newMemFS(map[string]string{"a.txt": "ABC"})
	mgr := cache.NewManager(brokenStore{}, cache.Signature{}, nil)
	require.NoError(t, mgr.Load(context.Background()))

	report := NewCoordinator(Options{
		Tokenizers: cat,
		Fixers:     active(upper()),
		Reader:     fs,
		Writer:     fs,
		Cache:      mgr,
	}).Run(context.Background(), []string{"a.txt"})

	assert.ErrorIs(t, report.CacheErr, model.ErrCachePersist)
	assert.NoError(t, report.Files[0].Err)
	assert.Equal(t, ExitOK, report.ExitStatus())
}

func TestCoordinatorCancelled(t *testing.T) {
	cat, _ := newWordCatalog(t)
	fs := newMemFS(map[string]string{"a.txt": "abc"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewCoordinator(Options{Tokenizers: cat, Reader: fs, Writer: fs}).Run(ctx, []string{"a.txt"})
	assert.ErrorIs(t, report.Files[0].Err, context.Canceled)
	assert.Equal(t, "abc", fs.get("a.txt"))
}

func TestCoordinatorWorkers(t *testing.T) {
	c := NewCoordinator(Options{Workers: 8})
	assert.Equal(t, 3, c.Workers(3))
	assert.Equal(t, 8, c.Workers(100))
	assert.Equal(t, 1, c.Workers(0))

	auto := NewCoordinator(Options{})
	assert.Equal(t, min(runtime.NumCPU(), 1000), auto.Workers(1000))

	report := auto.Run(context.Background(), nil)
	assert.Empty(t, report.Files)
	assert.Equal(t, ExitOK, report.ExitStatus())
}
