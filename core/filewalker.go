package core

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// LanguageDetector maps a file path to the language that handles it.
type LanguageDetector interface {
	LanguageFor(path string) (string, bool)
}

// FileWalker provides parallel file system traversal
type FileWalker struct {
	workers    int
	bufferSize int
	detector   LanguageDetector
}

// NewFileWalker creates a file walker that keeps files detector knows.
func NewFileWalker(detector LanguageDetector) *FileWalker {
	return &FileWalker{
		workers:    runtime.NumCPU() * 2, // I/O bound
		bufferSize: 1000,
		detector:   detector,
	}
}

// candidate is a path found by the scanner. Explicit candidates were named
// by the caller and are reported even when no language handles them.
type candidate struct {
	path     string
	explicit bool
}

// Walk performs parallel traversal of every path in scope. Results arrive
// in no particular order; use Collect for a sorted list.
func (fw *FileWalker) Walk(ctx context.Context, scope FileScope) (<-chan WalkResult, error) {
	if err := fw.validateScope(scope); err != nil {
		return nil, err
	}

	results := make(chan WalkResult, fw.bufferSize)
	paths := make(chan candidate, fw.bufferSize)

	var wg sync.WaitGroup
	for i := 0; i < fw.workers; i++ {
		wg.Add(1)
		go fw.worker(ctx, paths, results, scope, &wg)
	}

	go func() {
		defer close(paths)
		processed := 0
		for _, root := range scope.Paths {
			info, err := os.Stat(root)
			if err != nil {
				continue
			}
			if !info.IsDir() {
				if scope.MaxFiles > 0 && processed >= scope.MaxFiles {
					return
				}
				select {
				case <-ctx.Done():
					return
				case paths <- candidate{path: root, explicit: true}:
					processed++
				}
				continue
			}

			var visited map[string]struct{}
			if scope.FollowSymlinks {
				visited = make(map[string]struct{})
				if resolved, err := filepath.EvalSymlinks(root); err == nil {
					visited[resolved] = struct{}{}
				} else {
					visited[root] = struct{}{}
				}
			}
			walk := dirWalk{
				root:      root,
				scope:     scope,
				paths:     paths,
				processed: &processed,
				visited:   visited,
			}
			if !scope.NoGitignore {
				walk.gitignore = loadGitignore(root)
			}
			fw.scanDirectory(ctx, &walk, root, 0)
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

// Collect walks scope and returns the results sorted by path.
func (fw *FileWalker) Collect(ctx context.Context, scope FileScope) ([]WalkResult, error) {
	results, err := fw.Walk(ctx, scope)
	if err != nil {
		return nil, err
	}

	var all []WalkResult
	for result := range results {
		all = append(all, result)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Path < all[j].Path
	})
	return all, nil
}

// worker processes file paths in parallel
func (fw *FileWalker) worker(
	ctx context.Context,
	paths <-chan candidate,
	results chan<- WalkResult,
	scope FileScope,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-paths:
			if !ok {
				return
			}

			result, keep := fw.processFile(c, scope)
			if !keep {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case results <- result:
			}
		}
	}
}

type dirWalk struct {
	root      string
	scope     FileScope
	paths     chan<- candidate
	processed *int
	visited   map[string]struct{}
	gitignore gitignores
}

// rel returns path relative to the walk root with forward slashes.
func (w *dirWalk) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *dirWalk) ignored(path string, dir bool) bool {
	if len(w.gitignore) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return w.gitignore.ignored(abs, dir)
}

// scanDirectory recursively discovers files matching patterns
func (fw *FileWalker) scanDirectory(ctx context.Context, w *dirWalk, dirPath string, depth int) {
	scope := w.scope
	if scope.MaxFiles > 0 && *w.processed >= scope.MaxFiles {
		return
	}
	if ctx.Err() != nil {
		return
	}
	if scope.MaxDepth > 0 && depth > scope.MaxDepth {
		return
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return // Skip directories we can't read
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		if entry.Name() == ".git" || fw.isExcluded(w.rel(fullPath), scope.Exclude) {
			continue
		}

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			if !scope.FollowSymlinks {
				continue
			}
			resolvedPath, err := filepath.EvalSymlinks(fullPath)
			if err != nil || resolvedPath == "" {
				continue
			}
			info, err := os.Stat(resolvedPath)
			if err != nil {
				continue
			}
			isDir = info.IsDir()
		}

		if w.ignored(fullPath, isDir) {
			continue
		}

		if isDir {
			if w.visited != nil {
				realPath := fullPath
				if resolved, err := filepath.EvalSymlinks(fullPath); err == nil && resolved != "" {
					realPath = resolved
				}
				if _, seen := w.visited[realPath]; seen {
					continue
				}
				w.visited[realPath] = struct{}{}
			}
			fw.scanDirectory(ctx, w, fullPath, depth+1)
			continue
		}

		if !fw.isIncluded(w.rel(fullPath), scope.Include) {
			continue
		}
		if scope.MaxFiles > 0 && *w.processed >= scope.MaxFiles {
			return
		}
		select {
		case <-ctx.Done():
			return
		case w.paths <- candidate{path: fullPath}:
			*w.processed++
		}
	}
}

// processFile stats a candidate and detects its language. Walked files no
// language handles are dropped.
func (fw *FileWalker) processFile(c candidate, scope FileScope) (WalkResult, bool) {
	info, err := os.Stat(c.path)
	if err != nil {
		return WalkResult{Path: c.path, Error: err}, true
	}

	var language string
	if fw.detector != nil {
		language, _ = fw.detector.LanguageFor(c.path)
	}
	// A forced language applies to explicit files and to walked files some
	// language already claims.
	if scope.Language != "" && (c.explicit || language != "") {
		language = scope.Language
	}
	if language == "" {
		if !c.explicit {
			return WalkResult{}, false
		}
		return WalkResult{Path: c.path, Info: info, Error: fmt.Errorf("no language handles %s", c.path)}, true
	}

	return WalkResult{
		Path:     c.path,
		Info:     info,
		Language: language,
	}, true
}

// isIncluded checks if file matches include patterns
func (fw *FileWalker) isIncluded(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true // Include all if no patterns specified
	}

	for _, pattern := range patterns {
		if fw.matchPattern(path, pattern) {
			return true
		}
	}
	return false
}

// isExcluded checks if file matches exclude patterns
func (fw *FileWalker) isExcluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if fw.matchPattern(path, pattern) {
			return true
		}
	}
	return false
}

// matchPattern performs glob-style pattern matching with ** support
func (fw *FileWalker) matchPattern(path, pattern string) bool {
	if matched, err := doublestar.Match(pattern, path); err == nil && matched {
		return true
	}

	// Patterns without a separator also match the base name.
	if !strings.Contains(pattern, "/") {
		if matched, err := doublestar.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}

// validateScope validates FileScope parameters
func (fw *FileWalker) validateScope(scope FileScope) error {
	if len(scope.Paths) == 0 {
		return fmt.Errorf("at least one path is required")
	}
	for _, path := range scope.Paths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot access path %s: %w", path, err)
		}
	}
	for _, pattern := range append(append([]string{}, scope.Include...), scope.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid pattern %q", pattern)
		}
	}
	return nil
}

// gitignoreFile holds the patterns of one .gitignore file. Patterns match
// paths relative to dir, the directory holding the file.
type gitignoreFile struct {
	dir     string
	matcher *ignore.GitIgnore
	// any is matcher with a leading "*" pattern: it misses only the paths
	// a negation in this file re-includes.
	any *ignore.GitIgnore
}

// gitignores are ordered innermost first.
type gitignores []gitignoreFile

// ignored reports whether the absolute path is ignored. The innermost file
// with a matching pattern decides.
func (g gitignores) ignored(abs string, dir bool) bool {
	for _, f := range g {
		rel, err := filepath.Rel(f.dir, abs)
		if err != nil || !filepath.IsLocal(rel) {
			continue
		}
		rel = filepath.ToSlash(rel)
		if dir {
			rel += "/"
		}
		if f.matcher.MatchesPath(rel) {
			return true
		}
		if !f.any.MatchesPath(rel) {
			return false
		}
	}
	return false
}

// loadGitignore loads the .gitignore files of root and its parents up to
// the repository root.
func loadGitignore(root string) gitignores {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil
	}

	var out gitignores
	for dir := abs; ; {
		if lines := readLines(filepath.Join(dir, ".gitignore")); len(lines) > 0 {
			out = append(out, gitignoreFile{
				dir:     dir,
				matcher: ignore.CompileIgnoreLines(lines...),
				any:     ignore.CompileIgnoreLines(append([]string{"*"}, lines...)...),
			})
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break // repository root
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
