// Package scanner discovers the Python files a refactor run operates
// on. Directory targets are walked recursively; explicit file targets
// are taken as given when they pass the filters.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// pythonExt is the only extension the scanner admits.
const pythonExt = ".py"

// skipDirs are never descended into on top of hidden directories.
var skipDirs = []string{".git", "vendor", "node_modules", "dist", "build", "__pycache__", ".refx"}

// Scanner handles recursive directory traversal with filtering.
type Scanner struct {
	maxBytes       int64
	followSymlinks bool
	includeGlobs   []string
	excludeGlobs   []string
	noGitignore    bool
	gitignore      *ignore.GitIgnore
}

// Config holds scanner options. Include and exclude globs use
// doublestar syntax and match paths relative to the scanned directory;
// a pattern without a slash also matches the basename.
type Config struct {
	MaxBytes       int64
	FollowSymlinks bool
	IncludeGlobs   []string
	ExcludeGlobs   []string
	NoGitignore    bool
}

// New creates a scanner with the given configuration.
func New(cfg Config) *Scanner {
	s := &Scanner{
		maxBytes:       cfg.MaxBytes,
		followSymlinks: cfg.FollowSymlinks,
		includeGlobs:   cfg.IncludeGlobs,
		excludeGlobs:   cfg.ExcludeGlobs,
		noGitignore:    cfg.NoGitignore,
	}
	if !cfg.NoGitignore {
		s.loadGitignore()
	}
	return s
}

// loadGitignore compiles .gitignore files found between the working
// directory and the filesystem root, outermost first so closer files
// take precedence.
func (s *Scanner) loadGitignore() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	var gitignoreFiles []string
	dir := cwd
	for {
		path := filepath.Join(dir, ".gitignore")
		if _, err := os.Stat(path); err == nil {
			gitignoreFiles = append(gitignoreFiles, path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if len(gitignoreFiles) == 0 {
		return
	}

	slices.Reverse(gitignoreFiles)
	if len(gitignoreFiles) == 1 {
		if gi, err := ignore.CompileIgnoreFile(gitignoreFiles[0]); err == nil {
			s.gitignore = gi
		}
		return
	}
	if gi, err := ignore.CompileIgnoreFileAndLines(gitignoreFiles[0], gitignoreFiles[1:]...); err == nil {
		s.gitignore = gi
	}
}

// ScanTargets expands a list of file and directory targets into the
// Python files to process, deduplicated in discovery order. With no
// targets it scans the working directory.
func (s *Scanner) ScanTargets(ctx context.Context, targets []string) ([]string, error) {
	if len(targets) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		targets = []string{cwd}
	}

	var all []string
	for _, target := range targets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		files, err := s.scanTarget(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("scanning target %s: %w", target, err)
		}
		all = append(all, files...)
	}
	return dedupe(all), nil
}

func (s *Scanner) scanTarget(ctx context.Context, target string) ([]string, error) {
	info, err := os.Lstat(target)
	if err != nil {
		return nil, fmt.Errorf("accessing target %s: %w", target, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !s.followSymlinks {
			return nil, nil
		}
		resolved, err := filepath.EvalSymlinks(target)
		if err != nil {
			return nil, fmt.Errorf("resolving symlink %s: %w", target, err)
		}
		return s.scanTarget(ctx, resolved)
	}

	if info.Mode().IsRegular() {
		if s.admitFile(filepath.Clean(target), info) {
			return []string{target}, nil
		}
		return nil, nil
	}

	if info.IsDir() {
		return s.scanDirectory(ctx, target)
	}
	return nil, nil
}

func (s *Scanner) scanDirectory(ctx context.Context, dir string) ([]string, error) {
	var files []string

	err := fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if s.skipDirectory(path) {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("getting file info for %s: %w", path, err)
			}
			if s.admitFile(path, info) {
				files = append(files, filepath.Join(dir, path))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", dir, err)
	}
	return files, nil
}

// admitFile applies the extension, gitignore, size, and glob filters.
// path is relative to the scanned directory for walked files.
func (s *Scanner) admitFile(path string, info os.FileInfo) bool {
	if filepath.Ext(path) != pythonExt {
		return false
	}
	if s.gitignore != nil && s.gitignore.MatchesPath(path) {
		return false
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		return false
	}

	if len(s.includeGlobs) > 0 {
		matched := false
		for _, pattern := range s.includeGlobs {
			if matchPattern(pattern, path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pattern := range s.excludeGlobs {
		if matchPattern(pattern, path) {
			return false
		}
	}
	return true
}

func (s *Scanner) skipDirectory(path string) bool {
	if s.gitignore != nil && s.gitignore.MatchesPath(path) {
		return true
	}

	dirname := filepath.Base(path)
	if slices.Contains(skipDirs, dirname) {
		return true
	}
	if strings.HasPrefix(dirname, ".") && dirname != "." {
		return true
	}
	return false
}

// matchPattern matches path against a doublestar pattern. Patterns
// without a path separator also match against the basename, so "*.py"
// works at any depth.
func matchPattern(pattern, path string) bool {
	if ok, err := doublestar.PathMatch(pattern, path); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, err := doublestar.PathMatch(pattern, filepath.Base(path)); err == nil && ok {
			return true
		}
	}
	return false
}

func dedupe(files []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, file := range files {
		if !seen[file] {
			seen[file] = true
			result = append(result, file)
		}
	}
	return result
}
