// Package ignore decides which files under the indexed roots are left out of the index.
package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// IgnoreFileName is the per-root ignore file, in .gitignore syntax.
const IgnoreFileName = ".fileassistignore"

// Matcher combines per-root ignore files with user-supplied exclude globs.
// With no ignore files and no patterns it ignores nothing.
// Thread-safe: Reload() acquires a write lock, ShouldIgnore()/ShouldIgnoreDir() acquire a read lock.
type Matcher struct {
	mu          sync.RWMutex
	roots       []string
	ignoreFiles map[string]gitignore.GitIgnore // key: root directory
	patterns    []string
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	Roots    []string
	Patterns []string // doublestar globs matched against root-relative paths and base names
}

// NewMatcher creates a matcher for the given roots. Invalid glob patterns are rejected.
func NewMatcher(options MatcherOptions) (*Matcher, error) {
	patterns := make([]string, 0, len(options.Patterns))
	for _, pattern := range options.Patterns {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
		patterns = append(patterns, pattern)
	}

	matcher := &Matcher{
		roots:    make([]string, 0, len(options.Roots)),
		patterns: patterns,
	}
	for _, root := range options.Roots {
		matcher.roots = append(matcher.roots, filepath.Clean(root))
	}
	matcher.ignoreFiles = loadIgnoreFiles(matcher.roots)
	return matcher, nil
}

// ShouldIgnore returns true if the file at absolutePath should be excluded from the index.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	return m.match(absolutePath, false)
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely during traversal.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	return m.match(absolutePath, true)
}

func (m *Matcher) match(absolutePath string, isDir bool) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.patterns) == 0 && len(m.ignoreFiles) == 0 {
		return false
	}

	root := m.rootFor(absolutePath)
	if root == "" {
		return false
	}
	relativePath, err := filepath.Rel(root, absolutePath)
	if err != nil || relativePath == "." {
		return false
	}
	relativePath = filepath.ToSlash(relativePath)

	if gi := m.ignoreFiles[root]; gi != nil {
		match := gi.Relative(relativePath, isDir)
		if match != nil && match.Ignore() {
			return true
		}
	}

	return m.matchesPatterns(relativePath)
}

// rootFor returns the most specific configured root containing path, or "".
func (m *Matcher) rootFor(path string) string {
	best := ""
	for _, root := range m.roots {
		if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
			continue
		}
		if len(root) > len(best) {
			best = root
		}
	}
	return best
}

// matchesPatterns checks the relative path and its base name against the exclude globs.
func (m *Matcher) matchesPatterns(relativePath string) bool {
	baseName := filepath.Base(relativePath)
	for _, pattern := range m.patterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// Reload re-reads the per-root ignore files from disk.
// Used when the watcher detects changes to them.
func (m *Matcher) Reload() {
	m.mu.RLock()
	roots := m.roots
	m.mu.RUnlock()

	ignoreFiles := loadIgnoreFiles(roots)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignoreFiles = ignoreFiles
}

func loadIgnoreFiles(roots []string) map[string]gitignore.GitIgnore {
	ignoreFiles := make(map[string]gitignore.GitIgnore)
	for _, root := range roots {
		if gi := loadIgnoreFile(filepath.Join(root, IgnoreFileName), root); gi != nil {
			ignoreFiles[root] = gi
		}
	}
	return ignoreFiles
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses io.Reader approach to ensure the file handle is properly closed on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
