package fileops

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps user-supplied paths such as "Downloads/report.txt" to absolute paths.
// Resolution is purely syntactic: the target does not need to exist.
type Resolver struct {
	roots map[string]string // key: lowercased symbolic name, value: real directory
}

// DefaultSymbolicRoots returns the Downloads and Desktop roots under the given home directory.
func DefaultSymbolicRoots(homeDir string) map[string]string {
	return map[string]string{
		"downloads": filepath.Join(homeDir, "Downloads"),
		"desktop":   filepath.Join(homeDir, "Desktop"),
	}
}

// NewResolver creates a resolver for the given symbolic roots. Names are matched case-insensitively.
func NewResolver(symbolicRoots map[string]string) *Resolver {
	roots := make(map[string]string, len(symbolicRoots))
	for name, dir := range symbolicRoots {
		roots[strings.ToLower(name)] = dir
	}
	return &Resolver{roots: roots}
}

// Resolve returns the absolute path for a user-supplied path.
// A leading symbolic root segment is replaced by its real directory; a bare
// symbolic root ("Desktop") resolves to the root directory itself. Anything
// else is taken as absolute or relative to the working directory.
func (r *Resolver) Resolve(path string) string {
	separator := "/"
	if strings.ContainsRune(path, os.PathSeparator) {
		separator = string(os.PathSeparator)
	}
	parts := strings.Split(path, separator)

	if dir, ok := r.roots[strings.ToLower(parts[0])]; ok {
		parts[0] = dir
		return absolute(filepath.Join(parts...))
	}
	return absolute(path)
}

// SymbolicRoots returns a copy of the configured name -> directory mapping.
func (r *Resolver) SymbolicRoots() map[string]string {
	roots := make(map[string]string, len(r.roots))
	for name, dir := range r.roots {
		roots[name] = dir
	}
	return roots
}

func absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
