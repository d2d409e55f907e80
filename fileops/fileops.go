// Package fileops implements path resolution and the read, write and delete
// operations the assistant performs on the local filesystem.
package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned when the target of an operation does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmptyPath is returned by Delete for a blank path, which would otherwise
	// resolve to the working directory.
	ErrEmptyPath = errors.New("empty path")
)

// Files performs filesystem operations on resolved paths.
type Files struct {
	resolver *Resolver
}

// New creates a Files instance backed by the given resolver.
func New(resolver *Resolver) *Files {
	return &Files{resolver: resolver}
}

// Resolve returns the absolute path for a user-supplied path.
func (f *Files) Resolve(path string) string {
	return f.resolver.Resolve(path)
}

// Read returns the full text content of the file at path.
// Failures are described in the returned string instead of an error so that
// callers can hand the result straight back to the user.
func (f *Files) Read(path string) string {
	resolved := f.resolver.Resolve(path)

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Sprintf("File not found: %s", resolved)
		}
		return err.Error()
	}
	if !IsTextContent(data) {
		return fmt.Sprintf("Cannot read %s: not a text file", resolved)
	}
	return string(data)
}

// Write stores content at path, creating parent directories as needed.
// With appendMode the content is added to the end of an existing file,
// otherwise the file is truncated first. Returns the resolved path.
func (f *Files) Write(path string, content string, appendMode bool) (string, error) {
	resolved := f.resolver.Resolve(path)

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return resolved, fmt.Errorf("creating parent directories for %s: %w", resolved, err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(resolved, flags, 0o644)
	if err != nil {
		return resolved, fmt.Errorf("opening %s: %w", resolved, err)
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return resolved, fmt.Errorf("writing %s: %w", resolved, err)
	}
	if err := file.Close(); err != nil {
		return resolved, fmt.Errorf("closing %s: %w", resolved, err)
	}
	return resolved, nil
}

// Delete removes the file at path, or the directory and everything below it.
// Returns the resolved path; ErrNotFound if nothing exists there.
func (f *Files) Delete(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}
	resolved := f.resolver.Resolve(path)

	info, err := os.Lstat(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return resolved, fmt.Errorf("%w: no file or directory found at: %s", ErrNotFound, resolved)
		}
		return resolved, fmt.Errorf("inspecting %s: %w", resolved, err)
	}

	if info.IsDir() {
		if err := os.RemoveAll(resolved); err != nil {
			return resolved, fmt.Errorf("removing directory %s: %w", resolved, err)
		}
		return resolved, nil
	}
	if err := os.Remove(resolved); err != nil {
		return resolved, fmt.Errorf("removing file %s: %w", resolved, err)
	}
	return resolved, nil
}
