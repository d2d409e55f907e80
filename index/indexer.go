package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Persist writes through temp files named tempPrefix*tempSuffix in the
// index directory.
const (
	tempPrefix = ".file_index-"
	tempSuffix = ".tmp"
)

// IgnoreChecker decides which files and directories the indexer skips.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Indexer walks the configured roots and persists the resulting path list as JSON.
type Indexer struct {
	Roots    []string
	SavePath string
	Ignore   IgnoreChecker // optional
	Logger   *slog.Logger
}

// Walk collects every file under the roots without persisting anything.
// Unreadable entries and missing roots are skipped.
func (ix *Indexer) Walk() Snapshot {
	snapshot := Snapshot{
		Paths:  make([]string, 0),
		Actual: make(map[string]string),
	}

	for _, root := range ix.Roots {
		start := time.Now()
		count := 0

		filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && ix.Ignore != nil && ix.Ignore.ShouldIgnoreDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if ix.Ignore != nil && ix.Ignore.ShouldIgnore(path) {
				return nil
			}
			if ix.IsOwnFile(path) {
				return nil
			}

			entry := strings.ToLower(path)
			snapshot.Paths = append(snapshot.Paths, entry)
			if _, seen := snapshot.Actual[entry]; !seen {
				snapshot.Actual[entry] = path
			}
			count++
			return nil
		})

		ix.Logger.Debug("indexed root", "root", root, "files", count, "duration", time.Since(start))
	}

	return snapshot
}

// Rebuild performs a full walk and persists the result. The snapshot is
// returned even when persisting fails.
func (ix *Indexer) Rebuild() (Snapshot, error) {
	snapshot := ix.Walk()
	if err := ix.Persist(snapshot.Paths); err != nil {
		return snapshot, err
	}
	return snapshot, nil
}

// Persist writes paths as a JSON array to SavePath.
// The document is written to a temp file in the same directory and renamed into place.
func (ix *Indexer) Persist(paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}

	dir := filepath.Dir(ix.SavePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, tempPrefix+"*"+tempSuffix)
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, ix.SavePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, ix.SavePath, err)
	}
	return nil
}

// IsOwnFile reports whether path is the persisted index or one of the temp
// files Persist writes next to it. Such files are never indexed or watched.
func (ix *Indexer) IsOwnFile(path string) bool {
	if ix.SavePath == "" {
		return false
	}
	savePath, err := filepath.Abs(ix.SavePath)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if absPath == savePath {
		return true
	}
	name := filepath.Base(absPath)
	return filepath.Dir(absPath) == filepath.Dir(savePath) &&
		strings.HasPrefix(name, tempPrefix) && strings.HasSuffix(name, tempSuffix)
}

// Load reads the persisted index. A missing file yields an empty list and no error.
func (ix *Indexer) Load() ([]string, error) {
	data, err := os.ReadFile(ix.SavePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading index %s: %w", ix.SavePath, err)
	}

	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, fmt.Errorf("parsing index %s: %w", ix.SavePath, err)
	}
	if paths == nil {
		paths = []string{}
	}
	return paths, nil
}
