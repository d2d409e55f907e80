package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexandro/fileassistant/metadata"
)

// ErrConflict is returned when a move would replace an existing file.
var ErrConflict = errors.New("destination already exists")

func (a *Agent) searchFiles(c SearchFiles) []string {
	matches := a.index.Search(c.Query)
	if len(matches) > a.searchLimit {
		matches = matches[:a.searchLimit]
	}
	return matches
}

func (a *Agent) getMetadata(c GetMetadata) any {
	md, err := metadata.Read(a.files.Resolve(c.FilePath))
	if err != nil {
		return map[string]string{"error": err.Error()}
	}
	return md
}

func (a *Agent) readFile(c ReadFile) string {
	return a.files.Read(c.FilePath)
}

func (a *Agent) writeFile(ctx context.Context, c WriteFile) string {
	resolved, err := a.files.Write(c.FilePath, c.Content, c.Append)
	if err != nil {
		return fmt.Sprintf("Failed to write %s: %v", resolved, err)
	}
	a.reindex(ctx)

	if c.Append {
		return fmt.Sprintf("Appended to %s", resolved)
	}
	return fmt.Sprintf("Written to %s", resolved)
}

func (a *Agent) deleteFile(ctx context.Context, session *Session, c DeleteFile) string {
	target := c.FilePath
	if target == "" {
		if pending, ok := session.Pending(); ok {
			target = pending
		}
	}
	if strings.TrimSpace(target) == "" {
		session.CancelDeletion()
		return "No file path given."
	}
	path := a.files.Resolve(target)

	if c.Confirm == nil {
		session.RequestDeletion(path)
		return fmt.Sprintf("Are you sure you want to delete `%s`? Type 'yes' to confirm.", path)
	}

	if !strings.EqualFold(*c.Confirm, "yes") {
		session.CancelDeletion()
		return "Deletion cancelled or invalid confirmation."
	}

	if _, err := os.Lstat(path); err != nil {
		session.ConfirmDeletion()
		return fmt.Sprintf("File not found: %s", path)
	}
	if _, err := a.files.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			session.ConfirmDeletion()
			return fmt.Sprintf("File not found: %s", path)
		}
		return fmt.Sprintf("Failed to delete %s: %v", path, err)
	}
	a.reindex(ctx)
	session.ConfirmDeletion()
	return fmt.Sprintf("Deleted %s", path)
}

func (a *Agent) findLatestFile(c FindLatestFile) string {
	matches := a.index.Search(c.NameQuery)
	if len(matches) == 0 {
		return "No matching files found."
	}

	var latestPath string
	var latestTime time.Time
	for _, match := range matches {
		path := a.index.ActualPath(match)
		info, err := os.Stat(path)
		if err != nil {
			a.logger.Debug("skipping stale index entry", "path", path, "error", err)
			continue
		}
		if latestPath == "" || info.ModTime().After(latestTime) {
			latestPath = path
			latestTime = info.ModTime()
		}
	}
	if latestPath == "" {
		return "No matching files found."
	}
	return fmt.Sprintf("Latest file: %s (last modified: %s)", latestPath, metadata.FormatTime(latestTime))
}

func (a *Agent) moveFileByName(ctx context.Context, c MoveFileByName) string {
	matches := a.index.Search(c.Filename)
	if len(matches) == 0 {
		return fmt.Sprintf("No file found with name matching: '%s'", c.Filename)
	}

	source := a.index.ActualPath(matches[0])
	destination := c.Destination
	if destination == "" {
		destination = DefaultDestination
	}
	destDir := filepath.Join(a.homeDir, destination)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Sprintf("Failed to move file: %v", err)
	}

	newPath := filepath.Join(destDir, filepath.Base(source))
	if _, err := os.Lstat(newPath); err == nil {
		return fmt.Sprintf("Failed to move file: %v", fmt.Errorf("%w: %s", ErrConflict, newPath))
	}
	if err := os.Rename(source, newPath); err != nil {
		return fmt.Sprintf("Failed to move file: %v", err)
	}
	a.reindex(ctx)
	return fmt.Sprintf("Moved file to: %s", newPath)
}

func (a *Agent) createEmptyFile(ctx context.Context, c CreateEmptyFile) string {
	resolved, err := a.files.Write(c.FilePath, "", false)
	if err != nil {
		return fmt.Sprintf("Failed to create %s: %v", resolved, err)
	}
	a.reindex(ctx)
	return fmt.Sprintf("Created empty file at: %s", resolved)
}
