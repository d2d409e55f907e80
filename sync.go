package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/fileassistant/index"
)

// SyncResult holds the outcome of a single sync verification run.
type SyncResult struct {
	MissingFiles int  // files on disk but not in index
	StaleFiles   int  // files in index but not on disk
	Rebuilt      bool // a full rebuild was triggered
	Duration     time.Duration
}

// diskWalker lists the files currently under the roots.
type diskWalker interface {
	Walk() index.Snapshot
}

// rebuildTarget owns the index being verified.
type rebuildTarget interface {
	Index() *index.Index
	Reindex(ctx context.Context) (int, error)
}

// runPeriodicSync verifies index consistency at the given interval until ctx is done.
func runPeriodicSync(
	ctx context.Context,
	interval time.Duration,
	walker diskWalker,
	target rebuildTarget,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("periodic sync started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			result := performSyncVerification(ctx, walker, target, logger)
			if result.MissingFiles+result.StaleFiles > 0 {
				logger.Info("sync verification complete",
					"missing", result.MissingFiles,
					"stale", result.StaleFiles,
					"rebuilt", result.Rebuilt,
					"duration", result.Duration,
				)
			} else {
				logger.Debug("sync verification complete, index is in sync", "duration", result.Duration)
			}
		}
	}
}

// performSyncVerification compares the files on disk with the index entries.
// Any difference triggers one full rebuild; the index is never patched in place.
func performSyncVerification(
	ctx context.Context,
	walker diskWalker,
	target rebuildTarget,
	logger *slog.Logger,
) SyncResult {
	start := time.Now()
	var result SyncResult

	diskFiles := make(map[string]struct{})
	for _, path := range walker.Walk().Paths {
		diskFiles[path] = struct{}{}
	}

	indexedFiles := make(map[string]struct{})
	for _, path := range target.Index().Paths() {
		indexedFiles[path] = struct{}{}
	}

	for path := range diskFiles {
		if _, exists := indexedFiles[path]; !exists {
			logger.Debug("sync: file missing from index", "path", path)
			result.MissingFiles++
		}
	}
	for path := range indexedFiles {
		if _, exists := diskFiles[path]; !exists {
			logger.Debug("sync: stale index entry", "path", path)
			result.StaleFiles++
		}
	}

	if result.MissingFiles+result.StaleFiles > 0 {
		if _, err := target.Reindex(ctx); err != nil {
			logger.Warn("sync: rebuild failed", "error", err)
		}
		result.Rebuilt = true
	}

	result.Duration = time.Since(start)
	return result
}
