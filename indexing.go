package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lexandro/fileassistant/agent"
	"github.com/lexandro/fileassistant/config"
	"github.com/lexandro/fileassistant/fileops"
	"github.com/lexandro/fileassistant/ignore"
	"github.com/lexandro/fileassistant/index"
	"github.com/lexandro/fileassistant/llm"
	"github.com/lexandro/fileassistant/metrics"
	"github.com/lexandro/fileassistant/watcher"
)

// assistant is the wired runtime shared by every command.
type assistant struct {
	cfg     *config.Config
	matcher *ignore.Matcher
	indexer *index.Indexer
	agent   *agent.Agent
	logger  *slog.Logger
}

// newAssistant builds the agent from the persisted index. The disk is not
// walked until the first mutation or an explicit rebuild. model may be nil
// when prompts are never handled.
func newAssistant(cfg *config.Config, model llm.Model, logger *slog.Logger) (*assistant, error) {
	matcher, err := ignore.NewMatcher(ignore.MatcherOptions{
		Roots:    cfg.Roots,
		Patterns: cfg.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("creating ignore matcher: %w", err)
	}

	indexer := &index.Indexer{
		Roots:    cfg.Roots,
		SavePath: cfg.IndexPath,
		Ignore:   matcher,
		Logger:   logger,
	}

	paths, err := indexer.Load()
	if err != nil {
		logger.Warn("ignoring unreadable index, starting empty", "path", cfg.IndexPath, "error", err)
		paths = nil
	}
	fileIndex := index.New(paths)
	metrics.SetIndexSize(fileIndex.Len())
	logger.Info("index loaded", "path", cfg.IndexPath, "files", fileIndex.Len())

	resolver := fileops.NewResolver(cfg.SymbolicRoots)

	return &assistant{
		cfg:     cfg,
		matcher: matcher,
		indexer: indexer,
		agent: agent.New(agent.Options{
			Model:       model,
			Files:       fileops.New(resolver),
			Index:       fileIndex,
			Indexer:     indexer,
			SearchLimit: cfg.SearchLimit,
			HomeDir:     cfg.HomeDir,
			Logger:      logger,
		}),
		logger: logger,
	}, nil
}

// reindex reloads the ignore rules and performs a full rebuild.
func (a *assistant) reindex(ctx context.Context) (int, error) {
	a.matcher.Reload()
	return a.agent.Reindex(ctx)
}

// indexAwareIgnore hides the index file from the watcher so persisting a
// rebuild does not trigger another one.
type indexAwareIgnore struct {
	*ignore.Matcher
	indexer *index.Indexer
}

func (i indexAwareIgnore) ShouldIgnore(path string) bool {
	return i.indexer.IsOwnFile(path) || i.Matcher.ShouldIgnore(path)
}

// startConsistencyLoops starts the watcher and the periodic drift check when
// they are enabled. The returned function stops both.
func (a *assistant) startConsistencyLoops(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	var fileWatcher *watcher.Watcher

	if a.cfg.Watch {
		ignoreRules := indexAwareIgnore{Matcher: a.matcher, indexer: a.indexer}
		w, err := watcher.New(a.cfg.Roots, ignoreRules, watcher.DefaultDebounce, a.logger)
		if err != nil {
			a.logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
		} else {
			fileWatcher = w
			go fileWatcher.Start()
			go a.handleWatcherEvents(ctx, fileWatcher.Events())
		}
	}

	if a.cfg.SyncInterval > 0 {
		go runPeriodicSync(ctx, a.cfg.SyncInterval, a.indexer, a.agent, a.logger)
	}

	return func() {
		cancel()
		if fileWatcher != nil {
			fileWatcher.Close()
		}
	}
}

// handleWatcherEvents turns each debounced batch into one full rebuild.
// A changed ignore file reloads the rules first.
func (a *assistant) handleWatcherEvents(ctx context.Context, batches <-chan []watcher.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case events, ok := <-batches:
			if !ok {
				return
			}
			for _, event := range events {
				if filepath.Base(event.Path) == ignore.IgnoreFileName {
					a.matcher.Reload()
					a.logger.Info("reloaded ignore rules", "trigger", event.Path)
					break
				}
			}

			count, err := a.agent.Reindex(ctx)
			if err != nil {
				a.logger.Warn("rebuild after file change failed", "error", err)
				continue
			}
			a.logger.Debug("rebuilt index after file change", "events", len(events), "files", count)
		}
	}
}
