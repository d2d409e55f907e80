package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lexandro/fileassistant/config"
	"github.com/lexandro/fileassistant/ignore"
	"github.com/lexandro/fileassistant/watcher"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	home := t.TempDir()
	cfg := config.Default(home)
	for _, root := range cfg.Roots {
		if err := os.MkdirAll(root, 0755); err != nil {
			t.Fatal(err)
		}
	}
	cfg.IndexPath = filepath.Join(t.TempDir(), "file_index.json")
	return cfg
}

func Test_newAssistant_StartsFromPersistedIndex(t *testing.T) {
	cfg := testConfig(t)
	os.WriteFile(cfg.IndexPath, []byte(`["/home/u/downloads/a.pdf"]`), 0644)
	// On disk but not yet indexed: must not show up until a rebuild.
	os.WriteFile(filepath.Join(cfg.Roots[0], "b.pdf"), []byte("x"), 0644)

	asst, err := newAssistant(cfg, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	paths := asst.agent.Index().Paths()
	if len(paths) != 1 || paths[0] != "/home/u/downloads/a.pdf" {
		t.Errorf("expected the persisted index, got %v", paths)
	}
}

func Test_newAssistant_CorruptIndexStartsEmpty(t *testing.T) {
	cfg := testConfig(t)
	os.WriteFile(cfg.IndexPath, []byte(`{not json`), 0644)

	asst, err := newAssistant(cfg, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if asst.agent.Index().Len() != 0 {
		t.Errorf("expected empty index, got %v", asst.agent.Index().Paths())
	}
}

func Test_newAssistant_InvalidExcludePattern(t *testing.T) {
	cfg := testConfig(t)
	cfg.Exclude = []string{"[unclosed"}

	if _, err := newAssistant(cfg, nil, testLogger()); err == nil {
		t.Fatal("expected error for invalid exclude pattern")
	}
}

func Test_handleWatcherEvents_RebuildsAndReloadsIgnoreRules(t *testing.T) {
	cfg := testConfig(t)
	root := cfg.Roots[0]
	os.WriteFile(filepath.Join(root, "keep.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(root, "skip.log"), []byte("x"), 0644)

	asst, err := newAssistant(cfg, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	ignoreFile := filepath.Join(root, ignore.IgnoreFileName)
	os.WriteFile(ignoreFile, []byte("*.log\n"), 0644)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	batches := make(chan []watcher.Event, 1)
	done := make(chan struct{})
	go func() {
		asst.handleWatcherEvents(ctx, batches)
		close(done)
	}()

	batches <- []watcher.Event{{Path: ignoreFile, Op: watcher.OpCreate}}
	close(batches)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("handleWatcherEvents did not return after the channel closed")
	}

	var sawKeep bool
	for _, path := range asst.agent.Index().Paths() {
		if strings.HasSuffix(path, "skip.log") {
			t.Errorf("expected skip.log to be ignored after reload, got %s", path)
		}
		if strings.HasSuffix(path, "keep.txt") {
			sawKeep = true
		}
	}
	if !sawKeep {
		t.Errorf("expected keep.txt in rebuilt index, got %v", asst.agent.Index().Paths())
	}
}

func Test_startConsistencyLoops_DisabledByDefault(t *testing.T) {
	cfg := testConfig(t)
	asst, err := newAssistant(cfg, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	stop := asst.startConsistencyLoops(context.Background())
	stop()
}

func Test_startConsistencyLoops_PersistingIndexUnderRootDoesNotRebuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.IndexPath = filepath.Join(cfg.Roots[1], "index", "file_index.json")
	cfg.Watch = true
	os.WriteFile(filepath.Join(cfg.Roots[1], "note.txt"), []byte("x"), 0644)

	asst, err := newAssistant(cfg, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	// Creates the index directory before the watcher starts.
	if _, err := asst.agent.Reindex(context.Background()); err != nil {
		t.Fatal(err)
	}

	stop := asst.startConsistencyLoops(context.Background())
	defer stop()

	if _, err := asst.agent.Reindex(context.Background()); err != nil {
		t.Fatal(err)
	}
	builtAt := asst.agent.Index().BuiltAt()

	time.Sleep(3 * watcher.DefaultDebounce)

	if got := asst.agent.Index().BuiltAt(); !got.Equal(builtAt) {
		t.Errorf("index rebuilt after persisting itself: built at %v, then %v", builtAt, got)
	}
	for _, path := range asst.agent.Index().Paths() {
		if strings.HasSuffix(path, "file_index.json") || strings.HasSuffix(path, ".tmp") {
			t.Errorf("index lists its own file: %s", path)
		}
	}
}
