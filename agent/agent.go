// Package agent dispatches model decisions to local file operations.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lexandro/fileassistant/fileops"
	"github.com/lexandro/fileassistant/index"
	"github.com/lexandro/fileassistant/llm"
	"github.com/lexandro/fileassistant/metrics"
)

// DefaultSearchLimit caps the number of searchFiles results.
const DefaultSearchLimit = 5

// Options configures an Agent.
type Options struct {
	Model       llm.Model // required for HandlePrompt only
	Files       *fileops.Files
	Index       *index.Index
	Indexer     *index.Indexer
	SearchLimit int
	HomeDir     string // base for moveFileByName destinations
	Logger      *slog.Logger
}

// Agent owns the index handle and routes tool calls to file operations.
// Tool execution is serialized so a rebuild never interleaves with another call.
type Agent struct {
	model       llm.Model
	files       *fileops.Files
	index       *index.Index
	indexer     *index.Indexer
	searchLimit int
	homeDir     string
	logger      *slog.Logger

	execMu sync.Mutex
}

// New creates an Agent.
func New(opts Options) *Agent {
	searchLimit := opts.SearchLimit
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	idx := opts.Index
	if idx == nil {
		idx = index.New(nil)
	}
	return &Agent{
		model:       opts.Model,
		files:       opts.Files,
		index:       idx,
		indexer:     opts.Indexer,
		searchLimit: searchLimit,
		homeDir:     opts.HomeDir,
		logger:      opts.Logger,
	}
}

// Index returns the index handle the agent searches.
func (a *Agent) Index() *index.Index {
	return a.index
}

// HandlePrompt asks the model what to do with prompt and carries it out.
// It never fails: model errors and unknown tools become reply strings.
func (a *Agent) HandlePrompt(ctx context.Context, session *Session, prompt string) any {
	start := time.Now()
	decision, err := a.model.Decide(ctx, prompt, Declarations())
	metrics.ObserveModelCall(a.model.Name(), err, time.Since(start))
	if err != nil {
		a.logger.Warn("model call failed", "model", a.model.Name(), "error", err)
		return fmt.Sprintf("Gemini API Error: %v", err)
	}

	if decision.Call == nil {
		return decision.Text
	}

	a.logger.Info("model decided to call", "tool", decision.Call.Name, "args", string(decision.Call.Args))
	return a.Dispatch(ctx, session, decision.Call.Name, decision.Call.Args)
}

// Dispatch decodes a named call and executes it.
func (a *Agent) Dispatch(ctx context.Context, session *Session, name string, args json.RawMessage) any {
	call, err := Decode(name, args)
	if err != nil {
		if errors.Is(err, ErrUnknownTool) {
			return fmt.Sprintf("Function %s not implemented.", name)
		}
		return fmt.Sprintf("Invalid arguments for %s: %v", name, err)
	}
	return a.Execute(ctx, session, call)
}

// Execute runs a typed call and returns its result: a string, a list of
// paths, file metadata, or an {"error": ...} object.
func (a *Agent) Execute(ctx context.Context, session *Session, call Call) any {
	a.execMu.Lock()
	defer a.execMu.Unlock()

	start := time.Now()
	var result any
	switch c := call.(type) {
	case SearchFiles:
		result = a.searchFiles(c)
	case GetMetadata:
		result = a.getMetadata(c)
	case ReadFile:
		result = a.readFile(c)
	case WriteFile:
		result = a.writeFile(ctx, c)
	case DeleteFile:
		result = a.deleteFile(ctx, session, c)
	case FindLatestFile:
		result = a.findLatestFile(c)
	case MoveFileByName:
		result = a.moveFileByName(ctx, c)
	case CreateEmptyFile:
		result = a.createEmptyFile(ctx, c)
	default:
		result = fmt.Sprintf("Function %s not implemented.", call.ToolName())
	}

	elapsed := time.Since(start)
	metrics.ObserveToolCall(call.ToolName(), elapsed)
	a.logger.Info("tool call",
		"tool", call.ToolName(),
		"resultSize", resultSize(result),
		"duration", elapsed,
	)
	return result
}

// Reindex performs a full rebuild and swaps the new snapshot in.
func (a *Agent) Reindex(ctx context.Context) (int, error) {
	a.execMu.Lock()
	defer a.execMu.Unlock()
	return a.reindex(ctx)
}

// reindex must be called with execMu held.
func (a *Agent) reindex(_ context.Context) (int, error) {
	if a.indexer == nil {
		return a.index.Len(), nil
	}

	start := time.Now()
	snapshot, err := a.indexer.Rebuild()
	a.index.Swap(snapshot)
	metrics.ObserveRebuild(len(snapshot.Paths), time.Since(start))

	if err != nil {
		a.logger.Warn("failed to persist index", "path", a.indexer.SavePath, "error", err)
		return len(snapshot.Paths), err
	}
	a.logger.Debug("index rebuilt", "files", len(snapshot.Paths), "duration", time.Since(start))
	return len(snapshot.Paths), nil
}

func resultSize(result any) int {
	switch r := result.(type) {
	case string:
		return len(r)
	case []string:
		return len(r)
	default:
		return 1
	}
}
