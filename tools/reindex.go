package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReindexArgs defines the input parameters for the fileassist_reindex tool.
type ReindexArgs struct{}

// ReindexFunc performs a full rebuild and returns the number of indexed files.
type ReindexFunc func(ctx context.Context) (int, error)

// ReindexHandler holds the dependencies for the reindex tool.
type ReindexHandler struct {
	DoReindex ReindexFunc
	Logger    *slog.Logger
}

// Handle processes a fileassist_reindex request.
func (h *ReindexHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReindexArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("fileassist_reindex started")
	start := time.Now()

	indexedCount, err := h.DoReindex(ctx)
	if err != nil {
		h.Logger.Error("fileassist_reindex failed", "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Reindex error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	h.Logger.Info("fileassist_reindex complete", "files", indexedCount, "elapsed", elapsed)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Reindex complete: %d files in %s", indexedCount, elapsed)}},
	}, nil, nil
}
