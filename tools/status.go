package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/lexandro/fileassistant/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the fileassist_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Index     *index.Index
	Roots     []string
	IndexPath string
	StartTime time.Time
	Logger    *slog.Logger
}

// Handle processes a fileassist_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder

	fileCount := h.Index.Len()
	builtAt := h.Index.BuiltAt()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("fileassist_status",
		"files", fileCount,
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	builder.WriteString("=== fileassist Status ===\n\n")
	builder.WriteString("Roots:\n")
	for _, root := range h.Roots {
		builder.WriteString(fmt.Sprintf("  %s\n", root))
	}
	builder.WriteString(fmt.Sprintf("Index file: %s\n", h.IndexPath))
	builder.WriteString(fmt.Sprintf("Indexed files: %d\n", fileCount))
	if builtAt.IsZero() {
		builder.WriteString("Last rebuild: never (loaded from disk)\n")
	} else {
		builder.WriteString(fmt.Sprintf("Last rebuild: %s ago\n", formatDuration(time.Since(builtAt))))
	}
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: builder.String()}},
	}, nil, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
