// Package tools exposes the file assistant's tool catalog as MCP tool handlers.
package tools

import (
	"context"
	"log/slog"

	"github.com/lexandro/fileassistant/agent"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler holds the dependencies shared by all catalog tools.
// MCP clients share one Session, so one pending deletion per server.
type Handler struct {
	Agent   *agent.Agent
	Session *agent.Session
	Logger  *slog.Logger
}

// For returns the MCP handler for one catalog tool. The typed arguments are
// passed straight to the agent; error objects are flagged with IsError.
func For[T agent.Call](h *Handler) mcp.ToolHandlerFor[T, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, args T) (*mcp.CallToolResult, any, error) {
		result := h.Agent.Execute(ctx, h.Session, args)
		text, isError := FormatResult(result)
		if isError {
			h.Logger.Warn("tool returned error", "tool", args.ToolName(), "result", text)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
			IsError: isError,
		}, nil, nil
	}
}
