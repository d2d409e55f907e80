// Package server wires the agent to its entry surfaces: MCP over stdio and HTTP.
package server

import (
	"github.com/lexandro/fileassistant/agent"
	"github.com/lexandro/fileassistant/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients and by the version command.
const Version = "0.1.0"

// SetupMCP creates the MCP server with the eight catalog tools plus status and reindex.
func SetupMCP(
	handler *tools.Handler,
	statusHandler *tools.StatusHandler,
	reindexHandler *tools.ReindexHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fileassist",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server manages files in the user's Downloads and Desktop folders.

- Use searchFiles and findLatestFile to locate files by name; paths are lowercased index entries
- Paths may start with "Downloads" or "Desktop" instead of a full path
- deleteFile asks for confirmation first; repeat the call with confirm="yes" to delete`,
		},
	)

	addCatalogTool[agent.SearchFiles](mcpServer, handler)
	addCatalogTool[agent.GetMetadata](mcpServer, handler)
	addCatalogTool[agent.ReadFile](mcpServer, handler)
	addCatalogTool[agent.WriteFile](mcpServer, handler)
	addCatalogTool[agent.DeleteFile](mcpServer, handler)
	addCatalogTool[agent.FindLatestFile](mcpServer, handler)
	addCatalogTool[agent.MoveFileByName](mcpServer, handler)
	addCatalogTool[agent.CreateEmptyFile](mcpServer, handler)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "fileassist_status",
		Description: "Show index status: roots, file count, last rebuild, memory usage, and uptime.",
	}, statusHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "fileassist_reindex",
		Description: "Force a full rebuild of the file index from the configured roots.",
	}, reindexHandler.Handle)

	return mcpServer
}

// addCatalogTool registers one catalog tool using the catalog's name,
// description and schema.
func addCatalogTool[T agent.Call](mcpServer *mcp.Server, handler *tools.Handler) {
	var zero T
	tool, ok := agent.LookupTool(zero.ToolName())
	if !ok {
		panic("tool missing from catalog: " + zero.ToolName())
	}
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: tool.Schema,
	}, tools.For[T](handler))
}
