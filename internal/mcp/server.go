// Package mcp exposes the row operations as Model Context Protocol tools
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	rowservice "github.com/thenoetrevino/tablero/internal/services/row"
)

// ServerName identifies the server to MCP clients
const ServerName = "tablero-mcp"

// NewServer creates an MCP server with every row tool registered
func NewServer(svc rowservice.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	RegisterReadTools(s, svc)
	RegisterWriteTools(s, svc)
	return s
}

// Serve runs the server over stdio until the client disconnects
func Serve(svc rowservice.Service, version string) error {
	if err := server.ServeStdio(NewServer(svc, version)); err != nil {
		return fmt.Errorf("serving mcp over stdio: %w", err)
	}
	return nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

// jsonResult encodes v as the text content of the result
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(fmt.Errorf("encoding result: %w", err))
	}
	return mcp.NewToolResultText(string(data)), nil
}
