package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/thenoetrevino/tablero/internal/models"
	rowservice "github.com/thenoetrevino/tablero/internal/services/row"
)

// RegisterReadTools adds the read-only row tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, svc rowservice.Service) {
	s.AddTool(listTool(), listHandler(svc))
	s.AddTool(getTool(), getHandler(svc))
}

// --- list_rows ---

func listTool() mcp.Tool {
	return mcp.NewTool("list_rows",
		mcp.WithDescription("List the rows of the activity table in display order. Ids are not unique; the same id may appear on several rows."),
		mcp.WithString("state",
			mcp.Description("Only return rows in this state"),
			mcp.Enum("all", "open", "closed"),
		),
	)
}

func listHandler(svc rowservice.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := models.StateAll
		if v := req.GetString("state", ""); v != "" {
			s, err := models.ParseState(v)
			if err != nil {
				return toolError(err)
			}
			filter = s
		}

		rows, err := svc.List(ctx)
		if err != nil {
			return toolError(err)
		}

		if filter != models.StateAll {
			filtered := rows[:0]
			for _, r := range rows {
				if r.State == filter {
					filtered = append(filtered, r)
				}
			}
			rows = filtered
		}

		return jsonResult(rows)
	}
}

// --- get_row ---

func getTool() mcp.Tool {
	return mcp.NewTool("get_row",
		mcp.WithDescription("Get a row by id. With duplicate ids the first row in display order is returned."),
		mcp.WithString("id",
			mcp.Description("Row id"),
			mcp.Required(),
		),
	)
}

func getHandler(svc rowservice.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		if id == "" {
			return toolError(fmt.Errorf("id is required"))
		}

		r, err := svc.Get(ctx, id)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(r)
	}
}
