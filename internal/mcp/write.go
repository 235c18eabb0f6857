package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/thenoetrevino/tablero/internal/models"
	rowservice "github.com/thenoetrevino/tablero/internal/services/row"
)

// RegisterWriteTools adds all row mutation tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, svc rowservice.Service) {
	s.AddTool(createTool(), createHandler(svc))
	s.AddTool(updateTool(), updateHandler(svc))
	s.AddTool(deleteTool(), deleteHandler(svc))
	s.AddTool(moveTool(), moveHandler(svc))
}

// --- create_row ---

func createTool() mcp.Tool {
	return mcp.NewTool("create_row",
		mcp.WithDescription("Create a row at the configured creator position (top or bottom). Fails when the table is full or creation is disabled."),
		mcp.WithString("title",
			mcp.Description("Row title. Required from the fourth row on."),
		),
		mcp.WithString("description",
			mcp.Description("Row description (markdown)"),
		),
		mcp.WithString("state",
			mcp.Description("Row state"),
			mcp.Enum("all", "open", "closed"),
		),
		mcp.WithString("created_at",
			mcp.Description("Creation date as YYYY-MM-DD. Defaults to now."),
		),
		mcp.WithString("id",
			mcp.Description("Row id. Generated when omitted."),
		),
	)
}

func createHandler(svc rowservice.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		create := rowservice.CreateRowRequest{
			ID:          req.GetString("id", ""),
			Title:       req.GetString("title", ""),
			Description: req.GetString("description", ""),
		}

		if v := req.GetString("state", ""); v != "" {
			s, err := models.ParseState(v)
			if err != nil {
				return toolError(err)
			}
			create.State = s
		}

		if v := req.GetString("created_at", ""); v != "" {
			t, err := parseDate(v)
			if err != nil {
				return toolError(err)
			}
			create.CreatedAt = &t
		}

		r, err := svc.Create(ctx, create)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(r)
	}
}

// --- update_row ---

func updateTool() mcp.Tool {
	return mcp.NewTool("update_row",
		mcp.WithDescription("Update the given columns of a row. Omitted columns are left unchanged. With duplicate ids the first row in display order is updated."),
		mcp.WithString("id",
			mcp.Description("Row id"),
			mcp.Required(),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("state",
			mcp.Description("New state"),
			mcp.Enum("all", "open", "closed"),
		),
		mcp.WithString("created_at",
			mcp.Description("New creation date as YYYY-MM-DD"),
		),
	)
}

func updateHandler(svc rowservice.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		update := rowservice.UpdateRowRequest{ID: req.GetString("id", "")}
		args := req.GetArguments()

		if v, ok := args["title"].(string); ok {
			update.Title = &v
		}
		if v, ok := args["description"].(string); ok {
			update.Description = &v
		}
		if v, ok := args["state"].(string); ok {
			s, err := models.ParseState(v)
			if err != nil {
				return toolError(err)
			}
			update.State = &s
		}
		if v, ok := args["created_at"].(string); ok {
			t, err := parseDate(v)
			if err != nil {
				return toolError(err)
			}
			update.CreatedAt = &t
		}

		r, err := svc.Update(ctx, update)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(r)
	}
}

// --- delete_row ---

func deleteTool() mcp.Tool {
	return mcp.NewTool("delete_row",
		mcp.WithDescription("Delete every row with the given id. Deleting an id that is not in the table succeeds without changes."),
		mcp.WithString("id",
			mcp.Description("Row id"),
			mcp.Required(),
		),
	)
}

func deleteHandler(svc rowservice.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")

		deleted, err := svc.Delete(ctx, id)
		if err != nil {
			return toolError(err)
		}
		if !deleted {
			return mcp.NewToolResultText(fmt.Sprintf("No row with id %s", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted rows with id %s", id)), nil
	}
}

// --- move_row ---

func moveTool() mcp.Tool {
	return mcp.NewTool("move_row",
		mcp.WithDescription("Move a row to another zero-based position. Positions past the end move the row to the bottom. Returns the rows in their new order."),
		mcp.WithString("id",
			mcp.Description("Row id"),
			mcp.Required(),
		),
		mcp.WithNumber("position",
			mcp.Description("Zero-based target position"),
			mcp.Required(),
		),
	)
}

func moveHandler(svc rowservice.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		position, err := req.RequireInt("position")
		if err != nil {
			return toolError(err)
		}

		rows, err := svc.Move(ctx, rowservice.MoveRowRequest{
			ID:       req.GetString("id", ""),
			Position: position,
		})
		if err != nil {
			return toolError(err)
		}
		return jsonResult(rows)
	}
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", value)
	}
	return t, nil
}
