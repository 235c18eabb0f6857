package row

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	rowservice "github.com/thenoetrevino/tablero/internal/services/row"
)

// CreateCmd returns the row create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new row",
		Long: `Create a new row at the configured creator position.

Examples:
  # Simple row (human-readable output)
  tablero row create --title="Investigate outage"

  # JSON output for agents
  tablero row create --title="Investigate outage" --state=open --json

  # Quiet mode for bash capture
  ROW_ID=$(tablero row create --title="Investigate outage" --quiet)

  # Description from stdin
  echo "details" | tablero row create --title="Investigate outage" --description=-
`,
		RunE: runCreate,
	}

	cmd.Flags().String("title", "", "Row title")
	cmd.Flags().String("description", "", "Row description (use - for stdin)")
	cmd.Flags().String("state", "", "State: all, open, closed")
	cmd.Flags().String("created", "", "Creation date YYYY-MM-DD (defaults to now)")
	cmd.Flags().String("id", "", "Row ID (generated when empty)")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	req, err := parseCreateFlags(cmd)
	if err != nil {
		return formatter.Fail(err)
	}

	cliInstance, err := cli.NewCLI(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	r, err := cliInstance.App.RowService.Create(ctx, req)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(fmt.Sprintf("Row created (ID: %s)", r.ID), r)
}

func parseCreateFlags(cmd *cobra.Command) (rowservice.CreateRowRequest, error) {
	var req rowservice.CreateRowRequest

	req.ID, _ = cmd.Flags().GetString("id")
	req.Title, _ = cmd.Flags().GetString("title")

	description, _ := cmd.Flags().GetString("description")
	desc, err := readDescription(cmd, description)
	if err != nil {
		return req, err
	}
	req.Description = desc

	if stateFlag, _ := cmd.Flags().GetString("state"); stateFlag != "" {
		if req.State, err = parseState(stateFlag); err != nil {
			return req, err
		}
	}

	if created, _ := cmd.Flags().GetString("created"); created != "" {
		var t time.Time
		if t, err = parseDate(created); err != nil {
			return req, err
		}
		req.CreatedAt = &t
	}

	return req, nil
}
