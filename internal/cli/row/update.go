package row

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	rowservice "github.com/thenoetrevino/tablero/internal/services/row"
)

// UpdateCmd returns the row update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a row",
		Long: `Update the columns of a row. Only the flags that are passed change.
With duplicate ids the first row in table order is updated.

Examples:
  tablero row update --id=624748504 --state=closed
  tablero row update --id=624748504 --description=- < notes.md
`,
		RunE: runUpdate,
	}

	cmd.Flags().String("id", "", "Row ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description (use - for stdin)")
	cmd.Flags().String("state", "", "New state: all, open, closed")
	cmd.Flags().String("created", "", "New creation date YYYY-MM-DD")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	req, err := parseUpdateFlags(cmd)
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

	r, err := cliInstance.App.RowService.Update(ctx, req)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(fmt.Sprintf("Row %s updated", r.ID), r)
}

// parseUpdateFlags sets a field for every flag that was passed
func parseUpdateFlags(cmd *cobra.Command) (rowservice.UpdateRowRequest, error) {
	var req rowservice.UpdateRowRequest
	flags := cmd.Flags()

	req.ID, _ = flags.GetString("id")

	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		req.Title = &title
	}

	if flags.Changed("description") {
		value, _ := flags.GetString("description")
		desc, err := readDescription(cmd, value)
		if err != nil {
			return req, err
		}
		req.Description = &desc
	}

	if flags.Changed("state") {
		value, _ := flags.GetString("state")
		s, err := parseState(value)
		if err != nil {
			return req, err
		}
		req.State = &s
	}

	if flags.Changed("created") {
		value, _ := flags.GetString("created")
		t, err := parseDate(value)
		if err != nil {
			return req, err
		}
		req.CreatedAt = &t
	}

	return req, nil
}
