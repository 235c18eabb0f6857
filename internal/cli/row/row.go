// Package row implements the "tablero row" subcommands
package row

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/models"
)

// RowCmd returns the row parent command
func RowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "row",
		Short: "Manage table rows",
	}

	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())
	cmd.AddCommand(MoveCmd())

	return cmd
}

// parseState reads a --state value
func parseState(value string) (models.State, error) {
	s, err := models.ParseState(value)
	if err != nil {
		return "", cli.Usage("%w", err)
	}
	return s, nil
}

// parseDate reads a --created value in YYYY-MM-DD form
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, cli.Usage("invalid date %q: use YYYY-MM-DD", value)
	}
	return t, nil
}

// readDescription returns value, or the whole of stdin when value is "-"
func readDescription(cmd *cobra.Command, value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", &cli.StatusError{Code: cli.ExitDataErr, Err: fmt.Errorf("reading description from stdin: %w", err)}
	}
	return string(data), nil
}
