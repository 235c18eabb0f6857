package row

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	rowservice "github.com/thenoetrevino/tablero/internal/services/row"
)

// MoveCmd returns the row move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a row to another position",
		Long: `Move a row to another position in the table. Positions start at 1, as
printed by 'tablero row list'; positions past the end move the row to the bottom.

Examples:
  tablero row move --id=624748504 --position=3
`,
		RunE: runMove,
	}

	cmd.Flags().String("id", "", "Row ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cmd.Flags().Int("position", 0, "Target position, starting at 1 (required)")
	if err := cmd.MarkFlagRequired("position"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cli.AddOutputFlags(cmd)

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	id, _ := cmd.Flags().GetString("id")
	position, _ := cmd.Flags().GetInt("position")
	if position < 1 {
		return formatter.Fail(fmt.Errorf("position %d: %w", position, rowservice.ErrInvalidPosition))
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

	rows, err := cliInstance.App.RowService.Move(ctx, rowservice.MoveRowRequest{ID: id, Position: position - 1})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(fmt.Sprintf("Row %s moved", id), rows)
}
