package row

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/models"
)

// DeleteCmd returns the row delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a row",
		Long: `Delete every row with the given ID (requires confirmation unless --force, --quiet or --json).
Deleting an ID that is not in the table succeeds without changes.`,
		RunE: runDelete,
	}

	cmd.Flags().String("id", "", "Row ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}

	cmd.Flags().Bool("force", false, "Skip confirmation")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	id, _ := cmd.Flags().GetString("id")
	force, _ := cmd.Flags().GetBool("force")

	cliInstance, err := cli.NewCLI(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	// Ask for confirmation unless force, quiet or JSON mode
	if !force && !formatter.Quiet && !formatter.JSON {
		title := "(not in table)"
		if r, err := cliInstance.App.RowService.Get(ctx, id); err == nil {
			title = fmt.Sprintf("'%s'", r.Title)
		} else if !errors.Is(err, models.ErrRowNotFound) {
			return formatter.Fail(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Delete row %s %s? (y/N): ", id, title)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
	}

	deleted, err := cliInstance.App.RowService.Delete(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}

	message := fmt.Sprintf("Row %s deleted", id)
	if !deleted {
		message = fmt.Sprintf("Row %s was not in the table", id)
	}
	return formatter.Success(message, cli.DeleteResult{ID: id, Deleted: deleted})
}
