package row

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/models"
)

// ListCmd returns the row list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rows in table order",
		Long: `List rows in table order.

Examples:
  tablero row list
  tablero row list --state=open --json
  tablero row list --quiet   # one id per line
`,
		RunE: runList,
	}

	cmd.Flags().String("state", string(models.StateAll), "Filter by state: all, open, closed")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	stateFlag, _ := cmd.Flags().GetString("state")
	filter, err := parseState(stateFlag)
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

	rows, err := cliInstance.App.RowService.List(ctx)
	if err != nil {
		return formatter.Fail(err)
	}

	if filter != models.StateAll {
		filtered := make([]*models.Row, 0, len(rows))
		for _, r := range rows {
			if r.State == filter {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	return formatter.Success("", rows)
}
