package row

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
)

// ShowCmd returns the row show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a row",
		Long:  "Show a row by ID. With duplicate ids the first row in table order is shown.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShow,
	}

	cmd.Flags().String("id", "", "Row ID")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	id, _ := cmd.Flags().GetString("id")
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		return formatter.Fail(cli.Usage("a row id is required: tablero row show <id>"))
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

	r, err := cliInstance.App.RowService.Get(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success("", r)
}
