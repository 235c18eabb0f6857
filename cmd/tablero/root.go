package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/app"
	"github.com/thenoetrevino/tablero/internal/cli/row"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/daemon"
	"github.com/thenoetrevino/tablero/internal/launcher"
	"github.com/thenoetrevino/tablero/internal/logging"
	"github.com/thenoetrevino/tablero/internal/mcp"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tablero",
		Short: "Tablero - an editable activity table for the terminal",
		Long: `Tablero is an editable, reorderable activity table.
Run without arguments to open the interactive table.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return launcher.Launch()
		},
	}

	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(row.RowCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(daemonCmd())

	return rootCmd
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive table (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return launcher.Launch()
		},
	}
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the row tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			// stdout carries the protocol
			if err := logging.Init(cfg.Logging); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}

			application, err := app.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = application.Close() }()

			return mcp.Serve(application.RowService, version)
		},
	}
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the event daemon that relays live updates between clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logCfg := cfg.Logging
			logCfg.Output = "stderr"
			if err := logging.Init(logCfg); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			return daemon.Run(cmd.Context(), cfg)
		},
	}
}

// execute runs the root command under ctx
func execute(ctx context.Context, args []string) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
