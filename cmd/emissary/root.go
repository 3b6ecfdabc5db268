package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for Emissary.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emissary",
		Short: "Run templated HTTP action profiles",
		Long: `Emissary stores named profiles, each an ordered list of templated HTTP
actions, and executes them against a free-text message, key=value
parameters and a page context (title, URL, content).

Profiles, settings and the last input live in a local SQLite database
in the XDG data directory unless --db-dir says otherwise.`,
		Version:       currentBuild().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .emissary in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "", "Directory holding emissary.db")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file (rotated)")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewSelectCmd())
	cmd.AddCommand(NewProfileCmd())
	cmd.AddCommand(NewActionCmd())
	cmd.AddCommand(NewTagsCmd())
	cmd.AddCommand(NewSettingsCmd())
	cmd.AddCommand(NewDumpCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context; a run in progress then reports its remaining actions as failed.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
