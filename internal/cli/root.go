// Package cli wires the event-crm command line.
package cli

import (
	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary. Values are set by the linker.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates the root command.
func New(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:           "event-crm",
		Short:         "CRM for an event agency: pipeline, expenses, inventory and alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	root.AddCommand(
		newServeCmd(info),
		newMigrateCmd(),
		newVersionCmd(info),
	)
	return root
}
