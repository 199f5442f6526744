package cli

import (
	"github.com/spf13/cobra"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
)

// NewDocbaseCommand assembles the command tree. Every task kind gets its own
// subcommand.
func NewDocbaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docbase [flags] [options]",
		Short: "docbase submits document base tasks to the processing service and follows them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	for _, kind := range api.TaskKinds {
		cmd.AddCommand(NewCmdTask(kind))
	}
	cmd.AddCommand(NewCmdStart())
	cmd.AddCommand(NewCmdStatus())
	cmd.AddCommand(NewCmdConfigure())
	cmd.AddCommand(NewCmdVersion())
	return cmd
}
