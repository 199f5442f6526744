package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wannadb/docbase-tasks/internal/console"
	"github.com/wannadb/docbase-tasks/pkg/version"
)

type VersionOptions struct {
	Output string

	stdout io.Writer
}

func DefaultVersionOptions() *VersionOptions {
	return &VersionOptions{
		Output: "",
	}
}

func NewCmdVersion() *cobra.Command {
	o := DefaultVersionOptions()
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print docbase version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			o.stdout = cmd.OutOrStdout()
			return o.Run(cmd.Context(), args)
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *VersionOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format. One of: (json).")
}

func (o *VersionOptions) Run(ctx context.Context, args []string) error {
	versionInfo := version.Get()
	if o.Output == console.JsonFormat {
		marshalled, err := json.Marshal(versionInfo)
		if err != nil {
			return err
		}
		fmt.Fprintf(o.stdout, "%s\n", marshalled)
		return nil
	}
	fmt.Fprintf(o.stdout, "Docbase Version: %s\n", versionInfo.String())
	return nil
}
