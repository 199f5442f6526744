package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wannadb/docbase-tasks/internal/client"
)

type ConfigureOptions struct {
	ConfigFilePath string
	ServerUrl      string
	Token          string

	stdout io.Writer
}

func DefaultConfigureOptions() *ConfigureOptions {
	return &ConfigureOptions{
		ConfigFilePath: client.DefaultClientConfigPath(),
	}
}

func NewCmdConfigure() *cobra.Command {
	o := DefaultConfigureOptions()
	cmd := &cobra.Command{
		Use:          "configure",
		Short:        "Write the client configuration file",
		Example:      "configure --server-url http://localhost:8000 --token $TOKEN",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			o.stdout = cmd.OutOrStdout()
			return o.Run(cmd.Context(), args)
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ConfigureOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFilePath, "config", "c", o.ConfigFilePath, "Path to the client configuration file.")
	fs.StringVarP(&o.ServerUrl, "server-url", "u", o.ServerUrl, "Address of the docbase service.")
	fs.StringVar(&o.Token, "token", o.Token, "User token.")
}

func (o *ConfigureOptions) Validate(args []string) error {
	if o.ConfigFilePath == "" {
		return errors.New("a config file path is required")
	}
	cfg := client.NewDefault()
	cfg.Service = client.Service{Server: o.ServerUrl, Token: o.Token}
	return cfg.Validate()
}

func (o *ConfigureOptions) Run(ctx context.Context, args []string) error {
	wanted := client.NewDefault()
	wanted.Service = client.Service{Server: o.ServerUrl, Token: o.Token}

	if current, err := client.ParseConfigFile(o.ConfigFilePath); err == nil && current.Equal(wanted) {
		fmt.Fprintf(o.stdout, "%s is up to date\n", o.ConfigFilePath)
		return nil
	}

	if err := client.WriteConfig(o.ConfigFilePath, o.ServerUrl, o.Token); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(o.stdout, "wrote %s\n", o.ConfigFilePath)
	return nil
}
