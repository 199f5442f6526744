package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"k8s.io/client-go/util/homedir"

	"github.com/wannadb/docbase-tasks/internal/auth"
	"github.com/wannadb/docbase-tasks/internal/client"
	"github.com/wannadb/docbase-tasks/internal/config"
	"github.com/wannadb/docbase-tasks/internal/scratch"
)

type GlobalOptions struct {
	ConfigFilePath string
	ServerUrl      string
	Token          string
	OrganizationID int
	ScratchDir     string
	RequestTimeout time.Duration

	env          *config.Config
	clientConfig *client.Config
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		ConfigFilePath: client.DefaultClientConfigPath(),
		ScratchDir:     filepath.Join(homedir.HomeDir(), ".docbase", "scratch"),
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFilePath, "config", "c", o.ConfigFilePath, "Path to the client configuration file.")
	fs.StringVarP(&o.ServerUrl, "server-url", "u", o.ServerUrl, "Address of the docbase service, overrides the configuration file.")
	fs.StringVar(&o.Token, "token", o.Token, "User token, overrides the configuration file.")
	fs.IntVar(&o.OrganizationID, "organization", o.OrganizationID, "Organization owning the document base.")
	fs.StringVar(&o.ScratchDir, "scratch-dir", o.ScratchDir, "Directory holding the id of the task being polled.")
	fs.DurationVar(&o.RequestTimeout, "request-timeout", o.RequestTimeout, "Timeout of a single request to the service.")
}

// Complete merges, from lowest to highest precedence, the client
// configuration file, DOCBASE_* environment variables and flags.
func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	env, err := config.New()
	if err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	o.env = env

	path := o.ConfigFilePath
	if !cmd.Flags().Changed("config") && env.Service.ClientConfig != "" {
		path = env.Service.ClientConfig
	}

	cfg := client.NewDefault()
	if _, statErr := os.Stat(path); statErr == nil {
		if cfg, err = client.ParseConfigFile(path); err != nil {
			return err
		}
	} else if cmd.Flags().Changed("config") {
		return fmt.Errorf("reading config file %s: %w", path, statErr)
	}

	overlay := func(flag string, flagValue string, envValue string, target *string) {
		switch {
		case cmd.Flags().Changed(flag):
			*target = flagValue
		case envValue != "":
			*target = envValue
		}
	}
	overlay("server-url", o.ServerUrl, env.Service.Server, &cfg.Service.Server)
	overlay("token", o.Token, env.Service.Token, &cfg.Service.Token)

	switch {
	case cmd.Flags().Changed("request-timeout"):
		cfg.RequestTimeout.Duration = o.RequestTimeout
	case os.Getenv("DOCBASE_REQUEST_TIMEOUT") != "":
		cfg.RequestTimeout.Duration = env.Service.RequestTimeout
	}

	if !cmd.Flags().Changed("organization") {
		o.OrganizationID = env.Service.OrganizationID
	}
	if !cmd.Flags().Changed("scratch-dir") && env.Local.ScratchDir != "" {
		o.ScratchDir = env.Local.ScratchDir
	}

	o.clientConfig = cfg
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if o.clientConfig == nil {
		return errors.New("options not completed")
	}
	if err := o.clientConfig.Validate(); err != nil {
		return err
	}

	info, err := auth.CheckToken(o.clientConfig.Service.Token, time.Now())
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return fmt.Errorf("%w: log in again and update %s", err, o.ConfigFilePath)
		}
		return err
	}
	if !info.Opaque {
		zap.S().Named("cli").Debugw("using user token", "user", info.Username, "expires_at", info.ExpiresAt)
	}
	return nil
}

// Client returns a task service that tracks connectivity.
func (o *GlobalOptions) Client() (*client.Interceptor, error) {
	svc, err := client.NewTaskService(o.clientConfig)
	if err != nil {
		return nil, err
	}
	return client.NewInterceptor(svc), nil
}

func (o *GlobalOptions) Scratch() (scratch.Store, error) {
	return scratch.NewFileStore(o.ScratchDir)
}

func unauthorizedHint(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return fmt.Errorf("%w: the service rejected the token, log in again", err)
	}
	return err
}
