package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read from DOCBASE_* environment variables. Command line flags
// take precedence over it.
type Config struct {
	Service *svcConfig
	Poll    *pollConfig
	Local   *localConfig
}

type svcConfig struct {
	Server         string        `envconfig:"DOCBASE_SERVER" default:""`
	Token          string        `envconfig:"DOCBASE_TOKEN" default:""`
	OrganizationID int           `envconfig:"DOCBASE_ORGANIZATION_ID" default:"0"`
	ClientConfig   string        `envconfig:"DOCBASE_CLIENT_CONFIG" default:""`
	RequestTimeout time.Duration `envconfig:"DOCBASE_REQUEST_TIMEOUT" default:"30s"`
}

type pollConfig struct {
	Interval      time.Duration `envconfig:"DOCBASE_POLL_INTERVAL" default:"1s"`
	Jitter        time.Duration `envconfig:"DOCBASE_POLL_JITTER" default:"0s"`
	StatusTimeout time.Duration `envconfig:"DOCBASE_STATUS_TIMEOUT" default:"30s"`
}

type localConfig struct {
	ScratchDir   string `envconfig:"DOCBASE_SCRATCH_DIR" default:""`
	LogLevel     string `envconfig:"DOCBASE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"DOCBASE_LOG_FORMAT" default:"console"`
	ListenAddr   string `envconfig:"DOCBASE_LISTEN_ADDRESS" default:""`
	EventsFile   string `envconfig:"DOCBASE_EVENTS_FILE" default:""`
	EventsStdout bool   `envconfig:"DOCBASE_EVENTS_STDOUT" default:"false"`
}

func New() (*Config, error) {
	c := &Config{
		Service: new(svcConfig),
		Poll:    new(pollConfig),
		Local:   new(localConfig),
	}
	if err := envconfig.Process("", c); err != nil {
		return nil, err
	}
	return c, nil
}
