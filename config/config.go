// Package config carries the server's runtime settings. Environment
// variables (MESSENGER_*) provide the defaults; command line flags override
// them in main.
package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/samber/lo"
)

const envPrefix = "messenger"

var (
	ErrNoListeners = errors.New("no listeners configured")
	ErrBadPort     = errors.New("port out of range")
)

type Config struct {
	// Ports are the TCP listening ports; each gets its own room.
	Ports []int `envconfig:"PORTS"`
	// WSListenAddr enables the websocket gateway when non-empty.
	WSListenAddr string `envconfig:"WS_LISTEN_ADDR"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"debug"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Ports) == 0 && c.WSListenAddr == "" {
		return ErrNoListeners
	}
	for _, p := range c.Ports {
		if p < 1 || p > 65535 {
			return fmt.Errorf("%w: %d", ErrBadPort, p)
		}
	}
	return nil
}

// ListenAddrs returns one TCP listen address per configured port.
func (c *Config) ListenAddrs() []string {
	return lo.Map(c.Ports, func(port int, _ int) string {
		return fmt.Sprintf(":%d", port)
	})
}
