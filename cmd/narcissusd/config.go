package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config mirrors narcissus.rs's Config struct: a socket path, the
// webcam's frame geometry (expressed here as the resulting bufsize),
// and how long a client has to say hello before it's dropped.
type Config struct {
	SocketPath         string `mapstructure:"socket_path"`
	Bufsize            int    `mapstructure:"bufsize"`
	ClientHelloTimeout int    `mapstructure:"client_hello_timeout_seconds"`
	HeartbeatTimeout   int    `mapstructure:"heartbeat_timeout_seconds"`
	MetricsAddr        string `mapstructure:"metrics_addr"`
}

func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("narcissus")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("socket_path", "/tmp/narcissus.sock")
	v.SetDefault("bufsize", 640*480*3)
	v.SetDefault("client_hello_timeout_seconds", 2)
	v.SetDefault("heartbeat_timeout_seconds", 15)
	v.SetDefault("metrics_addr", ":9090")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.Bufsize <= 0 {
		return nil, errors.New("config: bufsize must be positive")
	}
	return &cfg, nil
}
