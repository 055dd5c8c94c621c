// Package config loads server and engine configuration from defaults,
// an optional YAML file, and RISK_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/optionfolio/risk-backend/pkg/types"
)

// Config is the full backend configuration.
type Config struct {
	Server types.ServerConfig `mapstructure:"server"`
	Engine types.EngineConfig `mapstructure:"engine"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"logLevel"`
}

// Load reads configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.websocketPath", "/api/v1/ws")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second)
	v.SetDefault("server.enableMetrics", true)
	v.SetDefault("engine.numWorkers", 0)
	v.SetDefault("engine.queueSize", 0)
	v.SetDefault("engine.progressInterval", 100)
	v.SetDefault("logLevel", "info")

	v.SetEnvPrefix("RISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
