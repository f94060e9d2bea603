// Package config loads and validates the aiofile configuration from file,
// environment, and defaults.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/mrusso91/aiofile/internal/bytesize"
)

// Config captures the static configuration of the aiofile tooling.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (AIOFILE_*)
//  2. Configuration file (YAML)
//  3. Default values
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics contains the Prometheus exposition settings.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// IO configures the event loop and the worker-pool backend.
	IO IOConfig `mapstructure:"io" yaml:"io"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN or ERROR.
	Level string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR" yaml:"level"`

	// Format selects the output encoding: text or json.
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json" yaml:"format"`

	// Output is stdout, stderr, or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	// Enabled turns the metrics registry and listener on.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Listen is the host:port the /metrics endpoint binds to.
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port" yaml:"listen"`
}

// IOConfig configures the loop and the osfs worker pool.
type IOConfig struct {
	// Workers is the number of concurrent I/O workers.
	Workers int `mapstructure:"workers" validate:"required,gt=0" yaml:"workers"`

	// QueueDepth bounds both the worker submission queue and the loop's
	// completion queue.
	QueueDepth int `mapstructure:"queue_depth" validate:"required,gt=0" yaml:"queue_depth"`

	// BufferSize is the per-request buffer length used by streaming
	// commands. Accepts human-readable sizes like "4Mi".
	BufferSize bytesize.ByteSize `mapstructure:"buffer_size" validate:"required,gt=0" yaml:"buffer_size"`

	// Window is the number of requests kept in flight per handle by
	// streaming commands.
	Window int `mapstructure:"window" validate:"required,gt=0" yaml:"window"`
}

// Load loads configuration from file, environment, and defaults.
// An empty path means no config file: defaults plus environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("AIOFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Registering defaults makes every key visible to AutomaticEnv.
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(byteSizeDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// byteSizeDecodeHook converts strings and integers to bytesize.ByteSize, so
// config files can say "4Mi" or a plain byte count.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}
