package config

import (
	"github.com/spf13/viper"

	"github.com/mrusso91/aiofile/internal/bytesize"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9109",
		},
		IO: IOConfig{
			Workers:    4,
			QueueDepth: 256,
			BufferSize: 4 * bytesize.MiB,
			Window:     8,
		},
	}
}

// setDefaults registers every default with viper so environment variables
// resolve even for keys absent from the config file.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.listen", d.Metrics.Listen)

	v.SetDefault("io.workers", d.IO.Workers)
	v.SetDefault("io.queue_depth", d.IO.QueueDepth)
	v.SetDefault("io.buffer_size", d.IO.BufferSize.String())
	v.SetDefault("io.window", d.IO.Window)
}
