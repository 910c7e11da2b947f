// The application's root configuration: traffic generator, stress server,
// HTTP client and logger settings, all loadable from config.yaml or the
// ORGANIC_* environment.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the root configuration structure for the entire application.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Network   NetworkConfig   `mapstructure:"network"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Server    ServerConfig    `mapstructure:"server"`
}

// ColorConfig defines the color settings for different log levels.
// These are used for console output to make logs more readable.
type ColorConfig struct {
	Debug string `mapstructure:"debug"`
	Info  string `mapstructure:"info"`
	Warn  string `mapstructure:"warn"`
	Error string `mapstructure:"error"`
	Fatal string `mapstructure:"fatal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level"`
	Format      string      `mapstructure:"format"`
	AddSource   bool        `mapstructure:"add_source"`
	ServiceName string      `mapstructure:"service_name"`
	LogFile     string      `mapstructure:"log_file"`
	MaxSize     int         `mapstructure:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups"`
	MaxAge      int         `mapstructure:"max_age"`
	Compress    bool        `mapstructure:"compress"`
	Colors      ColorConfig `mapstructure:"colors"`
}

// NetworkConfig holds settings for the HTTP client used by sessions.
type NetworkConfig struct {
	// Timeout bounds a single request end to end. A request that exceeds it
	// counts as one failed page view, nothing more.
	Timeout time.Duration     `mapstructure:"timeout" validate:"gt=0"`
	Headers map[string]string `mapstructure:"headers"`
}

// GeneratorConfig holds settings for the traffic generator run.
// TargetURL is populated from the CLI positional argument.
type GeneratorConfig struct {
	TargetURL       string        `mapstructure:"target_url"`
	ConcurrentUsers int           `mapstructure:"concurrent_users" validate:"gte=1"`
	DurationSeconds int           `mapstructure:"duration_seconds" validate:"gte=1"`
	TickInterval    time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
}

// Duration returns the configured run length as a time.Duration.
func (g GeneratorConfig) Duration() time.Duration {
	return time.Duration(g.DurationSeconds) * time.Second
}

// ServerConfig holds settings for the synthetic stress server.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	// ServerID identifies this instance in X-Server-ID headers. Defaults to
	// the hostname so a swarm of replicas is distinguishable out of the box.
	ServerID string `mapstructure:"server_id"`
}

// SetDefaults registers default values so the app can run with no config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "web-stress")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	v.SetDefault("network.timeout", 60*time.Second)

	v.SetDefault("generator.concurrent_users", 50)
	v.SetDefault("generator.duration_seconds", 300)
	v.SetDefault("generator.tick_interval", time.Second)

	v.SetDefault("server.addr", ":7777")
}

// Validate checks the configuration for values that would make a run
// meaningless. A failure here is fatal before any traffic is generated.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateTargetURL checks the base URL the generator will hit. Kept out of
// the struct tags because the serve command runs without a target.
func ValidateTargetURL(target string) error {
	if err := validator.New().Var(target, "required,url"); err != nil {
		return fmt.Errorf("invalid target URL %q: %w", target, err)
	}
	return nil
}

// Load initializes the configuration singleton from Viper.
func Load(v *viper.Viper) error {
	var loadErr error
	once.Do(func() {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			loadErr = fmt.Errorf("error unmarshaling config: %w", err)
			return
		}
		instance = &cfg
	})
	return loadErr
}

// Set stores a fully-built configuration, replacing whatever Load produced.
// The CLI uses this after merging flags into the unmarshaled config.
func Set(cfg *Config) {
	instance = cfg
}

// Get returns the loaded configuration instance.
func Get() *Config {
	if instance == nil {
		panic("Configuration not initialized. Call config.Load() in the root command.")
	}
	return instance
}
