package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cansyan/machview/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "MACHVIEW"

// Config holds every tunable of the dashboard.
type Config struct {
	// Timeout bounds each backend call.
	Timeout time.Duration `mapstructure:"timeout"`
	// Pause is how long a transient status dialog stays up before the
	// following refresh.
	Pause    time.Duration `mapstructure:"pause"`
	LogFile  string        `mapstructure:"log_file"`
	Debug    bool          `mapstructure:"debug"`
	Strict   bool          `mapstructure:"strict"`
	NoShadow bool          `mapstructure:"no_shadow"`
	// Shell is the command prefix run against the selected image name.
	Shell string `mapstructure:"shell"`
}

// DefaultConfig mirrors the flag defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 5 * time.Second,
		Pause:   time.Second,
		LogFile: logger.DefaultPath(),
		Shell:   "machinectl shell",
	}
}

// configKeys maps config keys to their flag names.
var configKeys = map[string]string{
	"timeout":   "timeout",
	"pause":     "pause",
	"log_file":  "log-file",
	"debug":     "debug",
	"strict":    "strict",
	"no_shadow": "no-shadow",
	"shell":     "shell",
}

// LoadConfig resolves the configuration with precedence
// flags > MACHVIEW_* env vars > defaults. flags may be nil.
func LoadConfig(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("pause", def.Pause)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("debug", def.Debug)
	v.SetDefault("strict", def.Strict)
	v.SetDefault("no_shadow", def.NoShadow)
	v.SetDefault("shell", def.Shell)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key := range configKeys {
		env := envPrefix + "_" + strings.ToUpper(key)
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	if flags != nil {
		for key, name := range configKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("binding %s flag: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the dashboard cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Pause < 0 {
		errs = append(errs, fmt.Errorf("pause must not be negative, got %s", c.Pause))
	}
	if len(strings.Fields(c.Shell)) == 0 {
		errs = append(errs, errors.New("shell command must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// registerFlags declares the command-line flags backing Config.
func registerFlags(flags *pflag.FlagSet) {
	def := DefaultConfig()
	flags.Duration("timeout", def.Timeout, "upper bound for each machined call")
	flags.Duration("pause", def.Pause, "how long status dialogs stay up after start/stop")
	flags.String("log-file", def.LogFile, "file to write logs to")
	flags.Bool("debug", def.Debug, "enable debug logging")
	flags.Bool("strict", def.Strict, "exit with an error on unrecognized input")
	flags.Bool("no-shadow", def.NoShadow, "draw dialogs without a drop shadow")
	flags.String("shell", def.Shell, "command used to open a shell in a running machine")
}
