package config

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/mutker/framectl/internal/errors"
)

const (
	DefaultInterval  = 5
	DefaultStaleness = 60
	DefaultLogLevel  = "info"

	DefaultProfilePath = "/etc/framectl/profile.toml"
	DefaultECTool      = "framework_tool"
	DefaultHistoryDB   = "/var/lib/framectl/history.db"

	// Environment variable naming an explicit config file, mainly for
	// tests and ad-hoc runs.
	configPathEnv = "FRAMECTL_CONFIG"

	configName = "framectl"
	configType = "toml"
	configDir  = "/etc"

	maxInterval = 60
)

// Config holds the daemon settings. The fan profile itself lives in a
// separate file managed by the profile package; this covers everything
// around it.
type Config struct {
	Interval    int    `mapstructure:"interval"`
	Staleness   int    `mapstructure:"staleness"`
	LogLevel    string `mapstructure:"log_level"`
	Monitor     bool   `mapstructure:"monitor"`
	ProfilePath string `mapstructure:"profile"`
	ECTool      string `mapstructure:"ec_tool"`
	History     bool   `mapstructure:"history"`
	HistoryDB   string `mapstructure:"database"`
}

// Load reads configuration from defaults, an optional TOML file and
// command line flags, in increasing order of precedence.
func Load() (*Config, error) {
	errFactory := errors.New()

	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	// Tolerate foreign flags so Load works under go test.
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Int("interval", DefaultInterval, "Seconds between control loop ticks")
	fs.Int("staleness", DefaultStaleness, "Seconds before an unchanged fan duty is reasserted")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("monitor", false, "Only monitor temperature and fan state, do not actuate")
	fs.String("profile", DefaultProfilePath, "Path to the fan profile file")
	fs.String("ec-tool", DefaultECTool, "Command used to talk to the embedded controller")
	fs.Bool("history", false, "Record tick history to a database")
	fs.String("database", DefaultHistoryDB, "Path to the tick history database")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("staleness", DefaultStaleness)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("monitor", false)
	v.SetDefault("profile", DefaultProfilePath)
	v.SetDefault("ec_tool", DefaultECTool)
	v.SetDefault("history", false)
	v.SetDefault("database", DefaultHistoryDB)

	if path := os.Getenv(configPathEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(configDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Explicitly set flags override file values. Flag names use dashes,
	// config keys use underscores.
	fs.Visit(func(f *pflag.Flag) {
		v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 || c.Interval > maxInterval {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.Staleness <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "staleness must be positive")
	}
	if !isValidLogLevel(c.LogLevel) {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.ProfilePath == "" {
		return errFactory.WithData(errors.ErrMissingConfig, "profile")
	}
	if c.ECTool == "" {
		return errFactory.WithData(errors.ErrMissingConfig, "ec_tool")
	}
	if c.History && c.HistoryDB == "" {
		return errFactory.WithData(errors.ErrMissingConfig, "database")
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	default:
		return false
	}
}
