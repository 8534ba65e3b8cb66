package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the top-level birthlog configuration.
type Config struct {
	DBPath             string                           `mapstructure:"db_path"`
	Timezone           string                           `mapstructure:"timezone"`
	DefaultWeeklyGoal  int                              `mapstructure:"default_weekly_goal"`
	Output             Output                           `mapstructure:"output"`
	Server             Server                           `mapstructure:"server"`
	CustomAchievements map[string]AchievementDefinition `mapstructure:"custom_achievements"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// Server configures the optional HTTP surface.
type Server struct {
	Addr           string   `mapstructure:"addr"`
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateBurst      int      `mapstructure:"rate_burst"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AchievementDefinition describes a user-defined achievement. Its ID is the
// key it is configured under.
type AchievementDefinition struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Icon        string `mapstructure:"icon"`
	Category    string `mapstructure:"category"`
	Type        string `mapstructure:"type"`
	Value       int    `mapstructure:"value"`
	Condition   string `mapstructure:"condition"`
}

// Location returns the configured time zone, or the system zone when none
// is set.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. A .env file next to the
// config file is loaded first; BIRTHLOG_* variables override file values.
func Load(cfgFile string) (*Config, error) {
	dir := ConfigDir()
	if cfgFile != "" {
		dir = filepath.Dir(expandPath(cfgFile))
	}
	if err := godotenv.Load(filepath.Join(dir, DefaultEnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", DefaultEnvFile, err)
	}

	v := viper.New()

	v.SetDefault("db_path", DBPath())
	v.SetDefault("timezone", "")
	v.SetDefault("default_weekly_goal", DefaultWeeklyGoal)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("server.addr", DefaultServer.Addr)
	v.SetDefault("server.rate_limit", DefaultServer.RateLimit)
	v.SetDefault("server.rate_burst", DefaultServer.RateBurst)
	v.SetDefault("server.allowed_origins", DefaultServer.AllowedOrigins)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.DBPath = expandPath(cfg.DBPath)
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DBPath returns the full path to the default SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
