// Package config provides configuration loading and defaults for birthlog.
package config

// DefaultConfigDir is the default location for birthlog configuration.
const DefaultConfigDir = "~/.config/birthlog"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "birthlog.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultEnvFile is the optional dotenv file read from the config directory.
const DefaultEnvFile = ".env"

// EnvPrefix prefixes environment variable overrides, e.g. BIRTHLOG_TIMEZONE.
const EnvPrefix = "BIRTHLOG"

// DefaultWeeklyGoal is the weekly goal of a fresh installation.
const DefaultWeeklyGoal = 1

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultServer holds the defaults of the HTTP surface.
var DefaultServer = Server{
	Addr:           "127.0.0.1:8080",
	RateLimit:      10,
	RateBurst:      20,
	AllowedOrigins: []string{"http://localhost:3000"},
}
