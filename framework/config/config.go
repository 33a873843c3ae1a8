// Package config loads application settings from .env files and the process
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when Load is called without files. It may be
// absent.
const DefaultEnvFile = ".env"

// Config is the typed configuration handed to the application as
// app.configuration.
type Config struct {
	App AppConfig
	Log LogConfig

	// Values holds every key declared in the loaded env files with its
	// effective value. The process environment wins over file contents.
	Values map[string]string
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  int
}

// LogConfig is left blank when LOG_LEVEL or LOG_FORMAT is unset, so the
// kernel can pick defaults from the environment.
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

// Load reads envFiles into the process environment and builds a Config from
// it. Without arguments it reads DefaultEnvFile if present. Files named
// explicitly must exist.
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			files = []string{DefaultEnvFile}
		}
	}

	values := map[string]string{}
	if len(files) > 0 {
		declared, err := godotenv.Read(files...)
		if err != nil {
			return nil, fmt.Errorf("config: reading env files: %w", err)
		}
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("config: loading env files: %w", err)
		}
		for key := range declared {
			values[key] = os.Getenv(key)
		}
	}

	return &Config{
		App: AppConfig{
			Name:  Get("APP_NAME", "logos"),
			Env:   Get("APP_ENV", "local"),
			Debug: GetBool("APP_DEBUG", false),
			Port:  GetInt("APP_PORT", 8000),
		},
		Log: LogConfig{
			Level:  Get("LOG_LEVEL", ""),
			Format: Get("LOG_FORMAT", ""),
		},
		Values: values,
	}, nil
}

// Map renders the configuration as the nested mapping exposed under
// app.configuration.
func (c *Config) Map() map[string]any {
	values := make(map[string]any, len(c.Values))
	for k, v := range c.Values {
		values[k] = v
	}
	return map[string]any{
		"app": map[string]any{
			"name":  c.App.Name,
			"env":   c.App.Env,
			"debug": c.App.Debug,
			"port":  c.App.Port,
		},
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
		"values": values,
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
