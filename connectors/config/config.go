package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	dc "pr-dashboard/domain/config"
)

// PathFromEnv returns CONFIG_PATH or ./config.yml.
func PathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config.yml"
}

// Load parses the YAML configuration file at path on top of the defaults,
// then applies PRDASH_* environment overrides. A missing file is not an
// error.
func Load(path string) (*dc.Config, error) {
	c := dc.Default()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug(fmt.Sprintf("No config file at %s, using defaults", path))
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		slog.Info(fmt.Sprintf("Loaded config: %s", path))
	}
	if err := applyEnv(c); err != nil {
		return nil, err
	}
	return c, nil
}

func applyEnv(c *dc.Config) error {
	str := map[string]*string{
		"PRDASH_ADDR":          &c.Server.Addr,
		"PRDASH_DATA_SOURCE":   &c.Data.Source,
		"PRDASH_DATA_TOKEN":    &c.Data.Token,
		"PRDASH_TIMEZONE":      &c.Data.Timezone,
		"PRDASH_AUTH_USERNAME": &c.Auth.Username,
		"PRDASH_AUTH_PASSWORD": &c.Auth.Password,
		"PRDASH_LOG_LEVEL":     &c.Log.Level,
		"PRDASH_LOG_FORMAT":    &c.Log.Format,
	}
	for k, dst := range str {
		if v, ok := os.LookupEnv(k); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("PRDASH_WINDOW_DAYS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PRDASH_WINDOW_DAYS has invalid value %q: %w", v, err)
		}
		c.Data.WindowDays = n
	}
	return nil
}

// ParseLevel maps a config level name onto slog levels. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Logger builds the slog logger described by the log section.
func Logger(c *dc.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(c.Log.Level)}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
