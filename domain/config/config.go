package config

import (
	"fmt"
	"time"
)

// Config represents the structure of config.yml used by the tool.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Data struct {
		// Source is a local path or an http(s) URL.
		Source          string `yaml:"source"`
		Token           string `yaml:"token"`
		Quoted          bool   `yaml:"quoted"`
		WindowDays      int    `yaml:"window_days"`
		Timezone        string `yaml:"timezone"`
		TopContributors int    `yaml:"top_contributors"`
		OutDir          string `yaml:"out_dir"`
	} `yaml:"data"`
	Auth struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Server.Addr = ":8080"
	c.Data.Source = "data/pr_data.csv"
	c.Data.WindowDays = 30
	c.Data.TopContributors = 5
	c.Data.OutDir = "data"
	c.Auth.Username = "admin"
	c.Auth.Password = "password"
	c.Log.Level = "info"
	c.Log.Format = "text"
	return &c
}

// Location resolves Data.Timezone; empty means the host's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Data.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Data.Timezone)
	if err != nil {
		return nil, fmt.Errorf("data.timezone %q: %w", c.Data.Timezone, err)
	}
	return loc, nil
}
