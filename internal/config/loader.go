// Package config loads the daemon configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes one configured calendar source.
type SourceConfig struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Type    string `yaml:"type"` // "local" or "ics"
	URL     string `yaml:"url"`  // ics only
	Color   string `yaml:"color"`
	Enabled *bool  `yaml:"enabled"` // nil means enabled
}

// IsEnabled resolves the optional enabled flag, defaulting to true.
func (s SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Storage holds the local database settings.
type Storage struct {
	Path string `yaml:"path"`
}

// Config captures every setting the daemon reads.
type Config struct {
	LogLevel        string `yaml:"log_level"`
	WeekStart       string `yaml:"week_start"`
	ShowWeekNumbers bool   `yaml:"show_week_numbers"`

	// CacheRadius is how many months either side of the displayed month
	// to keep cached.
	CacheRadius int `yaml:"cache_radius"`

	// SyncSchedule is a cron expression driving periodic source syncs.
	SyncSchedule string `yaml:"sync_schedule"`

	Storage Storage        `yaml:"storage"`
	Sources []SourceConfig `yaml:"sources"`
}

// Default returns the configuration used when no file is present: a
// single local calendar, Monday weeks, hourly sync.
func Default() Config {
	return Config{
		LogLevel:        "info",
		WeekStart:       "monday",
		ShowWeekNumbers: false,
		CacheRadius:     2,
		SyncSchedule:    "0 * * * *",
		Storage:         Storage{Path: "calendar.db"},
		Sources: []SourceConfig{
			{ID: "personal", Name: "Personal", Type: "local"},
		},
	}
}

// Load reads and validates the configuration at path. A missing file
// yields the defaults; a present but malformed file is an error, since
// silently ignoring a broken config hides real mistakes.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	invalid := make([]string, 0, 2)

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, "log_level")
	}

	if _, err := parseWeekStart(c.WeekStart); err != nil {
		invalid = append(invalid, "week_start")
	}
	if c.CacheRadius < 0 {
		invalid = append(invalid, "cache_radius")
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		invalid = append(invalid, "storage.path")
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		field := fmt.Sprintf("sources[%d]", i)
		if src.ID == "" {
			invalid = append(invalid, field+".id")
		} else if seen[src.ID] {
			invalid = append(invalid, field+".id (duplicate)")
		}
		seen[src.ID] = true

		switch src.Type {
		case "local":
		case "ics":
			if src.URL == "" {
				invalid = append(invalid, field+".url")
			}
		default:
			invalid = append(invalid, field+".type")
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("config: invalid values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// FirstDayOfWeek resolves the configured week start.
func (c Config) FirstDayOfWeek() time.Weekday {
	day, err := parseWeekStart(c.WeekStart)
	if err != nil {
		return time.Monday
	}
	return day
}

func parseWeekStart(value string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "monday":
		return time.Monday, nil
	case "sunday":
		return time.Sunday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return time.Monday, fmt.Errorf("config: unknown week start %q", value)
	}
}
