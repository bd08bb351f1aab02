package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/fundview-dev/fundview/internal/aggregate"
)

// FileName is the default config file name.
const FileName = "fundview.yaml"

// EnvPrefix prefixes environment overrides, e.g. FUNDVIEW_FEED_SOURCE or
// FUNDVIEW_LOGGING_LEVEL.
const EnvPrefix = "FUNDVIEW"

// DefaultFeedSource is the published submissions sheet.
const DefaultFeedSource = "https://docs.google.com/spreadsheets/d/e/2PACX-1vSBULuD9RxIwHFhqDW431fnulpQ5HMT6jHdDWm5130HepSxDUB6_rq8FwkBEilJurnFQc-IMSKMYO3Q/pub?output=csv"

// Config represents the top-level fundview.yaml configuration.
type Config struct {
	Feed        FeedConfig        `yaml:"feed" envconfig:"FEED"`
	Funds       []Fund            `yaml:"funds" ignored:"true" validate:"dive"`
	DefaultFund string            `yaml:"default_fund" split_words:"true"`
	Aggregation AggregationConfig `yaml:"aggregation" envconfig:"AGGREGATION"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	History     HistoryConfig     `yaml:"history" envconfig:"HISTORY"`
	Server      ServerConfig      `yaml:"server" envconfig:"SERVER"`
}

// FeedConfig locates and reads the submissions feed.
type FeedConfig struct {
	Source     string        `yaml:"source" split_words:"true" validate:"required"`
	DateLayout string        `yaml:"date_layout" split_words:"true" validate:"required"`
	Timeout    time.Duration `yaml:"timeout" split_words:"true"`
}

// Fund maps a short selection key to the fund name used in the feed.
type Fund struct {
	Key  string `yaml:"key" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

// AggregationConfig is the default grouping and per-field reducers.
type AggregationConfig struct {
	GroupBy string            `yaml:"group_by" split_words:"true" validate:"required"`
	Fields  map[string]string `yaml:"fields" split_words:"true" validate:"required,min=1"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" split_words:"true" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" split_words:"true" validate:"oneof=text json"`
}

// HistoryConfig controls the feed load history file.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" split_words:"true"`
	Path    string `yaml:"path" split_words:"true" validate:"required_if=Enabled true"`
}

// ServerConfig controls the JSON API.
type ServerConfig struct {
	Addr string `yaml:"addr" split_words:"true" validate:"required,hostname_port"`
}

// Load reads a fundview.yaml file from disk, applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	defaults := cfg.Aggregation.Fields
	cfg.Aggregation.Fields = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Aggregation.Fields == nil {
		cfg.Aggregation.Fields = defaults
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied, for use
// when there is no config file.
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that every aggregation function is
// a known reducer.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := aggregate.DefaultRegistry().Validate(c.AggregationSpec()); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AggregationSpec returns a copy of the configured reducers.
func (c *Config) AggregationSpec() aggregate.Spec {
	spec := make(aggregate.Spec, len(c.Aggregation.Fields))
	for f, fn := range c.Aggregation.Fields {
		spec[f] = fn
	}
	return spec
}

// FundName resolves a selection key to a fund name. Anything that is not a
// configured key is taken as a literal fund name, so unexpected feed values
// stay selectable.
func (c *Config) FundName(keyOrName string) string {
	for _, f := range c.Funds {
		if strings.EqualFold(f.Key, keyOrName) {
			return f.Name
		}
	}
	return keyOrName
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			Source:     DefaultFeedSource,
			DateLayout: "2006-01-02",
			Timeout:    30 * time.Second,
		},
		Funds: []Fund{
			{Key: "future", Name: "Long-Term Future Fund"},
			{Key: "infrastructure", Name: "Effective Altruism Infrastructure Fund"},
			{Key: "animal", Name: "Animal Welfare Fund"},
			{Key: "health", Name: "Global Health and Development Fund"},
		},
		DefaultFund: "future",
		Aggregation: AggregationConfig{
			GroupBy: "fund",
			Fields: map[string]string{
				"payoutAmount": "sum",
				"fund":         "size",
				"rating":       "median",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "logs/load-history.csv",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}
