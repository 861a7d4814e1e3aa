// Package config holds the settings of the mixmaster command, read from a
// YAML file and overridden by MIXMASTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/cozy/mixmaster-go/effect"
	"github.com/cozy/mixmaster-go/mixmaster"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the mixmaster configuration.
type Config struct {
	// HistoryElementID is the id of the hidden element the history is saved
	// to.
	HistoryElementID string `yaml:"history_element_id" env:"MIXMASTER_HISTORY_ELEMENT_ID"`
	// DeletedClass is the class of the placeholder left by deletions.
	DeletedClass string `yaml:"deleted_class" env:"MIXMASTER_DELETED_CLASS"`
	// MaxHTMLLength caps the markup offered to the edit dialog.
	MaxHTMLLength int `yaml:"max_html_length" env:"MIXMASTER_MAX_HTML_LENGTH"`
	// Sanitize filters replacement markup through a UGC policy.
	Sanitize bool `yaml:"sanitize" env:"MIXMASTER_SANITIZE"`
	// Effects logs the transitions that would be drawn.
	Effects bool `yaml:"effects" env:"MIXMASTER_EFFECTS"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		HistoryElementID: mixmaster.DefaultHistoryElementID,
		DeletedClass:     mixmaster.DefaultDeletedClass,
		MaxHTMLLength:    mixmaster.DefaultMaxHTMLLength,
		Effects:          true,
	}
}

// Load reads the configuration file at path. A missing file, or an empty
// path, gives the defaults. Environment variables win over the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that have no usable zero.
func (c *Config) Validate() error {
	if c.HistoryElementID == "" {
		return errors.New("history_element_id must not be empty")
	}
	if c.MaxHTMLLength < 0 {
		return fmt.Errorf("max_html_length must not be negative, got %d", c.MaxHTMLLength)
	}
	return nil
}

// Options turns the configuration into mixmaster options.
func (c *Config) Options(logger *zap.Logger) mixmaster.Options {
	opts := mixmaster.Options{
		Sanitize:         c.Sanitize,
		HistoryElementID: c.HistoryElementID,
		DeletedClass:     c.DeletedClass,
		MaxHTMLLength:    c.MaxHTMLLength,
		Logger:           logger,
	}
	if c.Effects {
		opts.Transitions = effect.NewLogTransitioner(logger)
	}
	return opts
}
