// Package config loads versekeep configuration from defaults, an optional
// YAML file, VERSEKEEP_ environment variables, and command-line flags, in
// that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/versekeep/versekeep/internal/domain"
)

// envPrefix is stripped from environment variables; "__" separates nesting
// levels so keys containing underscores stay addressable
// (VERSEKEEP_REVIEW__DUE_LIMIT -> review.due_limit).
const envPrefix = "VERSEKEEP_"

// Corpus describes where the verse corpus comes from: either a local file or
// a file inside a git repository.
type Corpus struct {
	Path    string `koanf:"path"`
	GitURL  string `koanf:"git_url"`
	GitFile string `koanf:"git_file"`
}

// Review holds review-flow tunables.
type Review struct {
	DueLimit int `koanf:"due_limit" validate:"gt=0"`
}

// TopVerse is one entry of the static top memory verses table.
type TopVerse struct {
	Book    string `koanf:"book" validate:"required"`
	Chapter int    `koanf:"chapter" validate:"gt=0"`
	Verse   int    `koanf:"verse" validate:"gt=0"`
	Text    string `koanf:"text" validate:"required"`
}

// Config is the complete versekeep configuration.
type Config struct {
	DB        string     `koanf:"db" validate:"required"`
	Addr      string     `koanf:"addr" validate:"required"`
	Corpus    Corpus     `koanf:"corpus"`
	Review    Review     `koanf:"review"`
	TopVerses []TopVerse `koanf:"top_verses" validate:"dive"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DB:     "versekeep.db",
		Addr:   ":8080",
		Review: Review{DueLimit: 10},
	}
}

// Load layers configuration sources over the defaults. The file path comes
// from the "config" flag; a missing default file is not an error. Flags that
// were explicitly set take the highest precedence.
func Load(flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path, _ := flags.GetString("config"); path != "" {
		if _, err := os.Stat(path); err == nil || flags.Changed("config") {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.ReplaceAll(key, "__", "."), value
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load environment config: %w", err)
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load flag config: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// TopMemoryVerses converts the configured table to domain verses, falling
// back to the built-in list when the configuration supplies none.
func (c Config) TopMemoryVerses() []domain.Verse {
	if len(c.TopVerses) == 0 {
		return domain.DefaultTopVerses()
	}
	verses := make([]domain.Verse, len(c.TopVerses))
	for i, tv := range c.TopVerses {
		verses[i] = domain.Verse{Book: tv.Book, Chapter: tv.Chapter, Verse: tv.Verse, Text: tv.Text}
	}
	return verses
}
