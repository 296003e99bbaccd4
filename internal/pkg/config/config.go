// Package config loads endpoint configuration from the environment.
//
// Flags always take precedence; the environment only fills in values the
// operator left off the command line, which keeps auth tokens out of
// shell history.
package config

import (
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix shared by all environment variables read by
// the tool, e.g. SHREDCMP_FIRST_URI.
const EnvPrefix = "SHREDCMP_"

// Config holds per-stream connection settings sourced from the environment.
type Config struct {
	// FirstURI and SecondURI are websocket endpoint URIs.
	FirstURI  string `koanf:"first_uri"`
	SecondURI string `koanf:"second_uri"`

	// FirstAuth and SecondAuth are authorization header values.
	FirstAuth  string `koanf:"first_auth"`
	SecondAuth string `koanf:"second_auth"`
}

// Load reads SHREDCMP_* environment variables into a Config.
// Missing variables leave the corresponding fields empty.
func Load() (*Config, error) {
	k := koanf.New(".")

	// SHREDCMP_FIRST_URI -> first_uri (flat keys, underscores preserved
	// to match the koanf tags on the struct).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Fallback returns value unless it is empty, in which case it returns
// the environment-sourced alternative.
func Fallback(value, fromEnv string) string {
	if value != "" {
		return value
	}
	return fromEnv
}
