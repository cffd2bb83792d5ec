package config

import (
	"errors"
	"io/fs"
	"os"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load layers the configuration: Default, then the YAML file at path (if
// path is not empty), then the process environment. A .env file in the
// working directory is loaded into the environment first; variables already
// set are not overwritten.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Join(ErrParseEnv, err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Join(ErrReadFile, err)
		}
		// Values in the file may reference the environment, e.g. ${APP_PASSWORD}.
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return Config{}, errors.Join(ErrParseFile, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParseEnv, err)
	}
	return cfg, nil
}

// Override returns c with every non-zero field of overlay applied on top.
// Command-line flags are collected into an overlay so an unset flag keeps
// the configured value.
func (c Config) Override(overlay Config) (Config, error) {
	if err := mergo.Merge(&c, overlay, mergo.WithOverride); err != nil {
		return Config{}, errors.Join(ErrMerge, err)
	}
	return c, nil
}
