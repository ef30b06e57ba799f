// SPDX-License-Identifier: Apache-2.0

// Package config loads and validates the variants-mcp configuration file.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"
)

//go:embed schema.cue
var schemaSource string

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// ServerConfig controls how the MCP server is exposed.
type ServerConfig struct {
	Name      string `yaml:"name" json:"name"`
	Version   string `yaml:"version" json:"version"`
	Transport string `yaml:"transport" json:"transport"`
	// Address is the listen address used by the http transport.
	Address string `yaml:"address" json:"address"`
}

type LogConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

// NormalizerConfig selects how variant identifiers are generated.
type NormalizerConfig struct {
	IDMode   string `yaml:"id_mode" json:"id_mode"`
	IDPrefix string `yaml:"id_prefix" json:"id_prefix"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server     ServerConfig     `yaml:"server" json:"server"`
	Log        LogConfig        `yaml:"log" json:"log"`
	Normalizer NormalizerConfig `yaml:"normalizer" json:"normalizer"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every empty field with its default value.
func (c *Config) SetDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = "variants-mcp"
	}
	if c.Server.Version == "" {
		c.Server.Version = "dev"
	}
	if c.Server.Transport == "" {
		c.Server.Transport = TransportStdio
	}
	if c.Server.Transport == TransportHTTP && c.Server.Address == "" {
		c.Server.Address = "127.0.0.1:8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Normalizer.IDMode == "" {
		c.Normalizer.IDMode = "uuid"
	}
}

// Load reads the YAML file at path, applies defaults and validates the result.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against the embedded CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Server.Transport == TransportHTTP && c.Server.Address == "" {
		return fmt.Errorf("invalid config: server.address is required for the http transport")
	}
	return nil
}
