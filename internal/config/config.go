// Package config loads obfuscator settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"evmobf/internal/obfuscation"
)

// Config represents configuration for the obfuscator
type Config struct {
	MaxSites       int    `toml:"max_sites" json:"maxSites" jsonschema:"title=Max Sites,description=Maximum number of jump sites to obfuscate (0 = all),minimum=0"`
	Seed           uint64 `toml:"seed" json:"seed" jsonschema:"title=Seed,description=Seed for decoy selection (0 = random)"`
	Overflow       string `toml:"overflow" json:"overflow" jsonschema:"title=Overflow Policy,description=What to do when a detour does not fit a PUSH operand,enum=fail,enum=skip,default=fail"`
	DetachMetadata bool   `toml:"detach_metadata" json:"detachMetadata" jsonschema:"title=Detach Metadata,description=Move the solc CBOR metadata trailer past the appended detours"`
	Prefix         bool   `toml:"prefix" json:"prefix" jsonschema:"title=Prefix,description=Emit output with a 0x prefix"`
	Debug          bool   `toml:"debug" json:"debug" jsonschema:"title=Debug,description=Enable debug logging"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{Overflow: "fail"}
}

// Load reads a TOML file over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.MaxSites < 0 {
		return errors.New("max_sites must not be negative")
	}
	if _, err := obfuscation.ParseOverflowPolicy(c.Overflow); err != nil {
		return err
	}
	return nil
}

// Options converts the config into obfuscator options.
func (c Config) Options() (obfuscation.Options, error) {
	policy, err := obfuscation.ParseOverflowPolicy(c.Overflow)
	if err != nil {
		return obfuscation.Options{}, err
	}
	return obfuscation.Options{
		MaxSites:       c.MaxSites,
		Overflow:       policy,
		DetachMetadata: c.DetachMetadata,
		Seed:           c.Seed,
	}, nil
}
