// Package config holds the TOML configuration of the pqgo command.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"

	"pqgo/pkg/dilithium"
	"pqgo/pkg/kyber"
	"pqgo/pkg/log"
	"pqgo/pkg/round5"
)

// Config is the decoded configuration file.
type Config struct {
	Kyber     KyberConfig     `toml:"kyber"`
	Dilithium DilithiumConfig `toml:"dilithium"`
	Round5    Round5Config    `toml:"round5"`
	Log       LogConfig       `toml:"log"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Store     StoreConfig     `toml:"store"`
	Cache     CacheConfig     `toml:"cache"`
}

type KyberConfig struct {
	Mode string `toml:"mode"`
}

type DilithiumConfig struct {
	Mode string `toml:"mode"`
}

type Round5Config struct {
	Set            string `toml:"set"`
	RingMultiplier string `toml:"ring_multiplier"`
}

type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

// CacheConfig sizes the public matrix caches. Zero disables them.
type CacheConfig struct {
	MatrixEntries int `toml:"matrix_entries"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Kyber:     KyberConfig{Mode: kyber.Kyber768.Name},
		Dilithium: DilithiumConfig{Mode: dilithium.Mode2.Name},
		Round5: Round5Config{
			Set:            round5.R5ND3KEMb.Name,
			RingMultiplier: round5.ConstantTimeName,
		},
		Log:   LogConfig{Level: "info"},
		Store: StoreConfig{Path: "pqgo.db"},
	}
}

// Load decodes the file at path over Default and validates the result.
func Load(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, xerrors.Errorf("toml decoding %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, xerrors.Errorf("%s: unknown keys %v", path, undecoded)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes c to path with owner-only permissions.
func (c *Config) Save(path string) error {
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return xerrors.Errorf("opening config file: %w", err)
	}
	defer fd.Close()
	if err := toml.NewEncoder(fd).Encode(c); err != nil {
		return xerrors.Errorf("toml encoding: %w", err)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if _, ok := kyber.ParamSets[c.Kyber.Mode]; !ok {
		result = multierror.Append(result, xerrors.Errorf("kyber.mode: unknown parameter set %q", c.Kyber.Mode))
	}
	if _, ok := dilithium.Modes[c.Dilithium.Mode]; !ok {
		result = multierror.Append(result, xerrors.Errorf("dilithium.mode: unknown mode %q", c.Dilithium.Mode))
	}
	if _, ok := round5.ParamSets[c.Round5.Set]; !ok {
		result = multierror.Append(result, xerrors.Errorf("round5.set: unknown parameter set %q", c.Round5.Set))
	}
	if _, err := round5.MultiplierByName(c.Round5.RingMultiplier); err != nil {
		result = multierror.Append(result, xerrors.Errorf("round5.ring_multiplier: %w", err))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, xerrors.Errorf("log.level: %w", err))
	}
	if c.Store.Path == "" {
		result = multierror.Append(result, xerrors.New("store.path: empty"))
	}
	if c.Cache.MatrixEntries < 0 {
		result = multierror.Append(result, xerrors.Errorf("cache.matrix_entries: negative size %d", c.Cache.MatrixEntries))
	}
	return result.ErrorOrNil()
}
