// Package config loads the settings shared by the C API and the walletctl
// command: a TOML file whose values can be overridden by XMRWALLET_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/itswisdomagain/xmrwallet/asset"
	"github.com/kelseyhightower/envconfig"
	"github.com/naoina/toml"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "XMRWALLET"

const (
	DefaultEngineDriver = "sim"
	DefaultLogLevel     = "info"
	DefaultLogFileName  = "xmrwallet.log"
)

type Config struct {
	Network      string `toml:"network" split_words:"true"`
	DataDir      string `toml:"dataDir" split_words:"true"`
	LogDir       string `toml:"logDir" split_words:"true"`
	LogLevel     string `toml:"logLevel" split_words:"true"`
	EngineDriver string `toml:"engineDriver" split_words:"true"`
	DefaultNode  string `toml:"defaultNode" split_words:"true"`
	TrustNode    bool   `toml:"trustNode" split_words:"true"`
	// Passphrase encrypts the seed at rest. Prefer the environment over the
	// config file for this one.
	Passphrase string `toml:"passphrase" split_words:"true"`
}

// Default returns a Config rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Network:      asset.Mainnet.String(),
		DataDir:      filepath.Join(dir, "data"),
		LogDir:       filepath.Join(dir, "logs"),
		LogLevel:     DefaultLogLevel,
		EngineDriver: DefaultEngineDriver,
	}
}

// DefaultDir is the directory used when no config path or data dir is given.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xmrwallet"
	}
	return filepath.Join(home, ".xmrwallet")
}

// Load reads the TOML file at path, if it exists, over the defaults for
// DefaultDir and then applies environment overrides. A missing file is not
// an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default(DefaultDir())
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	cfg.sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) readFile(path string) error {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	if err := toml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

func (cfg *Config) sanitize() {
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.LogDir = expandHome(cfg.LogDir)
	cfg.DefaultNode = strings.TrimSpace(cfg.DefaultNode)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.EngineDriver == "" {
		cfg.EngineDriver = DefaultEngineDriver
	}
}

// Validate checks the values that would otherwise fail later, deep inside
// controller construction.
func (cfg *Config) Validate() error {
	if _, err := cfg.Net(); err != nil {
		return err
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if cfg.DefaultNode != "" {
		if err := asset.ValidateNodeAddress(cfg.DefaultNode); err != nil {
			return err
		}
	}
	return nil
}

// Net parses the configured network name.
func (cfg *Config) Net() (asset.Network, error) {
	return asset.NetFromString(cfg.Network)
}

// Write saves cfg to path as TOML.
func (cfg *Config) Write(path string) error {
	b, err := toml.Marshal(*cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
