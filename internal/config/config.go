// Package config loads the YAML configuration shared by the CLI, the server
// and the demos.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"qdemos/internal/sim"
)

const (
	defaultShots      = 1024
	defaultListenAddr = ":8080"
	defaultLogLevel   = "info"

	defaultZXQubits = 6
	defaultZXDepth  = 25
	defaultZXPHad   = 0.2
	defaultZXPT     = 0.2
)

type Config struct {
	Shots int `yaml:"shots"`
	// Seed for every random choice; 0 picks a time-based seed.
	Seed      int64           `yaml:"seed"`
	UseDevice bool            `yaml:"useDevice"`
	Provider  *ProviderConfig `yaml:"provider"`
	Server    *ServerConfig   `yaml:"server"`
	Logger    *LogConfig      `yaml:"logger"`
	// Noise replaces the emulated devices' own noise models when set.
	Noise *NoiseConfig `yaml:"noise"`
	ZX    *ZXConfig    `yaml:"zx"`
}

type ProviderConfig struct {
	// URL of a remote backend server. Empty means local backends only.
	URL string `yaml:"url"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

type NoiseConfig struct {
	SingleQubitError float64 `yaml:"singleQubitError"`
	TwoQubitError    float64 `yaml:"twoQubitError"`
	ReadoutError     float64 `yaml:"readoutError"`
}

// ZXConfig holds the parameters of the random circuit fed to the ZX
// pipeline.
type ZXConfig struct {
	Qubits int     `yaml:"qubits"`
	Depth  int     `yaml:"depth"`
	PHad   float64 `yaml:"pHad"`
	PT     float64 `yaml:"pT"`
}

// WithDefaults returns a copy of the ZXConfig with missing sizes set to
// their defaults. Probabilities are kept as given since zero is valid.
func (c ZXConfig) WithDefaults() ZXConfig {
	cpy := c
	if cpy.Qubits == 0 {
		cpy.Qubits = defaultZXQubits
	}
	if cpy.Depth == 0 {
		cpy.Depth = defaultZXDepth
	}
	return cpy
}

// DefaultZX is used when the configuration has no zx section.
func DefaultZX() ZXConfig {
	return ZXConfig{Qubits: defaultZXQubits, Depth: defaultZXDepth, PHad: defaultZXPHad, PT: defaultZXPT}
}

// WithDefaults returns a copy of the Config with every section present and
// missing fields set to their default values. Noise stays nil when unset.
func (c Config) WithDefaults() Config {
	cpy := c
	if cpy.Shots == 0 {
		cpy.Shots = defaultShots
	}
	if cpy.Provider == nil {
		cpy.Provider = &ProviderConfig{}
	}
	server := ServerConfig{}
	if cpy.Server != nil {
		server = *cpy.Server
	}
	if server.ListenAddr == "" {
		server.ListenAddr = defaultListenAddr
	}
	cpy.Server = &server

	logger := LogConfig{}
	if cpy.Logger != nil {
		logger = *cpy.Logger
	}
	if logger.Level == "" {
		logger.Level = defaultLogLevel
	}
	cpy.Logger = &logger

	zx := DefaultZX()
	if cpy.ZX != nil {
		zx = cpy.ZX.WithDefaults()
	}
	cpy.ZX = &zx
	return cpy
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	if c.Shots < 0 {
		return errors.Errorf("shots must not be negative, got %d", c.Shots)
	}
	if n := c.Noise; n != nil {
		for name, p := range map[string]float64{
			"singleQubitError": n.SingleQubitError,
			"twoQubitError":    n.TwoQubitError,
			"readoutError":     n.ReadoutError,
		} {
			if p < 0 || p > 1 {
				return errors.Errorf("noise.%s must be in [0, 1], got %g", name, p)
			}
		}
	}
	if zx := c.ZX; zx != nil {
		if zx.Qubits < 2 || zx.Depth < 1 {
			return errors.Errorf("zx needs at least two qubits and one gate, got %d qubits and depth %d", zx.Qubits, zx.Depth)
		}
		if zx.PHad < 0 || zx.PT < 0 || zx.PHad+zx.PT > 1 {
			return errors.Errorf("zx probabilities must be non-negative and sum to at most 1, got pHad=%g pT=%g", zx.PHad, zx.PT)
		}
	}
	return nil
}

// NoiseModel converts the noise section for the simulator. It returns nil
// when no noise section is configured.
func (c Config) NoiseModel() *sim.NoiseModel {
	if c.Noise == nil {
		return nil
	}
	return &sim.NoiseModel{
		SingleQubitError: c.Noise.SingleQubitError,
		TwoQubitError:    c.Noise.TwoQubitError,
		ReadoutError:     c.Noise.ReadoutError,
	}
}

// LoadConfig reads the YAML file at path. An empty path or a missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrap(err, "load config")
		default:
			if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", path)
			}
		}
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "save config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "save config")
}
