package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. CLAWSHIELD_LISTEN.
const EnvPrefix = "CLAWSHIELD"

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.baseDir = filepath.Dir(absPath)
	cfg.Scan.DefaultPack = NormalizePack(cfg.Scan.DefaultPack)

	return cfg, nil
}

// LoadOrDefault loads path when set and falls back to Default otherwise.
// Environment overrides are applied in both cases.
func LoadOrDefault(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type envOverrides struct {
	Listen        string `envconfig:"LISTEN"`
	DefaultPack   string `envconfig:"DEFAULT_PACK"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	LogFormat     string `envconfig:"LOG_FORMAT"`
	ScanLog       string `envconfig:"SCAN_LOG"`
	MetricsListen string `envconfig:"METRICS_LISTEN"`
}

// ApplyEnv overrides fields from CLAWSHIELD_* variables that are set.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("load environment overrides: %w", err)
	}

	setIf(&c.Server.Listen, env.Listen)
	setIf(&c.Scan.DefaultPack, NormalizePack(env.DefaultPack))
	setIf(&c.Logging.Level, env.LogLevel)
	setIf(&c.Logging.Format, env.LogFormat)
	setIf(&c.Logging.ScanLog, env.ScanLog)
	setIf(&c.Metrics.Listen, env.MetricsListen)
	return nil
}

func setIf(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func (c *Config) resolvePath(p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	base := c.baseDir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, p)
}
