package config

import "strings"

type Config struct {
	ConfigVersion int             `yaml:"configVersion" validate:"eq=1"`
	Server        ServerConfig    `yaml:"server"`
	Scan          ScanConfig      `yaml:"scan"`
	RateLimit     RateLimitConfig `yaml:"rateLimit"`
	Logging       LoggingConfig   `yaml:"logging"`
	Metrics       MetricsConfig   `yaml:"metrics"`

	baseDir string `yaml:"-"`
}

type ServerConfig struct {
	Listen string    `yaml:"listen"`
	TLS    TLSConfig `yaml:"tls"`
}

type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"certFile"`
	KeyFile  string `yaml:"keyFile"`
}

type ScanConfig struct {
	DefaultPack  string `yaml:"defaultPack" validate:"omitempty,oneof=basic strict paranoid"`
	MaxTextChars int    `yaml:"maxTextChars" validate:"gt=0"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes" validate:"gt=0"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps" validate:"gte=0"`
	Burst   int     `yaml:"burst" validate:"gte=0"`
}

type LoggingConfig struct {
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=console json"`
	ScanLog string `yaml:"scanLog"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

const (
	DefaultListen        = ":8080"
	DefaultMetricsListen = ":9090"
	DefaultMaxTextChars  = 200_000
	// A JSON \uXXXX escape spends six bytes per character, plus room for
	// the pack and editor fields.
	DefaultMaxBodyBytes = 6*DefaultMaxTextChars + 64<<10
)

// Default returns a configuration that runs without a file.
func Default() *Config {
	return &Config{
		ConfigVersion: 1,
		Server:        ServerConfig{Listen: DefaultListen},
		Scan: ScanConfig{
			DefaultPack:  "basic",
			MaxTextChars: DefaultMaxTextChars,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		Metrics:   MetricsConfig{Listen: DefaultMetricsListen},
	}
}

// NormalizePack lower-cases and trims a pack name so that validation
// accepts the same spellings as pack resolution.
func NormalizePack(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *Config) ResolvePath(path string) string {
	return c.resolvePath(path)
}
