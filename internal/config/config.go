// Package config loads schemarev configuration from an optional YAML file,
// a local .env, and SCHEMAREV_* environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Library LibraryConfig `mapstructure:"library"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Server  ServerConfig  `mapstructure:"server"`
	Enhance EnhanceConfig `mapstructure:"enhance"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type EngineConfig struct {
	MinConfidence     float64 `mapstructure:"min_confidence"`
	MergeTranslations bool    `mapstructure:"merge_translations"`
}

// LibraryConfig wires the optional pattern library. DSN is a full
// postgres:// URL; the embedding endpoint speaks the OpenAI embeddings API.
type LibraryConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	DSN               string `mapstructure:"dsn"`
	EmbeddingEndpoint string `mapstructure:"embedding_endpoint"`
	EmbeddingModel    string `mapstructure:"embedding_model"`
	EmbeddingAPIKey   string `mapstructure:"embedding_api_key"`
	EmbeddingDims     int    `mapstructure:"embedding_dims"`
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type EnhanceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration. A missing config file is not an error; the
// defaults plus environment cover the common CLI path.
func Load(path string) (*Config, error) {
	// .env first so AutomaticEnv sees its values.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SCHEMAREV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("engine.min_confidence", 0.80)
	v.SetDefault("engine.merge_translations", true)

	v.SetDefault("library.enabled", false)
	v.SetDefault("library.embedding_model", "text-embedding-3-small")
	v.SetDefault("library.embedding_dims", 1024)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "127.0.0.1:6379")
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8091)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("enhance.enabled", false)
	v.SetDefault("enhance.model", "gpt-4o-mini")
}

// Validate checks cross-field consistency, not just presence.
func (c *Config) Validate() error {
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 1 {
		return fmt.Errorf("engine.min_confidence must be within [0,1], got %v", c.Engine.MinConfidence)
	}
	if c.Library.Enabled && c.Library.DSN == "" {
		return fmt.Errorf("library.dsn is required when the pattern library is enabled")
	}
	if c.Enhance.Enabled && c.Enhance.APIKey == "" {
		return fmt.Errorf("enhance.api_key is required when enhancement is enabled")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}
