// Package config loads msgrisk configuration from an optional YAML file and
// MSGRISK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/antifraud/msgrisk/pkg/postgres"
)

// EnvPrefix is prepended to every environment variable; nested keys use "_".
const EnvPrefix = "MSGRISK"

// Config holds all configuration for the message risk service.
type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Model     ModelConfig     `mapstructure:"model"`
	Keywords  KeywordsConfig  `mapstructure:"keywords"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	GRPCPort        int           `mapstructure:"grpc_port"`
	HTTPPort        int           `mapstructure:"http_port"`
	TLSCertFile     string        `mapstructure:"tls_cert_file"`
	TLSKeyFile      string        `mapstructure:"tls_key_file"`
	Reflection      bool          `mapstructure:"reflection"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// TLSEnabled reports whether both certificate and key are configured.
func (s ServerConfig) TLSEnabled() bool {
	return s.TLSCertFile != "" && s.TLSKeyFile != ""
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// Postgres converts to the pool configuration.
func (d DatabaseConfig) Postgres() postgres.Config {
	return postgres.Config{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: d.Name,
		SSLMode:  d.SSLMode,
		MaxConns: d.MaxConns,
		MinConns: d.MinConns,
	}
}

type KafkaConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	ClientID        string   `mapstructure:"client_id"`
	ConsumerGroup   string   `mapstructure:"consumer_group"`
	EventsTopic     string   `mapstructure:"events_topic"`
	InboundTopic    string   `mapstructure:"inbound_topic"`
	ConsumerEnabled bool     `mapstructure:"consumer_enabled"`
	SASLEnabled     bool     `mapstructure:"sasl_enabled"`
	SASLMechanism   string   `mapstructure:"sasl_mechanism"`
	SASLUsername    string   `mapstructure:"sasl_username"`
	SASLPassword    string   `mapstructure:"sasl_password"`
	TLS             bool     `mapstructure:"tls"`
	CAFile          string   `mapstructure:"ca_file"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ModelConfig struct {
	InferenceURL    string        `mapstructure:"inference_url"`
	Name            string        `mapstructure:"name"`
	Version         string        `mapstructure:"version"`
	VocabPath       string        `mapstructure:"vocab_path"`
	MaxLength       int           `mapstructure:"max_length"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerOpenFor  time.Duration `mapstructure:"breaker_open_for"`
	SkipReadiness   bool          `mapstructure:"skip_readiness"`
}

type KeywordsConfig struct {
	VocabularyPath string `mapstructure:"vocabulary_path"`
	DictPath       string `mapstructure:"dict_path"`
	TopK           int    `mapstructure:"top_k"`
}

type AuthConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Secret        string        `mapstructure:"secret"`
	PublicKeyFile string        `mapstructure:"public_key_file"`
	Issuer        string        `mapstructure:"issuer"`
	Expiration    time.Duration `mapstructure:"expiration"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "msgrisk")
	v.SetDefault("service.environment", "development")

	v.SetDefault("server.grpc_port", 8090)
	v.SetDefault("server.http_port", 9090)
	v.SetDefault("server.tls_cert_file", "")
	v.SetDefault("server.tls_key_file", "")
	v.SetDefault("server.reflection", false)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "msgrisk")
	v.SetDefault("database.password", "msgrisk")
	v.SetDefault("database.name", "msgrisk")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)

	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.client_id", "msgrisk")
	v.SetDefault("kafka.consumer_group", "msgrisk")
	v.SetDefault("kafka.events_topic", "msgrisk.events")
	v.SetDefault("kafka.inbound_topic", "msgrisk.inbound")
	v.SetDefault("kafka.consumer_enabled", false)
	v.SetDefault("kafka.sasl_enabled", false)
	v.SetDefault("kafka.sasl_mechanism", "PLAIN")
	v.SetDefault("kafka.sasl_username", "")
	v.SetDefault("kafka.sasl_password", "")
	v.SetDefault("kafka.tls", false)
	v.SetDefault("kafka.ca_file", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("model.inference_url", "http://localhost:8000")
	v.SetDefault("model.name", "fraud_msg_cls")
	v.SetDefault("model.version", "")
	v.SetDefault("model.vocab_path", "model/vocab.txt")
	v.SetDefault("model.max_length", 128)
	v.SetDefault("model.timeout", 5*time.Second)
	v.SetDefault("model.breaker_failures", 5)
	v.SetDefault("model.breaker_open_for", 30*time.Second)
	v.SetDefault("model.skip_readiness", false)

	v.SetDefault("keywords.vocabulary_path", "data/keywords.json")
	v.SetDefault("keywords.dict_path", "")
	v.SetDefault("keywords.top_k", 3)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.public_key_file", "")
	v.SetDefault("auth.issuer", "msgrisk")
	v.SetDefault("auth.expiration", time.Hour)

	v.SetDefault("ratelimit.rps", 50.0)
	v.SetDefault("ratelimit.burst", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// New returns a viper instance with defaults and environment binding applied.
// The CLI binds its flags onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (if non-empty) into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	if c.Model.MaxLength < 2 || c.Model.MaxLength > 512 {
		errs = append(errs, fmt.Errorf("model.max_length must be in [2,512], got %d", c.Model.MaxLength))
	}
	if c.Keywords.TopK <= 0 {
		errs = append(errs, fmt.Errorf("keywords.top_k must be positive, got %d", c.Keywords.TopK))
	}
	if c.Auth.Enabled && c.Auth.Secret == "" && c.Auth.PublicKeyFile == "" {
		errs = append(errs, errors.New("auth.enabled requires auth.secret or auth.public_key_file"))
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.tls_cert_file and server.tls_key_file must be set together"))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
	}
	return errors.Join(errs...)
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%d", c.Server.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.Server.HTTPPort)
}
