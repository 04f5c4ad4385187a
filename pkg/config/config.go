package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"NFTPredict/pkg/logger"
	"NFTPredict/pkg/validate"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Server      Server        `yaml:"server"`
	Logging     logger.Config `yaml:"logging"`
	Metrics     Metrics       `yaml:"metrics"`
	Predictor   Predictor     `yaml:"predictor"`
	RateLimit   RateLimit     `yaml:"rate_limit"`
	Cache       Cache         `yaml:"cache"`
	Kafka       Kafka         `yaml:"kafka"`
}

type Server struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	CORS            bool          `yaml:"cors" default:"true"`
	SlowRequest     time.Duration `yaml:"slow_request" default:"500ms"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type Predictor struct {
	// Seed fixes the noise source. Zero means time-seeded.
	Seed int64 `yaml:"seed"`
}

type RateLimit struct {
	Enabled bool          `yaml:"enabled" default:"true"`
	RPS     float64       `yaml:"rps" default:"20" validate:"gt=0"`
	Burst   int           `yaml:"burst" default:"40" validate:"gte=1"`
	IdleTTL time.Duration `yaml:"idle_ttl" default:"10m"`
}

type Cache struct {
	Enabled bool          `yaml:"enabled" default:"true"`
	TTL     time.Duration `yaml:"ttl" default:"5m"`
	Prefix  string        `yaml:"prefix" default:"nftpredict:risks:"`
	Redis   Redis         `yaml:"redis"`
}

type Redis struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr" default:"localhost:6379" validate:"required_if=Enabled true"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Kafka struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers" validate:"required_if=Enabled true"`
	RequestTopic string   `yaml:"request_topic" default:"nftpredict.requests"`
	ResultTopic  string   `yaml:"result_topic" default:"nftpredict.reports"`
	LogTopic     string   `yaml:"log_topic"`
	Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
	RequiredAcks int      `yaml:"required_acks" default:"-1" validate:"oneof=-1 0 1"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"5"`
		Linger       time.Duration `yaml:"linger" default:"10ms"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
	Consumer struct {
		GroupID    string        `yaml:"group_id" default:"nftpredict"`
		Workers    int           `yaml:"workers" default:"4" validate:"gte=1"`
		BufferSize int           `yaml:"buffer_size" default:"256"`
		RetryMax   int           `yaml:"retry_max" default:"3"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
		DLQTopic   string        `yaml:"dlq_topic" default:"nftpredict.requests.dlq"`
		MinBytes   int           `yaml:"min_bytes" default:"1"`
		MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
	} `yaml:"consumer"`
}

// Load reads a YAML file, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	// defaults first so explicit zero values in the file survive
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides it with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PREDICTOR_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("PREDICTOR_SEED: %w", err)
		}
		c.Predictor.Seed = seed
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Enabled = true
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Enabled = true
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks tag rules and cross-field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(context.Background(), c); err != nil {
		return err
	}
	if c.Kafka.Enabled && c.Kafka.RequestTopic == c.Kafka.ResultTopic {
		return fmt.Errorf("kafka.request_topic and kafka.result_topic must differ")
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	return nil
}
