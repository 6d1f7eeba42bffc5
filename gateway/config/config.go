package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/bookhub/pkg/circuit_breaker"
	"github.com/Astemirdum/bookhub/pkg/kafka"
	"github.com/Astemirdum/bookhub/pkg/logger"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"GATEWAY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"GATEWAY_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

// LibraryAPI is the remote library service every front end talks to.
type LibraryAPI struct {
	BaseURL string        `envconfig:"LIBRARY_API_URL" default:"http://localhost:5000/api"`
	Timeout time.Duration `envconfig:"LIBRARY_API_TIMEOUT" default:"10s"`
}

type Config struct {
	Server     HTTPServer `yaml:"server"`
	LibraryAPI LibraryAPI
	Kafka      kafka.Config
	CB         circuit_breaker.Config
	Log        logger.Log `yaml:"log"`
}

type Option func(c *Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = level
	}
}

// WithWriteTimeout is applied after env processing, so it wins over
// HTTP_WRITE. Event streams need it disabled (zero).
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Server.WriteTimeout = d
	}
}

func WithLibraryAPI(baseURL string) Option {
	return func(c *Config) {
		c.LibraryAPI.BaseURL = baseURL
	}
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		config, err := Load(ops...)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

// Load processes the environment without caching and without exiting.
func Load(ops ...Option) (Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return Config{}, err
	}
	for _, op := range ops {
		op(&config)
	}
	return config, nil
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
