package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/configparser"
)

// Errors
var (
	ErrInvalidAvailabilityMode = errors.New("invalid availability mode")
	ErrNoSocketServerURL       = errors.New("socket server url not provided")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Database DatabaseConfig
		Redis    RedisConfig
		RabbitMQ RabbitMQConfig
		HTTP     HTTPConfig
		Auth     Auth
		Dispatch DispatchConfig
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"dispatch_user"`
		Password string `env:"DATABASE_PASSWORD" default:"dispatch_pass"`
		Database string `env:"DATABASE_DATABASE" default:"dispatch_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RedisConfig struct {
		Host     string `env:"REDIS_HOST" default:"localhost"`
		Port     string `env:"REDIS_PORT" default:"6379"`
		Password string `env:"REDIS_PASSWORD" default:""`
		DB       int    `env:"REDIS_DB" default:"0"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	HTTPConfig struct {
		Port string `env:"HTTP_PORT" default:"3001"`
	}

	Auth struct {
		JWTSecret string `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}

	DispatchConfig struct {
		// SocketServerURL is the public websocket endpoint handed to drivers
		// that go on duty.
		SocketServerURL string `env:"DISPATCH_SOCKET_SERVER_URL" default:"ws://localhost:3001/ws/drivers"`

		// AvailabilityMode selects what a location update does with driver
		// availability: "store", "publish" or "both".
		AvailabilityMode string `env:"DISPATCH_AVAILABILITY_MODE" default:"store"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func (c RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c RedisConfig) GetPassword() string {
	return c.Password
}

func (c RedisConfig) GetDB() int {
	return c.DB
}

// Mode returns the validated availability mode.
func (c DispatchConfig) Mode() types.AvailabilityMode {
	return types.AvailabilityMode(c.AvailabilityMode)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !c.Dispatch.Mode().Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAvailabilityMode, c.Dispatch.AvailabilityMode)
	}
	if c.Dispatch.SocketServerURL == "" {
		return ErrNoSocketServerURL
	}
	return nil
}
