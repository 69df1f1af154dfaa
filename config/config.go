package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Lock drivers
const (
	LockDriverLocal = "local"
	LockDriverRedis = "redis"
	LockDriverNone  = "none"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Event sinks
const (
	EventSinkLog      = "log"
	EventSinkStore    = "store"
	EventSinkRabbitMQ = "rabbitmq"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Env      string
	LogLevel string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	TimeZone     string
	MaxIdleConns int
	MaxOpenConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Exchange string
	Queue    string
}

type BookingConfig struct {
	Location    *time.Location
	LockDriver  string
	LockTTL     time.Duration
	LockWait    time.Duration
	StoreDriver string
	EventSinks  []string
}

// HasEventSink reports whether name is among the configured sinks
func (c BookingConfig) HasEventSink(name string) bool {
	for _, sink := range c.EventSinks {
		if sink == name {
			return true
		}
	}
	return false
}

// URL returns the AMQP connection string
func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.User, c.Password, c.Host, c.Port)
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
		return nil, err
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_HOST", "localhost")
	v.SetDefault("RABBITMQ_PORT", "5672")
	v.SetDefault("RABBITMQ_USER", "guest")
	v.SetDefault("RABBITMQ_PASSWORD", "guest")
	v.SetDefault("RABBITMQ_EXCHANGE", "appointments")
	v.SetDefault("RABBITMQ_QUEUE", "appointment_events")
	v.SetDefault("BOOKING_TIMEZONE", "UTC")
	v.SetDefault("BOOKING_LOCK_DRIVER", LockDriverLocal)
	v.SetDefault("BOOKING_STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("BOOKING_EVENT_SINKS", EventSinkLog+","+EventSinkStore)
}

func fromViper(v *viper.Viper) (*Config, error) {
	location, err := time.LoadLocation(v.GetString("BOOKING_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TIMEZONE: %w", err)
	}

	lockTTL, err := time.ParseDuration(v.GetString("BOOKING_LOCK_TTL"))
	if err != nil || lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}

	lockWait, err := time.ParseDuration(v.GetString("BOOKING_LOCK_WAIT"))
	if err != nil || lockWait <= 0 {
		lockWait = 3 * time.Second
	}

	lockDriver := strings.ToLower(v.GetString("BOOKING_LOCK_DRIVER"))
	switch lockDriver {
	case LockDriverLocal, LockDriverRedis, LockDriverNone:
	default:
		return nil, fmt.Errorf("invalid BOOKING_LOCK_DRIVER %q", lockDriver)
	}

	storeDriver := strings.ToLower(v.GetString("BOOKING_STORE_DRIVER"))
	switch storeDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("invalid BOOKING_STORE_DRIVER %q", storeDriver)
	}

	sinks, err := parseEventSinks(v.GetString("BOOKING_EVENT_SINKS"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			TimeZone:     location.String(),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     v.GetString("RABBITMQ_HOST"),
			Port:     v.GetString("RABBITMQ_PORT"),
			User:     v.GetString("RABBITMQ_USER"),
			Password: v.GetString("RABBITMQ_PASSWORD"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
			Queue:    v.GetString("RABBITMQ_QUEUE"),
		},
		Booking: BookingConfig{
			Location:    location,
			LockDriver:  lockDriver,
			LockTTL:     lockTTL,
			LockWait:    lockWait,
			StoreDriver: storeDriver,
			EventSinks:  sinks,
		},
	}

	return config, nil
}

func parseEventSinks(raw string) ([]string, error) {
	var sinks []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		switch name {
		case EventSinkLog, EventSinkStore, EventSinkRabbitMQ:
			sinks = append(sinks, name)
		default:
			return nil, fmt.Errorf("invalid BOOKING_EVENT_SINKS entry %q", name)
		}
	}
	return sinks, nil
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
