package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/shawarmaKoders/Hedwig/internal/broker"
	pkgconfig "github.com/shawarmaKoders/Hedwig/pkg/config"
	"github.com/shawarmaKoders/Hedwig/pkg/database"
	"github.com/shawarmaKoders/Hedwig/pkg/log"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Redis     broker.Config   `mapstructure:"redis"`
	Database  database.Config `mapstructure:"database"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Log       log.Config      `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type WebSocketConfig struct {
	ReadBufferSize  int   `mapstructure:"read_buffer_size"`
	WriteBufferSize int   `mapstructure:"write_buffer_size"`
	MaxMessageSize  int64 `mapstructure:"max_message_size"`
}

type RelayConfig struct {
	// EnforceMembership turns on the room guard: the room must exist,
	// be active, and list the connecting user among its participants.
	// Off by default.
	EnforceMembership bool `mapstructure:"enforce_membership"`

	// DisconnectWait bounds how long disconnect waits for the session's
	// outstanding persistence tasks.
	DisconnectWait time.Duration `mapstructure:"disconnect_wait"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "hedwig.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("relay.enforce_membership", false)
	v.SetDefault("relay.disconnect_wait", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.service_name", "hedwig")

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Server.ShutdownTimeout = parseDuration(v, "server.shutdown_timeout", 30*time.Second)
	cfg.Redis.ReadTimeout = parseDuration(v, "redis.read_timeout", 3*time.Second)
	cfg.Redis.WriteTimeout = parseDuration(v, "redis.write_timeout", 3*time.Second)
	cfg.Relay.DisconnectWait = parseDuration(v, "relay.disconnect_wait", 30*time.Second)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
