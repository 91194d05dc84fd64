package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string         `yaml:"port"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig selects SQLite by Path unless Host is set, in which case
// Postgres is used.
type DatabaseConfig struct {
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	Mode       string        `yaml:"mode"`
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	SessionKey string        `yaml:"session_key"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	TTL      time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level        string `yaml:"level"`
	LogstashAddr string `yaml:"logstash_addr"`
}

const (
	AuthModeHeader  = "header"
	AuthModeToken   = "token"
	AuthModeSession = "session"
)

func DefaultConfig() Config {
	return Config{
		Port: ":9001",
		Database: DatabaseConfig{
			Path:    "blog.db",
			Port:    "5432",
			SSLMode: "require",
		},
		Auth: AuthConfig{
			Mode:     AuthModeHeader,
			TokenTTL: 16 * time.Hour,
		},
		Redis: RedisConfig{
			TTL: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig layers defaults, the optional YAML file at path, a .env file and
// the process environment, in that order.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	cfg.Port = normalizePort(cfg.Port)
	return cfg, cfg.Validate()
}

func (cfg *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, key string) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	setString(&cfg.Port, "PORT")
	setString(&cfg.Database.Path, "DATABASE")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Auth.Mode, "AUTH_MODE")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.SessionKey, "SESSION_KEY")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.LogstashAddr, "LOGSTASH_ADDR")

	if err := setDuration(&cfg.Auth.TokenTTL, "TOKEN_TTL"); err != nil {
		return err
	}
	return setDuration(&cfg.Redis.TTL, "REDIS_TTL")
}

func (cfg Config) Validate() error {
	switch cfg.Auth.Mode {
	case AuthModeHeader:
	case AuthModeToken:
		if cfg.Auth.JWTSecret == "" {
			return errors.New("auth mode token requires a jwt secret")
		}
	case AuthModeSession:
		if cfg.Auth.SessionKey == "" {
			return errors.New("auth mode session requires a session key")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
	if cfg.Database.Host == "" && cfg.Database.Path == "" {
		return errors.New("either a database path or a database host is required")
	}
	return nil
}

// normalizePort accepts both "9001" and ":9001".
func normalizePort(port string) string {
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
