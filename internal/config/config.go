// Package config loads service settings from an optional YAML file, an
// optional .env file and the process environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DB         DBConfig         `yaml:"db"`
	Redis      RedisConfig      `yaml:"redis"`
	MQ         MQConfig         `yaml:"mq"`
	JWT        JWTConfig        `yaml:"jwt"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Speech     SpeechConfig     `yaml:"speech"`
	Login      LoginConfig      `yaml:"login"`
	Log        LogConfig        `yaml:"log"`
	// Timezone is the IANA zone reference times are taken in.
	Timezone string `yaml:"timezone"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	UploadDir string `yaml:"upload_dir"`
}

// DBConfig selects and configures the memo store. Driver is "sqlite" or
// "postgres".
type DBConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// RedisConfig configures the pending-deletion store. An empty Addr keeps
// pending deletions in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQConfig configures event publishing. An empty URL disables it.
type MQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// ClassifierConfig selects the intent classifier. Without an API key the
// keyword classifier is used.
type ClassifierConfig struct {
	APIKey    string  `yaml:"api_key"`
	Model     string  `yaml:"model"`
	Threshold float64 `yaml:"threshold"`
}

type SpeechConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// LoginConfig points at the upstream account service.
type LoginConfig struct {
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":5000", UploadDir: "uploads"},
		DB: DBConfig{
			Driver:     "sqlite",
			SQLitePath: "memo.db",
			Host:       "localhost",
			Port:       5432,
			User:       "postgres",
			Name:       "memo",
		},
		MQ:         MQConfig{Exchange: "events"},
		JWT:        JWTConfig{TTL: 24 * time.Hour},
		Classifier: ClassifierConfig{Threshold: 0.5},
		Speech: SpeechConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "whisper-1",
		},
		Log:      LogConfig{Level: "info", Format: "console"},
		Timezone: "Local",
	}
}

// Load builds the configuration from dir/base.yaml, then dir/<env>.yaml,
// then dir/secrets.env and ./.env, then the environment. Every file is
// optional; dir may be empty.
func Load(dir, env string) (Config, error) {
	cfg := Default()

	if dir != "" {
		files := []string{filepath.Join(dir, "base.yaml")}
		if env != "" && env != "base" {
			files = append(files, filepath.Join(dir, env+".yaml"))
		}
		for _, f := range files {
			if err := overlayYAML(&cfg, f); err != nil {
				return cfg, err
			}
		}
		if err := loadEnvFile(filepath.Join(dir, "secrets.env")); err != nil {
			return cfg, err
		}
	}
	if err := loadEnvFile(".env"); err != nil {
		return cfg, err
	}

	overrideFromEnv(&cfg)

	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// overlayYAML decodes path over cfg; keys absent from the file keep their
// current value.
func overlayYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// loadEnvFile exports the file's variables without overriding ones that
// are already set.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func overrideFromEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "MEMO_ADDR")
	setString(&cfg.Server.UploadDir, "MEMO_UPLOAD_DIR")

	setString(&cfg.DB.Driver, "MEMO_DB_DRIVER")
	setString(&cfg.DB.SQLitePath, "MEMO_SQLITE_PATH")
	setString(&cfg.DB.Host, "DB_HOST")
	setInt(&cfg.DB.Port, "DB_PORT")
	setString(&cfg.DB.User, "DB_USER")
	setString(&cfg.DB.Password, "DB_PASSWORD")
	setString(&cfg.DB.Name, "DB_NAME")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.MQ.URL, "MQ_URL")

	setString(&cfg.JWT.Secret, "JWT_SECRET")

	setString(&cfg.Classifier.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Classifier.Model, "MEMO_CLASSIFIER_MODEL")
	if v := os.Getenv("MEMO_CLASSIFIER_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Classifier.Threshold = f
		}
	}

	setString(&cfg.Speech.APIKey, "WHISPER_API_KEY")
	setString(&cfg.Speech.BaseURL, "WHISPER_BASE_URL")

	setString(&cfg.Login.URL, "MEMO_LOGIN_URL")

	setString(&cfg.Log.Level, "MEMO_LOG_LEVEL")
	setString(&cfg.Log.Format, "MEMO_LOG_FORMAT")

	setString(&cfg.Timezone, "MEMO_TIMEZONE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
