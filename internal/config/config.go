package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceName string `yaml:"service_name"`
	ServerPort  int    `yaml:"server_port"`
	LogLevel    string `yaml:"log_level"`

	DatabaseDriver string `yaml:"database_driver"`
	DatabaseURL    string `yaml:"database_url"`
	AutoMigrate    bool   `yaml:"auto_migrate"`

	SessionSecret  string        `yaml:"session_secret"`
	SessionTTL     time.Duration `yaml:"-"`
	SessionBackend string        `yaml:"session_backend"`
	CookieSecure   bool          `yaml:"cookie_secure"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	KafkaBrokers     []string `yaml:"kafka_brokers"`
	KafkaTopicPrefix string   `yaml:"kafka_topic_prefix"`

	ESURL      string `yaml:"es_url"`
	ESUser     string `yaml:"es_user"`
	ESPassword string `yaml:"es_password"`
	ESIndex    string `yaml:"es_index"`

	UploadDir string `yaml:"upload_dir"`
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 3000),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseDriver: EnvDefault("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AutoMigrate:    EnvBoolDefault("AUTO_MIGRATE", false),

		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionTTL:     EnvDurationDefault("SESSION_TTL", 7*24*time.Hour),
		SessionBackend: EnvDefault("SESSION_BACKEND", "memory"),
		CookieSecure:   EnvBoolDefault("COOKIE_SECURE", false),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),

		KafkaBrokers:     CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: os.Getenv("KAFKA_TOPIC_PREFIX"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		UploadDir: EnvDefault("UPLOAD_DIR", "public/images"),
	}
}

// MergeFile overlays the non-zero values found in a YAML file on top of cfg.
func MergeFile(cfg Config, path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var file struct {
		Config `yaml:",inline"`
		SessionTTL string `yaml:"session_ttl"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	over := file.Config
	if over.ServiceName != "" {
		cfg.ServiceName = over.ServiceName
	}
	if over.ServerPort != 0 {
		cfg.ServerPort = over.ServerPort
	}
	if over.LogLevel != "" {
		cfg.LogLevel = over.LogLevel
	}
	if over.DatabaseDriver != "" {
		cfg.DatabaseDriver = over.DatabaseDriver
	}
	if over.DatabaseURL != "" {
		cfg.DatabaseURL = over.DatabaseURL
	}
	if over.AutoMigrate {
		cfg.AutoMigrate = true
	}
	if over.SessionSecret != "" {
		cfg.SessionSecret = over.SessionSecret
	}
	if file.SessionTTL != "" {
		d, err := time.ParseDuration(file.SessionTTL)
		if err != nil {
			return cfg, fmt.Errorf("parse session_ttl: %w", err)
		}
		cfg.SessionTTL = d
	}
	if over.SessionBackend != "" {
		cfg.SessionBackend = over.SessionBackend
	}
	if over.CookieSecure {
		cfg.CookieSecure = true
	}
	if over.RedisAddr != "" {
		cfg.RedisAddr = over.RedisAddr
	}
	if over.RedisPassword != "" {
		cfg.RedisPassword = over.RedisPassword
	}
	if over.RedisDB != 0 {
		cfg.RedisDB = over.RedisDB
	}
	if len(over.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = over.KafkaBrokers
	}
	if over.KafkaTopicPrefix != "" {
		cfg.KafkaTopicPrefix = over.KafkaTopicPrefix
	}
	if over.ESURL != "" {
		cfg.ESURL = over.ESURL
	}
	if over.ESUser != "" {
		cfg.ESUser = over.ESUser
	}
	if over.ESPassword != "" {
		cfg.ESPassword = over.ESPassword
	}
	if over.ESIndex != "" {
		cfg.ESIndex = over.ESIndex
	}
	if over.UploadDir != "" {
		cfg.UploadDir = over.UploadDir
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.ServerPort)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
