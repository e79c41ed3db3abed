package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries every tunable the service reads. It is loaded once in
// main and handed to constructors explicitly; no package reads the
// environment on its own.
type Config struct {
	LogMode     string `yaml:"log_mode"`
	LogRedact   bool   `yaml:"log_redact"`
	LogHashSalt string `yaml:"log_hash_salt"`

	HTTPAddr    string   `yaml:"http_addr"`
	CORSOrigins []string `yaml:"cors_origins"`

	Postgres PostgresConfig `yaml:"postgres"`

	Bucket BucketConfig `yaml:"bucket"`

	OpenAI OpenAIConfig `yaml:"openai"`

	RedisAddr    string        `yaml:"redis_addr"`
	RiskCacheTTL time.Duration `yaml:"risk_cache_ttl"`

	EnabledPlugins []string `yaml:"enabled_plugins"`

	WorkerConcurrency int `yaml:"worker_concurrency"`
	JobQueueSize      int `yaml:"job_queue_size"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode)
}

type BucketConfig struct {
	Name            string        `yaml:"name"`
	CredentialsFile string        `yaml:"credentials_file"`
	SignedURLExpiry time.Duration `yaml:"signed_url_expiry"`
}

type OpenAIConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads .env (when present), then the environment, then an
// optional YAML overlay named by CONFIG_FILE. YAML wins over env so a
// deployment can pin a full profile in one file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		LogMode:     getEnv("LOG_MODE", "development"),
		LogRedact:   getEnvBool("LOG_REDACTION_ENABLED", true),
		LogHashSalt: os.Getenv("LOG_HASH_SALT"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     getEnv("POSTGRES_NAME", "onboarding"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Bucket: BucketConfig{
			Name:            os.Getenv("DOCUMENT_BUCKET_NAME"),
			CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
			SignedURLExpiry: getEnvDuration("DOCUMENT_URL_EXPIRY", time.Hour),
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o"),
			Timeout: getEnvDuration("OPENAI_TIMEOUT", 120*time.Second),
		},
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RiskCacheTTL:      getEnvDuration("RISK_CACHE_TTL", 15*time.Minute),
		EnabledPlugins:    splitList(getEnv("ENABLED_PLUGINS", "sift")),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		JobQueueSize:      getEnvInt("JOB_QUEUE_SIZE", 256),
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}
	if cfg.JobQueueSize < 1 {
		cfg.JobQueueSize = 1
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
