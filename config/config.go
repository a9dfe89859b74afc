package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAdminUser     = "admin"
	DefaultAdminPassword = "changeme"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	HTTP      HTTPConfig      `yaml:"http"`
	Admin     AdminConfig     `yaml:"admin"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Notify    NotifyConfig    `yaml:"notify"`
}

type AppConfig struct {
	Env     string `yaml:"env"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Env, "development")
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	SwaggerDir     string   `yaml:"swagger_dir"`
	CORSOrigins    []string `yaml:"cors_origins"`
	BodyLimitBytes int64    `yaml:"body_limit_bytes"`
}

type AdminConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type StorageConfig struct {
	// Driver is "file" or "postgres".
	Driver       string `yaml:"driver"`
	Path         string `yaml:"path"`
	DocumentName string `yaml:"document_name"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	// Backend is "memory" or "redis".
	Backend              string `yaml:"backend"`
	Limit                int    `yaml:"limit"`
	WindowSeconds        int    `yaml:"window_seconds"`
	SweepIntervalSeconds int    `yaml:"sweep_interval_seconds"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	InquiryTopic string   `yaml:"inquiry_topic"`
	GroupID      string   `yaml:"group_id"`
}

type NotifyConfig struct {
	SalesEmail string `yaml:"sales_email"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Env:     "production",
			Name:    "Travel Inquiry API",
			Version: "1.0.0",
		},
		HTTP: HTTPConfig{
			Address:        ":3000",
			CORSOrigins:    []string{"*"},
			BodyLimitBytes: 16 << 10,
		},
		Storage: StorageConfig{
			Driver:       "file",
			Path:         "data/inquiries.json",
			DocumentName: "inquiries",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		RateLimit: RateLimitConfig{
			Backend:              "memory",
			Limit:                30,
			WindowSeconds:        60,
			SweepIntervalSeconds: 300,
		},
		Kafka: KafkaConfig{
			InquiryTopic: "inquiries",
			GroupID:      "tourdesk-notifier",
		},
	}
}

// LoadConfig reads defaults, then the YAML file at path if it exists, then
// .env and the process environment. Later sources win.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	_ = godotenv.Load()
	applyEnv(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("ADMIN_USER"); v != "" {
		cfg.Admin.User = v
	}
	if v := os.Getenv("ADMIN_PASS"); v != "" {
		cfg.Admin.Password = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("DATA_FILE"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("RATE_LIMIT_BACKEND"); v != "" {
		cfg.RateLimit.Backend = v
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Limit = n
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitCSV(v)
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("SALES_EMAIL"); v != "" {
		cfg.Notify.SalesEmail = v
	}
}

// ApplyCredentialPolicy refuses to run without admin credentials outside
// development. In development the well-known defaults are filled in and
// usedDefaults reports that so the caller can warn.
func (c *Config) ApplyCredentialPolicy() (usedDefaults bool, err error) {
	missing := c.Admin.User == "" || c.Admin.Password == ""
	weak := c.Admin.User == DefaultAdminUser && c.Admin.Password == DefaultAdminPassword

	if c.App.IsDevelopment() {
		if c.Admin.User == "" {
			c.Admin.User = DefaultAdminUser
			usedDefaults = true
		}
		if c.Admin.Password == "" {
			c.Admin.Password = DefaultAdminPassword
			usedDefaults = true
		}
		return usedDefaults || weak, nil
	}

	if missing {
		return false, errors.New("ADMIN_USER and ADMIN_PASS must be set")
	}
	if weak {
		return false, errors.New("ADMIN_USER/ADMIN_PASS must be changed from the default values")
	}
	return false, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file":
		if c.Storage.Path == "" {
			return errors.New("storage.path must be set for the file driver")
		}
	case "postgres":
		if c.Database.URL == "" && c.Database.Host == "" {
			return errors.New("database.url or database.host must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.RateLimit.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown rate limit backend %q", c.RateLimit.Backend)
	}
	if c.RateLimit.Limit <= 0 || c.RateLimit.WindowSeconds <= 0 {
		return errors.New("rate_limit.limit and rate_limit.window_seconds must be positive")
	}
	if c.RateLimit.Backend == "memory" && c.RateLimit.SweepIntervalSeconds <= 0 {
		return errors.New("rate_limit.sweep_interval_seconds must be positive")
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
