package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at an optional YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string `koanf:"server_port" validate:"required,numeric"`
	ServerHost string `koanf:"server_host"`
	// BaseURL is the public origin used when building short links
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// Database configuration
	DBDriver   string `koanf:"db_driver" validate:"oneof=postgres sqlite"`
	DBHost     string `koanf:"db_host" validate:"required_if=DBDriver postgres"`
	DBPort     string `koanf:"db_port" validate:"required_if=DBDriver postgres"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name" validate:"required_if=DBDriver postgres"`
	DBSSLMode  string `koanf:"db_ssl_mode"`
	DBPath     string `koanf:"db_path" validate:"required_if=DBDriver sqlite"`
	// MigrationsDir holds SQL migrations for postgres; empty means AutoMigrate
	MigrationsDir string `koanf:"migrations_dir"`

	// Redis configuration
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisURL      string `koanf:"redis_url"`

	// JWT configuration
	JWTSecret string        `koanf:"jwt_secret" validate:"required"`
	JWTTTL    time.Duration `koanf:"jwt_ttl" validate:"gt=0"`

	// Mail configuration. An empty SMTPHost switches delivery to the log mailer.
	SMTPHost      string        `koanf:"smtp_host"`
	SMTPPort      int           `koanf:"smtp_port" validate:"gte=0,lte=65535"`
	SMTPUsername  string        `koanf:"smtp_username"`
	SMTPPassword  string        `koanf:"smtp_password"`
	SMTPUseTLS    bool          `koanf:"smtp_use_tls"`
	EmailFrom     string        `koanf:"email_from" validate:"required,email"`
	EmailFromName string        `koanf:"email_from_name"`
	MailTimeout   time.Duration `koanf:"mail_timeout" validate:"gt=0"`

	// Shopping list delivery
	EmailRateLimit  int           `koanf:"email_rate_limit" validate:"gte=0"`
	EmailRateWindow time.Duration `koanf:"email_rate_window"`
	PDFFontPath     string        `koanf:"pdf_font_path"`

	// Media storage. Images go to S3 when S3BucketName is set, otherwise to MediaDir.
	S3BucketName string `koanf:"s3_bucket_name"`
	AWSRegion    string `koanf:"aws_region"`
	MediaDir     string `koanf:"media_dir"`
	MediaURL     string `koanf:"media_url"`

	CORSOrigins []string `koanf:"cors_origins"`

	LogLevel  string `koanf:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"oneof=json console"`
}

// secretKeys are read from the Docker secrets directory and override everything else
var secretKeys = []string{
	"db_user",
	"db_password",
	"jwt_secret",
	"redis_password",
	"redis_url",
	"smtp_username",
	"smtp_password",
}

// sliceKeys arrive as comma-separated strings from the environment
var sliceKeys = []string{"cors_origins"}

func defaultConfig() *Config {
	return &Config{
		ServerPort:      "8000",
		ServerHost:      "0.0.0.0",
		BaseURL:         "http://localhost:8000",
		DBDriver:        "postgres",
		DBHost:          "localhost",
		DBPort:          "5432",
		DBUser:          "postgres",
		DBName:          "foodgram",
		DBSSLMode:       "disable",
		DBPath:          "foodgram.db",
		MigrationsDir:   "migrations",
		RedisDB:         0,
		JWTTTL:          24 * time.Hour,
		SMTPPort:        587,
		EmailFrom:       "noreply@foodgram.local",
		EmailFromName:   "Foodgram",
		MailTimeout:     10 * time.Second,
		EmailRateLimit:  10,
		EmailRateWindow: time.Hour,
		MediaDir:        "media",
		MediaURL:        "/media/",
		CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// environment variables and Docker secrets, in that order of precedence.
func LoadConfig() (*Config, error) {
	envName := GetEnvironment()
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// CI provides secrets through the environment only
	if envName != CI {
		for _, name := range secretKeys {
			if value := readSecret(name); value != "" {
				if err := k.Set(name, value); err != nil {
					return nil, fmt.Errorf("failed to set secret %s: %w", name, err)
				}
			}
		}
	}

	if err := splitSliceKeys(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func splitSliceKeys(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// ListenAddr returns the host:port the HTTP server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

// PostgresDSN returns the connection string for the postgres driver
func (c *Config) PostgresDSN() string {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode,
	)
}

// SMTPConfigured reports whether a real mail transport should be used
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != ""
}
