package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default_jwt_secret"

// Config holds all configuration for our application
type Config struct {
	Port              string
	Origins           []string
	Environment       string
	JWTSecret         string
	JWTExpirationDays int
	Database          DatabaseConfig
	Redis             RedisConfig
	Razorpay          RazorpayConfig
	Firebase          FirebaseConfig
	Reminder          ReminderConfig
	NotifyTimeout     time.Duration
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
	MongoURI string
	MongoDB  string
}

// RedisConfig enables the redis-backed token denylist when URL is set.
type RedisConfig struct {
	URL string
}

// RazorpayConfig holds payment gateway credentials
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

// FirebaseConfig holds push notification credentials. Either the inline
// service account JSON or a path to it may be given.
type FirebaseConfig struct {
	ServiceAccountJSON string
	ServiceAccountPath string
}

// Enabled reports whether any Firebase credentials were configured.
func (f FirebaseConfig) Enabled() bool {
	return f.ServiceAccountJSON != "" || f.ServiceAccountPath != ""
}

// ReminderConfig controls the upcoming-appointment reminder job.
type ReminderConfig struct {
	Interval time.Duration
	Window   time.Duration
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	dbConfig := DatabaseConfig{
		Driver:   driver,
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", defaultDBPort(driver)),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "medconnect"),
		MongoDB:  getEnv("MONGO_DATABASE", "medconnect"),
	}

	// Build DSN (Data Source Name) for the configured driver
	switch driver {
	case "postgres":
		dbConfig.DSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			dbConfig.Host, dbConfig.Port, dbConfig.Username, dbConfig.Password, dbConfig.Name)
	case "mongo":
		dbConfig.MongoURI = fmt.Sprintf("mongodb://%s:%s", dbConfig.Host, dbConfig.Port)
	default:
		dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)
	}
	if url := getEnv("DATABASE_URL", ""); url != "" {
		if driver == "mongo" {
			dbConfig.MongoURI = url
		} else {
			dbConfig.DSN = url
		}
	}

	jwtExpDays, err := strconv.Atoi(getEnv("JWT_EXPIRATION_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_DAYS: %w", err)
	}

	reminderInterval, err := strconv.Atoi(getEnv("REMINDER_INTERVAL_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_INTERVAL_MINUTES: %w", err)
	}

	reminderWindow, err := strconv.Atoi(getEnv("REMINDER_WINDOW_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_WINDOW_MINUTES: %w", err)
	}

	notifyTimeout, err := strconv.Atoi(getEnv("NOTIFY_TIMEOUT_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEOUT_SECONDS: %w", err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "5000"),
		Origins:           splitList(getEnv("ORIGIN", "*")),
		Environment:       getEnv("APP_ENV", "development"),
		JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpirationDays: jwtExpDays,
		Database:          dbConfig,
		Redis:             RedisConfig{URL: getEnv("REDIS_URL", "")},
		Razorpay: RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
		Firebase: FirebaseConfig{
			ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT", ""),
			ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		Reminder: ReminderConfig{
			Interval: time.Duration(reminderInterval) * time.Minute,
			Window:   time.Duration(reminderWindow) * time.Minute,
		},
		NotifyTimeout: time.Duration(notifyTimeout) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "mongo", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.JWTExpirationDays <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_DAYS must be positive")
	}
	if c.Reminder.Interval <= 0 || c.Reminder.Window <= 0 {
		return fmt.Errorf("reminder interval and window must be positive")
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT_SECONDS must be positive")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// JWTExpiration is the lifetime of issued tokens.
func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.JWTExpirationDays) * 24 * time.Hour
}

func defaultDBPort(driver string) string {
	switch driver {
	case "postgres":
		return "5432"
	case "mongo":
		return "27017"
	}
	return "3306"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
