package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.JWTExpiration() != 30*24*time.Hour {
		t.Errorf("JWTExpiration = %v", cfg.JWTExpiration())
	}
	if cfg.Reminder.Interval != 5*time.Minute || cfg.Reminder.Window != time.Hour {
		t.Errorf("Reminder = %+v", cfg.Reminder)
	}
	if cfg.NotifyTimeout != 10*time.Second {
		t.Errorf("NotifyTimeout = %v", cfg.NotifyTimeout)
	}
	if cfg.Firebase.Enabled() {
		t.Error("Firebase enabled without credentials")
	}
}

func TestLoadConfigBuildsDSN(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USERNAME", "svc")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "bookings")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	for _, part := range []string{"host=db.internal", "port=5432", "user=svc", "dbname=bookings"} {
		if !strings.Contains(cfg.Database.DSN, part) {
			t.Errorf("DSN %q missing %q", cfg.Database.DSN, part)
		}
	}

	t.Setenv("DATABASE_URL", "postgres://override")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.DSN != "postgres://override" {
		t.Errorf("DATABASE_URL not applied: %q", cfg.Database.DSN)
	}
}

func TestLoadConfigOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("ORIGIN", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "https://b.example" {
		t.Errorf("Origins = %v", cfg.Origins)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:       "development",
			JWTSecret:         defaultJWTSecret,
			JWTExpirationDays: 30,
			Database:          DatabaseConfig{Driver: "memory"},
			Reminder:          ReminderConfig{Interval: time.Minute, Window: time.Hour},
			NotifyTimeout:     time.Second,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }},
		{"zero expiry", func(c *Config) { c.JWTExpirationDays = 0 }},
		{"zero interval", func(c *Config) { c.Reminder.Interval = 0 }},
		{"zero notify timeout", func(c *Config) { c.NotifyTimeout = 0 }},
		{"default secret in production", func(c *Config) { c.Environment = "production" }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
