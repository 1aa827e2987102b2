package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medconnect-server/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func memoryConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		Origins:           []string{"*"},
		Environment:       "development",
		JWTSecret:         "test-secret",
		JWTExpirationDays: 1,
		Database:          config.DatabaseConfig{Driver: "memory"},
		Reminder:          config.ReminderConfig{Interval: time.Minute, Window: time.Hour},
		NotifyTimeout:     time.Second,
	}
}

func TestNewWiresMemoryBackend(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})

	if err := a.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	for _, path := range []string{"/health", "/health/db"} {
		w := httptest.NewRecorder()
		a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: status %d", path, w.Code)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Errorf("GET %s: no request id header", path)
		}
	}

	body := `{"name":"Asha","email":"asha@example.com","password":"secret123","confirmPassword":"secret123","role":"patient","phoneNumber":"9876543210"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: status %d: %s", w.Code, w.Body.String())
	}

	sent, err := a.Reminder.RunOnce(ctx)
	if err != nil || sent != 0 {
		t.Errorf("RunOnce on an empty schedule = %d, %v", sent, err)
	}
}

func TestNewRejectsBadRedisURL(t *testing.T) {
	cfg := memoryConfig()
	cfg.Redis.URL = "://not-a-url"
	if _, err := New(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("New accepted an invalid REDIS_URL")
	}
}
