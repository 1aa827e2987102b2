package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"medconnect-server/internal/config"
	"medconnect-server/internal/models"
	"medconnect-server/internal/revocation"
	"medconnect-server/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// accountMap resolves accounts by id, ignoring the role.
type accountMap map[string]models.Account

func (m accountMap) FindByID(_ context.Context, id string, _ models.Role) (models.Account, error) {
	if id == "broken" {
		return nil, errors.New("connection reset")
	}
	a, ok := m[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return a, nil
}

func newRouter(cfg *config.Config, revoked revocation.Store, lookup AccountLookup, roles ...models.Role) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg, revoked, lookup), RoleAuthMiddleware(roles...), func(c *gin.Context) {
		if _, ok := GetAccountFromContext(c); !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "no account"})
			return
		}
		id, _ := GetUserIDFromContext(c)
		role, _ := GetUserRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	return r
}

func newAccount(id string, role models.Role, active bool) models.Account {
	base := models.BaseAccount{BaseModel: models.BaseModel{ID: id}, Role: role, IsActive: active}
	switch role {
	case models.RoleHospital:
		return &models.Hospital{BaseAccount: base}
	case models.RoleDoctor:
		return &models.Doctor{BaseAccount: base}
	}
	return &models.Patient{BaseAccount: base}
}

func tokenFor(t *testing.T, cfg *config.Config, acct models.Account) (string, string) {
	t.Helper()
	token, claims, err := utils.GenerateToken(acct, cfg)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token, claims.ID
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationDays: 1}
	revoked := revocation.NewMemoryStore()
	patient := newAccount("acct-1", models.RolePatient, true)
	doctor := newAccount("doc-1", models.RoleDoctor, true)
	accounts := accountMap{"acct-1": patient, "doc-1": doctor}
	r := newRouter(cfg, revoked, accounts, models.RolePatient, models.RoleHospital)

	token, jti := tokenFor(t, cfg, patient)
	doctorToken, _ := tokenFor(t, cfg, doctor)

	tests := []struct {
		name string
		auth string
		want int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"role not allowed", "Bearer " + doctorToken, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := get(r, tt.auth); w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	cfgOther := &config.Config{JWTSecret: "other", JWTExpirationDays: 1}
	foreign, _ := tokenFor(t, cfgOther, patient)
	if w := get(r, "Bearer "+foreign); w.Code != http.StatusUnauthorized {
		t.Errorf("token signed with another secret: status %d", w.Code)
	}

	claims, err := utils.ValidateToken(token, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if err := revoked.Revoke(context.Background(), jti, "acct-1", claims.ExpiresAt.Time); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if w := get(r, "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: status %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareResolvesAccount(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationDays: 1}
	inactive := newAccount("inactive", models.RoleHospital, false)
	removed := newAccount("removed", models.RolePatient, true)
	broken := newAccount("broken", models.RolePatient, true)
	r := newRouter(cfg, revocation.NewMemoryStore(), accountMap{"inactive": inactive}, models.RolePatient, models.RoleHospital)

	tests := []struct {
		name string
		acct models.Account
		want int
	}{
		{"deactivated account", inactive, http.StatusUnauthorized},
		{"deleted account", removed, http.StatusUnauthorized},
		{"lookup failure", broken, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _ := tokenFor(t, cfg, tt.acct)
			if w := get(r, "Bearer "+token); w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestContextGettersWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetUserIDFromContext(c); ok {
		t.Error("user id found on an unauthenticated context")
	}
	if _, ok := GetUserRoleFromContext(c); ok {
		t.Error("role found on an unauthenticated context")
	}
	if _, ok := GetAccountFromContext(c); ok {
		t.Error("account found on an unauthenticated context")
	}
	if _, _, ok := GetTokenFromContext(c); ok {
		t.Error("token found on an unauthenticated context")
	}
}
