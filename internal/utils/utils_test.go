package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"medconnect-server/internal/config"
	"medconnect-server/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationDays: 1}
	doctor := &models.Doctor{BaseAccount: models.BaseAccount{
		BaseModel: models.BaseModel{ID: "doc-1"},
		Role:      models.RoleDoctor,
	}}

	token, issued, err := GenerateToken(doctor, cfg)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if issued.ID == "" {
		t.Fatal("token has no id")
	}

	claims, err := ValidateToken(token, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "doc-1" || claims.Role != models.RoleDoctor || claims.ID != issued.ID {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ValidateToken(token, "other-secret"); err == nil {
		t.Error("token accepted with the wrong secret")
	}
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	type input struct {
		CancelledBy string `json:"cancelledBy" validate:"required"`
	}
	err := Validate(input{})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Validate error = %v, want *ValidationError", err)
	}
	if ve.Fields[0].Field != "cancelledBy" || ve.Fields[0].Message != "is required" {
		t.Errorf("field error = %+v", ve.Fields[0])
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewValidationError("email", "is required"), http.StatusBadRequest},
		{models.ErrDuplicateEmail, http.StatusBadRequest},
		{models.ErrInvalidCredentials, http.StatusBadRequest},
		{models.ErrInvalidSignature, http.StatusBadRequest},
		{fmt.Errorf("%w: \"admin\"", models.ErrInvalidRole), http.StatusBadRequest},
		{models.ErrRoleMismatch, http.StatusUnauthorized},
		{models.ErrAccountInactive, http.StatusUnauthorized},
		{models.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("appointment x: %w", models.ErrNotFound), http.StatusNotFound},
		{models.ErrInvalidTransition, http.StatusConflict},
		{models.ErrConflict, http.StatusConflict},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondError(c, tt.err)

		if w.Code != tt.want {
			t.Errorf("RespondError(%v) status = %d, want %d", tt.err, w.Code, tt.want)
		}
		var body ResponseData
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Success {
			t.Errorf("RespondError(%v) reported success", tt.err)
		}
	}
}

func TestInternalServerErrorHidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	InternalServerError(c, errors.New("password=hunter2"))

	if strings.Contains(w.Body.String(), "hunter2") {
		t.Fatalf("internal error leaked to the client: %s", w.Body.String())
	}
}
