package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medconnect-server/internal/config"
	"medconnect-server/internal/models"
	"medconnect-server/internal/revocation"
	"medconnect-server/internal/utils"
)

const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
	ctxTokenID  = "tokenID"
	ctxTokenExp = "tokenExpiresAt"
	ctxAccount  = "account"
)

// AccountLookup resolves the account a token was issued to.
type AccountLookup interface {
	FindByID(ctx context.Context, id string, role models.Role) (models.Account, error)
}

// AuthMiddleware creates a middleware for JWT authentication. The token must
// be unrevoked and belong to an existing, active account.
func AuthMiddleware(cfg *config.Config, revoked revocation.Store, lookup AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if claims.ID != "" && revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				utils.InternalServerError(c, err)
				c.Abort()
				return
			}
			if isRevoked {
				utils.Unauthorized(c, "Token has been revoked")
				c.Abort()
				return
			}
		}

		account, err := lookup.FindByID(c.Request.Context(), claims.UserID, claims.Role)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				utils.Unauthorized(c, "User not found")
			} else {
				utils.InternalServerError(c, err)
			}
			c.Abort()
			return
		}
		if !account.Base().IsActive {
			utils.Unauthorized(c, "Account is deactivated")
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers
		c.Set(ctxAccount, account)
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserRole, claims.Role)
		c.Set(ctxTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ctxTokenExp, claims.ExpiresAt.Time)
		}

		logger := zerolog.Ctx(c.Request.Context()).With().
			Str("user_id", claims.UserID).
			Str("user_role", string(claims.Role)).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.Unauthorized(c, "User role not found in token")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "You do not have permission to access this resource.")
		c.Abort()
	}
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok && idStr != ""
}

// Helper function to get user role from context
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get(ctxUserRole)
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}

// GetTokenFromContext returns the id and expiry of the token that
// authenticated the request.
func GetTokenFromContext(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString(ctxTokenID)
	exp, _ := c.Get(ctxTokenExp)
	expiresAt, ok := exp.(time.Time)
	return jti, expiresAt, ok && jti != ""
}

// GetAccountFromContext returns the account resolved by AuthMiddleware.
func GetAccountFromContext(c *gin.Context) (models.Account, bool) {
	v, exists := c.Get(ctxAccount)
	if !exists {
		return nil, false
	}
	account, ok := v.(models.Account)
	return account, ok
}
