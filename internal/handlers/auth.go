package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/config"
	"medconnect-server/internal/middleware"
	"medconnect-server/internal/models"
	"medconnect-server/internal/revocation"
	"medconnect-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Accounts *accounts.Resolver
	Revoked  revocation.Store
	Cfg      *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(resolver *accounts.Resolver, revoked revocation.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Accounts: resolver, Revoked: revoked, Cfg: cfg}
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// Signup handles account registration for every role.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req accounts.SignupInput
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.ConfirmPassword == "" || req.ConfirmPassword != req.Password {
		utils.BadRequest(c, "Passwords do not match")
		return
	}

	account, err := h.Accounts.Store().Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	token, _, err := utils.GenerateToken(account, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}

	utils.Created(c, "User registered successfully", AuthResponse{
		Token: token,
		User:  h.Accounts.GetUserData(account),
	})
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	account, err := h.Accounts.Authenticate(c.Request.Context(), req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	token, _, err := utils.GenerateToken(account, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}

	zerolog.Ctx(c.Request.Context()).Info().Str("user_id", account.Base().ID).Msg("login")
	utils.Success(c, "Login successful", AuthResponse{
		Token: token,
		User:  h.Accounts.GetUserData(account),
	})
}

// VerifyToken confirms the bearer token still maps to an active account.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	account, ok := h.currentAccount(c)
	if !ok {
		return
	}
	if !account.Base().IsActive {
		utils.Unauthorized(c, "Account is deactivated")
		return
	}
	utils.Success(c, "Token is valid", gin.H{"user": h.Accounts.GetUserData(account)})
}

// Logout revokes the bearer token until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, expiresAt, ok := middleware.GetTokenFromContext(c)
	if ok {
		userID, _ := middleware.GetUserIDFromContext(c)
		if err := h.Revoked.Revoke(c.Request.Context(), jti, userID, expiresAt); err != nil {
			utils.InternalServerError(c, err)
			return
		}
	}
	utils.Success(c, "Logged out successfully", nil)
}

// SaveFCMTokenRequest carries the device token for push notifications.
type SaveFCMTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

// SaveFCMToken stores the caller's device token.
func (h *AuthHandler) SaveFCMToken(c *gin.Context) {
	var req SaveFCMTokenRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	_, err := h.Accounts.UpdateByID(c.Request.Context(), userID, role, func(a models.Account) error {
		a.Base().FCMToken = req.FCMToken
		return nil
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "FCM token saved successfully", nil)
}

// currentAccount loads the account behind the bearer token, writing the
// error response itself when it cannot.
func (h *AuthHandler) currentAccount(c *gin.Context) (models.Account, bool) {
	return loadCurrentAccount(c, h.Accounts)
}

func loadCurrentAccount(c *gin.Context, resolver *accounts.Resolver) (models.Account, bool) {
	if account, ok := middleware.GetAccountFromContext(c); ok {
		return account, true
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	account, err := resolver.FindByID(c.Request.Context(), userID, role)
	if err != nil {
		utils.RespondError(c, err)
		return nil, false
	}
	return account, true
}
