package handlers

import (
	"github.com/gin-gonic/gin"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/middleware"
	"medconnect-server/internal/models"
	"medconnect-server/internal/utils"
)

// UserHandler handles profile and directory requests shared by every role.
type UserHandler struct {
	Accounts *accounts.Resolver
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(resolver *accounts.Resolver) *UserHandler {
	return &UserHandler{Accounts: resolver}
}

// GetProfile returns the caller's account.
func (h *UserHandler) GetProfile(c *gin.Context) {
	account, ok := loadCurrentAccount(c, h.Accounts)
	if !ok {
		return
	}
	utils.Success(c, "Profile retrieved successfully", h.Accounts.GetUserData(account))
}

// UpdateProfile applies the role-specific profile fields of the caller.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req accounts.ProfileUpdate
	if !utils.BindAndValidate(c, &req) {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	account, err := h.Accounts.UpdateByID(c.Request.Context(), userID, role, req.Apply)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Profile updated successfully", h.Accounts.GetUserData(account))
}

// DeleteAccountRequest optionally confirms the deletion with the password.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// DeleteAccount deactivates the caller's account.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	var req DeleteAccountRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Invalid request payload")
			return
		}
	}

	account, ok := loadCurrentAccount(c, h.Accounts)
	if !ok {
		return
	}
	if req.Password != "" {
		match, err := h.Accounts.Store().VerifySecret(account, req.Password)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if !match {
			utils.BadRequest(c, "Incorrect password")
			return
		}
	}

	base := account.Base()
	if _, err := h.Accounts.DeleteByID(c.Request.Context(), base.ID, base.Role); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Account deactivated successfully", nil)
}

// GetUsersByRole lists active accounts of the role in the path.
func (h *UserHandler) GetUsersByRole(c *gin.Context) {
	role, err := models.ParseRole(c.Param("role"))
	if err != nil || role == "" {
		utils.BadRequest(c, "Invalid role")
		return
	}
	page, limit, offset := pagination(c)

	list, total, err := h.Accounts.FindByRole(c.Request.Context(), role, accounts.Query{
		Filter: accounts.Filter{IsActive: boolPtr(true), Search: c.Query("search")},
		Sort:   accounts.SortCreatedDesc,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Users retrieved successfully", gin.H{
		"users": views(list),
		"total": total,
		"page":  page,
		"pages": pages(total, limit),
	})
}

// GetDoctors lists active doctors, best rated first.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	list, _, err := h.Accounts.FindByRole(c.Request.Context(), models.RoleDoctor, accounts.Query{
		Filter: accounts.Filter{
			IsActive:       boolPtr(true),
			IsVerified:     queryBool(c, "isVerified"),
			Specialization: c.Query("specialization"),
		},
		Sort: accounts.SortRatingDesc,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctors retrieved successfully", views(list))
}

// GetHospitals lists active hospitals, best rated first.
func (h *UserHandler) GetHospitals(c *gin.Context) {
	list, _, err := h.Accounts.FindByRole(c.Request.Context(), models.RoleHospital, accounts.Query{
		Filter: accounts.Filter{
			IsActive:  boolPtr(true),
			MinRating: queryFloat(c, "minRating"),
		},
		Sort: accounts.SortRatingDesc,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Hospitals retrieved successfully", views(list))
}

// GetStats counts active accounts per role.
func (h *UserHandler) GetStats(c *gin.Context) {
	counts, err := h.Accounts.Count(c.Request.Context(), accounts.Filter{IsActive: boolPtr(true)})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	utils.Success(c, "User statistics retrieved successfully", gin.H{
		"patients":  counts[models.RolePatient],
		"doctors":   counts[models.RoleDoctor],
		"hospitals": counts[models.RoleHospital],
		"total":     total,
	})
}

// SearchUsers searches active accounts of every role.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	page, limit, offset := pagination(c)
	list, total, err := h.Accounts.FindAll(c.Request.Context(), accounts.Query{
		Filter: accounts.Filter{IsActive: boolPtr(true), Search: c.Query("q")},
		Sort:   accounts.SortNameAsc,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Users retrieved successfully", gin.H{
		"users": views(list),
		"total": total,
		"page":  page,
		"pages": pages(total, limit),
	})
}
