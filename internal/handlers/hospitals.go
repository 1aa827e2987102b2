package handlers

import (
	"github.com/gin-gonic/gin"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/middleware"
	"medconnect-server/internal/models"
	"medconnect-server/internal/utils"
)

// HospitalHandler handles hospital directory and management requests.
type HospitalHandler struct {
	Accounts *accounts.Resolver
}

// NewHospitalHandler creates a new HospitalHandler.
func NewHospitalHandler(resolver *accounts.Resolver) *HospitalHandler {
	return &HospitalHandler{Accounts: resolver}
}

// GetHospitals lists hospitals with paging and filters.
func (h *HospitalHandler) GetHospitals(c *gin.Context) {
	page, limit, offset := pagination(c)

	list, total, err := h.Accounts.FindByRole(c.Request.Context(), models.RoleHospital, accounts.Query{
		Filter: accounts.Filter{
			IsActive:   boolPtr(true),
			IsVerified: queryBool(c, "isVerified"),
			Search:     c.Query("search"),
			Type:       c.Query("type"),
			City:       c.Query("city"),
			State:      c.Query("state"),
			Is24x7:     queryBool(c, "is24x7"),
		},
		Sort:   accounts.SortCreatedDesc,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Hospitals retrieved successfully", gin.H{
		"hospitals": views(list),
		"total":     total,
		"page":      page,
		"pages":     pages(total, limit),
	})
}

// GetHospital returns one hospital.
func (h *HospitalHandler) GetHospital(c *gin.Context) {
	account, err := h.Accounts.FindByID(c.Request.Context(), c.Param("id"), models.RoleHospital)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Hospital retrieved successfully", h.Accounts.GetUserData(account))
}

// GetHospitalDoctors lists the active doctors working at a hospital.
func (h *HospitalHandler) GetHospitalDoctors(c *gin.Context) {
	hospitalID := c.Param("id")
	if _, err := h.Accounts.FindByID(c.Request.Context(), hospitalID, models.RoleHospital); err != nil {
		utils.RespondError(c, err)
		return
	}

	list, _, err := h.Accounts.FindByRole(c.Request.Context(), models.RoleDoctor, accounts.Query{
		Filter: accounts.Filter{IsActive: boolPtr(true), HospitalID: hospitalID},
		Sort:   accounts.SortNameAsc,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctors retrieved successfully", views(list))
}

// UpdateHospital updates the caller's own hospital record.
func (h *HospitalHandler) UpdateHospital(c *gin.Context) {
	id, ok := h.ownHospital(c)
	if !ok {
		return
	}
	var req accounts.ProfileUpdate
	if !utils.BindAndValidate(c, &req) {
		return
	}

	account, err := h.Accounts.UpdateByID(c.Request.Context(), id, models.RoleHospital, req.Apply)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Hospital updated successfully", h.Accounts.GetUserData(account))
}

// DeleteHospital deactivates the caller's own hospital record.
func (h *HospitalHandler) DeleteHospital(c *gin.Context) {
	id, ok := h.ownHospital(c)
	if !ok {
		return
	}
	if _, err := h.Accounts.DeleteByID(c.Request.Context(), id, models.RoleHospital); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Hospital deleted successfully", nil)
}

// ToggleStatus flips whether the caller's hospital is active. A deactivated
// hospital fails authentication, so only the deactivating flip is reachable
// through this route.
func (h *HospitalHandler) ToggleStatus(c *gin.Context) {
	id, ok := h.ownHospital(c)
	if !ok {
		return
	}

	account, err := h.Accounts.UpdateByID(c.Request.Context(), id, models.RoleHospital, func(a models.Account) error {
		a.Base().IsActive = !a.Base().IsActive
		return nil
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	message := "Hospital deactivated successfully"
	if account.Base().IsActive {
		message = "Hospital activated successfully"
	}
	utils.Success(c, message, h.Accounts.GetUserData(account))
}

// ownHospital returns the :id path parameter when it names the caller.
func (h *HospitalHandler) ownHospital(c *gin.Context) (string, bool) {
	id := c.Param("id")
	userID, _ := middleware.GetUserIDFromContext(c)
	if id != userID {
		utils.Forbidden(c, "You can only manage your own hospital")
		return "", false
	}
	return id, true
}
