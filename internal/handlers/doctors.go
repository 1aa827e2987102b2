package handlers

import (
	"github.com/gin-gonic/gin"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/middleware"
	"medconnect-server/internal/models"
	"medconnect-server/internal/utils"
)

// DoctorHandler handles doctor directory requests and the doctor roster
// hospitals manage.
type DoctorHandler struct {
	Accounts *accounts.Resolver
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(resolver *accounts.Resolver) *DoctorHandler {
	return &DoctorHandler{Accounts: resolver}
}

// GetDoctors lists active doctors with optional filters.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	page, limit, offset := pagination(c)

	list, total, err := h.Accounts.FindByRole(c.Request.Context(), models.RoleDoctor, accounts.Query{
		Filter: accounts.Filter{
			IsActive:       boolPtr(true),
			IsVerified:     queryBool(c, "isVerified"),
			Search:         c.Query("search"),
			Specialization: c.Query("specialization"),
			Department:     c.Query("department"),
			HospitalID:     c.Query("hospitalId"),
		},
		Sort:   accounts.SortRatingDesc,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Doctors retrieved successfully", gin.H{
		"doctors": views(list),
		"total":   total,
		"page":    page,
		"pages":   pages(total, limit),
	})
}

// GetDoctorsByHospital lists the active doctors of one hospital.
func (h *DoctorHandler) GetDoctorsByHospital(c *gin.Context) {
	list, _, err := h.Accounts.FindByRole(c.Request.Context(), models.RoleDoctor, accounts.Query{
		Filter: accounts.Filter{IsActive: boolPtr(true), HospitalID: c.Param("hospitalId")},
		Sort:   accounts.SortNameAsc,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctors retrieved successfully", views(list))
}

// AddDoctor creates a doctor account bound to the calling hospital.
func (h *DoctorHandler) AddDoctor(c *gin.Context) {
	var req accounts.SignupInput
	if !utils.BindAndValidate(c, &req) {
		return
	}
	hospitalID, _ := middleware.GetUserIDFromContext(c)
	req.Role = string(models.RoleDoctor)
	req.HospitalID = hospitalID
	req.ConfirmPassword = ""

	account, err := h.Accounts.Store().Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Doctor added successfully", h.Accounts.GetUserData(account))
}

// UpdateDoctor updates a doctor of the calling hospital.
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	id, ok := h.rosterDoctor(c)
	if !ok {
		return
	}
	var req accounts.ProfileUpdate
	if !utils.BindAndValidate(c, &req) {
		return
	}

	account, err := h.Accounts.UpdateByID(c.Request.Context(), id, models.RoleDoctor, req.Apply)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor updated successfully", h.Accounts.GetUserData(account))
}

// DeleteDoctor deactivates a doctor of the calling hospital.
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	id, ok := h.rosterDoctor(c)
	if !ok {
		return
	}
	if _, err := h.Accounts.DeleteByID(c.Request.Context(), id, models.RoleDoctor); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor deleted successfully", nil)
}

// rosterDoctor loads the :id doctor and checks it works at the caller's
// hospital.
func (h *DoctorHandler) rosterDoctor(c *gin.Context) (string, bool) {
	id := c.Param("id")
	account, err := h.Accounts.FindByID(c.Request.Context(), id, models.RoleDoctor)
	if err != nil {
		utils.RespondError(c, err)
		return "", false
	}
	hospitalID, _ := middleware.GetUserIDFromContext(c)
	if account.(*models.Doctor).HospitalID != hospitalID {
		utils.Forbidden(c, "Doctor does not belong to your hospital")
		return "", false
	}
	return id, true
}
