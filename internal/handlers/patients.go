package handlers

import (
	"github.com/gin-gonic/gin"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/appointments"
	"medconnect-server/internal/middleware"
	"medconnect-server/internal/models"
	"medconnect-server/internal/utils"
)

// PatientHandler lists the patients known to hospitals and doctors. Apart
// from GetAllPatients the listings are projections of appointments.
type PatientHandler struct {
	Accounts     *accounts.Resolver
	Appointments *appointments.Manager
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(resolver *accounts.Resolver, manager *appointments.Manager) *PatientHandler {
	return &PatientHandler{Accounts: resolver, Appointments: manager}
}

// PatientSummary is one patient as seen through their appointments.
type PatientSummary struct {
	PatientID    string              `json:"patientId"`
	PatientName  string              `json:"patientName"`
	PatientPhone string              `json:"patientPhone"`
	Appointment  *models.Appointment `json:"appointment"`
}

// GetAllPatients lists active patient accounts.
func (h *PatientHandler) GetAllPatients(c *gin.Context) {
	page, limit, offset := pagination(c)

	list, total, err := h.Accounts.FindByRole(c.Request.Context(), models.RolePatient, accounts.Query{
		Filter: accounts.Filter{IsActive: boolPtr(true), Search: c.Query("search")},
		Sort:   accounts.SortCreatedDesc,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Patients retrieved successfully", gin.H{
		"patients": views(list),
		"total":    total,
		"page":     page,
		"pages":    pages(total, limit),
	})
}

// GetPatientsByHospital lists every patient who booked with the hospital.
func (h *PatientHandler) GetPatientsByHospital(c *gin.Context) {
	hospitalID := c.Param("hospitalId")
	if !h.canViewHospital(c, hospitalID) {
		return
	}
	h.respond(c, appointments.Query{
		Filter: appointments.Filter{HospitalID: hospitalID},
		Sort:   appointments.SortCreatedDesc,
	})
}

// GetRecentPatientsByHospital lists the patients of the hospital's most
// recent bookings.
func (h *PatientHandler) GetRecentPatientsByHospital(c *gin.Context) {
	hospitalID := c.Param("hospitalId")
	if !h.canViewHospital(c, hospitalID) {
		return
	}
	h.respond(c, appointments.Recent(appointments.Filter{HospitalID: hospitalID}))
}

// GetPatientsByDoctor lists every patient who booked with the doctor.
func (h *PatientHandler) GetPatientsByDoctor(c *gin.Context) {
	doctorID := c.Param("doctorId")
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	if !(role == models.RoleDoctor && userID == doctorID) {
		account, err := h.Accounts.FindByID(c.Request.Context(), doctorID, models.RoleDoctor)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if role != models.RoleHospital || account.(*models.Doctor).HospitalID != userID {
			utils.Forbidden(c, "You can only view patients of your own doctors")
			return
		}
	}

	h.respond(c, appointments.Query{
		Filter: appointments.Filter{DoctorID: doctorID},
		Sort:   appointments.SortCreatedDesc,
	})
}

func (h *PatientHandler) canViewHospital(c *gin.Context, hospitalID string) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	if role != models.RoleHospital || userID != hospitalID {
		utils.Forbidden(c, "You can only view patients of your own hospital")
		return false
	}
	return true
}

func (h *PatientHandler) respond(c *gin.Context, q appointments.Query) {
	list, err := h.Appointments.List(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	unique := appointments.UniquePatients(list)
	out := make([]PatientSummary, 0, len(unique))
	for i := range unique {
		appt := &unique[i]
		out = append(out, PatientSummary{
			PatientID:    appt.PatientID,
			PatientName:  appt.PatientName,
			PatientPhone: appt.PatientPhone,
			Appointment:  appt,
		})
	}
	utils.Success(c, "Patients retrieved successfully", out)
}
