package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/appointments"
	"medconnect-server/internal/middleware"
	"medconnect-server/internal/models"
	"medconnect-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Appointments *appointments.Manager
	Accounts     *accounts.Resolver
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(manager *appointments.Manager, resolver *accounts.Resolver) *AppointmentHandler {
	return &AppointmentHandler{Appointments: manager, Accounts: resolver}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	PatientID       string                 `json:"patientId"` // Taken from the token when a patient books
	DoctorID        string                 `json:"doctorId" binding:"required"`
	HospitalID      string                 `json:"hospitalId" binding:"required"`
	AppointmentDate string                 `json:"appointmentDate" binding:"required"`
	AppointmentTime string                 `json:"appointmentTime" binding:"required"`
	AppointmentType models.AppointmentType `json:"appointmentType"`
	Symptoms        string                 `json:"symptoms"`
	IsFirstVisit    bool                   `json:"isFirstVisit"`
	ConsultationFee *float64               `json:"consultationFee"`
}

// CreateAppointment books an appointment. Patients book for themselves,
// hospitals book on behalf of a patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	switch role {
	case models.RolePatient:
		if req.PatientID != "" && req.PatientID != userID {
			utils.Forbidden(c, "Patients can only book appointments for themselves")
			return
		}
		req.PatientID = userID
	case models.RoleHospital:
		if req.HospitalID != userID {
			utils.Forbidden(c, "Hospitals can only book appointments at their own hospital")
			return
		}
		if req.PatientID == "" {
			utils.BadRequest(c, "patientId is required")
			return
		}
	default:
		utils.Forbidden(c, "Only patients and hospitals can book appointments")
		return
	}

	date, err := parseDate("appointmentDate", req.AppointmentDate)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	appt, err := h.Appointments.Book(c.Request.Context(), appointments.BookingInput{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		HospitalID:      req.HospitalID,
		AppointmentDate: date,
		AppointmentTime: req.AppointmentTime,
		AppointmentType: req.AppointmentType,
		Symptoms:        req.Symptoms,
		IsFirstVisit:    req.IsFirstVisit,
		ConsultationFee: req.ConsultationFee,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Appointment booked successfully", appt)
}

// GetAppointments lists the caller's own appointments.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	var f appointments.Filter
	switch role {
	case models.RolePatient:
		f.PatientID = userID
	case models.RoleDoctor:
		f.DoctorID = userID
	case models.RoleHospital:
		f.HospitalID = userID
	default:
		utils.Forbidden(c, "Unknown role")
		return
	}
	h.list(c, f, appointments.SortDateAsc, 0)
}

// GetAppointment returns one appointment the caller takes part in.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	appt, ok := h.participantAppointment(c)
	if !ok {
		return
	}
	utils.Success(c, "Appointment retrieved successfully", appt)
}

// GetPatientAppointments lists a patient's appointments.
func (h *AppointmentHandler) GetPatientAppointments(c *gin.Context) {
	id := c.Param("id")
	if !h.ownScope(c, models.RolePatient, id) {
		return
	}
	h.list(c, appointments.Filter{PatientID: id}, appointments.SortDateAsc, 0)
}

// GetHospitalAppointments lists a hospital's appointments.
func (h *AppointmentHandler) GetHospitalAppointments(c *gin.Context) {
	id := c.Param("id")
	if !h.ownScope(c, models.RoleHospital, id) {
		return
	}
	h.list(c, appointments.Filter{HospitalID: id}, appointments.SortDateAsc, 0)
}

// GetRecentHospitalAppointments lists a hospital's newest bookings.
func (h *AppointmentHandler) GetRecentHospitalAppointments(c *gin.Context) {
	id := c.Param("id")
	if !h.ownScope(c, models.RoleHospital, id) {
		return
	}
	h.list(c, appointments.Filter{HospitalID: id}, appointments.SortCreatedDesc, appointments.RecentLimit)
}

// GetDoctorAppointments lists a doctor's appointments. The doctor's
// hospital may view them too.
func (h *AppointmentHandler) GetDoctorAppointments(c *gin.Context) {
	id := c.Param("id")
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	if !(role == models.RoleDoctor && userID == id) {
		account, err := h.Accounts.FindByID(c.Request.Context(), id, models.RoleDoctor)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if role != models.RoleHospital || account.(*models.Doctor).HospitalID != userID {
			utils.Forbidden(c, "You can only view your own appointments")
			return
		}
	}
	h.list(c, appointments.Filter{DoctorID: id}, appointments.SortDateAsc, 0)
}

// UpdateAppointment changes the descriptive fields of an appointment.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	appt, ok := h.participantAppointment(c)
	if !ok {
		return
	}
	var req appointments.Patch
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updated, err := h.Appointments.Update(c.Request.Context(), appt.ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment updated successfully", updated)
}

// DeleteAppointment removes an appointment of the calling hospital.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	appt, ok := h.participantAppointment(c)
	if !ok {
		return
	}
	if err := h.Appointments.Delete(c.Request.Context(), appt.ID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment deleted successfully", nil)
}

// CancelAppointmentRequest represents the request body for cancelling.
type CancelAppointmentRequest struct {
	Reason      string `json:"reason"`
	CancelledBy string `json:"cancelledBy"`
}

// CancelAppointment cancels an appointment for the patient or the hospital.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	var req CancelAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	by := appointments.CancelledBy(strings.TrimSpace(req.CancelledBy))
	if _, err := by.Status(); err != nil {
		utils.RespondError(c, err)
		return
	}

	appt, ok := h.participantAppointment(c)
	if !ok {
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)
	if (role == models.RolePatient) != (by == appointments.CancelledByPatient) {
		utils.Forbidden(c, "cancelledBy does not match your role")
		return
	}

	updated, err := h.Appointments.Cancel(c.Request.Context(), appt.ID, by, req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment cancelled successfully", updated)
}

// RescheduleAppointmentRequest represents the request body for rescheduling.
type RescheduleAppointmentRequest struct {
	AppointmentDate string `json:"appointmentDate" binding:"required"`
	AppointmentTime string `json:"appointmentTime" binding:"required"`
}

// RescheduleAppointment moves an appointment to a new date and time.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	date, err := parseDate("appointmentDate", req.AppointmentDate)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	appt, ok := h.participantAppointment(c)
	if !ok {
		return
	}
	updated, err := h.Appointments.Reschedule(c.Request.Context(), appt.ID, date, req.AppointmentTime)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment rescheduled successfully", updated)
}

// ConfirmAppointment confirms a pending appointment.
func (h *AppointmentHandler) ConfirmAppointment(c *gin.Context) {
	appt, ok := h.participantAppointment(c)
	if !ok {
		return
	}
	updated, err := h.Appointments.Confirm(c.Request.Context(), appt.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment confirmed successfully", updated)
}

// CompleteAppointment marks an appointment completed.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	appt, ok := h.participantAppointment(c)
	if !ok {
		return
	}
	updated, err := h.Appointments.Complete(c.Request.Context(), appt.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment completed successfully", updated)
}

// participantAppointment loads the :id appointment and checks the caller is
// one of its parties.
func (h *AppointmentHandler) participantAppointment(c *gin.Context) (*models.Appointment, bool) {
	appt, err := h.Appointments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return nil, false
	}
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	if !appointments.IsParticipant(appt, role, userID) {
		utils.Forbidden(c, "You are not authorized to access this appointment")
		return nil, false
	}
	return appt, true
}

func (h *AppointmentHandler) ownScope(c *gin.Context, role models.Role, id string) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != role || userID != id {
		utils.Forbidden(c, "You can only view your own appointments")
		return false
	}
	return true
}

// list responds with the appointments matching f. ?status= narrows the
// listing to a comma separated set of statuses.
func (h *AppointmentHandler) list(c *gin.Context, f appointments.Filter, sort appointments.Sort, limit int) {
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := models.AppointmentStatus(strings.TrimSpace(s))
			if !status.Valid() {
				utils.RespondError(c, models.NewValidationError("status", "unknown appointment status "+string(status)))
				return
			}
			f.Statuses = append(f.Statuses, status)
		}
	}

	list, err := h.Appointments.List(c.Request.Context(), appointments.Query{Filter: f, Sort: sort, Limit: limit})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if list == nil {
		list = []models.Appointment{}
	}
	utils.Success(c, "Appointments retrieved successfully", list)
}
