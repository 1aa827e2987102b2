package routes

import (
	"context"

	"github.com/gin-gonic/gin"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/appointments"
	"medconnect-server/internal/config"
	"medconnect-server/internal/handlers"
	"medconnect-server/internal/middleware"
	"medconnect-server/internal/models"
	"medconnect-server/internal/payments"
	"medconnect-server/internal/revocation"
)

// Services holds what the handlers are built from.
type Services struct {
	Accounts     *accounts.Resolver
	Appointments *appointments.Manager
	Payments     *payments.Service
	Revoked      revocation.Store
	DBDriver     string
	DBPing       func(ctx context.Context) error
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, svc Services, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Accounts, svc.Revoked, cfg)
	userHandler := handlers.NewUserHandler(svc.Accounts)
	hospitalHandler := handlers.NewHospitalHandler(svc.Accounts)
	doctorHandler := handlers.NewDoctorHandler(svc.Accounts)
	patientHandler := handlers.NewPatientHandler(svc.Accounts, svc.Appointments)
	appointmentHandler := handlers.NewAppointmentHandler(svc.Appointments, svc.Accounts)
	paymentHandler := handlers.NewPaymentHandler(svc.Payments)
	healthHandler := handlers.NewHealthHandler(svc.DBDriver, svc.DBPing)

	auth := middleware.AuthMiddleware(cfg, svc.Revoked, svc.Accounts)
	hospitalOnly := middleware.RoleAuthMiddleware(models.RoleHospital)
	staff := middleware.RoleAuthMiddleware(models.RoleHospital, models.RoleDoctor)

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/verify-token", auth, authHandler.VerifyToken)
		authRoutes.POST("/logout", auth, authHandler.Logout)
		authRoutes.POST("/save-fcm-token", auth, authHandler.SaveFCMToken)
	}

	userRoutes := api.Group("/user")
	userRoutes.Use(auth)
	{
		userRoutes.GET("/profile", userHandler.GetProfile)
		userRoutes.PUT("/update-profile", userHandler.UpdateProfile)
		userRoutes.DELETE("/account", userHandler.DeleteAccount)
		userRoutes.GET("/role/:role", userHandler.GetUsersByRole)
		userRoutes.GET("/doctors", userHandler.GetDoctors)
		userRoutes.GET("/hospitals", userHandler.GetHospitals)
		userRoutes.GET("/stats", userHandler.GetStats)
		userRoutes.GET("/search", userHandler.SearchUsers)
	}

	hospitalRoutes := api.Group("/hospital")
	{
		// Public directory
		hospitalRoutes.GET("", hospitalHandler.GetHospitals)
		hospitalRoutes.GET("/:id", hospitalHandler.GetHospital)
		hospitalRoutes.GET("/:id/doctors", hospitalHandler.GetHospitalDoctors)

		// A hospital manages only its own record
		hospitalRoutes.PUT("/updateHospital/:id", auth, hospitalOnly, hospitalHandler.UpdateHospital)
		hospitalRoutes.DELETE("/deleteHospital/:id", auth, hospitalOnly, hospitalHandler.DeleteHospital)
		hospitalRoutes.PATCH("/:id/toggle-status", auth, hospitalOnly, hospitalHandler.ToggleStatus)
	}

	doctorRoutes := api.Group("/doctor")
	{
		doctorRoutes.GET("/getDoctors", doctorHandler.GetDoctors)
		doctorRoutes.GET("/hospitals/:hospitalId/doctors", doctorHandler.GetDoctorsByHospital)

		doctorRoutes.POST("/addDoctors", auth, hospitalOnly, doctorHandler.AddDoctor)
		doctorRoutes.PUT("/updateDoctor/:id", auth, hospitalOnly, doctorHandler.UpdateDoctor)
		doctorRoutes.DELETE("/deleteDoctor/:id", auth, hospitalOnly, doctorHandler.DeleteDoctor)
	}

	patientRoutes := api.Group("/patient")
	patientRoutes.Use(auth, staff)
	{
		patientRoutes.GET("/getAllPatients", patientHandler.GetAllPatients)
		patientRoutes.GET("/getPatientByHospital/:hospitalId", patientHandler.GetPatientsByHospital)
		patientRoutes.GET("/getPatientByHospital/:hospitalId/recent", patientHandler.GetRecentPatientsByHospital)
		patientRoutes.GET("/getPatientByDoctor/:doctorId", patientHandler.GetPatientsByDoctor)
	}

	appointmentRoutes := api.Group("/appointment")
	appointmentRoutes.Use(auth)
	{
		appointmentRoutes.POST("/createAppointment", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleHospital), appointmentHandler.CreateAppointment)
		appointmentRoutes.GET("/getAppointments", appointmentHandler.GetAppointments)
		appointmentRoutes.GET("/getAppointment/:id", appointmentHandler.GetAppointment)
		appointmentRoutes.GET("/getAppointment/patient/:id", appointmentHandler.GetPatientAppointments)
		appointmentRoutes.GET("/getAppointment/hospital/:id", appointmentHandler.GetHospitalAppointments)
		appointmentRoutes.GET("/getAppointment/hospital/:id/recent", appointmentHandler.GetRecentHospitalAppointments)
		appointmentRoutes.GET("/getAppointment/doctor/:id", appointmentHandler.GetDoctorAppointments)
		appointmentRoutes.PUT("/updateAppointment/:id", appointmentHandler.UpdateAppointment)
		appointmentRoutes.DELETE("/deleteAppointment/:id", hospitalOnly, appointmentHandler.DeleteAppointment)

		// Lifecycle transitions, party checks inside the handler
		appointmentRoutes.PUT("/:id/cancel", appointmentHandler.CancelAppointment)
		appointmentRoutes.PUT("/:id/reschedule", appointmentHandler.RescheduleAppointment)
		appointmentRoutes.PUT("/:id/confirm", staff, appointmentHandler.ConfirmAppointment)
		appointmentRoutes.PUT("/:id/complete", staff, appointmentHandler.CompleteAppointment)
	}

	paymentRoutes := api.Group("/payment")
	paymentRoutes.Use(auth, middleware.RoleAuthMiddleware(models.RolePatient))
	{
		paymentRoutes.POST("/razorpay/create-order", paymentHandler.CreateOrder)
		paymentRoutes.POST("/razorpay/verify", paymentHandler.VerifyPayment)
		paymentRoutes.GET("/history", paymentHandler.GetHistory)
		paymentRoutes.GET("/:paymentId", paymentHandler.GetPayment)
		paymentRoutes.POST("/refund", paymentHandler.Refund)
	}

	router.GET("/health", healthHandler.Health)
	router.GET("/health/db", healthHandler.Database)
}
