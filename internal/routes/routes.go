package routes

import (
	"dentalclinic-backend/internal/handlers"
	"dentalclinic-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RateLimitMiddleware())

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", handlers.Login)
		}

		// Midtrans calls this without a bearer token
		api.POST("/payments/notification", handlers.HandleMidtransNotification)

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/auth/logout", handlers.Logout)
			protected.GET("/auth/me", handlers.Me)
			protected.POST("/auth/change-password", handlers.ChangePassword)

			protected.GET("/users", middleware.RequirePermission(middleware.OpViewUsers), handlers.GetUsers)
			protected.GET("/users/:id", middleware.RequirePermission(middleware.OpViewUsers), handlers.GetUser)
			protected.POST("/users", middleware.RequirePermission(middleware.OpCreateUser), handlers.CreateUser)
			protected.PUT("/users/:id", middleware.RequirePermission(middleware.OpUpdateUser), handlers.UpdateUser)
			protected.DELETE("/users/:id", middleware.RequirePermission(middleware.OpDeleteUser), handlers.DeleteUser)

			protected.GET("/treatments", middleware.RequirePermission(middleware.OpViewTreatments), handlers.GetTreatments)
			protected.GET("/treatments/:id", middleware.RequirePermission(middleware.OpViewTreatments), handlers.GetTreatment)
			protected.POST("/treatments", middleware.RequirePermission(middleware.OpManageTreatments), handlers.CreateTreatment)
			protected.PUT("/treatments/:id", middleware.RequirePermission(middleware.OpManageTreatments), handlers.UpdateTreatment)
			protected.DELETE("/treatments/:id", middleware.RequirePermission(middleware.OpManageTreatments), handlers.DeleteTreatment)

			protected.GET("/appointments", middleware.RequirePermission(middleware.OpViewAppointments), handlers.GetAppointments)
			protected.GET("/appointments/today", middleware.RequirePermission(middleware.OpViewAppointments), handlers.GetTodayAppointments)
			protected.GET("/appointments/:id", middleware.RequirePermission(middleware.OpViewAppointments), handlers.GetAppointment)
			protected.POST("/appointments", middleware.RequirePermission(middleware.OpManageAppointments), handlers.CreateAppointment)
			protected.PUT("/appointments/:id", middleware.RequirePermission(middleware.OpManageAppointments), handlers.UpdateAppointment)
			protected.POST("/appointments/:id/cancel", middleware.RequirePermission(middleware.OpManageAppointments), handlers.CancelAppointment)
			protected.POST("/appointments/:id/complete", middleware.RequirePermission(middleware.OpManageAppointments), handlers.CompleteAppointment)

			protected.GET("/payments", middleware.RequirePermission(middleware.OpViewPayments), handlers.GetPayments)
			protected.GET("/payments/:id", middleware.RequirePermission(middleware.OpViewPayments), handlers.GetPayment)
			protected.PUT("/payments/:id", middleware.RequirePermission(middleware.OpUpdatePayments), handlers.UpdatePayment)
			protected.POST("/payments/:id/checkout", middleware.RequirePermission(middleware.OpUpdatePayments), handlers.CheckoutPayment)

			protected.GET("/dashboard/stats", middleware.RequirePermission(middleware.OpViewDashboard), handlers.GetDashboardStats)
		}
	}
}
