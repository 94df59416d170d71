package handlers

import (
	"net/http"
	"time"

	"dentalclinic-backend/internal/config"
	"dentalclinic-backend/internal/models"
	"dentalclinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats summarizes the clinic for the manager's overview.
func GetDashboardStats(c *gin.Context) {
	var totalRevenue float64
	var scheduledToday int64
	var activeDentists int64
	var activePatients int64

	type result struct {
		Total float64
	}
	var res result
	config.DB.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Scan(&res)
	totalRevenue = res.Total

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	config.DB.Model(&models.Appointment{}).
		Where("status = ? AND scheduled_at >= ? AND scheduled_at < ?",
			models.StatusScheduled, dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&scheduledToday)

	config.DB.Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleDentist, true).
		Count(&activeDentists)

	config.DB.Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RolePatient, true).
		Count(&activePatients)

	utils.APIResponse(c, http.StatusOK, true, "Dashboard stats", gin.H{
		"total_revenue":   totalRevenue,
		"scheduled_today": scheduledToday,
		"active_dentists": activeDentists,
		"active_patients": activePatients,
	})
}
