package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"dentalclinic-backend/internal/config"
	"dentalclinic-backend/internal/models"
	"dentalclinic-backend/internal/scheduling"
	"dentalclinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GetAppointments lists appointments. Supports ?date=YYYY-MM-DD for a whole
// day, or ?from_datetime=&to_datetime= as an RFC3339 range. Date-only
// strings in the range form are rejected.
func GetAppointments(c *gin.Context) {
	query := config.DB.Preload("Patient").Preload("Dentist").Preload("Treatment").
		Order("scheduled_at desc")

	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			utils.APIResponse(c, http.StatusBadRequest, false, "date must be YYYY-MM-DD", nil)
			return
		}
		query = query.Where("scheduled_at >= ? AND scheduled_at < ?", day, day.AddDate(0, 0, 1))
	}

	from, to := c.Query("from_datetime"), c.Query("to_datetime")
	if from != "" || to != "" {
		fromT, toT, err := parseDatetimeRange(from, to)
		if err != nil {
			utils.APIResponse(c, http.StatusBadRequest, false, err.Error(), nil)
			return
		}
		query = query.Where("scheduled_at BETWEEN ? AND ?", fromT, toT)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to fetch appointments", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Appointments fetched successfully", appointments)
}

// GetTodayAppointments is the front desk's morning view.
func GetTodayAppointments(c *gin.Context) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var appointments []models.Appointment
	err := config.DB.Preload("Patient").Preload("Dentist").Preload("Treatment").
		Where("scheduled_at >= ? AND scheduled_at < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Order("scheduled_at asc").
		Find(&appointments).Error
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to fetch appointments", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Today's appointments", appointments)
}

func GetAppointment(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	var appt models.Appointment
	err := config.DB.Preload("Patient").Preload("Dentist").Preload("Treatment").Preload("Payments").
		First(&appt, id).Error
	if err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Appointment not found", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Appointment fetched successfully", appt)
}

// CreateAppointment books a slot through the scheduling core.
func CreateAppointment(c *gin.Context) {
	var input models.CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Invalid appointment input", err.Error())
		return
	}

	appt, err := scheduling.Book(config.DB, input)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	go notifyDentist(appt.DentistID, "New appointment booked",
		fmt.Sprintf("A patient is booked for %s.", appt.ScheduledAt.Format(time.RFC3339)),
		map[string]string{"appointment_id": fmt.Sprintf("%d", appt.ID), "type": "appointment_booked"})

	utils.APIResponse(c, http.StatusCreated, true, "Appointment created successfully", appt)
}

// UpdateAppointment edits a scheduled appointment; changing the patient,
// dentist or time re-runs the conflict check.
func UpdateAppointment(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	var input models.UpdateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Invalid appointment input", err.Error())
		return
	}

	appt, err := scheduling.UpdateBooking(config.DB, id, input)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Appointment updated successfully", appt)
}

// CancelAppointment frees the slot. No conflict check runs on cancel.
func CancelAppointment(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	appt, err := scheduling.Cancel(config.DB, id)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	go notifyDentist(appt.DentistID, "Appointment canceled",
		fmt.Sprintf("The appointment at %s was canceled.", appt.ScheduledAt.Format(time.RFC3339)),
		map[string]string{"appointment_id": fmt.Sprintf("%d", appt.ID), "type": "appointment_canceled"})

	utils.APIResponse(c, http.StatusOK, true, "Appointment was canceled successfully", nil)
}

// CompleteAppointment marks the visit done and creates the payment for the
// locked price, atomically.
func CompleteAppointment(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	payment, err := scheduling.Complete(config.DB, id)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Appointment completed successfully", gin.H{
		"payment": payment,
	})
}

// respondSchedulingError maps scheduling core errors onto the HTTP taxonomy:
// conflicts 409, bad references 400/404, terminal transitions 409, the rest
// opaque 500s.
func respondSchedulingError(c *gin.Context, err error) {
	var conflict *scheduling.ConflictError
	if errors.As(err, &conflict) {
		utils.APIResponse(c, http.StatusConflict, false, conflict.Error(), gin.H{
			"conflictId":        conflict.ConflictID,
			"isPatientConflict": conflict.IsPatientConflict,
			"isDentistConflict": conflict.IsDentistConflict,
			"scheduledAt":       conflict.ScheduledAt,
		})
		return
	}

	var roleErr *scheduling.RoleError
	if errors.As(err, &roleErr) {
		code := http.StatusBadRequest
		if roleErr.Missing {
			code = http.StatusNotFound
		}
		utils.APIResponse(c, code, false, roleErr.Error(), gin.H{"field": roleErr.Field})
		return
	}

	switch {
	case errors.Is(err, scheduling.ErrNotFound):
		utils.APIResponse(c, http.StatusNotFound, false, "Appointment not found", nil)
	case errors.Is(err, scheduling.ErrTreatmentNotFound):
		utils.APIResponse(c, http.StatusNotFound, false, "Treatment not found", nil)
	case errors.Is(err, scheduling.ErrPriceRequired):
		utils.APIResponse(c, http.StatusBadRequest, false, err.Error(), nil)
	case errors.Is(err, scheduling.ErrTerminalStatus):
		utils.APIResponse(c, http.StatusConflict, false, err.Error(), nil)
	default:
		log.Printf("[Appointments] unexpected error: %v", err)
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to process appointment", nil)
	}
}

func parseDatetimeRange(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, errors.New("from_datetime and to_datetime must both be set")
	}
	fromT, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("from_datetime must be an RFC3339 datetime, not a date")
	}
	toT, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("to_datetime must be an RFC3339 datetime, not a date")
	}
	return fromT, toT, nil
}

// notifyDentist pushes an FCM message to the dentist's device, if any.
func notifyDentist(dentistID uint64, title, body string, data map[string]string) {
	var dentist models.User
	if err := config.DB.First(&dentist, dentistID).Error; err != nil {
		return
	}
	if dentist.FCMToken == "" {
		return
	}
	if err := utils.SendNotification(dentist.FCMToken, title, body, data); err != nil {
		log.Printf("[Appointments] failed to notify dentist %d: %v", dentistID, err)
	}
}
