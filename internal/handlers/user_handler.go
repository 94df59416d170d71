package handlers

import (
	"errors"
	"net/http"

	"dentalclinic-backend/internal/config"
	"dentalclinic-backend/internal/middleware"
	"dentalclinic-backend/internal/models"
	"dentalclinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateUser registers a clinic user. Profile fields are role-conditional:
// insurance data only for patients, specialization only for dentists.
func CreateUser(c *gin.Context) {
	var input models.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Invalid user input", err.Error())
		return
	}

	if fields := misplacedProfileFields(input); len(fields) > 0 {
		utils.APIResponse(c, http.StatusBadRequest, false, "Fields not allowed for role "+input.Role, gin.H{
			"invalid_fields": fields,
		})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to process password", nil)
		return
	}

	user := models.User{
		Name:         input.Name,
		PhoneNumber:  utils.NormalizePhone(input.PhoneNumber),
		PasswordHash: hash,
		Role:         input.Role,
		IsActive:     true,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		switch input.Role {
		case models.RolePatient:
			return tx.Create(&models.PatientProfile{
				UserID:            user.ID,
				Age:               input.Age,
				InsuranceNumber:   optionalString(input.InsuranceNumber),
				InsuranceProvider: input.InsuranceProvider,
				MedicalNotes:      input.MedicalNotes,
			}).Error
		case models.RoleDentist:
			return tx.Create(&models.DentistProfile{
				UserID:         user.ID,
				Specialization: input.Specialization,
			}).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.APIResponse(c, http.StatusConflict, false, "Phone number or insurance number already exists", gin.H{
				"field": "phone_number",
			})
			return
		}
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to create user", nil)
		return
	}

	config.DB.Preload("PatientProfile").Preload("DentistProfile").First(&user, user.ID)
	utils.APIResponse(c, http.StatusCreated, true, "User created successfully", user)
}

// GetUsers lists users, optionally filtered by ?role=.
func GetUsers(c *gin.Context) {
	query := config.DB.Preload("PatientProfile").Preload("DentistProfile").Order("created_at desc")

	if role := c.Query("role"); role != "" {
		if !models.ValidRole(role) {
			utils.APIResponse(c, http.StatusBadRequest, false, "Unknown role: "+role, nil)
			return
		}
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to fetch users", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Users fetched successfully", users)
}

// GetUser returns one user by id.
func GetUser(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	var user models.User
	if err := config.DB.Preload("PatientProfile").Preload("DentistProfile").First(&user, id).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "User not found", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "User fetched successfully", user)
}

// UpdateUser edits a user. Role changes go through the role hierarchy:
// the actor must be allowed to edit both the target's current role and the
// role being assigned.
func UpdateUser(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id := utils.StringToUint64(c.Param("id"))

	var input models.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Invalid user input", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Preload("PatientProfile").Preload("DentistProfile").First(&user, id).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "User not found", nil)
		return
	}

	if input.Role != nil && *input.Role != user.Role {
		if !middleware.CanEditRole(actor.Role, user.Role) || !middleware.CanEditRole(actor.Role, *input.Role) {
			utils.APIResponse(c, http.StatusForbidden, false, "Not allowed to change this user's role", gin.H{
				"actor_role":  actor.Role,
				"target_role": user.Role,
			})
			return
		}
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if input.Name != nil {
			user.Name = *input.Name
		}
		if input.PhoneNumber != nil {
			user.PhoneNumber = utils.NormalizePhone(*input.PhoneNumber)
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}
		if input.Role != nil && *input.Role != user.Role {
			// role switch drops the old profile row
			if user.Role == models.RolePatient {
				if err := tx.Where("user_id = ?", user.ID).Delete(&models.PatientProfile{}).Error; err != nil {
					return err
				}
				user.PatientProfile = nil
			}
			if user.Role == models.RoleDentist {
				if err := tx.Where("user_id = ?", user.ID).Delete(&models.DentistProfile{}).Error; err != nil {
					return err
				}
				user.DentistProfile = nil
			}
			user.Role = *input.Role
			switch user.Role {
			case models.RolePatient:
				if err := tx.Create(&models.PatientProfile{UserID: user.ID}).Error; err != nil {
					return err
				}
			case models.RoleDentist:
				if err := tx.Create(&models.DentistProfile{UserID: user.ID}).Error; err != nil {
					return err
				}
			}
		}

		if err := applyProfileUpdates(tx, &user, input); err != nil {
			return err
		}

		// Omit associations: profile rows were written above and the loaded
		// ones on the struct may be stale.
		return tx.Omit(clause.Associations).Save(&user).Error
	})
	if err != nil {
		var verr *profileFieldError
		if errors.As(err, &verr) {
			utils.APIResponse(c, http.StatusBadRequest, false, verr.Error(), gin.H{
				"invalid_fields": verr.Fields,
			})
			return
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.APIResponse(c, http.StatusConflict, false, "Phone number or insurance number already exists", gin.H{
				"field": "phone_number",
			})
			return
		}
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to update user", nil)
		return
	}

	config.DB.Preload("PatientProfile").Preload("DentistProfile").First(&user, user.ID)
	utils.APIResponse(c, http.StatusOK, true, "User updated successfully", user)
}

// DeleteUser soft-deactivates a user; records stay for audit continuity.
func DeleteUser(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "User not found", nil)
		return
	}

	if err := config.DB.Model(&user).Update("is_active", false).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to deactivate user", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "User deactivated successfully", nil)
}

// optionalString maps "" to NULL so optional unique columns don't collide.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type profileFieldError struct {
	Fields []string
}

func (e *profileFieldError) Error() string {
	return "fields not allowed for this role"
}

func misplacedProfileFields(input models.CreateUserInput) []string {
	var fields []string
	if input.Role != models.RolePatient {
		if input.Age != 0 {
			fields = append(fields, "age")
		}
		if input.InsuranceNumber != "" {
			fields = append(fields, "insurance_number")
		}
		if input.InsuranceProvider != "" {
			fields = append(fields, "insurance_provider")
		}
		if input.MedicalNotes != "" {
			fields = append(fields, "medical_notes")
		}
	}
	if input.Role != models.RoleDentist && input.Specialization != "" {
		fields = append(fields, "specialization")
	}
	return fields
}

func applyProfileUpdates(tx *gorm.DB, user *models.User, input models.UpdateUserInput) error {
	patientFields := input.Age != nil || input.InsuranceNumber != nil ||
		input.InsuranceProvider != nil || input.MedicalNotes != nil

	if patientFields {
		if user.Role != models.RolePatient {
			return &profileFieldError{Fields: []string{"age", "insurance_number", "insurance_provider", "medical_notes"}}
		}
		var profile models.PatientProfile
		if err := tx.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
			return err
		}
		if input.Age != nil {
			profile.Age = *input.Age
		}
		if input.InsuranceNumber != nil {
			profile.InsuranceNumber = optionalString(*input.InsuranceNumber)
		}
		if input.InsuranceProvider != nil {
			profile.InsuranceProvider = *input.InsuranceProvider
		}
		if input.MedicalNotes != nil {
			profile.MedicalNotes = *input.MedicalNotes
		}
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
	}

	if input.Specialization != nil {
		if user.Role != models.RoleDentist {
			return &profileFieldError{Fields: []string{"specialization"}}
		}
		if err := tx.Model(&models.DentistProfile{}).
			Where("user_id = ?", user.ID).
			Update("specialization", *input.Specialization).Error; err != nil {
			return err
		}
	}

	return nil
}
