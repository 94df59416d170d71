package handlers

import (
	"net/http"
	"time"

	"dentalclinic-backend/internal/config"
	"dentalclinic-backend/internal/middleware"
	"dentalclinic-backend/internal/models"
	"dentalclinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Login authenticates by phone number + password and returns a JWT.
func Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Phone number and password are required", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("phone_number = ?", utils.NormalizePhone(input.PhoneNumber)).First(&user).Error; err != nil {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Invalid credentials", nil)
		return
	}

	if !user.IsActive {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Account is deactivated", nil)
		return
	}

	if !utils.CheckPassword(input.Password, user.PasswordHash) {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Invalid credentials", nil)
		return
	}

	now := time.Now()
	updates := map[string]interface{}{"last_login": now}
	if input.FCMToken != "" {
		updates["fcm_token"] = input.FCMToken
	}
	config.DB.Model(&user).Updates(updates)
	user.LastLogin = &now

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to generate token", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":           user.ID,
			"name":         user.Name,
			"phone_number": user.PhoneNumber,
			"role":         user.Role,
			"is_active":    user.IsActive,
			"last_login":   user.LastLogin,
		},
	})
}

// Logout exists for symmetry; with JWTs the client just drops the token.
func Logout(c *gin.Context) {
	utils.APIResponse(c, http.StatusOK, true, "Logout successful. Please remove token from client storage.", nil)
}

// Me returns the authenticated caller's profile.
func Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Authentication required", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Current user", gin.H{
		"id":           user.ID,
		"name":         user.Name,
		"phone_number": user.PhoneNumber,
		"role":         user.Role,
		"is_active":    user.IsActive,
		"last_login":   user.LastLogin,
		"created_at":   user.CreatedAt,
	})
}

// ChangePassword verifies the current password before setting a new one.
func ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Authentication required", nil)
		return
	}

	var input models.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Current and new password are required", err.Error())
		return
	}

	if !utils.CheckPassword(input.CurrentPassword, user.PasswordHash) {
		utils.APIResponse(c, http.StatusBadRequest, false, "Current password is incorrect", nil)
		return
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to process password", nil)
		return
	}

	if err := config.DB.Model(user).Update("password_hash", hash).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to change password", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Password changed successfully", nil)
}
