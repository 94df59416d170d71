package handlers

import (
	"net/http"

	"dentalclinic-backend/internal/config"
	"dentalclinic-backend/internal/models"
	"dentalclinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GetTreatments lists the catalog, newest first.
func GetTreatments(c *gin.Context) {
	var treatments []models.Treatment
	if err := config.DB.Order("created_at desc").Find(&treatments).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to fetch treatments", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Treatments fetched successfully", treatments)
}

func GetTreatment(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	var treatment models.Treatment
	if err := config.DB.First(&treatment, id).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Treatment not found", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Treatment fetched successfully", treatment)
}

func CreateTreatment(c *gin.Context) {
	var input models.CreateTreatmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Invalid treatment input", err.Error())
		return
	}

	treatment := models.Treatment{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
	}
	if err := config.DB.Create(&treatment).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to create treatment", nil)
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Treatment created successfully", treatment)
}

// UpdateTreatment edits a catalog entry. Past appointments keep their
// locked_price, so price edits only affect future bookings.
func UpdateTreatment(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	var input models.UpdateTreatmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Invalid treatment input", err.Error())
		return
	}

	var treatment models.Treatment
	if err := config.DB.First(&treatment, id).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Treatment not found", nil)
		return
	}

	if input.Name != nil {
		treatment.Name = *input.Name
	}
	if input.Description != nil {
		treatment.Description = *input.Description
	}
	if input.Price != nil {
		treatment.Price = *input.Price
	}

	if err := config.DB.Save(&treatment).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to update treatment", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Treatment updated successfully", treatment)
}

func DeleteTreatment(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	var treatment models.Treatment
	if err := config.DB.First(&treatment, id).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Treatment not found", nil)
		return
	}

	if err := config.DB.Delete(&treatment).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to delete treatment", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Treatment deleted successfully", nil)
}
