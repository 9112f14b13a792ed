package api

import (
	"net/http"
	"strconv"

	"github.com/openstax/rope/internal/model"

	"github.com/gin-gonic/gin"
)

// GetDistricts lists school districts. Admins see all; everyone else sees
// only active districts. Results are sorted by name.
func (h *Handler) GetDistricts(c *gin.Context) {
	user := CurrentUser(c)
	activeOnly := user == nil || !user.IsAdmin

	districts, err := h.repo.GetDistricts(c.Request.Context(), activeOnly)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list districts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, districts)
}

func (h *Handler) CreateDistrict(c *gin.Context) {
	var req model.DistrictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	district, err := h.repo.CreateDistrict(c.Request.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to create district")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, district)
}

func (h *Handler) UpdateDistrict(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid district ID"})
		return
	}

	var req model.DistrictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	district, err := h.repo.UpdateDistrict(c.Request.Context(), model.SchoolDistrict{
		ID:     id,
		Name:   req.Name,
		Active: req.Active,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("district_id", id).Msg("Failed to update district")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, district)
}

func (h *Handler) GetMoodleSettings(c *gin.Context) {
	settings, err := h.repo.GetMoodleSettings(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list Moodle settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) CreateMoodleSetting(c *gin.Context) {
	var req model.SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	setting, err := h.repo.CreateMoodleSetting(c.Request.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to create Moodle setting")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (h *Handler) UpdateMoodleSetting(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid setting ID"})
		return
	}

	var req model.SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	setting, err := h.repo.UpdateMoodleSetting(c.Request.Context(), model.MoodleSetting{
		ID:    id,
		Name:  req.Name,
		Value: req.Value,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("setting_id", id).Msg("Failed to update Moodle setting")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, setting)
}
