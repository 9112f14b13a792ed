package api

import (
	"errors"
	"net/http"

	"github.com/openstax/rope/internal/model"
	"github.com/openstax/rope/internal/report"
	roperrors "github.com/openstax/rope/pkg/errors"

	"github.com/gin-gonic/gin"
)

// CreateCourseBuild accepts a build request and returns the created record
// immediately; the actual Moodle course is built asynchronously.
func (h *Handler) CreateCourseBuild(c *gin.Context) {
	var req model.CourseBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user := CurrentUser(c)
	response, err := h.buildService.RequestBuild(c.Request.Context(), req, user.Email)
	if err != nil {
		h.log.Error().Err(err).Str("school_district", req.SchoolDistrict).Msg("Failed to request course build")
		if errors.Is(err, roperrors.ErrDistrictNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "School district not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetMoodleUser looks up a Moodle account by email. A missing account is a
// 200 with a null body, matching what the frontend expects.
func (h *Handler) GetMoodleUser(c *gin.Context) {
	email := c.Query("email")

	user, err := h.moodle.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		h.log.Error().Err(err).Str("email", email).Msg("Failed to look up Moodle user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, model.MoodleUser{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	})
}

// ExportCourseBuilds streams all builds as an xlsx workbook.
func (h *Handler) ExportCourseBuilds(c *gin.Context) {
	builds, err := h.repo.GetCourseBuilds(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list course builds")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	districts, err := h.repo.GetDistricts(c.Request.Context(), false)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list districts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	districtNames := make(map[int64]string, len(districts))
	for _, district := range districts {
		districtNames[district.ID] = district.Name
	}

	buf, err := report.WriteCourseBuilds(builds, districtNames)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to render course build report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="course_builds.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
