package api

import (
	"net/http"

	"github.com/openstax/rope/internal/auth"
	"github.com/openstax/rope/internal/config"
	"github.com/openstax/rope/internal/course"
	"github.com/openstax/rope/internal/db"
	"github.com/openstax/rope/internal/logger"
	"github.com/openstax/rope/internal/moodle"
	"github.com/openstax/rope/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	repo         db.Repository
	buildService *course.BuildService
	moodle       moodle.Client
	sessions     session.Store
	verifier     auth.TokenVerifier
	cfg          *config.Config
	log          zerolog.Logger
}

func NewHandler(
	repo db.Repository,
	buildService *course.BuildService,
	moodleClient moodle.Client,
	sessions session.Store,
	verifier auth.TokenVerifier,
	cfg *config.Config,
) *Handler {
	return &Handler{
		repo:         repo,
		buildService: buildService,
		moodle:       moodleClient,
		sessions:     sessions,
		verifier:     verifier,
		cfg:          cfg,
		log:          logger.Get(),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}
