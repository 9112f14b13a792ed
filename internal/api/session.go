package api

import (
	"net/http"

	"github.com/openstax/rope/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GoogleLogin verifies the Google ID token, checks the email against the
// user table, and issues a session cookie.
func (h *Handler) GoogleLogin(c *gin.Context) {
	var loginData model.GoogleLoginData
	if err := c.ShouldBindJSON(&loginData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	email, err := h.verifier.VerifyIDToken(c.Request.Context(), loginData.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized user"})
		return
	}

	sessionUser := model.SessionUser{
		Email:     user.Email,
		IsManager: user.IsManager,
		IsAdmin:   user.IsAdmin,
	}

	sessionID := uuid.NewString()
	if err := h.sessions.Set(c.Request.Context(), sessionID, sessionUser); err != nil {
		h.log.Error().Err(err).Msg("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	maxAge := int(h.cfg.Session.MaxAge.Seconds())
	c.SetCookie(h.cfg.Session.CookieName, sessionID, maxAge, "/", "", h.cfg.Session.Secure, true)
	c.JSON(http.StatusOK, sessionUser)
}

func (h *Handler) DeleteSession(c *gin.Context) {
	sessionID, err := c.Cookie(h.cfg.Session.CookieName)
	if err == nil && sessionID != "" {
		if err := h.sessions.Delete(c.Request.Context(), sessionID); err != nil {
			h.log.Error().Err(err).Msg("Failed to destroy session")
		}
	}

	c.SetCookie(h.cfg.Session.CookieName, "", -1, "/", "", h.cfg.Session.Secure, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentUser(c))
}
