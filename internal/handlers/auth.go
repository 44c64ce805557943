package handlers

import (
	"errors"
	"net/http"

	"github.com/mrolandas/burburiuok/internal/metrics"
	"github.com/mrolandas/burburiuok/internal/middleware"
	"github.com/mrolandas/burburiuok/internal/services"
	"github.com/mrolandas/burburiuok/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	profiles  *services.ProfileService
	responder *middleware.MigrationResponder
	recorder  metrics.Recorder
	baseURL   string
}

func NewAuthHandler(
	profiles *services.ProfileService,
	responder *middleware.MigrationResponder,
	recorder metrics.Recorder,
	baseURL string,
) *AuthHandler {
	return &AuthHandler{
		profiles:  profiles,
		responder: responder,
		recorder:  recorder,
		baseURL:   baseURL,
	}
}

type loginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Redirect string `form:"redirect" json:"redirect"`
}

// Login authenticates and establishes the session cookie. When a safe
// redirect target was carried through the login flow, the response is a 302
// back to it; otherwise the profile is returned as JSON.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	profile, err := h.profiles.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.recorder.RecordLogin(false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if h.responder.Handled(c, err) {
			return
		}
		h.recorder.RecordLogin(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserID, profile.ID)
	session.Set(middleware.SessionEmail, profile.Email)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}

	h.recorder.RecordLogin(true)

	if req.Redirect != "" && util.IsRedirectSafe(req.Redirect, h.baseURL) {
		c.Redirect(http.StatusFound, req.Redirect)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          profile.ID,
		"email":       profile.Email,
		"displayName": profile.DisplayName,
	})
}

// Logout clears the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1, Path: "/"})
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear session"})
		return
	}

	h.recorder.RecordLogout()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type registerRequest struct {
	Email       string `form:"email" json:"email" binding:"required,email"`
	Password    string `form:"password" json:"password" binding:"required,min=8"`
	DisplayName string `form:"display_name" json:"displayName"`
	InviteCode  string `form:"invite_code" json:"inviteCode"`
}

// Register creates a profile. An invite code, when present, grants the
// invited role; without one the profile has no role and cannot reach the
// admin surface.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration request"})
		return
	}

	profile, err := h.profiles.Register(
		c.Request.Context(), req.Email, req.Password, req.DisplayName, req.InviteCode,
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
		case errors.Is(err, services.ErrInviteNotFound),
			errors.Is(err, services.ErrInviteExpired),
			errors.Is(err, services.ErrInviteUsed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			if h.responder.Handled(c, err) {
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    profile.ID,
		"email": profile.Email,
	})
}
