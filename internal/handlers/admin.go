package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mrolandas/burburiuok/internal/middleware"
	"github.com/mrolandas/burburiuok/internal/services"
	"github.com/mrolandas/burburiuok/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the management surface behind the admin guard.
type AdminHandler struct {
	concepts  *services.ConceptService
	invites   *services.InviteService
	store     *store.Store
	responder *middleware.MigrationResponder
}

func NewAdminHandler(
	concepts *services.ConceptService,
	invites *services.InviteService,
	s *store.Store,
	responder *middleware.MigrationResponder,
) *AdminHandler {
	return &AdminHandler{
		concepts:  concepts,
		invites:   invites,
		store:     s,
		responder: responder,
	}
}

// currentUserID returns the profile ID from the session. The guard has
// already run, so a missing value means a programming error upstream.
func currentUserID(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(middleware.SessionUserID).(string)
	return id
}

func paginationFromQuery(c *gin.Context) store.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return store.NewPaginationParams(page, pageSize, c.Query("q"))
}

type conceptRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
}

func (r conceptRequest) toInput() services.ConceptInput {
	return services.ConceptInput{
		Slug:      r.Slug,
		Title:     r.Title,
		Summary:   r.Summary,
		Body:      r.Body,
		Published: r.Published,
	}
}

// ListConcepts returns every concept, drafts included.
func (h *AdminHandler) ListConcepts(c *gin.Context) {
	concepts, err := h.concepts.AllConcepts(c.Request.Context())
	if err != nil {
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list concepts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"concepts": concepts})
}

func (h *AdminHandler) CreateConcept(c *gin.Context) {
	var req conceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug and title are required"})
		return
	}

	concept, err := h.concepts.Create(c.Request.Context(), req.toInput(), currentUserID(c))
	if err != nil {
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create concept"})
		return
	}
	c.JSON(http.StatusCreated, concept)
}

func (h *AdminHandler) UpdateConcept(c *gin.Context) {
	var req conceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug and title are required"})
		return
	}

	concept, err := h.concepts.Update(c.Request.Context(), c.Param("id"), req.toInput(), currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrConceptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "concept not found"})
			return
		}
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update concept"})
		return
	}
	c.JSON(http.StatusOK, concept)
}

func (h *AdminHandler) DeleteConcept(c *gin.Context) {
	err := h.concepts.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrConceptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "concept not found"})
			return
		}
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete concept"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// ReorderConcepts rewrites the display order to match the submitted IDs.
func (h *AdminHandler) ReorderConcepts(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids are required"})
		return
	}

	if err := h.concepts.Reorder(c.Request.Context(), req.IDs); err != nil {
		if errors.Is(err, services.ErrConceptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "concept not found"})
			return
		}
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reorder concepts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ConceptVersions returns a concept's edit history, newest first.
func (h *AdminHandler) ConceptVersions(c *gin.Context) {
	versions, err := h.concepts.Versions(c.Request.Context(), c.Param("id"))
	if err != nil {
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list versions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

type inviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AdminHandler) CreateInvite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email is required"})
		return
	}

	invite, err := h.invites.Create(c.Request.Context(), req.Email, currentUserID(c))
	if err != nil {
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invite"})
		return
	}
	c.JSON(http.StatusCreated, invite)
}

func (h *AdminHandler) ListInvites(c *gin.Context) {
	invites, pagination, err := h.invites.List(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list invites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invites": invites, "pagination": pagination})
}

// ListAccessEvents returns the guard decision log, newest first.
func (h *AdminHandler) ListAccessEvents(c *gin.Context) {
	events, pagination, err := h.store.ListAccessEvents(paginationFromQuery(c))
	if err != nil {
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list access events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "pagination": pagination})
}
