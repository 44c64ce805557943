package handlers

import (
	"errors"
	"net/http"

	"github.com/mrolandas/burburiuok/internal/middleware"
	"github.com/mrolandas/burburiuok/internal/services"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the open browsing and search surface. Only published
// concepts are visible here.
type PublicHandler struct {
	concepts  *services.ConceptService
	search    *services.SearchService
	responder *middleware.MigrationResponder
}

func NewPublicHandler(
	concepts *services.ConceptService,
	search *services.SearchService,
	responder *middleware.MigrationResponder,
) *PublicHandler {
	return &PublicHandler{
		concepts:  concepts,
		search:    search,
		responder: responder,
	}
}

// ListConcepts returns the published concepts in display order.
func (h *PublicHandler) ListConcepts(c *gin.Context) {
	concepts, err := h.concepts.PublishedConcepts(c.Request.Context())
	if err != nil {
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list concepts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"concepts": concepts})
}

// ConceptBySlug returns one published concept.
func (h *PublicHandler) ConceptBySlug(c *gin.Context) {
	concept, err := h.concepts.ConceptBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrConceptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "concept not found"})
			return
		}
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load concept"})
		return
	}
	c.JSON(http.StatusOK, concept)
}

// Search matches published concepts by title and summary.
func (h *PublicHandler) Search(c *gin.Context) {
	results, err := h.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, services.ErrQueryTooShort) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "search query must be at least 3 characters",
			})
			return
		}
		if h.responder.Handled(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
