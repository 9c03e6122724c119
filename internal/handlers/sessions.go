package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"courtbook/internal/models"
)

// Sessions handlers

// ListSessions - GET /api/sessions?date=YYYY-MM-DD&type=Public|Private
// Получить список сессий через кеш справочника
func (h *Handlers) ListSessions(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	sessionType := c.Query("type")
	switch sessionType {
	case "", models.SessionPublic, models.SessionPrivate:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be Public or Private"})
		return
	}

	result, err := h.dir.Get(c.Request.Context(), date, sessionType)
	if err != nil && !result.Stale {
		writeBackendError(c, err, "Failed to list sessions")
		return
	}

	if result.Stale {
		// Refresh failed but an earlier result for this exact key exists:
		// serve it, marked, rather than nothing.
		c.Header("X-Stale", "true")
	}

	c.JSON(http.StatusOK, result.Sessions)
}

// GetSession - GET /api/sessions/:id
// Получить одну сессию
func (h *Handlers) GetSession(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := h.backend.SessionByID(c.Request.Context(), id)
	if err != nil {
		writeBackendError(c, err, "Failed to get session")
		return
	}

	c.JSON(http.StatusOK, session)
}
