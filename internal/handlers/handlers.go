package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"courtbook/internal/booking"
	"courtbook/internal/directory"
	"courtbook/internal/messaging"
	"courtbook/internal/models"
	"courtbook/internal/tokenstore"
	"courtbook/internal/upstream"
)

type Handlers struct {
	backend *upstream.Client
	dir     *directory.Directory
	tokens  tokenstore.Store
	nats    *messaging.NATSClient
}

func NewHandlers(backend *upstream.Client, dir *directory.Directory, tokens tokenstore.Store, nats *messaging.NATSClient) *Handlers {
	return &Handlers{
		backend: backend,
		dir:     dir,
		tokens:  tokens,
		nats:    nats,
	}
}

// writeBackendError maps an upstream failure onto the gateway response:
// 401 passes through so the caller re-enters login, other 4xx keep the
// backend's status and message, everything else is a 502.
func writeBackendError(c *gin.Context, err error, fallback string) {
	if upstream.IsUnauthenticated(err) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please log in again"})
		return
	}

	if be, ok := upstream.AsError(err); ok && be.Status >= 400 && be.Status < 500 {
		c.JSON(be.Status, gin.H{"error": be.Message})
		return
	}

	slog.Error(fallback, "error", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": fallback})
}

// writeWorkflowError maps the negotiation's local validation errors, which
// never reached the network. Returns false when err is not one of them.
func writeWorkflowError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, booking.ErrSessionFull):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrPartyTooSmall),
		errors.Is(err, booking.ErrPartyTooLarge),
		errors.Is(err, booking.ErrNoSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrSubmitInFlight),
		errors.Is(err, booking.ErrAlreadyAccepted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		return false
	}
	return true
}

// Auth handlers

// Login - POST /auth/login
// Обменивает учетные данные на токен и сохраняет его
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.backend.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeBackendError(c, err, "Login failed")
		return
	}

	if err := h.tokens.Save(c.Request.Context(), token); err != nil {
		slog.Error("Failed to persist token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist token"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token})
}

// Register - POST /auth/register
// Создает новый аккаунт
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.backend.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeBackendError(c, err, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, models.RegisterResponse{User: *user})
}

// Logout - POST /auth/logout
// Очищает сохраненный токен
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.tokens.Clear(c.Request.Context()); err != nil {
		slog.Error("Failed to clear token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
