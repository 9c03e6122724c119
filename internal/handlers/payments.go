package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"courtbook/internal/models"
	"courtbook/internal/upstream"
)

// Payments handlers

// CreatePayment - POST /api/payments
// Инициировать платеж и вернуть redirect URL провайдера
func (h *Handlers) CreatePayment(c *gin.Context) {
	var req models.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redirectURL, err := h.backend.CreatePayment(c.Request.Context(), req.BookingID)
	if err != nil {
		if errors.Is(err, upstream.ErrMalformedResponse) {
			slog.Error("Payment response did not match the contract", "error", err, "booking_id", req.BookingID)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider returned an unexpected response"})
			return
		}
		writeBackendError(c, err, "Failed to initiate payment")
		return
	}

	c.JSON(http.StatusOK, models.InitiatePaymentResponse{RedirectURL: redirectURL})
}
