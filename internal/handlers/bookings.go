package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"courtbook/internal/booking"
	"courtbook/internal/models"
)

// Bookings handlers

// CreateBooking - POST /api/bookings
// Провести бронирование через negotiation workflow
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Fresh read of the session so the preview is computed against the
	// latest availability the backend will admit to.
	session, err := h.backend.SessionByID(c.Request.Context(), req.SessionID)
	if err != nil {
		writeBackendError(c, err, "Failed to get session")
		return
	}

	neg := booking.NewNegotiation(h.backend, h.dir, h.nats)
	if err := neg.Open(*session); err != nil {
		if !writeWorkflowError(c, err) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		}
		return
	}

	if err := neg.SetParticipants(req.Participants); err != nil {
		// Local validation failed: nothing was sent upstream.
		if !writeWorkflowError(c, err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	outcome, err := neg.Submit(c.Request.Context())
	if err != nil {
		if writeWorkflowError(c, err) {
			return
		}
		writeBackendError(c, err, "Failed to create booking")
		return
	}

	total := outcome.ConfirmedTotal
	if total == 0 {
		total = outcome.PreviewTotal
	}

	c.JSON(http.StatusCreated, models.CreateBookingResponse{
		BookingID:    outcome.BookingID,
		Status:       outcome.Status,
		TotalPrice:   total,
		PreviewPrice: outcome.PreviewTotal,
	})
}

// ListMyBookings - GET /api/bookings
// Получить список бронирований пользователя
func (h *Handlers) ListMyBookings(c *gin.Context) {
	bookings, err := h.backend.MyBookings(c.Request.Context())
	if err != nil {
		writeBackendError(c, err, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking - GET /api/bookings/:id
// Получить одно бронирование
func (h *Handlers) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.backend.BookingByID(c.Request.Context(), id)
	if err != nil {
		writeBackendError(c, err, "Failed to get booking")
		return
	}

	c.JSON(http.StatusOK, b)
}

// CancelBooking - DELETE /api/bookings/:id
// Отменить бронирование
func (h *Handlers) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	// Read the booking first: its embedded session carries the directory
	// key that has to be invalidated after the cancel.
	b, err := h.backend.BookingByID(c.Request.Context(), id)
	if err != nil {
		writeBackendError(c, err, "Failed to get booking")
		return
	}

	message, err := h.backend.CancelBooking(c.Request.Context(), id)
	if err != nil {
		writeBackendError(c, err, "Failed to cancel booking")
		return
	}

	// Whether the backend restores the freed slots is unconfirmed, so no
	// local count adjustment: just force the next lookup to refetch.
	if b.Session != nil {
		h.dir.Invalidate(b.Session.Date, b.Session.Type)
		h.dir.Invalidate(b.Session.Date, "")

		event := models.BookingCancelledEvent{
			BookingID:   id,
			SessionID:   b.Session.ID,
			SessionDate: b.Session.Date,
			SessionType: b.Session.Type,
			Reason:      "User cancellation",
			Timestamp:   time.Now(),
		}
		if err := h.nats.Publish(models.EventBookingCancelled, event); err != nil {
			slog.Error("Failed to publish booking cancelled event",
				"error", err,
				"booking_id", id,
				"event_type", models.EventBookingCancelled)
		}
	}

	c.JSON(http.StatusOK, models.CancelBookingResponse{Message: message})
}
