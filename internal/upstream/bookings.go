package upstream

import (
	"context"
	"fmt"
	"net/http"

	"courtbook/internal/models"
)

type createBookingRequest struct {
	SessionID    int64 `json:"sessionId"`
	Participants int   `json:"participants"`
}

// CreateBookingResult is the backend's authoritative answer to a booking
// intent. TotalPrice is the backend's own computation; the caller compares
// it against its local preview.
type CreateBookingResult struct {
	BookingID  int64  `json:"bookingId"`
	Status     string `json:"status"`
	TotalPrice int64  `json:"totalPrice"`
}

// CreateBooking submits a booking intent. The backend decides final
// availability; a conflict (session filled in a race) comes back as a
// 4xx *Error.
func (c *Client) CreateBooking(ctx context.Context, sessionID int64, participants int) (*CreateBookingResult, error) {
	var result CreateBookingResult
	err := c.do(ctx, "bookings.create", http.MethodPost, "/bookings/new-bookings",
		createBookingRequest{SessionID: sessionID, Participants: participants}, &result, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	if result.BookingID == 0 {
		return nil, ErrMalformedResponse
	}
	return &result, nil
}

// MyBookings lists the authenticated user's bookings.
func (c *Client) MyBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	err := c.do(ctx, "bookings.mine", http.MethodPost, "/bookings/my-bookings", nil, &bookings, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

// BookingByID fetches a single booking with its session embedded.
func (c *Client) BookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	path := fmt.Sprintf("/bookings/%d", id)
	if err := c.do(ctx, "bookings.by_id", http.MethodGet, path, nil, &booking, http.StatusOK); err != nil {
		return nil, err
	}
	return &booking, nil
}

type cancelBookingResponse struct {
	Message string `json:"message"`
}

// CancelBooking cancels a booking. Whether the backend restores the
// session's slots is its own business; callers invalidate the directory
// key instead of adjusting counts locally.
func (c *Client) CancelBooking(ctx context.Context, id int64) (string, error) {
	var resp cancelBookingResponse
	path := fmt.Sprintf("/bookings/%d", id)
	if err := c.do(ctx, "bookings.cancel", http.MethodDelete, path, nil, &resp, http.StatusOK); err != nil {
		return "", err
	}
	return resp.Message, nil
}
