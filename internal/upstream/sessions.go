package upstream

import (
	"context"
	"fmt"
	"net/http"

	"courtbook/internal/models"
)

type sessionsByTypeRequest struct {
	SessionType string `json:"sessionType"`
	SessionDate string `json:"sessionDate"`
}

// SessionsByType lists the bookable sessions for a (type, date) pair.
// The compound POST form is the authoritative query shape; the date-only
// GET variant of the backend is intentionally not used. An empty list is
// a valid result, not an error.
func (c *Client) SessionsByType(ctx context.Context, sessionType, date string) ([]models.Session, error) {
	var sessions []models.Session
	err := c.do(ctx, "sessions.by_type", http.MethodPost, "/sessions/get-session-by-type",
		sessionsByTypeRequest{SessionType: sessionType, SessionDate: date}, &sessions, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// SessionByID fetches a single session.
func (c *Client) SessionByID(ctx context.Context, id int64) (*models.Session, error) {
	var session models.Session
	path := fmt.Sprintf("/sessions/%d", id)
	if err := c.do(ctx, "sessions.by_id", http.MethodGet, path, nil, &session, http.StatusOK); err != nil {
		return nil, err
	}
	return &session, nil
}
