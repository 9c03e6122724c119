package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtbook/internal/directory"
	"courtbook/internal/messaging"
	"courtbook/internal/middleware"
	"courtbook/internal/models"
	"courtbook/internal/tokenstore"
	"courtbook/internal/upstream"
)

// mockBackend mimics the TennisBook API with programmable responses and
// per-endpoint call counters.
type mockBackend struct {
	sessions      map[int64]models.Session
	queryCalls    int32
	bookingCalls  int32
	bookingStatus int
	bookingBody   map[string]any
	paymentBody   map[string]any
}

func (m *mockBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/sessions/get-session-by-type", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.queryCalls, 1)
		var req struct {
			SessionType string `json:"sessionType"`
			SessionDate string `json:"sessionDate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		out := []models.Session{}
		for _, s := range m.sessions {
			if s.Date == req.SessionDate && (req.SessionType == "" || s.Type == req.SessionType) {
				out = append(out, s)
			}
		}
		json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
		var id int64
		fmt.Sscanf(r.URL.Path, "/sessions/%d", &id)
		s, ok := m.sessions[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "Session not found"})
			return
		}
		json.NewEncoder(w).Encode(s)
	})

	mux.HandleFunc("/bookings/new-bookings", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.bookingCalls, 1)
		status := m.bookingStatus
		if status == 0 {
			status = http.StatusCreated
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(m.bookingBody)
	})

	mux.HandleFunc("/bookings/", func(w http.ResponseWriter, r *http.Request) {
		var id int64
		fmt.Sscanf(r.URL.Path, "/bookings/%d", &id)
		if r.Method == http.MethodDelete {
			json.NewEncoder(w).Encode(map[string]string{"message": "Booking cancelled"})
			return
		}
		s := m.sessions[42]
		json.NewEncoder(w).Encode(models.Booking{ID: id, SessionID: s.ID, Session: &s, Status: models.BookingConfirmed})
	})

	mux.HandleFunc("/payments/new", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(m.paymentBody)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testEnv struct {
	router  *gin.Engine
	backend *mockBackend
	tokens  tokenstore.Store
	dir     *directory.Directory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := &mockBackend{
		sessions: map[int64]models.Session{
			42: {
				ID:              42,
				Date:            "2026-09-01",
				Type:            models.SessionPublic,
				MaxParticipants: 6,
				PricePerPerson:  1500,
			},
		},
		bookingBody: map[string]any{"bookingId": 7, "status": "pending", "totalPrice": 3000},
		paymentBody: map[string]any{"redirectUrl": "https://pay.example.com/p/1"},
	}
	srv := backend.server(t)

	tokens := tokenstore.NewMemory()
	require.NoError(t, tokens.Save(context.Background(), "jwt-abc"))

	client := upstream.NewClient(upstream.Config{BaseURL: srv.URL}, tokens)
	dir := directory.New(client, directory.Config{FreshFor: time.Minute})
	t.Cleanup(dir.Close)

	nats, err := messaging.NewNATSClient(messaging.Config{})
	require.NoError(t, err)

	h := NewHandlers(client, dir, tokens, nats)

	router := gin.New()
	auth := router.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)

	api := router.Group("/api")
	api.Use(middleware.RequireToken(tokens))
	api.GET("/sessions", h.ListSessions)
	api.GET("/sessions/:id", h.GetSession)
	api.POST("/bookings", h.CreateBooking)
	api.DELETE("/bookings/:id", h.CancelBooking)
	api.POST("/payments", h.CreatePayment)

	return &testEnv{router: router, backend: backend, tokens: tokens, dir: dir}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRequireTokenRejectsWhenNotLoggedIn(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.tokens.Clear(context.Background()))

	w := env.do(http.MethodGet, "/api/sessions?date=2026-09-01", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListSessionsValidatesQuery(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/sessions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "date is mandatory")

	w = env.do(http.MethodGet, "/api/sessions?date=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/sessions?date=2026-09-01&type=VIP", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSessionsUsesDirectoryCache(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/sessions?date=2026-09-01&type=Public", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var sessions []models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(42), sessions[0].ID)

	w = env.do(http.MethodGet, "/api/sessions?date=2026-09-01&type=Public", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, atomic.LoadInt32(&env.backend.queryCalls), "second listing is served from cache")
}

func TestCreateBookingAccepted(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/bookings", models.CreateBookingRequest{SessionID: 42, Participants: 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.CreateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.BookingID)
	assert.Equal(t, int64(3000), resp.TotalPrice)
	assert.Equal(t, int64(3000), resp.PreviewPrice)
	assert.EqualValues(t, 1, atomic.LoadInt32(&env.backend.bookingCalls))
}

func TestCreateBookingLocalValidationSkipsUpstream(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/bookings", models.CreateBookingRequest{SessionID: 42, Participants: 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 0, atomic.LoadInt32(&env.backend.bookingCalls), "a futile intent is never submitted")
}

func TestCreateBookingFullSessionConflicts(t *testing.T) {
	env := newTestEnv(t)
	s := env.backend.sessions[42]
	s.CurrentParticipants = s.MaxParticipants
	env.backend.sessions[42] = s

	w := env.do(http.MethodPost, "/api/bookings", models.CreateBookingRequest{SessionID: 42, Participants: 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.EqualValues(t, 0, atomic.LoadInt32(&env.backend.bookingCalls))
}

func TestCreateBookingBackendConflictKeepsMessage(t *testing.T) {
	env := newTestEnv(t)
	env.backend.bookingStatus = http.StatusConflict
	env.backend.bookingBody = map[string]any{"message": "Session is fully booked"}

	w := env.do(http.MethodPost, "/api/bookings", models.CreateBookingRequest{SessionID: 42, Participants: 2})
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Session is fully booked", resp["error"])
}

func TestCreateBookingInvalidatesSessionListing(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/sessions?date=2026-09-01&type=Public", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, atomic.LoadInt32(&env.backend.queryCalls))

	w = env.do(http.MethodPost, "/api/bookings", models.CreateBookingRequest{SessionID: 42, Participants: 1})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodGet, "/api/sessions?date=2026-09-01&type=Public", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, atomic.LoadInt32(&env.backend.queryCalls), "an accepted booking must refresh the listing")
}

func TestCancelBookingInvalidatesSessionListing(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/sessions?date=2026-09-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, atomic.LoadInt32(&env.backend.queryCalls))

	w = env.do(http.MethodDelete, "/api/bookings/7", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CancelBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Booking cancelled", resp.Message)

	w = env.do(http.MethodGet, "/api/sessions?date=2026-09-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, atomic.LoadInt32(&env.backend.queryCalls))
}

func TestCreatePaymentReturnsRedirect(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/payments", models.InitiatePaymentRequest{BookingID: 7})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.InitiatePaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://pay.example.com/p/1", resp.RedirectURL)
}

func TestCreatePaymentMalformedResponseIsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.backend.paymentBody = map[string]any{"paymentId": 12}

	w := env.do(http.MethodPost, "/api/payments", models.InitiatePaymentRequest{BookingID: 7})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestLogoutClearsToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := env.tokens.Token(context.Background())
	assert.ErrorIs(t, err, tokenstore.ErrNoToken)
}
