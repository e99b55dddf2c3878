package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/event-service/internal/api/http"
	"github.com/spec-kit/event-service/internal/api/http/handlers"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/observability"
	"github.com/spec-kit/event-service/internal/repository/repofake"
	"github.com/spec-kit/event-service/internal/service"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type server struct {
	app   *fiber.App
	store *repofake.Store
}

type response struct {
	status  int
	body    map[string]any
	cookies []*nethttp.Cookie
}

func newServer(t *testing.T, revokeOnLogout bool) *server {
	t.Helper()
	logger := zap.NewNop()
	store := repofake.NewStore()
	metrics := observability.NewMetrics()

	tokens, err := auth.NewTokenService("router-secret")
	require.NoError(t, err)

	authDeps := service.AuthDependencies{UserRepo: store.Users(), Tokens: tokens, Logger: logger}
	guardOpts := []auth.GuardOption{auth.WithLogger(logger)}
	if revokeOnLogout {
		authDeps.Revocations = store.Revocations()
		guardOpts = append(guardOpts, auth.WithRevocations(store.Revocations()))
	}
	guard := auth.NewGuard(tokens, store.Events(), guardOpts...)

	dispatcher := events.NewInMemoryDispatcher()
	authService := service.NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost, SessionTTLHours: 1}, authDeps)
	eventService := service.NewEventService(service.EventDependencies{EventRepo: store.Events(), Dispatcher: dispatcher, Logger: logger})
	participantService := service.NewParticipantService(service.ParticipantDependencies{
		ParticipantRepo: store.Participants(),
		EventService:    eventService,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})

	app := fiber.New(fiber.Config{ErrorHandler: httptransport.ErrorHandler(logger)})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{AllowedOrigins: "http://localhost:3000"})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler("event-service", "test", stubPinger{}, stubPinger{err: errors.New("redis down")}, metrics),
		Users:        handlers.NewUsersHandler(authService, guard, false),
		Events:       handlers.NewEventsHandler(eventService),
		Participants: handlers.NewParticipantsHandler(participantService),
		Guard:        guard,
	})
	return &server{app: app, store: store}
}

func (s *server) do(t *testing.T, method, path string, body any, token string) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{status: resp.StatusCode, cookies: resp.Cookies()}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func (r response) data() map[string]any {
	data, _ := r.body["data"].(map[string]any)
	return data
}

func (r response) list() []any {
	list, _ := r.body["data"].([]any)
	return list
}

func (r response) errorMessage() string {
	e, _ := r.body["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

// signup registers name and returns its id and token.
func (s *server) signup(t *testing.T, name string) (int64, string) {
	t.Helper()
	resp := s.do(t, nethttp.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": name + "@example.com", "password": "pw-" + name,
	}, "")
	require.Equal(t, nethttp.StatusCreated, resp.status, resp.body)
	user := resp.data()["user"].(map[string]any)
	token := resp.data()["auth"].(map[string]any)["token"].(string)
	return int64(user["id"].(float64)), token
}

func (s *server) createEvent(t *testing.T, token, name string) int64 {
	t.Helper()
	resp := s.do(t, nethttp.MethodPost, "/api/events", map[string]string{
		"name": name, "date": "2025-06-01T18:30", "location": "Berlin",
	}, token)
	require.Equal(t, nethttp.StatusCreated, resp.status, resp.body)
	return int64(resp.data()["id"].(float64))
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t, false)

	resp := s.do(t, nethttp.MethodPost, "/api/auth/register", map[string]string{"email": "a@x.com"}, "")
	require.Equal(t, nethttp.StatusBadRequest, resp.status)
	require.Equal(t, "all fields are required", resp.errorMessage())

	id, token := s.signup(t, "ada")

	resp = s.do(t, nethttp.MethodPost, "/api/auth/register", map[string]string{
		"name": "ada", "email": "ada@example.com", "password": "other",
	}, "")
	require.Equal(t, nethttp.StatusConflict, resp.status)

	resp = s.do(t, nethttp.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "wrong"}, "")
	require.Equal(t, nethttp.StatusUnauthorized, resp.status)
	require.Equal(t, "invalid credentials", resp.errorMessage())

	resp = s.do(t, nethttp.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "pw-ada"}, "")
	require.Equal(t, nethttp.StatusOK, resp.status)
	var cookie *nethttp.Cookie
	for _, c := range resp.cookies {
		if c.Name == auth.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)

	resp = s.do(t, nethttp.MethodGet, "/api/auth/profile", nil, token)
	require.Equal(t, nethttp.StatusOK, resp.status)
	require.Equal(t, float64(id), resp.data()["id"])
	require.NotContains(t, resp.data(), "password")

	resp = s.do(t, nethttp.MethodGet, "/api/auth/profile", nil, "")
	require.Equal(t, nethttp.StatusUnauthorized, resp.status)
	require.Equal(t, "authentication required", resp.errorMessage())

	resp = s.do(t, nethttp.MethodGet, "/api/auth/profile", nil, "not-a-token")
	require.Equal(t, nethttp.StatusForbidden, resp.status)
	require.Equal(t, "invalid or expired token", resp.errorMessage())
}

func TestLogout(t *testing.T) {
	t.Run("token stays valid by default", func(t *testing.T) {
		s := newServer(t, false)
		_, token := s.signup(t, "ada")

		resp := s.do(t, nethttp.MethodPost, "/api/auth/logout", nil, token)
		require.Equal(t, nethttp.StatusOK, resp.status)

		resp = s.do(t, nethttp.MethodGet, "/api/auth/profile", nil, token)
		require.Equal(t, nethttp.StatusOK, resp.status)
	})

	t.Run("token is revoked when enabled", func(t *testing.T) {
		s := newServer(t, true)
		_, token := s.signup(t, "ada")

		resp := s.do(t, nethttp.MethodPost, "/api/auth/logout", nil, token)
		require.Equal(t, nethttp.StatusOK, resp.status)

		resp = s.do(t, nethttp.MethodGet, "/api/auth/profile", nil, token)
		require.Equal(t, nethttp.StatusForbidden, resp.status)
	})

	t.Run("logout without session succeeds", func(t *testing.T) {
		s := newServer(t, true)
		resp := s.do(t, nethttp.MethodPost, "/api/auth/logout", nil, "garbage")
		require.Equal(t, nethttp.StatusOK, resp.status)
	})
}

func TestEventRoutes(t *testing.T) {
	s := newServer(t, false)
	_, ownerToken := s.signup(t, "owner")
	_, otherToken := s.signup(t, "other")

	resp := s.do(t, nethttp.MethodPost, "/api/events", map[string]string{"name": "Meetup", "date": "2025-06-01"}, "")
	require.Equal(t, nethttp.StatusUnauthorized, resp.status)

	resp = s.do(t, nethttp.MethodPost, "/api/events", map[string]string{"name": "Meetup"}, ownerToken)
	require.Equal(t, nethttp.StatusBadRequest, resp.status)
	require.Equal(t, "name and date are required", resp.errorMessage())

	resp = s.do(t, nethttp.MethodPost, "/api/events", map[string]string{"name": "Meetup", "date": "soon"}, ownerToken)
	require.Equal(t, nethttp.StatusBadRequest, resp.status)

	eventID := s.createEvent(t, ownerToken, "Go Meetup")
	s.createEvent(t, otherToken, "Rust Night")

	resp = s.do(t, nethttp.MethodGet, "/api/events", nil, "")
	require.Equal(t, nethttp.StatusOK, resp.status)
	require.Len(t, resp.list(), 2)

	resp = s.do(t, nethttp.MethodGet, "/api/events?search=go", nil, "")
	require.Len(t, resp.list(), 1)

	resp = s.do(t, nethttp.MethodGet, "/api/events?startDate=2025-01-01&endDate=2025-12-31", nil, "")
	require.Len(t, resp.list(), 2)

	resp = s.do(t, nethttp.MethodGet, "/api/events/user/events", nil, ownerToken)
	require.Equal(t, nethttp.StatusOK, resp.status)
	require.Len(t, resp.list(), 1)

	resp = s.do(t, nethttp.MethodGet, "/api/events/abc", nil, "")
	require.Equal(t, nethttp.StatusBadRequest, resp.status)

	resp = s.do(t, nethttp.MethodGet, "/api/events/999", nil, "")
	require.Equal(t, nethttp.StatusNotFound, resp.status)
	require.Equal(t, "event not found", resp.errorMessage())

	path := "/api/events/" + itoa(eventID)
	notOwned := s.do(t, nethttp.MethodPut, path, map[string]string{"name": "Hijacked"}, otherToken)
	missing := s.do(t, nethttp.MethodPut, "/api/events/999", map[string]string{"name": "Hijacked"}, otherToken)
	require.Equal(t, nethttp.StatusForbidden, notOwned.status)
	require.Equal(t, notOwned.status, missing.status)
	require.Equal(t, notOwned.body, missing.body)
	require.Equal(t, "access denied: you are not the event owner", notOwned.errorMessage())

	resp = s.do(t, nethttp.MethodPut, path, map[string]string{"location": "Paris"}, ownerToken)
	require.Equal(t, nethttp.StatusOK, resp.status)
	require.Equal(t, "Paris", resp.data()["location"])
	require.Equal(t, "Go Meetup", resp.data()["name"])

	resp = s.do(t, nethttp.MethodDelete, path, nil, otherToken)
	require.Equal(t, nethttp.StatusForbidden, resp.status)

	resp = s.do(t, nethttp.MethodDelete, path, nil, ownerToken)
	require.Equal(t, nethttp.StatusOK, resp.status)

	resp = s.do(t, nethttp.MethodGet, path, nil, "")
	require.Equal(t, nethttp.StatusNotFound, resp.status)
}

func TestParticipantRoutes(t *testing.T) {
	s := newServer(t, false)
	_, ownerToken := s.signup(t, "owner")
	guestID, guestToken := s.signup(t, "guest")
	eventID := s.createEvent(t, ownerToken, "Meetup")
	base := "/api/events/" + itoa(eventID)

	resp := s.do(t, nethttp.MethodPost, base+"/register", nil, guestToken)
	require.Equal(t, nethttp.StatusCreated, resp.status)
	require.Equal(t, "registered", resp.data()["status"])

	resp = s.do(t, nethttp.MethodPost, base+"/register", nil, guestToken)
	require.Equal(t, nethttp.StatusBadRequest, resp.status)
	require.Equal(t, "you are already registered for this event", resp.errorMessage())

	resp = s.do(t, nethttp.MethodGet, base+"/participants", nil, guestToken)
	require.Equal(t, nethttp.StatusForbidden, resp.status)

	resp = s.do(t, nethttp.MethodGet, base+"/participants", nil, ownerToken)
	require.Equal(t, nethttp.StatusOK, resp.status)
	require.Len(t, resp.list(), 1)
	require.Equal(t, "guest@example.com", resp.list()[0].(map[string]any)["email"])

	cancelPath := base + "/participants/" + itoa(guestID) + "/cancel"
	resp = s.do(t, nethttp.MethodPut, cancelPath, map[string]string{}, ownerToken)
	require.Equal(t, nethttp.StatusBadRequest, resp.status)
	require.Equal(t, "cancellation reason is required", resp.errorMessage())

	resp = s.do(t, nethttp.MethodPut, cancelPath, nil, ownerToken)
	require.Equal(t, nethttp.StatusBadRequest, resp.status)
	require.Equal(t, "cancellation reason is required", resp.errorMessage())

	resp = s.do(t, nethttp.MethodPut, cancelPath, map[string]string{"reason": "event full"}, guestToken)
	require.Equal(t, nethttp.StatusForbidden, resp.status)

	resp = s.do(t, nethttp.MethodPut, cancelPath, map[string]string{"reason": "event full"}, ownerToken)
	require.Equal(t, nethttp.StatusOK, resp.status)
	require.Equal(t, "cancelled", resp.data()["status"])
	require.Equal(t, "event full", resp.data()["cancellation_reason"])

	resp = s.do(t, nethttp.MethodGet, "/api/user/participating", nil, guestToken)
	require.Equal(t, nethttp.StatusOK, resp.status)
	require.Len(t, resp.list(), 1)
	item := resp.list()[0].(map[string]any)
	require.Equal(t, "Meetup", item["name"])
	require.Equal(t, "cancelled", item["status"])
}

func TestHealthAndErrors(t *testing.T) {
	s := newServer(t, false)

	resp := s.do(t, nethttp.MethodGet, "/api/health", nil, "")
	require.Equal(t, nethttp.StatusOK, resp.status)
	require.Equal(t, "ok", resp.body["status"])

	resp = s.do(t, nethttp.MethodGet, "/health/ready", nil, "")
	require.Equal(t, nethttp.StatusServiceUnavailable, resp.status)

	resp = s.do(t, nethttp.MethodGet, "/api/nowhere", nil, "")
	require.Equal(t, nethttp.StatusNotFound, resp.status)
	require.NotEmpty(t, resp.errorMessage())

	s.store.Err = errors.New("connection refused")
	resp = s.do(t, nethttp.MethodGet, "/api/events", nil, "")
	require.Equal(t, nethttp.StatusInternalServerError, resp.status)
	require.Equal(t, "internal server error", resp.errorMessage())
	s.store.Err = nil

	resp = s.do(t, nethttp.MethodGet, "/metrics", nil, "")
	require.Equal(t, nethttp.StatusOK, resp.status)
	require.NotEmpty(t, resp.data()["requests"])
}

func TestRequestIDHeader(t *testing.T) {
	s := newServer(t, false)
	resp, err := s.app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
