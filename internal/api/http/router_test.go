package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/eventhub/internal/api/http/handlers"
	"github.com/spec-kit/eventhub/internal/auth"
	"github.com/spec-kit/eventhub/internal/config"
	"github.com/spec-kit/eventhub/internal/domain"
	"github.com/spec-kit/eventhub/internal/events"
	"github.com/spec-kit/eventhub/internal/mail"
	"github.com/spec-kit/eventhub/internal/observability"
	"github.com/spec-kit/eventhub/internal/persistence"
	"github.com/spec-kit/eventhub/internal/repository"
	"github.com/spec-kit/eventhub/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	userRepo := repository.NewInMemoryUserRepository()
	eventRepo := repository.NewInMemoryEventRepository()
	rsvpRepo := repository.NewInMemoryRSVPRepository()

	dispatcher := events.NewInMemoryDispatcher()
	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
		BcryptCost:    4,
	}, userRepo)
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:  eventRepo,
		UserRepo:   userRepo,
		RSVPRepo:   rsvpRepo,
		Dispatcher: dispatcher,
	})
	rsvpService := service.NewRSVPService(rsvpRepo, eventRepo, dispatcher)

	notifications := service.NewNotificationService(dispatcher, mail.NewMailer(config.MailConfig{}, logger), logger, metrics)
	notifications.RegisterHandlers()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("eventhub", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Users:          handlers.NewUsersHandler(authService),
		Events:         handlers.NewEventsHandler(eventService),
		RSVP:           handlers.NewRSVPHandler(rsvpService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func register(t *testing.T, app *fiber.App, email string, role domain.Role) (token, userID string) {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    email,
		"password": "secret",
		"role":     role,
		"name":     "Test",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["token"].(string), body["userId"].(string)
}

func createEvent(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/events/", token, map[string]any{
		"title": "Summer Fair",
		"date":  time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"customFields": []map[string]string{
			{"label": "Capacity", "value": "200"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	event := body["event"].(map[string]any)
	require.Equal(t, "pending", event["status"])
	return event["id"].(string)
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("register then login", func(t *testing.T) {
		app := newTestApp(t)
		_, userID := register(t, app, "ada@example.com", domain.RoleOwner)

		resp, body := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]any{
			"email":    "ada@example.com",
			"password": "secret",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, userID, body["userId"])
		require.Equal(t, "owner", body["role"])
		require.NotEmpty(t, body["token"])
	})

	t.Run("duplicate email returns 409", func(t *testing.T) {
		app := newTestApp(t)
		register(t, app, "ada@example.com", domain.RoleOwner)

		resp, body := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]any{
			"email":    "ada@example.com",
			"password": "secret",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		require.NotEmpty(t, body["error"])
	})

	t.Run("wrong password returns 401", func(t *testing.T) {
		app := newTestApp(t)
		register(t, app, "ada@example.com", domain.RoleOwner)

		resp, _ := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]any{
			"email":    "ada@example.com",
			"password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing fields return 400", func(t *testing.T) {
		app := newTestApp(t)
		resp, _ := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]any{"email": "a@b.c"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestEventEndpoints(t *testing.T) {
	t.Run("create requires a token", func(t *testing.T) {
		app := newTestApp(t)
		resp, _ := doJSON(t, app, http.MethodPost, "/events/", "", map[string]any{"title": "x"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("guest role cannot create", func(t *testing.T) {
		app := newTestApp(t)
		token, _ := register(t, app, "guest@example.com", domain.RoleGuest)
		resp, _ := doJSON(t, app, http.MethodPost, "/events/", token, map[string]any{
			"title": "x",
			"date":  time.Now().Format(time.RFC3339),
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("owner creates a pending event and reads it publicly", func(t *testing.T) {
		app := newTestApp(t)
		token, _ := register(t, app, "ada@example.com", domain.RoleOwner)
		eventID := createEvent(t, app, token)

		resp, body := doJSON(t, app, http.MethodGet, "/events/"+eventID, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		event := body["event"].(map[string]any)
		require.Equal(t, "Summer Fair", event["title"])
		// Moderation state is not part of the public projection.
		_, exposed := event["status"]
		require.False(t, exposed)
	})

	t.Run("unknown event returns 404", func(t *testing.T) {
		app := newTestApp(t)
		resp, _ := doJSON(t, app, http.MethodGet, "/events/unknown", "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("stranger cannot edit, staff can, staff cannot delete", func(t *testing.T) {
		app := newTestApp(t)
		ownerToken, _ := register(t, app, "ada@example.com", domain.RoleOwner)
		strangerToken, _ := register(t, app, "eve@example.com", domain.RoleOwner)
		staffToken, _ := register(t, app, "staff@example.com", domain.RoleStaff)
		eventID := createEvent(t, app, ownerToken)

		resp, _ := doJSON(t, app, http.MethodPatch, "/events/"+eventID, strangerToken, map[string]any{"title": "Hijacked"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodPatch, "/events/"+eventID, staffToken, map[string]any{"title": "Renamed"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodDelete, "/events/"+eventID, staffToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodDelete, "/events/"+eventID, ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("moderation is admin only", func(t *testing.T) {
		app := newTestApp(t)
		ownerToken, _ := register(t, app, "ada@example.com", domain.RoleOwner)
		staffToken, _ := register(t, app, "staff@example.com", domain.RoleStaff)
		adminToken, _ := register(t, app, "admin@example.com", domain.RoleAdmin)
		eventID := createEvent(t, app, ownerToken)

		resp, _ := doJSON(t, app, http.MethodPatch, "/events/"+eventID+"/status", staffToken, map[string]any{"status": "approved"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, body := doJSON(t, app, http.MethodPatch, "/events/"+eventID+"/status", adminToken, map[string]any{"status": "approved"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "approved", body["event"].(map[string]any)["status"])
	})

	t.Run("public listing paginates approved events", func(t *testing.T) {
		app := newTestApp(t)
		ownerToken, _ := register(t, app, "ada@example.com", domain.RoleOwner)
		adminToken, _ := register(t, app, "admin@example.com", domain.RoleAdmin)
		for i := 0; i < 5; i++ {
			eventID := createEvent(t, app, ownerToken)
			resp, _ := doJSON(t, app, http.MethodPatch, "/events/"+eventID+"/status", adminToken, map[string]any{"status": "approved"})
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}
		createEvent(t, app, ownerToken) // stays pending

		resp, body := doJSON(t, app, http.MethodGet, "/events/public?page=1&limit=2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, float64(5), body["total"])
		require.Equal(t, float64(3), body["totalPages"])
		require.Len(t, body["events"].([]any), 2)
	})

	t.Run("pending queue is admin only", func(t *testing.T) {
		app := newTestApp(t)
		ownerToken, _ := register(t, app, "ada@example.com", domain.RoleOwner)
		adminToken, _ := register(t, app, "admin@example.com", domain.RoleAdmin)
		createEvent(t, app, ownerToken)

		resp, _ := doJSON(t, app, http.MethodGet, "/events/pending", ownerToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, body := doJSON(t, app, http.MethodGet, "/events/pending", adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, float64(1), body["total"])
	})

	t.Run("mine lists only the caller's events", func(t *testing.T) {
		app := newTestApp(t)
		ownerToken, _ := register(t, app, "ada@example.com", domain.RoleOwner)
		otherToken, _ := register(t, app, "eve@example.com", domain.RoleOwner)
		createEvent(t, app, ownerToken)

		resp, body := doJSON(t, app, http.MethodGet, "/events/mine", ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, float64(1), body["total"])

		resp, body = doJSON(t, app, http.MethodGet, "/events/mine", otherToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, float64(0), body["total"])
	})
}

func TestRSVPEndpoints(t *testing.T) {
	t.Run("public submission and gated listing", func(t *testing.T) {
		app := newTestApp(t)
		ownerToken, _ := register(t, app, "ada@example.com", domain.RoleOwner)
		eventID := createEvent(t, app, ownerToken)

		resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/rsvp/%s", eventID), "", map[string]any{
			"name":  "Grace",
			"email": "grace@example.com",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, "/rsvp/"+eventID, "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, body := doJSON(t, app, http.MethodGet, "/rsvp/"+eventID, ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, body["rsvps"].([]any), 1)
	})

	t.Run("missing fields return 400 and store nothing", func(t *testing.T) {
		app := newTestApp(t)
		ownerToken, _ := register(t, app, "ada@example.com", domain.RoleOwner)
		eventID := createEvent(t, app, ownerToken)

		resp, body := doJSON(t, app, http.MethodPost, "/rsvp/"+eventID, "", map[string]any{"name": "Grace"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.NotEmpty(t, body["error"])

		resp, body = doJSON(t, app, http.MethodGet, "/rsvp/"+eventID, ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Empty(t, body["rsvps"])
	})
}
