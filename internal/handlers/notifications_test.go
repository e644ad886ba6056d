package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sacchabazaar/api/internal/platform/auth"
	"github.com/sacchabazaar/api/internal/platform/kv"
	"github.com/sacchabazaar/api/internal/repositories"
	"github.com/sacchabazaar/api/internal/services"
)

type notificationFixture struct {
	router chi.Router
	signer *auth.SessionSigner
}

func newNotificationFixture(t *testing.T, seedDemo bool) notificationFixture {
	t.Helper()

	store := kv.NewMemoryStore()
	repo, err := repositories.NewNotificationRepository(store)
	if err != nil {
		t.Fatalf("NewNotificationRepository: %v", err)
	}
	seq := 0
	notifications, err := services.NewNotificationService(services.NotificationServiceDeps{
		Repository: repo,
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		SeedDemo: seedDemo,
	})
	if err != nil {
		t.Fatalf("NewNotificationService: %v", err)
	}

	signer, err := auth.NewSessionSigner("test-secret")
	if err != nil {
		t.Fatalf("NewSessionSigner: %v", err)
	}
	authenticator := auth.NewAuthenticator(signer)
	handlers := NewNotificationHandlers(authenticator, notifications)
	router := NewRouter(WithNotificationRoutes(handlers.Routes))

	return notificationFixture{router: router, signer: signer}
}

func (f notificationFixture) request(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	token, err := f.signer.Mint("owner-1", "customer")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (f notificationFixture) list(t *testing.T) notificationsResponse {
	t.Helper()
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.request(t, http.MethodGet, "/api/v1/notifications/", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body notificationsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return body
}

func TestNotificationHandlersRequireSession(t *testing.T) {
	f := newNotificationFixture(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestNotificationHandlersListSeedsDemoEntries(t *testing.T) {
	f := newNotificationFixture(t, true)

	body := f.list(t)
	if len(body.Notifications) != 3 {
		t.Fatalf("expected 3 seeded notifications, got %d", len(body.Notifications))
	}
	if body.UnreadCount != 2 {
		t.Fatalf("expected 2 unread, got %d", body.UnreadCount)
	}
}

func TestNotificationHandlersAddAndList(t *testing.T) {
	f := newNotificationFixture(t, false)

	rr := httptest.NewRecorder()
	payload := `{"type":"success","title":"Order Delivered","message":"Your order has arrived","action_url":"/orders","action_text":"View Order"}`
	f.router.ServeHTTP(rr, f.request(t, http.MethodPost, "/api/v1/notifications/", payload))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created notificationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if created.Notification.Type != "success" || created.Notification.Read {
		t.Fatalf("unexpected notification %+v", created.Notification)
	}

	body := f.list(t)
	if len(body.Notifications) != 1 || body.UnreadCount != 1 {
		t.Fatalf("unexpected list %+v", body)
	}
	if body.Notifications[0].ActionURL != "/orders" {
		t.Fatalf("unexpected action url %s", body.Notifications[0].ActionURL)
	}
}

func TestNotificationHandlersAddRejectsUnknownType(t *testing.T) {
	f := newNotificationFixture(t, false)

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.request(t, http.MethodPost, "/api/v1/notifications/", `{"type":"fatal","title":"Boom"}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestNotificationHandlersMarkReadFlow(t *testing.T) {
	f := newNotificationFixture(t, false)

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.request(t, http.MethodPost, "/api/v1/notifications/", `{"title":"First"}`))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.request(t, http.MethodPost, "/api/v1/notifications/", `{"title":"Second"}`))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	id := f.list(t).Notifications[0].ID
	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.request(t, http.MethodPost, "/api/v1/notifications/"+id+"/read", ""))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if body := f.list(t); body.UnreadCount != 1 {
		t.Fatalf("expected 1 unread after marking one, got %d", body.UnreadCount)
	}

	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.request(t, http.MethodPost, "/api/v1/notifications/read-all", ""))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if body := f.list(t); body.UnreadCount != 0 {
		t.Fatalf("expected 0 unread after read-all, got %d", body.UnreadCount)
	}
}

func TestNotificationHandlersRemoveAndClear(t *testing.T) {
	f := newNotificationFixture(t, false)

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.request(t, http.MethodPost, "/api/v1/notifications/", `{"title":"First"}`))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.request(t, http.MethodPost, "/api/v1/notifications/", `{"title":"Second"}`))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	id := f.list(t).Notifications[0].ID
	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.request(t, http.MethodDelete, "/api/v1/notifications/"+id, ""))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if body := f.list(t); len(body.Notifications) != 1 {
		t.Fatalf("expected 1 notification after remove, got %d", len(body.Notifications))
	}

	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.request(t, http.MethodDelete, "/api/v1/notifications/", ""))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if body := f.list(t); len(body.Notifications) != 0 {
		t.Fatalf("expected empty list after clear, got %d", len(body.Notifications))
	}
}
