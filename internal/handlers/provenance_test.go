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

type provenanceFixture struct {
	router chi.Router
	signer *auth.SessionSigner
}

func newProvenanceFixture(t *testing.T) provenanceFixture {
	t.Helper()

	store := kv.NewMemoryStore()
	notificationRepo, err := repositories.NewNotificationRepository(store)
	if err != nil {
		t.Fatalf("NewNotificationRepository: %v", err)
	}
	seq := 0
	notifications, err := services.NewNotificationService(services.NotificationServiceDeps{
		Repository: notificationRepo,
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	})
	if err != nil {
		t.Fatalf("NewNotificationService: %v", err)
	}
	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	provenance, err := services.NewProvenanceService(services.ProvenanceServiceDeps{
		Catalog:       catalog,
		Notifications: notifications,
		RandomSuffix:  func() string { return "a1b2c3d4" },
	})
	if err != nil {
		t.Fatalf("NewProvenanceService: %v", err)
	}

	signer, err := auth.NewSessionSigner("test-secret")
	if err != nil {
		t.Fatalf("NewSessionSigner: %v", err)
	}
	authenticator := auth.NewAuthenticator(signer)
	handlers := NewProvenanceHandlers(authenticator, provenance)
	router := NewRouter(WithProvenanceRoutes(handlers.Routes))

	return provenanceFixture{router: router, signer: signer}
}

func (f provenanceFixture) mintTokenRequest(t *testing.T, role string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/provenance/tokens", strings.NewReader(`{"product_id":"1"}`))
	token, err := f.signer.Mint("owner-1", role)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestProvenanceHandlersGenerateToken(t *testing.T) {
	f := newProvenanceFixture(t)

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.mintTokenRequest(t, "farmer"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var body qrTokenResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Token.ProductID != "1" {
		t.Fatalf("unexpected product id %s", body.Token.ProductID)
	}
	if !strings.HasPrefix(body.Token.Token, "1_") || !strings.HasSuffix(body.Token.Token, "_a1b2c3d4") {
		t.Fatalf("unexpected token %s", body.Token.Token)
	}
}

func TestProvenanceHandlersGenerateTokenForbiddenForCustomers(t *testing.T) {
	f := newProvenanceFixture(t)

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, f.mintTokenRequest(t, "customer"))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rr.Code)
	}
}

func TestProvenanceHandlersGenerateTokenRequiresSession(t *testing.T) {
	f := newProvenanceFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/provenance/tokens", strings.NewReader(`{"product_id":"1"}`))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestProvenanceHandlersTrailIsPublic(t *testing.T) {
	f := newProvenanceFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/provenance/1", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body trailResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Trail.Origin.Farmer != "Rajesh Kumar" {
		t.Fatalf("unexpected origin farmer %s", body.Trail.Origin.Farmer)
	}
	if body.Trail.Origin.Earnings != "4500" {
		t.Fatalf("unexpected earnings %s", body.Trail.Origin.Earnings)
	}
	if len(body.Trail.Steps) != 3 {
		t.Fatalf("expected 3 trail steps, got %d", len(body.Trail.Steps))
	}
}

func TestProvenanceHandlersTrailUnknownProduct(t *testing.T) {
	f := newProvenanceFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/provenance/999", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}
