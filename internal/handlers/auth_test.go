package handlers

import (
	"context"
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

type authFixture struct {
	router   chi.Router
	signer   *auth.SessionSigner
	profiles services.ProfileService
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	store := kv.NewMemoryStore()
	userRepo, err := repositories.NewUserRepository(store)
	if err != nil {
		t.Fatalf("NewUserRepository: %v", err)
	}
	signer, err := auth.NewSessionSigner("test-secret")
	if err != nil {
		t.Fatalf("NewSessionSigner: %v", err)
	}

	seq := 0
	profiles, err := services.NewProfileService(services.ProfileServiceDeps{
		Repository: userRepo,
		Sessions:   signer,
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	})
	if err != nil {
		t.Fatalf("NewProfileService: %v", err)
	}

	authenticator := auth.NewAuthenticator(signer)
	handlers := NewAuthHandlers(authenticator, profiles)
	router := NewRouter(WithAuthRoutes(handlers.Routes))

	return authFixture{router: router, signer: signer, profiles: profiles}
}

func TestAuthHandlersLogin(t *testing.T) {
	f := newAuthFixture(t)

	body := `{"email":"asha@example.com","first_name":"Asha","last_name":"Verma"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.User.Email != "asha@example.com" {
		t.Fatalf("unexpected email %s", resp.User.Email)
	}
	if resp.User.Role != "customer" {
		t.Fatalf("expected default role customer, got %s", resp.User.Role)
	}
	if resp.User.DisplayName != "Asha Verma" {
		t.Fatalf("expected display name derived from parts, got %s", resp.User.DisplayName)
	}
	if resp.Token == "" {
		t.Fatal("expected session token")
	}

	identity, err := f.signer.Verify(resp.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.UID != resp.User.ID {
		t.Fatalf("token uid %s does not match user id %s", identity.UID, resp.User.ID)
	}
}

func TestAuthHandlersLoginRequiresEmail(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"first_name":"Asha"}`))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestAuthHandlersLoginRejectsUnknownRole(t *testing.T) {
	f := newAuthFixture(t)

	body := `{"email":"asha@example.com","role":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestAuthHandlersLogout(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.profiles.Login(context.Background(), services.LoginCommand{Email: "asha@example.com"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+result.SessionToken)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", rr.Code, rr.Body.String())
	}
	if _, err := f.profiles.CurrentUser(context.Background(), result.User.ID); err == nil {
		t.Fatal("expected profile removed after logout")
	}
}

func TestAuthHandlersLogoutRequiresSession(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}
