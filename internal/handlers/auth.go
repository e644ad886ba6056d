package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/sacchabazaar/api/internal/domain"
	"github.com/sacchabazaar/api/internal/platform/auth"
	"github.com/sacchabazaar/api/internal/platform/httpx"
	"github.com/sacchabazaar/api/internal/services"
)

const maxLoginBodySize = 16 * 1024

// AuthHandlers exposes the login and logout endpoints.
type AuthHandlers struct {
	authn    *auth.Authenticator
	profiles services.ProfileService
}

// NewAuthHandlers constructs handlers for the session lifecycle endpoints.
func NewAuthHandlers(authn *auth.Authenticator, profiles services.ProfileService) *AuthHandlers {
	return &AuthHandlers{
		authn:    authn,
		profiles: profiles,
	}
}

// Routes wires the /auth endpoints onto the provided router. Login is open;
// logout requires an active session.
func (h *AuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/login", h.login)
	r.Group(func(g chi.Router) {
		if h.authn != nil {
			g.Use(h.authn.RequireSession())
		}
		g.Post("/logout", h.logout)
	})
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.profiles == nil {
		httpx.WriteError(ctx, w, httpx.NewError("profile_service_unavailable", "profile service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxLoginBodySize)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return
	}

	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	cmd := services.LoginCommand{
		ID:          req.ID,
		Email:       req.Email,
		Role:        domain.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DisplayName: req.DisplayName,
		Mobile:      req.Mobile,
		Avatar:      req.Avatar,
		Verified:    req.Verified,
	}
	if req.CreatedAt != "" {
		createdAt, err := parseRFC3339(req.CreatedAt)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "created_at must be an RFC3339 timestamp", http.StatusBadRequest))
			return
		}
		cmd.CreatedAt = createdAt
	}

	result, err := h.profiles.Login(ctx, cmd)
	if err != nil {
		writeProfileError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, loginResponse{
		User:  buildUserPayload(result.User),
		Token: result.SessionToken,
	})
}

func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.profiles == nil {
		httpx.WriteError(ctx, w, httpx.NewError("profile_service_unavailable", "profile service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	if err := h.profiles.Logout(ctx, identity.UID); err != nil {
		writeProfileError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Mobile      string `json:"mobile"`
	Avatar      string `json:"avatar"`
	Verified    bool   `json:"verified"`
	CreatedAt   string `json:"created_at"`
}

type loginResponse struct {
	User  userPayload `json:"user"`
	Token string      `json:"token"`
}
