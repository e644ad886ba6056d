package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/sacchabazaar/api/internal/domain"
	"github.com/sacchabazaar/api/internal/platform/auth"
	"github.com/sacchabazaar/api/internal/platform/httpx"
	"github.com/sacchabazaar/api/internal/services"
)

const maxProfileBodySize = 64 * 1024

var (
	errBodyTooLarge     = errors.New("request body too large")
	errEmptyBody        = errors.New("request body is required")
	errNoEditableFields = errors.New("no editable fields provided")
)

// MeHandlers exposes authenticated profile endpoints for the current user.
type MeHandlers struct {
	authn    *auth.Authenticator
	profiles services.ProfileService
}

// NewMeHandlers constructs handlers enforcing session authentication before invoking the profile service.
func NewMeHandlers(authn *auth.Authenticator, profiles services.ProfileService) *MeHandlers {
	return &MeHandlers{
		authn:    authn,
		profiles: profiles,
	}
}

// Routes wires the /me endpoints onto the provided router.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireSession())
	}
	r.Get("/", h.getProfile)
	r.Patch("/", h.updateProfile)
}

func (h *MeHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
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

	user, err := h.profiles.CurrentUser(ctx, identity.UID)
	if err != nil {
		writeProfileError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, meResponse{User: buildUserPayload(user)})
}

func (h *MeHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
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

	body, err := readLimitedBody(r, maxProfileBodySize)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return
	}

	cmd, err := parseUpdateProfileRequest(body)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	user, err := h.profiles.UpdateUser(ctx, identity.UID, cmd)
	if err != nil {
		writeProfileError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, meResponse{User: buildUserPayload(user)})
}

func parseUpdateProfileRequest(body []byte) (services.UpdateUserCommand, error) {
	var cmd services.UpdateUserCommand

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return cmd, errors.New("invalid JSON payload")
	}
	if len(raw) == 0 {
		return cmd, errNoEditableFields
	}

	stringField := func(value json.RawMessage, name string) (*string, error) {
		if isJSONNull(value) {
			empty := ""
			return &empty, nil
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("%s must be a string", name)
		}
		return &s, nil
	}

	for key, value := range raw {
		switch key {
		case "email":
			if isJSONNull(value) {
				return cmd, errors.New("email must not be null")
			}
			field, err := stringField(value, "email")
			if err != nil {
				return cmd, err
			}
			cmd.Email = field
		case "role":
			if isJSONNull(value) {
				return cmd, errors.New("role must not be null")
			}
			var role string
			if err := json.Unmarshal(value, &role); err != nil {
				return cmd, errors.New("role must be a string")
			}
			parsed := domain.Role(strings.ToLower(strings.TrimSpace(role)))
			cmd.Role = &parsed
		case "first_name":
			field, err := stringField(value, "first_name")
			if err != nil {
				return cmd, err
			}
			cmd.FirstName = field
		case "last_name":
			field, err := stringField(value, "last_name")
			if err != nil {
				return cmd, err
			}
			cmd.LastName = field
		case "display_name":
			field, err := stringField(value, "display_name")
			if err != nil {
				return cmd, err
			}
			cmd.DisplayName = field
		case "mobile":
			field, err := stringField(value, "mobile")
			if err != nil {
				return cmd, err
			}
			cmd.Mobile = field
		case "avatar":
			field, err := stringField(value, "avatar")
			if err != nil {
				return cmd, err
			}
			cmd.Avatar = field
		case "verified":
			if isJSONNull(value) {
				return cmd, errors.New("verified must not be null")
			}
			var verified bool
			if err := json.Unmarshal(value, &verified); err != nil {
				return cmd, errors.New("verified must be a boolean")
			}
			cmd.Verified = &verified
		default:
			return cmd, fmt.Errorf("field %q is not editable", key)
		}
	}

	return cmd, nil
}

func writeProfileError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrProfileInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProfileNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("profile_not_found", "no active profile", http.StatusNotFound))
	case errors.Is(err, services.ErrProfileUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("profile_service_unavailable", "profile service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("profile_error", "failed to load profile", http.StatusInternalServerError))
	}
}

type meResponse struct {
	User userPayload `json:"user"`
}

type userPayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Mobile      string `json:"mobile,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Verified    bool   `json:"verified"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func buildUserPayload(user domain.UserRecord) userPayload {
	return userPayload{
		ID:          user.ID,
		Email:       user.Email,
		Role:        string(user.Role),
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: user.DisplayName,
		Mobile:      user.Mobile,
		Avatar:      user.Avatar,
		Verified:    user.Verified,
		CreatedAt:   formatTime(user.CreatedAt),
	}
}

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	if limit <= 0 {
		limit = maxProfileBodySize
	}
	reader := io.LimitReader(r.Body, limit+1)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func isJSONNull(value json.RawMessage) bool {
	return strings.EqualFold(strings.TrimSpace(string(value)), "null")
}

func parseRFC3339(value string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", value)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
