package handlers

import (
	"context"
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

const maxProvenanceBodySize = 16 * 1024

// ProvenanceHandlers exposes QR token minting for sellers and the public
// farm-to-shelf trail lookup.
type ProvenanceHandlers struct {
	authn      *auth.Authenticator
	provenance services.ProvenanceService
}

// NewProvenanceHandlers constructs handlers for the provenance endpoints.
func NewProvenanceHandlers(authn *auth.Authenticator, provenance services.ProvenanceService) *ProvenanceHandlers {
	return &ProvenanceHandlers{
		authn:      authn,
		provenance: provenance,
	}
}

// Routes wires the /provenance endpoints onto the provided router. Token
// minting requires a seller session; the trail lookup is public so scanned
// codes resolve without an account.
func (h *ProvenanceHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/{productID}", h.trail)
	r.Group(func(g chi.Router) {
		if h.authn != nil {
			g.Use(h.authn.RequireSession())
		}
		g.Post("/tokens", h.generateToken)
	})
}

func (h *ProvenanceHandlers) generateToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.provenance == nil {
		httpx.WriteError(ctx, w, httpx.NewError("provenance_service_unavailable", "provenance service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}
	if !identity.HasAnyRole(string(domain.RoleFarmer), string(domain.RoleAggregator)) {
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "only sellers can generate product codes", http.StatusForbidden))
		return
	}

	body, err := readLimitedBody(r, maxProvenanceBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req generateTokenRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	token, err := h.provenance.GenerateToken(ctx, services.GenerateTokenCommand{
		OwnerID:   identity.UID,
		ProductID: req.ProductID,
	})
	if err != nil {
		writeProvenanceError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, qrTokenResponse{
		Token: qrTokenPayload{
			ProductID: token.ProductID,
			Token:     token.Token,
			IssuedAt:  formatTime(token.IssuedAt),
		},
	})
}

func (h *ProvenanceHandlers) trail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.provenance == nil {
		httpx.WriteError(ctx, w, httpx.NewError("provenance_service_unavailable", "provenance service is unavailable", http.StatusServiceUnavailable))
		return
	}

	trail, err := h.provenance.Trail(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		writeProvenanceError(ctx, w, err)
		return
	}

	steps := make([]trailStepPayload, 0, len(trail.Steps))
	for _, step := range trail.Steps {
		steps = append(steps, trailStepPayload{
			Stage:      step.Stage,
			Actor:      step.Actor,
			Location:   step.Location,
			OccurredAt: formatTime(step.OccurredAt),
		})
	}

	writeJSONResponse(w, http.StatusOK, trailResponse{
		Trail: trailPayload{
			ProductID: trail.ProductID,
			Token:     trail.Token,
			Origin: trailOriginPayload{
				Farmer:   trail.Origin.Name,
				Location: trail.Origin.Location,
				Earnings: trail.Origin.Earnings.String(),
			},
			Steps: steps,
		},
	})
}

func writeProvenanceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrProvenanceInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProvenanceNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrProvenanceUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("provenance_service_unavailable", "provenance service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("provenance_error", "failed to resolve provenance", http.StatusInternalServerError))
	}
}

type generateTokenRequest struct {
	ProductID string `json:"product_id"`
}

type qrTokenResponse struct {
	Token qrTokenPayload `json:"token"`
}

type qrTokenPayload struct {
	ProductID string `json:"product_id"`
	Token     string `json:"token"`
	IssuedAt  string `json:"issued_at"`
}

type trailResponse struct {
	Trail trailPayload `json:"trail"`
}

type trailPayload struct {
	ProductID string             `json:"product_id"`
	Token     string             `json:"token"`
	Origin    trailOriginPayload `json:"origin"`
	Steps     []trailStepPayload `json:"steps"`
}

type trailOriginPayload struct {
	Farmer   string `json:"farmer"`
	Location string `json:"location"`
	Earnings string `json:"earnings"`
}

type trailStepPayload struct {
	Stage      string `json:"stage"`
	Actor      string `json:"actor"`
	Location   string `json:"location"`
	OccurredAt string `json:"occurred_at"`
}
