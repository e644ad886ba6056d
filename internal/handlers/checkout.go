package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sacchabazaar/api/internal/platform/auth"
	"github.com/sacchabazaar/api/internal/platform/httpx"
	"github.com/sacchabazaar/api/internal/services"
)

const maxCheckoutBodySize = 16 * 1024

// CheckoutHandlers exposes authenticated checkout endpoints for the current user.
type CheckoutHandlers struct {
	authn    *auth.Authenticator
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs handlers enforcing session authentication before invoking the checkout service.
func NewCheckoutHandlers(authn *auth.Authenticator, checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{
		authn:    authn,
		checkout: checkout,
	}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireSession())
	}
	r.Get("/options", h.options)
	r.Post("/orders", h.placeOrder)
}

func (h *CheckoutHandlers) options(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	options, err := h.checkout.Options(ctx)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	slots := make([]deliverySlotPayload, 0, len(options.DeliverySlots))
	for _, slot := range options.DeliverySlots {
		slots = append(slots, deliverySlotPayload{
			ID:        slot.ID,
			Label:     slot.Label,
			Available: slot.Available,
		})
	}
	methods := make([]paymentMethodPayload, 0, len(options.PaymentMethods))
	for _, method := range options.PaymentMethods {
		methods = append(methods, paymentMethodPayload{
			ID:    method.ID,
			Label: method.Label,
		})
	}
	writeJSONResponse(w, http.StatusOK, checkoutOptionsResponse{
		DeliverySlots:  slots,
		PaymentMethods: methods,
	})
}

func (h *CheckoutHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req placeOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	confirmation, err := h.checkout.PlaceOrder(ctx, services.PlaceOrderCommand{
		OwnerID:       identity.UID,
		DeliverySlot:  strings.TrimSpace(req.DeliverySlot),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Notes:         req.Notes,
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, orderConfirmationResponse{
		Order: orderConfirmationPayload{
			OrderNumber: confirmation.OrderNumber,
			ConfirmedAt: formatTime(confirmation.ConfirmedAt),
		},
	})
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cart has no items to order", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutUnauthenticated):
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "login required before checkout", http.StatusUnauthorized))
	case errors.Is(err, services.ErrCheckoutUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "failed to place order", http.StatusInternalServerError))
	}
}

type placeOrderRequest struct {
	DeliverySlot  string `json:"delivery_slot"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

type checkoutOptionsResponse struct {
	DeliverySlots  []deliverySlotPayload  `json:"delivery_slots"`
	PaymentMethods []paymentMethodPayload `json:"payment_methods"`
}

type deliverySlotPayload struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

type paymentMethodPayload struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type orderConfirmationResponse struct {
	Order orderConfirmationPayload `json:"order"`
}

type orderConfirmationPayload struct {
	OrderNumber string `json:"order_number"`
	ConfirmedAt string `json:"confirmed_at"`
}
