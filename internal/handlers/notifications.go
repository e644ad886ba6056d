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

const maxNotificationBodySize = 16 * 1024

// NotificationHandlers exposes authenticated notification endpoints for the current user.
type NotificationHandlers struct {
	authn         *auth.Authenticator
	notifications services.NotificationService
}

// NewNotificationHandlers constructs handlers enforcing session authentication before invoking the notification service.
func NewNotificationHandlers(authn *auth.Authenticator, notifications services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{
		authn:         authn,
		notifications: notifications,
	}
}

// Routes wires the /notifications endpoints onto the provided router.
func (h *NotificationHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireSession())
	}
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Delete("/", h.clearAll)
	r.Post("/read-all", h.markAllRead)
	r.Post("/{notificationID}/read", h.markRead)
	r.Delete("/{notificationID}", h.remove)
}

func (h *NotificationHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	notifications, err := h.notifications.List(ctx, identity.UID)
	if err != nil {
		writeNotificationError(ctx, w, err)
		return
	}

	unread := 0
	payload := make([]notificationPayload, 0, len(notifications))
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
		payload = append(payload, buildNotificationPayload(n))
	}
	writeJSONResponse(w, http.StatusOK, notificationsResponse{
		Notifications: payload,
		UnreadCount:   unread,
	})
}

func (h *NotificationHandlers) add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxNotificationBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req addNotificationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	notification, err := h.notifications.Add(ctx, services.AddNotificationCommand{
		OwnerID:    identity.UID,
		Severity:   domain.Severity(strings.ToLower(strings.TrimSpace(req.Type))),
		Title:      req.Title,
		Body:       req.Message,
		ActionLink: req.ActionURL,
		ActionText: req.ActionText,
	})
	if err != nil {
		writeNotificationError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, notificationResponse{Notification: buildNotificationPayload(notification)})
}

func (h *NotificationHandlers) markRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(ctx, identity.UID, chi.URLParam(r, "notificationID")); err != nil {
		writeNotificationError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandlers) markAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllRead(ctx, identity.UID); err != nil {
		writeNotificationError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandlers) remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	if err := h.notifications.Remove(ctx, identity.UID, chi.URLParam(r, "notificationID")); err != nil {
		writeNotificationError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandlers) clearAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	if err := h.notifications.ClearAll(ctx, identity.UID); err != nil {
		writeNotificationError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandlers) requireIdentity(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.notifications == nil {
		httpx.WriteError(ctx, w, httpx.NewError("notification_service_unavailable", "notification service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

func writeNotificationError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrNotificationInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrNotificationUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("notification_service_unavailable", "notification service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("notification_error", "failed to update notifications", http.StatusInternalServerError))
	}
}

type addNotificationRequest struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	ActionURL  string `json:"action_url"`
	ActionText string `json:"action_text"`
}

type notificationsResponse struct {
	Notifications []notificationPayload `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

type notificationResponse struct {
	Notification notificationPayload `json:"notification"`
}

type notificationPayload struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Read       bool   `json:"read"`
	ActionURL  string `json:"action_url,omitempty"`
	ActionText string `json:"action_text,omitempty"`
}

func buildNotificationPayload(n domain.Notification) notificationPayload {
	return notificationPayload{
		ID:         n.ID,
		Type:       string(n.Severity),
		Title:      n.Title,
		Message:    n.Body,
		Timestamp:  formatTime(n.CreatedAt),
		Read:       n.Read,
		ActionURL:  n.ActionLink,
		ActionText: n.ActionText,
	}
}
