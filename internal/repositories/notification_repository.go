package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	domain "github.com/sacchabazaar/api/internal/domain"
	"github.com/sacchabazaar/api/internal/platform/kv"
)

const notificationsKeyPrefix = "notifications/"

// notificationDocument is the persisted shape of one notification entry,
// matching the storefront's storage schema. Timestamps are ISO-8601 strings.
type notificationDocument struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Read       bool   `json:"read"`
	ActionURL  string `json:"actionUrl,omitempty"`
	ActionText string `json:"actionText,omitempty"`
}

// KVNotificationRepository stores the notification list as one JSON array per owner.
type KVNotificationRepository struct {
	store kv.Store
}

// NewNotificationRepository constructs a kv-backed notification repository.
func NewNotificationRepository(store kv.Store) (*KVNotificationRepository, error) {
	if store == nil {
		return nil, errors.New("notification repository requires a kv store")
	}
	return &KVNotificationRepository{store: store}, nil
}

// ListNotifications loads the persisted list, newest first as stored. A key
// that has never been written reports not found, which lets the service seed
// demo entries exactly once; malformed JSON is deleted and treated the same.
func (r *KVNotificationRepository) ListNotifications(ctx context.Context, ownerID string) ([]domain.Notification, error) {
	key := notificationsKey(ownerID)
	data, err := r.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, NewNotFoundError(key)
		}
		return nil, NewUnavailableError(key, err)
	}

	var docs []notificationDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		_ = r.store.Delete(ctx, key)
		return nil, NewNotFoundError(key)
	}

	notifications := make([]domain.Notification, 0, len(docs))
	for _, doc := range docs {
		createdAt, _ := time.Parse(time.RFC3339, doc.Timestamp)
		notifications = append(notifications, domain.Notification{
			ID:         doc.ID,
			Severity:   domain.Severity(doc.Type),
			Title:      doc.Title,
			Body:       doc.Message,
			CreatedAt:  createdAt,
			Read:       doc.Read,
			ActionLink: doc.ActionURL,
			ActionText: doc.ActionText,
		})
	}
	return notifications, nil
}

// SaveNotifications persists the full list, replacing the previous document.
func (r *KVNotificationRepository) SaveNotifications(ctx context.Context, ownerID string, notifications []domain.Notification) error {
	key := notificationsKey(ownerID)

	docs := make([]notificationDocument, 0, len(notifications))
	for _, n := range notifications {
		doc := notificationDocument{
			ID:         n.ID,
			Type:       string(n.Severity),
			Title:      n.Title,
			Message:    n.Body,
			Read:       n.Read,
			ActionURL:  n.ActionLink,
			ActionText: n.ActionText,
		}
		if !n.CreatedAt.IsZero() {
			doc.Timestamp = n.CreatedAt.UTC().Format(time.RFC3339)
		}
		docs = append(docs, doc)
	}

	data, err := json.Marshal(docs)
	if err != nil {
		return NewUnavailableError(key, err)
	}
	if err := r.store.Save(ctx, key, data); err != nil {
		return NewUnavailableError(key, err)
	}
	return nil
}

// DeleteNotifications removes the persisted list entirely.
func (r *KVNotificationRepository) DeleteNotifications(ctx context.Context, ownerID string) error {
	key := notificationsKey(ownerID)
	if err := r.store.Delete(ctx, key); err != nil {
		return NewUnavailableError(key, err)
	}
	return nil
}

func notificationsKey(ownerID string) string {
	return notificationsKeyPrefix + strings.TrimSpace(ownerID)
}
