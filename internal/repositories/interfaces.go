package repositories

import (
	"context"
	"errors"

	domain "github.com/sacchabazaar/api/internal/domain"
)

// RepositoryError classifies persistence failures so services can translate
// them without knowing the backend.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsUnavailable() bool
}

// CartRepository persists the authoritative cart line list per owner.
type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	SaveCart(ctx context.Context, cart domain.Cart) error
	DeleteCart(ctx context.Context, ownerID string) error
}

// UserRepository persists the single active user record per owner.
type UserRepository interface {
	GetUser(ctx context.Context, ownerID string) (domain.UserRecord, error)
	SaveUser(ctx context.Context, ownerID string, user domain.UserRecord) error
	DeleteUser(ctx context.Context, ownerID string) error
}

// NotificationRepository persists the full notification list per owner.
type NotificationRepository interface {
	ListNotifications(ctx context.Context, ownerID string) ([]domain.Notification, error)
	SaveNotifications(ctx context.Context, ownerID string, notifications []domain.Notification) error
	DeleteNotifications(ctx context.Context, ownerID string) error
}

// IsNotFound reports whether the error carries not-found classification.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}

// IsUnavailable reports whether the error carries unavailable classification.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsUnavailable()
	}
	return false
}
