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

const userKeyPrefix = "user/"

// userDocument is the persisted shape of the active user record, matching
// the storefront's storage schema. CreatedAt is serialised as an ISO-8601
// string and parsed back on load; records written by older versions may be
// missing fields, which the profile service migrates on restore.
type userDocument struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	UserType   string `json:"userType"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Name       string `json:"name"`
	Mobile     string `json:"mobile"`
	Avatar     string `json:"avatar,omitempty"`
	IsVerified bool   `json:"isVerified"`
	CreatedAt  string `json:"createdAt"`
}

// KVUserRepository stores the user record as a single JSON document per owner.
type KVUserRepository struct {
	store kv.Store
}

// NewUserRepository constructs a kv-backed user repository.
func NewUserRepository(store kv.Store) (*KVUserRepository, error) {
	if store == nil {
		return nil, errors.New("user repository requires a kv store")
	}
	return &KVUserRepository{store: store}, nil
}

// GetUser loads the persisted record. Malformed JSON is deleted and reported
// as not found; a zero or unparsable createdAt comes back as the zero time
// for the service's migration pass to fill.
func (r *KVUserRepository) GetUser(ctx context.Context, ownerID string) (domain.UserRecord, error) {
	key := userKey(ownerID)
	data, err := r.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return domain.UserRecord{}, NewNotFoundError(key)
		}
		return domain.UserRecord{}, NewUnavailableError(key, err)
	}

	var doc userDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		_ = r.store.Delete(ctx, key)
		return domain.UserRecord{}, NewNotFoundError(key)
	}

	createdAt, _ := time.Parse(time.RFC3339, doc.CreatedAt)

	return domain.UserRecord{
		ID:          doc.ID,
		Email:       doc.Email,
		Role:        domain.Role(doc.UserType),
		FirstName:   doc.FirstName,
		LastName:    doc.LastName,
		DisplayName: doc.Name,
		Mobile:      doc.Mobile,
		Avatar:      doc.Avatar,
		Verified:    doc.IsVerified,
		CreatedAt:   createdAt,
	}, nil
}

// SaveUser persists the record, replacing the previous document.
func (r *KVUserRepository) SaveUser(ctx context.Context, ownerID string, user domain.UserRecord) error {
	key := userKey(ownerID)

	doc := userDocument{
		ID:         user.ID,
		Email:      user.Email,
		UserType:   string(user.Role),
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Name:       user.DisplayName,
		Mobile:     user.Mobile,
		Avatar:     user.Avatar,
		IsVerified: user.Verified,
	}
	if !user.CreatedAt.IsZero() {
		doc.CreatedAt = user.CreatedAt.UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return NewUnavailableError(key, err)
	}
	if err := r.store.Save(ctx, key, data); err != nil {
		return NewUnavailableError(key, err)
	}
	return nil
}

// DeleteUser removes the persisted record.
func (r *KVUserRepository) DeleteUser(ctx context.Context, ownerID string) error {
	key := userKey(ownerID)
	if err := r.store.Delete(ctx, key); err != nil {
		return NewUnavailableError(key, err)
	}
	return nil
}

func userKey(ownerID string) string {
	return userKeyPrefix + strings.TrimSpace(ownerID)
}
