package repositories

import (
	"context"
	"testing"
	"time"

	domain "github.com/sacchabazaar/api/internal/domain"
	"github.com/sacchabazaar/api/internal/platform/kv"
)

func TestUserRepositoryRoundTrip(t *testing.T) {
	repo, err := NewUserRepository(kv.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewUserRepository: %v", err)
	}
	ctx := context.Background()

	user := domain.UserRecord{
		ID:          "owner-1",
		Email:       "asha@example.com",
		Role:        domain.RoleFarmer,
		FirstName:   "Asha",
		LastName:    "Verma",
		DisplayName: "Asha Verma",
		Mobile:      "9876543210",
		Verified:    true,
		CreatedAt:   time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC),
	}
	if err := repo.SaveUser(ctx, "owner-1", user); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	loaded, err := repo.GetUser(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if loaded.Email != user.Email || loaded.Role != user.Role || !loaded.Verified {
		t.Fatalf("unexpected record %+v", loaded)
	}
	if !loaded.CreatedAt.Equal(user.CreatedAt) {
		t.Fatalf("expected createdAt %v, got %v", user.CreatedAt, loaded.CreatedAt)
	}
}

func TestUserRepositoryLegacyCreatedAt(t *testing.T) {
	store := kv.NewMemoryStore()
	repo, err := NewUserRepository(store)
	if err != nil {
		t.Fatalf("NewUserRepository: %v", err)
	}
	ctx := context.Background()

	legacy := `{"id":"owner-1","email":"asha@example.com","userType":"customer","firstName":"Asha","lastName":"","name":"Asha","mobile":"","isVerified":false,"createdAt":"not-a-date"}`
	if err := store.Save(ctx, "user/owner-1", []byte(legacy)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.GetUser(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !loaded.CreatedAt.IsZero() {
		t.Fatalf("expected zero createdAt for unparsable value, got %v", loaded.CreatedAt)
	}
}

func TestUserRepositoryMalformedDocumentIsDiscarded(t *testing.T) {
	store := kv.NewMemoryStore()
	repo, err := NewUserRepository(store)
	if err != nil {
		t.Fatalf("NewUserRepository: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "user/owner-1", []byte("][")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.GetUser(ctx, "owner-1"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.Load(ctx, "user/owner-1"); err == nil {
		t.Fatal("expected malformed document deleted")
	}
}

func TestUserRepositoryDelete(t *testing.T) {
	repo, err := NewUserRepository(kv.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewUserRepository: %v", err)
	}
	ctx := context.Background()

	if err := repo.SaveUser(ctx, "owner-1", domain.UserRecord{ID: "owner-1", Email: "a@b.c"}); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if err := repo.DeleteUser(ctx, "owner-1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := repo.GetUser(ctx, "owner-1"); !IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
