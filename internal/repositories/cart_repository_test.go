package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/sacchabazaar/api/internal/domain"
	"github.com/sacchabazaar/api/internal/platform/kv"
)

func TestCartRepositoryRoundTrip(t *testing.T) {
	store := kv.NewMemoryStore()
	repo, err := NewCartRepository(store)
	if err != nil {
		t.Fatalf("NewCartRepository: %v", err)
	}
	ctx := context.Background()

	cart := domain.Cart{
		OwnerID: "owner-1",
		Lines: []domain.CartLine{
			{
				ProductID:  "1",
				Name:       "Fresh Tomatoes",
				UnitPrice:  decimal.NewFromInt(45),
				Unit:       "kg",
				FarmerName: "Rajesh Kumar",
				ImageRef:   "/fresh-red-tomatoes.jpg",
				Quantity:   2,
				StockLimit: 150,
				Organic:    true,
				Category:   "vegetables",
			},
		},
		UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.SaveCart(ctx, cart); err != nil {
		t.Fatalf("SaveCart: %v", err)
	}

	loaded, err := repo.GetCart(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(loaded.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(loaded.Lines))
	}
	line := loaded.Lines[0]
	if line.ProductID != "1" || line.Quantity != 2 || line.StockLimit != 150 {
		t.Fatalf("unexpected line %+v", line)
	}
	if !line.UnitPrice.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("expected price 45, got %s", line.UnitPrice.String())
	}
	if !line.Organic || line.Category != "vegetables" {
		t.Fatalf("unexpected line flags %+v", line)
	}
}

func TestCartRepositoryMissingReportsNotFound(t *testing.T) {
	repo, err := NewCartRepository(kv.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewCartRepository: %v", err)
	}

	_, err = repo.GetCart(context.Background(), "owner-1")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCartRepositoryAcceptsBareNumericPrices(t *testing.T) {
	store := kv.NewMemoryStore()
	repo, err := NewCartRepository(store)
	if err != nil {
		t.Fatalf("NewCartRepository: %v", err)
	}
	ctx := context.Background()

	// Documents written by older storefront versions carry unquoted prices.
	legacy := `[{"id":"1","name":"Fresh Tomatoes","price":45,"unit":"kg","farmer":"Rajesh Kumar","image":"","quantity":2,"stock":150,"category":"vegetables"}]`
	if err := store.Save(ctx, "cart/owner-1", []byte(legacy)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cart, err := repo.GetCart(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if !cart.Lines[0].UnitPrice.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("expected price 45, got %s", cart.Lines[0].UnitPrice.String())
	}
}

func TestCartRepositoryMalformedDocumentIsDiscarded(t *testing.T) {
	store := kv.NewMemoryStore()
	repo, err := NewCartRepository(store)
	if err != nil {
		t.Fatalf("NewCartRepository: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "cart/owner-1", []byte("{not json")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := repo.GetCart(ctx, "owner-1"); !IsNotFound(err) {
		t.Fatalf("expected not found after discard, got %v", err)
	}
	if _, err := store.Load(ctx, "cart/owner-1"); err == nil {
		t.Fatal("expected malformed document deleted from store")
	}
}

func TestCartRepositoryDelete(t *testing.T) {
	store := kv.NewMemoryStore()
	repo, err := NewCartRepository(store)
	if err != nil {
		t.Fatalf("NewCartRepository: %v", err)
	}
	ctx := context.Background()

	if err := repo.SaveCart(ctx, domain.Cart{OwnerID: "owner-1"}); err != nil {
		t.Fatalf("SaveCart: %v", err)
	}
	if err := repo.DeleteCart(ctx, "owner-1"); err != nil {
		t.Fatalf("DeleteCart: %v", err)
	}
	if _, err := repo.GetCart(ctx, "owner-1"); !IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
