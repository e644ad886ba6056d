package services

import (
	"context"
	"errors"
	"testing"
)

func newTestCatalogService(t *testing.T) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc
}

func TestCatalogServiceListProducts(t *testing.T) {
	svc := newTestCatalogService(t)
	ctx := context.Background()

	all, err := svc.ListProducts(ctx, "")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(all) != 8 {
		t.Fatalf("expected 8 products, got %d", len(all))
	}

	fruits, err := svc.ListProducts(ctx, "fruits")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(fruits) != 2 {
		t.Fatalf("expected 2 fruits, got %d", len(fruits))
	}
	for _, p := range fruits {
		if p.Category != "fruits" {
			t.Fatalf("expected fruits only, got %s", p.Category)
		}
	}

	everything, err := svc.ListProducts(ctx, "All")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(everything) != 8 {
		t.Fatalf("expected category all to return everything, got %d", len(everything))
	}
}

func TestCatalogServiceGetProduct(t *testing.T) {
	svc := newTestCatalogService(t)

	product, err := svc.GetProduct(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if product.Name != "Fresh Tomatoes" {
		t.Fatalf("expected Fresh Tomatoes, got %s", product.Name)
	}
	if product.Price.String() != "45" {
		t.Fatalf("expected price 45, got %s", product.Price.String())
	}

	if _, err := svc.GetProduct(context.Background(), "999"); !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound, got %v", err)
	}
}

func TestCatalogServiceCategories(t *testing.T) {
	svc := newTestCatalogService(t)

	categories, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(categories) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(categories))
	}

	counts := map[string]int{}
	for _, c := range categories {
		counts[c.ID] = c.Count
	}
	if counts["vegetables"] != 6 {
		t.Fatalf("expected 6 vegetables, got %d", counts["vegetables"])
	}
	if counts["fruits"] != 2 {
		t.Fatalf("expected 2 fruits, got %d", counts["fruits"])
	}
	if counts["dairy"] != 0 {
		t.Fatalf("expected 0 dairy products, got %d", counts["dairy"])
	}
}
