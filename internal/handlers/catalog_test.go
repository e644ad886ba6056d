package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sacchabazaar/api/internal/services"
)

func newCatalogRouter(t *testing.T) chi.Router {
	t.Helper()
	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return NewRouter(WithCatalogRoutes(NewCatalogHandlers(catalog).Routes))
}

func TestCatalogHandlersListProducts(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var body productsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(body.Products) != 8 {
		t.Fatalf("expected 8 products, got %d", len(body.Products))
	}
}

func TestCatalogHandlersListProductsByCategory(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products?category=fruits", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var body productsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(body.Products) != 2 {
		t.Fatalf("expected 2 fruit products, got %d", len(body.Products))
	}
	for _, p := range body.Products {
		if p.Category != "fruits" {
			t.Fatalf("unexpected category %s for %s", p.Category, p.Name)
		}
	}
}

func TestCatalogHandlersGetProduct(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var body productResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Product.Name != "Fresh Tomatoes" {
		t.Fatalf("unexpected product %s", body.Product.Name)
	}
	if body.Product.Price != "45" {
		t.Fatalf("expected price 45, got %s", body.Product.Price)
	}
}

func TestCatalogHandlersGetProductNotFound(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/999", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestCatalogHandlersListCategories(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/categories", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var body categoriesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(body.Categories) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(body.Categories))
	}
	counts := map[string]int{}
	for _, c := range body.Categories {
		counts[c.ID] = c.Count
	}
	if counts["vegetables"] != 6 || counts["fruits"] != 2 || counts["dairy"] != 0 {
		t.Fatalf("unexpected category counts %v", counts)
	}
}
