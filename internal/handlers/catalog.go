package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/sacchabazaar/api/internal/domain"
	"github.com/sacchabazaar/api/internal/platform/httpx"
	"github.com/sacchabazaar/api/internal/services"
)

// CatalogHandlers exposes the public catalogue endpoints.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs handlers serving the product catalogue.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes wires the /catalog endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Get("/categories", h.listCategories)
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	products, err := h.catalog.ListProducts(ctx, r.URL.Query().Get("category"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to list products", http.StatusInternalServerError))
		return
	}

	payload := make([]productPayload, 0, len(products))
	for _, p := range products {
		payload = append(payload, buildProductPayload(p))
	}
	writeJSONResponse(w, http.StatusOK, productsResponse{Products: payload})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
		return
	}
	writeJSONResponse(w, http.StatusOK, productResponse{Product: buildProductPayload(product)})
}

func (h *CatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to list categories", http.StatusInternalServerError))
		return
	}

	payload := make([]categoryPayload, 0, len(categories))
	for _, c := range categories {
		payload = append(payload, categoryPayload{
			ID:    c.ID,
			Name:  c.Name,
			Icon:  c.Icon,
			Count: c.Count,
		})
	}
	writeJSONResponse(w, http.StatusOK, categoriesResponse{Categories: payload})
}

type productsResponse struct {
	Products []productPayload `json:"products"`
}

type productResponse struct {
	Product productPayload `json:"product"`
}

type categoriesResponse struct {
	Categories []categoryPayload `json:"categories"`
}

type productPayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       string  `json:"price"`
	Unit        string  `json:"unit"`
	Farmer      string  `json:"farmer"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	Reviews     int     `json:"reviews"`
	Organic     bool    `json:"organic"`
	Description string  `json:"description,omitempty"`
}

type categoryPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Count int    `json:"count"`
}

func buildProductPayload(p domain.Product) productPayload {
	return productPayload{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.String(),
		Unit:        p.Unit,
		Farmer:      p.FarmerName,
		Stock:       p.Stock,
		Image:       p.ImageRef,
		Category:    p.Category,
		Rating:      p.Rating,
		Reviews:     p.Reviews,
		Organic:     p.Organic,
		Description: p.Description,
	}
}
