package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/sacchabazaar/api/internal/domain"
)

// ErrCatalogNotFound indicates the product id is not in the catalogue.
var ErrCatalogNotFound = errors.New("catalog: not found")

// CatalogServiceDeps lists the dependencies required by the catalog service.
type CatalogServiceDeps struct {
	Logger func(ctx context.Context, msg string, fields map[string]any)
}

type catalogService struct {
	products   []domain.Product
	categories []Category
	logger     func(ctx context.Context, msg string, fields map[string]any)
}

// NewCatalogService returns a CatalogService backed by the built-in
// marketplace catalogue.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	products := marketplaceProducts()
	return &catalogService{
		products:   products,
		categories: marketplaceCategories(products),
		logger:     deps.Logger,
	}, nil
}

func (s *catalogService) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && category != "all" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	for _, p := range s.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, ErrCatalogNotFound
}

func (s *catalogService) Categories(ctx context.Context) ([]Category, error) {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func marketplaceProducts() []domain.Product {
	price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	return []domain.Product{
		{
			ID: "1", Name: "Fresh Tomatoes", Price: price(45), Unit: "kg",
			FarmerName: "Rajesh Kumar", Stock: 150, ImageRef: "/fresh-red-tomatoes.jpg",
			Category: "vegetables", Rating: 4.5, Reviews: 23, Organic: true,
			Description: "Juicy, vine-ripened tomatoes straight from the farm.",
		},
		{
			ID: "2", Name: "Organic Onions", Price: price(30), Unit: "kg",
			FarmerName: "Priya Sharma", Stock: 200, ImageRef: "/fresh-onions.jpg",
			Category: "vegetables", Rating: 4.2, Reviews: 18, Organic: true,
			Description: "Pungent red onions grown without synthetic fertilisers.",
		},
		{
			ID: "3", Name: "Fresh Spinach", Price: price(25), Unit: "bunch",
			FarmerName: "Amit Singh", Stock: 80, ImageRef: "/fresh-spinach-leaves.jpg",
			Category: "vegetables", Rating: 4.7, Reviews: 31,
			Description: "Tender spinach leaves harvested the same morning.",
		},
		{
			ID: "4", Name: "Organic Carrots", Price: price(35), Unit: "kg",
			FarmerName: "Sunita Devi", Stock: 120, ImageRef: "/fresh-orange-carrots.jpg",
			Category: "vegetables", Rating: 4.3, Reviews: 15, Organic: true,
			Description: "Sweet, crunchy carrots from certified organic fields.",
		},
		{
			ID: "5", Name: "Fresh Potatoes", Price: price(20), Unit: "kg",
			FarmerName: "Ramesh Patel", Stock: 300, ImageRef: "/fresh-potatoes.jpg",
			Category: "vegetables", Rating: 4.1, Reviews: 42,
			Description: "All-purpose potatoes, ideal for curries and frying.",
		},
		{
			ID: "6", Name: "Green Capsicum", Price: price(60), Unit: "kg",
			FarmerName: "Meera Joshi", Stock: 90, ImageRef: "/green-bell-peppers.jpg",
			Category: "vegetables", Rating: 4.4, Reviews: 27, Organic: true,
			Description: "Crisp green capsicum picked at peak freshness.",
		},
		{
			ID: "7", Name: "Fresh Apples", Price: price(120), Unit: "kg",
			FarmerName: "Vikram Singh", Stock: 75, ImageRef: "/fresh-red-apples.jpg",
			Category: "fruits", Rating: 4.6, Reviews: 35, Organic: true,
			Description: "Crunchy hill apples with a natural sweet-tart balance.",
		},
		{
			ID: "8", Name: "Organic Bananas", Price: price(40), Unit: "dozen",
			FarmerName: "Lakshmi Devi", Stock: 150, ImageRef: "/fresh-bananas.jpg",
			Category: "fruits", Rating: 4.3, Reviews: 28, Organic: true,
			Description: "Naturally ripened bananas from organic plantations.",
		},
	}
}

func marketplaceCategories(products []domain.Product) []Category {
	counts := make(map[string]int, len(products))
	for _, p := range products {
		counts[p.Category]++
	}
	categories := []Category{
		{ID: "vegetables", Name: "Vegetables", Icon: "🥬"},
		{ID: "fruits", Name: "Fruits", Icon: "🍎"},
		{ID: "grains", Name: "Grains & Cereals", Icon: "🌾"},
		{ID: "dairy", Name: "Dairy Products", Icon: "🥛"},
		{ID: "spices", Name: "Spices & Herbs", Icon: "🌶️"},
		{ID: "pulses", Name: "Pulses & Lentils", Icon: "🫘"},
	}
	for i := range categories {
		categories[i].Count = counts[categories[i].ID]
	}
	return categories
}
