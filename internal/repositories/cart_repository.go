package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/sacchabazaar/api/internal/domain"
	"github.com/sacchabazaar/api/internal/platform/kv"
)

const cartKeyPrefix = "cart/"

// cartLineDocument is the persisted shape of one cart line. Field names
// reproduce the storefront's storage schema; prices accept both quoted and
// bare JSON numbers on load.
type cartLineDocument struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Unit     string          `json:"unit"`
	Farmer   string          `json:"farmer"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
	Stock    int             `json:"stock"`
	Organic  bool            `json:"organic,omitempty"`
	Category string          `json:"category"`
}

// KVCartRepository stores the cart line array as a single JSON document per owner.
type KVCartRepository struct {
	store kv.Store
}

// NewCartRepository constructs a kv-backed cart repository.
func NewCartRepository(store kv.Store) (*KVCartRepository, error) {
	if store == nil {
		return nil, errors.New("cart repository requires a kv store")
	}
	return &KVCartRepository{store: store}, nil
}

// GetCart loads the persisted cart for the owner. A malformed document is
// deleted and reported as not found so callers fall back to an empty cart.
func (r *KVCartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	key := cartKey(ownerID)
	data, err := r.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return domain.Cart{}, NewNotFoundError(key)
		}
		return domain.Cart{}, NewUnavailableError(key, err)
	}

	var docs []cartLineDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		_ = r.store.Delete(ctx, key)
		return domain.Cart{}, NewNotFoundError(key)
	}

	lines := make([]domain.CartLine, 0, len(docs))
	for _, doc := range docs {
		lines = append(lines, domain.CartLine{
			ProductID:  doc.ID,
			Name:       doc.Name,
			UnitPrice:  doc.Price,
			Unit:       doc.Unit,
			FarmerName: doc.Farmer,
			ImageRef:   doc.Image,
			Quantity:   doc.Quantity,
			StockLimit: doc.Stock,
			Organic:    doc.Organic,
			Category:   doc.Category,
		})
	}

	return domain.Cart{OwnerID: strings.TrimSpace(ownerID), Lines: lines, UpdatedAt: time.Now().UTC()}, nil
}

// SaveCart persists the full line list, replacing the previous document.
func (r *KVCartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	key := cartKey(cart.OwnerID)

	docs := make([]cartLineDocument, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		docs = append(docs, cartLineDocument{
			ID:       line.ProductID,
			Name:     line.Name,
			Price:    line.UnitPrice,
			Unit:     line.Unit,
			Farmer:   line.FarmerName,
			Image:    line.ImageRef,
			Quantity: line.Quantity,
			Stock:    line.StockLimit,
			Organic:  line.Organic,
			Category: line.Category,
		})
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

// DeleteCart removes the persisted cart entirely.
func (r *KVCartRepository) DeleteCart(ctx context.Context, ownerID string) error {
	key := cartKey(ownerID)
	if err := r.store.Delete(ctx, key); err != nil {
		return NewUnavailableError(key, err)
	}
	return nil
}

func cartKey(ownerID string) string {
	return cartKeyPrefix + strings.TrimSpace(ownerID)
}
