package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/sacchabazaar/api/internal/domain"
	"github.com/sacchabazaar/api/internal/repositories"
)

var (
	// ErrCartInvalidInput indicates the request was malformed.
	ErrCartInvalidInput = errors.New("cart: invalid input")
	// ErrCartUnavailable indicates the cart store could not be reached.
	ErrCartUnavailable = errors.New("cart: temporarily unavailable")
)

// CartServiceDeps lists the dependencies required by the cart service.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Quoter     DeliveryQuoter
	Clock      func() time.Time
	Logger     func(ctx context.Context, msg string, fields map[string]any)
}

type cartService struct {
	repo   repositories.CartRepository
	quoter DeliveryQuoter
	clock  func() time.Time
	logger func(ctx context.Context, msg string, fields map[string]any)
}

// NewCartService validates dependencies and returns a CartService.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errors.New("cart service requires a repository")
	}
	if deps.Quoter == nil {
		return nil, errors.New("cart service requires a delivery quoter")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	return &cartService{
		repo:   deps.Repository,
		quoter: deps.Quoter,
		clock:  deps.Clock,
		logger: deps.Logger,
	}, nil
}

func (s *cartService) GetCart(ctx context.Context, ownerID string) (Cart, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Cart{}, ErrCartInvalidInput
	}
	cart, err := s.load(ctx, ownerID)
	if err != nil {
		return Cart{}, err
	}
	return s.view(cart), nil
}

func (s *cartService) AddItem(ctx context.Context, cmd AddItemCommand) (Cart, error) {
	cmd.OwnerID = strings.TrimSpace(cmd.OwnerID)
	cmd.Product.ID = strings.TrimSpace(cmd.Product.ID)
	if cmd.OwnerID == "" || cmd.Product.ID == "" {
		return Cart{}, ErrCartInvalidInput
	}
	if cmd.Quantity < 1 {
		cmd.Quantity = 1
	}

	cart, err := s.load(ctx, cmd.OwnerID)
	if err != nil {
		return Cart{}, err
	}

	merged := false
	for i := range cart.Lines {
		if cart.Lines[i].ProductID != cmd.Product.ID {
			continue
		}
		cart.Lines[i].StockLimit = cmd.Product.Stock
		cart.Lines[i].Quantity = clampQuantity(cart.Lines[i].Quantity+cmd.Quantity, cmd.Product.Stock)
		if cart.Lines[i].Quantity < 1 {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
		}
		merged = true
		break
	}
	if !merged {
		quantity := clampQuantity(cmd.Quantity, cmd.Product.Stock)
		if quantity >= 1 {
			cart.Lines = append(cart.Lines, domain.CartLine{
				ProductID:  cmd.Product.ID,
				Name:       cmd.Product.Name,
				UnitPrice:  cmd.Product.Price,
				Unit:       cmd.Product.Unit,
				FarmerName: cmd.Product.FarmerName,
				ImageRef:   cmd.Product.ImageRef,
				Quantity:   quantity,
				StockLimit: cmd.Product.Stock,
				Organic:    cmd.Product.Organic,
				Category:   cmd.Product.Category,
			})
		}
	}

	return s.persist(ctx, cart)
}

func (s *cartService) SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (Cart, error) {
	ownerID = strings.TrimSpace(ownerID)
	productID = strings.TrimSpace(productID)
	if ownerID == "" || productID == "" {
		return Cart{}, ErrCartInvalidInput
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, ownerID, productID)
	}

	cart, err := s.load(ctx, ownerID)
	if err != nil {
		return Cart{}, err
	}
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines[i].Quantity = clampQuantity(quantity, cart.Lines[i].StockLimit)
			break
		}
	}
	return s.persist(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, ownerID, productID string) (Cart, error) {
	ownerID = strings.TrimSpace(ownerID)
	productID = strings.TrimSpace(productID)
	if ownerID == "" || productID == "" {
		return Cart{}, ErrCartInvalidInput
	}

	cart, err := s.load(ctx, ownerID)
	if err != nil {
		return Cart{}, err
	}
	kept := cart.Lines[:0]
	for _, line := range cart.Lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	cart.Lines = kept
	return s.persist(ctx, cart)
}

func (s *cartService) ClearCart(ctx context.Context, ownerID string) (Cart, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Cart{}, ErrCartInvalidInput
	}
	cart := domain.Cart{OwnerID: ownerID, Lines: []domain.CartLine{}}
	return s.persist(ctx, cart)
}

// load falls back to an empty cart when nothing was persisted yet.
func (s *cartService) load(ctx context.Context, ownerID string) (domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, ownerID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Cart{OwnerID: ownerID, Lines: []domain.CartLine{}}, nil
		}
		s.logger(ctx, "cart load failed", map[string]any{"error": err.Error()})
		return domain.Cart{}, ErrCartUnavailable
	}
	cart.Lines = normaliseLines(cart.Lines)
	return cart, nil
}

func (s *cartService) persist(ctx context.Context, cart domain.Cart) (Cart, error) {
	cart.UpdatedAt = s.clock().UTC()
	if err := s.repo.SaveCart(ctx, cart); err != nil {
		s.logger(ctx, "cart save failed", map[string]any{"error": err.Error()})
		return Cart{}, ErrCartUnavailable
	}
	return s.view(cart), nil
}

func (s *cartService) view(cart domain.Cart) Cart {
	subtotal := decimal.Zero
	count := 0
	for _, line := range cart.Lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		count += line.Quantity
	}
	quote := s.quoter.Quote(subtotal)
	return Cart{
		OwnerID: cart.OwnerID,
		Lines:   cart.Lines,
		Totals: domain.CartTotals{
			ItemCount:   count,
			Subtotal:    subtotal,
			DeliveryFee: quote.Fee,
			GrandTotal:  subtotal.Add(quote.Fee),
			Currency:    quote.Currency,
		},
		UpdatedAt: cart.UpdatedAt,
	}
}

// normaliseLines re-establishes the quantity bounds on restored documents:
// lines below one unit drop out, lines above their stock limit clamp down.
func normaliseLines(lines []domain.CartLine) []domain.CartLine {
	kept := make([]domain.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 || strings.TrimSpace(line.ProductID) == "" {
			continue
		}
		line.Quantity = clampQuantity(line.Quantity, line.StockLimit)
		if line.Quantity < 1 {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func clampQuantity(quantity, stock int) int {
	if quantity > stock {
		return stock
	}
	return quantity
}
