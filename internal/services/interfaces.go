package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/sacchabazaar/api/internal/domain"
)

// Cart aggregates the persisted line list with its derived totals.
type Cart struct {
	OwnerID   string
	Lines     []domain.CartLine
	Totals    domain.CartTotals
	UpdatedAt time.Time
}

// AddItemCommand describes an add-to-cart request resolved against the catalogue.
type AddItemCommand struct {
	OwnerID  string
	Product  domain.Product
	Quantity int
}

// CartService maintains the authoritative cart per owner. Its mutation
// operations follow the storefront's lenient contract: quantity and stock
// violations clamp silently and unknown product ids are no-ops; only
// persistence-layer failures surface as errors.
type CartService interface {
	GetCart(ctx context.Context, ownerID string) (Cart, error)
	AddItem(ctx context.Context, cmd AddItemCommand) (Cart, error)
	SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (Cart, error)
	RemoveItem(ctx context.Context, ownerID, productID string) (Cart, error)
	ClearCart(ctx context.Context, ownerID string) (Cart, error)
}

// DeliveryQuoter is the single source of the delivery fee decision, consumed
// by both cart totals and the checkout summary.
type DeliveryQuoter interface {
	Quote(subtotal decimal.Decimal) domain.DeliveryQuote
}

// LoginCommand carries the fabricated user data submitted at login. Missing
// derived fields (id, display name, creation time) are filled with defaults.
type LoginCommand struct {
	ID          string
	Email       string
	Role        domain.Role
	FirstName   string
	LastName    string
	DisplayName string
	Mobile      string
	Avatar      string
	Verified    bool
	CreatedAt   time.Time
}

// LoginResult pairs the stored record with the minted session token.
type LoginResult struct {
	User         domain.UserRecord
	SessionToken string
}

// UpdateUserCommand merges the non-nil fields into the current record.
type UpdateUserCommand struct {
	Email       *string
	Role        *domain.Role
	FirstName   *string
	LastName    *string
	DisplayName *string
	Mobile      *string
	Avatar      *string
	Verified    *bool
}

// ProfileService owns the single active user record per owner.
type ProfileService interface {
	Login(ctx context.Context, cmd LoginCommand) (LoginResult, error)
	Logout(ctx context.Context, ownerID string) error
	CurrentUser(ctx context.Context, ownerID string) (domain.UserRecord, error)
	UpdateUser(ctx context.Context, ownerID string, cmd UpdateUserCommand) (domain.UserRecord, error)
}

// AddNotificationCommand describes a new message queued for the owner.
type AddNotificationCommand struct {
	OwnerID    string
	Severity   domain.Severity
	Title      string
	Body       string
	ActionLink string
	ActionText string
}

// NotificationService owns the insertion-ordered, newest-first message list
// per owner. Mutations on unknown ids are silent no-ops.
type NotificationService interface {
	List(ctx context.Context, ownerID string) ([]domain.Notification, error)
	Add(ctx context.Context, cmd AddNotificationCommand) (domain.Notification, error)
	MarkRead(ctx context.Context, ownerID, notificationID string) error
	MarkAllRead(ctx context.Context, ownerID string) error
	Remove(ctx context.Context, ownerID, notificationID string) error
	ClearAll(ctx context.Context, ownerID string) error
	UnreadCount(ctx context.Context, ownerID string) (int, error)
}

// Category is one of the browseable product groupings.
type Category struct {
	ID    string
	Name  string
	Icon  string
	Count int
}

// CatalogService serves the static produce catalogue.
type CatalogService interface {
	ListProducts(ctx context.Context, category string) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	Categories(ctx context.Context) ([]Category, error)
}

// CheckoutOptions lists the fixed delivery slots and payment methods offered
// at checkout.
type CheckoutOptions struct {
	DeliverySlots  []domain.DeliverySlot
	PaymentMethods []domain.PaymentOption
}

// PlaceOrderCommand carries the checkout selections for the owner's cart.
type PlaceOrderCommand struct {
	OwnerID       string
	DeliverySlot  string
	PaymentMethod string
	Notes         string
}

// CheckoutService builds the order payload from cart state and submits it
// through the commerce backend.
type CheckoutService interface {
	Options(ctx context.Context) (CheckoutOptions, error)
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.OrderConfirmation, error)
}

// CommerceBackend is the externally-injected capability that accepts orders.
type CommerceBackend interface {
	PlaceOrder(ctx context.Context, order domain.Order) (domain.OrderConfirmation, error)
}

// QRToken is a provenance token minted for a catalogue product.
type QRToken struct {
	ProductID string
	Token     string
	IssuedAt  time.Time
}

// GenerateTokenCommand mints a provenance token on behalf of a seller.
type GenerateTokenCommand struct {
	OwnerID   string
	ProductID string
}

// ProvenanceService mints QR provenance tokens and serves the farm-to-shelf
// journey for traced products.
type ProvenanceService interface {
	GenerateToken(ctx context.Context, cmd GenerateTokenCommand) (QRToken, error)
	Trail(ctx context.Context, productID string) (domain.ProvenanceTrail, error)
}
