package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role enumerates the marketplace account types.
type Role string

const (
	// RoleCustomer identifies a buyer account.
	RoleCustomer Role = "customer"
	// RoleFarmer identifies a grower listing their own produce.
	RoleFarmer Role = "farmer"
	// RoleAggregator identifies a seller listing produce sourced from multiple farmers.
	RoleAggregator Role = "aggregator"
)

// KnownRole reports whether the supplied role is one of the supported account types.
func KnownRole(role Role) bool {
	switch role {
	case RoleCustomer, RoleFarmer, RoleAggregator:
		return true
	}
	return false
}

// UserRecord is the single active account record owned by the profile store.
type UserRecord struct {
	ID          string
	Email       string
	Role        Role
	FirstName   string
	LastName    string
	DisplayName string
	Mobile      string
	Avatar      string
	Verified    bool
	CreatedAt   time.Time
}

// CartLine is one product entry in the shopping cart with its selected quantity.
// Invariant: 1 <= Quantity <= StockLimit for every retained line.
type CartLine struct {
	ProductID  string
	Name       string
	UnitPrice  decimal.Decimal
	Unit       string
	FarmerName string
	ImageRef   string
	Quantity   int
	StockLimit int
	Organic    bool
	Category   string
}

// Cart is the ordered list of lines a user intends to purchase.
type Cart struct {
	OwnerID   string
	Lines     []CartLine
	UpdatedAt time.Time
}

// CartTotals carries the derived monetary summary of a cart.
type CartTotals struct {
	ItemCount   int
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	GrandTotal  decimal.Decimal
	Currency    string
}

// Severity classifies user-facing notification messages.
type Severity string

const (
	// SeveritySuccess marks a confirmation message.
	SeveritySuccess Severity = "success"
	// SeverityError marks a failure message.
	SeverityError Severity = "error"
	// SeverityInfo marks an informational message.
	SeverityInfo Severity = "info"
	// SeverityWarning marks a cautionary message.
	SeverityWarning Severity = "warning"
)

// KnownSeverity reports whether the severity is one of the supported values.
func KnownSeverity(s Severity) bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityInfo, SeverityWarning:
		return true
	}
	return false
}

// Notification is a transient, dismissible message surfaced to the user.
type Notification struct {
	ID         string
	Severity   Severity
	Title      string
	Body       string
	CreatedAt  time.Time
	Read       bool
	ActionLink string
	ActionText string
}

// Product describes a catalogue entry offered by a farmer or aggregator.
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Unit        string
	FarmerName  string
	Stock       int
	ImageRef    string
	Category    string
	Rating      float64
	Reviews     int
	Organic     bool
	Description string
}

// DeliverySlot is one of the fixed delivery windows offered at checkout.
type DeliverySlot struct {
	ID        string
	Label     string
	Available bool
}

// PaymentOption is one of the mock payment methods offered at checkout.
type PaymentOption struct {
	ID    string
	Label string
}

// OrderLine snapshots a cart line at the moment an order is placed.
type OrderLine struct {
	ProductID  string
	Name       string
	UnitPrice  decimal.Decimal
	Unit       string
	FarmerName string
	Quantity   int
}

// Order is the payload submitted to the commerce backend on checkout.
type Order struct {
	OwnerID       string
	Lines         []OrderLine
	Totals        CartTotals
	DeliverySlot  string
	PaymentMethod string
	PlacedAt      time.Time
}

// OrderConfirmation is returned by the commerce backend once an order is accepted.
type OrderConfirmation struct {
	OrderNumber string
	ConfirmedAt time.Time
}

// FarmerOrigin records where a traced product was grown.
type FarmerOrigin struct {
	Name     string
	Location string
	Earnings decimal.Decimal
}

// TrailStep records one hop of a product's farm-to-shelf journey.
type TrailStep struct {
	Stage      string
	Actor      string
	Location   string
	OccurredAt time.Time
}

// ProvenanceTrail is the mocked journey shown when a product QR token is scanned.
type ProvenanceTrail struct {
	ProductID string
	Token     string
	Origin    FarmerOrigin
	Steps     []TrailStep
}
