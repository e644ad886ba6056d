package services

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/sacchabazaar/api/internal/domain"
)

var (
	// ErrCheckoutInvalidInput indicates the selections were malformed.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCheckoutEmptyCart indicates there is nothing to order.
	ErrCheckoutEmptyCart = errors.New("checkout: cart is empty")
	// ErrCheckoutUnauthenticated indicates no user record exists for the owner.
	ErrCheckoutUnauthenticated = errors.New("checkout: not logged in")
	// ErrCheckoutUnavailable indicates the order could not be submitted.
	ErrCheckoutUnavailable = errors.New("checkout: temporarily unavailable")
)

// CheckoutServiceDeps lists the dependencies required by the checkout service.
type CheckoutServiceDeps struct {
	Carts         CartService
	Profiles      ProfileService
	Notifications NotificationService
	Backend       CommerceBackend
	Clock         func() time.Time
	Logger        func(ctx context.Context, msg string, fields map[string]any)
}

type checkoutService struct {
	carts         CartService
	profiles      ProfileService
	notifications NotificationService
	backend       CommerceBackend
	clock         func() time.Time
	logger        func(ctx context.Context, msg string, fields map[string]any)
}

// NewCheckoutService validates dependencies and returns a CheckoutService.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Carts == nil {
		return nil, errors.New("checkout service requires a cart service")
	}
	if deps.Profiles == nil {
		return nil, errors.New("checkout service requires a profile service")
	}
	if deps.Notifications == nil {
		return nil, errors.New("checkout service requires a notification service")
	}
	if deps.Backend == nil {
		return nil, errors.New("checkout service requires a commerce backend")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	return &checkoutService{
		carts:         deps.Carts,
		profiles:      deps.Profiles,
		notifications: deps.Notifications,
		backend:       deps.Backend,
		clock:         deps.Clock,
		logger:        deps.Logger,
	}, nil
}

func (s *checkoutService) Options(ctx context.Context) (CheckoutOptions, error) {
	return CheckoutOptions{
		DeliverySlots:  deliverySlots(),
		PaymentMethods: paymentMethods(),
	}, nil
}

// PlaceOrder snapshots the cart into an order, submits it through the
// commerce backend, then clears the cart and queues a confirmation
// notification.
func (s *checkoutService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.OrderConfirmation, error) {
	cmd.OwnerID = strings.TrimSpace(cmd.OwnerID)
	if cmd.OwnerID == "" {
		return domain.OrderConfirmation{}, ErrCheckoutInvalidInput
	}
	slot, ok := findSlot(cmd.DeliverySlot)
	if !ok || !slot.Available {
		return domain.OrderConfirmation{}, ErrCheckoutInvalidInput
	}
	if _, ok := findPaymentMethod(cmd.PaymentMethod); !ok {
		return domain.OrderConfirmation{}, ErrCheckoutInvalidInput
	}

	if _, err := s.profiles.CurrentUser(ctx, cmd.OwnerID); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return domain.OrderConfirmation{}, ErrCheckoutUnauthenticated
		}
		return domain.OrderConfirmation{}, ErrCheckoutUnavailable
	}

	cart, err := s.carts.GetCart(ctx, cmd.OwnerID)
	if err != nil {
		return domain.OrderConfirmation{}, ErrCheckoutUnavailable
	}
	if len(cart.Lines) == 0 {
		return domain.OrderConfirmation{}, ErrCheckoutEmptyCart
	}

	order := domain.Order{
		OwnerID:       cmd.OwnerID,
		Lines:         orderLines(cart.Lines),
		Totals:        cart.Totals,
		DeliverySlot:  slot.ID,
		PaymentMethod: cmd.PaymentMethod,
		PlacedAt:      s.clock().UTC(),
	}

	confirmation, err := s.backend.PlaceOrder(ctx, order)
	if err != nil {
		s.logger(ctx, "order submission failed", map[string]any{"error": err.Error()})
		return domain.OrderConfirmation{}, ErrCheckoutUnavailable
	}

	if _, err := s.carts.ClearCart(ctx, cmd.OwnerID); err != nil {
		s.logger(ctx, "cart clear after order failed", map[string]any{"error": err.Error()})
	}

	_, err = s.notifications.Add(ctx, AddNotificationCommand{
		OwnerID:    cmd.OwnerID,
		Severity:   domain.SeveritySuccess,
		Title:      "Order Placed",
		Body:       "Your order " + confirmation.OrderNumber + " has been placed successfully.",
		ActionLink: "/orders",
		ActionText: "Track Order",
	})
	if err != nil {
		s.logger(ctx, "order notification failed", map[string]any{"error": err.Error()})
	}

	s.logger(ctx, "order placed", map[string]any{
		"items":   order.Totals.ItemCount,
		"payment": order.PaymentMethod,
	})
	return confirmation, nil
}

func orderLines(lines []domain.CartLine) []domain.OrderLine {
	out := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, domain.OrderLine{
			ProductID:  line.ProductID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Unit:       line.Unit,
			FarmerName: line.FarmerName,
			Quantity:   line.Quantity,
		})
	}
	return out
}

func deliverySlots() []domain.DeliverySlot {
	return []domain.DeliverySlot{
		{ID: "morning", Label: "Morning (8 AM - 12 PM)", Available: true},
		{ID: "afternoon", Label: "Afternoon (12 PM - 4 PM)", Available: true},
		{ID: "evening", Label: "Evening (4 PM - 8 PM)", Available: false},
	}
}

func paymentMethods() []domain.PaymentOption {
	return []domain.PaymentOption{
		{ID: "cod", Label: "Cash on Delivery"},
		{ID: "upi", Label: "UPI Payment"},
		{ID: "card", Label: "Credit/Debit Card"},
		{ID: "wallet", Label: "Digital Wallet"},
	}
}

func findSlot(id string) (domain.DeliverySlot, bool) {
	for _, slot := range deliverySlots() {
		if slot.ID == id {
			return slot, true
		}
	}
	return domain.DeliverySlot{}, false
}

func findPaymentMethod(id string) (domain.PaymentOption, bool) {
	for _, method := range paymentMethods() {
		if method.ID == id {
			return method, true
		}
	}
	return domain.PaymentOption{}, false
}
