package services

import (
	"context"
	"errors"
	"time"

	domain "github.com/sacchabazaar/api/internal/domain"
)

// SimulatedBackendDeps lists the dependencies of the simulated commerce backend.
type SimulatedBackendDeps struct {
	// ConfirmDelay is how long the backend pretends to process an order
	// before confirming it.
	ConfirmDelay time.Duration
	Clock        func() time.Time
	IDGenerator  func() string
}

// simulatedCommerceBackend confirms every order after a fixed processing
// delay. It stands in for a real order pipeline; nothing is shipped.
type simulatedCommerceBackend struct {
	delay time.Duration
	clock func() time.Time
	newID func() string
}

// NewSimulatedCommerceBackend validates dependencies and returns a CommerceBackend.
func NewSimulatedCommerceBackend(deps SimulatedBackendDeps) (CommerceBackend, error) {
	if deps.IDGenerator == nil {
		return nil, errors.New("simulated commerce backend requires an id generator")
	}
	if deps.ConfirmDelay < 0 {
		return nil, errors.New("simulated commerce backend requires a non-negative confirm delay")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &simulatedCommerceBackend{
		delay: deps.ConfirmDelay,
		clock: deps.Clock,
		newID: deps.IDGenerator,
	}, nil
}

// PlaceOrder waits out the processing delay and confirms. The delay always
// runs to completion; a cancelled context does not abort the order.
func (b *simulatedCommerceBackend) PlaceOrder(ctx context.Context, order domain.Order) (domain.OrderConfirmation, error) {
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	return domain.OrderConfirmation{
		OrderNumber: "ORD" + b.newID(),
		ConfirmedAt: b.clock().UTC(),
	}, nil
}
