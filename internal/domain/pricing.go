package domain

import "github.com/shopspring/decimal"

// DeliveryPolicy is the threshold/fee pair governing the flat delivery charge.
// Delivery is free strictly above the threshold; at or below it the flat fee applies.
type DeliveryPolicy struct {
	FreeThreshold decimal.Decimal
	FlatFee       decimal.Decimal
	Currency      string
}

// DeliveryQuote records the outcome of applying a DeliveryPolicy to a subtotal.
type DeliveryQuote struct {
	Subtotal     decimal.Decimal
	Fee          decimal.Decimal
	FreeDelivery bool
	Currency     string
}
