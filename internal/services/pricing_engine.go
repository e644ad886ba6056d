package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	domain "github.com/sacchabazaar/api/internal/domain"
)

var (
	errPricerThresholdNegative = errors.New("delivery pricer: free threshold must not be negative")
	errPricerFeeNegative       = errors.New("delivery pricer: flat fee must not be negative")
)

// DeliveryPricer applies the flat threshold/fee delivery policy. It is the
// only place the fee rule lives; cart totals and checkout both quote here.
type DeliveryPricer struct {
	policy domain.DeliveryPolicy
}

// NewDeliveryPricer validates the policy and constructs the pricer.
func NewDeliveryPricer(policy domain.DeliveryPolicy) (*DeliveryPricer, error) {
	if policy.FreeThreshold.IsNegative() {
		return nil, errPricerThresholdNegative
	}
	if policy.FlatFee.IsNegative() {
		return nil, errPricerFeeNegative
	}

	code := strings.ToUpper(strings.TrimSpace(policy.Currency))
	if code != "" {
		if _, err := currency.ParseISO(code); err != nil {
			return nil, errors.New("delivery pricer: currency must be a valid ISO code")
		}
	}
	policy.Currency = code

	return &DeliveryPricer{policy: policy}, nil
}

// Quote applies the policy to the subtotal. Delivery is free strictly above
// the threshold; at or below it the flat fee applies, including for an empty
// cart.
func (p *DeliveryPricer) Quote(subtotal decimal.Decimal) domain.DeliveryQuote {
	free := subtotal.GreaterThan(p.policy.FreeThreshold)
	fee := p.policy.FlatFee
	if free {
		fee = decimal.Zero
	}
	return domain.DeliveryQuote{
		Subtotal:     subtotal,
		Fee:          fee,
		FreeDelivery: free,
		Currency:     p.policy.Currency,
	}
}
