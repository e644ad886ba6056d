package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/sacchabazaar/api/internal/domain"
)

var (
	// ErrProvenanceInvalidInput indicates the request was malformed.
	ErrProvenanceInvalidInput = errors.New("provenance: invalid input")
	// ErrProvenanceNotFound indicates the product is not in the catalogue.
	ErrProvenanceNotFound = errors.New("provenance: not found")
	// ErrProvenanceUnavailable indicates a downstream dependency failed.
	ErrProvenanceUnavailable = errors.New("provenance: temporarily unavailable")
)

// ProvenanceServiceDeps lists the dependencies required by the provenance service.
type ProvenanceServiceDeps struct {
	Catalog       CatalogService
	Notifications NotificationService
	Clock         func() time.Time
	// RandomSuffix supplies the uniqueness suffix appended to minted tokens.
	RandomSuffix func() string
	Logger       func(ctx context.Context, msg string, fields map[string]any)
}

type provenanceService struct {
	catalog       CatalogService
	notifications NotificationService
	clock         func() time.Time
	randomSuffix  func() string
	logger        func(ctx context.Context, msg string, fields map[string]any)
}

// NewProvenanceService validates dependencies and returns a ProvenanceService.
func NewProvenanceService(deps ProvenanceServiceDeps) (ProvenanceService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("provenance service requires a catalog service")
	}
	if deps.Notifications == nil {
		return nil, errors.New("provenance service requires a notification service")
	}
	if deps.RandomSuffix == nil {
		return nil, errors.New("provenance service requires a random suffix generator")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	return &provenanceService{
		catalog:       deps.Catalog,
		notifications: deps.Notifications,
		clock:         deps.Clock,
		randomSuffix:  deps.RandomSuffix,
		logger:        deps.Logger,
	}, nil
}

// GenerateToken mints a scannable token of the form
// <productID>_<unixMillis>_<suffix> and queues a confirmation for the seller.
func (s *provenanceService) GenerateToken(ctx context.Context, cmd GenerateTokenCommand) (QRToken, error) {
	cmd.OwnerID = strings.TrimSpace(cmd.OwnerID)
	cmd.ProductID = strings.TrimSpace(cmd.ProductID)
	if cmd.OwnerID == "" || cmd.ProductID == "" {
		return QRToken{}, ErrProvenanceInvalidInput
	}

	product, err := s.catalog.GetProduct(ctx, cmd.ProductID)
	if err != nil {
		return QRToken{}, ErrProvenanceNotFound
	}

	issuedAt := s.clock().UTC()
	token := QRToken{
		ProductID: product.ID,
		Token:     fmt.Sprintf("%s_%d_%s", product.ID, issuedAt.UnixMilli(), s.randomSuffix()),
		IssuedAt:  issuedAt,
	}

	_, err = s.notifications.Add(ctx, AddNotificationCommand{
		OwnerID:    cmd.OwnerID,
		Severity:   domain.SeveritySuccess,
		Title:      "QR Code Generated",
		Body:       "Your product QR code for " + product.Name + " has been generated successfully.",
		ActionLink: "/provenance",
		ActionText: "View QR Code",
	})
	if err != nil {
		s.logger(ctx, "token notification failed", map[string]any{"error": err.Error()})
	}

	return token, nil
}

// Trail returns the demo farm-to-shelf journey for a catalogue product. The
// origin and hops are fabricated; only the farmer name comes from the
// catalogue entry.
func (s *provenanceService) Trail(ctx context.Context, productID string) (domain.ProvenanceTrail, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ProvenanceTrail{}, ErrProvenanceInvalidInput
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.ProvenanceTrail{}, ErrProvenanceNotFound
	}

	now := s.clock().UTC()
	return domain.ProvenanceTrail{
		ProductID: product.ID,
		Token:     fmt.Sprintf("%s_%d_%s", product.ID, now.UnixMilli(), s.randomSuffix()),
		Origin: domain.FarmerOrigin{
			Name:     product.FarmerName,
			Location: "Lucknow, Uttar Pradesh",
			Earnings: decimal.NewFromInt(4500),
		},
		Steps: []domain.TrailStep{
			{
				Stage:      "Harvested",
				Actor:      product.FarmerName,
				Location:   "Lucknow, Uttar Pradesh",
				OccurredAt: now.AddDate(0, 0, -12),
			},
			{
				Stage:      "Sold to Aggregator",
				Actor:      "Amit Singh",
				Location:   "Kanpur, Uttar Pradesh",
				OccurredAt: now.AddDate(0, 0, -9),
			},
			{
				Stage:      "Sold to Customer",
				Actor:      "Priya Sharma",
				Location:   "Lucknow, Uttar Pradesh",
				OccurredAt: now,
			},
		},
	}, nil
}
