package services

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/sacchabazaar/api/internal/domain"
	"github.com/sacchabazaar/api/internal/repositories"
)

var (
	// ErrNotificationInvalidInput indicates the request was malformed.
	ErrNotificationInvalidInput = errors.New("notification: invalid input")
	// ErrNotificationUnavailable indicates the notification store could not be reached.
	ErrNotificationUnavailable = errors.New("notification: temporarily unavailable")
)

// NotificationServiceDeps lists the dependencies required by the notification service.
type NotificationServiceDeps struct {
	Repository  repositories.NotificationRepository
	Clock       func() time.Time
	IDGenerator func() string
	// SeedDemo populates a first-time owner with sample entries, mirroring
	// the storefront's demo data.
	SeedDemo bool
	Logger   func(ctx context.Context, msg string, fields map[string]any)
}

type notificationService struct {
	repo     repositories.NotificationRepository
	clock    func() time.Time
	newID    func() string
	seedDemo bool
	logger   func(ctx context.Context, msg string, fields map[string]any)
}

// NewNotificationService validates dependencies and returns a NotificationService.
func NewNotificationService(deps NotificationServiceDeps) (NotificationService, error) {
	if deps.Repository == nil {
		return nil, errors.New("notification service requires a repository")
	}
	if deps.IDGenerator == nil {
		return nil, errors.New("notification service requires an id generator")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	return &notificationService{
		repo:     deps.Repository,
		clock:    deps.Clock,
		newID:    deps.IDGenerator,
		seedDemo: deps.SeedDemo,
		logger:   deps.Logger,
	}, nil
}

func (s *notificationService) List(ctx context.Context, ownerID string) ([]domain.Notification, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrNotificationInvalidInput
	}
	return s.load(ctx, ownerID)
}

// Add prepends the new entry so the list stays newest-first.
func (s *notificationService) Add(ctx context.Context, cmd AddNotificationCommand) (domain.Notification, error) {
	cmd.OwnerID = strings.TrimSpace(cmd.OwnerID)
	cmd.Title = strings.TrimSpace(cmd.Title)
	if cmd.OwnerID == "" || cmd.Title == "" {
		return domain.Notification{}, ErrNotificationInvalidInput
	}
	if cmd.Severity == "" {
		cmd.Severity = domain.SeverityInfo
	}
	if !domain.KnownSeverity(cmd.Severity) {
		return domain.Notification{}, ErrNotificationInvalidInput
	}

	existing, err := s.load(ctx, cmd.OwnerID)
	if err != nil {
		return domain.Notification{}, err
	}

	entry := domain.Notification{
		ID:         "notification_" + s.newID(),
		Severity:   cmd.Severity,
		Title:      cmd.Title,
		Body:       strings.TrimSpace(cmd.Body),
		CreatedAt:  s.clock().UTC(),
		Read:       false,
		ActionLink: strings.TrimSpace(cmd.ActionLink),
		ActionText: strings.TrimSpace(cmd.ActionText),
	}

	updated := append([]domain.Notification{entry}, existing...)
	if err := s.persist(ctx, cmd.OwnerID, updated); err != nil {
		return domain.Notification{}, err
	}
	return entry, nil
}

func (s *notificationService) MarkRead(ctx context.Context, ownerID, notificationID string) error {
	ownerID = strings.TrimSpace(ownerID)
	notificationID = strings.TrimSpace(notificationID)
	if ownerID == "" || notificationID == "" {
		return ErrNotificationInvalidInput
	}
	notifications, err := s.load(ctx, ownerID)
	if err != nil {
		return err
	}
	for i := range notifications {
		if notifications[i].ID == notificationID {
			notifications[i].Read = true
		}
	}
	return s.persist(ctx, ownerID, notifications)
}

func (s *notificationService) MarkAllRead(ctx context.Context, ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrNotificationInvalidInput
	}
	notifications, err := s.load(ctx, ownerID)
	if err != nil {
		return err
	}
	for i := range notifications {
		notifications[i].Read = true
	}
	return s.persist(ctx, ownerID, notifications)
}

func (s *notificationService) Remove(ctx context.Context, ownerID, notificationID string) error {
	ownerID = strings.TrimSpace(ownerID)
	notificationID = strings.TrimSpace(notificationID)
	if ownerID == "" || notificationID == "" {
		return ErrNotificationInvalidInput
	}
	notifications, err := s.load(ctx, ownerID)
	if err != nil {
		return err
	}
	kept := notifications[:0]
	for _, n := range notifications {
		if n.ID != notificationID {
			kept = append(kept, n)
		}
	}
	return s.persist(ctx, ownerID, kept)
}

// ClearAll persists an empty list rather than deleting the key so demo
// entries are not re-seeded on the next load.
func (s *notificationService) ClearAll(ctx context.Context, ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrNotificationInvalidInput
	}
	return s.persist(ctx, ownerID, []domain.Notification{})
}

func (s *notificationService) UnreadCount(ctx context.Context, ownerID string) (int, error) {
	notifications, err := s.List(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range notifications {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// load returns the persisted list; a first-time owner is seeded with demo
// entries when seeding is enabled, otherwise gets an empty list.
func (s *notificationService) load(ctx context.Context, ownerID string) ([]domain.Notification, error) {
	notifications, err := s.repo.ListNotifications(ctx, ownerID)
	if err != nil {
		if repositories.IsNotFound(err) {
			if !s.seedDemo {
				return []domain.Notification{}, nil
			}
			seeded := s.demoNotifications()
			if err := s.persist(ctx, ownerID, seeded); err != nil {
				return nil, err
			}
			return seeded, nil
		}
		s.logger(ctx, "notification load failed", map[string]any{"error": err.Error()})
		return nil, ErrNotificationUnavailable
	}
	return notifications, nil
}

func (s *notificationService) persist(ctx context.Context, ownerID string, notifications []domain.Notification) error {
	if err := s.repo.SaveNotifications(ctx, ownerID, notifications); err != nil {
		s.logger(ctx, "notification save failed", map[string]any{"error": err.Error()})
		return ErrNotificationUnavailable
	}
	return nil
}

func (s *notificationService) demoNotifications() []domain.Notification {
	now := s.clock().UTC()
	return []domain.Notification{
		{
			ID:         "notification_" + s.newID(),
			Severity:   domain.SeveritySuccess,
			Title:      "QR Code Generated",
			Body:       "Your product QR code for Fresh Tomatoes has been generated successfully.",
			CreatedAt:  now.Add(-30 * time.Minute),
			ActionLink: "/provenance",
			ActionText: "View QR Code",
		},
		{
			ID:         "notification_" + s.newID(),
			Severity:   domain.SeverityInfo,
			Title:      "Order Update",
			Body:       "Your order of Organic Onions is out for delivery.",
			CreatedAt:  now.Add(-2 * time.Hour),
			ActionLink: "/orders",
			ActionText: "Track Order",
		},
		{
			ID:         "notification_" + s.newID(),
			Severity:   domain.SeverityWarning,
			Title:      "Low Stock Alert",
			Body:       "Fresh Spinach is running low. Restock soon to keep selling.",
			CreatedAt:  now.Add(-6 * time.Hour),
			Read:       true,
		},
	}
}
