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
	// ErrProfileInvalidInput indicates the request was malformed.
	ErrProfileInvalidInput = errors.New("profile: invalid input")
	// ErrProfileNotFound indicates no user record exists for the owner.
	ErrProfileNotFound = errors.New("profile: not found")
	// ErrProfileUnavailable indicates the user store could not be reached.
	ErrProfileUnavailable = errors.New("profile: temporarily unavailable")
)

// SessionMinter issues session tokens for authenticated owners.
type SessionMinter interface {
	Mint(uid, role string) (string, error)
}

// ProfileServiceDeps lists the dependencies required by the profile service.
type ProfileServiceDeps struct {
	Repository  repositories.UserRepository
	Sessions    SessionMinter
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, msg string, fields map[string]any)
}

type profileService struct {
	repo     repositories.UserRepository
	sessions SessionMinter
	clock    func() time.Time
	newID    func() string
	logger   func(ctx context.Context, msg string, fields map[string]any)
}

// NewProfileService validates dependencies and returns a ProfileService.
func NewProfileService(deps ProfileServiceDeps) (ProfileService, error) {
	if deps.Repository == nil {
		return nil, errors.New("profile service requires a repository")
	}
	if deps.Sessions == nil {
		return nil, errors.New("profile service requires a session minter")
	}
	if deps.IDGenerator == nil {
		return nil, errors.New("profile service requires an id generator")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	return &profileService{
		repo:     deps.Repository,
		sessions: deps.Sessions,
		clock:    deps.Clock,
		newID:    deps.IDGenerator,
		logger:   deps.Logger,
	}, nil
}

// Login accepts whatever identity the caller submits, fills the derived
// fields, persists the record and mints a session token. No credential is
// checked; the storefront fabricates its accounts.
func (s *profileService) Login(ctx context.Context, cmd LoginCommand) (LoginResult, error) {
	email := strings.TrimSpace(cmd.Email)
	if email == "" {
		return LoginResult{}, ErrProfileInvalidInput
	}
	role := cmd.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !domain.KnownRole(role) {
		return LoginResult{}, ErrProfileInvalidInput
	}

	user := domain.UserRecord{
		ID:          strings.TrimSpace(cmd.ID),
		Email:       email,
		Role:        role,
		FirstName:   strings.TrimSpace(cmd.FirstName),
		LastName:    strings.TrimSpace(cmd.LastName),
		DisplayName: strings.TrimSpace(cmd.DisplayName),
		Mobile:      strings.TrimSpace(cmd.Mobile),
		Avatar:      strings.TrimSpace(cmd.Avatar),
		Verified:    cmd.Verified,
		CreatedAt:   cmd.CreatedAt,
	}
	if user.ID == "" {
		user.ID = "user_" + s.newID()
	}
	if user.DisplayName == "" {
		user.DisplayName = joinName(user.FirstName, user.LastName)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.clock().UTC()
	}

	if err := s.repo.SaveUser(ctx, user.ID, user); err != nil {
		s.logger(ctx, "user save failed", map[string]any{"error": err.Error()})
		return LoginResult{}, ErrProfileUnavailable
	}

	token, err := s.sessions.Mint(user.ID, string(user.Role))
	if err != nil {
		return LoginResult{}, ErrProfileUnavailable
	}

	s.logger(ctx, "user logged in", map[string]any{"role": string(user.Role)})
	return LoginResult{User: user, SessionToken: token}, nil
}

// Logout discards the persisted record for the owner.
func (s *profileService) Logout(ctx context.Context, ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrProfileInvalidInput
	}
	if err := s.repo.DeleteUser(ctx, ownerID); err != nil {
		s.logger(ctx, "user delete failed", map[string]any{"error": err.Error()})
		return ErrProfileUnavailable
	}
	return nil
}

// CurrentUser restores the record, migrating documents written by older
// storefront versions: a missing email invalidates the record entirely,
// other missing derived fields are backfilled and re-persisted.
func (s *profileService) CurrentUser(ctx context.Context, ownerID string) (domain.UserRecord, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.UserRecord{}, ErrProfileInvalidInput
	}

	user, err := s.repo.GetUser(ctx, ownerID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.UserRecord{}, ErrProfileNotFound
		}
		s.logger(ctx, "user load failed", map[string]any{"error": err.Error()})
		return domain.UserRecord{}, ErrProfileUnavailable
	}

	if strings.TrimSpace(user.Email) == "" {
		_ = s.repo.DeleteUser(ctx, ownerID)
		return domain.UserRecord{}, ErrProfileNotFound
	}

	migrated, changed := s.migrate(ownerID, user)
	if changed {
		if err := s.repo.SaveUser(ctx, ownerID, migrated); err != nil {
			s.logger(ctx, "user migration save failed", map[string]any{"error": err.Error()})
			return domain.UserRecord{}, ErrProfileUnavailable
		}
	}
	return migrated, nil
}

// UpdateUser merges the non-nil command fields into the stored record. When
// either name part changes the display name is recomputed from the parts.
func (s *profileService) UpdateUser(ctx context.Context, ownerID string, cmd UpdateUserCommand) (domain.UserRecord, error) {
	user, err := s.CurrentUser(ctx, ownerID)
	if err != nil {
		return domain.UserRecord{}, err
	}

	if cmd.Email != nil {
		email := strings.TrimSpace(*cmd.Email)
		if email == "" {
			return domain.UserRecord{}, ErrProfileInvalidInput
		}
		user.Email = email
	}
	if cmd.Role != nil {
		if !domain.KnownRole(*cmd.Role) {
			return domain.UserRecord{}, ErrProfileInvalidInput
		}
		user.Role = *cmd.Role
	}
	if cmd.FirstName != nil {
		user.FirstName = strings.TrimSpace(*cmd.FirstName)
	}
	if cmd.LastName != nil {
		user.LastName = strings.TrimSpace(*cmd.LastName)
	}
	if cmd.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*cmd.DisplayName)
	}
	if cmd.FirstName != nil || cmd.LastName != nil {
		user.DisplayName = joinName(user.FirstName, user.LastName)
	}
	if cmd.Mobile != nil {
		user.Mobile = strings.TrimSpace(*cmd.Mobile)
	}
	if cmd.Avatar != nil {
		user.Avatar = strings.TrimSpace(*cmd.Avatar)
	}
	if cmd.Verified != nil {
		user.Verified = *cmd.Verified
	}

	if err := s.repo.SaveUser(ctx, ownerID, user); err != nil {
		s.logger(ctx, "user save failed", map[string]any{"error": err.Error()})
		return domain.UserRecord{}, ErrProfileUnavailable
	}
	return user, nil
}

func (s *profileService) migrate(ownerID string, user domain.UserRecord) (domain.UserRecord, bool) {
	changed := false
	if strings.TrimSpace(user.ID) == "" {
		user.ID = ownerID
		changed = true
	}
	if !domain.KnownRole(user.Role) {
		user.Role = domain.RoleCustomer
		changed = true
	}
	if user.FirstName == "" && user.LastName == "" && user.DisplayName != "" {
		parts := strings.Fields(user.DisplayName)
		user.FirstName = parts[0]
		if len(parts) > 1 {
			user.LastName = strings.Join(parts[1:], " ")
		}
		changed = true
	}
	if user.DisplayName == "" {
		if name := joinName(user.FirstName, user.LastName); name != "" {
			user.DisplayName = name
			changed = true
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.clock().UTC()
		changed = true
	}
	return user, changed
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
