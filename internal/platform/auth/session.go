package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	sessionTokenVersion = "v1"
	defaultSessionTTL   = 30 * 24 * time.Hour
)

var (
	// ErrSessionTokenInvalid signals a malformed or tampered session token.
	ErrSessionTokenInvalid = errors.New("auth: session token invalid")
	// ErrSessionTokenExpired signals that the session token is past its expiry.
	ErrSessionTokenExpired = errors.New("auth: session token expired")
)

// SessionSigner mints and verifies the HMAC-signed session tokens handed out
// at login. There is no credential check behind them; the token only binds
// the fabricated user record to subsequent requests.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// SessionOption customises the signer.
type SessionOption func(*SessionSigner)

// WithSessionTTL overrides the token lifetime.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(s *SessionSigner) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSessionClock overrides the time source, primarily for tests.
func WithSessionClock(clock func() time.Time) SessionOption {
	return func(s *SessionSigner) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewSessionSigner constructs a signer from the shared signing secret.
func NewSessionSigner(secret string, opts ...SessionOption) (*SessionSigner, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: session signing secret is required")
	}

	signer := &SessionSigner{
		secret: []byte(secret),
		ttl:    defaultSessionTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(signer)
	}
	return signer, nil
}

// Mint produces a session token for the given user id and role.
// Token layout: v1.<base64url uid>.<base64url role>.<expiry unix>.<hex hmac>.
func (s *SessionSigner) Mint(uid, role string) (string, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", errors.New("auth: uid is required")
	}

	expiry := s.now().UTC().Add(s.ttl).Unix()
	encodedUID := base64.RawURLEncoding.EncodeToString([]byte(uid))
	encodedRole := base64.RawURLEncoding.EncodeToString([]byte(strings.TrimSpace(role)))
	payload := fmt.Sprintf("%s.%s.%s.%d", sessionTokenVersion, encodedUID, encodedRole, expiry)
	return payload + "." + s.sign(payload), nil
}

// Verify checks the token signature and expiry and returns the embedded identity.
func (s *SessionSigner) Verify(token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	parts := strings.Split(token, ".")
	if len(parts) != 5 || parts[0] != sessionTokenVersion {
		return nil, ErrSessionTokenInvalid
	}

	payload := strings.Join(parts[:4], ".")
	expected := s.sign(payload)
	if !hmac.Equal([]byte(expected), []byte(parts[4])) {
		return nil, ErrSessionTokenInvalid
	}

	expiry, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return nil, ErrSessionTokenInvalid
	}
	if s.now().UTC().Unix() >= expiry {
		return nil, ErrSessionTokenExpired
	}

	uidBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || len(uidBytes) == 0 {
		return nil, ErrSessionTokenInvalid
	}
	roleBytes, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrSessionTokenInvalid
	}

	return &Identity{UID: string(uidBytes), Role: string(roleBytes)}, nil
}

func (s *SessionSigner) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
