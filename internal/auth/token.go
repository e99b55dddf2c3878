package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// DefaultSessionTTL is used when Issue is called without a positive ttl.
const DefaultSessionTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidToken is the only error Verify returns. Malformed, forged and
	// expired tokens are not distinguished.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidClaims is returned by Issue for an identity without subject or email.
	ErrInvalidClaims = errors.New("session claims require subject id and email")
	// ErrMissingSecret is returned when the service is built without a signing secret.
	ErrMissingSecret = errors.New("session secret is required")
)

// Session is the verified content of a session token.
type Session struct {
	Identity  domain.Identity
	ExpiresAt time.Time
	// Digest is the hex HMAC carried by the token. It identifies the token
	// for revocation.
	Digest string
}

// tokenPayload is the signed claim set. Field order is fixed by the struct,
// so the same claims always serialize to the same bytes.
type tokenPayload struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Exp   int64  `json:"exp,omitempty"`
}

// tokenEnvelope carries the serialized payload next to its hex digest.
type tokenEnvelope struct {
	Data string `json:"data"`
	Hash string `json:"hash"`
}

// TokenService issues and verifies stateless session tokens.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithDefaultTTL overrides the lifetime used when Issue receives ttl <= 0.
func WithDefaultTTL(ttl time.Duration) TokenOption {
	return func(ts *TokenService) {
		if ttl > 0 {
			ts.defaultTTL = ttl
		}
	}
}

// NewTokenService builds a service keyed by secret.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	ts := &TokenService{
		secret:     []byte(secret),
		defaultTTL: DefaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts, nil
}

// DefaultTTL returns the lifetime applied when Issue gets no ttl.
func (ts *TokenService) DefaultTTL() time.Duration {
	return ts.defaultTTL
}

// Issue signs a token for identity that expires after ttl.
func (ts *TokenService) Issue(identity domain.Identity, ttl time.Duration) (string, time.Time, error) {
	if !identity.Valid() {
		return "", time.Time{}, ErrInvalidClaims
	}
	if ttl <= 0 {
		ttl = ts.defaultTTL
	}

	exp := ts.now().Add(ttl).UnixMilli()
	data, err := json.Marshal(tokenPayload{
		ID:    identity.SubjectID,
		Email: identity.Email,
		Exp:   exp,
	})
	if err != nil {
		return "", time.Time{}, err
	}

	envelope, err := json.Marshal(tokenEnvelope{
		Data: string(data),
		Hash: ts.sign(data),
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return base64.StdEncoding.EncodeToString(envelope), time.UnixMilli(exp).UTC(), nil
}

// Verify returns the session carried by token, or ErrInvalidToken.
func (ts *TokenService) Verify(token string) (*Session, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var envelope tokenEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, ErrInvalidToken
	}
	if envelope.Data == "" || envelope.Hash == "" {
		return nil, ErrInvalidToken
	}

	expected := ts.sign([]byte(envelope.Data))
	if !hmac.Equal([]byte(expected), []byte(envelope.Hash)) {
		return nil, ErrInvalidToken
	}

	var payload tokenPayload
	if err := json.Unmarshal([]byte(envelope.Data), &payload); err != nil {
		return nil, ErrInvalidToken
	}
	identity := domain.Identity{SubjectID: payload.ID, Email: payload.Email}
	if !identity.Valid() {
		return nil, ErrInvalidToken
	}

	session := &Session{Identity: identity, Digest: envelope.Hash}
	if payload.Exp != 0 {
		session.ExpiresAt = time.UnixMilli(payload.Exp).UTC()
		if !ts.now().Before(session.ExpiresAt) {
			return nil, ErrInvalidToken
		}
	}
	return session, nil
}

func (ts *TokenService) sign(data []byte) string {
	mac := hmac.New(sha256.New, ts.secret)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}
