package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

const (
	// SessionCookieName carries the session token between browser and API.
	SessionCookieName = "token"

	identityKey = "auth_identity"
	sessionKey  = "auth_session"
)

var (
	// ErrAuthenticationRequired is returned when a request carries no credential.
	ErrAuthenticationRequired = apperrors.NewUnauthorized("authentication required")
	// ErrInvalidCredential is returned for any credential that does not verify.
	ErrInvalidCredential = apperrors.NewForbidden("invalid or expired token")
	// ErrAccessDenied is returned when the caller does not own the resource,
	// including when the resource does not exist.
	ErrAccessDenied = apperrors.NewForbidden("access denied: you are not the event owner")
)

// OwnershipChecker answers whether subjectID owns resourceID in one lookup.
type OwnershipChecker interface {
	IsOwner(ctx context.Context, resourceID, subjectID int64) (bool, error)
}

// RevocationStore records sessions ended before their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, digest string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, digest string) (bool, error)
}

// Guard authenticates requests and enforces resource ownership.
type Guard struct {
	tokens      *TokenService
	ownership   OwnershipChecker
	revocations RevocationStore
	logger      *zap.Logger
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithRevocations makes Authenticate reject revoked sessions.
func WithRevocations(store RevocationStore) GuardOption {
	return func(g *Guard) {
		g.revocations = store
	}
}

// WithLogger sets the logger used for rejected requests.
func WithLogger(logger *zap.Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGuard constructs the guard.
func NewGuard(tokens *TokenService, ownership OwnershipChecker, opts ...GuardOption) *Guard {
	g := &Guard{tokens: tokens, ownership: ownership, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ExtractCredential returns the session token from the cookie or, failing
// that, from a bearer Authorization header.
func ExtractCredential(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookieName); token != "" {
		return token
	}
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate verifies credential and returns its session.
func (g *Guard) Authenticate(ctx context.Context, credential string) (*Session, error) {
	if credential == "" {
		return nil, ErrAuthenticationRequired
	}
	session, err := g.tokens.Verify(credential)
	if err != nil {
		return nil, ErrInvalidCredential
	}
	if g.revocations != nil {
		revoked, err := g.revocations.IsRevoked(ctx, session.Digest)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidCredential
		}
	}
	return session, nil
}

// RequireAuthenticated rejects requests without a valid session and stores
// the caller identity for downstream handlers.
func (g *Guard) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := g.Authenticate(c.UserContext(), ExtractCredential(c))
		if err != nil {
			g.logger.Debug("authentication rejected", zap.String("path", c.Path()), zap.Error(err))
			return err
		}
		c.Locals(sessionKey, session)
		c.Locals(identityKey, session.Identity)
		return c.Next()
	}
}

// CheckOwnership returns ErrAccessDenied unless subjectID owns resourceID.
// A missing resource is reported the same way as one owned by someone else.
func (g *Guard) CheckOwnership(ctx context.Context, resourceID, subjectID int64) error {
	owned, err := g.ownership.IsOwner(ctx, resourceID, subjectID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrAccessDenied
	}
	return nil
}

// RequireOwnership guards routes whose path parameter param names a resource
// the caller must own. It must run after RequireAuthenticated.
func (g *Guard) RequireOwnership(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return ErrAuthenticationRequired
		}
		resourceID, err := strconv.ParseInt(c.Params(param), 10, 64)
		if err != nil || resourceID <= 0 {
			return ErrAccessDenied
		}
		if err := g.CheckOwnership(c.UserContext(), resourceID, identity.SubjectID); err != nil {
			g.logger.Debug("ownership rejected",
				zap.Int64("resource_id", resourceID),
				zap.Int64("subject_id", identity.SubjectID),
				zap.Error(err))
			return err
		}
		return c.Next()
	}
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	if !ok || !identity.Valid() {
		return domain.Identity{}, false
	}
	return identity, true
}

// SessionFromContext retrieves the verified session of the caller.
func SessionFromContext(c *fiber.Ctx) (*Session, bool) {
	session, ok := c.Locals(sessionKey).(*Session)
	return session, ok && session != nil
}
