package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// IssuedSession is a freshly signed session token.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration, login and logout flows.
type AuthService struct {
	users       repository.UserRepository
	tokens      *auth.TokenService
	revocations auth.RevocationStore
	bcryptCost  int
	sessionTTL  time.Duration
	logger      *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenService
	// Revocations is nil unless sessions are revoked on logout.
	Revocations auth.RevocationStore
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.UserRepo,
		tokens:      deps.Tokens,
		revocations: deps.Revocations,
		bcryptCost:  cfg.BcryptCost,
		sessionTTL:  cfg.SessionTTL(),
		logger:      logger,
	}
}

// Register creates an account and signs a session for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, *IssuedSession, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewConflict("user with this email already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, apperrors.NewConflict("user with this email already exists", nil)
		}
		return nil, nil, err
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, session, nil
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *IssuedSession, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Logout ends session. Without a revocation store the token stays valid
// until it expires and only the client copy is discarded.
func (s *AuthService) Logout(ctx context.Context, session *auth.Session) error {
	if s.revocations == nil || session == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, session.Digest, session.ExpiresAt); err != nil {
		return err
	}
	s.logger.Info("session revoked", zap.Int64("user_id", session.Identity.SubjectID))
	return nil
}

// Profile returns the account of userID.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// SessionTTL returns the lifetime of issued sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *AuthService) issue(user *domain.User) (*IssuedSession, error) {
	token, exp, err := s.tokens.Issue(domain.Identity{SubjectID: user.ID, Email: user.Email}, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	return &IssuedSession{Token: token, ExpiresAt: exp}, nil
}
