// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pierkoo/flasktaskr/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

type UserInfo struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

type UserProvider interface {
	GetByName(ctx context.Context, name string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	Create(ctx context.Context, name, email, passwordHash string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type Service struct {
	users  UserProvider
	logger *slog.Logger
}

func NewService(users UserProvider, logger *slog.Logger) *Service {
	return &Service{users: users, logger: logger}
}

// Login checks name and password. Unknown names still pay for one hash
// verification. A stored credential that is not a recognised hash fails
// with core.ErrInvalidHash rather than ErrInvalidCredentials.
func (s *Service) Login(
	ctx context.Context,
	name, password string,
) (*UserInfo, error) {
	ctx, span := core.StartSpan(ctx, "auth.Login")
	defer span.End()

	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		password,
		&user.PasswordHash,
	)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("verify password for user %d: %w", user.ID, err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.Warn("password rehash not stored",
				"user_id", user.ID,
				"error", err,
			)
		} else {
			core.AddSpanEvent(ctx, "password.rehashed",
				attribute.Int64("user.id", user.ID))
		}
	}

	return user, nil
}

func (s *Service) Register(
	ctx context.Context,
	name, email, password string,
) (*UserInfo, error) {
	ctx, span := core.StartSpan(ctx, "auth.Register")
	defer span.End()

	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, name, email, passwordHash)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// CurrentRole reads the stored role for userID. It backs the per-request
// role refresh; core.ErrNotFound means the account is gone.
func (s *Service) CurrentRole(ctx context.Context, userID int64) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("current role: %w", err)
	}
	return u.Role, nil
}
