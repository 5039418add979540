// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/pierkoo/flasktaskr/internal/auth"
	"github.com/pierkoo/flasktaskr/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id int64,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByName(
	ctx context.Context,
	name string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Create stores a new account with the default role. Name and email clashes
// surface as core.ErrDuplicateKey.
func (s *Service) Create(
	ctx context.Context,
	name, email, passwordHash string,
) (*auth.UserInfo, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("create user: %w", core.ErrInvalidInput)
	}

	user := &User{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Role:         RoleUser,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// SetRole changes an account's role. It backs the operator command line
// only; no HTTP route can reach it.
func (s *Service) SetRole(ctx context.Context, name, role string) error {
	if !ValidRole(role) {
		return fmt.Errorf("set role %q: %w", role, core.ErrInvalidInput)
	}
	return s.repo.SetRole(ctx, name, role)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
	}
}

var _ auth.UserProvider = (*Service)(nil)
