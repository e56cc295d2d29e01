package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/pkg/auth"
	"github.com/shashiranjanraj/shopease/pkg/orm"
)

// AdminUserInput is the admin edit payload. Absent fields are kept.
type AdminUserInput struct {
	Name    *string `json:"name"    validate:"filled,max=100"`
	Email   *string `json:"email"   validate:"email"`
	IsAdmin *bool   `json:"isAdmin"`
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Items      []models.User  `json:"items"`
	Pagination orm.Pagination `json:"pagination"`
}

// UserService is the admin user back-office.
type UserService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context, page, limit int) (*UserPage, error) {
	page, limit = orm.Clamp(page, limit, 20, 100)
	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &UserPage{Items: users, Pagination: orm.NewPagination(page, limit, total)}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Update edits another account. actorID may not revoke their own admin role.
func (s *UserService) Update(ctx context.Context, actorID, id string, in AdminUserInput) (*models.User, error) {
	if id == actorID && in.IsAdmin != nil && !*in.IsAdmin {
		return nil, ErrSelfAction
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.IsAdmin != nil {
		u.IsAdmin = *in.IsAdmin
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if id == actorID {
		return ErrSelfAction
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// EnsureAdmin grants the admin role to email, creating the account with
// password when it does not exist. It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	u, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if u.IsAdmin {
			return false, nil
		}
		u.IsAdmin = true
		u.UpdatedAt = time.Now().UTC()
		return false, s.users.Update(ctx, u)
	case !errors.Is(err, repositories.ErrNotFound):
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	if password == "" {
		return false, fmt.Errorf("ensure admin: %s does not exist and no password was given", email)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	u = &models.User{Name: name, Email: email, Password: hash, IsAdmin: true}
	if err := s.users.Create(ctx, u); err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	return true, nil
}
