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
	"github.com/shashiranjanraj/shopease/pkg/logger"
)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput is the sign-in payload.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput changes the caller's own account. Absent fields are kept.
type ProfileInput struct {
	Name     *string `json:"name"     validate:"filled,max=100"`
	Email    *string `json:"email"    validate:"email"`
	Password *string `json:"password" validate:"min=6"`
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user,omitempty"`
}

type AuthService struct {
	users repositories.UserRepository
	cart  *CartService
}

func NewAuthService(users repositories.UserRepository, cart *CartService) *AuthService {
	return &AuthService{users: users, cart: cart}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	u := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", u.ID)
	return issue(u)
}

// Login checks the credentials. guestCart is the session-scoped cart owner
// of the caller, if any; its items are merged into the user's cart.
func (s *AuthService) Login(ctx context.Context, in LoginInput, guestCart string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		return nil, ErrInvalidCredentials
	}

	if guestCart != "" && s.cart != nil {
		if err := s.cart.Merge(ctx, guestCart, UserCart(u.ID)); err != nil {
			logger.WithCtx(ctx).Warn("login: cart merge failed", "user_id", u.ID, "error", err)
		}
	}
	return issue(u)
}

// Refresh exchanges a refresh token for a new pair. The role is re-read so
// a demoted admin loses access at the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := auth.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, claims.UserID())
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	res, err := issue(u)
	if err != nil {
		return nil, err
	}
	res.User = nil
	return res, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Password != nil {
		if u.Password, err = auth.HashPassword(*in.Password); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func issue(u *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(u.ID, u.Role())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	refresh, err := auth.GenerateRefreshToken(u.ID, u.Role())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, RefreshToken: refresh, User: u}, nil
}
