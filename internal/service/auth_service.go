package service

import (
	"context"
	"errors"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/utils"
)

// AuthConfig carries the token and hashing settings AuthService needs.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// Session is an authenticated user with a fresh token pair.
type Session struct {
	User    model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

type AuthService struct {
	users  UserRepository
	tokens TokenRepository
	cfg    AuthConfig
}

func NewAuthService(users UserRepository, tokens TokenRepository, cfg AuthConfig) *AuthService {
	if users == nil || tokens == nil {
		panic("nil repository passed to NewAuthService")
	}
	return &AuthService{users: users, tokens: tokens, cfg: cfg}
}

// Login verifies credentials and issues an access/refresh pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	access, refresh, err := s.issue(*u)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &Session{User: *u, Access: access, Refresh: refresh}, nil
}

// Refresh spends a refresh token and returns a new pair.  The old token is
// revoked in the same transaction the new one is stored in.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	oldHash := utils.HashRefreshRaw(raw)
	userID, err := s.tokens.ValidateRefresh(ctx, oldHash)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, repository.ErrInvalidRefresh
		}
		return nil, err
	}
	access, refresh, err := s.issue(*u)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Rotate(ctx, oldHash, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &Session{User: *u, Access: access, Refresh: refresh}, nil
}

// Logout revokes a single refresh token.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	hash := utils.HashRefreshRaw(raw)
	if _, err := s.tokens.ValidateRefresh(ctx, hash); err != nil {
		return err
	}
	return s.tokens.RevokeByHash(ctx, hash)
}

// LogoutAll revokes every refresh token the user holds.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint64) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

// ChangePassword replaces the password after checking the old one and
// signs the user out of every other session.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, oldPassword) {
		return ErrWrongPassword
	}
	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *AuthService) issue(u model.User) (utils.AccessToken, utils.RefreshToken, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Email, string(u.Role), s.cfg.AccessTTLMin)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	return access, refresh, nil
}
