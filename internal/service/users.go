package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/auth"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/log"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/storage"
)

// UserService orchestrates registration, login and profile changes.
type UserService struct {
	repo   *storage.Repository
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
	logger *log.Logger
}

func NewUserService(repo *storage.Repository, hasher *auth.PasswordHasher, tokens *auth.TokenService, logger *log.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger.WithComponent(log.ComponentService),
	}
}

// Register creates a new account. The username must be unique, a taken name
// surfaces as core.ErrDuplicate.
func (s *UserService) Register(ctx context.Context, username, password string) (*core.User, error) {
	if username == "" {
		return nil, core.ErrEmptyUsername
	}
	if password == "" {
		return nil, core.ErrEmptyPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &core.User{Username: username, PasswordHash: hash}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered",
		log.FieldUserID, user.ID,
		log.FieldUsername, user.Username)
	return user, nil
}

// Authenticate verifies the credentials and issues an access token. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", core.ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", core.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "User authenticated",
		log.FieldOperation, log.OpLogin,
		log.FieldUserID, user.ID)
	return token, nil
}

// Resolve maps a verified token subject back to the account.
func (s *UserService) Resolve(ctx context.Context, username string) (*core.User, error) {
	return s.repo.GetUserByUsername(ctx, username)
}

// UpdateProfile applies a sparse profile update and returns the new state.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd storage.UserUpdate) (*core.User, error) {
	user, err := s.repo.UpdateUser(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Profile updated", log.FieldUserID, userID)
	return user, nil
}

// ChangePassword replaces the password after proving knowledge of the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, user *core.User, current, next string) error {
	if !s.hasher.Verify(current, user.PasswordHash) {
		return core.ErrInvalidCredentials
	}
	if next == "" {
		return core.ErrEmptyPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Password changed", log.FieldUserID, user.ID)
	return nil
}
