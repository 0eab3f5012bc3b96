package store

import (
	"context"
	"fmt"

	"go-logstore/internal/models"
	"go-logstore/internal/utils"

	"go.uber.org/zap"
)

// CreateUser hashes the password and stores the user. Missing email or
// password fails fast before any I/O; a duplicate email surfaces as
// ErrDuplicateEmail.
func (s *Store) CreateUser(ctx context.Context, name, email, password, role string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email: %w", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("password: %w", ErrValidation)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Name: name, Email: email, Role: role, HashedPassword: hashed}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyUser checks the password for email and returns the user on success.
// An unknown email is ErrNotFound; a wrong password is ErrInvalidCredentials.
func (s *Store) VerifyUser(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email: %w", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("password: %w", ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.HashedPassword) {
		s.logger.Warn("Password verification failed", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserCount returns the number of stored users.
func (s *Store) GetUserCount(ctx context.Context) (int, error) {
	return s.users.Count(ctx)
}

// GetAllUsers lists all users without password hashes.
func (s *Store) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.users.All(ctx)
}

// GetUserByEmail fetches one user, ErrNotFound when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email: %w", ErrValidation)
	}
	return s.users.FindByEmail(ctx, email)
}

// UpdateUserByEmail updates name and role, returning the stored user.
func (s *Store) UpdateUserByEmail(ctx context.Context, email, name, role string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email: %w", ErrValidation)
	}
	if err := s.users.UpdateByEmail(ctx, email, name, role); err != nil {
		return nil, err
	}
	return s.users.FindByEmail(ctx, email)
}

// UpdatePassword replaces the stored hash for email with a hash of
// newPassword.
func (s *Store) UpdatePassword(ctx context.Context, email, newPassword string) error {
	if email == "" {
		return fmt.Errorf("email: %w", ErrValidation)
	}
	if newPassword == "" {
		return fmt.Errorf("password: %w", ErrValidation)
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, email, hashed)
}

// DeleteUser removes a user by id, ErrNotFound when no row was affected.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("user id: %w", ErrValidation)
	}
	return s.users.Delete(ctx, id)
}
