package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-logstore/internal/models"
	"go-logstore/internal/store"
	"go-logstore/internal/utils"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrRegistrationClosed = errors.New("registration requires an authenticated admin")
)

// AuthService defines the interface for authentication related operations
type AuthService interface {
	// Register creates the user. Open registration is only allowed while no
	// users exist (first-run setup); afterwards authenticated is required.
	Register(ctx context.Context, name, email, password, role string, authenticated bool) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error) // Returns JWT token
}

type authServiceImpl struct {
	store      *store.Store
	logger     *zap.Logger
	jwtSecret  string
	jwtExpires time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(st *store.Store, logger *zap.Logger, jwtSecret string) AuthService {
	return &authServiceImpl{
		store:      st,
		logger:     logger,
		jwtSecret:  jwtSecret,
		jwtExpires: 24 * time.Hour,
	}
}

// Register handles new user registration
func (s *authServiceImpl) Register(ctx context.Context, name, email, password, role string, authenticated bool) (*models.User, error) {
	s.logger.Info("Attempting to register user", zap.String("email", email))

	if !authenticated {
		count, err := s.store.GetUserCount(ctx)
		if err != nil {
			s.logger.Error("Error checking user count during registration", zap.Error(err))
			return nil, fmt.Errorf("registration failed: %w", err)
		}
		if count > 0 {
			s.logger.Warn("Unauthenticated registration rejected, users already exist", zap.String("email", email))
			return nil, ErrRegistrationClosed
		}
	}

	user, err := s.store.CreateUser(ctx, name, email, password, role)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			s.logger.Warn("Registration attempt failed: email already exists", zap.String("email", email))
			return nil, ErrEmailExists
		}
		s.logger.Error("Failed to create user", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("User registered successfully", zap.String("email", email), zap.Int64("userID", user.ID))
	return user, nil
}

// Login handles user login and JWT generation
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	s.logger.Info("Attempting to login user", zap.String("email", email))

	user, err := s.store.VerifyUser(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.logger.Warn("Login attempt failed: user not found", zap.String("email", email))
			return "", ErrUserNotFound
		case errors.Is(err, store.ErrInvalidCredentials):
			s.logger.Warn("Login attempt failed: invalid password", zap.String("email", email))
			return "", ErrInvalidCredentials
		default:
			s.logger.Error("Error verifying user during login", zap.String("email", email), zap.Error(err))
			return "", ErrInvalidCredentials // Generic error even if DB error
		}
	}

	token, err := utils.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtExpires)
	if err != nil {
		s.logger.Error("Failed to generate JWT token during login", zap.String("email", email), zap.Int64("userID", user.ID), zap.Error(err))
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("User logged in successfully", zap.String("email", email), zap.Int64("userID", user.ID))
	return token, nil
}
