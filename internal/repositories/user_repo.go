package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-logstore/internal/database"
	"go-logstore/internal/models"
	"go.uber.org/zap"
)

// UserRepository defines the interface for user data operations. Password
// hashing happens in the store facade; this layer only sees hashes.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (int64, error) // Returns the new user ID
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int, error)
	All(ctx context.Context) ([]models.User, error)
	UpdateByEmail(ctx context.Context, email string, name, role string) error
	UpdatePassword(ctx context.Context, email, hashedPassword string) error
	Delete(ctx context.Context, id int64) error
}

type userRepositoryImpl struct {
	db      *sql.DB
	dialect database.Dialect
	logger  *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB, dialect database.Dialect, logger *zap.Logger) UserRepository {
	return &userRepositoryImpl{db: db, dialect: dialect, logger: logger}
}

// Create inserts a new user. A duplicate email is reported as
// ErrDuplicateEmail rather than the raw driver error.
func (r *userRepositoryImpl) Create(ctx context.Context, user *models.User) (int64, error) {
	query := r.dialect.Rebind(`INSERT INTO users (name, email, hashed_password, role) VALUES (?, ?, ?, ?)`)

	var newID int64
	if r.dialect == database.Postgres {
		err := r.db.QueryRowContext(ctx, query+` RETURNING id`, user.Name, user.Email, user.HashedPassword, user.Role).Scan(&newID)
		if err != nil {
			return 0, r.createErr(user.Email, err)
		}
	} else {
		result, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.HashedPassword, user.Role)
		if err != nil {
			return 0, r.createErr(user.Email, err)
		}
		newID, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("error reading new user id: %w", err)
		}
	}

	user.ID = newID
	r.logger.Info("User created successfully", zap.String("email", user.Email), zap.Int64("newID", newID))
	return newID, nil
}

func (r *userRepositoryImpl) createErr(email string, err error) error {
	if r.dialect.IsUniqueViolation(err) {
		r.logger.Warn("User creation failed: email already exists", zap.String("email", email))
		return fmt.Errorf("user %s: %w", email, ErrDuplicateEmail)
	}
	r.logger.Error("Error creating user", zap.String("email", email), zap.Error(err))
	return fmt.Errorf("error creating user %s: %w", email, err)
}

// FindByEmail retrieves a user by email, ErrNotFound when absent.
func (r *userRepositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.dialect.Rebind(`SELECT id, name, email, hashed_password, role FROM users WHERE email = ?`)
	user := &models.User{}
	var name, role sql.NullString

	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &name, &user.Email, &user.HashedPassword, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		r.logger.Error("Error querying user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("error finding user by email %s: %w", email, err)
	}
	user.Name = name.String
	user.Role = role.String
	return user, nil
}

func (r *userRepositoryImpl) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		r.logger.Error("Error counting users", zap.Error(err))
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return count, nil
}

func (r *userRepositoryImpl) All(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, role FROM users ORDER BY id ASC`)
	if err != nil {
		r.logger.Error("Error querying all users", zap.Error(err))
		return nil, fmt.Errorf("error querying all users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var name, role sql.NullString
		if err := rows.Scan(&user.ID, &name, &user.Email, &role); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		user.Name = name.String
		user.Role = role.String
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user row iteration error: %w", err)
	}
	return users, nil
}

// UpdateByEmail updates the mutable profile fields of a user.
func (r *userRepositoryImpl) UpdateByEmail(ctx context.Context, email string, name, role string) error {
	query := r.dialect.Rebind(`UPDATE users SET name = ?, role = ? WHERE email = ?`)
	result, err := r.db.ExecContext(ctx, query, name, role, email)
	if err != nil {
		r.logger.Error("Error updating user", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("error updating user %s: %w", email, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return nil
}

func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, email, hashedPassword string) error {
	query := r.dialect.Rebind(`UPDATE users SET hashed_password = ? WHERE email = ?`)
	result, err := r.db.ExecContext(ctx, query, hashedPassword, email)
	if err != nil {
		r.logger.Error("Error updating user password", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("error updating password for %s: %w", email, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return nil
}

func (r *userRepositoryImpl) Delete(ctx context.Context, id int64) error {
	query := r.dialect.Rebind(`DELETE FROM users WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Error deleting user", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("error deleting user %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}
