package repositories

import (
	"context"
	"errors"
	"testing"

	"go-logstore/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserRepo(t *testing.T) UserRepository {
	t.Helper()
	db, dialect := newTestDB(t)
	return NewUserRepository(db, dialect, zap.NewNop())
}

func TestUserCreateAndFind(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &models.User{
		Name:           "Ada",
		Email:          "ada@example.com",
		Role:           "admin",
		HashedPassword: "$2a$10$fixture",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	user, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, id, user.ID)
	require.Equal(t, "Ada", user.Name)
	require.Equal(t, "admin", user.Role)
	require.Equal(t, "$2a$10$fixture", user.HashedPassword)
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Name: "Ada", Email: "ada@example.com", Role: "admin", HashedPassword: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{Name: "Imposter", Email: "ada@example.com", Role: "member", HashedPassword: "h2"})
	require.True(t, errors.Is(err, ErrDuplicateEmail))

	// The failed insert must not have touched the table.
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestUserFindByEmail_NotFound(t *testing.T) {
	repo := newUserRepo(t)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestUserCountAndAll(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	_, err = repo.Create(ctx, &models.User{Name: "Ada", Email: "ada@example.com", Role: "admin", HashedPassword: "h"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.User{Name: "Grace", Email: "grace@example.com", Role: "member", HashedPassword: "h"})
	require.NoError(t, err)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	users, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestUserUpdateByEmail(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Name: "Ada", Email: "ada@example.com", Role: "member", HashedPassword: "h"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateByEmail(ctx, "ada@example.com", "Ada L.", "admin"))

	user, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, "Ada L.", user.Name)
	require.Equal(t, "admin", user.Role)

	err = repo.UpdateByEmail(ctx, "ghost@example.com", "x", "member")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestUserUpdatePassword(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Name: "Ada", Email: "ada@example.com", Role: "admin", HashedPassword: "old"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePassword(ctx, "ada@example.com", "new"))

	user, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, "new", user.HashedPassword)

	err = repo.UpdatePassword(ctx, "ghost@example.com", "new")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestUserDelete(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &models.User{Name: "Ada", Email: "ada@example.com", Role: "admin", HashedPassword: "h"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))

	err = repo.Delete(ctx, id)
	require.True(t, errors.Is(err, ErrNotFound))
}
