package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newConfigRepo(t *testing.T) ConfigRepository {
	t.Helper()
	db, dialect := newTestDB(t)
	return NewConfigRepository(db, dialect, zap.NewNop())
}

func TestConfigGet_AbsentIsNilNotError(t *testing.T) {
	repo := newConfigRepo(t)

	entry, err := repo.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, entry)
}

func TestConfigSet_Upserts(t *testing.T) {
	repo := newConfigRepo(t)
	ctx := context.Background()

	entry, err := repo.Set(ctx, "logsTTL", "2592000000")
	require.NoError(t, err)
	require.Equal(t, "logsTTL", entry.Key)
	require.Equal(t, "2592000000", entry.Value)

	// Second write on the same key overwrites the value in place.
	entry2, err := repo.Set(ctx, "logsTTL", "3600000")
	require.NoError(t, err)
	require.Equal(t, "3600000", entry2.Value)
	require.Equal(t, entry.ID, entry2.ID)

	got, err := repo.Get(ctx, "logsTTL")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "3600000", got.Value)
}

func TestConfigDelete(t *testing.T) {
	repo := newConfigRepo(t)
	ctx := context.Background()

	_, err := repo.Set(ctx, "theme", "dark")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "theme"))

	err = repo.Delete(ctx, "theme")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestConfigEmptyKeyRejected(t *testing.T) {
	repo := newConfigRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "")
	require.True(t, errors.Is(err, ErrValidation))
	_, err = repo.Set(ctx, "", "v")
	require.True(t, errors.Is(err, ErrValidation))
	err = repo.Delete(ctx, "")
	require.True(t, errors.Is(err, ErrValidation))
}
