package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-logstore/internal/database"
	"go-logstore/internal/store"
	"go-logstore/internal/utils"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) AuthService {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	opts := store.DefaultOptions()
	opts.FlushInterval = time.Hour
	opts.SweepInterval = time.Hour
	st := store.New(db, database.SQLite, opts, zap.NewNop())
	require.NoError(t, st.Initialize(context.Background()))
	t.Cleanup(func() { st.Stop(context.Background()) })

	return NewAuthService(st, zap.NewNop(), testSecret)
}

func TestRegister_FirstUserIsOpen(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret", "admin", false)
	require.NoError(t, err)
	require.Positive(t, user.ID)

	// With one user present, unauthenticated registration is closed.
	_, err = svc.Register(ctx, "Grace", "grace@example.com", "pw", "member", false)
	require.True(t, errors.Is(err, ErrRegistrationClosed))

	// An authenticated caller can still add users.
	_, err = svc.Register(ctx, "Grace", "grace@example.com", "pw", "member", true)
	require.NoError(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret", "admin", false)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "ada@example.com", "pw", "member", true)
	require.True(t, errors.Is(err, ErrEmailExists))
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret", "admin", false)
	require.NoError(t, err)

	token, err := svc.Login(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)

	claims, err := utils.ValidateToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, "ada@example.com", claims.Email)

	_, err = svc.Login(ctx, "ada@example.com", "wrong")
	require.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Login(ctx, "ghost@example.com", "s3cret")
	require.True(t, errors.Is(err, ErrUserNotFound))
}
