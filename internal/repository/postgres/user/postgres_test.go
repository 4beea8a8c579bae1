package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permit-tracker-go/internal/db/dbtest"
	userdomain "permit-tracker-go/internal/domain/user"
)

func strPtr(s string) *string { return &s }

func TestUserRepositoryCreateAndGet(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	user := &userdomain.User{ID: "u-1", Email: strPtr("ana@example.com"), Role: userdomain.RoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", *got.Email)
	assert.Equal(t, userdomain.RoleUser, got.Role)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, userdomain.ErrUserNotFound))

	err = repo.Create(ctx, &userdomain.User{ID: "u-1", Role: userdomain.RoleUser})
	assert.True(t, errors.Is(err, userdomain.ErrUserExists))
}

func TestUserRepositoryUpdateProfileKeepsRole(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &userdomain.User{ID: "u-1", Role: userdomain.RoleAdmin}))

	update := &userdomain.User{
		ID:        "u-1",
		Email:     strPtr("new@example.com"),
		FirstName: strPtr("Ana"),
		Role:      userdomain.RoleUser,
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.UpdateProfile(ctx, update))

	got, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, userdomain.RoleAdmin, got.Role)
	assert.Equal(t, "new@example.com", *got.Email)
	assert.Equal(t, "Ana", *got.FirstName)

	err = repo.UpdateProfile(ctx, &userdomain.User{ID: "ghost"})
	assert.True(t, errors.Is(err, userdomain.ErrUserNotFound))
}

func TestUserServiceSyncOverSQLite(t *testing.T) {
	svc := userdomain.NewService(NewPostgres(dbtest.Open(t)))
	ctx := context.Background()

	_, result, err := svc.Sync(ctx, userdomain.Identity{ID: "u-1", Email: "ana@example.com", Name: "Ana Lopez"})
	require.NoError(t, err)
	assert.Equal(t, userdomain.SyncCreated, result)

	user, result, err := svc.Sync(ctx, userdomain.Identity{ID: "u-1", Email: "ana@example.com", Name: "Ana Lopez"})
	require.NoError(t, err)
	assert.Equal(t, userdomain.SyncRefreshed, result)
	assert.Equal(t, "Lopez", *user.LastName)
}

func TestUserServiceSyncEmailClashOverSQLite(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	svc := userdomain.NewService(repo)
	ctx := context.Background()

	_, _, err := svc.Sync(ctx, userdomain.Identity{ID: "u-1", Email: "ana@example.com"})
	require.NoError(t, err)

	user, result, err := svc.Sync(ctx, userdomain.Identity{ID: "u-2", Email: "ana@example.com", Name: "Ana Lopez"})
	require.NoError(t, err)
	assert.Equal(t, userdomain.SyncCreated, result)
	assert.Nil(t, user.Email)

	_, result, err = svc.Sync(ctx, userdomain.Identity{ID: "u-2", Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, userdomain.SyncRefreshed, result)

	holder, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", holder.ID)

	ghost := "ghost@example.com"
	require.NoError(t, repo.Create(ctx, &userdomain.User{ID: "u-3", Email: &ghost, Role: userdomain.RoleUser}))
	taken := "ana@example.com"
	err = repo.UpdateProfile(ctx, &userdomain.User{ID: "u-3", Email: &taken})
	assert.True(t, errors.Is(err, userdomain.ErrEmailTaken))
}
