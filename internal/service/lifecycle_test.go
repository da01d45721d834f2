package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backoffice/internal/errors"
	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// fakeUserDirectory is an in-memory stand-in for the user store that keeps
// the documented lifecycle contract: soft delete only stamps the record,
// force delete removes the row together with its association rows, restore
// clears the stamp and fails when the row is gone.
type fakeUserDirectory struct {
	MockUserRepository
	users  map[uint]*fakeUserRecord
	assocs *fakeAssociationRepository
}

type fakeUserRecord struct {
	verified bool
	deleted  bool
}

func newFakeUserDirectory(assocs *fakeAssociationRepository) *fakeUserDirectory {
	return &fakeUserDirectory{users: make(map[uint]*fakeUserRecord), assocs: assocs}
}

func (f *fakeUserDirectory) add(id uint, verified bool) {
	f.users[id] = &fakeUserRecord{verified: verified}
}

func (f *fakeUserDirectory) FindByID(_ context.Context, id uint, scope repository.Scope) (*model.User, error) {
	rec, ok := f.users[id]
	if !ok || (rec.deleted && scope == repository.ScopeActiveOnly) {
		return nil, gorm.ErrRecordNotFound
	}
	user := &model.User{ID: id}
	if rec.deleted {
		user.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}
	return user, nil
}

func (f *fakeUserDirectory) SoftDelete(_ context.Context, id uint) error {
	f.users[id].deleted = true
	return nil
}

func (f *fakeUserDirectory) ForceDelete(_ context.Context, id uint) error {
	delete(f.users, id)
	f.assocs.purgeUser(id)
	return nil
}

func (f *fakeUserDirectory) Restore(_ context.Context, id uint) error {
	rec, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rec.deleted = false
	return nil
}

func (f *fakeUserDirectory) Stats(_ context.Context) (*model.UserStats, error) {
	stats := &model.UserStats{}
	for _, rec := range f.users {
		stats.All++
		switch {
		case rec.deleted:
			stats.Deleted++
		case rec.verified:
			stats.Active++
		default:
			stats.Inactive++
		}
	}
	return stats, nil
}

// purgeUser drops every association the user holds, the way force delete
// removes the join rows in the same transaction as the user row.
func (f *fakeAssociationRepository) purgeUser(userID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for pair := range f.roles {
		if pair[0] == userID {
			delete(f.roles, pair)
		}
	}
	for pair := range f.permissions {
		if pair[0] == userID {
			delete(f.permissions, pair)
		}
	}
}

type stubPermissionRepository struct {
	MockPermissionRepository
}

func (s *stubPermissionRepository) FindByID(_ context.Context, id uint) (*model.Permission, error) {
	return &model.Permission{ID: id, Name: "user.update"}, nil
}

func newLifecycleService(users *fakeUserDirectory, assocs *fakeAssociationRepository) UserService {
	return NewUserService(users, &stubRoleRepository{}, &stubPermissionRepository{}, assocs, nil)
}

func TestUserLifecycle_SoftDeleteKeepsAssociations(t *testing.T) {
	assocs := newFakeAssociationRepository()
	users := newFakeUserDirectory(assocs)
	users.add(1, true)
	svc := newLifecycleService(users, assocs)
	ctx := context.Background()

	outcome, _, err := svc.ToggleRole(ctx, 1, 2)
	require.NoError(t, err)
	require.Equal(t, model.OutcomeGranted, outcome)
	outcome, _, err = svc.TogglePermission(ctx, 1, 9)
	require.NoError(t, err)
	require.Equal(t, model.OutcomeGranted, outcome)

	_, err = svc.DeleteUser(ctx, 1, false)
	require.NoError(t, err)

	// The trashed user is out of reach for mutation, but its grants stay.
	_, _, err = svc.ToggleRole(ctx, 1, 2)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
	assert.True(t, assocs.roles[[2]uint{1, 2}])
	assert.True(t, assocs.permissions[[2]uint{1, 9}])

	user, err := svc.RestoreUser(ctx, 1)
	require.NoError(t, err)
	assert.False(t, user.DeletedAt.Valid)
	assert.True(t, assocs.roles[[2]uint{1, 2}], "role grant survives delete and restore")
	assert.True(t, assocs.permissions[[2]uint{1, 9}], "permission grant survives delete and restore")

	// The restored set is honored as-is: the next toggle revokes.
	outcome, _, err = svc.ToggleRole(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeRevoked, outcome)
}

func TestUserLifecycle_ForceDeleteCascadesAssociations(t *testing.T) {
	assocs := newFakeAssociationRepository()
	users := newFakeUserDirectory(assocs)
	users.add(1, true)
	users.add(2, true)
	svc := newLifecycleService(users, assocs)
	ctx := context.Background()

	for _, userID := range []uint{1, 2} {
		_, _, err := svc.ToggleRole(ctx, userID, 2)
		require.NoError(t, err)
		_, _, err = svc.TogglePermission(ctx, userID, 9)
		require.NoError(t, err)
	}

	_, err := svc.DeleteUser(ctx, 1, true)
	require.NoError(t, err)

	assert.False(t, assocs.roles[[2]uint{1, 2}], "role grants of the removed user are gone")
	assert.False(t, assocs.permissions[[2]uint{1, 9}], "permission grants of the removed user are gone")
	assert.True(t, assocs.roles[[2]uint{2, 2}], "other users keep their grants")
	assert.True(t, assocs.permissions[[2]uint{2, 9}])

	_, err = svc.RestoreUser(ctx, 1)
	assert.ErrorIs(t, err, errors.ErrUserNotFound, "force delete is irreversible")
}

func TestUserLifecycle_StatsPartitionUsers(t *testing.T) {
	assocs := newFakeAssociationRepository()
	users := newFakeUserDirectory(assocs)
	users.add(1, true)
	users.add(2, true)
	users.add(3, false)
	svc := newLifecycleService(users, assocs)
	ctx := context.Background()

	// User 2 is verified, so without the trash partition it would be counted
	// active too.
	_, err := svc.DeleteUser(ctx, 2, false)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.All)
	assert.Equal(t, int64(1), stats.Active)
	assert.Equal(t, int64(1), stats.Inactive)
	assert.Equal(t, int64(1), stats.Deleted)
	assert.Equal(t, stats.All, stats.Active+stats.Inactive+stats.Deleted)
}
