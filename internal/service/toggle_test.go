package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// fakeAssociationRepository mirrors the storage contract of the toggle: the
// check-then-flip of one pair is a single critical section, the way the real
// repository serializes it with a transaction over the unique pair key.
type fakeAssociationRepository struct {
	mu          sync.Mutex
	roles       map[[2]uint]bool
	permissions map[[2]uint]bool
}

func newFakeAssociationRepository() *fakeAssociationRepository {
	return &fakeAssociationRepository{
		roles:       make(map[[2]uint]bool),
		permissions: make(map[[2]uint]bool),
	}
}

func (f *fakeAssociationRepository) ToggleRole(_ context.Context, userID, roleID uint) (model.Outcome, error) {
	return f.flip(f.roles, [2]uint{userID, roleID}), nil
}

func (f *fakeAssociationRepository) TogglePermission(_ context.Context, userID, permissionID uint) (model.Outcome, error) {
	return f.flip(f.permissions, [2]uint{userID, permissionID}), nil
}

func (f *fakeAssociationRepository) flip(set map[[2]uint]bool, pair [2]uint) model.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	if set[pair] {
		delete(set, pair)
		return model.OutcomeRevoked
	}
	set[pair] = true
	return model.OutcomeGranted
}

func (f *fakeAssociationRepository) roleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.roles)
}

// stubUserRepository resolves every id; only FindByID is exercised here.
type stubUserRepository struct {
	MockUserRepository
}

func (s *stubUserRepository) FindByID(_ context.Context, id uint, _ repository.Scope) (*model.User, error) {
	return &model.User{ID: id}, nil
}

type stubRoleRepository struct {
	MockRoleRepository
}

func (s *stubRoleRepository) FindByID(_ context.Context, id uint) (*model.Role, error) {
	return &model.Role{ID: id, Name: "superuser"}, nil
}

func TestToggleRole_Idempotence(t *testing.T) {
	assocs := newFakeAssociationRepository()
	svc := NewUserService(&stubUserRepository{}, &stubRoleRepository{}, new(MockPermissionRepository), assocs, nil)
	ctx := context.Background()

	expected := []model.Outcome{model.OutcomeGranted, model.OutcomeRevoked, model.OutcomeGranted}
	for i, want := range expected {
		outcome, _, err := svc.ToggleRole(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, want, outcome, "toggle %d", i+1)
	}
	assert.Equal(t, 1, assocs.roleCount())
}

func TestToggleRole_RoleAndPermissionSetsAreDistinct(t *testing.T) {
	assocs := newFakeAssociationRepository()
	svc := NewUserService(&stubUserRepository{}, &stubRoleRepository{}, new(MockPermissionRepository), assocs, nil)
	ctx := context.Background()

	_, _, err := svc.ToggleRole(ctx, 1, 2)
	require.NoError(t, err)

	assert.Len(t, assocs.roles, 1)
	assert.Empty(t, assocs.permissions, "a role grant never materializes permissions")
}

func TestToggleRole_Concurrent(t *testing.T) {
	for _, n := range []int{7, 8} {
		assocs := newFakeAssociationRepository()
		svc := NewUserService(&stubUserRepository{}, &stubRoleRepository{}, new(MockPermissionRepository), assocs, nil)

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := svc.ToggleRole(context.Background(), 1, 2)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		want := n % 2
		assert.Equal(t, want, assocs.roleCount(), "%d concurrent toggles must settle to %d associations", n, want)
	}
}
