package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"backoffice/internal/cache"
	"backoffice/internal/errors"
	"backoffice/internal/model"
	"backoffice/internal/repository"
)

const bcryptCost = 10

const (
	statsCacheKey = "users:stats"
	statsCacheTTL = 5 * time.Minute
)

// UserService exposes the account lifecycle and the authorization toggles.
type UserService interface {
	CreateUser(ctx context.Context, name, username, email string) (*model.User, string, error)
	UpdateUser(ctx context.Context, id uint, name, username, email string) (*model.User, error)
	DeleteUser(ctx context.Context, id uint, force bool) (*model.User, error)
	RestoreUser(ctx context.Context, id uint) (*model.User, error)
	ResetPassword(ctx context.Context, id uint) (string, error)
	ToggleRole(ctx context.Context, userID, roleID uint) (model.Outcome, *model.Role, error)
	TogglePermission(ctx context.Context, userID, permissionID uint) (model.Outcome, *model.Permission, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	EffectivePermissions(ctx context.Context, userID uint) ([]model.Permission, error)
	Stats(ctx context.Context) (*model.UserStats, error)
}

type userService struct {
	users       repository.UserRepository
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
	assocs      repository.AssociationRepository
	cache       *cache.Client
}

// NewUserService builds a UserService over the given repositories and cache.
func NewUserService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	permissions repository.PermissionRepository,
	assocs repository.AssociationRepository,
	cacheClient *cache.Client,
) UserService {
	return &userService{
		users:       users,
		roles:       roles,
		permissions: permissions,
		assocs:      assocs,
		cache:       cacheClient,
	}
}

// CreateUser provisions an account with a generated default credential. The
// plaintext password is returned exactly once and is never retrievable again.
// Administrative accounts skip the verification mail flow, so the account is
// marked verified immediately.
func (s *userService) CreateUser(ctx context.Context, name, username, email string) (*model.User, string, error) {
	username = strings.ToLower(username)
	email = strings.ToLower(email)

	if err := s.checkUnique(ctx, username, email, 0); err != nil {
		return nil, "", err
	}

	password, err := generatePassword()
	if err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Name:            name,
		Username:        username,
		Email:           email,
		PasswordHash:    string(hash),
		EmailVerifiedAt: &now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The advisory check raced with a concurrent create; the constraint
		// is authoritative.
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", errors.ErrUniqueViolation
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	s.invalidateStats(ctx)
	return user, password, nil
}

// UpdateUser renames the account, excluding its own row from the uniqueness
// check.
func (s *userService) UpdateUser(ctx context.Context, id uint, name, username, email string) (*model.User, error) {
	username = strings.ToLower(username)
	email = strings.ToLower(email)

	if _, err := s.findUser(ctx, id, repository.ScopeActiveOnly); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, username, email, id); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, id, name, username, email); err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrUniqueViolation
		}
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.invalidateStats(ctx)
	return s.findUser(ctx, id, repository.ScopeActiveOnly)
}

// DeleteUser soft-deletes by default. With force it permanently removes the
// record and cascades removal of its role and permission assignments. Both
// variants resolve the id across soft-deleted records, and the deleted user
// is returned so the caller can log who was removed without re-querying.
func (s *userService) DeleteUser(ctx context.Context, id uint, force bool) (*model.User, error) {
	user, err := s.findUser(ctx, id, repository.ScopeWithDeleted)
	if err != nil {
		return nil, err
	}

	if force {
		err = s.users.ForceDelete(ctx, id)
	} else {
		err = s.users.SoftDelete(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}

	s.invalidateStats(ctx)
	return user, nil
}

// RestoreUser clears the soft-delete timestamp. Associations were never
// touched by the soft delete, so they are honored again as-is. Restoring a
// user that was not trashed is a no-op.
func (s *userService) RestoreUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.findUser(ctx, id, repository.ScopeWithDeleted)
	if err != nil {
		return nil, err
	}
	if !user.DeletedAt.Valid {
		return user, nil
	}

	if err := s.users.Restore(ctx, id); err != nil {
		// The record was force-deleted between the lookup and the update.
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("restore user: %w", err)
	}

	s.invalidateStats(ctx)
	user.DeletedAt = gorm.DeletedAt{}
	return user, nil
}

// ResetPassword replaces the credential with a fresh generated one and
// returns the plaintext exactly once.
func (s *userService) ResetPassword(ctx context.Context, id uint) (string, error) {
	if _, err := s.findUser(ctx, id, repository.ScopeActiveOnly); err != nil {
		return "", err
	}

	password, err := generatePassword()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.ErrUserNotFound
		}
		return "", fmt.Errorf("update password: %w", err)
	}
	return password, nil
}

// ToggleRole grants the role if absent, revokes it if present. The role is
// returned alongside the outcome for the caller's log context.
func (s *userService) ToggleRole(ctx context.Context, userID, roleID uint) (model.Outcome, *model.Role, error) {
	if _, err := s.findUser(ctx, userID, repository.ScopeActiveOnly); err != nil {
		return "", nil, err
	}
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errors.ErrRoleNotFound
		}
		return "", nil, fmt.Errorf("find role: %w", err)
	}

	outcome, err := s.assocs.ToggleRole(ctx, userID, roleID)
	if err != nil {
		return "", nil, fmt.Errorf("toggle role: %w", err)
	}
	return outcome, role, nil
}

// TogglePermission is the same protocol over the direct permission set. It
// never touches role bundles: those are resolved at check time only.
func (s *userService) TogglePermission(ctx context.Context, userID, permissionID uint) (model.Outcome, *model.Permission, error) {
	if _, err := s.findUser(ctx, userID, repository.ScopeActiveOnly); err != nil {
		return "", nil, err
	}
	permission, err := s.permissions.FindByID(ctx, permissionID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errors.ErrPermissionNotFound
		}
		return "", nil, fmt.Errorf("find permission: %w", err)
	}

	outcome, err := s.assocs.TogglePermission(ctx, userID, permissionID)
	if err != nil {
		return "", nil, fmt.Errorf("toggle permission: %w", err)
	}
	return outcome, permission, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *userService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.roles.List(ctx)
}

func (s *userService) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	return s.permissions.List(ctx)
}

func (s *userService) EffectivePermissions(ctx context.Context, userID uint) ([]model.Permission, error) {
	perms, err := s.users.EffectivePermissions(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("effective permissions: %w", err)
	}
	return perms, nil
}

// Stats returns the account counters, cached briefly since every page
// renders them.
func (s *userService) Stats(ctx context.Context) (*model.UserStats, error) {
	if data, _ := s.cache.Get(ctx, statsCacheKey); data != nil {
		var cached model.UserStats
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.users.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	if payload, err := json.Marshal(stats); err == nil {
		_ = s.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL)
	}
	return stats, nil
}

func (s *userService) findUser(ctx context.Context, id uint, scope repository.Scope) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id, scope)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userService) checkUnique(ctx context.Context, username, email string, excludeID uint) error {
	taken, err := s.users.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return errors.ErrUsernameTaken
	}

	taken, err = s.users.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return errors.ErrEmailTaken
	}
	return nil
}

func (s *userService) invalidateStats(ctx context.Context) {
	_ = s.cache.Delete(ctx, statsCacheKey)
}
