package repository

import (
	"context"

	"gorm.io/gorm"

	"backoffice/internal/model"
)

// Scope names the soft-delete visibility of a lookup. Every call site states
// it explicitly; there is no implicit default.
type Scope int

const (
	// ScopeActiveOnly excludes soft-deleted records.
	ScopeActiveOnly Scope = iota
	// ScopeWithDeleted includes soft-deleted records. Restore and force
	// delete must use it.
	ScopeWithDeleted
)

func (s Scope) apply(db *gorm.DB) *gorm.DB {
	if s == ScopeWithDeleted {
		return db.Unscoped()
	}
	return db
}

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint, scope Scope) (*model.User, error)
	FindByUsername(ctx context.Context, username string, scope Scope) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uint, name, username, email string) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	SoftDelete(ctx context.Context, id uint) error
	ForceDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	Stats(ctx context.Context) (*model.UserStats, error)
	EffectivePermissions(ctx context.Context, id uint) ([]model.Permission, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint, scope Scope) (*model.User, error) {
	var user model.User
	if err := scope.apply(r.db.WithContext(ctx)).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string, scope Scope) (*model.User, error) {
	var user model.User
	if err := scope.apply(r.db.WithContext(ctx)).
		Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users including soft-deleted ones, with their direct role
// and permission assignments preloaded for the index page.
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Unscoped().
		Preload("Roles").Preload("Permissions").
		Order("id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, id uint, name, username, email string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":     name,
			"username": username,
			"email":    email,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, id).Error
}

// ForceDelete permanently removes the user together with its role and
// permission assignments, in one transaction.
func (r *userRepository) ForceDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.UserPermission{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.User{}, id).Error
	})
}

// Restore clears the soft-delete stamp of a trashed record. Zero affected
// rows means the record was permanently removed in the meantime.
func (r *userRepository) Restore(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Unscoped().Model(&model.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	return r.taken(ctx, "username", username, excludeID)
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.taken(ctx, "email", email, excludeID)
}

// taken checks uniqueness across soft-deleted records too: a trashed user
// still owns its username and email until permanently removed.
func (r *userRepository) taken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Unscoped().Model(&model.User{}).
		Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Stats counts users for the dashboard cards. All and Deleted span trashed
// records; Active and Inactive only cover users that are not soft-deleted,
// so All = Active + Inactive + Deleted.
func (r *userRepository) Stats(ctx context.Context) (*model.UserStats, error) {
	var stats model.UserStats
	if err := r.db.WithContext(ctx).Unscoped().Model(&model.User{}).
		Count(&stats.All).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email_verified_at IS NOT NULL").Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email_verified_at IS NULL").Count(&stats.Inactive).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Unscoped().Model(&model.User{}).
		Where("deleted_at IS NOT NULL").Count(&stats.Deleted).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// EffectivePermissions resolves the permissions a user holds directly plus
// those bundled by held roles. Read-only: role grants never materialize into
// the direct permission set.
func (r *userRepository) EffectivePermissions(ctx context.Context, id uint) ([]model.Permission, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Permissions").
		Preload("Roles.Permissions").
		First(&user, id).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	var effective []model.Permission
	add := func(perms []model.Permission) {
		for _, p := range perms {
			if !seen[p.ID] {
				seen[p.ID] = true
				effective = append(effective, p)
			}
		}
	}
	add(user.Permissions)
	for _, role := range user.Roles {
		add(role.Permissions)
	}
	return effective, nil
}
