package repository

import (
	"context"

	"gorm.io/gorm"

	"backoffice/internal/model"
)

// MenuRepository defines menu persistence operations.
type MenuRepository interface {
	Create(ctx context.Context, menu *model.Menu) error
	Update(ctx context.Context, menu *model.Menu) error
	FindByID(ctx context.Context, id uint) (*model.Menu, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context) ([]model.Menu, error)
	Delete(ctx context.Context, id uint) error
}

type menuRepository struct {
	db *gorm.DB
}

// NewMenuRepository builds a GORM-backed repository.
func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(ctx context.Context, menu *model.Menu) error {
	return r.db.WithContext(ctx).Create(menu).Error
}

func (r *menuRepository) Update(ctx context.Context, menu *model.Menu) error {
	return r.db.WithContext(ctx).Save(menu).Error
}

func (r *menuRepository) FindByID(ctx context.Context, id uint) (*model.Menu, error) {
	var menu model.Menu
	if err := r.db.WithContext(ctx).First(&menu, id).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Menu{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns all nodes in sibling render order. Grouping into a forest is
// done by the caller at read time.
func (r *menuRepository) List(ctx context.Context) ([]model.Menu, error) {
	var menus []model.Menu
	if err := r.db.WithContext(ctx).
		Order("position asc, id asc").Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

// Delete removes one node and reparents its children to root. Never cascades:
// one click must not be able to drop a whole navigation subtree.
func (r *menuRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Menu{}).Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Menu{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
