package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"backoffice/internal/model"
)

// AssociationRepository implements the toggle protocol over the user↔role and
// user↔permission sets.
type AssociationRepository interface {
	ToggleRole(ctx context.Context, userID, roleID uint) (model.Outcome, error)
	TogglePermission(ctx context.Context, userID, permissionID uint) (model.Outcome, error)
}

type associationRepository struct {
	db *gorm.DB
}

// NewAssociationRepository builds a GORM-backed repository.
func NewAssociationRepository(db *gorm.DB) AssociationRepository {
	return &associationRepository{db: db}
}

func (r *associationRepository) ToggleRole(ctx context.Context, userID, roleID uint) (model.Outcome, error) {
	return r.toggle(ctx, &model.UserRole{UserID: userID, RoleID: roleID})
}

func (r *associationRepository) TogglePermission(ctx context.Context, userID, permissionID uint) (model.Outcome, error) {
	return r.toggle(ctx, &model.UserPermission{UserID: userID, PermissionID: permissionID})
}

// toggle flips membership of one association pair inside a transaction. The
// conditional insert leans on the composite primary key: a no-op insert means
// the pair exists (possibly inserted by a concurrent toggle a moment ago), so
// the pair is removed instead. A concurrent double-click therefore settles as
// granted then revoked, never as a duplicate pair or an error.
func (r *associationRepository) toggle(ctx context.Context, pair interface{}) (model.Outcome, error) {
	var outcome model.Outcome
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(pair)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			outcome = model.OutcomeGranted
			return nil
		}
		if err := tx.Delete(pair).Error; err != nil {
			return err
		}
		outcome = model.OutcomeRevoked
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}
