package favorite

import (
	"context"

	"gorm.io/gorm"

	"dndinfo/internal/domain/catalog"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, f *Favorite) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *Repository) Exists(ctx context.Context, userID int64, kind catalog.Kind, objectID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Favorite{}).
		Where("user_id = ? AND kind = ? AND object_id = ?", userID, kind, objectID).
		Count(&n).Error
	return n > 0, err
}

// Delete reports false when there was nothing to delete.
func (r *Repository) Delete(ctx context.Context, userID int64, kind catalog.Kind, objectID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND object_id = ?", userID, kind, objectID).
		Delete(&Favorite{})
	return res.RowsAffected > 0, res.Error
}

// ListByUser returns the user's favorites, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Favorite, error) {
	var out []Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *Repository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Favorite{}).Error
}
