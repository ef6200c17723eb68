package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scope narrows a query; nil scopes are ignored.
type Scope func(q *gorm.DB) *gorm.DB

func publicOfficial(q *gorm.DB) *gorm.DB {
	return q.Where("is_homebrew = ?", false)
}

func publicHomebrew(q *gorm.DB) *gorm.DB {
	return q.Where("is_homebrew = ? AND is_approved = ?", true, true)
}

func publiclyVisible(q *gorm.DB) *gorm.DB {
	return q.Where("is_homebrew = ? OR is_approved = ?", false, true)
}

func pendingHomebrew(q *gorm.DB) *gorm.DB {
	return q.Where("is_homebrew = ? AND is_approved = ?", true, false)
}

func ownedBy(userID int64) Scope {
	return func(q *gorm.DB) *gorm.DB { return q.Where("created_by_id = ?", userID) }
}

func excluding(id int64) Scope {
	return func(q *gorm.DB) *gorm.DB { return q.Where("id <> ?", id) }
}

func after(id int64) Scope {
	return func(q *gorm.DB) *gorm.DB { return q.Where("id > ?", id) }
}

type ListOptions struct {
	Scopes  []Scope
	Order   string
	Offset  int
	Limit   int
	Preload bool
	Count   bool
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Find(ctx context.Context, kind Kind, id int64) (Item, error) {
	d, err := describe(kind)
	if err != nil {
		return nil, err
	}

	item := d.newItem()
	err = d.withPreloads(r.db.WithContext(ctx)).First(item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List returns one page of items and, when opts.Count is set, the total
// number of rows matching the scopes.
func (r *Repository) List(ctx context.Context, kind Kind, opts ListOptions) ([]Item, int64, error) {
	d, err := describe(kind)
	if err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).Table(d.table)
	for _, s := range opts.Scopes {
		if s != nil {
			q = s(q)
		}
	}

	var total int64
	if opts.Count {
		if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return nil, 0, err
		}
	}

	if opts.Order != "" {
		q = q.Order(opts.Order)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Preload {
		q = d.withPreloads(q)
	}

	items, err := d.find(q)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) Count(ctx context.Context, kind Kind, scopes ...Scope) (int64, error) {
	_, total, err := r.List(ctx, kind, ListOptions{Scopes: scopes, Count: true, Limit: 1})
	return total, err
}

// FindOfficialByName looks up an imported item by its exact name.
func (r *Repository) FindOfficialByName(ctx context.Context, kind Kind, name string) (Item, error) {
	items, _, err := r.List(ctx, kind, ListOptions{
		Scopes: []Scope{publicOfficial, func(q *gorm.DB) *gorm.DB { return q.Where("name = ?", name) }},
		Order:  "id ASC",
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

// Create inserts the item together with its dependent rows.
func (r *Repository) Create(ctx context.Context, item Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update rewrites the item's columns and replaces its dependent rows.
func (r *Repository) Update(ctx context.Context, item Item) error {
	d, err := describe(item.ItemKind())
	if err != nil {
		return err
	}
	db := r.db.WithContext(ctx)

	if err := r.deleteDependents(ctx, d, item.ItemID()); err != nil {
		return err
	}
	if err := db.Omit(clause.Associations).Save(item).Error; err != nil {
		return err
	}
	if p, ok := item.(parent); ok {
		for _, rows := range p.dependentRows() {
			if err := db.Create(rows).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Approve flips a pending homebrew item to approved. It reports false when no
// pending homebrew item with that id exists.
func (r *Repository) Approve(ctx context.Context, kind Kind, id int64) (bool, error) {
	d, err := describe(kind)
	if err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Table(d.table).
		Where("id = ? AND is_homebrew = ? AND is_approved = ?", id, true, false).
		Update("is_approved", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the item and its dependent rows. With homebrewOnly set,
// official items are left alone. It reports false when nothing matched.
func (r *Repository) Delete(ctx context.Context, kind Kind, id int64, homebrewOnly bool) (bool, error) {
	d, err := describe(kind)
	if err != nil {
		return false, err
	}
	db := r.db.WithContext(ctx)

	q := db.Table(d.table).Where("id = ?", id)
	if homebrewOnly {
		q = q.Where("is_homebrew = ?", true)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if err := r.deleteDependents(ctx, d, id); err != nil {
		return false, err
	}
	if err := db.Delete(d.newItem(), id).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) deleteDependents(ctx context.Context, d *descriptor, id int64) error {
	for _, dep := range d.children {
		if err := r.db.WithContext(ctx).Where(dep.fk+" = ?", id).Delete(dep.model).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReleaseOwner clears created_by_id on every item the user owns, in all kinds.
func (r *Repository) ReleaseOwner(ctx context.Context, userID int64) error {
	for _, k := range Kinds {
		d := descriptors[k]
		if err := r.db.WithContext(ctx).Table(d.table).
			Where("created_by_id = ?", userID).
			Update("created_by_id", nil).Error; err != nil {
			return err
		}
	}
	return nil
}
