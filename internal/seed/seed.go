package seed

import (
	"context"
	"fmt"

	"dndinfo/internal/domain/auth"
	"dndinfo/internal/domain/catalog"
)

// Catalog is the part of the catalog service the seeder drives.
type Catalog interface {
	Submit(ctx context.Context, actor auth.Actor, in catalog.Input) (catalog.Item, error)
	Approve(ctx context.Context, actor auth.Actor, kind catalog.Kind, id int64) error
}

type Options struct {
	// PerKind is the number of homebrew submissions per kind.
	PerKind int
	// ApproveEvery approves every n-th submission; 0 leaves everything pending.
	ApproveEvery int
}

type Result struct {
	Submitted map[catalog.Kind]int
	Approved  map[catalog.Kind]int
}

// Homebrew submits PerKind generated items of every kind as author and lets
// moderator approve a share of them.
func Homebrew(ctx context.Context, cat Catalog, f *Factory, author, moderator auth.Actor, opts Options) (*Result, error) {
	res := &Result{Submitted: map[catalog.Kind]int{}, Approved: map[catalog.Kind]int{}}
	for _, kind := range catalog.Kinds {
		for i := 1; i <= opts.PerKind; i++ {
			in, err := f.Input(kind)
			if err != nil {
				return res, err
			}
			item, err := cat.Submit(ctx, author, in)
			if err != nil {
				return res, fmt.Errorf("submit %s #%d: %w", kind, i, err)
			}
			res.Submitted[kind]++

			if opts.ApproveEvery > 0 && i%opts.ApproveEvery == 0 {
				if err := cat.Approve(ctx, moderator, kind, item.ItemID()); err != nil {
					return res, fmt.Errorf("approve %s %d: %w", kind, item.ItemID(), err)
				}
				res.Approved[kind]++
			}
		}
	}
	return res, nil
}
