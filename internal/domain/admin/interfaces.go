package admin

import (
	"context"

	"dndinfo/internal/domain/auth"
	"dndinfo/internal/domain/catalog"
)

// Moderator is the part of the catalog gate the admin panel drives.
type Moderator interface {
	Dashboard(ctx context.Context, actor auth.Actor) (*catalog.Dashboard, error)
	ListPending(ctx context.Context, actor auth.Actor, kind catalog.Kind, page, perPage int) (*catalog.Page, error)
	Approve(ctx context.Context, actor auth.Actor, kind catalog.Kind, id int64) error
	Reject(ctx context.Context, actor auth.Actor, kind catalog.Kind, id int64) error
	BulkModerate(ctx context.Context, actor auth.Actor, kind catalog.Kind, ids []int64, action catalog.Action) (*catalog.BulkResult, error)
}
