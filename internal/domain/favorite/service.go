package favorite

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"dndinfo/internal/domain/auth"
	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/labels"
	"dndinfo/internal/pkg/logger"
)

// itemLookup resolves a catalog item as seen by an actor.
type itemLookup interface {
	Get(ctx context.Context, actor auth.Actor, kind catalog.Kind, id int64) (catalog.Item, error)
}

// Group is one kind's slice of a user's favorites.
type Group struct {
	Kind  catalog.Kind   `json:"kind"`
	Label string         `json:"label"`
	Count int            `json:"count"`
	Items []catalog.Item `json:"-"`
}

type Service struct {
	repo    *Repository
	catalog itemLookup
	labels  *labels.Table
	log     *logger.Logger
}

func NewService(repo *Repository, items itemLookup, table *labels.Table, log *logger.Logger) *Service {
	return &Service{repo: repo, catalog: items, labels: table, log: log}
}

func (s *Service) Add(ctx context.Context, actor auth.Actor, kind catalog.Kind, id int64) (*Favorite, error) {
	if actor.IsAnonymous() {
		return nil, catalog.ErrPermission
	}
	if _, err := s.catalog.Get(ctx, actor, kind, id); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, actor.UserID, kind, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyFavorite
	}

	f := &Favorite{UserID: actor.UserID, Kind: kind, ObjectID: id}
	if err := s.repo.Create(ctx, f); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyFavorite
		}
		return nil, err
	}
	return f, nil
}

func (s *Service) Remove(ctx context.Context, actor auth.Actor, kind catalog.Kind, id int64) error {
	if actor.IsAnonymous() {
		return catalog.ErrPermission
	}
	if !kind.Valid() {
		return catalog.ErrUnknownKind
	}
	ok, err := s.repo.Delete(ctx, actor.UserID, kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFavorite
	}
	return nil
}

func (s *Service) Check(ctx context.Context, actor auth.Actor, kind catalog.Kind, id int64) (bool, error) {
	if actor.IsAnonymous() {
		return false, nil
	}
	if !kind.Valid() {
		return false, catalog.ErrUnknownKind
	}
	return s.repo.Exists(ctx, actor.UserID, kind, id)
}

// List resolves the actor's favorites grouped by kind, in catalog kind order.
// Favorites whose item is gone or no longer visible are left out.
func (s *Service) List(ctx context.Context, actor auth.Actor) ([]Group, error) {
	if actor.IsAnonymous() {
		return nil, catalog.ErrPermission
	}
	favs, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	var resolved []catalog.Item
	for _, f := range favs {
		item, err := s.catalog.Get(ctx, actor, f.Kind, f.ObjectID)
		if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrUnknownKind) {
			s.log.Debug("skipping dangling favorite", "favorite_id", f.ID, "kind", f.Kind, "object_id", f.ObjectID)
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, item)
	}

	byKind := lo.GroupBy(resolved, func(item catalog.Item) catalog.Kind { return item.ItemKind() })
	groups := make([]Group, 0, len(catalog.Kinds))
	for _, kind := range catalog.Kinds {
		items := byKind[kind]
		if items == nil {
			items = []catalog.Item{}
		}
		groups = append(groups, Group{
			Kind:  kind,
			Label: s.labels.Label(labels.Kinds, string(kind)),
			Count: len(items),
			Items: items,
		})
	}
	return groups, nil
}
