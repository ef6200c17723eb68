package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"dndinfo/internal/domain/auth"
	"dndinfo/internal/labels"
	"dndinfo/internal/observability"
	"dndinfo/internal/pkg/logger"
)

const (
	maxPerPage      = 100
	maxSimilarLimit = 20
	recentApproved  = 5
)

// Action is a moderation decision.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// ListQuery is a public listing request.
type ListQuery struct {
	// Homebrew switches from the official catalog to approved homebrew.
	Homebrew bool
	Search   string
	Filters  map[string]string
	Sort     string
	Page     int
	PerPage  int
}

type Page struct {
	Items   []Item
	Total   int64
	Page    int
	PerPage int
}

type BulkResult struct {
	Action    Action  `json:"action"`
	Requested int     `json:"requested"`
	Affected  int     `json:"affected"`
	Skipped   []int64 `json:"skipped"`
}

type KindStats struct {
	Kind           Kind   `json:"kind"`
	Pending        int64  `json:"pending"`
	Approved       int64  `json:"approved"`
	RecentApproved []Item `json:"recent_approved"`
}

type Dashboard struct {
	Kinds         []KindStats `json:"kinds"`
	TotalPending  int64       `json:"total_pending"`
	TotalApproved int64       `json:"total_approved"`
}

// KindOverview is the public summary of one kind.
type KindOverview struct {
	Kind           Kind
	Official       int64
	Homebrew       int64
	RecentOfficial []Item
	RecentHomebrew []Item
}

type Options struct {
	SimilarLimit     int
	SimilarScanLimit int

	// Events receives moderation queue changes; nil discards them.
	Events Publisher
}

// Service is the content visibility and moderation gate, shared by every kind.
type Service struct {
	repo   *Repository
	labels *labels.Table
	log    *logger.Logger
	opts   Options
}

func NewService(repo *Repository, table *labels.Table, log *logger.Logger, opts Options) *Service {
	if opts.SimilarLimit <= 0 {
		opts.SimilarLimit = 5
	}
	if opts.SimilarScanLimit < opts.SimilarLimit {
		opts.SimilarScanLimit = 500
	}
	if opts.Events == nil {
		opts.Events = nopPublisher{}
	}
	return &Service{repo: repo, labels: table, log: log, opts: opts}
}

func (s *Service) Labels() *labels.Table { return s.labels }

// CanEdit reports whether actor may edit item: administrators always, owners
// only while the item is homebrew.
func CanEdit(item Item, actor auth.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	m := item.Mod()
	return m.IsHomebrew && actor.Owns(m.CreatedByID)
}

// VisibleTo reports whether actor may see item at all.
func VisibleTo(item Item, actor auth.Actor) bool {
	m := item.Mod()
	return m.PubliclyVisible() || actor.IsAdmin() || actor.Owns(m.CreatedByID)
}

// ListVisible returns one page of the official catalog or of approved
// homebrew, never both.
func (s *Service) ListVisible(ctx context.Context, kind Kind, q ListQuery) (*Page, error) {
	d, err := describe(kind)
	if err != nil {
		return nil, err
	}

	visibility := publicOfficial
	if q.Homebrew {
		visibility = publicHomebrew
	}
	page, perPage := normalizePage(q.Page, q.PerPage, d.defaultPerPage)

	items, total, err := s.repo.List(ctx, kind, ListOptions{
		Scopes: []Scope{
			visibility,
			func(db *gorm.DB) *gorm.DB { return d.search(db, q.Search) },
			func(db *gorm.DB) *gorm.DB { return d.filter(db, q.Filters) },
		},
		Order:   d.order(q.Sort, s.labels) + ", id ASC",
		Offset:  (page - 1) * perPage,
		Limit:   perPage,
		Preload: true,
		Count:   true,
	})
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// Get is the detail lookup. Pending homebrew is reported as absent to
// everyone but its owner and administrators.
func (s *Service) Get(ctx context.Context, actor auth.Actor, kind Kind, id int64) (Item, error) {
	item, err := s.repo.Find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !VisibleTo(item, actor) {
		return nil, ErrNotFound
	}
	return item, nil
}

// ListMine returns everything actor submitted, in any moderation state.
func (s *Service) ListMine(ctx context.Context, actor auth.Actor, kind Kind, page, perPage int) (*Page, error) {
	if actor.IsAnonymous() {
		return nil, ErrPermission
	}
	d, err := describe(kind)
	if err != nil {
		return nil, err
	}
	page, perPage = normalizePage(page, perPage, d.defaultPerPage)

	items, total, err := s.repo.List(ctx, kind, ListOptions{
		Scopes:  []Scope{ownedBy(actor.UserID)},
		Order:   "created_at DESC, id DESC",
		Offset:  (page - 1) * perPage,
		Limit:   perPage,
		Preload: true,
		Count:   true,
	})
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// ListPending is the administrator's moderation queue, newest first.
func (s *Service) ListPending(ctx context.Context, actor auth.Actor, kind Kind, page, perPage int) (*Page, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermission
	}
	if _, err := describe(kind); err != nil {
		return nil, err
	}
	page, perPage = normalizePage(page, perPage, 20)

	items, total, err := s.repo.List(ctx, kind, ListOptions{
		Scopes:  []Scope{pendingHomebrew},
		Order:   "created_at DESC, id DESC",
		Offset:  (page - 1) * perPage,
		Limit:   perPage,
		Preload: true,
		Count:   true,
	})
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// Submit stores user content as pending homebrew owned by actor.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, in Input) (Item, error) {
	if actor.IsAnonymous() {
		return nil, ErrPermission
	}
	if err := validateInput(in, s.labels); err != nil {
		return nil, err
	}

	item := in.build()
	*item.Mod() = homebrew(actor.UserID)

	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("homebrew submitted", "kind", item.ItemKind(), "id", item.ItemID(), "user_id", actor.UserID)
	s.publish(Event{
		Type: EventSubmitted, Kind: item.ItemKind(), ItemID: item.ItemID(),
		Name: item.ItemName(), Status: StatusPending, ActorID: actor.UserID,
	})
	return item, nil
}

// Edit applies new attributes. A non-administrator edit of homebrew sends the
// item back to the moderation queue.
func (s *Service) Edit(ctx context.Context, actor auth.Actor, kind Kind, id int64, in Input) (Item, error) {
	if in.Kind() != kind {
		return nil, ErrUnknownKind
	}

	var updated Item
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.Find(ctx, kind, id)
		if err != nil {
			return err
		}
		if !CanEdit(item, actor) {
			return ErrPermission
		}
		if err := validateInput(in, s.labels); err != nil {
			return err
		}

		in.applyTo(item)
		m := item.Mod()
		switch {
		case !m.IsHomebrew:
			m.IsApproved = true
		case !actor.IsAdmin():
			m.IsApproved = false
		case in.approvalOverride() != nil:
			m.IsApproved = *in.approvalOverride()
		}

		if err := repo.Update(ctx, item); err != nil {
			return err
		}
		updated, err = repo.Find(ctx, kind, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("catalog item edited",
		"kind", kind, "id", id, "user_id", actor.UserID,
		"status", updated.Mod().Status())
	if updated.Mod().IsHomebrew {
		s.publish(Event{
			Type: EventEdited, Kind: kind, ItemID: id,
			Name: updated.ItemName(), Status: updated.Mod().Status(), ActorID: actor.UserID,
		})
	}
	return updated, nil
}

// Approve moves a pending homebrew item to approved. Anything else, including
// an already approved item, is reported as not found.
func (s *Service) Approve(ctx context.Context, actor auth.Actor, kind Kind, id int64) error {
	if !actor.IsAdmin() {
		return ErrPermission
	}
	ok, err := s.repo.Approve(ctx, kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.recordModeration(actor, kind, ActionApprove, id)
	s.publish(Event{Type: EventApproved, Kind: kind, ItemID: id, Status: StatusApproved, ActorID: actor.UserID})
	return nil
}

// Reject deletes a homebrew item outright.
func (s *Service) Reject(ctx context.Context, actor auth.Actor, kind Kind, id int64) error {
	if !actor.IsAdmin() {
		return ErrPermission
	}
	var ok bool
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ok, err = s.repo.WithTx(tx).Delete(ctx, kind, id, true)
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.recordModeration(actor, kind, ActionReject, id)
	s.publish(Event{Type: EventRejected, Kind: kind, ItemID: id, ActorID: actor.UserID})
	return nil
}

// Delete removes any item, official or not.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, kind Kind, id int64) error {
	if !actor.IsAdmin() {
		return ErrPermission
	}
	var ok bool
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ok, err = s.repo.WithTx(tx).Delete(ctx, kind, id, false)
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.recordModeration(actor, kind, "delete", id)
	s.publish(Event{Type: EventDeleted, Kind: kind, ItemID: id, ActorID: actor.UserID})
	return nil
}

// BulkModerate applies one action to many ids. Ids that do not match the
// action's precondition are skipped; only storage errors abort the batch.
func (s *Service) BulkModerate(ctx context.Context, actor auth.Actor, kind Kind, ids []int64, action Action) (*BulkResult, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermission
	}
	if _, err := describe(kind); err != nil {
		return nil, err
	}
	if action != ActionApprove && action != ActionReject {
		return nil, newValidationError(map[string]string{"action": "oneof=approve reject"})
	}
	ids = lo.Uniq(lo.Filter(ids, func(id int64, _ int) bool { return id > 0 }))
	if len(ids) == 0 {
		return nil, newValidationError(map[string]string{"ids": "required"})
	}

	result := &BulkResult{Action: action, Requested: len(ids), Skipped: []int64{}}
	var affected []int64
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, id := range ids {
			var (
				ok  bool
				err error
			)
			if action == ActionApprove {
				ok, err = repo.Approve(ctx, kind, id)
			} else {
				ok, err = repo.Delete(ctx, kind, id, true)
			}
			if err != nil {
				return err
			}
			if ok {
				affected = append(affected, id)
			} else {
				result.Skipped = append(result.Skipped, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Affected = len(affected)

	event := Event{Type: EventApproved, Kind: kind, Status: StatusApproved, ActorID: actor.UserID}
	if action == ActionReject {
		event = Event{Type: EventRejected, Kind: kind, ActorID: actor.UserID}
	}
	for _, id := range affected {
		event.ItemID = id
		s.publish(event)
	}

	observability.ModerationActionsTotal.WithLabelValues(string(kind), string(action)).Add(float64(result.Affected))
	s.log.Info("bulk moderation",
		"kind", kind, "action", action, "admin_id", actor.UserID,
		"requested", result.Requested, "affected", result.Affected, "skipped", result.Skipped)
	return result, nil
}

// ImportOfficial stores an item from the official dataset unless an official
// item with the same name exists. It reports whether a row was created.
func (s *Service) ImportOfficial(ctx context.Context, item Item) (Item, bool, error) {
	existing, err := s.repo.FindOfficialByName(ctx, item.ItemKind(), item.ItemName())
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	*item.Mod() = official()
	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, item)
	})
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// Dashboard summarises the moderation queues for the admin panel.
func (s *Service) Dashboard(ctx context.Context, actor auth.Actor) (*Dashboard, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermission
	}

	out := &Dashboard{Kinds: make([]KindStats, 0, len(Kinds))}
	for _, kind := range Kinds {
		pending, err := s.repo.Count(ctx, kind, pendingHomebrew)
		if err != nil {
			return nil, err
		}
		recent, approved, err := s.repo.List(ctx, kind, ListOptions{
			Scopes: []Scope{publicHomebrew},
			Order:  "created_at DESC, id DESC",
			Limit:  recentApproved,
			Count:  true,
		})
		if err != nil {
			return nil, err
		}

		out.Kinds = append(out.Kinds, KindStats{Kind: kind, Pending: pending, Approved: approved, RecentApproved: recent})
		out.TotalPending += pending
		out.TotalApproved += approved
	}
	return out, nil
}

// Overview counts the public catalog of every kind and picks the newest
// official and approved homebrew items of each.
func (s *Service) Overview(ctx context.Context) ([]KindOverview, error) {
	out := make([]KindOverview, 0, len(Kinds))
	for _, kind := range Kinds {
		ov := KindOverview{Kind: kind}
		var err error

		ov.RecentOfficial, ov.Official, err = s.repo.List(ctx, kind, ListOptions{
			Scopes:  []Scope{publicOfficial},
			Order:   "created_at DESC, id DESC",
			Limit:   recentApproved,
			Preload: true,
			Count:   true,
		})
		if err != nil {
			return nil, err
		}
		ov.RecentHomebrew, ov.Homebrew, err = s.repo.List(ctx, kind, ListOptions{
			Scopes:  []Scope{publicHomebrew},
			Order:   "created_at DESC, id DESC",
			Limit:   recentApproved,
			Preload: true,
			Count:   true,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, ov)
	}
	return out, nil
}

// Similar returns up to limit publicly visible items related to the given one.
func (s *Service) Similar(ctx context.Context, actor auth.Actor, kind Kind, id int64, limit int) ([]Item, error) {
	src, err := s.Get(ctx, actor, kind, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.opts.SimilarLimit
	}
	if limit > maxSimilarLimit {
		limit = maxSimilarLimit
	}

	// Candidates are read in id-ordered batches. Ranking is a total order, so
	// the best of each batch's best equals the best of all visible items.
	effects := s.labels.EffectKeywords()
	var best []Item
	var lastID int64
	for {
		batch, _, err := s.repo.List(ctx, kind, ListOptions{
			Scopes: []Scope{publiclyVisible, excluding(id), after(lastID)},
			Order:  "id ASC",
			Limit:  s.opts.SimilarScanLimit,
		})
		if err != nil {
			s.log.Warn("similar candidates fetch failed", "kind", kind, "id", id, "error", err)
			return []Item{}, nil
		}
		if len(batch) == 0 {
			break
		}
		best = RankSimilar(src, append(best, batch...), effects, limit)
		lastID = batch[len(batch)-1].ItemID()
		if len(batch) < s.opts.SimilarScanLimit {
			break
		}
	}

	related := RankSimilar(src, best, effects, limit)
	observability.SimilarResultSize.WithLabelValues(string(kind)).Observe(float64(len(related)))
	return related, nil
}

func (s *Service) recordModeration(actor auth.Actor, kind Kind, action Action, id int64) {
	observability.ModerationActionsTotal.WithLabelValues(string(kind), string(action)).Inc()
	s.log.Info("moderation", "kind", kind, "action", action, "id", id, "admin_id", actor.UserID)
}

func normalizePage(page, perPage, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = def
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// ParseAction validates a moderation action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionApprove, ActionReject:
		return a, nil
	}
	return "", newValidationError(map[string]string{"action": "oneof=approve reject"})
}
