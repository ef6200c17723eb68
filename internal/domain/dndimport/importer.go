package dndimport

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/labels"
	"dndinfo/internal/observability"
	"dndinfo/internal/pkg/logger"
)

const maxSpellDesc = 1000

// Source is the remote dataset.
type Source interface {
	List(ctx context.Context, resource string) ([]Reference, error)
	Monster(ctx context.Context, index string) (*Monster, error)
	Spell(ctx context.Context, index string) (*Spell, error)
	Equipment(ctx context.Context, index string) (*Equipment, error)
}

// Target stores official items.
type Target interface {
	ImportOfficial(ctx context.Context, item catalog.Item) (catalog.Item, bool, error)
}

type KindReport struct {
	Kind     catalog.Kind `json:"kind"`
	Listed   int          `json:"listed"`
	Created  int          `json:"created"`
	Existing int          `json:"existing"`
	Failed   int          `json:"failed"`

	// Error is set when the kind's index could not be listed at all.
	Error string `json:"error,omitempty"`
}

type Report struct {
	Kinds []KindReport `json:"kinds"`
}

func (r *Report) Totals() (created, existing, failed int) {
	for _, k := range r.Kinds {
		created += k.Created
		existing += k.Existing
		failed += k.Failed
	}
	return created, existing, failed
}

type Importer struct {
	source Source
	target Target
	labels *labels.Table
	log    *logger.Logger
}

func NewImporter(source Source, target Target, table *labels.Table, log *logger.Logger) *Importer {
	return &Importer{source: source, target: target, labels: table, log: log}
}

// Run imports up to limit items of each kind; limit 0 imports everything.
// A failing item is logged and counted, the run carries on.
func (im *Importer) Run(ctx context.Context, kinds []catalog.Kind, limit int) (*Report, error) {
	if len(kinds) == 0 {
		kinds = catalog.Kinds
	}
	report := &Report{Kinds: make([]KindReport, 0, len(kinds))}

	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		kr := KindReport{Kind: kind}

		refs, err := im.source.List(ctx, resourceOf(kind))
		if err != nil {
			im.log.Error("dnd api list failed", "kind", kind, "error", err)
			kr.Error = err.Error()
			report.Kinds = append(report.Kinds, kr)
			continue
		}
		if limit > 0 && len(refs) > limit {
			refs = refs[:limit]
		}
		kr.Listed = len(refs)

		for _, ref := range refs {
			outcome := im.importOne(ctx, kind, ref)
			switch outcome {
			case "created":
				kr.Created++
			case "existing":
				kr.Existing++
			default:
				kr.Failed++
			}
			observability.ImportItemsTotal.WithLabelValues(string(kind), outcome).Inc()
		}

		im.log.Info("import finished for kind",
			"kind", kind, "listed", kr.Listed, "created", kr.Created,
			"existing", kr.Existing, "failed", kr.Failed)
		report.Kinds = append(report.Kinds, kr)
	}
	return report, nil
}

func (im *Importer) importOne(ctx context.Context, kind catalog.Kind, ref Reference) string {
	item, err := im.fetch(ctx, kind, ref.Index)
	if err != nil {
		im.log.Warn("dnd api fetch failed", "kind", kind, "index", ref.Index, "error", err)
		return "failed"
	}
	if strings.TrimSpace(item.ItemName()) == "" {
		im.log.Warn("dnd api item without name", "kind", kind, "index", ref.Index)
		return "failed"
	}

	_, created, err := im.target.ImportOfficial(ctx, item)
	if err != nil {
		im.log.Error("import failed", "kind", kind, "index", ref.Index, "error", err)
		return "failed"
	}
	if created {
		return "created"
	}
	return "existing"
}

func (im *Importer) fetch(ctx context.Context, kind catalog.Kind, index string) (catalog.Item, error) {
	switch kind {
	case catalog.KindMonster:
		m, err := im.source.Monster(ctx, index)
		if err != nil {
			return nil, err
		}
		return im.monster(m), nil
	case catalog.KindSpell:
		s, err := im.source.Spell(ctx, index)
		if err != nil {
			return nil, err
		}
		return im.spell(s), nil
	case catalog.KindEquipment:
		e, err := im.source.Equipment(ctx, index)
		if err != nil {
			return nil, err
		}
		return im.equipment(e), nil
	}
	return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownKind, kind)
}

func resourceOf(kind catalog.Kind) string {
	switch kind {
	case catalog.KindMonster:
		return ResourceMonsters
	case catalog.KindSpell:
		return ResourceSpells
	}
	return ResourceEquipment
}

/* ---------- mapping ---------- */

func (im *Importer) monster(src *Monster) *catalog.Monster {
	m := &catalog.Monster{
		Name:         strings.TrimSpace(src.Name),
		Size:         orDefault(src.Size, "Medium"),
		Type:         orDefault(src.Type, "humanoid"),
		HitPoints:    src.HitPoints,
		Strength:     orAbility(src.Strength),
		Dexterity:    orAbility(src.Dexterity),
		Constitution: orAbility(src.Constitution),
		Intelligence: orAbility(src.Intelligence),
		Wisdom:       orAbility(src.Wisdom),
		Charisma:     orAbility(src.Charisma),
	}

	for _, ac := range src.ArmorClasses() {
		m.ArmorClasses = append(m.ArmorClasses, catalog.ArmorClass{
			Type:  im.code(labels.ArmorTypes, ac.Type, "other"),
			Value: ac.Value,
		})
	}

	// map iteration order is random; keep the stored order stable
	movements := make([]string, 0, len(src.Speed))
	for movement := range src.Speed {
		movements = append(movements, movement)
	}
	sort.Strings(movements)
	for _, movement := range movements {
		value := speedValue(src.Speed[movement])
		if value == "" {
			continue
		}
		m.Speeds = append(m.Speeds, catalog.Speed{
			MovementType: im.code(labels.MovementTypes, movement, "other"),
			Value:        value,
		})
	}
	return m
}

func (im *Importer) spell(src *Spell) *catalog.Spell {
	s := &catalog.Spell{
		Name:          strings.TrimSpace(src.Name),
		Desc:          truncateRunes(strings.Join(src.Desc, " "), maxSpellDesc),
		Range:         src.Range,
		Duration:      src.Duration,
		CastingTime:   src.CastingTime,
		Level:         src.Level,
		School:        im.code(labels.Schools, strings.ToLower(src.School.Index), "abjuration"),
		Ritual:        src.Ritual,
		Concentration: src.Concentration,
	}

	seen := map[string]bool{}
	for _, c := range src.Components {
		code := strings.ToUpper(strings.TrimSpace(c))
		if !im.labels.Has(labels.ComponentTypes, code) || seen[code] {
			continue
		}
		seen[code] = true
		s.Components = append(s.Components, catalog.Component{Type: code})
	}
	return s
}

func (im *Importer) equipment(src *Equipment) *catalog.Equipment {
	return &catalog.Equipment{
		Name:         strings.TrimSpace(src.Name),
		Description:  strings.Join(src.Desc, "\n"),
		Weight:       src.Weight,
		CostQuantity: src.Cost.Quantity,
		CostUnit:     im.code(labels.CurrencyUnits, strings.ToLower(src.Cost.Unit), "gp"),
	}
}

// code keeps value when the vocabulary knows it and falls back otherwise.
func (im *Importer) code(c labels.Category, value, fallback string) string {
	if im.labels.Has(c, value) {
		return value
	}
	return fallback
}

func speedValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case bool:
		if val {
			return "yes"
		}
	case float64:
		if val > 0 {
			return fmt.Sprintf("%g ft.", val)
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func orAbility(v int) int {
	if v <= 0 {
		return 10
	}
	return v
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
