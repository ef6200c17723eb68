package catalog

import (
	"github.com/samber/lo"

	"dndinfo/internal/domain/auth"
	"dndinfo/internal/labels"
)

// ItemView is an item as the API returns it: the stored attributes plus the
// derived moderation status, display labels and the caller's edit right.
type ItemView struct {
	Kind    Kind              `json:"kind"`
	Status  Status            `json:"status"`
	CanEdit bool              `json:"can_edit"`
	Labels  map[string]string `json:"labels"`
	Item    Item              `json:"item"`

	// Modifiers holds ability modifiers; set for monsters only.
	Modifiers map[string]int `json:"modifiers,omitempty"`
}

func NewView(item Item, actor auth.Actor, t *labels.Table) ItemView {
	view := ItemView{
		Kind:    item.ItemKind(),
		Status:  item.Mod().Status(),
		CanEdit: CanEdit(item, actor),
		Labels:  displayLabels(item, t),
		Item:    item,
	}
	if m, ok := item.(*Monster); ok {
		view.Modifiers = m.Modifiers()
	}
	return view
}

func NewViews(items []Item, actor auth.Actor, t *labels.Table) []ItemView {
	return lo.Map(items, func(item Item, _ int) ItemView { return NewView(item, actor, t) })
}

func displayLabels(item Item, t *labels.Table) map[string]string {
	out := map[string]string{}
	switch v := item.(type) {
	case *Monster:
		out["size"] = t.Label(labels.Sizes, v.Size)
		for _, ac := range v.ArmorClasses {
			out["armor_type."+ac.Type] = t.Label(labels.ArmorTypes, ac.Type)
		}
		for _, sp := range v.Speeds {
			out["movement_type."+sp.MovementType] = t.Label(labels.MovementTypes, sp.MovementType)
		}
	case *Spell:
		out["school"] = t.Label(labels.Schools, v.School)
		out["level"] = t.LevelLabel(v.Level)
		for _, code := range v.ComponentCodes() {
			out["component."+code] = t.Label(labels.ComponentTypes, code)
		}
	case *Equipment:
		out["cost_unit"] = t.Label(labels.CurrencyUnits, v.CostUnit)
	}
	return out
}
