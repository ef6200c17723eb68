package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"dndinfo/internal/labels"
)

// dependent is a child table deleted and rewritten together with its parent.
type dependent struct {
	model any
	fk    string
}

// descriptor carries everything kind-specific the gate and the repository need.
type descriptor struct {
	kind     Kind
	table    string
	newItem  func() Item
	find     func(q *gorm.DB) ([]Item, error)
	preloads []string
	children []dependent

	searchColumns  []string
	defaultPerPage int
	filter         func(q *gorm.DB, filters map[string]string) *gorm.DB
	order          func(sort string, t *labels.Table) string
}

var descriptors = map[Kind]*descriptor{
	KindMonster: {
		kind:     KindMonster,
		table:    "monsters",
		newItem:  func() Item { return &Monster{} },
		find:     findAll[Monster, *Monster],
		preloads: []string{"ArmorClasses", "Speeds"},
		children: []dependent{
			{model: &ArmorClass{}, fk: "monster_id"},
			{model: &Speed{}, fk: "monster_id"},
		},
		searchColumns:  []string{"name"},
		defaultPerPage: 12,
		filter:         filterMonsters,
		order:          orderMonsters,
	},
	KindSpell: {
		kind:     KindSpell,
		table:    "spells",
		newItem:  func() Item { return &Spell{} },
		find:     findAll[Spell, *Spell],
		preloads: []string{"Components"},
		children: []dependent{
			{model: &Component{}, fk: "spell_id"},
		},
		searchColumns:  []string{"name", "description"},
		defaultPerPage: 10,
		filter:         filterSpells,
		order:          orderSpells,
	},
	KindEquipment: {
		kind:           KindEquipment,
		table:          "equipment",
		newItem:        func() Item { return &Equipment{} },
		find:           findAll[Equipment, *Equipment],
		searchColumns:  []string{"name"},
		defaultPerPage: 12,
		filter:         filterEquipment,
		order:          orderEquipment,
	},
}

func describe(kind Kind) (*descriptor, error) {
	d, ok := descriptors[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return d, nil
}

func findAll[T any, PT interface {
	*T
	Item
}](q *gorm.DB) ([]Item, error) {
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]Item, len(rows))
	for i := range rows {
		items[i] = PT(&rows[i])
	}
	return items, nil
}

func (d *descriptor) withPreloads(q *gorm.DB) *gorm.DB {
	for _, p := range d.preloads {
		q = q.Preload(p)
	}
	return q
}

func (d *descriptor) search(q *gorm.DB, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return q
	}
	like := containsPattern(term)
	conds := make([]string, 0, len(d.searchColumns))
	args := make([]any, 0, len(d.searchColumns))
	for _, col := range d.searchColumns {
		conds = append(conds, "LOWER("+col+") LIKE ? ESCAPE '\\'")
		args = append(args, like)
	}
	return q.Where(strings.Join(conds, " OR "), args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern lower-cases term and escapes LIKE wildcards in it.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

/* ---------- monsters ---------- */

var monsterAbilitySorts = map[string]string{
	"hit_points":   "hit_points DESC",
	"strength":     "strength DESC",
	"dexterity":    "dexterity DESC",
	"constitution": "constitution DESC",
	"intelligence": "intelligence DESC",
	"wisdom":       "wisdom DESC",
	"charisma":     "charisma DESC",
}

func filterMonsters(q *gorm.DB, f map[string]string) *gorm.DB {
	if size := strings.TrimSpace(f["size"]); size != "" {
		q = q.Where("size = ?", size)
	}
	if typ := strings.TrimSpace(f["type"]); typ != "" {
		q = q.Where("LOWER(type) LIKE ? ESCAPE '\\'", containsPattern(typ))
	}
	return q
}

func orderMonsters(sort string, _ *labels.Table) string {
	if o, ok := monsterAbilitySorts[sort]; ok {
		return o + ", name ASC"
	}
	return "name ASC"
}

/* ---------- spells ---------- */

func filterSpells(q *gorm.DB, f map[string]string) *gorm.DB {
	if raw := strings.TrimSpace(f["level"]); raw != "" {
		if level, err := strconv.Atoi(raw); err == nil && level >= 0 && level <= 9 {
			q = q.Where("level = ?", level)
		}
	}
	if school := strings.ToLower(strings.TrimSpace(f["school"])); school != "" {
		q = q.Where("school = ?", school)
	}
	return q
}

func orderSpells(sort string, _ *labels.Table) string {
	switch sort {
	case "level":
		return "level ASC, name ASC"
	case "school":
		return "school ASC, name ASC"
	}
	return "name ASC"
}

/* ---------- equipment ---------- */

func filterEquipment(q *gorm.DB, f map[string]string) *gorm.DB {
	if unit := strings.ToLower(strings.TrimSpace(f["cost_unit"])); unit != "" {
		q = q.Where("cost_unit = ?", unit)
	}
	switch f["weight"] {
	case "light":
		q = q.Where("weight < ?", 5)
	case "medium":
		q = q.Where("weight >= ? AND weight <= ?", 5, 15)
	case "heavy":
		q = q.Where("weight > ?", 15)
	}
	return q
}

func orderEquipment(sort string, t *labels.Table) string {
	switch sort {
	case "weight_asc":
		return "weight ASC, name ASC"
	case "weight_desc":
		return "weight DESC, name ASC"
	case "price_asc":
		return copperPrice(t) + " ASC, name ASC"
	case "price_desc":
		return copperPrice(t) + " DESC, name ASC"
	}
	return "name ASC"
}

// copperPrice is a SQL expression for the cost normalised to copper pieces.
func copperPrice(t *labels.Table) string {
	var b strings.Builder
	b.WriteString("(cost_quantity * CASE cost_unit")
	for _, unit := range t.Codes(labels.CurrencyUnits) {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", strings.ReplaceAll(unit, "'", "''"), t.CopperRate(unit))
	}
	b.WriteString(" ELSE 0 END)")
	return b.String()
}
