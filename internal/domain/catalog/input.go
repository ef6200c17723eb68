package catalog

import (
	"fmt"
	"strings"

	"dndinfo/internal/labels"
	"dndinfo/internal/pkg/validator"
)

// Input is a set of attribute values for creating or editing one kind.
type Input interface {
	Kind() Kind
	// build returns a new item carrying the attributes.
	build() Item
	// applyTo copies the attributes onto an existing item of the same kind.
	applyTo(item Item)
	// vocabularyErrors checks coded fields against the label table.
	vocabularyErrors(t *labels.Table) map[string]string
	// approvalOverride is the administrator's explicit approval choice, if any.
	approvalOverride() *bool
}

// NewInput returns an empty input for kind, ready for JSON decoding.
func NewInput(kind Kind) (Input, error) {
	switch kind {
	case KindMonster:
		return &MonsterInput{}, nil
	case KindSpell:
		return &SpellInput{}, nil
	case KindEquipment:
		return &EquipmentInput{}, nil
	}
	return nil, ErrUnknownKind
}

// AdminFields are honoured only when an administrator edits homebrew.
type AdminFields struct {
	IsApproved *bool `json:"is_approved,omitempty"`
}

func (a AdminFields) approvalOverride() *bool { return a.IsApproved }

type ArmorClassInput struct {
	Type  string `json:"type" validate:"required"`
	Value int    `json:"value" validate:"min=0,max=30"`
}

type SpeedInput struct {
	MovementType string `json:"movement_type" validate:"required"`
	Value        string `json:"value" validate:"required,max=50"`
}

type MonsterInput struct {
	Name         string            `json:"name" validate:"required,max=200"`
	Size         string            `json:"size" validate:"required"`
	Type         string            `json:"type" validate:"required,max=100"`
	HitPoints    int               `json:"hit_points" validate:"gt=0"`
	Strength     int               `json:"strength" validate:"min=1,max=30"`
	Dexterity    int               `json:"dexterity" validate:"min=1,max=30"`
	Constitution int               `json:"constitution" validate:"min=1,max=30"`
	Intelligence int               `json:"intelligence" validate:"min=1,max=30"`
	Wisdom       int               `json:"wisdom" validate:"min=1,max=30"`
	Charisma     int               `json:"charisma" validate:"min=1,max=30"`
	ArmorClasses []ArmorClassInput `json:"armor_classes" validate:"max=5,dive"`
	Speeds       []SpeedInput      `json:"speeds" validate:"max=8,dive"`
	AdminFields
}

func (in *MonsterInput) Kind() Kind { return KindMonster }

func (in *MonsterInput) build() Item {
	m := &Monster{}
	in.applyTo(m)
	return m
}

func (in *MonsterInput) applyTo(item Item) {
	m := item.(*Monster)
	m.Name = strings.TrimSpace(in.Name)
	m.Size = in.Size
	m.Type = strings.TrimSpace(in.Type)
	m.HitPoints = in.HitPoints
	m.Strength = in.Strength
	m.Dexterity = in.Dexterity
	m.Constitution = in.Constitution
	m.Intelligence = in.Intelligence
	m.Wisdom = in.Wisdom
	m.Charisma = in.Charisma

	m.ArmorClasses = make([]ArmorClass, 0, len(in.ArmorClasses))
	for _, ac := range in.ArmorClasses {
		m.ArmorClasses = append(m.ArmorClasses, ArmorClass{Type: ac.Type, Value: ac.Value})
	}
	m.Speeds = make([]Speed, 0, len(in.Speeds))
	for _, sp := range in.Speeds {
		m.Speeds = append(m.Speeds, Speed{MovementType: sp.MovementType, Value: strings.TrimSpace(sp.Value)})
	}
}

func (in *MonsterInput) vocabularyErrors(t *labels.Table) map[string]string {
	errs := map[string]string{}
	if !t.Has(labels.Sizes, in.Size) {
		errs["size"] = "oneof=" + strings.Join(t.Codes(labels.Sizes), " ")
	}
	for i, ac := range in.ArmorClasses {
		if !t.Has(labels.ArmorTypes, ac.Type) {
			errs[fmt.Sprintf("armor_classes[%d].type", i)] = "oneof=" + strings.Join(t.Codes(labels.ArmorTypes), " ")
		}
	}
	seen := map[string]bool{}
	for i, sp := range in.Speeds {
		field := fmt.Sprintf("speeds[%d].movement_type", i)
		switch {
		case !t.Has(labels.MovementTypes, sp.MovementType):
			errs[field] = "oneof=" + strings.Join(t.Codes(labels.MovementTypes), " ")
		case seen[sp.MovementType]:
			errs[field] = "unique"
		}
		seen[sp.MovementType] = true
	}
	return errs
}

type SpellInput struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Desc          string   `json:"desc" validate:"max=5000"`
	Range         string   `json:"range" validate:"max=100"`
	Duration      string   `json:"duration" validate:"max=100"`
	CastingTime   string   `json:"casting_time" validate:"max=100"`
	Level         int      `json:"level" validate:"min=0,max=9"`
	School        string   `json:"school" validate:"required"`
	Ritual        bool     `json:"ritual"`
	Concentration bool     `json:"concentration"`
	Components    []string `json:"components" validate:"max=3,unique"`
	AdminFields
}

func (in *SpellInput) Kind() Kind { return KindSpell }

func (in *SpellInput) build() Item {
	s := &Spell{}
	in.applyTo(s)
	return s
}

func (in *SpellInput) applyTo(item Item) {
	s := item.(*Spell)
	s.Name = strings.TrimSpace(in.Name)
	s.Desc = strings.TrimSpace(in.Desc)
	s.Range = in.Range
	s.Duration = in.Duration
	s.CastingTime = in.CastingTime
	s.Level = in.Level
	s.School = strings.ToLower(in.School)
	s.Ritual = in.Ritual
	s.Concentration = in.Concentration

	s.Components = make([]Component, 0, len(in.Components))
	for _, c := range in.Components {
		s.Components = append(s.Components, Component{Type: strings.ToUpper(c)})
	}
}

func (in *SpellInput) vocabularyErrors(t *labels.Table) map[string]string {
	errs := map[string]string{}
	if !t.Has(labels.Schools, strings.ToLower(in.School)) {
		errs["school"] = "oneof=" + strings.Join(t.Codes(labels.Schools), " ")
	}
	seen := map[string]bool{}
	for i, c := range in.Components {
		code := strings.ToUpper(c)
		field := fmt.Sprintf("components[%d]", i)
		switch {
		case !t.Has(labels.ComponentTypes, code):
			errs[field] = "oneof=" + strings.Join(t.Codes(labels.ComponentTypes), " ")
		case seen[code]:
			errs[field] = "unique"
		}
		seen[code] = true
	}
	return errs
}

type EquipmentInput struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Description  string  `json:"description" validate:"max=5000"`
	Weight       float64 `json:"weight" validate:"min=0"`
	CostQuantity int     `json:"cost_quantity" validate:"min=0"`
	CostUnit     string  `json:"cost_unit"`
	AdminFields
}

func (in *EquipmentInput) Kind() Kind { return KindEquipment }

func (in *EquipmentInput) build() Item {
	e := &Equipment{}
	in.applyTo(e)
	return e
}

func (in *EquipmentInput) applyTo(item Item) {
	e := item.(*Equipment)
	e.Name = strings.TrimSpace(in.Name)
	e.Description = strings.TrimSpace(in.Description)
	e.Weight = in.Weight
	e.CostQuantity = in.CostQuantity
	e.CostUnit = in.costUnit()
}

func (in *EquipmentInput) costUnit() string {
	if in.CostUnit == "" {
		return "gp"
	}
	return strings.ToLower(in.CostUnit)
}

func (in *EquipmentInput) vocabularyErrors(t *labels.Table) map[string]string {
	if !t.Has(labels.CurrencyUnits, in.costUnit()) {
		return map[string]string{"cost_unit": "oneof=" + strings.Join(t.Codes(labels.CurrencyUnits), " ")}
	}
	return nil
}

// validateInput runs the struct rules and the vocabulary checks together.
func validateInput(in Input, t *labels.Table) error {
	fields := validator.Validate(in)
	for k, v := range in.vocabularyErrors(t) {
		if fields == nil {
			fields = map[string]string{}
		}
		if _, exists := fields[k]; !exists {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		return newValidationError(fields)
	}
	return nil
}
