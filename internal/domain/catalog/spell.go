package catalog

type Spell struct {
	ID            int64  `json:"id" gorm:"primaryKey"`
	Name          string `json:"name" gorm:"size:200;not null;index"`
	Desc          string `json:"desc" gorm:"column:description;type:text"`
	Range         string `json:"range" gorm:"column:spell_range;size:100"`
	Duration      string `json:"duration" gorm:"size:100"`
	CastingTime   string `json:"casting_time" gorm:"size:100"`
	Level         int    `json:"level" gorm:"not null;index"`
	School        string `json:"school" gorm:"size:50;not null;index"`
	Ritual        bool   `json:"ritual" gorm:"not null"`
	Concentration bool   `json:"concentration" gorm:"not null"`
	Moderation

	Components []Component `json:"components" gorm:"foreignKey:SpellID"`
}

func (Spell) TableName() string { return "spells" }

func (s *Spell) ItemID() int64    { return s.ID }
func (s *Spell) ItemKind() Kind   { return KindSpell }
func (s *Spell) ItemName() string { return s.Name }

func (s *Spell) dependentRows() []any {
	if len(s.Components) == 0 {
		return nil
	}
	for i := range s.Components {
		s.Components[i].ID = 0
		s.Components[i].SpellID = s.ID
	}
	return []any{&s.Components}
}

// ComponentCodes returns the component letters in stored order.
func (s *Spell) ComponentCodes() []string {
	out := make([]string, 0, len(s.Components))
	for _, c := range s.Components {
		out = append(out, c.Type)
	}
	return out
}

type Component struct {
	ID      int64  `json:"-" gorm:"primaryKey"`
	SpellID int64  `json:"-" gorm:"not null;uniqueIndex:idx_spell_component"`
	Type    string `json:"type" gorm:"size:1;not null;uniqueIndex:idx_spell_component"`
}

func (Component) TableName() string { return "spell_components" }
