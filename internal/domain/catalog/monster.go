package catalog

type Monster struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"size:200;not null;index"`
	Size         string `json:"size" gorm:"size:20;not null;index"`
	Type         string `json:"type" gorm:"size:100;not null"`
	HitPoints    int    `json:"hit_points" gorm:"not null"`
	Strength     int    `json:"strength" gorm:"not null"`
	Dexterity    int    `json:"dexterity" gorm:"not null"`
	Constitution int    `json:"constitution" gorm:"not null"`
	Intelligence int    `json:"intelligence" gorm:"not null"`
	Wisdom       int    `json:"wisdom" gorm:"not null"`
	Charisma     int    `json:"charisma" gorm:"not null"`
	Moderation

	ArmorClasses []ArmorClass `json:"armor_classes" gorm:"foreignKey:MonsterID"`
	Speeds       []Speed      `json:"speeds" gorm:"foreignKey:MonsterID"`
}

func (Monster) TableName() string { return "monsters" }

func (m *Monster) ItemID() int64    { return m.ID }
func (m *Monster) ItemKind() Kind   { return KindMonster }
func (m *Monster) ItemName() string { return m.Name }

// AbilityModifier is the 5e modifier for score, rounded down: 7 gives -2.
func AbilityModifier(score int) int {
	d := score - 10
	if d < 0 {
		return -((1 - d) / 2)
	}
	return d / 2
}

// Modifiers returns the modifier of each ability score keyed by ability name.
func (m *Monster) Modifiers() map[string]int {
	return map[string]int{
		"strength":     AbilityModifier(m.Strength),
		"dexterity":    AbilityModifier(m.Dexterity),
		"constitution": AbilityModifier(m.Constitution),
		"intelligence": AbilityModifier(m.Intelligence),
		"wisdom":       AbilityModifier(m.Wisdom),
		"charisma":     AbilityModifier(m.Charisma),
	}
}

func (m *Monster) dependentRows() []any {
	var rows []any
	if len(m.ArmorClasses) > 0 {
		for i := range m.ArmorClasses {
			m.ArmorClasses[i].ID = 0
			m.ArmorClasses[i].MonsterID = m.ID
		}
		rows = append(rows, &m.ArmorClasses)
	}
	if len(m.Speeds) > 0 {
		for i := range m.Speeds {
			m.Speeds[i].ID = 0
			m.Speeds[i].MonsterID = m.ID
		}
		rows = append(rows, &m.Speeds)
	}
	return rows
}

type ArmorClass struct {
	ID        int64  `json:"-" gorm:"primaryKey"`
	MonsterID int64  `json:"-" gorm:"not null;index"`
	Type      string `json:"type" gorm:"size:20;not null"`
	Value     int    `json:"value" gorm:"not null"`
}

func (ArmorClass) TableName() string { return "monster_armor_classes" }

type Speed struct {
	ID           int64  `json:"-" gorm:"primaryKey"`
	MonsterID    int64  `json:"-" gorm:"not null;index"`
	MovementType string `json:"movement_type" gorm:"size:20;not null"`
	Value        string `json:"value" gorm:"size:50;not null"`
}

func (Speed) TableName() string { return "monster_speeds" }
