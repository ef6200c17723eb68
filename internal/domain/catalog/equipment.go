package catalog

type Equipment struct {
	ID           int64   `json:"id" gorm:"primaryKey"`
	Name         string  `json:"name" gorm:"size:200;not null;index"`
	Description  string  `json:"description" gorm:"type:text"`
	Weight       float64 `json:"weight" gorm:"not null;default:0"`
	CostQuantity int     `json:"cost_quantity" gorm:"not null;default:0"`
	CostUnit     string  `json:"cost_unit" gorm:"size:2;not null;default:gp"`
	Moderation
}

func (Equipment) TableName() string { return "equipment" }

func (e *Equipment) ItemID() int64    { return e.ID }
func (e *Equipment) ItemKind() Kind   { return KindEquipment }
func (e *Equipment) ItemName() string { return e.Name }

// Models lists every table the catalog owns, for migrations.
func Models() []any {
	return []any{
		&Monster{}, &ArmorClass{}, &Speed{},
		&Spell{}, &Component{},
		&Equipment{},
	}
}
