package catalog

import "time"

// Status is the moderation state of a catalog item.
type Status string

const (
	StatusOfficial Status = "official"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Moderation is the state every catalog kind shares. It is embedded, so its
// columns live in each kind's own table.
type Moderation struct {
	IsHomebrew  bool      `json:"is_homebrew" gorm:"not null;index"`
	IsApproved  bool      `json:"is_approved" gorm:"not null;index"`
	CreatedByID *int64    `json:"created_by_id" gorm:"index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (m *Moderation) Mod() *Moderation { return m }

func (m Moderation) Status() Status {
	switch {
	case !m.IsHomebrew:
		return StatusOfficial
	case m.IsApproved:
		return StatusApproved
	}
	return StatusPending
}

// PubliclyVisible reports whether the item may appear in public listings.
func (m Moderation) PubliclyVisible() bool {
	return !m.IsHomebrew || m.IsApproved
}

func official() Moderation {
	return Moderation{IsHomebrew: false, IsApproved: true}
}

func homebrew(ownerID int64) Moderation {
	return Moderation{IsHomebrew: true, IsApproved: false, CreatedByID: &ownerID}
}
