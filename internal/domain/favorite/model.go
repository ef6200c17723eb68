package favorite

import (
	"time"

	"dndinfo/internal/domain/catalog"
)

// Favorite is a user's bookmark on a catalog item. ObjectID is a weak
// reference: deleting the item leaves the row behind and listings skip it.
type Favorite struct {
	ID        int64        `json:"id" gorm:"primaryKey"`
	UserID    int64        `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_kind_object"`
	Kind      catalog.Kind `json:"kind" gorm:"size:20;not null;uniqueIndex:idx_user_kind_object"`
	ObjectID  int64        `json:"object_id" gorm:"not null;uniqueIndex:idx_user_kind_object"`
	CreatedAt time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

// TableName возвращает имя таблицы в БД
func (Favorite) TableName() string {
	return "favorites"
}
