package auth

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Username     string    `json:"username" gorm:"size:150;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         UserRole  `json:"role" gorm:"size:20;not null;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
