package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a customer or administrator of the store.
type User struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username  string         `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email     string         `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string         `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role      string         `json:"role" gorm:"type:varchar(20);default:user"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsAdmin reports whether the user may use the admin endpoints.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
