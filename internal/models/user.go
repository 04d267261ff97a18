package models

import (
	"time"
)

// Group names that grant moderation rights.
const (
	GroupAdmins     = "Admins"
	GroupModerators = "Moderators"
)

type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:80;uniqueIndex;not null" json:"name"`
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // Hash
	Groups    []Group   `gorm:"many2many:user_groups;" json:"groups,omitempty"`
	CreatedAt time.Time `json:"date_joined"`
	// No DeletedAt for hard delete
}

// InGroup reports whether the user's loaded Groups contain name.
func (u *User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}
