package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Email        string         `gorm:"column:email;uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;size:255;not null" json:"-"`
	Name         *string        `gorm:"column:name;size:100" json:"name"`
	Image        *string        `gorm:"column:image;size:500" json:"image"`
	Provider     string         `gorm:"column:provider;size:30;default:'credentials'" json:"-"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// DisplayName falls back to the email when no name is set
func (u *User) DisplayName() string {
	if u.Name != nil && len(*u.Name) > 0 {
		return *u.Name
	}
	return u.Email
}
