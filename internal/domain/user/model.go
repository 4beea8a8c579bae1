package user

import (
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              string  `gorm:"primaryKey"`
	Email           *string `gorm:"uniqueIndex"`
	FirstName       *string
	LastName        *string
	ProfileImageURL *string   `gorm:"column:profile_image_url"`
	Role            string    `gorm:"not null;default:user"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName joins first and last name, falling back to the email.
func (u User) DisplayName() string {
	parts := make([]string, 0, 2)
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if u.Email != nil {
		return *u.Email
	}
	return ""
}

// Identity is what the identity provider asserts about the caller.
type Identity struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

type SyncResult string

const (
	SyncCreated   SyncResult = "created"
	SyncRefreshed SyncResult = "refreshed"
)
