package entity

import "time"

// User is created on the first authenticated request. ID is the subject issued
// by the identity provider.
type User struct {
	ID             string `gorm:"primaryKey;type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Email          string `gorm:"not null;uniqueIndex"`
	Name           *string
	AvatarURL      *string
	IsAdmin        bool `gorm:"not null;default:false"`
	IsBanned       bool `gorm:"not null;default:false"`
	BannedAt       *time.Time
	BannedBy       *string `gorm:"type:uuid"`
	BanReason      *string
	IsVerifiedHost bool `gorm:"not null;default:false"`
}

// CanAdminister reports whether the user holds admin rights right now.
// Banned admins lose them until unbanned.
func (u *User) CanAdminister() bool {
	return u != nil && u.IsAdmin && !u.IsBanned
}

// DisplayName returns the name if set, otherwise the email.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
