package dto

import (
	"time"

	"github.com/campusevents/backend/internal/domain/entity"
)

type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           *string    `json:"name"`
	AvatarURL      *string    `json:"avatar_url"`
	IsAdmin        bool       `json:"is_admin"`
	IsBanned       bool       `json:"is_banned"`
	BannedAt       *time.Time `json:"banned_at,omitempty"`
	BannedBy       *string    `json:"banned_by,omitempty"`
	BanReason      *string    `json:"ban_reason,omitempty"`
	IsVerifiedHost bool       `json:"is_verified_host"`
	CreatedAt      time.Time  `json:"created_at"`
}

func NewUserFromEntity(user entity.User) User {
	return User{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		AvatarURL:      user.AvatarURL,
		IsAdmin:        user.IsAdmin,
		IsBanned:       user.IsBanned,
		BannedAt:       user.BannedAt,
		BannedBy:       user.BannedBy,
		BanReason:      user.BanReason,
		IsVerifiedHost: user.IsVerifiedHost,
		CreatedAt:      user.CreatedAt,
	}
}

func NewUsersFromEntities(users []entity.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, NewUserFromEntity(user))
	}
	return result
}

// Identity is the authenticated caller as resolved from the bearer token.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	AvatarURL string
}

// Anonymous reports whether no caller was resolved.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

// AdminStats backs the admin dashboard.
type AdminStats struct {
	Users          int64 `json:"users"`
	BannedUsers    int64 `json:"banned_users"`
	Admins         int64 `json:"admins"`
	Events         int64 `json:"events"`
	UpcomingEvents int64 `json:"upcoming_events"`
	Blasts         int64 `json:"blasts"`
}
