package entity

import "time"

// Favorite is a user's bookmark of an event. At most one exists per (user, event).
type Favorite struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    string    `gorm:"not null;type:uuid;uniqueIndex:idx_favorites_user_event"`
	EventID   string    `gorm:"not null;type:uuid;uniqueIndex:idx_favorites_user_event;index"`
	CreatedAt time.Time `gorm:"not null"`

	User  User  `gorm:"foreignKey:UserID"`
	Event Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}
