package entity

import "time"

// Blast is a message an event creator broadcasts to everyone who favorited the event.
type Blast struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EventID   string    `gorm:"not null;type:uuid;index"`
	CreatorID string    `gorm:"not null;type:uuid"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`

	Creator User  `gorm:"foreignKey:CreatorID"`
	Event   Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}
