package entity

import (
	"fmt"
	"time"
)

type Event struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatorID   string `gorm:"not null;type:uuid;index"`
	Creator     User   `gorm:"foreignKey:CreatorID"`
	Title       string `gorm:"not null"`
	Description *string
	Location    string    `gorm:"not null"`
	StartTime   time.Time `gorm:"not null;index"`
	EndTime     *time.Time
	Link        *string
	ImageURL    *string
	ImagePath   *string
}

// PublicLink generates the public link to the event page
//
// The link is in the format <baseURL>/events/<eventID>
func (e *Event) PublicLink(baseURL string) string {
	return fmt.Sprintf("%s/events/%s", baseURL, e.ID)
}
