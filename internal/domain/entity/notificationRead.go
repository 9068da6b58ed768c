package entity

import "time"

// NotificationRead holds the watermark below which every blast is considered seen.
type NotificationRead struct {
	UserID     string    `gorm:"primaryKey;type:uuid"`
	LastReadAt time.Time `gorm:"not null"`
}
