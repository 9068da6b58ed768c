package dto

import (
	"io"
	"time"

	"github.com/campusevents/backend/internal/domain/entity"
)

// EventForm is the raw event form as submitted by a client. Times are
// wall-clock strings in the client's location unless they carry an offset.
type EventForm struct {
	Title       string `form:"title" json:"title" validate:"required,max=100"`
	Description string `form:"description" json:"description" validate:"max=2000"`
	Location    string `form:"location" json:"location" validate:"required,max=200"`
	StartTime   string `form:"start_time" json:"start_time" validate:"required"`
	EndTime     string `form:"end_time" json:"end_time"`
	Link        string `form:"link" json:"link" validate:"omitempty,http_url"`

	// TimeZone is an IANA location name ("Europe/Moscow").
	TimeZone string `form:"tz" json:"tz"`
	// TZOffset is the JavaScript getTimezoneOffset() value in minutes, used when TimeZone is empty.
	TZOffset *int `form:"tz_offset" json:"tz_offset"`
}

// EventInput is a validated EventForm.
type EventInput struct {
	Title       string
	Description *string
	Location    string
	StartTime   time.Time
	EndTime     *time.Time
	Link        *string
}

// Upload is an image attached to an event form.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Empty reports whether nothing was uploaded.
func (u *Upload) Empty() bool {
	return u == nil || u.Reader == nil || u.Size == 0
}

type Event struct {
	ID          string     `json:"id"`
	CreatorID   string     `json:"creator_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Location    string     `json:"location"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Link        *string    `json:"link"`
	ImageURL    *string    `json:"image_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Creator     *User      `json:"creator,omitempty"`
	SaveCount   *int64     `json:"save_count,omitempty"`
}

func NewEventFromEntity(event entity.Event) Event {
	e := Event{
		ID:          event.ID,
		CreatorID:   event.CreatorID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		Link:        event.Link,
		ImageURL:    event.ImageURL,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
	if event.Creator.ID != "" {
		creator := NewUserFromEntity(event.Creator)
		e.Creator = &creator
	}
	return e
}

func NewEventsFromEntities(events []entity.Event) []Event {
	result := make([]Event, 0, len(events))
	for _, event := range events {
		result = append(result, NewEventFromEntity(event))
	}
	return result
}

// EventWithSaveCount is an owner's event annotated with its favorite count.
type EventWithSaveCount struct {
	entity.Event
	SaveCount int64
}

func NewEventFromSaveCount(event EventWithSaveCount) Event {
	e := NewEventFromEntity(event.Event)
	count := event.SaveCount
	e.SaveCount = &count
	return e
}
