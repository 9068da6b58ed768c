package dto

import (
	"time"

	"github.com/campusevents/backend/internal/domain/entity"
)

type BlastForm struct {
	Content string `form:"content" json:"content" validate:"required,max=500"`
}

// EventRef is the slice of an event shown next to a notification.
type EventRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Blast struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	CreatorID string    `json:"creator_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Creator   *User     `json:"creator,omitempty"`
	Event     *EventRef `json:"event,omitempty"`
}

func NewBlastFromEntity(blast entity.Blast) Blast {
	b := Blast{
		ID:        blast.ID,
		EventID:   blast.EventID,
		CreatorID: blast.CreatorID,
		Content:   blast.Content,
		CreatedAt: blast.CreatedAt,
	}
	if blast.Creator.ID != "" {
		creator := NewUserFromEntity(blast.Creator)
		b.Creator = &creator
	}
	if blast.Event.ID != "" {
		b.Event = &EventRef{ID: blast.Event.ID, Title: blast.Event.Title}
	}
	return b
}

func NewBlastsFromEntities(blasts []entity.Blast) []Blast {
	result := make([]Blast, 0, len(blasts))
	for _, blast := range blasts {
		result = append(result, NewBlastFromEntity(blast))
	}
	return result
}

// BlastInserted is the change-feed message published for every new blast.
type BlastInserted struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	CreatorID string    `json:"creator_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func NewBlastInserted(blast entity.Blast) BlastInserted {
	return BlastInserted{
		ID:        blast.ID,
		EventID:   blast.EventID,
		CreatorID: blast.CreatorID,
		Content:   blast.Content,
		CreatedAt: blast.CreatedAt,
	}
}
