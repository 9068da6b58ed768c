package calendar

import (
	"bytes"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/campusevents/backend/internal/domain/entity"
)

// ProductID identifies this service in exported calendars
const ProductID = "-//Campus Events//EN"

// DefaultDuration is used for events without an end time
const DefaultDuration = time.Hour

// Export renders events as an iCalendar document. Each event gets a stable
// UID derived from its id so re-imports update instead of duplicating, a link
// to its public page and reminders one day and one hour before the start.
func Export(events []entity.Event, publicURL string, now time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")

	for _, event := range events {
		e := cal.AddEvent(fmt.Sprintf("%s@campus-events", event.ID))

		e.SetDtStampTime(now)
		e.SetCreatedTime(event.CreatedAt)
		e.SetModifiedAt(event.UpdatedAt)

		e.SetStartAt(event.StartTime)
		if event.EndTime != nil {
			e.SetEndAt(*event.EndTime)
		} else {
			e.SetEndAt(event.StartTime.Add(DefaultDuration))
		}

		e.SetSummary(event.Title)
		e.SetLocation(event.Location)
		if event.Description != nil {
			e.SetDescription(*event.Description)
		}
		if publicURL != "" {
			e.AddProperty(ics.ComponentPropertyUrl, event.PublicLink(publicURL))
		}

		e.SetStatus(ics.ObjectStatusConfirmed)
		e.SetTimeTransparency(ics.TransparencyOpaque)
		e.SetClass(ics.ClassificationPublic)
		e.SetSequence(0)

		dayAlarm := e.AddAlarm()
		dayAlarm.SetAction(ics.ActionDisplay)
		dayAlarm.AddProperty("TRIGGER;VALUE=DURATION", "-P1D")
		dayAlarm.SetDescription(fmt.Sprintf("Tomorrow: %s", event.Title))

		hourAlarm := e.AddAlarm()
		hourAlarm.SetAction(ics.ActionDisplay)
		hourAlarm.AddProperty("TRIGGER;VALUE=DURATION", "-PT1H")
		hourAlarm.SetDescription(fmt.Sprintf("In one hour: %s", event.Title))
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return nil, fmt.Errorf("error serializing calendar: %w", err)
	}
	return buf.Bytes(), nil
}
