package validator

import (
	"strings"
	"time"

	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/utils/location"
)

// Wall-clock layouts accepted from datetime-local and date inputs.
var wallClockLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Event validates an event form. Wall-clock times are read in the client's
// location (see location.Resolve), falling back to fallback.
func Event(form dto.EventForm, fallback *time.Location) (dto.EventInput, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.Description = strings.TrimSpace(form.Description)
	form.Location = strings.TrimSpace(form.Location)
	form.StartTime = strings.TrimSpace(form.StartTime)
	form.EndTime = strings.TrimSpace(form.EndTime)
	form.Link = strings.TrimSpace(form.Link)

	if err := Struct(form); err != nil {
		return dto.EventInput{}, err
	}

	loc, err := location.Resolve(form.TimeZone, form.TZOffset, fallback)
	if err != nil {
		return dto.EventInput{}, &errorz.ValidationError{Field: "tz", Message: "Invalid time zone"}
	}

	start, ok := ParseTime(form.StartTime, loc)
	if !ok {
		return dto.EventInput{}, &errorz.ValidationError{Field: "start_time", Message: "Invalid date/time"}
	}

	input := dto.EventInput{
		Title:     form.Title,
		Location:  form.Location,
		StartTime: start,
	}

	if form.EndTime != "" {
		end, okEnd := ParseTime(form.EndTime, loc)
		if !okEnd {
			return dto.EventInput{}, &errorz.ValidationError{Field: "end_time", Message: "Invalid date/time"}
		}
		if end.Before(start) {
			return dto.EventInput{}, &errorz.ValidationError{Field: "end_time", Message: "End time must be after start time"}
		}
		input.EndTime = &end
	}
	if form.Description != "" {
		input.Description = &form.Description
	}
	if form.Link != "" {
		input.Link = &form.Link
	}

	return input, nil
}

// ParseTime parses an RFC 3339 instant or a wall-clock time in loc and
// returns it in UTC.
func ParseTime(value string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), true
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
