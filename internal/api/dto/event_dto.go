package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// ErrInvalidDate is returned by ParseDate for unrecognized layouts.
var ErrInvalidDate = errors.New("invalid date format")

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps, datetime-local values and plain dates.
// Values without a zone are read as UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// EventRequest payload for create and update. Absent fields stay nil so an
// update only touches what the client sent.
type EventRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Location    *string `json:"location"`
}

// ParsedDate returns the request date, or nil when it was not sent.
func (r EventRequest) ParsedDate() (*time.Time, error) {
	if r.Date == nil || strings.TrimSpace(*r.Date) == "" {
		return nil, nil
	}
	t, err := ParseDate(*r.Date)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// EventListQuery captures the filters of GET /api/events.
type EventListQuery struct {
	Search    string `query:"search"`
	Location  string `query:"location"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
}

// EventResponse is the public view of an event.
type EventResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEventResponse maps an event.
func NewEventResponse(event *domain.Event) EventResponse {
	return EventResponse{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		Date:        event.Date,
		Location:    event.Location,
		UserID:      event.OwnerID,
		CreatedAt:   event.CreatedAt,
	}
}

// NewEventList maps a slice of events, never returning nil.
func NewEventList(events []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, NewEventResponse(&events[i]))
	}
	return out
}
