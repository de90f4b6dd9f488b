package event

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Event is a locally authored calendar entry. The set of implementations is
// closed: ReleaseEvent and CallEvent.
type Event interface {
	GetTitle() string
	GetDescription() string
	// GetDate returns the calendar date at midnight UTC.
	GetDate() time.Time
	isEvent()
}

// ReleaseEvent is an all-day event.
type ReleaseEvent struct {
	Title       string
	Description string
	Date        time.Time
}

func NewReleaseEvent(title string, description string, date time.Time) ReleaseEvent {
	return ReleaseEvent{Title: title, Description: description, Date: DateOf(date)}
}

func (e ReleaseEvent) GetTitle() string       { return e.Title }
func (e ReleaseEvent) GetDescription() string { return e.Description }
func (e ReleaseEvent) GetDate() time.Time     { return e.Date }
func (ReleaseEvent) isEvent()                 {}

// CallEvent is a timed event, optionally with a video call link.
type CallEvent struct {
	Title       string
	Description string
	Date        time.Time
	Time        TimeOfDay
	Duration    time.Duration
	// CallLink is empty when the call has no link.
	CallLink string
}

func NewCallEvent(title string, description string, date time.Time, at TimeOfDay, duration time.Duration, callLink string) CallEvent {
	return CallEvent{
		Title:       title,
		Description: description,
		Date:        DateOf(date),
		Time:        at,
		Duration:    duration,
		CallLink:    callLink,
	}
}

func (e CallEvent) GetTitle() string       { return e.Title }
func (e CallEvent) GetDescription() string { return e.Description }
func (e CallEvent) GetDate() time.Time     { return e.Date }
func (CallEvent) isEvent()                 {}

// Start is the call start instant, with date and time interpreted in UTC.
func (e CallEvent) Start() time.Time {
	return time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), e.Time.Hour, e.Time.Minute, 0, 0, time.UTC)
}

func (e CallEvent) End() time.Time {
	return e.Start().Add(e.Duration)
}

func (e CallEvent) HasCallLink() bool {
	return e.CallLink != ""
}

type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(value string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q, expected HH:MM", value)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// DateOf strips the time component, keeping the calendar date as seen in t's location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// InRange reports whether date is within [start, end], both inclusive.
func InRange(date, start, end time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(start)) && !d.After(DateOf(end))
}
