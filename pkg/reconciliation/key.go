package reconciliation

import (
	"errors"
	"fmt"
	"time"

	"github.com/klokku/calsync/pkg/event"
	gcal "google.golang.org/api/calendar/v3"
)

var ErrUnparseableDate = errors.New("unparseable remote event date")

// EventKey joins local and remote events. Time of day is not part of the key,
// so two calls with the same title on the same day collide.
func EventKey(local event.Event) string {
	return key(local.GetTitle(), local.GetDate())
}

func RemoteEventKey(remote *gcal.Event) (string, error) {
	date, err := ExtractDate(remote)
	if err != nil {
		return "", err
	}
	return key(remote.Summary, date), nil
}

func key(title string, date time.Time) string {
	return title + "|" + event.FormatDate(date)
}

// ExtractDate returns the calendar date of a remote event: the start date of
// an all-day event, or the UTC date of a timed event's start instant.
func ExtractDate(remote *gcal.Event) (time.Time, error) {
	if remote == nil || remote.Start == nil {
		return time.Time{}, fmt.Errorf("%w: event has no start", ErrUnparseableDate)
	}
	if remote.Start.Date != "" {
		d, err := event.ParseDate(remote.Start.Date)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: event %s: date %q", ErrUnparseableDate, remote.Id, remote.Start.Date)
		}
		return d, nil
	}
	if remote.Start.DateTime != "" {
		t, err := time.Parse(time.RFC3339, remote.Start.DateTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: event %s: dateTime %q", ErrUnparseableDate, remote.Id, remote.Start.DateTime)
		}
		return event.DateOf(t.UTC()), nil
	}
	return time.Time{}, fmt.Errorf("%w: event %s has neither date nor dateTime", ErrUnparseableDate, remote.Id)
}

// FilterByDateRange keeps remote events whose date lies in [start, end].
func FilterByDateRange(events []*gcal.Event, start, end time.Time) ([]*gcal.Event, error) {
	filtered := make([]*gcal.Event, 0, len(events))
	for _, e := range events {
		date, err := ExtractDate(e)
		if err != nil {
			return nil, err
		}
		if event.InRange(date, start, end) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}
