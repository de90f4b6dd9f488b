package reconciliation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/calsync/pkg/event"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := event.ParseDate(value)
	require.NoError(t, err)
	return d
}

func remoteAllDay(summary string, date string, managed bool) *gcal.Event {
	e := &gcal.Event{
		Id:      uuid.NewString(),
		Summary: summary,
		Start:   &gcal.EventDateTime{Date: date},
		End:     &gcal.EventDateTime{Date: date},
	}
	if managed {
		e.ExtendedProperties = managedProperties()
	}
	return e
}

func remoteTimed(summary string, start time.Time, duration time.Duration, managed bool) *gcal.Event {
	e := &gcal.Event{
		Id:      uuid.NewString(),
		Summary: summary,
		Start:   &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: "UTC"},
		End:     &gcal.EventDateTime{DateTime: start.Add(duration).Format(time.RFC3339), TimeZone: "UTC"},
	}
	if managed {
		e.ExtendedProperties = managedProperties()
	}
	return e
}

func actionTypes(actions []Action) []ActionType {
	types := make([]ActionType, 0, len(actions))
	for _, a := range actions {
		types = append(types, a.Type)
	}
	return types
}

type stubLocalSource struct {
	releases []event.ReleaseEvent
	calls    []event.CallEvent
	err      error
}

func (s *stubLocalSource) LoadReleaseEvents(start, end time.Time) ([]event.ReleaseEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	var result []event.ReleaseEvent
	for _, e := range s.releases {
		if event.InRange(e.Date, start, end) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *stubLocalSource) LoadCallEvents(start, end time.Time) ([]event.CallEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	var result []event.CallEvent
	for _, e := range s.calls {
		if event.InRange(e.Date, start, end) {
			result = append(result, e)
		}
	}
	return result, nil
}
