package reconciliation

import (
	"github.com/klokku/calsync/pkg/event"
	gcal "google.golang.org/api/calendar/v3"
)

// Analyze compares local events against remote events of one calendar and
// decides what to do. CREATE/UPDATE actions come first in local order, then
// DELETE/WARN_ORPHAN actions in remote order. Matched, unchanged events yield
// no action. Analyze has no side effects.
func Analyze(local []event.Event, remote []*gcal.Event, calendarId string, comparator Comparator) ([]Action, error) {
	remoteKeys := make([]string, len(remote))
	remoteByKey := make(map[string]*gcal.Event, len(remote))
	for i, remoteEvent := range remote {
		key, err := RemoteEventKey(remoteEvent)
		if err != nil {
			return nil, err
		}
		remoteKeys[i] = key
		// later duplicates win
		remoteByKey[key] = remoteEvent
	}

	var actions []Action
	matched := make(map[string]bool, len(remote))

	for _, localEvent := range local {
		key := EventKey(localEvent)
		remoteEvent, ok := remoteByKey[key]
		if !ok {
			actions = append(actions, NewCreateAction(localEvent, calendarId))
			continue
		}
		matched[key] = true
		if comparator.NeedsUpdate(localEvent, remoteEvent) {
			actions = append(actions, NewUpdateAction(localEvent, remoteEvent, calendarId))
		}
	}

	for i, remoteEvent := range remote {
		if matched[remoteKeys[i]] {
			continue
		}
		if IsManagedByUs(remoteEvent) {
			actions = append(actions, NewDeleteAction(remoteEvent, calendarId))
		} else {
			actions = append(actions, NewWarnOrphanAction(remoteEvent, calendarId))
		}
	}

	return actions, nil
}

// Events widens a slice of concrete events to the Event interface.
func Events[T event.Event](events []T) []event.Event {
	result := make([]event.Event, 0, len(events))
	for _, e := range events {
		result = append(result, e)
	}
	return result
}
