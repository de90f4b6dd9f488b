package reconciliation

import (
	"fmt"
	"time"

	"github.com/klokku/calsync/pkg/event"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

// Comparator decides whether a matched remote event must be rewritten.
type Comparator interface {
	NeedsUpdate(local event.Event, remote *gcal.Event) bool
}

// EventComparator compares the fields this tool writes: summary, description,
// start, end and the video entry point. The managed marker is not compared.
type EventComparator struct{}

func NewEventComparator() *EventComparator {
	return &EventComparator{}
}

func (c *EventComparator) NeedsUpdate(local event.Event, remote *gcal.Event) bool {
	differences := c.Differences(local, remote)
	if len(differences) > 0 {
		log.Debugf("'%s' differs from remote event %s: %v", local.GetTitle(), remote.Id, differences)
		return true
	}
	return false
}

// Differences lists the fields where remote does not match the wire form of local.
func (c *EventComparator) Differences(local event.Event, remote *gcal.Event) []string {
	expected := ToGoogleEvent(local)
	var differences []string

	if expected.Summary != remote.Summary {
		differences = append(differences, fmt.Sprintf("summary %q != %q", remote.Summary, expected.Summary))
	}
	if expected.Description != remote.Description {
		differences = append(differences, "description")
	}
	if !sameEventTime(expected.Start, remote.Start) {
		differences = append(differences, "start")
	}
	if !sameEventTime(expected.End, remote.End) {
		differences = append(differences, "end")
	}
	if expectedUri, remoteUri := videoEntryPointUri(expected), videoEntryPointUri(remote); expectedUri != remoteUri {
		differences = append(differences, fmt.Sprintf("conference link %q != %q", remoteUri, expectedUri))
	}
	return differences
}

// sameEventTime compares all-day dates textually and timed values as instants,
// so the same moment rendered in another time zone is equal.
func sameEventTime(expected, actual *gcal.EventDateTime) bool {
	if expected == nil || actual == nil {
		return expected == actual
	}
	if expected.Date != "" || actual.Date != "" {
		return expected.Date == actual.Date
	}
	expectedTime, err := time.Parse(time.RFC3339, expected.DateTime)
	if err != nil {
		return false
	}
	actualTime, err := time.Parse(time.RFC3339, actual.DateTime)
	if err != nil {
		return false
	}
	return expectedTime.Equal(actualTime)
}
