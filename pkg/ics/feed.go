package ics

import (
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/klokku/calsync/pkg/event"
)

const productId = "-//calsync//Quarkus Calendars//EN"

var ErrUnknownKind = errors.New("unknown calendar kind")

// Kind selects which local events a feed publishes.
type Kind string

const (
	KindReleases Kind = "releases"
	KindCalls    Kind = "calls"
)

func ParseKind(value string) (Kind, error) {
	switch Kind(value) {
	case KindReleases, KindCalls:
		return Kind(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

func (k Kind) Title() string {
	if k == KindCalls {
		return "Quarkus Calls"
	}
	return "Quarkus Releases"
}

// uidNamespace scopes event UIDs so that the same title and date always map
// to the same UID across renders.
var uidNamespace = uuid.MustParse("5d4f6b8e-1f44-4f0c-9a3e-6c1b8a0e2f11")

func eventUid(e event.Event) string {
	key := e.GetTitle() + "|" + event.FormatDate(e.GetDate())
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@calsync"
}

// Render serializes events as an iCalendar document. Release days become
// all-day events with an exclusive DTEND on the following day; calls are
// UTC timed events with their link as URL.
func Render(kind Kind, events []event.Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productId)
	cal.SetName(kind.Title())
	cal.SetXWRCalName(kind.Title())

	for _, e := range events {
		vevent := cal.AddEvent(eventUid(e))
		vevent.SetDtStampTime(stamp.UTC())
		vevent.SetSummary(e.GetTitle())
		if e.GetDescription() != "" {
			vevent.SetDescription(e.GetDescription())
		}

		switch ev := e.(type) {
		case event.ReleaseEvent:
			vevent.SetAllDayStartAt(ev.Date)
			vevent.SetAllDayEndAt(ev.Date.AddDate(0, 0, 1))
		case event.CallEvent:
			vevent.SetStartAt(ev.Start())
			vevent.SetEndAt(ev.End())
			if ev.HasCallLink() {
				vevent.SetURL(ev.CallLink)
			}
		}
	}
	return cal.Serialize()
}
