package reconciliation

import (
	"time"

	"github.com/klokku/calsync/pkg/event"
	gcal "google.golang.org/api/calendar/v3"
)

const utcTimeZone = "UTC"

// ToGoogleEvent converts a local event to its wire form. Every converted event
// is stamped with the managed marker, including events sent as updates.
func ToGoogleEvent(local event.Event) *gcal.Event {
	googleEvent := &gcal.Event{
		Summary:            local.GetTitle(),
		Description:        local.GetDescription(),
		ExtendedProperties: managedProperties(),
	}

	switch e := local.(type) {
	case event.ReleaseEvent:
		date := event.FormatDate(e.Date)
		googleEvent.Start = &gcal.EventDateTime{Date: date}
		googleEvent.End = &gcal.EventDateTime{Date: date}

	case event.CallEvent:
		googleEvent.Start = &gcal.EventDateTime{
			DateTime: e.Start().Format(time.RFC3339),
			TimeZone: utcTimeZone,
		}
		googleEvent.End = &gcal.EventDateTime{
			DateTime: e.End().Format(time.RFC3339),
			TimeZone: utcTimeZone,
		}

		if e.HasCallLink() {
			googleEvent.Description += "\n\nJoin: " + e.CallLink
			if IsSupportedVideoPlatform(e.CallLink) {
				googleEvent.ConferenceData = conferenceDataFor(e.CallLink)
			}
		}
	}

	return googleEvent
}
