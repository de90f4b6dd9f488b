package google

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

// Calendar talks to the Google Calendar events API with an authenticated service.
type Calendar struct {
	service *gcal.Service
}

func NewCalendar(service *gcal.Service) *Calendar {
	return &Calendar{service: service}
}

// ListEvents returns every event of the calendar, recurring events expanded into
// single instances, following page tokens until the last page.
func (c *Calendar) ListEvents(ctx context.Context, calendarId string, pageSize int) ([]*gcal.Event, error) {
	var events []*gcal.Event
	pageToken := ""
	for {
		call := c.service.Events.List(calendarId).
			Context(ctx).
			SingleEvents(true).
			MaxResults(int64(pageSize))
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			err := fmt.Errorf("unable to retrieve events from Google Calendar %s: %w", calendarId, err)
			log.Error(err)
			return nil, err
		}
		events = append(events, page.Items...)

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	log.Debugf("Fetched %d event(s) from calendar %s", len(events), calendarId)
	return events, nil
}

func (c *Calendar) CreateEvent(ctx context.Context, calendarId string, event *gcal.Event) (*gcal.Event, error) {
	created, err := c.service.Events.Insert(calendarId, event).
		Context(ctx).
		ConferenceDataVersion(1).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to insert event in Google Calendar: %w", err)
	}
	return created, nil
}

func (c *Calendar) UpdateEvent(ctx context.Context, calendarId string, eventId string, event *gcal.Event) (*gcal.Event, error) {
	updated, err := c.service.Events.Update(calendarId, eventId, event).
		Context(ctx).
		ConferenceDataVersion(1).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to update event %s in Google Calendar: %w", eventId, err)
	}
	return updated, nil
}

func (c *Calendar) DeleteEvent(ctx context.Context, calendarId string, eventId string) error {
	if err := c.service.Events.Delete(calendarId, eventId).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to delete event %s from Google Calendar: %w", eventId, err)
	}
	return nil
}
