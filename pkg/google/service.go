package google

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type CalendarItem struct {
	ID      string
	Summary string
}

type Service interface {
	GetCalendar(ctx context.Context) (*Calendar, error)
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
}

// ServiceImpl builds Calendar clients either from the stored OAuth token or,
// when client options are given, from those options alone.
type ServiceImpl struct {
	auth    *GoogleAuth
	options []option.ClientOption
}

func NewService(auth *GoogleAuth) *ServiceImpl {
	return &ServiceImpl{
		auth: auth,
	}
}

// NewServiceWithOptions skips OAuth, e.g. for option.WithCredentialsFile.
func NewServiceWithOptions(options ...option.ClientOption) *ServiceImpl {
	return &ServiceImpl{
		options: options,
	}
}

func (s *ServiceImpl) GetCalendar(ctx context.Context) (*Calendar, error) {
	service, err := s.prepareGoogleService(ctx)
	if err != nil {
		return nil, err
	}
	return NewCalendar(service), nil
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	googleService, err := s.prepareGoogleService(ctx)
	if err != nil {
		return nil, err
	}
	calendars, err := googleService.CalendarList.List().Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	googleCalendars := make([]CalendarItem, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		googleCalendars = append(googleCalendars, CalendarItem{
			ID:      cal.Id,
			Summary: cal.Summary,
		})
	}
	return googleCalendars, nil
}

func (s *ServiceImpl) ListEvents(ctx context.Context, calendarId string, pageSize int) ([]*gcal.Event, error) {
	c, err := s.GetCalendar(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListEvents(ctx, calendarId, pageSize)
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, calendarId string, event *gcal.Event) (*gcal.Event, error) {
	c, err := s.GetCalendar(ctx)
	if err != nil {
		return nil, err
	}
	return c.CreateEvent(ctx, calendarId, event)
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, calendarId string, eventId string, event *gcal.Event) (*gcal.Event, error) {
	c, err := s.GetCalendar(ctx)
	if err != nil {
		return nil, err
	}
	return c.UpdateEvent(ctx, calendarId, eventId, event)
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, calendarId string, eventId string) error {
	c, err := s.GetCalendar(ctx)
	if err != nil {
		return err
	}
	return c.DeleteEvent(ctx, calendarId, eventId)
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context) (*gcal.Service, error) {
	if len(s.options) > 0 {
		service, err := gcal.NewService(ctx, s.options...)
		if err != nil {
			err := fmt.Errorf("unable to create Calendar client: %w", err)
			log.Error(err)
			return nil, err
		}
		return service, nil
	}

	if s.auth == nil {
		return nil, ErrUnauthenticated
	}
	client, err := s.auth.getClient(ctx)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth client: %w", err)
		log.Error(err)
		return nil, err
	}
	if client == nil {
		log.Debug("google account is unauthenticated, authentication is required")
		return nil, ErrUnauthenticated
	}
	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}

	return service, nil
}
