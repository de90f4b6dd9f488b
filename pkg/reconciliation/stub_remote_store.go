package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
	gcal "google.golang.org/api/calendar/v3"
)

type StubOperation string

const (
	StubList   StubOperation = "list"
	StubCreate StubOperation = "create"
	StubUpdate StubOperation = "update"
	StubDelete StubOperation = "delete"
)

var ErrStubEventNotFound = errors.New("event with given id not found")

// StubRemoteStore is an in-memory RemoteStore keeping events per calendar in
// insertion order.
type StubRemoteStore struct {
	mu       sync.RWMutex
	events   map[string][]*gcal.Event
	calls    map[StubOperation]int
	failures map[StubOperation]map[string]error // operation -> summary -> error
	listErr  map[string]error
}

func NewStubRemoteStore() *StubRemoteStore {
	return &StubRemoteStore{
		events:   make(map[string][]*gcal.Event),
		calls:    make(map[StubOperation]int),
		failures: make(map[StubOperation]map[string]error),
		listErr:  make(map[string]error),
	}
}

func (s *StubRemoteStore) ListEvents(_ context.Context, calendarId string, _ int) ([]*gcal.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[StubList]++

	if err := s.listErr[calendarId]; err != nil {
		return nil, err
	}
	result := make([]*gcal.Event, 0, len(s.events[calendarId]))
	for _, e := range s.events[calendarId] {
		result = append(result, copyEvent(e))
	}
	return result, nil
}

func (s *StubRemoteStore) CreateEvent(_ context.Context, calendarId string, event *gcal.Event) (*gcal.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[StubCreate]++

	if err := s.failures[StubCreate][event.Summary]; err != nil {
		return nil, err
	}
	stored := copyEvent(event)
	stored.Id = uuid.NewString()
	s.events[calendarId] = append(s.events[calendarId], stored)
	return copyEvent(stored), nil
}

func (s *StubRemoteStore) UpdateEvent(_ context.Context, calendarId string, eventId string, event *gcal.Event) (*gcal.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[StubUpdate]++

	if err := s.failures[StubUpdate][event.Summary]; err != nil {
		return nil, err
	}
	i := s.indexOf(calendarId, eventId)
	if i < 0 {
		return nil, fmt.Errorf("update %s: %w", eventId, ErrStubEventNotFound)
	}
	stored := copyEvent(event)
	stored.Id = eventId
	s.events[calendarId][i] = stored
	return copyEvent(stored), nil
}

func (s *StubRemoteStore) DeleteEvent(_ context.Context, calendarId string, eventId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[StubDelete]++

	i := s.indexOf(calendarId, eventId)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", eventId, ErrStubEventNotFound)
	}
	if err := s.failures[StubDelete][s.events[calendarId][i].Summary]; err != nil {
		return err
	}
	s.events[calendarId] = append(s.events[calendarId][:i], s.events[calendarId][i+1:]...)
	return nil
}

func (s *StubRemoteStore) indexOf(calendarId string, eventId string) int {
	for i, e := range s.events[calendarId] {
		if e.Id == eventId {
			return i
		}
	}
	return -1
}

// AddEvent stores an event as if it already existed remotely. An empty id is generated.
func (s *StubRemoteStore) AddEvent(calendarId string, event *gcal.Event) *gcal.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyEvent(event)
	if stored.Id == "" {
		stored.Id = uuid.NewString()
	}
	s.events[calendarId] = append(s.events[calendarId], stored)
	return copyEvent(stored)
}

// FailOn makes operation fail with err for events with the given summary.
func (s *StubRemoteStore) FailOn(operation StubOperation, summary string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures[operation] == nil {
		s.failures[operation] = make(map[string]error)
	}
	s.failures[operation][summary] = err
}

func (s *StubRemoteStore) FailList(calendarId string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr[calendarId] = err
}

func (s *StubRemoteStore) GetAllEvents(calendarId string) []*gcal.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*gcal.Event, 0, len(s.events[calendarId]))
	for _, e := range s.events[calendarId] {
		result = append(result, copyEvent(e))
	}
	return result
}

func (s *StubRemoteStore) GetEventsByTitle(calendarId string, title string) []*gcal.Event {
	var result []*gcal.Event
	for _, e := range s.GetAllEvents(calendarId) {
		if e.Summary == title {
			result = append(result, e)
		}
	}
	return result
}

func (s *StubRemoteStore) Calls(operation StubOperation) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[operation]
}

// MutatingCalls counts create, update and delete calls.
func (s *StubRemoteStore) MutatingCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[StubCreate] + s.calls[StubUpdate] + s.calls[StubDelete]
}

func (s *StubRemoteStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string][]*gcal.Event)
	s.calls = make(map[StubOperation]int)
	s.failures = make(map[StubOperation]map[string]error)
	s.listErr = make(map[string]error)
}

func copyEvent(e *gcal.Event) *gcal.Event {
	c := *e
	if e.ExtendedProperties != nil {
		props := *e.ExtendedProperties
		props.Private = maps.Clone(e.ExtendedProperties.Private)
		c.ExtendedProperties = &props
	}
	return &c
}
