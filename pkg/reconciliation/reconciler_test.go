package reconciliation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/klokku/calsync/internal/event_bus"
	"github.com/klokku/calsync/internal/utils"
	"github.com/klokku/calsync/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
)

const (
	releasesCalendar = "releases@group.calendar.google.com"
	callsCalendar    = "calls@group.calendar.google.com"
)

func setupReconciler(t *testing.T, local *stubLocalSource) (*Reconciler, *StubRemoteStore, *event_bus.EventBus) {
	t.Helper()
	store := NewStubRemoteStore()
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{}
	clock.SetNow(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))
	settings := Settings{
		ReleasesCalendarId: releasesCalendar,
		CallsCalendarId:    callsCalendar,
		MonthsBefore:       1,
		MonthsAfter:        6,
	}
	return NewReconciler(store, local, NewEventComparator(), settings, clock, bus), store, bus
}

func TestReconciler_CreatesReleaseAsAllDayEvent(t *testing.T) {
	// given
	local := &stubLocalSource{releases: []event.ReleaseEvent{
		event.NewReleaseEvent("3.20.0 Release", "", day(t, "2025-06-01")),
	}}
	reconciler, store, _ := setupReconciler(t, local)

	// when
	result, err := reconciler.ReconcileAll(context.Background(), false)

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, result.Report.Executed)
	events := store.GetEventsByTitle(releasesCalendar, "3.20.0 Release")
	require.Len(t, events, 1)
	assert.Equal(t, "2025-06-01", events[0].Start.Date)
	assert.Equal(t, "2025-06-01", events[0].End.Date)
	assert.Equal(t, ManagedByValue, events[0].ExtendedProperties.Private[ManagedByProperty])
	assert.Empty(t, store.GetAllEvents(callsCalendar))
}

func TestReconciler_UpdatesCallWithZoomLink(t *testing.T) {
	// given
	call := event.NewCallEvent("Community Call", "Monthly", day(t, "2025-06-20"), event.TimeOfDay{Hour: 14}, 50*time.Minute, "https://zoom.us/j/123")
	local := &stubLocalSource{calls: []event.CallEvent{call}}
	reconciler, store, _ := setupReconciler(t, local)
	existing := remoteTimed("Community Call", time.Date(2025, 6, 20, 14, 0, 0, 0, time.UTC), 50*time.Minute, false)
	existing.Description = "Monthly"
	existing = store.AddEvent(callsCalendar, existing)

	// when
	result, err := reconciler.ReconcileAll(context.Background(), false)

	// then
	require.NoError(t, err)
	require.Equal(t, []ActionType{ActionUpdate}, actionTypes(result.Actions))
	events := store.GetAllEvents(callsCalendar)
	require.Len(t, events, 1)
	updated := events[0]
	assert.Equal(t, existing.Id, updated.Id)
	assert.Equal(t, "Monthly\n\nJoin: https://zoom.us/j/123", updated.Description)
	require.NotNil(t, updated.ConferenceData)
	assert.Equal(t, "https://zoom.us/j/123", updated.ConferenceData.EntryPoints[0].Uri)
	assert.Equal(t, "Join Zoom Meeting", updated.ConferenceData.EntryPoints[0].Label)
	assert.True(t, IsManagedByUs(updated), "update re-stamps the managed marker")
}

func TestReconciler_DeletesManagedAndWarnsAboutOrphans(t *testing.T) {
	// given
	reconciler, store, _ := setupReconciler(t, &stubLocalSource{})
	store.AddEvent(releasesCalendar, remoteAllDay("Cancelled Release", "2025-07-01", true))
	store.AddEvent(releasesCalendar, remoteAllDay("Company Holiday", "2025-07-02", false))

	// when
	result, err := reconciler.ReconcileAll(context.Background(), false)

	// then
	require.NoError(t, err)
	assert.Equal(t, []ActionType{ActionDelete, ActionWarnOrphan}, actionTypes(result.Actions))
	assert.Equal(t, 1, result.Report.Executed)
	assert.Equal(t, 1, result.Report.Orphans)
	assert.Equal(t, 0, result.Report.Failed)
	remaining := store.GetAllEvents(releasesCalendar)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Company Holiday", remaining[0].Summary)
}

func TestReconciler_DryRunMakesNoChanges(t *testing.T) {
	// given
	local := &stubLocalSource{
		releases: []event.ReleaseEvent{event.NewReleaseEvent("New Release", "", day(t, "2025-07-01"))},
		calls:    []event.CallEvent{event.NewCallEvent("Call", "changed", day(t, "2025-06-20"), event.TimeOfDay{Hour: 9}, time.Hour, "")},
	}
	reconciler, store, bus := setupReconciler(t, local)
	store.AddEvent(releasesCalendar, remoteAllDay("Stale", "2025-06-10", true))
	store.AddEvent(callsCalendar, remoteTimed("Call", time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC), time.Hour, true))
	published := 0
	bus.Subscribe(event_bus.ReconciliationActionExecuted, func(event_bus.Event) error { published++; return nil })
	bus.Subscribe(event_bus.ReconciliationFinished, func(event_bus.Event) error { published++; return nil })
	before := len(store.GetAllEvents(releasesCalendar)) + len(store.GetAllEvents(callsCalendar))

	// when
	result, err := reconciler.ReconcileAll(context.Background(), true)

	// then
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.ElementsMatch(t, []ActionType{ActionCreate, ActionDelete, ActionUpdate}, actionTypes(result.Actions))
	assert.Equal(t, 3, result.Report.Planned)
	assert.Equal(t, 0, result.Report.Executed)
	assert.Equal(t, 0, store.MutatingCalls())
	assert.Equal(t, 2, store.Calls(StubList))
	assert.Equal(t, before, len(store.GetAllEvents(releasesCalendar))+len(store.GetAllEvents(callsCalendar)))
	assert.Zero(t, published)
}

func TestReconciler_Idempotent(t *testing.T) {
	// given
	local := &stubLocalSource{
		releases: []event.ReleaseEvent{
			event.NewReleaseEvent("3.20.0 Release", "LTS", day(t, "2025-06-01")),
			event.NewReleaseEvent("3.21.0 Release", "", day(t, "2025-07-01")),
		},
		calls: []event.CallEvent{
			event.NewCallEvent("Meet call", "", day(t, "2025-06-20"), event.TimeOfDay{Hour: 14}, 50*time.Minute, "https://meet.google.com/abc"),
			event.NewCallEvent("Plain call", "Agenda", day(t, "2025-06-21"), event.TimeOfDay{Hour: 8, Minute: 30}, 30*time.Minute, "https://example.com/room"),
		},
	}
	reconciler, store, _ := setupReconciler(t, local)
	store.AddEvent(releasesCalendar, remoteAllDay("Holiday", "2025-06-05", false))

	first, err := reconciler.ReconcileAll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Report.Executed)
	mutations := store.MutatingCalls()

	// when
	second, err := reconciler.ReconcileAll(context.Background(), false)

	// then
	require.NoError(t, err)
	assert.Equal(t, []ActionType{ActionWarnOrphan}, actionTypes(second.Actions))
	assert.Equal(t, mutations, store.MutatingCalls())
}

func TestReconciler_IsolatesFailedActions(t *testing.T) {
	// given
	local := &stubLocalSource{releases: []event.ReleaseEvent{
		event.NewReleaseEvent("A", "", day(t, "2025-06-01")),
		event.NewReleaseEvent("B", "", day(t, "2025-06-02")),
		event.NewReleaseEvent("C", "", day(t, "2025-06-03")),
	}}
	reconciler, store, _ := setupReconciler(t, local)
	quotaErr := errors.New("quota exceeded")
	store.FailOn(StubCreate, "B", quotaErr)

	// when
	result, err := reconciler.ReconcileAll(context.Background(), false)

	// then
	require.NoError(t, err)
	assert.Equal(t, 3, result.Report.Planned)
	assert.Equal(t, 2, result.Report.Executed)
	assert.Equal(t, 1, result.Report.Failed)
	require.Len(t, result.Report.Outcomes, 3)
	assert.NoError(t, result.Report.Outcomes[0].Err)
	assert.ErrorIs(t, result.Report.Outcomes[1].Err, quotaErr)
	assert.NoError(t, result.Report.Outcomes[2].Err)
	assert.Len(t, store.GetEventsByTitle(releasesCalendar, "A"), 1)
	assert.Empty(t, store.GetEventsByTitle(releasesCalendar, "B"))
	assert.Len(t, store.GetEventsByTitle(releasesCalendar, "C"), 1)
}

func TestReconciler_ListingFailureAffectsOnlyOneCalendar(t *testing.T) {
	// given
	local := &stubLocalSource{
		releases: []event.ReleaseEvent{event.NewReleaseEvent("Release", "", day(t, "2025-06-01"))},
		calls:    []event.CallEvent{event.NewCallEvent("Call", "", day(t, "2025-06-01"), event.TimeOfDay{Hour: 9}, time.Hour, "")},
	}
	reconciler, store, _ := setupReconciler(t, local)
	listErr := errors.New("backend unavailable")
	store.FailList(releasesCalendar, listErr)

	// when
	result, err := reconciler.ReconcileAll(context.Background(), false)

	// then
	assert.ErrorIs(t, err, listErr)
	assert.Equal(t, 1, result.Report.Executed)
	assert.Empty(t, store.GetAllEvents(releasesCalendar))
	assert.Len(t, store.GetEventsByTitle(callsCalendar, "Call"), 1)
}

func TestReconciler_MissingCalendarIdFailsBeforeRemoteCalls(t *testing.T) {
	// given
	store := NewStubRemoteStore()
	local := &stubLocalSource{releases: []event.ReleaseEvent{event.NewReleaseEvent("Release", "", day(t, "2025-06-01"))}}
	reconciler := NewReconciler(store, local, NewEventComparator(), Settings{CallsCalendarId: callsCalendar}, utils.SystemClock{}, nil)

	// when
	_, err := reconciler.ReconcileReleases(context.Background(), day(t, "2025-01-01"), day(t, "2025-12-31"), false)

	// then
	assert.ErrorIs(t, err, ErrCalendarNotConfigured)
	assert.Zero(t, store.Calls(StubList))
	assert.Zero(t, store.MutatingCalls())
}

func TestReconciler_LocalSourceFailure(t *testing.T) {
	loadErr := errors.New("bad yaml")
	reconciler, store, _ := setupReconciler(t, &stubLocalSource{err: loadErr})

	_, err := reconciler.ReconcileAll(context.Background(), false)

	assert.ErrorIs(t, err, loadErr)
	assert.Zero(t, store.Calls(StubList))
}

func TestReconciler_DefaultWindow(t *testing.T) {
	// given
	local := &stubLocalSource{releases: []event.ReleaseEvent{
		event.NewReleaseEvent("Too old", "", day(t, "2025-05-14")),
		event.NewReleaseEvent("First day", "", day(t, "2025-05-15")),
		event.NewReleaseEvent("Last day", "", day(t, "2025-12-15")),
		event.NewReleaseEvent("Too far", "", day(t, "2025-12-16")),
	}}
	reconciler, store, _ := setupReconciler(t, local)
	store.AddEvent(releasesCalendar, remoteAllDay("Outside window", "2025-01-01", true))

	// when
	start, end := reconciler.DefaultWindow()
	result, err := reconciler.ReconcileAll(context.Background(), false)

	// then
	assert.Equal(t, day(t, "2025-05-15"), start)
	assert.Equal(t, day(t, "2025-12-15"), end)
	require.NoError(t, err)
	assert.Equal(t, []ActionType{ActionCreate, ActionCreate}, actionTypes(result.Actions))
	assert.Len(t, store.GetEventsByTitle(releasesCalendar, "Outside window"), 1)
}

func TestReconciler_ReconcileRangeExecutes(t *testing.T) {
	local := &stubLocalSource{releases: []event.ReleaseEvent{event.NewReleaseEvent("Old", "", day(t, "2024-01-10"))}}
	reconciler, store, _ := setupReconciler(t, local)

	result, err := reconciler.ReconcileRange(context.Background(), day(t, "2024-01-01"), day(t, "2024-01-31"))

	require.NoError(t, err)
	assert.False(t, result.DryRun)
	assert.Len(t, store.GetEventsByTitle(releasesCalendar, "Old"), 1)
}

func TestReconciler_PublishesOutcomes(t *testing.T) {
	// given
	local := &stubLocalSource{releases: []event.ReleaseEvent{
		event.NewReleaseEvent("Ok", "", day(t, "2025-06-01")),
		event.NewReleaseEvent("Broken", "", day(t, "2025-06-02")),
	}}
	reconciler, store, bus := setupReconciler(t, local)
	store.AddEvent(releasesCalendar, remoteAllDay("Foreign", "2025-06-03", false))
	store.FailOn(StubCreate, "Broken", errors.New("boom"))

	var executed []event_bus.ActionExecuted
	var finished []event_bus.CalendarReconciled
	event_bus.SubscribeTyped(bus, event_bus.ReconciliationActionExecuted, func(e event_bus.EventT[event_bus.ActionExecuted]) error {
		executed = append(executed, e.Data)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.ReconciliationFinished, func(e event_bus.EventT[event_bus.CalendarReconciled]) error {
		finished = append(finished, e.Data)
		return nil
	})

	// when
	_, err := reconciler.ReconcileAll(context.Background(), false)

	// then
	require.NoError(t, err)
	require.Len(t, executed, 2)
	assert.Equal(t, "CREATE", executed[0].Type)
	assert.True(t, executed[0].Succeeded)
	assert.False(t, executed[1].Succeeded)
	assert.Equal(t, "boom", executed[1].Error)
	require.Len(t, finished, 2)
	assert.Equal(t, event_bus.CalendarReconciled{
		CalendarId: releasesCalendar,
		Planned:    3,
		Executed:   1,
		Failed:     1,
		Orphans:    1,
	}, finished[0])
	assert.Equal(t, callsCalendar, finished[1].CalendarId)
}

func TestReconciler_Reconcile(t *testing.T) {
	reconciler, store, _ := setupReconciler(t, &stubLocalSource{})
	local := []event.Event{event.NewReleaseEvent("Direct", "", day(t, "2025-06-01"))}

	result, err := reconciler.Reconcile(context.Background(), local, []*gcal.Event{}, releasesCalendar, false)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Report.Executed)
	assert.Len(t, store.GetEventsByTitle(releasesCalendar, "Direct"), 1)
	assert.Zero(t, store.Calls(StubList))
}

func TestReconciler_MissingEventsDirectoryKeepsRemoteEvents(t *testing.T) {
	// given
	store := NewStubRemoteStore()
	clock := &utils.MockClock{}
	clock.SetNow(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))
	loader := event.NewLoader(filepath.Join(t.TempDir(), "quarkus-releases"), "")
	reconciler := NewReconciler(store, loader, NewEventComparator(), Settings{
		ReleasesCalendarId: releasesCalendar,
		CallsCalendarId:    callsCalendar,
		MonthsBefore:       1,
		MonthsAfter:        6,
	}, clock, event_bus.NewEventBus())
	store.AddEvent(releasesCalendar, remoteAllDay("3.20.0 Release", "2025-06-01", true))

	// when
	result, err := reconciler.ReconcileAll(context.Background(), false)

	// then
	require.ErrorIs(t, err, event.ErrEventsDirMissing)
	assert.Empty(t, result.Actions)
	assert.Zero(t, store.Calls(StubDelete))
	assert.Len(t, store.GetAllEvents(releasesCalendar), 1)
}
