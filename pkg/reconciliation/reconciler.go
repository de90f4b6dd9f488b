package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/calsync/internal/event_bus"
	"github.com/klokku/calsync/internal/utils"
	"github.com/klokku/calsync/pkg/event"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

var ErrCalendarNotConfigured = errors.New("calendar ID not configured")

var errInvertedWindow = errors.New("window end is before its start")

const defaultPageSize = 100

// RemoteStore is the calendar service holding the projected events.
type RemoteStore interface {
	ListEvents(ctx context.Context, calendarId string, pageSize int) ([]*gcal.Event, error)
	CreateEvent(ctx context.Context, calendarId string, event *gcal.Event) (*gcal.Event, error)
	UpdateEvent(ctx context.Context, calendarId string, eventId string, event *gcal.Event) (*gcal.Event, error)
	DeleteEvent(ctx context.Context, calendarId string, eventId string) error
}

// LocalEventSource returns the locally defined events of [start, end].
type LocalEventSource interface {
	LoadReleaseEvents(start, end time.Time) ([]event.ReleaseEvent, error)
	LoadCallEvents(start, end time.Time) ([]event.CallEvent, error)
}

type Settings struct {
	ReleasesCalendarId string
	CallsCalendarId    string
	MonthsBefore       int
	MonthsAfter        int
	PageSize           int
}

type Reconciler struct {
	remote     RemoteStore
	local      LocalEventSource
	comparator Comparator
	settings   Settings
	clock      utils.Clock
	bus        *event_bus.EventBus
}

func NewReconciler(remote RemoteStore, local LocalEventSource, comparator Comparator, settings Settings, clock utils.Clock, bus *event_bus.EventBus) *Reconciler {
	if settings.PageSize <= 0 {
		settings.PageSize = defaultPageSize
	}
	return &Reconciler{
		remote:     remote,
		local:      local,
		comparator: comparator,
		settings:   settings,
		clock:      clock,
		bus:        bus,
	}
}

// DefaultWindow is [today - monthsBefore, today + monthsAfter].
func (r *Reconciler) DefaultWindow() (time.Time, time.Time) {
	today := utils.Today(r.clock)
	return utils.AddMonths(today, -r.settings.MonthsBefore), utils.AddMonths(today, r.settings.MonthsAfter)
}

// ReconcileAll reconciles both calendars over the default window. The calendars
// are independent: a failure in one is returned alongside the other's result.
func (r *Reconciler) ReconcileAll(ctx context.Context, dryRun bool) (Result, error) {
	start, end := r.DefaultWindow()
	return r.ReconcileBetween(ctx, start, end, dryRun)
}

// ReconcileRange reconciles both calendars over [start, end] and always executes.
func (r *Reconciler) ReconcileRange(ctx context.Context, start, end time.Time) (Result, error) {
	return r.ReconcileBetween(ctx, start, end, false)
}

func (r *Reconciler) ReconcileBetween(ctx context.Context, start, end time.Time, dryRun bool) (Result, error) {
	if !dryRun {
		log.Infof("Reconciling events from %s to %s", event.FormatDate(start), event.FormatDate(end))
	}

	releases, releasesErr := r.ReconcileReleases(ctx, start, end, dryRun)
	calls, callsErr := r.ReconcileCalls(ctx, start, end, dryRun)

	result := Result{DryRun: dryRun}.merge(releases).merge(calls)
	return result, errors.Join(releasesErr, callsErr)
}

func (r *Reconciler) ReconcileReleases(ctx context.Context, start, end time.Time, dryRun bool) (Result, error) {
	calendarId, err := r.resolveCalendarId("releases", r.settings.ReleasesCalendarId)
	if err != nil {
		return Result{DryRun: dryRun}, err
	}
	localEvents, err := r.local.LoadReleaseEvents(start, end)
	if err != nil {
		return Result{DryRun: dryRun}, fmt.Errorf("failed to load local releases: %w", err)
	}
	return r.reconcileCalendar(ctx, Events(localEvents), calendarId, start, end, dryRun, "releases")
}

func (r *Reconciler) ReconcileCalls(ctx context.Context, start, end time.Time, dryRun bool) (Result, error) {
	calendarId, err := r.resolveCalendarId("calls", r.settings.CallsCalendarId)
	if err != nil {
		return Result{DryRun: dryRun}, err
	}
	localEvents, err := r.local.LoadCallEvents(start, end)
	if err != nil {
		return Result{DryRun: dryRun}, fmt.Errorf("failed to load local calls: %w", err)
	}
	return r.reconcileCalendar(ctx, Events(localEvents), calendarId, start, end, dryRun, "calls")
}

func (r *Reconciler) resolveCalendarId(calendarType string, calendarId string) (string, error) {
	if calendarId == "" {
		err := fmt.Errorf("%s: %w", calendarType, ErrCalendarNotConfigured)
		log.Error(err)
		return "", err
	}
	return calendarId, nil
}

func (r *Reconciler) reconcileCalendar(ctx context.Context, localEvents []event.Event, calendarId string, start, end time.Time, dryRun bool, calendarType string) (Result, error) {
	remoteEvents, err := r.remote.ListEvents(ctx, calendarId, r.settings.PageSize)
	if err != nil {
		err := fmt.Errorf("failed to reconcile %s: %w", calendarType, err)
		log.Error(err)
		return Result{DryRun: dryRun}, err
	}

	remoteEvents, err = FilterByDateRange(remoteEvents, start, end)
	if err != nil {
		err := fmt.Errorf("failed to reconcile %s: %w", calendarType, err)
		log.Error(err)
		return Result{DryRun: dryRun}, err
	}

	return r.Reconcile(ctx, localEvents, remoteEvents, calendarId, dryRun)
}

// Reconcile runs analysis on already fetched events and, unless dryRun is set,
// executes the resulting actions.
func (r *Reconciler) Reconcile(ctx context.Context, localEvents []event.Event, remoteEvents []*gcal.Event, calendarId string, dryRun bool) (Result, error) {
	actions, err := Analyze(localEvents, remoteEvents, calendarId, r.comparator)
	if err != nil {
		log.Errorf("failed to analyze calendar %s: %v", calendarId, err)
		return Result{DryRun: dryRun}, err
	}

	if dryRun {
		return Result{Actions: actions, Report: Report{Planned: len(actions)}, DryRun: true}, nil
	}

	log.Infof("=== Reconciliation Analysis (%s) ===", calendarId)
	log.Infof("Found %d action(s) to perform:", len(actions))
	for _, action := range actions {
		log.Infof("  - %s", action)
	}

	log.Info("=== Executing Actions ===")
	report := r.Execute(ctx, actions)
	log.Infof("Reconciliation of %s finished: planned=%d executed=%d failed=%d orphans=%d",
		calendarId, report.Planned, report.Executed, report.Failed, report.Orphans)
	r.publish(ctx, event_bus.ReconciliationFinished, event_bus.CalendarReconciled{
		CalendarId: calendarId,
		Planned:    report.Planned,
		Executed:   report.Executed,
		Failed:     report.Failed,
		Orphans:    report.Orphans,
	})

	return Result{Actions: actions, Report: report}, nil
}

// Execute applies actions one at a time, in order. A failed action is logged
// and recorded; it never stops the remaining actions and nothing is rolled back.
func (r *Reconciler) Execute(ctx context.Context, actions []Action) Report {
	report := Report{Planned: len(actions), Outcomes: make([]Outcome, 0, len(actions))}

	for _, action := range actions {
		err := r.executeAction(ctx, action)
		report.Outcomes = append(report.Outcomes, Outcome{Action: action, Err: err})

		switch {
		case err != nil:
			report.Failed++
			log.Errorf("  Failed to execute action %q: %v", action.Description, err)
		case action.Type == ActionWarnOrphan:
			report.Orphans++
			continue
		default:
			report.Executed++
		}

		r.publish(ctx, event_bus.ReconciliationActionExecuted, actionExecuted(action, err))
	}

	return report
}

func (r *Reconciler) executeAction(ctx context.Context, action Action) error {
	switch action.Type {
	case ActionCreate:
		log.Infof("Creating: %s", action.Description)
		if _, err := r.remote.CreateEvent(ctx, action.CalendarId, ToGoogleEvent(action.LocalEvent)); err != nil {
			return err
		}
		log.Info("  Created successfully")
	case ActionUpdate:
		log.Infof("Updating: %s", action.Description)
		if _, err := r.remote.UpdateEvent(ctx, action.CalendarId, action.RemoteEvent.Id, ToGoogleEvent(action.LocalEvent)); err != nil {
			return err
		}
		log.Info("  Updated successfully")
	case ActionDelete:
		log.Infof("Deleting: %s", action.Description)
		if err := r.remote.DeleteEvent(ctx, action.CalendarId, action.RemoteEvent.Id); err != nil {
			return err
		}
		log.Info("  Deleted successfully")
	case ActionWarnOrphan:
		log.Warn(action.Description)
	default:
		return fmt.Errorf("unknown action type %s", action.Type)
	}
	return nil
}

func actionExecuted(action Action, err error) event_bus.ActionExecuted {
	executed := event_bus.ActionExecuted{
		CalendarId:  action.CalendarId,
		Type:        string(action.Type),
		Description: action.Description,
		Succeeded:   err == nil,
	}
	if action.RemoteEvent != nil {
		executed.RemoteId = action.RemoteEvent.Id
	}
	if err != nil {
		executed.Error = err.Error()
	}
	return executed
}

func (r *Reconciler) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Warnf("unable to publish %s: %v", eventType, err)
	}
}
