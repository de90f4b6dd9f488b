package ics

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/calsync/internal/rest"
	"github.com/klokku/calsync/internal/utils"
	"github.com/klokku/calsync/pkg/event"
	log "github.com/sirupsen/logrus"
)

type EventSource interface {
	LoadReleaseEvents(start, end time.Time) ([]event.ReleaseEvent, error)
	LoadCallEvents(start, end time.Time) ([]event.CallEvent, error)
}

// WindowFunc returns the date range a feed covers.
type WindowFunc func() (time.Time, time.Time)

type Handler struct {
	source EventSource
	window WindowFunc
	clock  utils.Clock
}

func NewHandler(source EventSource, window WindowFunc, clock utils.Clock) *Handler {
	return &Handler{source: source, window: window, clock: clock}
}

// GetFeed serves /api/calendars/{kind}.ics
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(strings.TrimSuffix(mux.Vars(r)["kind"], ".ics"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		rest.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	events, err := h.load(kind)
	if err != nil {
		log.Errorf("unable to load %s for ICS feed: %v", kind, err)
		w.Header().Set("Content-Type", "application/json")
		rest.WriteError(w, http.StatusInternalServerError, "Failed to load local events")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="`+string(kind)+`.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(Render(kind, events, h.clock.Now()))); err != nil {
		log.Warnf("unable to write ICS feed: %v", err)
	}
}

func (h *Handler) load(kind Kind) ([]event.Event, error) {
	start, end := h.window()
	var events []event.Event
	switch kind {
	case KindReleases:
		releases, err := h.source.LoadReleaseEvents(start, end)
		if err != nil {
			return nil, err
		}
		for _, e := range releases {
			events = append(events, e)
		}
	case KindCalls:
		calls, err := h.source.LoadCallEvents(start, end)
		if err != nil {
			return nil, err
		}
		for _, e := range calls {
			events = append(events, e)
		}
	default:
		return nil, errors.New("unsupported kind " + string(kind))
	}
	return events, nil
}
