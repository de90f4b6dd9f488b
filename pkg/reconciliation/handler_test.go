package reconciliation

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/calsync/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveReconcile(t *testing.T, reconciler *Reconciler, target string) (*httptest.ResponseRecorder, ResultDto) {
	t.Helper()
	router := mux.NewRouter()
	router.HandleFunc("/api/reconcile", NewHandler(reconciler).Reconcile).Methods("POST")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, target, nil))

	var body ResultDto
	if rr.Code != http.StatusBadRequest {
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	}
	return rr, body
}

func TestHandler_Reconcile(t *testing.T) {
	local := func(t *testing.T) *stubLocalSource {
		return &stubLocalSource{
			releases: []event.ReleaseEvent{event.NewReleaseEvent("3.20.0 Release", "", day(t, "2025-06-01"))},
			calls:    []event.CallEvent{event.NewCallEvent("Old call", "", day(t, "2024-02-01"), event.TimeOfDay{Hour: 9}, time.Hour, "")},
		}
	}

	t.Run("should preview default window", func(t *testing.T) {
		// given
		reconciler, store, _ := setupReconciler(t, local(t))

		// when
		rr, body := serveReconcile(t, reconciler, "/api/reconcile?dryRun=true")

		// then
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, body.DryRun)
		require.Len(t, body.Actions, 1)
		assert.Equal(t, ActionCreate, body.Actions[0].Type)
		assert.Equal(t, releasesCalendar, body.Actions[0].CalendarId)
		assert.Equal(t, 1, body.Report.Planned)
		assert.Zero(t, store.MutatingCalls())
	})

	t.Run("should execute explicit window", func(t *testing.T) {
		reconciler, store, _ := setupReconciler(t, local(t))

		rr, body := serveReconcile(t, reconciler, "/api/reconcile?from=2024-01-01&to=2024-12-31")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, body.DryRun)
		assert.Equal(t, 1, body.Report.Executed)
		assert.Len(t, store.GetEventsByTitle(callsCalendar, "Old call"), 1)
		assert.Empty(t, store.GetAllEvents(releasesCalendar))
	})

	t.Run("should report per action failures", func(t *testing.T) {
		reconciler, store, _ := setupReconciler(t, local(t))
		store.FailOn(StubCreate, "3.20.0 Release", errors.New("rate limited"))

		rr, body := serveReconcile(t, reconciler, "/api/reconcile")

		assert.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, body.Actions, 1)
		assert.Equal(t, "rate limited", body.Actions[0].Error)
		assert.Equal(t, 1, body.Report.Failed)
	})

	t.Run("should answer 500 with the other calendar's result", func(t *testing.T) {
		reconciler, store, _ := setupReconciler(t, local(t))
		store.FailList(callsCalendar, errors.New("backend unavailable"))

		rr, body := serveReconcile(t, reconciler, "/api/reconcile?dryRun=true")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Len(t, body.Actions, 1)
		require.Len(t, body.Errors, 1)
		assert.Contains(t, body.Errors[0], "backend unavailable")
	})

	for _, target := range []string{
		"/api/reconcile?dryRun=maybe",
		"/api/reconcile?from=2024-01-01",
		"/api/reconcile?from=2024-13-01&to=2024-12-31",
		"/api/reconcile?from=2024-12-31&to=2024-01-01",
	} {
		t.Run("should reject "+target, func(t *testing.T) {
			reconciler, store, _ := setupReconciler(t, local(t))

			rr, _ := serveReconcile(t, reconciler, target)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Zero(t, store.Calls(StubList))
		})
	}
}
