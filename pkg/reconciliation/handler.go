package reconciliation

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/klokku/calsync/internal/rest"
	"github.com/klokku/calsync/pkg/event"
	log "github.com/sirupsen/logrus"
)

type ActionDto struct {
	Type        ActionType `json:"type"`
	CalendarId  string     `json:"calendarId"`
	Description string     `json:"description"`
	Error       string     `json:"error,omitempty"`
}

type ReportDto struct {
	Planned  int `json:"planned"`
	Executed int `json:"executed"`
	Failed   int `json:"failed"`
	Orphans  int `json:"orphans"`
}

type ResultDto struct {
	DryRun  bool        `json:"dryRun"`
	Actions []ActionDto `json:"actions"`
	Report  ReportDto   `json:"report"`
	Errors  []string    `json:"errors,omitempty"`
}

type Handler struct {
	reconciler *Reconciler
}

func NewHandler(reconciler *Reconciler) *Handler {
	return &Handler{reconciler: reconciler}
}

// Reconcile handles POST /api/reconcile?dryRun=true|false[&from=YYYY-MM-DD&to=YYYY-MM-DD].
// Without from/to the default window is used. A failing calendar does not hide
// the other calendar's result; the response then carries status 500 and the errors.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	query := r.URL.Query()
	dryRun := false
	if value := query.Get("dryRun"); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid dryRun value")
			return
		}
		dryRun = parsed
	}

	start, end, err := h.window(query.Get("from"), query.Get("to"))
	if err != nil {
		log.Debugf("invalid reconciliation window: %v", err)
		rest.WriteError(w, http.StatusBadRequest, "Invalid from/to dates, expected YYYY-MM-DD with from <= to")
		return
	}

	result, err := h.reconciler.ReconcileBetween(r.Context(), start, end, dryRun)
	response := toResultDto(result)
	status := http.StatusOK
	if err != nil {
		response.Errors = []string{err.Error()}
		status = http.StatusInternalServerError
	}

	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) window(from string, to string) (time.Time, time.Time, error) {
	if from == "" && to == "" {
		start, end := h.reconciler.DefaultWindow()
		return start, end, nil
	}
	start, err := event.ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := event.ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errInvertedWindow
	}
	return start, end, nil
}

func toResultDto(result Result) ResultDto {
	errorsByIndex := make(map[int]string, len(result.Report.Outcomes))
	for i, outcome := range result.Report.Outcomes {
		if outcome.Err != nil {
			errorsByIndex[i] = outcome.Err.Error()
		}
	}

	actions := make([]ActionDto, 0, len(result.Actions))
	for i, action := range result.Actions {
		actions = append(actions, ActionDto{
			Type:        action.Type,
			CalendarId:  action.CalendarId,
			Description: action.Description,
			Error:       errorsByIndex[i],
		})
	}
	return ResultDto{
		DryRun:  result.DryRun,
		Actions: actions,
		Report: ReportDto{
			Planned:  result.Report.Planned,
			Executed: result.Report.Executed,
			Failed:   result.Report.Failed,
			Orphans:  result.Report.Orphans,
		},
	}
}
