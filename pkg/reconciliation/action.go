package reconciliation

import (
	"fmt"

	"github.com/klokku/calsync/pkg/event"
	gcal "google.golang.org/api/calendar/v3"
)

type ActionType string

const (
	ActionCreate     ActionType = "CREATE"
	ActionUpdate     ActionType = "UPDATE"
	ActionDelete     ActionType = "DELETE"
	ActionWarnOrphan ActionType = "WARN_ORPHAN"
)

// Action is a decided reconciliation step. CREATE and UPDATE carry a local
// event, UPDATE, DELETE and WARN_ORPHAN carry a remote event.
type Action struct {
	Type        ActionType
	CalendarId  string
	Description string
	LocalEvent  event.Event
	RemoteEvent *gcal.Event
}

func NewCreateAction(local event.Event, calendarId string) Action {
	return Action{
		Type:        ActionCreate,
		CalendarId:  calendarId,
		Description: fmt.Sprintf("Create %s", describeLocal(local)),
		LocalEvent:  local,
	}
}

func NewUpdateAction(local event.Event, remote *gcal.Event, calendarId string) Action {
	return Action{
		Type:        ActionUpdate,
		CalendarId:  calendarId,
		Description: fmt.Sprintf("Update %s", describeLocal(local)),
		LocalEvent:  local,
		RemoteEvent: remote,
	}
}

func NewDeleteAction(remote *gcal.Event, calendarId string) Action {
	return Action{
		Type:        ActionDelete,
		CalendarId:  calendarId,
		Description: fmt.Sprintf("Delete %s (no local file)", describeRemote(remote)),
		RemoteEvent: remote,
	}
}

func NewWarnOrphanAction(remote *gcal.Event, calendarId string) Action {
	return Action{
		Type:        ActionWarnOrphan,
		CalendarId:  calendarId,
		Description: fmt.Sprintf("Orphan %s has no local file and was not created by this tool, leaving it untouched", describeRemote(remote)),
		RemoteEvent: remote,
	}
}

func (a Action) String() string {
	return fmt.Sprintf("[%s] %s", a.Type, a.Description)
}

func describeLocal(local event.Event) string {
	switch e := local.(type) {
	case event.CallEvent:
		return fmt.Sprintf("'%s' on %s at %s UTC", e.Title, event.FormatDate(e.Date), e.Time)
	case event.ReleaseEvent:
		return fmt.Sprintf("'%s' on %s", e.Title, event.FormatDate(e.Date))
	default:
		return fmt.Sprintf("'%s' on %s", local.GetTitle(), event.FormatDate(local.GetDate()))
	}
}

func describeRemote(remote *gcal.Event) string {
	date, err := ExtractDate(remote)
	if err != nil {
		return fmt.Sprintf("'%s' (id %s)", remote.Summary, remote.Id)
	}
	return fmt.Sprintf("'%s' on %s (id %s)", remote.Summary, event.FormatDate(date), remote.Id)
}
