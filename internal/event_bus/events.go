package event_bus

const (
	ReconciliationActionExecuted EventType = "reconciliation.action_executed"
	ReconciliationFinished       EventType = "reconciliation.finished"
)

// ActionExecuted reports the outcome of one executed reconciliation action.
type ActionExecuted struct {
	CalendarId  string `json:"calendarId"`
	Type        string `json:"type"`
	Description string `json:"description"`
	RemoteId    string `json:"remoteId,omitempty"`
	Succeeded   bool   `json:"succeeded"`
	Error       string `json:"error,omitempty"`
}

// CalendarReconciled summarizes one calendar's execution phase.
type CalendarReconciled struct {
	CalendarId string `json:"calendarId"`
	Planned    int    `json:"planned"`
	Executed   int    `json:"executed"`
	Failed     int    `json:"failed"`
	Orphans    int    `json:"orphans"`
}
