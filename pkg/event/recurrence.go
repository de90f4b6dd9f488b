package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

func parseRecurrence(rule string, dtStart time.Time) (*rrule.RRule, error) {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence %q: %w", rule, err)
	}
	opt.Dtstart = dtStart
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence %q: %w", rule, err)
	}
	return r, nil
}

// expand returns the occurrences of the definition whose date lies in [start, end].
// Definitions without a recurrence rule yield at most the event itself.
func (d callDefinition) expand(start, end time.Time) ([]CallEvent, error) {
	if d.Recurrence == "" {
		if InRange(d.Date, start, end) {
			return []CallEvent{d.CallEvent}, nil
		}
		return nil, nil
	}

	r, err := parseRecurrence(d.Recurrence, d.Start())
	if err != nil {
		return nil, err
	}
	windowStart := DateOf(start)
	windowEnd := DateOf(end).AddDate(0, 0, 1).Add(-time.Nanosecond)

	occurrences := r.Between(windowStart, windowEnd, true)
	events := make([]CallEvent, 0, len(occurrences))
	for _, occurrence := range occurrences {
		instance := d.CallEvent
		instance.Date = DateOf(occurrence.UTC())
		events = append(events, instance)
	}
	return events, nil
}
