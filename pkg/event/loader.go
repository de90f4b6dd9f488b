package event

import (
	"cmp"
	"slices"
	"time"

	log "github.com/sirupsen/logrus"
)

// Loader reads event definitions from YAML files. Release and call
// definitions live in separate directories.
type Loader struct {
	releasesDir string
	callsDir    string
}

func NewLoader(releasesDir string, callsDir string) *Loader {
	return &Loader{
		releasesDir: releasesDir,
		callsDir:    callsDir,
	}
}

func (l *Loader) LoadReleaseEvents(start, end time.Time) ([]ReleaseEvent, error) {
	files, err := eventFiles(l.releasesDir)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	if files == nil {
		log.Warnf("Releases directory %s does not exist or is empty", l.releasesDir)
	}

	events := make([]ReleaseEvent, 0, len(files))
	for _, path := range files {
		e, err := ReadReleaseFile(path)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		if InRange(e.Date, start, end) {
			events = append(events, e)
		}
	}
	slices.SortStableFunc(events, func(a, b ReleaseEvent) int {
		return cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.Title, b.Title))
	})
	log.Debugf("Loaded %d release event(s) from %s between %s and %s", len(events), l.releasesDir, FormatDate(start), FormatDate(end))
	return events, nil
}

func (l *Loader) LoadCallEvents(start, end time.Time) ([]CallEvent, error) {
	files, err := eventFiles(l.callsDir)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	if files == nil {
		log.Warnf("Calls directory %s does not exist or is empty", l.callsDir)
	}

	events := make([]CallEvent, 0, len(files))
	for _, path := range files {
		definition, err := readCallFile(path)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		occurrences, err := definition.expand(start, end)
		if err != nil {
			log.Errorf("call file %s: %v", path, err)
			return nil, err
		}
		events = append(events, occurrences...)
	}
	slices.SortStableFunc(events, func(a, b CallEvent) int {
		return cmp.Or(a.Start().Compare(b.Start()), cmp.Compare(a.Title, b.Title))
	})
	log.Debugf("Loaded %d call event(s) from %s between %s and %s", len(events), l.callsDir, FormatDate(start), FormatDate(end))
	return events, nil
}

// LoadEvents returns every release and call event in [start, end].
func (l *Loader) LoadEvents(start, end time.Time) ([]ReleaseEvent, []CallEvent, error) {
	releases, err := l.LoadReleaseEvents(start, end)
	if err != nil {
		return nil, nil, err
	}
	calls, err := l.LoadCallEvents(start, end)
	if err != nil {
		return nil, nil, err
	}
	return releases, calls, nil
}
