package event

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type releaseFile struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Date        string `yaml:"date"`
}

type callFile struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Duration    string `yaml:"duration"`
	CallLink    string `yaml:"callLink,omitempty"`
	Recurrence  string `yaml:"recurrence,omitempty"`
}

// callDefinition is a parsed call file. A definition with a recurrence rule
// expands to one CallEvent per occurrence.
type callDefinition struct {
	CallEvent
	Recurrence string
}

func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(out)
}

func ReadReleaseFile(path string) (ReleaseEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReleaseEvent{}, err
	}
	var f releaseFile
	if err := decodeStrict(data, &f); err != nil {
		return ReleaseEvent{}, fmt.Errorf("unable to parse release file %s: %w", path, err)
	}
	if strings.TrimSpace(f.Title) == "" {
		return ReleaseEvent{}, fmt.Errorf("release file %s: title is required", path)
	}
	date, err := ParseDate(f.Date)
	if err != nil {
		return ReleaseEvent{}, fmt.Errorf("release file %s: invalid date %q", path, f.Date)
	}
	return NewReleaseEvent(f.Title, f.Description, date), nil
}

func WriteReleaseFile(path string, event ReleaseEvent) error {
	data, err := yaml.Marshal(releaseFile{
		Title:       event.Title,
		Description: event.Description,
		Date:        FormatDate(event.Date),
	})
	if err != nil {
		return fmt.Errorf("unable to marshal release %s: %w", event.Title, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readCallFile(path string) (callDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return callDefinition{}, err
	}
	var f callFile
	if err := decodeStrict(data, &f); err != nil {
		return callDefinition{}, fmt.Errorf("unable to parse call file %s: %w", path, err)
	}

	var errs []error
	if strings.TrimSpace(f.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	date, err := ParseDate(f.Date)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid date %q", f.Date))
	}
	at, err := ParseTimeOfDay(f.Time)
	if err != nil {
		errs = append(errs, err)
	}
	duration, err := ParseDuration(f.Duration)
	if err != nil {
		errs = append(errs, err)
	}
	if f.Recurrence != "" {
		if _, err := parseRecurrence(f.Recurrence, time.Now()); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return callDefinition{}, fmt.Errorf("call file %s: %w", path, errors.Join(errs...))
	}

	return callDefinition{
		CallEvent:  NewCallEvent(f.Title, f.Description, date, at, duration, strings.TrimSpace(f.CallLink)),
		Recurrence: f.Recurrence,
	}, nil
}

// ParseDuration accepts Go durations ("50m", "1h30m") and ISO-8601 time
// durations ("PT50M", "PT1H30M").
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("duration is required")
	}
	candidate := value
	if upper := strings.ToUpper(value); strings.HasPrefix(upper, "PT") {
		candidate = strings.ToLower(strings.TrimPrefix(upper, "PT"))
	}
	d, err := time.ParseDuration(candidate)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}

func isEventFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// ErrEventsDirMissing is returned when a configured events directory does not exist.
var ErrEventsDirMissing = errors.New("events directory does not exist")

// eventFiles lists event definition files below dir, in lexical order.
// An empty dir means the kind is not configured and yields no files.
func eventFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrEventsDirMissing, dir)
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isEventFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list event files in %s: %w", dir, err)
	}
	return files, nil
}
