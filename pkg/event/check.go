package event

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

type FormatProblem struct {
	Path string
	Err  error
}

// CheckFormat parses every definition file and reports the ones that are invalid.
// Files are checked independently; one bad file does not hide the others.
// A missing directory has nothing to check and is only reported in the log.
func (l *Loader) CheckFormat() ([]FormatProblem, int, error) {
	var problems []FormatProblem
	checked := 0

	releaseFiles, err := checkableFiles(l.releasesDir)
	if err != nil {
		return nil, 0, err
	}
	for _, path := range releaseFiles {
		checked++
		if _, err := ReadReleaseFile(path); err != nil {
			problems = append(problems, FormatProblem{Path: path, Err: err})
		}
	}

	callFiles, err := checkableFiles(l.callsDir)
	if err != nil {
		return nil, 0, err
	}
	for _, path := range callFiles {
		checked++
		if _, err := readCallFile(path); err != nil {
			problems = append(problems, FormatProblem{Path: path, Err: err})
		}
	}

	return problems, checked, nil
}

func checkableFiles(dir string) ([]string, error) {
	files, err := eventFiles(dir)
	if errors.Is(err, ErrEventsDirMissing) {
		log.Warn(err)
		return nil, nil
	}
	return files, err
}
