package release_sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/klokku/calsync/pkg/event"
	log "github.com/sirupsen/logrus"
)

const DefaultMinVersion = "3.20.0"

type Summary struct {
	Created   int
	Updated   int
	Unchanged int
}

// Syncer writes one release file per published version that is missing locally
// or whose recorded date no longer matches the repository.
type Syncer struct {
	source      VersionSource
	releasesDir string
	minVersion  string
}

func NewSyncer(source VersionSource, releasesDir string, minVersion string) *Syncer {
	if minVersion == "" {
		minVersion = DefaultMinVersion
	}
	return &Syncer{source: source, releasesDir: releasesDir, minVersion: minVersion}
}

func (s *Syncer) Sync(ctx context.Context) (Summary, error) {
	log.Info("Fetching platform versions from Maven Central...")
	versions, err := s.source.FetchVersions(ctx)
	if err != nil {
		err := fmt.Errorf("release sync failed: %w", err)
		log.Error(err)
		return Summary{}, err
	}
	log.Infof("Found %d total versions", len(versions))

	slices.SortStableFunc(versions, PlatformVersion.Compare)
	versions = slices.DeleteFunc(versions, func(v PlatformVersion) bool {
		return !v.IsAtLeast(s.minVersion)
	})
	log.Infof("Processing %d versions >= %s", len(versions), s.minVersion)

	var summary Summary
	for _, version := range versions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		path := filepath.Join(s.releasesDir, version.FileName())
		existing, err := event.ReadReleaseFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if err := s.write(path, version, ""); err != nil {
				return summary, err
			}
			summary.Created++
			log.Infof("Created: %s (%s)", version.Version, event.FormatDate(version.Date))

		case err != nil:
			log.Warnf("Failed to parse existing file %s, rewriting it: %v", path, err)
			if err := s.write(path, version, ""); err != nil {
				return summary, err
			}
			summary.Updated++

		case !existing.Date.Equal(version.Date):
			if err := s.write(path, version, existing.Description); err != nil {
				return summary, err
			}
			summary.Updated++
			log.Warnf("Updated: %s (date changed from %s to %s)", version.Version, event.FormatDate(existing.Date), event.FormatDate(version.Date))

		default:
			summary.Unchanged++
		}
	}

	log.Infof("Summary: created=%d updated=%d unchanged=%d", summary.Created, summary.Updated, summary.Unchanged)
	return summary, nil
}

// write keeps a hand-written description when a file is rewritten.
func (s *Syncer) write(path string, version PlatformVersion, description string) error {
	release := event.NewReleaseEvent(version.Title(), description, version.Date)
	if err := event.WriteReleaseFile(path, release); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}
