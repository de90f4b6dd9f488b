package release_sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/klokku/calsync/pkg/event"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const DefaultRepositoryUrl = "https://repo1.maven.org/maven2/io/quarkus/platform/quarkus-bom/"

// Text following a directory link: "   2021-06-30 13:00         -".
var listingDatePattern = regexp.MustCompile(`^\s*(\d{4}-\d{2}-\d{2})\s+\d{2}:\d{2}\s+-`)

// VersionSource lists published platform versions.
type VersionSource interface {
	FetchVersions(ctx context.Context) ([]PlatformVersion, error)
}

// MavenRepository reads the directory listing of the BOM artifact.
type MavenRepository struct {
	httpClient *http.Client
	url        string
}

func NewMavenRepository(url string) *MavenRepository {
	return &MavenRepository{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
	}
}

func (m *MavenRepository) FetchVersions(ctx context.Context) ([]PlatformVersion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch %s: %w", m.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to fetch %s: status %d", m.url, resp.StatusCode)
	}
	return parseListing(resp.Body)
}

// parseListing extracts versions from an index page where every version is a
// link to "VERSION/" followed by its publication date.
func parseListing(r io.Reader) ([]PlatformVersion, error) {
	var versions []PlatformVersion
	tokenizer := html.NewTokenizer(r)
	pendingVersion := ""
	inLink := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return nil, fmt.Errorf("unable to parse repository listing: %w", err)
			}
			return versions, nil

		case html.StartTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}
			inLink = true
			pendingVersion = ""
			for _, attr := range token.Attr {
				if attr.Key == "href" {
					pendingVersion = directoryName(attr.Val)
				}
			}

		case html.EndTagToken:
			if tokenizer.Token().Data == "a" {
				inLink = false
			}

		case html.TextToken:
			if inLink || pendingVersion == "" {
				continue
			}
			match := listingDatePattern.FindSubmatch(tokenizer.Text())
			if match != nil {
				date, err := event.ParseDate(string(match[1]))
				if err != nil {
					log.Warnf("Failed to parse date for version %s: %s", pendingVersion, match[1])
				} else {
					versions = append(versions, PlatformVersion{Version: pendingVersion, Date: date})
				}
			}
			pendingVersion = ""
		}
	}
}

// directoryName returns "3.20.0" for "3.20.0/" and "" for anything that is not
// a plain child directory.
func directoryName(href string) string {
	name, ok := strings.CutSuffix(href, "/")
	if !ok || name == "" || strings.ContainsAny(name, `/"`) || name == ".." {
		return ""
	}
	return name
}
