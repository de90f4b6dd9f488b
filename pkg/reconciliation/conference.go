package reconciliation

import (
	"strings"

	gcal "google.golang.org/api/calendar/v3"
)

type videoPlatform struct {
	hosts        []string
	label        string
	solutionName string
}

var videoPlatforms = []videoPlatform{
	{hosts: []string{"meet.google.com"}, label: "Join with Google Meet", solutionName: "Google Meet"},
	{hosts: []string{"zoom.us"}, label: "Join Zoom Meeting", solutionName: "Zoom"},
	{hosts: []string{"teams.microsoft.com", "teams.live.com"}, label: "Join Microsoft Teams Meeting", solutionName: "Microsoft Teams"},
}

var genericVideoPlatform = videoPlatform{label: "Join video call", solutionName: "Video Conference"}

func detectVideoPlatform(link string) (videoPlatform, bool) {
	lower := strings.ToLower(link)
	for _, platform := range videoPlatforms {
		for _, host := range platform.hosts {
			if strings.Contains(lower, host) {
				return platform, true
			}
		}
	}
	return genericVideoPlatform, false
}

// IsSupportedVideoPlatform reports whether link points to Google Meet, Zoom or Microsoft Teams.
func IsSupportedVideoPlatform(link string) bool {
	if strings.TrimSpace(link) == "" {
		return false
	}
	_, ok := detectVideoPlatform(link)
	return ok
}

// conferenceDataFor makes the link show up as a video call button. Third-party
// providers are keyed as "addOn" solutions.
func conferenceDataFor(link string) *gcal.ConferenceData {
	platform, _ := detectVideoPlatform(link)
	return &gcal.ConferenceData{
		EntryPoints: []*gcal.EntryPoint{
			{
				EntryPointType: "video",
				Uri:            link,
				Label:          platform.label,
			},
		},
		ConferenceSolution: &gcal.ConferenceSolution{
			Key:  &gcal.ConferenceSolutionKey{Type: "addOn"},
			Name: platform.solutionName,
		},
	}
}

func videoEntryPointUri(e *gcal.Event) string {
	if e == nil || e.ConferenceData == nil {
		return ""
	}
	for _, ep := range e.ConferenceData.EntryPoints {
		if ep != nil && ep.EntryPointType == "video" {
			return ep.Uri
		}
	}
	return ""
}
