package research

import (
	"regexp"
	"strings"
)

// NoSummary stands in for a news digest without a Summary section.
const NoSummary = "No summary available."

// News is a news digest split into its sections. Raw is kept for digests
// that do not follow the requested layout.
type News struct {
	Summary    string   `json:"summary"`
	KeyDetails []string `json:"key_details"`
	Sources    []string `json:"sources"`
	Raw        string   `json:"raw"`
}

// Section headings are bold, with the colon inside or outside the markers:
// "**Summary:**", "**Summary**:" or "**Summary**".
var (
	summarySection    = regexp.MustCompile(`(?s)\*\*Summary:?\*\*:?(.*?)\*\*Key Details:?\*\*`)
	keyDetailsSection = regexp.MustCompile(`(?s)\*\*Key Details:?\*\*:?(.*?)\*\*Sources:?\*\*`)
	sourcesSection    = regexp.MustCompile(`(?s)\*\*Sources:?\*\*:?(.*)`)
)

// ParseNews splits a digest into Summary, Key Details and Sources. Missing
// sections come back empty; a missing summary is NoSummary.
func ParseNews(raw string) *News {
	n := &News{Summary: NoSummary, Raw: raw}
	if m := summarySection.FindStringSubmatch(raw); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			n.Summary = s
		}
	}
	if m := keyDetailsSection.FindStringSubmatch(raw); m != nil {
		n.KeyDetails = listItems(m[1])
	}
	if m := sourcesSection.FindStringSubmatch(raw); m != nil {
		n.Sources = listItems(m[1])
	}
	return n
}

// listItems returns the non-blank lines of a section without bullet markers.
func listItems(section string) []string {
	var items []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.Trim(line, "*-• \t\r")
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}
