// Package urldetect classifies Confluence and JIRA URLs and extracts the
// identifier needed to fetch their content. Patterns match on the URL path
// regardless of host, so self-hosted instances classify the same way as
// atlassian.net cloud sites.
package urldetect

import "regexp"

// Kind is the detected source category of a URL.
type Kind string

const (
	KindConfluence Kind = "confluence"
	KindJiraIssue  Kind = "jira"
	KindJiraBoard  Kind = "jira_board"
	KindUnknown    Kind = "unknown"
)

// Detection is the result of classifying a URL. Identifier holds the
// Confluence page ID, the JIRA issue key, or the board's project key.
// It can be empty for recognized URLs that do not carry an identifier,
// such as /display/ Confluence links or rapidView-only board links.
// BoardID is set only for board URLs that carry a numeric board ID.
type Detection struct {
	Kind       Kind
	Identifier string
	BoardID    string
}

// Issue keys are case-sensitive on purpose: JIRA project keys are upper
// case, and lowercasing here would fabricate keys that do not exist.
var (
	confluencePageRe    = regexp.MustCompile(`https?://[^/]+/wiki/spaces/[^/]+/pages/(\d+)`)
	confluenceViewRe    = regexp.MustCompile(`https?://[^/]+/pages/viewpage\.action\?pageId=(\d+)`)
	confluenceDisplayRe = regexp.MustCompile(`https?://[^/]+/display/[^/]+/[^/]+`)
	confluenceWikiRe    = regexp.MustCompile(`https?://[^/]+/wiki/[^/]+/[^/]+`)

	jiraBrowseRe   = regexp.MustCompile(`https?://[^/]+/(?:jira/)?browse/([A-Z][A-Z0-9]*-\d+)`)
	jiraIssuesRe   = regexp.MustCompile(`https?://[^/]+/projects/[^/]+/issues/([A-Z][A-Z0-9]*-\d+)`)
	jiraSelectedRe = regexp.MustCompile(`[?&]selectedIssue=([A-Z][A-Z0-9]*-\d+)`)
	jiraBoardRe    = regexp.MustCompile(`https?://[^/]+/jira/software/(?:c/)?projects/([A-Z][A-Z0-9]*)/boards/(\d+)`)
	jiraRapidRe    = regexp.MustCompile(`https?://[^/]+/secure/RapidBoard\.jspa\?rapidView=(\d+)`)
)

// Detect classifies url. Board URLs that also carry a selectedIssue query
// parameter resolve to the single issue, since that is what the user is
// looking at.
func Detect(url string) Detection {
	if m := confluencePageRe.FindStringSubmatch(url); m != nil {
		return Detection{Kind: KindConfluence, Identifier: m[1]}
	}
	if m := confluenceViewRe.FindStringSubmatch(url); m != nil {
		return Detection{Kind: KindConfluence, Identifier: m[1]}
	}
	if confluenceDisplayRe.MatchString(url) || confluenceWikiRe.MatchString(url) {
		return Detection{Kind: KindConfluence}
	}
	if m := jiraSelectedRe.FindStringSubmatch(url); m != nil {
		return Detection{Kind: KindJiraIssue, Identifier: m[1]}
	}
	if m := jiraBrowseRe.FindStringSubmatch(url); m != nil {
		return Detection{Kind: KindJiraIssue, Identifier: m[1]}
	}
	if m := jiraIssuesRe.FindStringSubmatch(url); m != nil {
		return Detection{Kind: KindJiraIssue, Identifier: m[1]}
	}
	if m := jiraBoardRe.FindStringSubmatch(url); m != nil {
		return Detection{Kind: KindJiraBoard, Identifier: m[1], BoardID: m[2]}
	}
	if m := jiraRapidRe.FindStringSubmatch(url); m != nil {
		return Detection{Kind: KindJiraBoard, BoardID: m[1]}
	}
	return Detection{Kind: KindUnknown}
}
