package urldetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		kind       Kind
		identifier string
		boardID    string
	}{
		{
			name:       "confluence page",
			url:        "https://acme.atlassian.net/wiki/spaces/ENG/pages/123456789/Release+Notes",
			kind:       KindConfluence,
			identifier: "123456789",
		},
		{
			name:       "confluence page without title suffix",
			url:        "https://acme.atlassian.net/wiki/spaces/ENG/pages/42",
			kind:       KindConfluence,
			identifier: "42",
		},
		{
			name:       "confluence viewpage action",
			url:        "https://wiki.internal.example/pages/viewpage.action?pageId=98765",
			kind:       KindConfluence,
			identifier: "98765",
		},
		{
			name: "confluence display path",
			url:  "https://wiki.internal.example/display/ENG/Release+Notes",
			kind: KindConfluence,
		},
		{
			name: "confluence generic wiki path",
			url:  "https://acme.atlassian.net/wiki/ENG/Overview",
			kind: KindConfluence,
		},
		{
			name:       "jira browse",
			url:        "https://acme.atlassian.net/browse/PROJ-101",
			kind:       KindJiraIssue,
			identifier: "PROJ-101",
		},
		{
			name:       "jira browse on self-hosted instance",
			url:        "https://jira.internal.example/browse/ABC-123",
			kind:       KindJiraIssue,
			identifier: "ABC-123",
		},
		{
			name:       "jira browse under jira prefix",
			url:        "https://tools.example.com/jira/browse/OPS-9",
			kind:       KindJiraIssue,
			identifier: "OPS-9",
		},
		{
			name:       "jira project issues path",
			url:        "https://acme.atlassian.net/projects/PROJ/issues/PROJ-55",
			kind:       KindJiraIssue,
			identifier: "PROJ-55",
		},
		{
			name:       "jira board with selected issue",
			url:        "https://acme.atlassian.net/jira/software/projects/PROJ/boards/1?selectedIssue=PROJ-7",
			kind:       KindJiraIssue,
			identifier: "PROJ-7",
		},
		{
			name:       "jira board",
			url:        "https://acme.atlassian.net/jira/software/projects/PROJ/boards/1",
			kind:       KindJiraBoard,
			identifier: "PROJ",
			boardID:    "1",
		},
		{
			name:       "classic board path",
			url:        "https://acme.atlassian.net/jira/software/c/projects/OPS/boards/12",
			kind:       KindJiraBoard,
			identifier: "OPS",
			boardID:    "12",
		},
		{
			name:    "rapid board view",
			url:     "https://jira.internal.example/secure/RapidBoard.jspa?rapidView=42",
			kind:    KindJiraBoard,
			boardID: "42",
		},
		{
			name: "lowercase key is not an issue",
			url:  "https://acme.atlassian.net/browse/proj-101",
			kind: KindUnknown,
		},
		{
			name: "unrelated url",
			url:  "https://example.com/docs/readme",
			kind: KindUnknown,
		},
		{
			name: "atlassian host without recognized path",
			url:  "https://acme.atlassian.net/jira/dashboards/10000",
			kind: KindUnknown,
		},
		{
			name: "empty string",
			url:  "",
			kind: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.url)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.identifier, got.Identifier)
			assert.Equal(t, tt.boardID, got.BoardID)
			if got.Kind == KindUnknown {
				assert.Empty(t, got.Identifier)
				assert.Empty(t, got.BoardID)
			}
		})
	}
}
