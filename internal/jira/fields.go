package jira

import (
	"context"
	"strings"
)

// Field is one entry from the site's field catalog.
type Field struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FindEpicLinkField discovers the site's epic link custom field by name.
// Custom field ids differ per site, so the catalog has to be consulted
// at runtime. Returns "" when the site exposes no epic field.
func (c *Client) FindEpicLinkField(ctx context.Context) (string, error) {
	var fields []Field
	if err := c.get(ctx, "/rest/api/3/field", nil, &fields); err != nil {
		return "", err
	}
	for _, f := range fields {
		name := strings.ToLower(f.Name)
		if strings.Contains(name, "epic") && strings.Contains(name, "link") {
			return f.ID, nil
		}
		if name == "epic name" || name == "epic-name" {
			return f.ID, nil
		}
	}
	return "", nil
}

// Bucket names for BucketIssuesByType. Every bucket is always present
// in the result, even when empty.
var issueTypeBuckets = []string{"epics", "stories", "tasks", "subtasks", "bugs", "other"}

// BucketIssuesByType groups issues into the fixed set of type buckets.
func BucketIssuesByType(issues []Issue) map[string][]Issue {
	buckets := make(map[string][]Issue, len(issueTypeBuckets))
	for _, name := range issueTypeBuckets {
		buckets[name] = []Issue{}
	}
	for _, issue := range issues {
		switch strings.ToLower(issue.Fields.IssueType.Name) {
		case "epic":
			buckets["epics"] = append(buckets["epics"], issue)
		case "story":
			buckets["stories"] = append(buckets["stories"], issue)
		case "task":
			buckets["tasks"] = append(buckets["tasks"], issue)
		case "sub-task", "subtask":
			buckets["subtasks"] = append(buckets["subtasks"], issue)
		case "bug":
			buckets["bugs"] = append(buckets["bugs"], issue)
		default:
			buckets["other"] = append(buckets["other"], issue)
		}
	}
	return buckets
}
