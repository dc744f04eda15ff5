package normalize

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonesrussell/docbridge/internal/confluence"
	"github.com/jonesrussell/docbridge/internal/extract"
	"github.com/jonesrussell/docbridge/internal/jira"
	"github.com/jonesrussell/docbridge/internal/models"
)

// FromFile normalizes an uploaded file. The title defaults to the
// filename without its extension.
func FromFile(filename, title string, res extract.Result) Envelope {
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	return Envelope{
		Title:        title,
		Filename:     filename,
		Content:      res.Content,
		DocumentType: models.DocumentTypeFile,
		Metadata: models.JSONMap{
			"extraction_method": res.Method,
			"original_filename": filename,
		},
	}
}

// FromText normalizes pasted text content. The filename carries a
// text- prefix so pasted documents are tellable apart from uploads
// with the same title.
func FromText(title, content string) Envelope {
	return Envelope{
		Title:        title,
		Filename:     fmt.Sprintf("text-%s.txt", SanitizeTitle(title)),
		Content:      content,
		DocumentType: models.DocumentTypeFile,
		Metadata:     models.JSONMap{"extraction_method": "direct_text"},
	}
}

// FromConfluence normalizes a Confluence page.
func FromConfluence(page *confluence.Page, sourceURL string) Envelope {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Confluence Page: %s\n", page.Title)
	if page.Space.Key != "" {
		fmt.Fprintf(&sb, "Space: %s (%s)\n", page.Space.Name, page.Space.Key)
	}
	fmt.Fprintf(&sb, "Version: %d\n\n", page.Version.Number)
	sb.WriteString(confluence.HTMLToText(page.Body.Storage.Value))

	return Envelope{
		Title:        page.Title,
		Filename:     fmt.Sprintf("confluence-%s-%s.txt", page.ID, SanitizeTitle(page.Title)),
		Content:      sb.String(),
		DocumentType: models.DocumentTypeConfluence,
		SourceID:     page.ID,
		SourceURL:    sourceURL,
		Metadata: models.JSONMap{
			"space_key": page.Space.Key,
			"version":   page.Version.Number,
		},
	}
}

// FromJiraIssue normalizes one JIRA issue with its subtasks and comments.
func FromJiraIssue(issue *jira.Issue, comments []jira.Comment, sourceURL string) Envelope {
	var sb strings.Builder
	fmt.Fprintf(&sb, "JIRA Issue: %s\n", issue.Key)
	fmt.Fprintf(&sb, "Summary: %s\n", issue.Fields.Summary)
	fmt.Fprintf(&sb, "Type: %s\n", issue.Fields.IssueType.Name)
	fmt.Fprintf(&sb, "Status: %s\n", issue.Fields.Status.Name)
	if issue.Fields.Priority != nil {
		fmt.Fprintf(&sb, "Priority: %s\n", issue.Fields.Priority.Name)
	}
	if issue.Fields.Assignee != nil {
		fmt.Fprintf(&sb, "Assignee: %s\n", issue.Fields.Assignee.DisplayName)
	}
	if issue.Fields.Reporter != nil {
		fmt.Fprintf(&sb, "Reporter: %s\n", issue.Fields.Reporter.DisplayName)
	}
	if issue.Fields.Project.Key != "" {
		fmt.Fprintf(&sb, "Project: %s (%s)\n", issue.Fields.Project.Name, issue.Fields.Project.Key)
	}
	if len(issue.Fields.Labels) > 0 {
		fmt.Fprintf(&sb, "Labels: %s\n", strings.Join(issue.Fields.Labels, ", "))
	}
	if issue.Fields.Parent != nil {
		fmt.Fprintf(&sb, "Parent: %s\n", issue.Fields.Parent.Key)
	}
	if issue.Fields.Created != "" {
		fmt.Fprintf(&sb, "Created: %s\n", issue.Fields.Created)
	}
	if issue.Fields.Updated != "" {
		fmt.Fprintf(&sb, "Updated: %s\n", issue.Fields.Updated)
	}

	description := jira.CleanDescription(issue.Fields.Description)
	if description != "" {
		sb.WriteString("\nDescription:\n")
		sb.WriteString(description)
		sb.WriteString("\n")
	}

	if len(issue.Fields.Subtasks) > 0 {
		sb.WriteString("\nSubtasks:\n")
		for _, st := range issue.Fields.Subtasks {
			fmt.Fprintf(&sb, "- %s: %s (%s)\n", st.Key, st.Fields.Summary, st.Fields.Status.Name)
		}
	}

	if len(comments) > 0 {
		fmt.Fprintf(&sb, "\nComments (%d):\n", len(comments))
		for _, c := range comments {
			fmt.Fprintf(&sb, "[%s] %s:\n%s\n", c.Created, c.Author.DisplayName,
				jira.CleanDescription(c.Body))
		}
	}

	title := fmt.Sprintf("%s: %s", issue.Key, issue.Fields.Summary)
	return Envelope{
		Title:        title,
		Filename:     fmt.Sprintf("jira-%s-%s.txt", issue.Key, SanitizeTitle(issue.Fields.Summary)),
		Content:      sb.String(),
		DocumentType: models.DocumentTypeJira,
		SourceID:     issue.Key,
		SourceURL:    sourceURL,
		Metadata:     issueMetadata(issue, description),
	}
}

// issueMetadata is the full structured record stored alongside the
// rendered text. Every key is always present; subtasks is an empty
// list rather than null when the issue has none.
func issueMetadata(issue *jira.Issue, description string) models.JSONMap {
	subtasks := make([]map[string]any, 0, len(issue.Fields.Subtasks))
	for _, st := range issue.Fields.Subtasks {
		subtasks = append(subtasks, map[string]any{
			"key":     st.Key,
			"summary": st.Fields.Summary,
			"status":  st.Fields.Status.Name,
		})
	}

	assignee := "Unassigned"
	if issue.Fields.Assignee != nil {
		assignee = issue.Fields.Assignee.DisplayName
	}
	reporter := ""
	if issue.Fields.Reporter != nil {
		reporter = issue.Fields.Reporter.DisplayName
	}
	priority := ""
	if issue.Fields.Priority != nil {
		priority = issue.Fields.Priority.Name
	}

	return models.JSONMap{
		"issue_key":    issue.Key,
		"summary":      issue.Fields.Summary,
		"description":  description,
		"issue_type":   issue.Fields.IssueType.Name,
		"status":       issue.Fields.Status.Name,
		"priority":     priority,
		"assignee":     assignee,
		"reporter":     reporter,
		"project_name": issue.Fields.Project.Name,
		"project_key":  issue.Fields.Project.Key,
		"created":      issue.Fields.Created,
		"updated":      issue.Fields.Updated,
		"subtasks":     subtasks,
	}
}

// BoardIssue pairs a fully fetched issue with its comment thread.
type BoardIssue struct {
	Issue    *jira.Issue
	Comments []jira.Comment
}

// FromJiraBoard renders a project's issues, each with its subtasks and
// comments, as a single board document. Issues appear in fetch order.
func FromJiraBoard(project *jira.Project, boardID string, items []BoardIssue, sourceURL string, importedAt time.Time) Envelope {
	stamp := importedAt.UTC().Format("20060102-150405")

	var sb strings.Builder
	fmt.Fprintf(&sb, "# JIRA Board Import: %s\n", project.Key)
	fmt.Fprintf(&sb, "Total Issues: %d\n", len(items))
	fmt.Fprintf(&sb, "Import Date: %s\n", importedAt.UTC().Format(time.RFC3339))
	sb.WriteString("\n---\n\n")

	for _, item := range items {
		issue := item.Issue
		fmt.Fprintf(&sb, "## %s: %s\n", issue.Key, issue.Fields.Summary)
		fmt.Fprintf(&sb, "**Type:** %s | **Status:** %s\n\n",
			issue.Fields.IssueType.Name, issue.Fields.Status.Name)

		if desc := jira.CleanDescription(issue.Fields.Description); desc != "" {
			sb.WriteString("### Description:\n")
			sb.WriteString(desc)
			sb.WriteString("\n\n")
		}

		if len(issue.Fields.Subtasks) > 0 {
			sb.WriteString("### Subtasks:\n\n")
			for _, st := range issue.Fields.Subtasks {
				fmt.Fprintf(&sb, "- **%s:** %s (%s)\n", st.Key, st.Fields.Summary, st.Fields.Status.Name)
			}
			sb.WriteString("\n")
		}

		if len(item.Comments) > 0 {
			sb.WriteString("### Comments:\n\n")
			for _, c := range item.Comments {
				fmt.Fprintf(&sb, "**%s** (%s):\n%s\n\n",
					c.Author.DisplayName, c.Created, jira.CleanDescription(c.Body))
			}
		}

		sb.WriteString("---\n\n")
	}

	issues := make([]jira.Issue, 0, len(items))
	for _, item := range items {
		issues = append(issues, *item.Issue)
	}
	byType := models.JSONMap{}
	for name, bucket := range jira.BucketIssuesByType(issues) {
		byType[name] = len(bucket)
	}

	metadata := models.JSONMap{
		"board":            true,
		"project_key":      project.Key,
		"project_name":     project.Name,
		"total_issues":     len(items),
		"import_timestamp": importedAt.UTC().Format(time.RFC3339),
		"issues_by_type":   byType,
	}
	if boardID != "" {
		metadata["board_id"] = boardID
	}

	return Envelope{
		Title:        fmt.Sprintf("JIRA Board Import: %s", project.Key),
		Filename:     fmt.Sprintf("jira-board-%s-%s.txt", SanitizeTitle(project.Key), stamp),
		Content:      sb.String(),
		DocumentType: models.DocumentTypeJira,
		SourceID:     project.Key,
		SourceURL:    sourceURL,
		Metadata:     metadata,
	}
}
