package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/docbridge/internal/logger"
	"github.com/jonesrussell/docbridge/internal/models"
)

// BatchFailure records one issue that could not be imported.
type BatchFailure struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// BatchResult summarizes a multi-issue import. Each issue succeeds or
// fails on its own; a batch with any successes is not an error.
// ProcessedCount plus FailedCount always equals TotalFound.
type BatchResult struct {
	Imported       []*models.Document `json:"imported"`
	DocumentIDs    []string           `json:"document_ids"`
	Failed         []BatchFailure     `json:"failed,omitempty"`
	TotalFound     int                `json:"total_found"`
	ProcessedCount int                `json:"processed_count"`
	FailedCount    int                `json:"failed_count"`
	Message        string             `json:"message"`
}

// ImportSearch imports every issue a JQL query matches, one document
// per issue.
func (s *Service) ImportSearch(ctx context.Context, jql string, att Attach) (*BatchResult, error) {
	if !s.jira.Configured() {
		return nil, fmt.Errorf("%w: jira credentials not configured", ErrInvalidSource)
	}
	if jql == "" {
		return nil, fmt.Errorf("%w: jql is required", ErrInvalidSource)
	}

	issues, err := s.jira.SearchIssues(ctx, jql)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	result := &BatchResult{
		DocumentIDs: []string{},
		TotalFound:  len(issues),
	}
	for _, issue := range issues {
		doc, err := s.ImportJiraIssue(ctx, issue.Key, "", att)
		// A partial persist still produced a row; the batch counts it.
		if err != nil && !errors.Is(err, ErrPersistencePartial) {
			s.log.Warn("batch item failed",
				logger.String("issue", issue.Key), logger.Error(err))
			result.Failed = append(result.Failed, BatchFailure{
				Key:    issue.Key,
				Reason: err.Error(),
			})
			continue
		}
		result.Imported = append(result.Imported, doc)
		result.DocumentIDs = append(result.DocumentIDs, doc.ID)
	}

	result.ProcessedCount = len(result.Imported)
	result.FailedCount = len(result.Failed)
	result.Message = fmt.Sprintf("Imported %d out of %d issues", result.ProcessedCount, result.TotalFound)
	return result, nil
}

// ImportProjectIssues imports every issue in a JIRA project as
// individual documents.
func (s *Service) ImportProjectIssues(ctx context.Context, projectKey string, att Attach) (*BatchResult, error) {
	if projectKey == "" {
		return nil, fmt.Errorf("%w: project key is required", ErrInvalidSource)
	}
	return s.ImportSearch(ctx, fmt.Sprintf("project = %s ORDER BY created DESC", projectKey), att)
}
