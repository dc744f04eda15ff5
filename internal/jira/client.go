// Package jira is a minimal JIRA Cloud REST client covering the issue,
// search, project, and transition endpoints the importer needs.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonesrussell/docbridge/internal/config"
	"github.com/jonesrussell/docbridge/internal/httpx"
	"github.com/jonesrussell/docbridge/internal/logger"
)

type Client struct {
	baseURL    string
	email      string
	apiToken   string
	maxResults int
	httpClient *http.Client
	log        logger.Logger
}

func NewClient(cfg config.JiraConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		maxResults: cfg.MaxResults,
		httpClient: httpx.NewClient(&httpx.ClientConfig{Timeout: cfg.RequestTimeout}),
		log:        log,
	}
}

// Configured reports whether the client has credentials and a site URL.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.email != "" && c.apiToken != ""
}

// StatusCategory is JIRA's coarse workflow bucket (new / indeterminate / done).
type StatusCategory struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type Status struct {
	Name           string         `json:"name"`
	StatusCategory StatusCategory `json:"statusCategory"`
}

type IssueType struct {
	Name    string `json:"name"`
	Subtask bool   `json:"subtask"`
}

type User struct {
	DisplayName string `json:"displayName"`
}

type Priority struct {
	Name string `json:"name"`
}

type IssueRef struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  Status `json:"status"`
	} `json:"fields"`
}

type IssueFields struct {
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	IssueType   IssueType  `json:"issuetype"`
	Assignee    *User      `json:"assignee"`
	Reporter    *User      `json:"reporter"`
	Priority    *Priority  `json:"priority"`
	Labels      []string   `json:"labels"`
	Created     string     `json:"created"`
	Updated     string     `json:"updated"`
	Parent      *IssueRef  `json:"parent"`
	Subtasks    []IssueRef `json:"subtasks"`
	Project     Project    `json:"project"`
}

type Issue struct {
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

type Comment struct {
	Author  User   `json:"author"`
	Body    string `json:"body"`
	Created string `json:"created"`
}

type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   Status `json:"to"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jira request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("jira %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetIssue fetches a single issue with the fields the importer renders.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	var issue Issue
	q := url.Values{"fields": {"summary,description,status,issuetype,assignee,reporter,priority,labels,created,updated,parent,subtasks,project"}}
	if err := c.get(ctx, "/rest/api/2/issue/"+key, q, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// SearchIssues runs a JQL query. Results are capped at the configured
// max_results; board imports are bounded on purpose.
func (c *Client) SearchIssues(ctx context.Context, jql string) ([]Issue, error) {
	var result struct {
		Issues []Issue `json:"issues"`
		Total  int     `json:"total"`
	}
	q := url.Values{
		"jql":        {jql},
		"maxResults": {strconv.Itoa(c.maxResults)},
		"fields":     {"summary,description,status,issuetype,assignee,reporter,priority,labels,created,updated,parent,subtasks,project"},
	}
	if err := c.get(ctx, "/rest/api/2/search", q, &result); err != nil {
		return nil, err
	}
	if result.Total > len(result.Issues) {
		c.log.Warn("jira search truncated",
			logger.Int("total", result.Total),
			logger.Int("returned", len(result.Issues)))
	}
	return result.Issues, nil
}

// GetComments returns all comments on an issue, oldest first.
func (c *Client) GetComments(ctx context.Context, key string) ([]Comment, error) {
	var result struct {
		Comments []Comment `json:"comments"`
	}
	if err := c.get(ctx, "/rest/api/2/issue/"+key+"/comment", nil, &result); err != nil {
		return nil, err
	}
	return result.Comments, nil
}

func (c *Client) GetProject(ctx context.Context, key string) (*Project, error) {
	var p Project
	if err := c.get(ctx, "/rest/api/2/project/"+key, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetTransitions(ctx context.Context, key string) ([]Transition, error) {
	var result struct {
		Transitions []Transition `json:"transitions"`
	}
	if err := c.get(ctx, "/rest/api/2/issue/"+key+"/transitions", nil, &result); err != nil {
		return nil, err
	}
	return result.Transitions, nil
}

// DoTransition applies a workflow transition by id.
func (c *Client) DoTransition(ctx context.Context, key, transitionID string) error {
	payload, _ := json.Marshal(map[string]any{
		"transition": map[string]string{"id": transitionID},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/rest/api/2/issue/"+key+"/transitions", strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jira transition %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("jira transition %s returned %d: %s", key, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
