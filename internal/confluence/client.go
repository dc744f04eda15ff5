// Package confluence fetches pages from the Confluence Cloud REST API
// and converts their storage-format body to plain text.
package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonesrussell/docbridge/internal/config"
	"github.com/jonesrussell/docbridge/internal/httpx"
	"github.com/jonesrussell/docbridge/internal/logger"
)

type Client struct {
	baseURL    string
	email      string
	apiToken   string
	httpClient *http.Client
	log        logger.Logger
}

func NewClient(cfg config.ConfluenceConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		httpClient: httpx.NewClient(&httpx.ClientConfig{Timeout: cfg.RequestTimeout}),
		log:        log,
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != "" && c.email != "" && c.apiToken != ""
}

// Page is a Confluence page with its storage-format body.
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Version struct {
		Number int `json:"number"`
	} `json:"version"`
	Space struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"space"`
	Links struct {
		WebUI string `json:"webui"`
	} `json:"_links"`
}

// GetPage fetches a page by id with body, version, and space expanded.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	q := url.Values{"expand": {"body.storage,version,space"}}
	u := fmt.Sprintf("%s/wiki/rest/api/content/%s?%s", c.baseURL, pageID, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("confluence request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("confluence page %s returned %d: %s",
			pageID, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode page %s: %w", pageID, err)
	}
	return &page, nil
}
