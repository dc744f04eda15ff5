// Package narration asks an external service for a spoken-style summary
// of a meeting's documents.
package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonesrussell/docbridge/internal/config"
	"github.com/jonesrussell/docbridge/internal/httpx"
	"github.com/jonesrussell/docbridge/internal/logger"
)

type Client struct {
	endpoint   string
	httpClient *http.Client
	log        logger.Logger
}

// NewClient returns a disabled client when narration is off; Narrate
// then reports that narration is unavailable.
func NewClient(cfg config.NarrationConfig, log logger.Logger) *Client {
	if !cfg.Enabled {
		return &Client{log: log}
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: httpx.NewClient(&httpx.ClientConfig{}),
		log:        log,
	}
}

func (c *Client) Enabled() bool { return c.endpoint != "" }

type request struct {
	Title     string   `json:"title"`
	Documents []string `json:"documents"`
}

type response struct {
	Narration string `json:"narration"`
}

// Narrate sends the meeting title and document texts to the narration
// service and returns the generated summary.
func (c *Client) Narrate(ctx context.Context, title string, documents []string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("narration is not enabled")
	}

	payload, err := json.Marshal(request{Title: title, Documents: documents})
	if err != nil {
		return "", fmt.Errorf("marshal narration request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/narrate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build narration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("narration request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("narration service returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode narration response: %w", err)
	}
	return out.Narration, nil
}
