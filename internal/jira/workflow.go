package jira

import (
	"context"
	"fmt"
	"strings"
)

// FindDoneTransition picks the transition that moves an issue to done.
// Workflow names vary per site, so it matches the configured keywords
// against the transition name first, then falls back to the target
// status category. Returns nil when no candidate exists.
func FindDoneTransition(transitions []Transition, keywords []string) *Transition {
	for i := range transitions {
		name := strings.ToLower(transitions[i].Name)
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return &transitions[i]
			}
		}
	}
	for i := range transitions {
		if transitions[i].To.StatusCategory.Key == "done" {
			return &transitions[i]
		}
	}
	return nil
}

// MarkDone transitions an issue to its done state if a matching
// transition is available.
func (c *Client) MarkDone(ctx context.Context, key string, keywords []string) (string, error) {
	transitions, err := c.GetTransitions(ctx, key)
	if err != nil {
		return "", err
	}
	target := FindDoneTransition(transitions, keywords)
	if target == nil {
		return "", fmt.Errorf("no done transition available for %s", key)
	}
	if err := c.DoTransition(ctx, key, target.ID); err != nil {
		return "", err
	}
	return target.Name, nil
}
