package backend

import (
	"context"
	"errors"
	"strings"
)

const (
	claudeDefaultBaseURL = "https://api.anthropic.com"
	claudeDefaultModel   = "claude-3-haiku-20240307"
	claudeAPIVersion     = "2023-06-01"
	claudeMaxTokens      = 1000
)

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Claude calls the Anthropic Messages API.
type Claude struct {
	http  *httpBackend
	model string
}

func newClaude(opts Options) *Claude {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = claudeDefaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = claudeDefaultModel
	}
	headers := map[string]string{
		"x-api-key":         opts.APIKey,
		"anthropic-version": claudeAPIVersion,
	}
	return &Claude{
		http:  newHTTPBackend("claude", base+"/v1/messages", headers, opts),
		model: model,
	}
}

func (c *Claude) Name() string { return "claude" }

// Complete sends prompt as a single user message and returns the first
// content block's text.
func (c *Claude) Complete(ctx context.Context, prompt string) (string, error) {
	req := claudeRequest{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	}
	var resp claudeResponse
	if err := c.http.postJSON(ctx, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", errors.New("claude: response has no content")
	}
	return resp.Content[0].Text, nil
}
