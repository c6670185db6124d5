package backend

import (
	"context"
	"errors"
	"strings"
)

const (
	openAIDefaultBaseURL = "https://api.openai.com"
	openAIDefaultModel   = "gpt-4o-mini"
)

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// OpenAI calls the Chat Completions API.
type OpenAI struct {
	http  *httpBackend
	model string
}

func newOpenAI(opts Options) *OpenAI {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = openAIDefaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = openAIDefaultModel
	}
	headers := map[string]string{"Authorization": "Bearer " + opts.APIKey}
	return &OpenAI{
		http:  newHTTPBackend("openai", base+"/v1/chat/completions", headers, opts),
		model: model,
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	req := openAIRequest{
		Model: o.model,
		Messages: []openAIMessage{
			{Role: "system", Content: "You classify customer reviews and answer with JSON only."},
			{Role: "user", Content: prompt},
		},
	}
	var resp openAIResponse
	if err := o.http.postJSON(ctx, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
