package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	claudeURL = "https://api.anthropic.com/v1/messages"
	openAIURL = "https://api.openai.com/v1/chat/completions"
)

func mockOptions(t *testing.T) (Options, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	return Options{
		APIKey:     "test-key",
		HTTPClient: &http.Client{Transport: mt},
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}, mt
}

func TestNewSelectsService(t *testing.T) {
	opts, _ := mockOptions(t)

	c, err := New("claude", opts)
	require.NoError(t, err)
	assert.Equal(t, "claude", c.Name())

	c, err = New(" OpenAI ", opts)
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())

	for _, service := range []string{"local", "", "watson"} {
		c, err = New(service, opts)
		require.NoError(t, err, service)
		assert.Nil(t, c, service)
	}
}

func TestNewRequiresCredential(t *testing.T) {
	for _, service := range []string{"claude", "openai"} {
		_, err := New(service, Options{APIKey: "   "})
		assert.ErrorIs(t, err, ErrMissingCredential, service)
	}
}

func TestClaudeComplete(t *testing.T) {
	opts, mt := mockOptions(t)
	mt.RegisterResponder("POST", claudeURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "test-key", req.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", req.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

		var body claudeRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, claudeDefaultModel, body.Model)
		assert.Equal(t, "classify this", body.Messages[0].Content)

		return httpmock.NewStringResponse(200,
			`{"content":[{"type":"text","text":"{\"sentiment\": \"positive\", \"topics\": [\"quality\"]}"}]}`), nil
	})

	c, err := New("claude", opts)
	require.NoError(t, err)
	out, err := c.Complete(context.Background(), "classify this")
	require.NoError(t, err)
	assert.Equal(t, `{"sentiment": "positive", "topics": ["quality"]}`, out)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestClaudeAuthErrorIsNotRetried(t *testing.T) {
	opts, mt := mockOptions(t)
	mt.RegisterResponder("POST", claudeURL,
		httpmock.NewStringResponder(401, `{"error":{"type":"authentication_error"}}`))

	c, err := New("claude", opts)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "x")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 401, se.StatusCode)
	assert.False(t, se.Temporary())
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestClaudeRetriesServerErrors(t *testing.T) {
	opts, mt := mockOptions(t)
	mt.RegisterResponder("POST", claudeURL, httpmock.ResponderFromMultipleResponses([]*http.Response{
		httpmock.NewStringResponse(529, `overloaded`),
		httpmock.NewStringResponse(429, `rate limited`),
		httpmock.NewStringResponse(200, `{"content":[{"type":"text","text":"ok"}]}`),
	}))

	c, err := New("claude", opts)
	require.NoError(t, err)
	out, err := c.Complete(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, mt.GetTotalCallCount())
}

func TestClaudeGivesUpAfterRetries(t *testing.T) {
	opts, mt := mockOptions(t)
	mt.RegisterResponder("POST", claudeURL, httpmock.NewStringResponder(500, `boom`))

	c, err := New("claude", opts)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, mt.GetTotalCallCount())
}

func TestClaudeMalformedResponse(t *testing.T) {
	opts, mt := mockOptions(t)
	mt.RegisterResponder("POST", claudeURL, httpmock.NewStringResponder(200, `not json`))

	c, err := New("claude", opts)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
	assert.Equal(t, 1, mt.GetTotalCallCount())

	mt.RegisterResponder("POST", claudeURL, httpmock.NewStringResponder(200, `{"content":[]}`))
	_, err = c.Complete(context.Background(), "x")
	assert.EqualError(t, err, "claude: response has no content")
}

func TestOpenAIComplete(t *testing.T) {
	opts, mt := mockOptions(t)
	opts.Model = "gpt-test"
	opts.BaseURL = "https://llm.internal.example/"
	mt.RegisterResponder("POST", "https://llm.internal.example/v1/chat/completions",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))

			var body openAIRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "gpt-test", body.Model)
			assert.Equal(t, "user", body.Messages[len(body.Messages)-1].Role)

			return httpmock.NewStringResponse(200,
				`{"choices":[{"message":{"role":"assistant","content":"{\"sentiment\": \"negative\", \"topics\": [\"shipping\"]}"}}]}`), nil
		})

	c, err := New("openai", opts)
	require.NoError(t, err)
	out, err := c.Complete(context.Background(), "x")
	require.NoError(t, err)
	assert.Contains(t, out, `"negative"`)
}

func TestOpenAINoChoices(t *testing.T) {
	opts, mt := mockOptions(t)
	mt.RegisterResponder("POST", openAIURL, httpmock.NewStringResponder(200, `{"choices":[]}`))

	c, err := New("openai", opts)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "x")
	assert.EqualError(t, err, "openai: response has no choices")
}

func TestCompleteHonoursContext(t *testing.T) {
	opts, mt := mockOptions(t)
	mt.RegisterResponder("POST", openAIURL, httpmock.NewStringResponder(200, `{"choices":[]}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, err := New("openai", opts)
	require.NoError(t, err)
	_, err = c.Complete(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, mt.GetTotalCallCount())
}
