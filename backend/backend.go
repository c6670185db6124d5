// Package backend implements the remote text classifiers used for review
// sentiment and topic analysis.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"review-importer/config"
	"review-importer/utils"
)

// ErrMissingCredential is returned by New when a remote service is selected
// without an API key.
var ErrMissingCredential = errors.New("AI API key is not configured")

// Client sends a prompt to a remote model and returns its text reply.
type Client interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// StatusError is a non-2xx reply from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed when retried.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Options configures a remote client.
type Options struct {
	APIKey          string
	Model           string
	BaseURL         string
	HTTPClient      *http.Client
	RateLimitPerSec int
	MaxRetries      int
	RetryDelay      time.Duration
	Logger          *utils.Logger
}

// OptionsFromConfig maps application configuration onto client options.
func OptionsFromConfig(cfg *config.Config, logger *utils.Logger) Options {
	return Options{
		APIKey:          cfg.AIAPIKey,
		Model:           cfg.AIModelName,
		BaseURL:         cfg.AIBaseURL,
		RateLimitPerSec: cfg.AIRateLimitPerSec,
		MaxRetries:      cfg.MaxRetries,
		Logger:          logger,
	}
}

// New returns the client for the selected service. The local service, and
// any unknown selector, yield a nil client meaning local-only analysis.
func New(service string, opts Options) (Client, error) {
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	service = strings.ToLower(strings.TrimSpace(service))

	switch service {
	case config.ServiceClaude, config.ServiceOpenAI:
	case config.ServiceLocal, "":
		return nil, nil
	default:
		opts.Logger.Warn("[backend] Unknown AI service %q, using local analysis", service)
		return nil, nil
	}

	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%s: %w", service, ErrMissingCredential)
	}

	if service == config.ServiceClaude {
		return newClaude(opts), nil
	}
	return newOpenAI(opts), nil
}

// httpBackend holds the transport shared by the provider clients.
type httpBackend struct {
	name    string
	url     string
	headers map[string]string
	client  *http.Client
	limiter *rate.Limiter
	retry   *utils.RetryConfig
	logger  *utils.Logger
}

func newHTTPBackend(name, url string, headers map[string]string, opts Options) *httpBackend {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	limit := rate.Inf
	if opts.RateLimitPerSec > 0 {
		limit = rate.Limit(opts.RateLimitPerSec)
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &httpBackend{
		name:    name,
		url:     url,
		headers: headers,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries + 1,
			BaseDelay:   delay,
			Logger:      opts.Logger,
		},
		logger: opts.Logger,
	}
}

// postJSON sends body and decodes the reply into out, retrying rate limits,
// server errors and transport failures.
func (b *httpBackend) postJSON(ctx context.Context, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", b.name, err)
	}

	return b.retry.Do(ctx, b.name+" request", func() error {
		if err := b.limiter.Wait(ctx); err != nil {
			return utils.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
		if err != nil {
			return utils.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range b.headers {
			req.Header.Set(k, v)
		}

		resp, err := b.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return utils.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			se := &StatusError{Provider: b.name, StatusCode: resp.StatusCode, Body: truncateBody(data)}
			if se.Temporary() {
				return se
			}
			return utils.Permanent(se)
		}

		if err := json.Unmarshal(data, out); err != nil {
			return utils.Permanent(fmt.Errorf("%s: decode response: %w", b.name, err))
		}
		return nil
	})
}

func truncateBody(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}
