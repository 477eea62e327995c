// Package openrouter implements domain.AIClient against the OpenRouter
// chat-completions API (OpenAI-compatible).
package openrouter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/observability"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/config"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

// Client calls a single configured chat model. The model id is fixed per
// process because the persisted output filename derives from it.
type Client struct {
	cfg     config.Config
	hc      *http.Client
	counter *tokencount.Counter
}

// New constructs a client with the configured per-request timeout and an
// OTEL-instrumented transport.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   cfg.AIRequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		counter: tokencount.NewCounter(),
	}
}

// Model returns the configured chat model id.
func (c *Client) Model() string { return c.cfg.ChatModel }

// getBackoffConfig returns the ExponentialBackOff for the current environment.
func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

// ChatJSON sends one JSON-mode chat completion and returns the message
// content. Rate limits and 5xx responses are retried with exponential
// backoff; 4xx responses are permanent.
func (c *Client) ChatJSON(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.cfg.OpenRouterAPIKey == "" {
		slog.Error("OpenRouter API key missing", slog.String("provider", "openrouter"))
		return "", fmt.Errorf("%w: OPENROUTER_API_KEY missing", domain.ErrInvalidArgument)
	}

	model := c.cfg.ChatModel
	endpoint := c.cfg.OpenRouterBaseURL + "/chat/completions"
	body := map[string]any{
		"model":           model,
		"temperature":     c.cfg.ChatTemperature,
		"max_tokens":      maxTokens,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}
	b, _ := json.Marshal(body)

	var out struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}

	op := func() error {
		start := time.Now()
		// Recreate the request each attempt to avoid reusing consumed bodies
		r, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		r.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouterAPIKey)
		r.Header.Set("Content-Type", "application/json")
		if c.cfg.OpenRouterReferer != "" {
			r.Header.Set("HTTP-Referer", c.cfg.OpenRouterReferer)
		}
		if c.cfg.OpenRouterTitle != "" {
			r.Header.Set("X-Title", c.cfg.OpenRouterTitle)
		}
		resp, err := c.hc.Do(r)
		observability.ObserveAIRequest("openrouter", "chat", err, time.Since(start))
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			slog.Error("failed to read response body", slog.String("provider", "openrouter"), slog.Any("error", err))
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			// Retryable: let backoff handle retries
			slog.Warn("ai provider rate limited",
				slog.String("provider", "openrouter"),
				slog.String("model", model),
				slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return fmt.Errorf("%w: status 429", domain.ErrUpstreamRateLimit)
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Client error: non-retryable
			slog.Warn("ai provider 4xx",
				slog.String("provider", "openrouter"),
				slog.Int("status", resp.StatusCode),
				slog.String("model", model),
				slog.String("endpoint", endpoint),
				slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
				slog.String("body", snippet(bodyBytes)))
			return backoff.Permanent(fmt.Errorf("%w: chat status %d", domain.ErrInvalidArgument, resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// 5xx and others: retryable
			slog.Error("ai provider non-2xx",
				slog.String("provider", "openrouter"),
				slog.Int("status", resp.StatusCode),
				slog.String("model", model),
				slog.String("endpoint", endpoint),
				slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
				slog.String("body", snippet(bodyBytes)))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			slog.Error("ai provider decode error",
				slog.String("provider", "openrouter"),
				slog.String("model", model),
				slog.Any("error", err))
			return err
		}
		return nil
	}

	bo := backoff.WithContext(c.getBackoffConfig(), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		slog.Error("OpenRouter call failed after retries",
			slog.String("provider", "openrouter"),
			slog.String("model", model),
			slog.Any("error", err))
		return "", fmt.Errorf("openrouter chat: %w", err)
	}

	if len(out.Choices) == 0 {
		slog.Error("OpenRouter returned empty choices", slog.String("provider", "openrouter"), slog.String("model", model))
		return "", fmt.Errorf("%w: empty choices", domain.ErrMalformedJSON)
	}
	content := out.Choices[0].Message.Content

	if out.Model != "" && out.Model != model {
		slog.Warn("model substitution detected",
			slog.String("requested_model", model),
			slog.String("actual_model", out.Model),
			slog.String("provider", "openrouter"))
	}

	prompt, completion := out.Usage.PromptTokens, out.Usage.CompletionTokens
	if prompt == 0 && completion == 0 {
		// Provider omitted usage; estimate locally
		usage := c.counter.EstimateUsage(systemPrompt, userPrompt, content, model)
		prompt, completion = usage.PromptTokens, usage.CompletionTokens
	}
	observability.ObserveAITokens("openrouter", prompt, completion)

	slog.Debug("OpenRouter call successful",
		slog.String("provider", "openrouter"),
		slog.String("model", model),
		slog.Int("prompt_tokens", prompt),
		slog.Int("completion_tokens", completion))
	return content, nil
}

// snippet truncates a response body for log output.
func snippet(b []byte) string {
	if len(b) > 512 {
		b = b[:512]
	}
	return string(b)
}
