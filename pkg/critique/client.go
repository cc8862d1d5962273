package critique

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
)

// Config holds configuration for the collaborator client.
type Config struct {
	// APIKey is sent as x-goog-api-key. Required.
	APIKey string

	// BaseURL is the API root. Defaults to DefaultBaseURL.
	BaseURL string

	// Model is the generation model. Defaults to DefaultModel.
	Model string

	// MaxRetries is the maximum number of retry attempts for retryable
	// errors. Defaults to 2 if zero; negative disables retries.
	MaxRetries int

	// BaseRetryDelay is the initial backoff delay. Defaults to 500ms.
	BaseRetryDelay time.Duration

	// MaxRetryDelay caps the exponential backoff. Defaults to 4s.
	MaxRetryDelay time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// Defaults to a client with a 30s timeout.
	HTTPClient *http.Client

	// Engine labels toast doneness in the critique prompt. Defaults to the
	// canonical scoring engine.
	Engine *scoring.Engine
}

// Client is a Provider backed by the generateContent REST endpoint.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a collaborator client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseRetryDelay == 0 {
		cfg.BaseRetryDelay = 500 * time.Millisecond
	}
	if cfg.MaxRetryDelay == 0 {
		cfg.MaxRetryDelay = 4 * time.Second
	}
	if cfg.Engine == nil {
		cfg.Engine = scoring.DefaultEngine()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{config: cfg, http: httpClient}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.config.Model }

// SuggestToppings asks for three toppings matching preference.
func (c *Client) SuggestToppings(ctx context.Context, preference string) ([]string, error) {
	text, err := c.generate(ctx, ToppingPrompt(preference), toppingSchema)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal([]byte(text), &names); err != nil {
		return nil, malformed("toppings", "decode: %v", err)
	}
	return NormalizeToppings(names)
}

// Critique asks for a score and one-line comment on stats.
func (c *Client) Critique(ctx context.Context, stats scoring.GameStats) (Feedback, error) {
	prompt := CritiquePrompt(stats, c.config.Engine.Doneness(stats.ToastLevel))
	text, err := c.generate(ctx, prompt, critiqueSchema)
	if err != nil {
		return Feedback{}, err
	}
	var raw struct {
		Score   *float64 `json:"score"`
		Comment string   `json:"comment"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Feedback{}, malformed("critique", "decode: %v", err)
	}
	if raw.Score == nil {
		return Feedback{}, malformed("critique", "missing score")
	}
	return normalizeFeedback(*raw.Score, raw.Comment)
}

// --- wire types ---

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// generate sends prompt with retry and returns the first candidate's text.
func (c *Client) generate(ctx context.Context, prompt string, s schema) (string, error) {
	if c.config.APIKey == "" {
		return "", ErrNoAPIKey
	}
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   &s,
		},
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay(attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := c.doRequest(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.IsRetryable() {
			continue
		}
		return "", err
	}
	return "", fmt.Errorf("critique: max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, body generateRequest) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(c.config.Model))

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("critique: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("critique: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("critique: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("critique: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", malformed("generate", "invalid JSON: %v", err)
	}
	for _, cand := range gr.Candidates {
		var sb strings.Builder
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}
	return "", malformed("generate", "no text in response")
}

// retryDelay calculates the backoff delay for a given attempt number.
func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.config.BaseRetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > c.config.MaxRetryDelay {
		delay = c.config.MaxRetryDelay
	}
	return delay
}
