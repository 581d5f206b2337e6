package suggest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/hashicorp/go-retryablehttp"
)

// ErrNoEndpoint is returned when the client has no URL.
var ErrNoEndpoint = errors.New("suggestion endpoint is not configured")

// ClientConfig configures an OpenAI-compatible suggestion client.
type ClientConfig struct {
	URL      string
	APIKey   string
	Model    string
	Timeout  time.Duration
	RetryMax int
}

// Client asks a chat-completions endpoint for configuration advice.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a client with retries. Retry attempts are logged through
// logger.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.RetryMax = max(cfg.RetryMax, 0)
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = logger.With("component", "suggest_client")

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: rc.StandardClient(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You review container service configurations. " +
	"Reply with at most five short suggestions, one per line."

// Analyze implements Analyzer.
func (c *Client) Analyze(ctx context.Context, cfg domain.ServiceConfig) ([]string, error) {
	if c.baseURL == "" {
		return nil, ErrNoEndpoint
	}

	// Secret values never leave the process.
	redacted := cfg.Clone()
	for i := range redacted.Environment {
		if redacted.Environment[i].Secret {
			redacted.Environment[i].Value = "***"
		}
	}
	config, err := json.Marshal(redacted)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(config)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, nil
	}
	return parseLines(out.Choices[0].Message.Content), nil
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)

// parseLines splits a reply into suggestions, dropping list markers.
func parseLines(content string) []string {
	var out []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := listMarker.ReplaceAllString(strings.TrimSpace(scanner.Text()), "")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
