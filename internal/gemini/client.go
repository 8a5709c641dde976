package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Attachment is one inline binary part of an analysis request, typically a
// rasterized page image.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// ClientConfig holds everything the client needs to reach the generative
// analysis service. All prompt construction happens in callers; the client
// only ships an assembled prompt plus attachments.
type ClientConfig struct {
	APIKey      string
	Model       string
	Endpoint    string
	CallTimeout time.Duration
	Retry       RetryPolicy
}

// Client is the single point of contact with the Gemini generateContent API.
// It wraps one remote call per Invoke with bounded retries and exponential
// backoff, and classifies every failure as transient or permanent.
type Client struct {
	apiKey      string
	model       string
	endpoint    string
	callTimeout time.Duration
	retry       RetryPolicy
	httpClient  *http.Client
}

// NewClient creates a new analysis client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key must not be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini: model must not be empty")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	retry := cfg.Retry
	if retry.MaxRetries <= 0 {
		retry = DefaultRetryPolicy()
	}

	return &Client{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		endpoint:    strings.TrimSuffix(endpoint, "/"),
		callTimeout: timeout,
		retry:       retry,
		httpClient:  &http.Client{},
	}, nil
}

// WithRetryBudget returns a copy of the client with a different retry count.
// Used to give synthesis calls a larger budget than chunk calls.
func (c *Client) WithRetryBudget(maxRetries int) *Client {
	clone := *c
	clone.retry.MaxRetries = maxRetries
	return &clone
}

// --- Wire types for the generateContent REST API ---

type inlinePayload struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type requestPart struct {
	Text       string         `json:"text,omitempty"`
	InlineData *inlinePayload `json:"inline_data,omitempty"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Invoke performs one analysis call: prompt plus zero or more attachments,
// returning the generated text. Transient conditions (429, 5xx, network
// failures, per-attempt timeouts) are retried with exponential backoff up to
// the configured budget; everything else fails immediately. The returned
// error is always an *AnalysisError.
func (c *Client) Invoke(ctx context.Context, prompt string, attachments []Attachment) (string, error) {
	body, err := json.Marshal(buildRequest(prompt, attachments))
	if err != nil {
		return "", permanentError("failed to marshal request", err)
	}

	reqURL := fmt.Sprintf("%s/%s:generateContent?key=%s", c.endpoint, c.model, url.QueryEscape(c.apiKey))

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retry.backoffFor(attempt - 1)
			slog.Warn("Analysis call failed, will retry.",
				"attempt", attempt,
				"maxRetries", c.retry.MaxRetries,
				"backoff", backoff.String(),
				"error", lastErr,
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", permanentError("call canceled during backoff", ctx.Err())
			}
		}

		text, retryable, err := c.attempt(ctx, reqURL, body)
		if err == nil {
			return text, nil
		}
		if !retryable {
			return "", err
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", permanentError("call canceled", ctx.Err())
		}
	}

	return "", transientError(fmt.Sprintf("all %d attempts failed", c.retry.MaxRetries), lastErr)
}

// attempt performs a single HTTP call bounded by the per-call timeout.
func (c *Client) attempt(ctx context.Context, reqURL string, body []byte) (string, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", false, permanentError("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// The caller went away; this is not the service's fault.
			return "", false, permanentError("request canceled", ctx.Err())
		}
		// Network-level failures and attempt timeouts are transient.
		return "", true, transientError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet := readBodySnippet(resp.Body)
		statusErr := fmt.Errorf("service returned status %d: %s", resp.StatusCode, snippet)
		if shouldRetry(resp.StatusCode) {
			return "", true, transientError("transient service failure", statusErr)
		}
		return "", false, permanentError("non-retryable service failure", statusErr)
	}

	text, err := extractText(resp.Body)
	if err != nil {
		return "", false, err
	}
	return text, false, nil
}

func buildRequest(prompt string, attachments []Attachment) *generateRequest {
	parts := make([]requestPart, 0, len(attachments)+1)
	parts = append(parts, requestPart{Text: prompt})
	for _, att := range attachments {
		parts = append(parts, requestPart{
			InlineData: &inlinePayload{
				MIMEType: att.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(att.Data),
			},
		})
	}
	return &generateRequest{Contents: []requestContent{{Parts: parts}}}
}

// extractText parses the response and robustly pulls out the generated text.
// A response without a usable text part is an unparseable shape and therefore
// a permanent failure.
func extractText(body io.Reader) (string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", transientError("failed to read response body", err)
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", permanentError("unparseable response shape", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", permanentError("response contained no candidates", nil)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	content := strings.TrimSpace(text.String())
	content = strings.TrimPrefix(content, "```markdown")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if content == "" {
		return "", permanentError("response contained no text content", nil)
	}
	return content, nil
}

func readBodySnippet(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 512))
	return strings.TrimSpace(string(raw))
}
