package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/telemetry"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultRetryBackoff = 500 * time.Millisecond

	analyzePath      = "/api/analyze"
	healthPath       = "/health"
	maxResponseBytes = 1 << 20
	maxErrorBody     = 2 << 10
)

// Config configures the scoring engine client.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	RetryBackoff time.Duration
	HTTPClient   *http.Client
}

// Client calls the external scoring engine over HTTP.
type Client struct {
	baseURL    string
	timeout    time.Duration
	backoff    time.Duration
	httpClient *http.Client
}

// NewClient constructs a scoring client. Zero durations fall back to the defaults.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("SCORING_BASE_URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    base,
		timeout:    timeout,
		backoff:    backoff,
		httpClient: httpClient,
	}, nil
}

// Score sends the resume text and job description to the engine. Timeouts,
// transport failures and 5xx responses are retried once after a fixed backoff.
func (c *Client) Score(ctx context.Context, resumeText, jobDescription string) (Result, error) {
	payload, err := json.Marshal(analyzeRequest{ResumeText: resumeText, JobDescription: jobDescription})
	if err != nil {
		return Result{}, err
	}

	result, err := c.scoreOnce(ctx, payload)
	if err == nil {
		return result, nil
	}
	if !shouldRetry(err) {
		metrics.IncScoringFailure()
		return Result{}, err
	}

	metrics.IncScoringRetry()
	telemetry.Warn("scoring.retry", map[string]any{
		"attempt":    1,
		"request_id": telemetry.RequestIDFromContext(ctx),
		"backoff_ms": c.backoff.Milliseconds(),
		"error":      err,
	})
	select {
	case <-time.After(c.backoff):
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	result, err = c.scoreOnce(ctx, payload)
	if err != nil {
		metrics.IncScoringFailure()
		return Result{}, err
	}
	return result, nil
}

// Health checks the engine's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(ctx, attemptCtx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &EngineError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return nil
}

func (c *Client) scoreOnce(ctx context.Context, payload []byte) (Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+analyzePath, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID := telemetry.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}

	metrics.IncScoringRequest()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, transportError(ctx, attemptCtx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, transportError(ctx, attemptCtx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &EngineError{StatusCode: resp.StatusCode, Body: truncate(body, maxErrorBody)}
	}

	if err := validateResponse(body); err != nil {
		return Result{}, err
	}
	var parsed Result
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, &MalformedResponseError{Reason: "decode response", Err: err}
	}
	return Normalize(parsed), nil
}

// transportError classifies a failed round trip. Cancellation by the caller is
// returned as the context error so it is never mistaken for an engine fault.
func transportError(ctx, attemptCtx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Err: err}
	}
	return &EngineError{Err: err}
}

func shouldRetry(err error) bool {
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Retryable()
	}
	return false
}

func truncate(body []byte, limit int) string {
	if len(body) > limit {
		body = body[:limit]
	}
	return strings.TrimSpace(string(body))
}
