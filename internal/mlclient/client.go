// Package mlclient talks to the external sentiment-scoring service over HTTP.
package mlclient

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
)

var (
	// ErrUnavailable means the service could not be reached at all.
	ErrUnavailable = errors.New("ml service unavailable")
	// ErrTimeout means the service did not answer within the request budget.
	ErrTimeout = errors.New("ml service timeout")
)

// StatusError carries a non-200 answer from the service so handlers can relay
// the upstream detail.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ml service returned status %d", e.StatusCode)
}

const (
	healthTimeout = 5 * time.Second
	batchTimeout  = 5 * time.Minute

	maxErrorBody = 4 << 10
)

// Review is one unit of work sent to the scoring service.
type Review struct {
	Text      string `json:"text"`
	MovieName string `json:"movie_name"`
}

// ScoredReview is one scored unit coming back.
type ScoredReview struct {
	Text       string  `json:"text"`
	MovieName  string  `json:"movie_name"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// Client issues requests against a single ML service base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for baseURL, e.g. "http://ml:8000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// BaseURL reports the configured service address (shown in the health payload).
func (c *Client) BaseURL() string { return c.baseURL }

// Health probes GET /health. A nil error means the service answered 200.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// ProcessBatch sends reviews to POST /process-batch and returns the scored
// results. Large batches are expected; the request budget is five minutes.
func (c *Client) ProcessBatch(ctx context.Context, reviews []Review) ([]ScoredReview, error) {
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	payload, err := json.Marshal(struct {
		Reviews []Review `json:"reviews"`
	}{Reviews: reviews})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-batch", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded struct {
		Results []ScoredReview `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode ml response: %w", err)
	}
	return decoded.Results, nil
}

// classify maps transport failures onto the package sentinels so handlers can
// pick 503 vs 504.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
