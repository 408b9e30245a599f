// Package underwrite is the typed HTTP client for the credit decision
// service. It speaks the service's JSON wire format directly and has
// no dependency on the server's internal packages, so it can be
// vendored into callers on its own.
package underwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrExplanationUnavailable is returned when the target deployment
// does not carry the explanation capability. It maps the service's
// 501 response; callers should treat it as "not supported here",
// not as a failure.
var ErrExplanationUnavailable = errors.New("explanations are not available in this deployment")

// APIError is a non-2xx response from the service with its decoded
// error message.
type APIError struct {
	// StatusCode is the HTTP status the service answered with.
	StatusCode int

	// Message is the error text from the response body.
	Message string
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("underwrite api: status %d: %s", e.StatusCode, e.Message)
}

// Is maps the capability-absent status onto ErrExplanationUnavailable
// so callers can branch with errors.Is.
func (e *APIError) Is(target error) bool {
	return target == ErrExplanationUnavailable && e.StatusCode == http.StatusNotImplemented
}

// IsClientFault reports whether the service rejected the request
// payload (as opposed to failing internally).
func (e *APIError) IsClientFault() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Record is one applicant's raw input fields as submitted.
type Record map[string]any

// Prediction is the decision object for one scored record.
type Prediction struct {
	Decision             string   `json:"decision"`
	Prediction           int      `json:"prediction"`
	ProbabilityOfDefault *float64 `json:"probability_of_default"`
	ModelName            string   `json:"model_name"`
	ModelVersion         string   `json:"model_version"`
}

// BatchResult wraps the per-record results of a batch request, in
// input order.
type BatchResult struct {
	BatchSize int          `json:"batch_size"`
	Results   []Prediction `json:"results"`
}

// FeatureImpact is one feature's attribution toward the model output.
type FeatureImpact struct {
	Feature string  `json:"feature"`
	Impact  float64 `json:"impact"`
}

// Explanation holds the ranked attribution lists for one prediction.
type Explanation struct {
	RiskDrivers       []FeatureImpact `json:"risk_drivers"`
	ProtectiveFactors []FeatureImpact `json:"protective_factors"`
}

// ExplainedPrediction merges a decision object with its explanation.
type ExplainedPrediction struct {
	Prediction
	Explanations Explanation `json:"explanations"`
}

// Metrics is the service's operational snapshot.
type Metrics struct {
	Requests struct {
		Total        int64 `json:"total"`
		Single       int64 `json:"single"`
		BatchRecords int64 `json:"batch_records"`
	} `json:"requests"`
	LatencyMS struct {
		Average float64 `json:"average"`
		Last    float64 `json:"last"`
	} `json:"latency_ms"`
	ModelDecisions map[string]int64 `json:"model_decisions"`
}

// Health is the liveness payload.
type Health struct {
	Status string `json:"status"`
}

// Client calls the credit decision service. A Client is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, for callers that
// need custom transports, proxies, or instrumentation.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("underwrite: base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Predict scores a single applicant record.
func (c *Client) Predict(ctx context.Context, record Record) (Prediction, error) {
	var out Prediction
	err := c.do(ctx, http.MethodPost, "/predict", record, &out)
	return out, err
}

// PredictBatch scores an ordered batch of records (1 to 500). Results
// come back in input order.
func (c *Client) PredictBatch(ctx context.Context, records []Record) (BatchResult, error) {
	var out BatchResult
	err := c.do(ctx, http.MethodPost, "/predict/batch", records, &out)
	return out, err
}

// Explain scores a single record and attaches ranked feature
// attributions. Deployments without the capability answer with
// ErrExplanationUnavailable.
func (c *Client) Explain(ctx context.Context, record Record) (ExplainedPrediction, error) {
	var out ExplainedPrediction
	err := c.do(ctx, http.MethodPost, "/predict/explain", record, &out)
	return out, err
}

// Metrics fetches the service's operational snapshot.
func (c *Client) Metrics(ctx context.Context) (Metrics, error) {
	var out Metrics
	err := c.do(ctx, http.MethodGet, "/metrics", nil, &out)
	return out, err
}

// Health probes the service's liveness endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}

// do executes one request: encode the body, send, and decode either
// the typed result or the service's error envelope.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("underwrite: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("underwrite: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("underwrite: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("underwrite: decode response: %w", err)
	}
	return nil
}

// decodeAPIError turns a non-2xx response into an *APIError, falling
// back to the raw status text when the body is not the service's
// error envelope.
func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error == "" {
		envelope.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error}
}
