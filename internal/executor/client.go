// Package executor is the client for the external code execution service
// that compiles and runs submissions against task test data.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Common executor errors. A failed grading call never mutates session
// state, so callers can surface these as retryable.
var (
	// ErrUnavailable covers unreachable service, non-2xx status and
	// malformed response bodies.
	ErrUnavailable = errors.New("execution service unavailable")
	// ErrTimedOut is returned when the bounded request deadline elapsed.
	ErrTimedOut = errors.New("execution service timed out")
)

// CompileAndRunRequest is the wire payload for POST /compile-and-run.
type CompileAndRunRequest struct {
	Code                 string   `json:"code"`
	TestData             []string `json:"testData,omitempty"`
	ExpectedOutput       []string `json:"expectedOutput"`
	HiddenTestData       []string `json:"hiddenTestData,omitempty"`
	HiddenExpectedOutput []string `json:"hiddenExpectedOutput"`
}

// ExecutionResult is one compile-and-run outcome for a single test case.
type ExecutionResult struct {
	Code                     int    `json:"code"`
	Stdout                   string `json:"stdout"`
	Stderr                   string `json:"stderr"`
	OutputMatchesExpectation *bool  `json:"outputMatchesExpectation,omitempty"`
	Args                     string `json:"args,omitempty"`
}

// Passed reports whether the case matched expectations and exited cleanly.
func (r ExecutionResult) Passed() bool {
	return r.OutputMatchesExpectation != nil && *r.OutputMatchesExpectation && r.Code == 0
}

// CompileAndRunResponse is the executor's reply. Results maps 1:1 to the
// visible test data, HiddenResults to the hidden test data.
type CompileAndRunResponse struct {
	Results       []ExecutionResult `json:"results"`
	HiddenResults []ExecutionResult `json:"hiddenResults"`
}

// AllPassed reports whether every visible and hidden case passed. One
// failing hidden case fails the whole submission even though the student
// only ever sees the visible results.
func (r *CompileAndRunResponse) AllPassed() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}
	for _, res := range r.HiddenResults {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// Client talks to the execution service with a bounded timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates an executor client. The timeout bounds the whole
// compile-and-run round trip; the legacy behavior of waiting forever is
// deliberately not reproduced.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "executor_client").Logger(),
	}
}

// CompileAndRun submits code plus test data and returns the per-case
// results. The error is ErrTimedOut for deadline overruns and
// ErrUnavailable for every other upstream failure.
func (c *Client) CompileAndRun(ctx context.Context, req *CompileAndRunRequest) (*CompileAndRunResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/compile-and-run", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			c.log.Warn().Err(err).Msg("Compile-and-run timed out")
			return nil, ErrTimedOut
		}
		c.log.Warn().Err(err).Msg("Compile-and-run request failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Msg("Compile-and-run returned non-2xx")
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out struct {
		Results       *[]ExecutionResult `json:"results"`
		HiddenResults *[]ExecutionResult `json:"hiddenResults"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Warn().Err(err).Msg("Compile-and-run response undecodable")
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	// A body missing either result list is treated like an unreachable
	// service: the caller gets no score change and can retry safely.
	if out.Results == nil || out.HiddenResults == nil {
		c.log.Warn().Msg("Compile-and-run response missing result lists")
		return nil, fmt.Errorf("%w: malformed response body", ErrUnavailable)
	}

	return &CompileAndRunResponse{
		Results:       *out.Results,
		HiddenResults: *out.HiddenResults,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
