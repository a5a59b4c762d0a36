// Package backend talks to the grading service that stores answers and
// grading results. The view engine never calls it; API handlers and the
// import pipeline fetch inputs through it and hand them to the engine.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/gradeview/internal/rubric"
)

// ErrNotFound is returned when the service has no such answer.
var ErrNotFound = errors.New("not found")

// Client communicates with the grading service HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	Stats *LatencyStats
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Stats: NewLatencyStats(time.Hour),
	}
}

// Answer is a stored student answer.
type Answer struct {
	ID   int    `json:"answer_id"`
	Text string `json:"answer_text"`
}

// GetAnswer fetches the raw text of an answer.
func (c *Client) GetAnswer(ctx context.Context, answerID int) (*Answer, error) {
	var a Answer
	if err := c.getJSON(ctx, "/answers/"+strconv.Itoa(answerID), &a); err != nil {
		return nil, fmt.Errorf("get answer %d: %w", answerID, err)
	}
	return &a, nil
}

// GetScores fetches the flat score list of an answer's grading result. An
// answer that has not been graded yet yields an empty list, not an error.
func (c *Client) GetScores(ctx context.Context, answerID int) ([]rubric.Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/results/"+strconv.Itoa(answerID), nil, "")
	if err != nil {
		return nil, fmt.Errorf("get result %d: %w", answerID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get result %d: %w", answerID, err)
	}
	records, err := rubric.DecodeJSON(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("get result %d: %w", answerID, err)
	}
	return records, nil
}

// SubmitAnswerText stores a typed answer. fields holds the per-problem
// upload fields (problem1_text ...), already normalized for upload.
func (c *Client) SubmitAnswerText(ctx context.Context, examID, studentID int, fields map[string]string) (int, error) {
	form := url.Values{}
	form.Set("exam_id", strconv.Itoa(examID))
	form.Set("student_id", strconv.Itoa(studentID))
	for k, v := range fields {
		form.Set(k, v)
	}

	resp, err := c.do(ctx, http.MethodPost, "/answers/text", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return 0, fmt.Errorf("submit answer: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, http.StatusOK, http.StatusCreated); err != nil {
		return 0, fmt.Errorf("submit answer: %w", err)
	}

	var out struct {
		AnswerID int `json:"answer_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode submit response: %w", err)
	}
	return out.AnswerID, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if err := checkStatus(resp, http.StatusOK); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	elapsed := time.Since(start).Milliseconds()
	if err != nil || resp.StatusCode >= 500 {
		c.Stats.RecordFailure(elapsed)
	} else {
		c.Stats.Record(elapsed)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Message: err.Error()}
	}
	return resp, nil
}

// checkStatus accepts the listed codes. 429 and 5xx come back as
// *RetryableError.
func checkStatus(resp *http.Response, ok ...int) error {
	for _, code := range ok {
		if resp.StatusCode == code {
			return nil
		}
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
}

// RetryableError indicates a transient failure that can be retried.
// StatusCode is 0 for transport errors.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
