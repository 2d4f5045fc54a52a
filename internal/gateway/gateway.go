// Package gateway wraps every outbound call to the tutoring backend. All
// calls go through Client.Do, which attaches the bearer token, encodes the
// body and turns the response into a tagged Result. Failures are reported
// exactly once to the Reporter.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"tutor-feedback-client/internal/config"
)

type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingForm
)

type Request struct {
	Method   string
	Path     string
	Body     interface{} // url.Values for EncodingForm
	Encoding Encoding
}

// Reporter is the user-visible error channel.
type Reporter interface {
	Report(message string)
}

// TokenSource returns the current bearer token, or "" when signed out.
type TokenSource func() string

type Client struct {
	cfg          *config.Config
	baseURL      string
	httpClient   *http.Client
	token        TokenSource
	reporter     Reporter
	getRetries   int
	retryBackoff time.Duration
}

func New(cfg *config.Config, token TokenSource, reporter Reporter) *Client {
	return &Client{
		cfg:          cfg,
		baseURL:      strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		token:        token,
		reporter:     reporter,
		getRetries:   cfg.GetRetries,
		retryBackoff: 300 * time.Millisecond,
	}
}

// Do performs one logical request. Only GET is retried, and only on
// transport errors and 502/503/504. 4xx (401 included) is never retried.
func (c *Client) Do(ctx context.Context, req Request) Result {
	payload, contentType, err := encodeBody(req)
	if err != nil {
		return c.fail(req, &Error{Detail: "could not encode request", Cause: err})
	}

	attempts := 1
	if req.Method == http.MethodGet {
		attempts += c.getRetries
	}

	requestID := uuid.NewString()
	var res Result
	for attempt := 1; attempt <= attempts; attempt++ {
		var retry bool
		res, retry = c.roundTrip(ctx, req, payload, contentType, requestID, attempt)
		if !retry || attempt == attempts {
			break
		}
		c.cfg.Debugf("gateway: retrying %s %s (attempt %d/%d)", req.Method, req.Path, attempt+1, attempts)
		select {
		case <-ctx.Done():
			return c.fail(req, &Error{Detail: "request cancelled", Cause: ctx.Err()})
		case <-time.After(time.Duration(attempt) * c.retryBackoff):
		}
	}

	if res.Err != nil {
		return c.fail(req, res.Err)
	}
	return res
}

// roundTrip sends the request once. The bool reports whether a GET may be
// retried after this outcome.
func (c *Client) roundTrip(ctx context.Context, req Request, payload []byte, contentType, requestID string, attempt int) (Result, bool) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return Result{Outcome: OutcomeErr, Err: &Error{Detail: "invalid request", Cause: err}}, false
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if token := c.currentToken(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.cfg.Debugf("gateway: id=%s %s %s attempt=%d transport error after %s: %v", requestID, req.Method, req.Path, attempt, time.Since(start), err)
		return Result{Outcome: OutcomeErr, Err: &Error{Detail: transportDetail(err), Cause: err}}, ctx.Err() == nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Outcome: OutcomeErr, Status: resp.StatusCode, Err: &Error{Status: resp.StatusCode, Detail: "could not read response", Cause: err}}, false
	}
	c.cfg.Debugf("gateway: id=%s %s %s status=%d dur=%s", requestID, req.Method, req.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
			return Result{Outcome: OutcomeEmpty, Status: resp.StatusCode}, false
		}
		return Result{Outcome: OutcomeOK, Status: resp.StatusCode, Body: raw}, false
	}

	apiErr := &Error{
		Status:       resp.StatusCode,
		Detail:       errorDetail(raw, resp.StatusCode),
		Unauthorized: resp.StatusCode == http.StatusUnauthorized,
	}
	retry := resp.StatusCode == http.StatusBadGateway ||
		resp.StatusCode == http.StatusServiceUnavailable ||
		resp.StatusCode == http.StatusGatewayTimeout
	return Result{Outcome: OutcomeErr, Status: resp.StatusCode, Body: raw, Err: apiErr}, retry
}

func (c *Client) currentToken() string {
	if c.token == nil {
		return ""
	}
	return c.token()
}

// fail logs and reports err, then returns it as an Err result.
func (c *Client) fail(req Request, err *Error) Result {
	log.Printf("ERROR: %s %s: %v", req.Method, req.Path, err)
	if c.reporter != nil {
		c.reporter.Report(err.Message())
	}
	return Result{Outcome: OutcomeErr, Status: err.Status, Err: err}
}

func encodeBody(req Request) ([]byte, string, error) {
	if req.Body == nil {
		return nil, "", nil
	}
	switch req.Encoding {
	case EncodingForm:
		values, ok := req.Body.(url.Values)
		if !ok {
			return nil, "", fmt.Errorf("form body must be url.Values, got %T", req.Body)
		}
		return []byte(values.Encode()), "application/x-www-form-urlencoded", nil
	default:
		data, err := sonic.Marshal(req.Body)
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	}
}

// decodeInto decodes an OK result into T. A body that does not decode turns
// the result into a reported Err.
func decodeInto[T any](c *Client, req Request, res Result) (T, Result) {
	var out T
	if res.Outcome != OutcomeOK {
		return out, res
	}
	if err := sonic.Unmarshal(res.Body, &out); err != nil {
		return out, c.fail(req, &Error{Status: res.Status, Detail: "unexpected response from server", Cause: err})
	}
	return out, res
}
