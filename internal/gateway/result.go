package gateway

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

type Outcome int

const (
	// OutcomeOK is a 2xx response with a body.
	OutcomeOK Outcome = iota
	// OutcomeEmpty is a 204, or any 2xx without a body.
	OutcomeEmpty
	// OutcomeErr covers transport, HTTP and decoding failures.
	OutcomeErr
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeErr:
		return "error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Result struct {
	Outcome Outcome
	Status  int
	Body    []byte
	Err     *Error
}

// Succeeded reports whether the operation happened on the server, with or
// without content.
func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeOK || r.Outcome == OutcomeEmpty
}

func (r Result) Failed() bool { return r.Outcome == OutcomeErr }

// Error is a normalized gateway failure. Status is 0 for transport errors.
type Error struct {
	Status       int
	Detail       string
	Unauthorized bool
	Cause        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Status != 0 {
		fmt.Fprintf(&b, "status %d: ", e.Status)
	}
	b.WriteString(e.Detail)
	if e.Cause != nil {
		fmt.Fprintf(&b, " (%v)", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Message is the text shown to the user.
func (e *Error) Message() string {
	if e.Unauthorized {
		return "authentication failed: " + e.Detail
	}
	return "error: " + e.Detail
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized
}

const fallbackDetail = "something went wrong"

// errorDetail extracts a human readable reason from an error body. The
// backend answers with {"detail": "..."} or, for validation failures, with
// {"detail": [{"msg": "..."}]}. Anything else falls back to the status text.
func errorDetail(body []byte, status int) string {
	var payload map[string]interface{}
	if len(body) > 0 && sonic.Unmarshal(body, &payload) == nil {
		for _, key := range []string{"detail", "error", "message"} {
			if msg := detailText(payload[key]); msg != "" {
				return msg
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fallbackDetail
}

func detailText(v interface{}) string {
	switch d := v.(type) {
	case string:
		return strings.TrimSpace(d)
	case []interface{}:
		var msgs []string
		for _, item := range d {
			switch it := item.(type) {
			case map[string]interface{}:
				if msg, ok := it["msg"].(string); ok && msg != "" {
					msgs = append(msgs, msg)
				}
			case string:
				msgs = append(msgs, it)
			}
		}
		return strings.Join(msgs, "; ")
	case map[string]interface{}:
		if msg, ok := d["msg"].(string); ok {
			return msg
		}
	}
	return ""
}

func transportDetail(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "the server did not answer in time"
	}
	return "could not reach the server"
}
