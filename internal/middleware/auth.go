package middleware

import (
	"net/http"
	"time"

	"tutor-feedback-client/internal/config"
	"tutor-feedback-client/internal/session"
)

// PageSource reports which page the session is currently on.
type PageSource interface {
	Page() session.Page
}

// PathFor maps a session page to the route that renders it.
func PathFor(p session.Page) string {
	switch p {
	case session.PageStudents:
		return "/students"
	case session.PageFeedback:
		return "/feedback"
	default:
		return "/login"
	}
}

// RequirePage lets the request through only while the session is on want.
// Otherwise the browser is sent to the page the session is actually on, so a
// stale tab or bookmark can never show a page the session has left.
func RequirePage(src PageSource, want session.Page, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current := src.Page()
		if current != want {
			http.Redirect(w, r, PathFor(current), http.StatusFound)
			return
		}
		next(w, r)
	}
}

// RequireSignedIn accepts the students and feedback pages.
func RequireSignedIn(src PageSource, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if src.Page() == session.PageAuth {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLog writes one debug line per request.
func RequestLog(cfg *config.Config, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		cfg.Debugf("REQUEST: %s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	}
}
