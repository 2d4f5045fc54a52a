package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"tutor-feedback-client/internal/middleware"
	"tutor-feedback-client/internal/models"
	"tutor-feedback-client/internal/notice"
	"tutor-feedback-client/internal/session"
)

// redirectToPage sends the browser to whatever page the session is on after
// an action. Outcomes reach the user as notices on that page.
func redirectToPage(w http.ResponseWriter, r *http.Request, ctrl *session.Controller) {
	http.Redirect(w, r, middleware.PathFor(ctrl.Page()), http.StatusSeeOther)
}

// logActionError logs failures that were not already reported through the
// notice board. Validation, busy and gateway failures are user-facing and
// already carry a notice.
func logActionError(action string, err error) {
	switch {
	case err == nil,
		errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrLoginFailed),
		errors.Is(err, session.ErrRequestFailed),
		models.IsValidationError(err) != nil:
		return
	case errors.Is(err, session.ErrInvalidTransition):
		cfg.Debugf("%s: %v", action, err)
	default:
		log.Printf("WARNING: %s: %v", action, err)
	}
}

func formInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	if err != nil {
		return 0
	}
	return n
}

// pathID extracts {id} from prefix + "{id}" + rest.
func pathID(path, prefix, rest string) (int, bool) {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, rest) {
		return 0, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(path, prefix), rest)
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func viewOrError(w http.ResponseWriter, ctrl *session.Controller, notices *notice.Board) (session.View, bool) {
	v, err := ctrl.View()
	if err != nil {
		log.Printf("ERROR: Failed to build view: %v", err)
		notices.Drain()
		http.Error(w, "Failed to build page", http.StatusInternalServerError)
		return v, false
	}
	return v, true
}
