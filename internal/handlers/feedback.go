package handlers

import (
	"net/http"
	"strings"

	"tutor-feedback-client/internal/config"
	"tutor-feedback-client/internal/models"
	"tutor-feedback-client/internal/notice"
	"tutor-feedback-client/internal/session"
)

type FeedbackHandler struct {
	cfg     *config.Config
	ctrl    *session.Controller
	notices *notice.Board
}

func NewFeedbackHandler(cfg *config.Config, ctrl *session.Controller, notices *notice.Board) *FeedbackHandler {
	return &FeedbackHandler{cfg: cfg, ctrl: ctrl, notices: notices}
}

// Show renders the selected student's feedback. A reload refetches.
func (h *FeedbackHandler) Show(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	logActionError("refresh feedback", h.ctrl.Refresh(r.Context()))
	if h.ctrl.Page() != session.PageFeedback {
		redirectToPage(w, r, h.ctrl)
		return
	}

	v, ok := viewOrError(w, h.ctrl, h.notices)
	if !ok {
		return
	}
	renderTemplate(w, "feedback.html", v, h.notices, map[string]interface{}{"Title": v.Feedback.Title + " - Tutor Feedback"})
}

// Create submits the class form. The backend generates the AI comments
// before answering, so this blocks for as long as the request timeout.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	in := models.FeedbackInput{
		ClassInfo: models.ClassDetails{
			Subject:      strings.TrimSpace(r.FormValue("subject")),
			ClassDate:    strings.TrimSpace(r.FormValue("class_date")),
			ProgressText: strings.TrimSpace(r.FormValue("progress_text")),
			ClassMemo:    strings.TrimSpace(r.FormValue("class_memo")),
		},
		FeedbackInfo: models.FeedbackScores{
			Attitude:      formInt(r, "attitude_score"),
			Understanding: formInt(r, "understanding_score"),
			Homework:      formInt(r, "homework_score"),
			QA:            formInt(r, "qa_score"),
		},
	}
	logActionError("create feedback", h.ctrl.CreateFeedback(r.Context(), in))
	redirectToPage(w, r, h.ctrl)
}

func (h *FeedbackHandler) Back(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	logActionError("back to students", h.ctrl.Back(r.Context()))
	redirectToPage(w, r, h.ctrl)
}
