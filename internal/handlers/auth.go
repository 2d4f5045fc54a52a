package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"tutor-feedback-client/internal/config"
	"tutor-feedback-client/internal/models"
	"tutor-feedback-client/internal/notice"
	"tutor-feedback-client/internal/session"
)

type AuthHandler struct {
	cfg     *config.Config
	ctrl    *session.Controller
	notices *notice.Board
}

func NewAuthHandler(cfg *config.Config, ctrl *session.Controller, notices *notice.Board) *AuthHandler {
	return &AuthHandler{cfg: cfg, ctrl: ctrl, notices: notices}
}

// Home redirects to the page the session is on.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	redirectToPage(w, r, h.ctrl)
}

// LoginForm renders the login and signup forms. Signed-in sessions are sent
// back to their page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.ctrl.Page() != session.PageAuth {
		redirectToPage(w, r, h.ctrl)
		return
	}
	v, ok := viewOrError(w, h.ctrl, h.notices)
	if !ok {
		return
	}
	data := map[string]interface{}{
		"Title": "Login - Tutor Feedback",
		"Email": r.URL.Query().Get("email"),
	}
	renderTemplate(w, "login.html", v, h.notices, data)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	in := models.LoginInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	err := h.ctrl.Login(r.Context(), in)
	logActionError("login", err)
	if h.ctrl.Page() == session.PageAuth {
		h.cfg.Debugf("login: staying on auth for %s", in.Email)
		http.Redirect(w, r, "/login?email="+url.QueryEscape(in.Email), http.StatusSeeOther)
		return
	}
	redirectToPage(w, r, h.ctrl)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	in := models.SignupInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Name:     strings.TrimSpace(r.FormValue("name")),
	}
	err := h.ctrl.Signup(r.Context(), in)
	logActionError("signup", err)
	if err == nil {
		http.Redirect(w, r, "/login?email="+url.QueryEscape(in.Email), http.StatusSeeOther)
		return
	}
	redirectToPage(w, r, h.ctrl)
}

// Logout clears the stored token and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	logActionError("logout", h.ctrl.Logout(r.Context()))
	redirectToPage(w, r, h.ctrl)
}
