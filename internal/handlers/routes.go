package handlers

import (
	"net/http"

	"tutor-feedback-client/internal/config"
	"tutor-feedback-client/internal/middleware"
	"tutor-feedback-client/internal/notice"
	"tutor-feedback-client/internal/session"
)

// Routes registers every page and form action of the client.
func Routes(c *config.Config, ctrl *session.Controller, notices *notice.Board) *http.ServeMux {
	authHandler := NewAuthHandler(c, ctrl, notices)
	studentsHandler := NewStudentsHandler(c, ctrl, notices)
	feedbackHandler := NewFeedbackHandler(c, ctrl, notices)

	logged := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.RequestLog(c, next)
	}
	onStudents := func(next http.HandlerFunc) http.HandlerFunc {
		return logged(middleware.RequirePage(ctrl, session.PageStudents, next))
	}
	onFeedback := func(next http.HandlerFunc) http.HandlerFunc {
		return logged(middleware.RequirePage(ctrl, session.PageFeedback, next))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/", logged(authHandler.Home))
	mux.HandleFunc("/login", logged(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.Login(w, r)
		} else {
			authHandler.LoginForm(w, r)
		}
	}))
	mux.HandleFunc("/signup", logged(middleware.RequirePage(ctrl, session.PageAuth, authHandler.Signup)))
	mux.HandleFunc("/logout", logged(middleware.RequireSignedIn(ctrl, authHandler.Logout)))
	c.Debugf("ROUTE REGISTERED: / /login /signup /logout")

	mux.HandleFunc("/students", onStudents(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			studentsHandler.Create(w, r)
		} else {
			studentsHandler.List(w, r)
		}
	}))
	mux.HandleFunc("/students/import", onStudents(studentsHandler.Import))
	// {id} routes are parsed by hand
	mux.HandleFunc("/students/", onStudents(studentsHandler.Member))
	c.Debugf("ROUTE REGISTERED: /students /students/import /students/{id}[/delete|/feedback]")

	mux.HandleFunc("/feedback", onFeedback(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			feedbackHandler.Create(w, r)
		} else {
			feedbackHandler.Show(w, r)
		}
	}))
	mux.HandleFunc("/feedback/back", onFeedback(feedbackHandler.Back))
	c.Debugf("ROUTE REGISTERED: /feedback /feedback/back")

	return mux
}
