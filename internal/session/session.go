package session

import (
	"errors"

	"tutor-feedback-client/internal/models"
)

type Page string

const (
	PageAuth     Page = "auth"
	PageStudents Page = "students"
	PageFeedback Page = "feedback"
)

var (
	ErrBusy              = errors.New("another request is still running")
	ErrNotConfirmed      = errors.New("deletion was not confirmed")
	ErrInvalidTransition = errors.New("action not available on this page")
	ErrNoSelection       = errors.New("no student selected")
	ErrLoginFailed       = errors.New("login failed")
	ErrRequestFailed     = errors.New("request failed")
)

// Session is the client-held state. Only Token is persisted; the rest
// starts over with every process.
type Session struct {
	Token               string
	Page                Page
	SelectedStudentID   *int
	SelectedStudentName string
}

func (s Session) SignedIn() bool { return s.Token != "" }

func (s Session) clearSelection() Session {
	s.SelectedStudentID = nil
	s.SelectedStudentName = ""
	return s
}

// Snapshot holds the backend collections fetched on the latest transition
// or mutation. A collection whose fetch failed is nil with its Loaded flag
// false; older data is never kept around.
type Snapshot struct {
	Grades          []models.Grade
	GradesLoaded    bool
	Students        []models.Student
	StudentsLoaded  bool
	Feedbacks       []models.Feedback
	FeedbacksLoaded bool
}
