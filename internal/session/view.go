package session

import (
	"fmt"
	"time"

	"tutor-feedback-client/internal/models"
	"tutor-feedback-client/internal/util"
)

type GradeOption struct {
	ID       int
	Name     string
	Selected bool
}

type StudentCard struct {
	ID        int
	Name      string
	GradeName string
	Grades    []GradeOption
}

type StudentsView struct {
	Loaded    bool
	NewGrades []GradeOption
	Cards     []StudentCard
}

type FeedbackView struct {
	StudentID     int
	StudentName   string
	Title         string
	Loaded        bool
	Entries       []FeedbackEntry
	DefaultDate   string
	DefaultScores models.FeedbackScores
}

// View is everything a page needs to render. It is derived from Session and
// Snapshot only.
type View struct {
	Page     Page
	SignedIn bool
	Identity Identity
	Expired  bool
	Students StudentsView
	Feedback FeedbackView
}

// BuildView maps state to a view-model. Rendering the feedback page without
// a selected student is a precondition failure and returns ErrNoSelection.
func BuildView(s Session, snap Snapshot, now time.Time) (View, error) {
	v := View{Page: s.Page, SignedIn: s.SignedIn()}
	if v.SignedIn {
		v.Identity = IdentityFromToken(s.Token)
		v.Expired = v.Identity.Expired(now)
	}

	switch s.Page {
	case PageStudents:
		v.Students = buildStudents(snap)
	case PageFeedback:
		if s.SelectedStudentID == nil {
			return View{}, ErrNoSelection
		}
		v.Feedback = FeedbackView{
			StudentID:     *s.SelectedStudentID,
			StudentName:   s.SelectedStudentName,
			Title:         fmt.Sprintf("Feedback for %s", s.SelectedStudentName),
			Loaded:        snap.FeedbacksLoaded,
			DefaultDate:   util.FormatDate(now),
			DefaultScores: models.DefaultScores(),
		}
		if snap.FeedbacksLoaded {
			v.Feedback.Entries = JoinFeedback(snap.Feedbacks, snap.Students)
		}
	}
	return v, nil
}

func buildStudents(snap Snapshot) StudentsView {
	sv := StudentsView{
		Loaded:    snap.StudentsLoaded,
		NewGrades: gradeOptions(snap.Grades, 0),
	}
	for _, st := range snap.Students {
		sv.Cards = append(sv.Cards, StudentCard{
			ID:        st.ID,
			Name:      st.Name,
			GradeName: st.Grade.Name,
			Grades:    gradeOptions(snap.Grades, st.Grade.ID),
		})
	}
	return sv
}

func gradeOptions(grades []models.Grade, selected int) []GradeOption {
	opts := make([]GradeOption, 0, len(grades))
	for _, g := range grades {
		opts = append(opts, GradeOption{ID: g.ID, Name: g.Name, Selected: g.ID == selected})
	}
	return opts
}
