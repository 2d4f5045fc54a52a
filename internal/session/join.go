package session

import "tutor-feedback-client/internal/models"

// UnknownClassDate replaces the class date of a feedback record that no
// class refers to.
const UnknownClassDate = "unknown date"

// NoContent stands in for an empty AI comment.
const NoContent = "no content"

type FeedbackEntry struct {
	ID                 int
	ClassDate          string
	DateKnown          bool
	Scores             models.FeedbackScores
	CommentImprovement string
	CommentAttitude    string
	CommentOverall     string
}

// ClassDatesByFeedback indexes every student's classes by the id of the
// feedback attached to them.
func ClassDatesByFeedback(students []models.Student) map[int]string {
	dates := make(map[int]string)
	for _, st := range students {
		for _, class := range st.Classes {
			if class.Feedback != nil {
				dates[class.Feedback.ID] = class.ClassDate
			}
		}
	}
	return dates
}

// JoinFeedback pairs each feedback record with its class date. Records
// without a matching class get UnknownClassDate.
func JoinFeedback(feedbacks []models.Feedback, students []models.Student) []FeedbackEntry {
	dates := ClassDatesByFeedback(students)
	entries := make([]FeedbackEntry, 0, len(feedbacks))
	for _, fb := range feedbacks {
		date, ok := dates[fb.ID]
		if !ok || date == "" {
			date = UnknownClassDate
			ok = false
		}
		entries = append(entries, FeedbackEntry{
			ID:                 fb.ID,
			ClassDate:          date,
			DateKnown:          ok,
			Scores:             fb.FeedbackScores,
			CommentImprovement: orNoContent(fb.CommentImprovement),
			CommentAttitude:    orNoContent(fb.CommentAttitude),
			CommentOverall:     orNoContent(fb.CommentOverall),
		})
	}
	return entries
}

func orNoContent(s string) string {
	if s == "" {
		return NoContent
	}
	return s
}
