package models

// Grade is one entry of GET /api/v1/grades. Students embed the same shape
// as grade_info.
type Grade struct {
	ID   int    `json:"grade_id"`
	Name string `json:"grade_name"`
}

type Student struct {
	ID      int         `json:"student_id"`
	Name    string      `json:"name"`
	Grade   Grade       `json:"grade_info"`
	Classes []ClassInfo `json:"classes"`
}

// ClassInfo is one class session of a student as embedded in the student
// list. Feedback is nil until feedback was generated for that class.
type ClassInfo struct {
	ClassDate string    `json:"class_date"`
	Feedback  *Feedback `json:"feedback,omitempty"`
}

type FeedbackScores struct {
	Attitude      int `json:"attitude_score" validate:"min=1,max=5"`
	Understanding int `json:"understanding_score" validate:"min=1,max=5"`
	Homework      int `json:"homework_score" validate:"min=1,max=5"`
	QA            int `json:"qa_score" validate:"min=1,max=5"`
}

// Feedback is created by the backend from a FeedbackInput and is read-only
// here. Scores are flattened into the record on the wire.
type Feedback struct {
	ID int `json:"feedback_id"`
	FeedbackScores
	CommentImprovement string `json:"ai_comment_improvement"`
	CommentAttitude    string `json:"ai_comment_attitude"`
	CommentOverall     string `json:"ai_comment_overall"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Teacher is the signup response. Only used to confirm the account exists.
type Teacher struct {
	ID    int    `json:"teacher_id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
	Name     string `json:"name" validate:"required,max=100"`
}

// LoginInput is sent form-encoded as username/password.
type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type StudentInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	GradeID int    `json:"grade_id" validate:"required,gt=0"`
}

type ClassDetails struct {
	Subject      string `json:"subject" validate:"required,max=100"`
	ClassDate    string `json:"class_date" validate:"required,datetime=2006-01-02"`
	ProgressText string `json:"progress_text"`
	ClassMemo    string `json:"class_memo"`
}

type FeedbackInput struct {
	ClassInfo    ClassDetails   `json:"class_info"`
	FeedbackInfo FeedbackScores `json:"feedback_info"`
}

// DefaultScore is the slider position of a fresh feedback form.
const DefaultScore = 3

func DefaultScores() FeedbackScores {
	return FeedbackScores{
		Attitude:      DefaultScore,
		Understanding: DefaultScore,
		Homework:      DefaultScore,
		QA:            DefaultScore,
	}
}
