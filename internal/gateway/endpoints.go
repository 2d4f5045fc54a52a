package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"tutor-feedback-client/internal/models"
)

func (c *Client) Signup(ctx context.Context, in models.SignupInput) Result {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/v1/teachers/", Body: in})
}

// Login exchanges credentials for an access token. The backend expects the
// OAuth2 password form, so the e-mail goes in as username.
func (c *Client) Login(ctx context.Context, in models.LoginInput) (models.TokenResponse, Result) {
	req := Request{
		Method:   http.MethodPost,
		Path:     "/api/v1/auth/token",
		Body:     url.Values{"username": {in.Email}, "password": {in.Password}},
		Encoding: EncodingForm,
	}
	return decodeInto[models.TokenResponse](c, req, c.Do(ctx, req))
}

func (c *Client) Grades(ctx context.Context) ([]models.Grade, Result) {
	req := Request{Method: http.MethodGet, Path: "/api/v1/grades"}
	return decodeInto[[]models.Grade](c, req, c.Do(ctx, req))
}

func (c *Client) Students(ctx context.Context) ([]models.Student, Result) {
	req := Request{Method: http.MethodGet, Path: "/api/v1/students"}
	return decodeInto[[]models.Student](c, req, c.Do(ctx, req))
}

// CreateStudent, UpdateStudent and CreateFeedback do not decode the
// response body. Any 2xx means the backend applied the change, and callers
// refetch instead of reading the echoed record.
func (c *Client) CreateStudent(ctx context.Context, in models.StudentInput) Result {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/v1/students", Body: in})
}

func (c *Client) UpdateStudent(ctx context.Context, id int, in models.StudentInput) Result {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: studentPath(id), Body: in})
}

// DeleteStudent succeeds with an Empty result (HTTP 204).
func (c *Client) DeleteStudent(ctx context.Context, id int) Result {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: studentPath(id)})
}

func (c *Client) Feedbacks(ctx context.Context, studentID int) ([]models.Feedback, Result) {
	req := Request{Method: http.MethodGet, Path: studentPath(studentID) + "/feedbacks"}
	return decodeInto[[]models.Feedback](c, req, c.Do(ctx, req))
}

// CreateFeedback asks the backend to generate AI feedback for one class.
// This is slow; the configured request timeout applies.
func (c *Client) CreateFeedback(ctx context.Context, studentID int, in models.FeedbackInput) Result {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: studentPath(studentID) + "/feedbacks", Body: in})
}

func studentPath(id int) string {
	return fmt.Sprintf("/api/v1/students/%d", id)
}
