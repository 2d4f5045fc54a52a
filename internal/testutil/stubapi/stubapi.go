// Package stubapi is an in-memory stand-in for the tutoring backend's REST
// API, used by tests. It implements only what the client consumes.
package stubapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"tutor-feedback-client/internal/models"
)

type teacher struct {
	Email    string
	Password string
	Name     string
}

type forcedFailure struct {
	method string
	path   string
	status int
	detail string
}

type Stub struct {
	// Token is issued on every successful login and required on every
	// authenticated route.
	Token string

	mu            sync.Mutex
	teachers      map[string]teacher
	grades        []models.Grade
	students      map[int]*models.Student
	feedbacks     map[int][]models.Feedback
	nextStudentID int
	nextFeedback  int
	failures      []forcedFailure
	hits          map[string]int
	lastAuth      string
}

func New() *Stub {
	return &Stub{
		Token:    "t1",
		teachers: map[string]teacher{},
		grades: []models.Grade{
			{ID: 1, Name: "Grade 1"},
			{ID: 2, Name: "Grade 2"},
			{ID: 3, Name: "Grade 3"},
		},
		students:      map[int]*models.Student{},
		feedbacks:     map[int][]models.Feedback{},
		nextStudentID: 1,
		nextFeedback:  100,
		hits:          map[string]int{},
	}
}

// Start serves the stub on a local test server closed at test cleanup.
func Start(t testing.TB) (*Stub, *httptest.Server) {
	t.Helper()
	return StartWrapped(t, nil)
}

// StartWrapped serves the stub behind wrap, for tests that delay or rewrite
// responses. A nil wrap serves the stub as is.
func StartWrapped(t testing.TB, wrap func(http.Handler) http.Handler) (*Stub, *httptest.Server) {
	t.Helper()
	s := New()
	var h http.Handler = s.Handler()
	if wrap != nil {
		h = wrap(h)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return s, srv
}

// AddTeacher registers credentials accepted by the login route.
func (s *Stub) AddTeacher(email, password, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teachers[email] = teacher{Email: email, Password: password, Name: name}
}

// AddStudent seeds a student directly, bypassing the API.
func (s *Stub) AddStudent(name string, gradeID int) models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.insertStudent(name, s.gradeByID(gradeID))
	return *st
}

// AddOrphanFeedback stores a feedback record that no class of the student
// refers to.
func (s *Stub) AddOrphanFeedback(studentID int, overall string) models.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	fb := models.Feedback{ID: s.nextFeedback, FeedbackScores: models.DefaultScores(), CommentOverall: overall}
	s.nextFeedback++
	s.feedbacks[studentID] = append(s.feedbacks[studentID], fb)
	return fb
}

// FailNext makes the next request matching method and path answer with
// status and {"detail": detail}.
func (s *Stub) FailNext(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, forcedFailure{method: method, path: path, status: status, detail: detail})
}

// Hits returns how often "METHOD /path" was requested.
func (s *Stub) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// LastAuthorization returns the Authorization header of the latest request.
func (s *Stub) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}

func (s *Stub) StudentNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, st := range s.students {
		names = append(names, st.Name)
	}
	return names
}

func (s *Stub) Handler() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(s.record, s.injectFailures)

	api := r.Group("/api/v1")
	{
		api.POST("/teachers/", s.signup)
		api.POST("/auth/token", s.login)

		authed := api.Group("", s.requireToken)
		authed.GET("/grades", s.listGrades)
		authed.GET("/students", s.listStudents)
		authed.POST("/students", s.createStudent)
		authed.PUT("/students/:id", s.updateStudent)
		authed.DELETE("/students/:id", s.deleteStudent)
		authed.GET("/students/:id/feedbacks", s.listFeedbacks)
		authed.POST("/students/:id/feedbacks", s.createFeedback)
	}
	return r
}

func (s *Stub) record(c *gin.Context) {
	s.mu.Lock()
	s.hits[c.Request.Method+" "+c.Request.URL.Path]++
	s.lastAuth = c.GetHeader("Authorization")
	s.mu.Unlock()
	c.Next()
}

func (s *Stub) injectFailures(c *gin.Context) {
	s.mu.Lock()
	for i, f := range s.failures {
		if f.method == c.Request.Method && f.path == c.Request.URL.Path {
			s.failures = append(s.failures[:i], s.failures[i+1:]...)
			s.mu.Unlock()
			if f.detail == "" {
				c.AbortWithStatus(f.status)
				return
			}
			c.AbortWithStatusJSON(f.status, gin.H{"detail": f.detail})
			return
		}
	}
	s.mu.Unlock()
	c.Next()
}

func (s *Stub) requireToken(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+s.Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}
	c.Next()
}

func (s *Stub) signup(c *gin.Context) {
	var in models.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil || in.Email == "" || in.Password == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "email and password are required"}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.teachers[in.Email]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
		return
	}
	s.teachers[in.Email] = teacher{Email: in.Email, Password: in.Password, Name: in.Name}
	c.JSON(http.StatusOK, models.Teacher{ID: len(s.teachers), Email: in.Email, Name: in.Name})
}

func (s *Stub) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	s.mu.Lock()
	t, ok := s.teachers[username]
	s.mu.Unlock()
	if !ok || t.Password != password {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect username or password"})
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{AccessToken: s.Token, TokenType: "bearer"})
}

func (s *Stub) listGrades(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.grades)
}

func (s *Stub) listStudents(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Student, 0, len(s.students))
	for id := 1; id < s.nextStudentID; id++ {
		if st, ok := s.students[id]; ok {
			out = append(out, *st)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Stub) createStudent(c *gin.Context) {
	var in models.StudentInput
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "name is required"}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	grade := s.gradeByID(in.GradeID)
	if grade.ID == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Grade not found"})
		return
	}
	st := s.insertStudent(in.Name, grade)
	c.JSON(http.StatusCreated, st)
}

func (s *Stub) updateStudent(c *gin.Context) {
	var in models.StudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.studentFromParam(c)
	if !ok {
		return
	}
	grade := s.gradeByID(in.GradeID)
	if grade.ID == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Grade not found"})
		return
	}
	st.Name = in.Name
	st.Grade = grade
	c.JSON(http.StatusOK, st)
}

func (s *Stub) deleteStudent(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.studentFromParam(c)
	if !ok {
		return
	}
	delete(s.students, st.ID)
	delete(s.feedbacks, st.ID)
	c.Status(http.StatusNoContent)
}

func (s *Stub) listFeedbacks(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.studentFromParam(c)
	if !ok {
		return
	}
	out := s.feedbacks[st.ID]
	if out == nil {
		out = []models.Feedback{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Stub) createFeedback(c *gin.Context) {
	var in models.FeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.studentFromParam(c)
	if !ok {
		return
	}
	fb := models.Feedback{
		ID:                 s.nextFeedback,
		FeedbackScores:     in.FeedbackInfo,
		CommentImprovement: fmt.Sprintf("%s: steady progress on %s", st.Name, in.ClassInfo.Subject),
		CommentAttitude:    "keep asking questions",
		CommentOverall:     in.ClassInfo.ProgressText,
	}
	s.nextFeedback++
	s.feedbacks[st.ID] = append(s.feedbacks[st.ID], fb)
	stored := fb
	st.Classes = append(st.Classes, models.ClassInfo{ClassDate: in.ClassInfo.ClassDate, Feedback: &stored})
	c.JSON(http.StatusCreated, fb)
}

func (s *Stub) studentFromParam(c *gin.Context) (*models.Student, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid student id"})
		return nil, false
	}
	st, ok := s.students[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Student not found"})
		return nil, false
	}
	return st, true
}

func (s *Stub) gradeByID(id int) models.Grade {
	for _, g := range s.grades {
		if g.ID == id {
			return g
		}
	}
	return models.Grade{}
}

func (s *Stub) insertStudent(name string, grade models.Grade) *models.Student {
	st := &models.Student{ID: s.nextStudentID, Name: name, Grade: grade, Classes: []models.ClassInfo{}}
	s.students[st.ID] = st
	s.nextStudentID++
	return st
}
