package session

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tutor-feedback-client/internal/config"
	"tutor-feedback-client/internal/gateway"
	"tutor-feedback-client/internal/importer"
	"tutor-feedback-client/internal/models"
	"tutor-feedback-client/internal/notice"
	"tutor-feedback-client/internal/store"
	"tutor-feedback-client/internal/util"
)

// Controller owns the Session and is the only code allowed to change the
// current page. User actions are serialized: an action that arrives while
// another one is still running is rejected with ErrBusy.
type Controller struct {
	cfg     *config.Config
	tokens  store.TokenStore
	api     *gateway.Client
	notices *notice.Board
	now     func() time.Time

	busy sync.Mutex

	mu   sync.RWMutex
	sess Session
	snap Snapshot
}

// New restores the persisted token. With a token the controller starts on
// the students page and loads it; without one it starts on auth.
func New(ctx context.Context, cfg *config.Config, tokens store.TokenStore, notices *notice.Board) (*Controller, error) {
	c := &Controller{
		cfg:     cfg,
		tokens:  tokens,
		notices: notices,
		now:     time.Now,
		sess:    Session{Page: PageAuth},
	}
	c.api = gateway.New(cfg, c.Token, notices)

	token, ok, err := tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("load persisted token: %w", err)
	}
	if !ok {
		cfg.Debugf("session: no persisted token, starting on %s", PageAuth)
		return c, nil
	}

	c.busy.Lock()
	defer c.busy.Unlock()
	c.setSignedIn(token)
	if err := c.enterStudents(ctx); err != nil {
		log.Printf("WARNING: initial student list not loaded: %v", err)
	}
	return c, nil
}

// Token is the gateway's token source.
func (c *Controller) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess.Token
}

// Session returns a copy of the current session.
func (c *Controller) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.sess
	if s.SelectedStudentID != nil {
		id := *s.SelectedStudentID
		s.SelectedStudentID = &id
	}
	return s
}

func (c *Controller) Page() Page {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess.Page
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Controller) View() (View, error) {
	c.mu.RLock()
	s, snap := c.sess, c.snap
	c.mu.RUnlock()
	return BuildView(s, snap, c.now())
}

func (c *Controller) begin() (func(), error) {
	if !c.busy.TryLock() {
		if !c.noticePending(ErrBusy.Error()) {
			c.notices.Error(ErrBusy.Error())
		}
		return nil, ErrBusy
	}
	return c.busy.Unlock, nil
}

// noticePending reports whether message is already waiting to be shown.
func (c *Controller) noticePending(message string) bool {
	for _, n := range c.notices.Peek() {
		if n.Message == message {
			return true
		}
	}
	return false
}

func (c *Controller) requirePage(p Page) error {
	if current := c.Page(); current != p {
		c.cfg.Debugf("session: rejected action for %s while on %s", p, current)
		return fmt.Errorf("%w: on %s, need %s", ErrInvalidTransition, current, p)
	}
	return nil
}

func (c *Controller) validate(v interface{}) error {
	if err := models.Validate(v); err != nil {
		c.notices.Error(err.Error())
		return err
	}
	return nil
}

func (c *Controller) setSignedIn(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = Session{Token: token, Page: PageStudents}
	c.snap = Snapshot{}
}

func (c *Controller) Signup(ctx context.Context, in models.SignupInput) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := c.requirePage(PageAuth); err != nil {
		return err
	}
	if err := c.validate(in); err != nil {
		return err
	}
	if res := c.api.Signup(ctx, in); res.Failed() {
		return resultErr("signup", res)
	}
	c.notices.Success("Signed up. Please log in.")
	return nil
}

func (c *Controller) Login(ctx context.Context, in models.LoginInput) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := c.requirePage(PageAuth); err != nil {
		return err
	}
	if err := c.validate(in); err != nil {
		return err
	}

	tok, res := c.api.Login(ctx, in)
	if !res.Succeeded() || tok.AccessToken == "" {
		c.notices.Error("Login failed. Check your e-mail and password.")
		return ErrLoginFailed
	}
	if err := c.tokens.Save(tok.AccessToken); err != nil {
		log.Printf("ERROR: Failed to persist token: %v", err)
		c.notices.Error("Could not store the session, please try again.")
		return fmt.Errorf("persist token: %w", err)
	}

	c.setSignedIn(tok.AccessToken)
	c.notices.Success("Logged in.")
	return c.enterStudents(ctx)
}

// Logout always ends the in-memory session, even if clearing the stored
// token fails.
func (c *Controller) Logout(ctx context.Context) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	clearErr := c.tokens.Clear()

	c.mu.Lock()
	c.sess = Session{Page: PageAuth}
	c.snap = Snapshot{}
	c.mu.Unlock()

	if clearErr != nil {
		log.Printf("ERROR: Failed to clear stored token: %v", clearErr)
		c.notices.Error("Logged out, but the stored session could not be removed.")
		return fmt.Errorf("clear token: %w", clearErr)
	}
	c.notices.Success("Logged out.")
	return nil
}

// ShowStudents re-enters the students page from students or feedback.
func (c *Controller) ShowStudents(ctx context.Context) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	if c.Page() == PageAuth {
		return fmt.Errorf("%w: not signed in", ErrInvalidTransition)
	}
	return c.enterStudents(ctx)
}

// Refresh refetches whatever the current page shows.
func (c *Controller) Refresh(ctx context.Context) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	s := c.Session()
	switch s.Page {
	case PageStudents:
		return c.enterStudents(ctx)
	case PageFeedback:
		return c.enterFeedback(ctx, *s.SelectedStudentID, s.SelectedStudentName)
	}
	return nil
}

// SelectStudent moves from students to feedback. The selection is set in
// the same step as the page change. An empty name is looked up in the
// current student list.
func (c *Controller) SelectStudent(ctx context.Context, id int, name string) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := c.requirePage(PageStudents); err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("%w: invalid student id %d", ErrInvalidTransition, id)
	}
	if name == "" {
		for _, st := range c.Snapshot().Students {
			if st.ID == id {
				name = st.Name
				break
			}
		}
	}
	return c.enterFeedback(ctx, id, name)
}

// Back returns from feedback to students and clears the selection.
func (c *Controller) Back(ctx context.Context) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := c.requirePage(PageFeedback); err != nil {
		return err
	}
	return c.enterStudents(ctx)
}

func (c *Controller) CreateStudent(ctx context.Context, in models.StudentInput) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := c.requirePage(PageStudents); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := c.validate(in); err != nil {
		return err
	}
	if res := c.api.CreateStudent(ctx, in); res.Failed() {
		return resultErr("create student", res)
	}
	c.notices.Success(fmt.Sprintf("Added student %s.", in.Name))
	return c.enterStudents(ctx)
}

func (c *Controller) UpdateStudent(ctx context.Context, id int, in models.StudentInput) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := c.requirePage(PageStudents); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := c.validate(in); err != nil {
		return err
	}
	if res := c.api.UpdateStudent(ctx, id, in); res.Failed() {
		return resultErr("update student", res)
	}
	c.notices.Success(fmt.Sprintf("Updated student %s.", in.Name))
	return c.enterStudents(ctx)
}

// DeleteStudent issues the delete only when confirmed is true.
func (c *Controller) DeleteStudent(ctx context.Context, id int, confirmed bool) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := c.requirePage(PageStudents); err != nil {
		return err
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	if res := c.api.DeleteStudent(ctx, id); res.Failed() {
		return resultErr("delete student", res)
	}
	c.notices.Success("Deleted student.")
	return c.enterStudents(ctx)
}

// CreateFeedback submits class details and scores for the selected student
// and reloads the feedback page once the backend has generated the comments.
func (c *Controller) CreateFeedback(ctx context.Context, in models.FeedbackInput) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := c.requirePage(PageFeedback); err != nil {
		return err
	}
	s := c.Session()
	if s.SelectedStudentID == nil {
		return ErrNoSelection
	}
	if err := c.validate(in); err != nil {
		return err
	}
	if err := util.ValidateClassDate(in.ClassInfo.ClassDate, c.now()); err != nil {
		c.notices.Error(err.Error())
		return err
	}

	if res := c.api.CreateFeedback(ctx, *s.SelectedStudentID, in); res.Failed() {
		return resultErr("create feedback", res)
	}
	c.notices.Success("AI feedback created.")
	return c.enterFeedback(ctx, *s.SelectedStudentID, s.SelectedStudentName)
}

type ImportSummary struct {
	Created int
	Skipped []string
}

// ImportStudents creates one student per row. Grades are resolved by name
// (case-insensitive) or by numeric id against a fresh grade list. The list
// is refetched once after the last row.
func (c *Controller) ImportStudents(ctx context.Context, rows []importer.Row) (ImportSummary, error) {
	var summary ImportSummary
	done, err := c.begin()
	if err != nil {
		return summary, err
	}
	defer done()

	if err := c.requirePage(PageStudents); err != nil {
		return summary, err
	}
	if len(rows) == 0 {
		c.notices.Error("The sheet has no student rows.")
		return summary, nil
	}

	grades, res := c.api.Grades(ctx)
	if res.Failed() {
		return summary, resultErr("grades", res)
	}
	gradeIDs := make(map[string]int, len(grades)*2)
	for _, g := range grades {
		gradeIDs[strings.ToLower(strings.TrimSpace(g.Name))] = g.ID
		gradeIDs[strconv.Itoa(g.ID)] = g.ID
	}

	for _, row := range rows {
		in := models.StudentInput{
			Name:    strings.TrimSpace(row.Name),
			GradeID: gradeIDs[strings.ToLower(strings.TrimSpace(row.Grade))],
		}
		if err := models.Validate(in); err != nil {
			summary.Skipped = append(summary.Skipped, fmt.Sprintf("line %d: %v", row.Line, err))
			continue
		}
		res := c.api.CreateStudent(ctx, in)
		if res.Failed() {
			summary.Skipped = append(summary.Skipped, fmt.Sprintf("line %d: %s", row.Line, res.Err.Detail))
			if res.Err.Unauthorized {
				break
			}
			continue
		}
		summary.Created++
	}

	c.notices.Success(fmt.Sprintf("Imported %d students.", summary.Created))
	if n := len(summary.Skipped); n > 0 {
		shown := summary.Skipped
		if len(shown) > 3 {
			shown = shown[:3]
		}
		c.notices.Error(fmt.Sprintf("Skipped %d rows: %s", n, strings.Join(shown, "; ")))
	}
	return summary, c.enterStudents(ctx)
}

// enterStudents fetches grades and students concurrently and switches to
// the students page with exactly what was fetched. Callers hold busy.
func (c *Controller) enterStudents(ctx context.Context) error {
	var (
		grades      []models.Grade
		students    []models.Student
		gradesRes   gateway.Result
		studentsRes gateway.Result
		g           errgroup.Group
	)
	g.Go(func() error {
		grades, gradesRes = c.api.Grades(ctx)
		return resultErr("grades", gradesRes)
	})
	g.Go(func() error {
		students, studentsRes = c.api.Students(ctx)
		return resultErr("students", studentsRes)
	})
	err := g.Wait()

	c.mu.Lock()
	c.sess.Page = PageStudents
	c.sess = c.sess.clearSelection()
	c.snap = Snapshot{
		Grades:         grades,
		GradesLoaded:   gradesRes.Succeeded(),
		Students:       students,
		StudentsLoaded: studentsRes.Succeeded(),
	}
	c.mu.Unlock()

	c.cfg.Debugf("session: entered %s (%d students, %d grades)", PageStudents, len(students), len(grades))
	return err
}

// enterFeedback fetches the student's feedback records and the student list
// (which carries the class dates) concurrently, then switches to the
// feedback page with the selection set. Callers hold busy.
func (c *Controller) enterFeedback(ctx context.Context, id int, name string) error {
	var (
		feedbacks    []models.Feedback
		students     []models.Student
		feedbacksRes gateway.Result
		studentsRes  gateway.Result
		g            errgroup.Group
	)
	g.Go(func() error {
		feedbacks, feedbacksRes = c.api.Feedbacks(ctx, id)
		return resultErr("feedbacks", feedbacksRes)
	})
	g.Go(func() error {
		students, studentsRes = c.api.Students(ctx)
		return resultErr("students", studentsRes)
	})
	err := g.Wait()

	c.mu.Lock()
	c.sess.Page = PageFeedback
	c.sess.SelectedStudentID = &id
	c.sess.SelectedStudentName = name
	c.snap = Snapshot{
		Students:        students,
		StudentsLoaded:  studentsRes.Succeeded(),
		Feedbacks:       feedbacks,
		FeedbacksLoaded: feedbacksRes.Succeeded(),
	}
	c.mu.Unlock()

	c.cfg.Debugf("session: entered %s for student %d (%d records)", PageFeedback, id, len(feedbacks))
	return err
}

func resultErr(what string, res gateway.Result) error {
	if !res.Failed() {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrRequestFailed, what, res.Err)
}
