package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"tutor-feedback-client/internal/config"
	"tutor-feedback-client/internal/notice"
	"tutor-feedback-client/internal/session"
	"tutor-feedback-client/internal/store"
	"tutor-feedback-client/internal/testutil/stubapi"
	"tutor-feedback-client/internal/util"
)

type app struct {
	t      *testing.T
	stub   *stubapi.Stub
	tokens *store.Bolt
	ctrl   *session.Controller
	mux    *http.ServeMux
}

func newApp(t *testing.T) *app {
	t.Helper()
	return newWrappedApp(t, nil)
}

func newWrappedApp(t *testing.T, wrap func(http.Handler) http.Handler) *app {
	t.Helper()
	stub, srv := stubapi.StartWrapped(t, wrap)
	stub.AddTeacher("teacher@example.com", "secret", "Park")

	tokens, err := store.Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { tokens.Close() })

	c := &config.Config{APIBaseURL: srv.URL, RequestTimeout: 2 * time.Second}
	notices := notice.NewBoard(time.Minute)
	ctrl, err := session.New(context.Background(), c, tokens, notices)
	if err != nil {
		t.Fatalf("session.New() failed: %v", err)
	}
	SetConfig(c)
	return &app{t: t, stub: stub, tokens: tokens, ctrl: ctrl, mux: Routes(c, ctrl, notices)}
}

func (a *app) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func (a *app) login() {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/login", url.Values{"email": {"teacher@example.com"}, "password": {"secret"}})
	if loc := rec.Header().Get("Location"); loc != "/students" {
		a.t.Fatalf("login redirected to %q, want /students", loc)
	}
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusFound && rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want a redirect to %s", rec.Code, want)
	}
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

func assertPage(t *testing.T, rec *httptest.ResponseRecorder, contains ...string) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, s := range contains {
		if !strings.Contains(body, s) {
			t.Errorf("page does not contain %q", s)
		}
	}
}

func TestSignedOutRoutes(t *testing.T) {
	a := newApp(t)

	assertRedirect(t, a.do(http.MethodGet, "/", nil), "/login")
	assertPage(t, a.do(http.MethodGet, "/login", nil), "Log in", "Sign up")
	assertRedirect(t, a.do(http.MethodGet, "/students", nil), "/login")
	assertRedirect(t, a.do(http.MethodGet, "/feedback", nil), "/login")
	assertRedirect(t, a.do(http.MethodPost, "/students/1/delete", url.Values{"confirm": {"yes"}}), "/login")

	if rec := a.do(http.MethodGet, "/nope", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}

func TestLoginFailureShowsToast(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPost, "/login", url.Values{"email": {"teacher@example.com"}, "password": {"wrong"}})
	assertRedirect(t, rec, "/login?email=teacher%40example.com")

	page := a.do(http.MethodGet, "/login?email=teacher%40example.com", nil)
	assertPage(t, page, "Login failed", `value="teacher@example.com"`)

	again := a.do(http.MethodGet, "/login", nil)
	if strings.Contains(again.Body.String(), "Login failed") {
		t.Errorf("toast shown twice")
	}
}

func TestSignup(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPost, "/signup", url.Values{"email": {"new@example.com"}, "password": {"pass1"}, "name": {"Choi"}})
	assertRedirect(t, rec, "/login?email=new%40example.com")
	assertPage(t, a.do(http.MethodGet, "/login?email=new%40example.com", nil), "Signed up. Please log in.")

	rec = a.do(http.MethodPost, "/login", url.Values{"email": {"new@example.com"}, "password": {"pass1"}})
	assertRedirect(t, rec, "/students")
}

func TestStudentLifecycle(t *testing.T) {
	a := newApp(t)
	a.login()

	assertPage(t, a.do(http.MethodGet, "/students", nil), "Logged in.", "No students yet.")

	rec := a.do(http.MethodPost, "/students", url.Values{"name": {"Kim"}, "grade_id": {"2"}})
	assertRedirect(t, rec, "/students")
	assertPage(t, a.do(http.MethodGet, "/students", nil), "Added student Kim.", `value="Kim"`, `<option value="2" selected>Grade 2</option>`)

	rec = a.do(http.MethodPost, "/students/1", url.Values{"name": {"Kim Minji"}, "grade_id": {"3"}})
	assertRedirect(t, rec, "/students")
	if names := a.stub.StudentNames(); len(names) != 1 || names[0] != "Kim Minji" {
		t.Errorf("backend students = %v", names)
	}

	assertPage(t, a.do(http.MethodGet, "/students/1/delete", nil), "Delete Kim Minji?")

	rec = a.do(http.MethodPost, "/students/1/delete", url.Values{})
	assertRedirect(t, rec, "/students/1/delete")
	if hits := a.stub.Hits(http.MethodDelete, "/api/v1/students/1"); hits != 0 {
		t.Fatalf("unconfirmed delete reached the backend")
	}

	rec = a.do(http.MethodPost, "/students/1/delete", url.Values{"confirm": {"yes"}})
	assertRedirect(t, rec, "/students")
	assertPage(t, a.do(http.MethodGet, "/students", nil), "Deleted student.", "No students yet.")
}

func TestStudentsPageRendersWhileBusy(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var enterOnce, releaseOnce sync.Once
	hold := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && r.URL.Path == "/api/v1/students" {
				enterOnce.Do(func() { close(entered) })
				<-release
			}
			next.ServeHTTP(w, r)
		})
	}
	a := newWrappedApp(t, hold)
	unblock := func() { releaseOnce.Do(func() { close(release) }) }
	t.Cleanup(unblock)
	a.login()
	a.do(http.MethodGet, "/students", nil)

	created := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		created <- a.do(http.MethodPost, "/students", url.Values{"name": {"Kim"}, "grade_id": {"1"}})
	}()
	<-entered

	for i := 0; i < 3; i++ {
		rec := a.do(http.MethodGet, "/students", nil)
		assertPage(t, rec, "No students yet.")
		if n := strings.Count(rec.Body.String(), session.ErrBusy.Error()); n != 1 {
			t.Errorf("request %d: busy notice shown %d times, want 1", i, n)
		}
	}

	unblock()
	assertRedirect(t, <-created, "/students")
	assertPage(t, a.do(http.MethodGet, "/students", nil), "Added student Kim.", `value="Kim"`)
}

func TestInvalidStudentFormShowsValidationToast(t *testing.T) {
	a := newApp(t)
	a.login()

	rec := a.do(http.MethodPost, "/students", url.Values{"name": {"Kim"}, "grade_id": {"abc"}})
	assertRedirect(t, rec, "/students")
	assertPage(t, a.do(http.MethodGet, "/students", nil), "invalid input")
	if hits := a.stub.Hits(http.MethodPost, "/api/v1/students"); hits != 0 {
		t.Errorf("invalid form reached the backend")
	}
}

func TestFeedbackFlow(t *testing.T) {
	a := newApp(t)
	kim := a.stub.AddStudent("Kim", 1)
	a.login()

	assertRedirect(t, a.do(http.MethodPost, "/students/1/feedback", url.Values{"name": {kim.Name}}), "/feedback")
	assertRedirect(t, a.do(http.MethodGet, "/students", nil), "/feedback")

	today := util.FormatDate(time.Now())
	assertPage(t, a.do(http.MethodGet, "/feedback", nil), "Feedback for Kim", "No feedback yet.", `value="`+today+`"`)

	form := url.Values{
		"subject":             {"Math"},
		"class_date":          {today},
		"progress_text":       {"fractions"},
		"attitude_score":      {"4"},
		"understanding_score": {"3"},
		"homework_score":      {"5"},
		"qa_score":            {"2"},
	}
	assertRedirect(t, a.do(http.MethodPost, "/feedback", form), "/feedback")
	assertPage(t, a.do(http.MethodGet, "/feedback", nil), "AI feedback created.", "<h3>"+today+"</h3>", "Homework 5", "fractions")

	a.stub.AddOrphanFeedback(kim.ID, "")
	assertPage(t, a.do(http.MethodGet, "/feedback", nil), session.UnknownClassDate, session.NoContent)

	assertRedirect(t, a.do(http.MethodPost, "/feedback/back", url.Values{}), "/students")
	if s := a.ctrl.Session(); s.SelectedStudentID != nil {
		t.Errorf("selection kept after back: %+v", s)
	}
}

func TestLogout(t *testing.T) {
	a := newApp(t)
	a.login()

	assertRedirect(t, a.do(http.MethodPost, "/logout", url.Values{}), "/login")
	if _, ok, _ := a.tokens.Load(); ok {
		t.Errorf("token still stored after logout")
	}
	assertPage(t, a.do(http.MethodGet, "/login", nil), "Logged out.")
	assertRedirect(t, a.do(http.MethodPost, "/logout", url.Values{}), "/login")
}

func TestImportSheet(t *testing.T) {
	a := newApp(t)
	a.login()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "Grade"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"Kim", "Grade 1"})
	f.SetSheetRow(sheet, "A3", &[]interface{}{"Lee", "Grade 3"})
	xlsx, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() failed: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("sheet", "students.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	part.Write(xlsx.Bytes())
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/students/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)

	assertRedirect(t, rec, "/students")
	assertPage(t, a.do(http.MethodGet, "/students", nil), "Imported 2 students.", `value="Kim"`, `value="Lee"`)
}

func TestPathID(t *testing.T) {
	tests := []struct {
		path, rest string
		want       int
		ok         bool
	}{
		{"/students/7", "", 7, true},
		{"/students/7/delete", "/delete", 7, true},
		{"/students/7/delete", "", 0, false},
		{"/students/0", "", 0, false},
		{"/students/abc/feedback", "/feedback", 0, false},
		{"/students/", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.path+tt.rest, func(t *testing.T) {
			got, ok := pathID(tt.path, "/students/", tt.rest)
			if got != tt.want || ok != tt.ok {
				t.Errorf("pathID(%q, %q) = %d, %v; want %d, %v", tt.path, tt.rest, got, ok, tt.want, tt.ok)
			}
		})
	}
}
