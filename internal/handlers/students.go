package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"tutor-feedback-client/internal/config"
	"tutor-feedback-client/internal/importer"
	"tutor-feedback-client/internal/models"
	"tutor-feedback-client/internal/notice"
	"tutor-feedback-client/internal/session"
)

const maxImportSize = 10 << 20

type StudentsHandler struct {
	cfg     *config.Config
	ctrl    *session.Controller
	notices *notice.Board
}

func NewStudentsHandler(cfg *config.Config, ctrl *session.Controller, notices *notice.Board) *StudentsHandler {
	return &StudentsHandler{cfg: cfg, ctrl: ctrl, notices: notices}
}

// List renders the students page. A plain GET re-enters the page, so the
// list is always the one fetched for this visit.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// While another action runs, ShowStudents is rejected and the last
	// snapshot is rendered with the busy notice.
	if err := h.ctrl.ShowStudents(r.Context()); err != nil {
		logActionError("show students", err)
		if errors.Is(err, session.ErrInvalidTransition) {
			redirectToPage(w, r, h.ctrl)
			return
		}
	}
	v, ok := viewOrError(w, h.ctrl, h.notices)
	if !ok {
		return
	}
	renderTemplate(w, "students.html", v, h.notices, map[string]interface{}{"Title": "Students - Tutor Feedback"})
}

func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	in := models.StudentInput{Name: r.FormValue("name"), GradeID: formInt(r, "grade_id")}
	logActionError("create student", h.ctrl.CreateStudent(r.Context(), in))
	redirectToPage(w, r, h.ctrl)
}

// Import reads an uploaded .xlsx sheet and creates one student per row.
func (h *StudentsHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		h.notices.Error("Could not read the upload.")
		log.Printf("WARNING: import upload: %v", err)
		redirectToPage(w, r, h.ctrl)
		return
	}
	file, header, err := r.FormFile("sheet")
	if err != nil {
		h.notices.Error("Choose an .xlsx file to import.")
		redirectToPage(w, r, h.ctrl)
		return
	}
	defer file.Close()

	rows, err := importer.ReadStudents(file)
	if err != nil {
		h.notices.Error(fmt.Sprintf("Could not import %s: %v", header.Filename, err))
		redirectToPage(w, r, h.ctrl)
		return
	}
	h.cfg.Debugf("import: %d rows from %s", len(rows), header.Filename)

	_, err = h.ctrl.ImportStudents(r.Context(), rows)
	logActionError("import students", err)
	redirectToPage(w, r, h.ctrl)
}

// Member routes /students/{id}, /students/{id}/delete and
// /students/{id}/feedback.
func (h *StudentsHandler) Member(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if id, ok := pathID(path, "/students/", "/delete"); ok {
		switch r.Method {
		case http.MethodGet:
			h.ConfirmDelete(w, r, id)
		case http.MethodPost:
			h.Delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}
	if id, ok := pathID(path, "/students/", "/feedback"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.Select(w, r, id)
		return
	}
	if id, ok := pathID(path, "/students/", ""); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.Update(w, r, id)
		return
	}
	http.NotFound(w, r)
}

func (h *StudentsHandler) Update(w http.ResponseWriter, r *http.Request, id int) {
	in := models.StudentInput{Name: r.FormValue("name"), GradeID: formInt(r, "grade_id")}
	logActionError("update student", h.ctrl.UpdateStudent(r.Context(), id, in))
	redirectToPage(w, r, h.ctrl)
}

// ConfirmDelete asks before anything is sent to the backend.
func (h *StudentsHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request, id int) {
	name := ""
	for _, st := range h.ctrl.Snapshot().Students {
		if st.ID == id {
			name = st.Name
			break
		}
	}
	if name == "" {
		h.notices.Error("That student is no longer in the list.")
		redirectToPage(w, r, h.ctrl)
		return
	}

	v, ok := viewOrError(w, h.ctrl, h.notices)
	if !ok {
		return
	}
	data := map[string]interface{}{
		"Title":       "Delete student - Tutor Feedback",
		"StudentID":   id,
		"StudentName": name,
	}
	renderTemplate(w, "confirm_delete.html", v, h.notices, data)
}

func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request, id int) {
	confirmed := strings.EqualFold(r.FormValue("confirm"), "yes")
	err := h.ctrl.DeleteStudent(r.Context(), id, confirmed)
	if errors.Is(err, session.ErrNotConfirmed) {
		http.Redirect(w, r, fmt.Sprintf("/students/%d/delete", id), http.StatusSeeOther)
		return
	}
	logActionError("delete student", err)
	redirectToPage(w, r, h.ctrl)
}

func (h *StudentsHandler) Select(w http.ResponseWriter, r *http.Request, id int) {
	err := h.ctrl.SelectStudent(r.Context(), id, strings.TrimSpace(r.FormValue("name")))
	logActionError("select student", err)
	redirectToPage(w, r, h.ctrl)
}
