package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync"

	"tutor-feedback-client/internal/config"
	"tutor-feedback-client/internal/notice"
	"tutor-feedback-client/internal/session"
	"tutor-feedback-client/internal/views"
)

var (
	templates     *template.Template
	templatesOnce sync.Once
	cfg           *config.Config
)

// SetConfig sets the config for debug logging
func SetConfig(c *config.Config) {
	cfg = c
}

// InitTemplates parses the embedded templates. It panics on a broken template
// set, so call it at startup.
func InitTemplates() {
	initTemplates()
}

func initTemplates() {
	templatesOnce.Do(func() {
		entries, err := fs.ReadDir(views.TemplatesFS, ".")
		if err != nil {
			log.Printf("ERROR: Failed to read template directory: %v", err)
			panic(fmt.Sprintf("Failed to read template directory: %v", err))
		}
		var templateFiles []string
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
				templateFiles = append(templateFiles, entry.Name())
			}
		}
		if len(templateFiles) == 0 {
			log.Printf("ERROR: No template files found in embedded filesystem")
			panic("No template files found in embedded filesystem")
		}
		cfg.Debugf("templates: parsing %s", strings.Join(templateFiles, ", "))

		templates, err = template.New("").ParseFS(views.TemplatesFS, "*.html")
		if err != nil {
			log.Printf("ERROR: Failed to parse templates: %v", err)
			panic(fmt.Sprintf("Failed to parse templates: %v", err))
		}
	})
}

var contentTemplateMap = map[string]string{
	"login.html":          "login_content",
	"students.html":       "students_content",
	"confirm_delete.html": "confirm_delete_content",
	"feedback.html":       "feedback_content",
}

// renderTemplate renders name inside the layout. Pending notices are drained
// into data, so each toast is shown exactly once.
func renderTemplate(w http.ResponseWriter, name string, v session.View, notices *notice.Board, data map[string]interface{}) {
	initTemplates()

	contentTemplateName, ok := contentTemplateMap[name]
	if !ok || templates.Lookup(contentTemplateName) == nil {
		log.Printf("ERROR: Content template for '%s' not found", name)
		http.Error(w, fmt.Sprintf("Content template for '%s' not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	data["ContentTemplate"] = contentTemplateName
	data["View"] = v
	data["Notices"] = notices.Drain()
	if _, ok := data["Title"]; !ok {
		data["Title"] = "Tutor Feedback"
	}

	var buf strings.Builder
	if err := templates.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("ERROR: Template execute error: %v", err)
		http.Error(w, fmt.Sprintf("Template execute error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(buf.String()))
	cfg.Debugf("templates: rendered %s", name)
}
