// Package importer reads student rows from an .xlsx workbook for bulk
// creation.
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one student line. Grade is either a grade name ("Grade 2") or a
// numeric grade id, resolved later against the live grade list.
type Row struct {
	Line  int
	Name  string
	Grade string
}

var (
	nameHeaders  = []string{"name", "student", "student name", "이름"}
	gradeHeaders = []string{"grade", "grade name", "grade_id", "학년"}
)

// ReadStudents parses the first sheet. The first row must be a header with
// a name column and a grade column. Blank lines are skipped.
func ReadStudents(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	nameCol, gradeCol := -1, -1
	for i, cell := range rows[0] {
		h := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case nameCol < 0 && contains(nameHeaders, h):
			nameCol = i
		case gradeCol < 0 && contains(gradeHeaders, h):
			gradeCol = i
		}
	}
	if nameCol < 0 || gradeCol < 0 {
		return nil, fmt.Errorf("header must contain a name and a grade column")
	}

	var out []Row
	for i, cells := range rows[1:] {
		name := strings.TrimSpace(cellAt(cells, nameCol))
		grade := strings.TrimSpace(cellAt(cells, gradeCol))
		if name == "" && grade == "" {
			continue
		}
		out = append(out, Row{Line: i + 2, Name: name, Grade: grade})
	}
	return out, nil
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
