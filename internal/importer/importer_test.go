package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func TestReadStudents(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Grade", "Name", "Memo"},
		{"Grade 1", "Kim", "new"},
		{"", "", ""},
		{2, "Lee", ""},
		{"Grade 3", "", ""},
	})

	rows, err := ReadStudents(buf)
	if err != nil {
		t.Fatalf("ReadStudents() error = %v", err)
	}

	want := []Row{
		{Line: 2, Name: "Kim", Grade: "Grade 1"},
		{Line: 4, Name: "Lee", Grade: "2"},
		{Line: 5, Name: "", Grade: "Grade 3"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(rows), len(want), rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestReadStudentsRequiresHeader(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Kim", "Grade 1"},
	})

	_, err := ReadStudents(buf)
	if err == nil || !strings.Contains(err.Error(), "header") {
		t.Errorf("ReadStudents() error = %v, want header error", err)
	}
}

func TestReadStudentsRejectsGarbage(t *testing.T) {
	if _, err := ReadStudents(strings.NewReader("not a workbook")); err == nil {
		t.Errorf("expected error for non-xlsx input")
	}
}
