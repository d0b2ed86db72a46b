package services

import (
	"strings"
	"testing"
)

func TestExportLongCSV(t *testing.T) {
	rows := []LongRow{
		{ResponseID: "r1", QuestionID: "q1", Driver: "workload_deadlines", ScaleValue: intPtr(4), SubmittedAt: "2025-04-07T10:00:00Z"},
		{ResponseID: "r1", QuestionID: "q2", TextValue: "long, hard week", SubmittedAt: "2025-04-07T10:00:00Z"},
	}
	out, err := ExportLongCSV(rows)
	if err != nil {
		t.Fatalf("ExportLongCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[0] != "response_id,question_id,driver,scale_value,text_value,submitted_at" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "r1,q1,workload_deadlines,4,") {
		t.Fatalf("row 1 = %q", lines[1])
	}
	// Commas in text values stay quoted.
	if !strings.Contains(lines[2], "\"long, hard week\"") {
		t.Fatalf("row 2 = %q", lines[2])
	}
}

func TestExportWideCSV(t *testing.T) {
	rows := []LongRow{
		{ResponseID: "r2", QuestionID: "q1", ScaleValue: intPtr(3)},
		{ResponseID: "r1", QuestionID: "q2", TextValue: "ok"},
		{ResponseID: "r1", QuestionID: "q1", ScaleValue: intPtr(5)},
	}
	out, err := ExportWideCSV(WideInputs(rows))
	if err != nil {
		t.Fatalf("ExportWideCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	want := []string{
		"response_id,q1,q2",
		"r1,5,ok",
		"r2,3,",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestExportLongCSVEmpty(t *testing.T) {
	out, err := ExportLongCSV(nil)
	if err != nil {
		t.Fatalf("ExportLongCSV: %v", err)
	}
	if strings.TrimSpace(string(out)) != "response_id,question_id,driver,scale_value,text_value,submitted_at" {
		t.Fatalf("empty export = %q", out)
	}
}
