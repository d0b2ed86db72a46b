package services

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
)

// LongRow is one answer flattened for export.
type LongRow struct {
	ResponseID  string
	QuestionID  string
	Driver      string
	ScaleValue  *int
	TextValue   string
	SubmittedAt string // ISO8601
}

// ExportLongCSV renders rows into a long-format CSV, one answer per line.
func ExportLongCSV(rows []LongRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"response_id", "question_id", "driver", "scale_value", "text_value", "submitted_at"})
	for _, r := range rows {
		scale := ""
		if r.ScaleValue != nil {
			scale = strconv.Itoa(*r.ScaleValue)
		}
		rec := []string{r.ResponseID, r.QuestionID, r.Driver, scale, r.TextValue, r.SubmittedAt}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportWideCSV renders a wide-format CSV with one row per response and
// one column per question. inputs is map[responseID]map[questionID]value.
func ExportWideCSV(inputs map[string]map[string]string) ([]byte, error) {
	qSet := map[string]struct{}{}
	for _, m := range inputs {
		for qid := range m {
			qSet[qid] = struct{}{}
		}
	}
	questions := make([]string, 0, len(qSet))
	for qid := range qSet {
		questions = append(questions, qid)
	}
	sort.Strings(questions)

	rids := make([]string, 0, len(inputs))
	for rid := range inputs {
		rids = append(rids, rid)
	}
	sort.Strings(rids)

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := append([]string{"response_id"}, questions...)
	_ = w.Write(header)
	for _, rid := range rids {
		row := make([]string, 0, 1+len(questions))
		row = append(row, rid)
		for _, qid := range questions {
			row = append(row, inputs[rid][qid])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// WideInputs pivots long rows into the wide-export shape.
func WideInputs(rows []LongRow) map[string]map[string]string {
	out := map[string]map[string]string{}
	for _, r := range rows {
		if out[r.ResponseID] == nil {
			out[r.ResponseID] = map[string]string{}
		}
		v := r.TextValue
		if r.ScaleValue != nil {
			v = strconv.Itoa(*r.ScaleValue)
		}
		out[r.ResponseID][r.QuestionID] = v
	}
	return out
}
