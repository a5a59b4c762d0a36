package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/gradeview/internal/export"
	"github.com/dgallion1/gradeview/internal/normalize"
	"github.com/dgallion1/gradeview/internal/parser"
	"github.com/dgallion1/gradeview/internal/rubric"
	"github.com/dgallion1/gradeview/internal/view"
)

// handleView builds the grading view of an answer text and a score list.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var in view.Input
	if !s.decodeJSON(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, view.Build(in))
}

type normalizeRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// handleNormalize runs one of the text normalizers.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	var out string
	switch strings.ToLower(req.Mode) {
	case "", "display":
		out = normalize.ForDisplay(req.Text)
	case "upload":
		out = normalize.ForUpload(req.Text)
	case "tidy":
		out = normalize.Tidy(req.Text)
	default:
		jsonError(w, "mode must be one of display, upload, tidy", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": out})
}

// handleExport renders a report of the posted view input.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var in view.Input
	if !s.decodeJSON(w, r, &in) {
		return
	}
	s.writeReport(w, r, f, view.Build(in))
}

// handleExtract returns the text of an uploaded answer file together with
// the stats of its view.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r, "file", parser.IsSupportedExtension)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	text, err := parser.Extract(bytes.NewReader(up.Data), up.Filename, s.parserOptions())
	if err != nil {
		s.log.Warn("extract failed", "filename", up.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	v := view.Build(view.Input{Text: text})
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": up.Filename,
		"text":     text,
		"problems": v.Problems,
		"stats":    v.Stats,
	})
}

func isScoreFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".json")
}

// handleDecodeScores reads a CSV or JSON score list into records.
func (s *Server) handleDecodeScores(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r, "file", isScoreFile)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	body := bytes.NewReader(up.Data)
	var (
		records []rubric.Record
		err     error
	)
	if strings.HasSuffix(strings.ToLower(up.Filename), ".json") {
		records, err = rubric.DecodeJSON(body)
	} else {
		records, err = rubric.ReadCSV(body)
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if records == nil {
		records = []rubric.Record{}
	}
	f := rubric.Build(records)
	writeJSON(w, http.StatusOK, map[string]any{
		"scores":      records,
		"count":       len(records),
		"problems":    f.ProblemIDs(),
		"grand_total": f.GrandTotal(),
	})
}

type composeRequest struct {
	Problem1  string `json:"problem1_text"`
	Problem2  string `json:"problem2_text"`
	Problem3  string `json:"problem3_text"`
	ExamID    int    `json:"exam_id"`
	StudentID int    `json:"student_id"`
}

// handleCompose normalizes the three answer blocks of a typed submission
// and joins them into one answer text. With exam_id and student_id set and
// a grading service configured, the answer is also stored there.
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if !s.decodeJSON(w, r, &req) {
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxTextBytes)
		if err := r.ParseForm(); err != nil {
			jsonError(w, "invalid form: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Problem1 = r.PostFormValue(normalize.FieldName(1))
		req.Problem2 = r.PostFormValue(normalize.FieldName(2))
		req.Problem3 = r.PostFormValue(normalize.FieldName(3))
		req.ExamID, _ = strconv.Atoi(r.PostFormValue("exam_id"))
		req.StudentID, _ = strconv.Atoi(r.PostFormValue("student_id"))
	}

	fields := normalize.UploadFields([normalize.ProblemCount]string{req.Problem1, req.Problem2, req.Problem3})
	resp := map[string]any{
		"fields": fields,
		"text":   normalize.Compose(fields),
	}

	if req.ExamID > 0 && req.StudentID > 0 {
		if s.backend == nil {
			jsonError(w, "grading service is not configured", http.StatusServiceUnavailable)
			return
		}
		id, err := s.backend.SubmitAnswerText(r.Context(), req.ExamID, req.StudentID, fields)
		if err != nil {
			s.log.Error("submit answer failed", "exam_id", req.ExamID, "student_id", req.StudentID, "error", err)
			jsonError(w, "submit answer: "+err.Error(), http.StatusBadGateway)
			return
		}
		resp["answer_id"] = id
	}
	writeJSON(w, http.StatusOK, resp)
}
