package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/gradeview/internal/parser"
	"github.com/dgallion1/gradeview/internal/pipeline"
)

// studentIDRe takes the student id from a leading number in the file name,
// as in "20231024_홍길동.pdf".
var studentIDRe = regexp.MustCompile(`^(\d+)`)

func studentIDFromFilename(name string) int {
	m := studentIDRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return id
}

// handleImport queues a batch of answer files. Each file becomes one job;
// with exam_id set and a grading service configured, jobs submit their
// answer once extracted.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadBytes*int64(s.cfg.MaxBatchFiles) + 10<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > s.cfg.MaxBatchFiles {
		jsonError(w, fmt.Sprintf("too many files (max %d)", s.cfg.MaxBatchFiles), http.StatusBadRequest)
		return
	}

	examID := 0
	if v := r.FormValue("exam_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "exam_id must be a positive integer", http.StatusBadRequest)
			return
		}
		examID = n
	}
	// An explicit student_id only makes sense for a single file.
	fixedStudent, _ := strconv.Atoi(r.FormValue("student_id"))
	if fixedStudent > 0 && len(files) > 1 {
		jsonError(w, "student_id can only be set for a single file", http.StatusBadRequest)
		return
	}

	batchID := pipeline.NewBatchID()
	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}

		job := pipeline.NewJob(batchID, filename, data)
		job.Title = r.FormValue("title")
		job.ExamID = examID
		job.StudentID = fixedStudent
		if job.StudentID == 0 {
			job.StudentID = studentIDFromFilename(filename)
		}

		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"job_id":   job.ID,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename":   filename,
			"job_id":     job.ID,
			"student_id": job.StudentID,
			"status":     pipeline.StatusQueued,
			"poll_url":   fmt.Sprintf("/api/import/jobs/%s", job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"batch_id": batchID,
		"submit":   examID > 0 && s.orchestrator.SubmitEnabled(),
		"poll_url": fmt.Sprintf("/api/import/%s", batchID),
		"jobs":     results,
	})
}

// handleImportBatch reports every job of a batch plus a status tally.
func (s *Server) handleImportBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	jobs := s.orchestrator.Batch(batchID)
	if len(jobs) == 0 {
		jsonError(w, "batch not found", http.StatusNotFound)
		return
	}

	counts := make(map[pipeline.JobStatus]int)
	done := 0
	for _, j := range jobs {
		counts[j.Status]++
		if j.Done() {
			done++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"batch_id": batchID,
		"done":     done == len(jobs),
		"counts":   counts,
		"jobs":     jobs,
	})
}

func (s *Server) handleImportJob(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
