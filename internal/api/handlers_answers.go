package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/gradeview/internal/backend"
	"github.com/dgallion1/gradeview/internal/export"
	"github.com/dgallion1/gradeview/internal/view"
)

// loadAnswerView fetches a stored answer and its scores and builds the
// view. It answers the error itself when it fails.
func (s *Server) loadAnswerView(w http.ResponseWriter, r *http.Request) (*view.View, bool) {
	if s.backend == nil {
		jsonError(w, "grading service is not configured", http.StatusServiceUnavailable)
		return nil, false
	}
	answerID, err := strconv.Atoi(chi.URLParam(r, "answerID"))
	if err != nil || answerID <= 0 {
		jsonError(w, "answer id must be a positive integer", http.StatusBadRequest)
		return nil, false
	}

	ctx := r.Context()
	answer, err := s.backend.GetAnswer(ctx, answerID)
	if errors.Is(err, backend.ErrNotFound) {
		jsonError(w, "answer not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.log.Error("fetch answer failed", "answer_id", answerID, "error", err)
		jsonError(w, "fetch answer: "+err.Error(), http.StatusBadGateway)
		return nil, false
	}

	// A failed score fetch still shows the answer, the way an ungraded
	// answer does.
	scores, err := s.backend.GetScores(ctx, answerID)
	if err != nil {
		s.log.Warn("fetch scores failed", "answer_id", answerID, "error", err)
		scores = nil
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		title = "답안 " + strconv.Itoa(answer.ID)
	}
	return view.Build(view.Input{
		Title:   title,
		Text:    answer.Text,
		Records: scores,
		Problem: r.URL.Query().Get("problem"),
	}), true
}

func (s *Server) handleAnswerView(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadAnswerView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAnswerExport(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, ok := s.loadAnswerView(w, r)
	if !ok {
		return
	}
	s.writeReport(w, r, f, v)
}

// handleBackendStats reports grading service latency and queue depth.
func (s *Server) handleBackendStats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"enabled":     s.backend != nil,
		"queue_depth": s.orchestrator.QueueDepth(),
	}
	if s.backend != nil {
		resp["stats"] = s.backend.Stats.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}
