package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgallion1/gradeview/internal/backend"
	"github.com/dgallion1/gradeview/internal/normalize"
	"github.com/dgallion1/gradeview/internal/parser"
	"github.com/dgallion1/gradeview/internal/segment"
	"github.com/dgallion1/gradeview/internal/view"
)

// Submitter stores an answer with the grading service.
type Submitter interface {
	SubmitAnswerText(ctx context.Context, examID, studentID int, fields map[string]string) (int, error)
}

// Worker processes a single import job.
type Worker struct {
	jobs    *JobStore
	backend Submitter
	log     *slog.Logger
	parse   parser.Options
	retry   RetryPolicy
}

// NewWorker creates a worker. A nil submitter disables the submit phase.
func NewWorker(jobs *JobStore, sub Submitter, log *slog.Logger, opts parser.Options, retry RetryPolicy) *Worker {
	return &Worker{
		jobs:    jobs,
		backend: sub,
		log:     log,
		parse:   opts,
		retry:   retry,
	}
}

// Process runs extract, build and submit for one job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "batch_id", job.BatchID, "filename", job.Filename)

	job.SetStatus(StatusExtracting, "extracting")
	text, err := parser.Extract(bytes.NewReader(job.FileData()), job.Filename, w.parse)
	job.releaseFileData()
	if err != nil {
		log.Error("extract failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	if strings.TrimSpace(text) == "" {
		log.Warn("no text extracted")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	hash := ContentHashHex([]byte(normalize.Canonical(text)))
	job.SetContentHash(hash)
	if owner, dup := w.jobs.Claim(hash, job.ID); dup {
		log.Info("duplicate answer, skipping", "duplicate_of", owner)
		job.SetDuplicateOf(owner)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	job.SetStatus(StatusBuilding, "building")
	v := view.Build(view.Input{Title: job.Title, Text: text})
	job.SetView(v)
	log.Info("answer built", "problems", v.Stats.ProblemCount, "paragraphs", v.Stats.ParagraphCount)

	if w.backend == nil || job.ExamID <= 0 || job.StudentID <= 0 {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	job.SetStatus(StatusSubmitting, "submitting")
	fields := normalize.UploadFields(problemBlocks(text))
	var answerID int
	err = w.retry.Do(ctx, func() error {
		job.IncrAttempts()
		var err error
		answerID, err = w.backend.SubmitAnswerText(ctx, job.ExamID, job.StudentID, fields)
		return err
	}, func(attempt int, err error) {
		log.Warn("retryable submit error", "attempt", attempt, "error", err)
	})
	if err != nil {
		log.Error("submit failed", "error", err)
		job.AddError(fmt.Sprintf("submit: %s", err))
		w.jobs.Release(hash, job.ID)
		job.SetStatus(StatusFailed, "submitting")
		return
	}

	job.SetAnswerID(answerID)
	log.Info("answer submitted", "answer_id", answerID)
	job.SetStatus(StatusCompleted, "done")
}

// problemBlocks splits an extracted answer into the per-problem blocks of a
// text submission by problem number. The marker itself is dropped but text
// following it on the same line is kept. Numbers outside 1..3 are appended
// to the last block; an answer with no markers goes to the first block.
func problemBlocks(text string) [normalize.ProblemCount]string {
	var blocks [normalize.ProblemCount]string
	text = normalize.Canonical(text)
	chunks := segment.Problems(text)
	if !chunks.Segmented() {
		blocks[0] = strings.TrimSpace(text)
		return blocks
	}

	for _, id := range chunks.Order() {
		chunk, ok := chunks.Text(id)
		if !ok {
			continue
		}
		first, body, _ := strings.Cut(chunk, "\n")
		if _, rest, ok := segment.Marker(first); ok {
			first = rest
		}
		content := strings.TrimSpace(strings.TrimSpace(first) + "\n" + body)

		slot := normalize.ProblemCount - 1
		if n, err := strconv.Atoi(id); err == nil && n >= 1 && n <= normalize.ProblemCount {
			slot = n - 1
		}
		if blocks[slot] != "" {
			blocks[slot] += "\n\n"
		}
		blocks[slot] += content
	}
	return blocks
}

var _ Submitter = (*backend.Client)(nil)
