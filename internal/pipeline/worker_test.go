package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/gradeview/internal/backend"
	"github.com/dgallion1/gradeview/internal/config"
	"github.com/dgallion1/gradeview/internal/parser"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	failures []error
	calls    int
	fields   map[string]string
}

func (f *fakeSubmitter) SubmitAnswerText(_ context.Context, examID, studentID int, fields map[string]string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.fields = fields
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return 0, err
	}
	return examID*1000 + studentID, nil
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var fastRetry = RetryPolicy{Attempts: 3, Base: time.Millisecond, Max: time.Millisecond}

func newTestWorker(sub Submitter) (*Worker, *JobStore) {
	store := NewJobStore(time.Hour)
	return NewWorker(store, sub, quiet, parser.Options{}, fastRetry), store
}

func answerJob(store *JobStore, text string) *Job {
	job := NewJob("batch", "answer.txt", []byte(text))
	job.ExamID, job.StudentID = 4, 7
	store.Put(job)
	return job
}

func TestWorker_SubmitsProblemBlocks(t *testing.T) {
	sub := &fakeSubmitter{}
	w, store := newTestWorker(sub)
	job := answerJob(store, "문제1 불법행위\n요건을 본다.\n\n문제2 임대차\n대항력")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Result.Errors)
	}
	if snap.Result.AnswerID != 4007 {
		t.Errorf("expected answer id 4007, got %d", snap.Result.AnswerID)
	}
	if snap.Result.Stats.ProblemCount != 2 {
		t.Errorf("expected 2 problems, got %d", snap.Result.Stats.ProblemCount)
	}
	if got := sub.fields["problem1_text"]; got != "불법행위 요건을 본다." {
		t.Errorf("unexpected problem1_text %q", got)
	}
	if got := sub.fields["problem2_text"]; got != "임대차 대항력" {
		t.Errorf("unexpected problem2_text %q", got)
	}
	if got := sub.fields["problem3_text"]; got != "" {
		t.Errorf("expected empty problem3_text, got %q", got)
	}
	if job.FileData() != nil {
		t.Error("expected file data to be released")
	}
}

func TestWorker_RetriesTransientErrors(t *testing.T) {
	sub := &fakeSubmitter{failures: []error{
		&backend.RetryableError{StatusCode: 503},
		&backend.RetryableError{StatusCode: 429},
	}}
	w, store := newTestWorker(sub)
	job := answerJob(store, "답안")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", snap.Status)
	}
	if snap.Result.Attempts != 3 || sub.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", snap.Result.Attempts)
	}
}

func TestWorker_GivesUpOnPermanentError(t *testing.T) {
	sub := &fakeSubmitter{failures: []error{errors.New("status 400: bad exam")}}
	w, store := newTestWorker(sub)
	job := answerJob(store, "답안")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "submitting" {
		t.Fatalf("expected failed in submitting, got %q in %q", snap.Status, snap.Phase)
	}
	if sub.calls != 1 {
		t.Errorf("expected no retry, got %d calls", sub.calls)
	}

	// The hash is released so the same answer can be imported again.
	again := answerJob(store, "답안")
	sub.failures = nil
	w.Process(context.Background(), again)
	if s := again.Snapshot().Status; s != StatusCompleted {
		t.Errorf("expected retry import to complete, got %q", s)
	}
}

func TestWorker_SkipsDuplicates(t *testing.T) {
	w, store := newTestWorker(nil)
	first := answerJob(store, "문제1 같은 답")
	second := answerJob(store, "문제1 같은 답\r\n")

	w.Process(context.Background(), first)
	w.Process(context.Background(), second)

	if s := first.Snapshot().Status; s != StatusCompleted {
		t.Errorf("expected first job completed, got %q", s)
	}
	snap := second.Snapshot()
	if snap.Status != StatusDupSkipped || snap.Result.DuplicateOf != first.ID {
		t.Errorf("expected duplicate of %s, got %q (%q)", first.ID, snap.Status, snap.Result.DuplicateOf)
	}
}

func TestWorker_FailsOnUnsupportedOrEmpty(t *testing.T) {
	w, store := newTestWorker(nil)

	bad := NewJob("batch", "answer.hwp", []byte("x"))
	store.Put(bad)
	w.Process(context.Background(), bad)
	if s := bad.Snapshot(); s.Status != StatusFailed || len(s.Result.Errors) != 1 {
		t.Errorf("expected failed with one error, got %q %v", s.Status, s.Result.Errors)
	}

	empty := answerJob(store, "  \n ")
	w.Process(context.Background(), empty)
	if s := empty.Snapshot().Status; s != StatusFailed {
		t.Errorf("expected failed for empty answer, got %q", s)
	}
}

func TestWorker_NoSubmitWithoutIDs(t *testing.T) {
	sub := &fakeSubmitter{}
	w, store := newTestWorker(sub)
	job := NewJob("batch", "answer.md", []byte("# 문제1\n\n답"))
	store.Put(job)

	w.Process(context.Background(), job)

	if s := job.Snapshot(); s.Status != StatusCompleted || s.Result.AnswerID != 0 {
		t.Errorf("expected completed without submission, got %q %d", s.Status, s.Result.AnswerID)
	}
	if sub.calls != 0 {
		t.Errorf("expected no submit calls, got %d", sub.calls)
	}
}

func TestProblemBlocks(t *testing.T) {
	blocks := problemBlocks("서문\n[문제 2] 둘째\n본문\n문제5 다섯째\n문제3\n셋째")
	want := [3]string{"", "둘째\n본문", "다섯째\n\n셋째"}
	if blocks != want {
		t.Errorf("expected %q, got %q", want, blocks)
	}

	plain := problemBlocks("  표시 없는 답안 ")
	if plain[0] != "표시 없는 답안" || plain[1] != "" {
		t.Errorf("expected whole text in first block, got %q", plain)
	}

	crlf := problemBlocks("첫 줄\r\n둘째 줄\x00\r\n")
	if crlf[0] != "첫 줄\n둘째 줄" {
		t.Errorf("expected canonical text in first block, got %q", crlf[0])
	}
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{Base: time.Second, Max: 4 * time.Second}
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second} {
		d := p.Delay(attempt)
		if d < base || d >= base+base/2 {
			t.Errorf("attempt %d: expected delay in [%v, %v), got %v", attempt, base, base+base/2, d)
		}
	}
	if d := (RetryPolicy{}).Delay(3); d != 0 {
		t.Errorf("expected zero delay without a base, got %v", d)
	}
}

func TestRetryPolicy_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryPolicy{Attempts: 5, Base: time.Hour}.Do(ctx, func() error {
		calls++
		return &backend.RetryableError{StatusCode: 502}
	}, func(int, error) { cancel() })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestOrchestrator_ProcessesBatch(t *testing.T) {
	cfg := config.Config{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, nil, quiet)
	o.Start(context.Background())
	defer o.Stop()

	batch := NewBatchID()
	for _, text := range []string{"문제1 가", "문제1 나", "문제1 가"} {
		if err := o.Submit(NewJob(batch, "a.txt", []byte(text))); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		snaps := o.Batch(batch)
		done := 0
		for _, s := range snaps {
			if s.Done() {
				done++
			}
		}
		if done == 3 {
			counts := map[JobStatus]int{}
			for _, s := range snaps {
				counts[s.Status]++
			}
			if counts[StatusCompleted] != 2 || counts[StatusDupSkipped] != 1 {
				t.Errorf("expected 2 completed and 1 duplicate, got %v", counts)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("batch did not finish, %d/3 done", done)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	o := NewOrchestrator(config.Config{MaxQueueSize: 1, JobTTL: time.Hour}, nil, quiet)
	if err := o.Submit(NewJob("b", "a.txt", nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	job := NewJob("b", "b.txt", nil)
	if err := o.Submit(job); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	if s := job.Snapshot(); s.Status != StatusFailed || s.Phase != "queue_full" {
		t.Errorf("expected failed queue_full, got %q %q", s.Status, s.Phase)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected depth 1, got %d", o.QueueDepth())
	}
}
