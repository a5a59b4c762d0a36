package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/gradeview/internal/view"
)

// JobStatus represents the state of an answer import job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusBuilding   JobStatus = "building"
	StatusSubmitting JobStatus = "submitting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Job tracks the import of one answer file.
type Job struct {
	mu sync.Mutex

	ID        string `json:"job_id"`
	BatchID   string `json:"batch_id"`
	ExamID    int    `json:"exam_id,omitempty"`
	StudentID int    `json:"student_id,omitempty"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Result Result `json:"result"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Result is what an import produced.
type Result struct {
	Stats       view.Stats `json:"stats"`
	Problems    []string   `json:"problems"`
	AnswerID    int        `json:"answer_id,omitempty"`
	DuplicateOf string     `json:"duplicate_of,omitempty"`
	Attempts    int        `json:"attempts"`
	Errors      []string   `json:"errors"`
}

// NewJob creates a queued job for one uploaded file.
func NewJob(batchID, filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        newID(),
		BatchID:   batchID,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// NewBatchID returns an id grouping the jobs of one upload.
func NewBatchID() string { return newID() }

// newID returns a time-ordered UUID so ids sort by creation.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// JobStore is a thread-safe in-memory job registry with TTL eviction. It
// also remembers content hashes so the same answer is imported once.
type JobStore struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	batches map[string][]string
	hashes  map[string]string
	ttl     time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs:    make(map[string]*Job),
		batches: make(map[string][]string),
		hashes:  make(map[string]string),
		ttl:     ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok && job.BatchID != "" {
		s.batches[job.BatchID] = append(s.batches[job.BatchID], job.ID)
	}
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Batch returns the jobs of a batch in submission order.
func (s *JobStore) Batch(batchID string) []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.batches[batchID]
	out := make([]*Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := s.jobs[id]; ok {
			out = append(out, j)
		}
	}
	return out
}

// Claim records hash for jobID. If another live job already holds the
// hash, its id is returned with dup set.
func (s *JobStore) Claim(hash, jobID string) (owner string, dup bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.hashes[hash]; ok && existing != jobID {
		if _, live := s.jobs[existing]; live {
			return existing, true
		}
	}
	s.hashes[hash] = jobID
	return jobID, false
}

// Release forgets hash if jobID holds it, so a failed import can be retried.
func (s *JobStore) Release(hash, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hashes[hash] == jobID {
		delete(s.hashes, hash)
	}
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
	for hash, id := range s.hashes {
		if _, ok := s.jobs[id]; !ok {
			delete(s.hashes, hash)
		}
	}
	for batch, ids := range s.batches {
		live := ids[:0]
		for _, id := range ids {
			if _, ok := s.jobs[id]; ok {
				live = append(live, id)
			}
		}
		if len(live) == 0 {
			delete(s.batches, batch)
		} else {
			s.batches[batch] = live
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Result.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetView records the summary of the built view.
func (j *Job) SetView(v *view.View) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Result.Stats = v.Stats
	j.Result.Problems = v.Problems
	j.UpdatedAt = time.Now()
}

// SetAnswerID records the id the grading service assigned.
func (j *Job) SetAnswerID(id int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Result.AnswerID = id
	j.UpdatedAt = time.Now()
}

// SetDuplicateOf marks the job as a repeat of another job.
func (j *Job) SetDuplicateOf(jobID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Result.DuplicateOf = jobID
	j.UpdatedAt = time.Now()
}

// IncrAttempts counts one submission attempt.
func (j *Job) IncrAttempts() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Result.Attempts++
	j.UpdatedAt = time.Now()
}

// SetContentHash records the hash of the extracted text.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFileData drops the upload once it has been extracted.
func (j *Job) releaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	BatchID   string    `json:"batch_id"`
	ExamID    int       `json:"exam_id,omitempty"`
	StudentID int       `json:"student_id,omitempty"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Result    Result    `json:"result"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	res := j.Result
	res.Errors = append([]string{}, j.Result.Errors...)
	res.Problems = append([]string{}, j.Result.Problems...)
	return JobSnapshot{
		ID:        j.ID,
		BatchID:   j.BatchID,
		ExamID:    j.ExamID,
		StudentID: j.StudentID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		Title:     j.Title,
		Result:    res,
	}
}

// Done reports whether the job reached a terminal status.
func (s JobSnapshot) Done() bool {
	switch s.Status {
	case StatusCompleted, StatusFailed, StatusDupSkipped:
		return true
	}
	return false
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
