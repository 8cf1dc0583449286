/*
jobs.go - Async calculation jobs

PURPOSE:
  The calculate-with-status-polling variant of the calculate endpoint.
  Clients submit the same payload, get a job ID back immediately, and poll
  until the job is completed or failed.

DESIGN:
  Jobs are kept in an in-process map; they are cheap recomputations, not
  durable work, so surviving a restart is not a requirement. A finished
  job stays visible to pollers until the process exits.
*/
package api

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/miqat/qada-engine/qada"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// CalculationJob is one async calculate submission.
type CalculationJob struct {
	ID          string
	Status      JobStatus
	Err         string
	Calculation *qada.DebtCalculation
	CreatedAt   time.Time
}

// JobStore tracks calculation jobs for polling.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*CalculationJob
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*CalculationJob)}
}

// Submit registers a pending job and runs fn in a goroutine. The returned
// job snapshot is safe to serialize immediately.
func (s *JobStore) Submit(fn func() (qada.DebtCalculation, error)) *CalculationJob {
	job := &CalculationJob{
		ID:        uuid.NewString(),
		Status:    JobPending,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	go func() {
		calc, err := fn()

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			job.Status = JobFailed
			job.Err = err.Error()
			log.Printf("[Jobs] calculation job %s failed: %v", job.ID, err)
			return
		}
		job.Status = JobCompleted
		job.Calculation = &calc
	}()

	return s.snapshot(job.ID)
}

// Get returns a snapshot of the job, or nil when unknown.
func (s *JobStore) Get(id string) *CalculationJob {
	return s.snapshot(id)
}

func (s *JobStore) snapshot(id string) *CalculationJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	snap := *job
	if job.Calculation != nil {
		calc := *job.Calculation
		snap.Calculation = &calc
	}
	return &snap
}

func toJobDTO(job *CalculationJob) JobDTO {
	dto := JobDTO{
		ID:        job.ID,
		Status:    string(job.Status),
		Error:     job.Err,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	}
	if job.Calculation != nil {
		calc := toDebtCalculationDTO(*job.Calculation)
		dto.Calculation = &calc
	}
	return dto
}
