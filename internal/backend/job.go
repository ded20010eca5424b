package backend

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"qdemos/internal/sim"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobQueued  JobStatus = "QUEUED"
	JobRunning JobStatus = "RUNNING"
	JobDone    JobStatus = "DONE"
	JobError   JobStatus = "ERROR"
)

// Result is the outcome of a finished job. Which fields are set depends on
// the backend: sampling backends fill Counts, the statevector simulator
// Statevector, the unitary simulator Unitary.
type Result struct {
	JobID       string
	Backend     string
	Shots       int
	Counts      sim.Counts
	Statevector []complex128
	Unitary     [][]complex128
	TimeTaken   time.Duration
}

// Job tracks one submitted circuit.
type Job struct {
	id      string
	backend string

	mu      sync.Mutex
	status  JobStatus
	result  *Result
	message string
	done    chan struct{}
}

func newJob(backend string) *Job {
	return &Job{
		id:      uuid.New().String(),
		backend: backend,
		status:  JobQueued,
		done:    make(chan struct{}),
	}
}

// ID returns the job identifier.
func (j *Job) ID() string { return j.id }

// Backend returns the name of the backend running the job.
func (j *Job) Backend() string { return j.backend }

// Status returns the current state.
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} { return j.done }

func (j *Job) setRunning() {
	j.mu.Lock()
	j.status = JobRunning
	j.mu.Unlock()
}

// complete finishes the job with res, or with err when it is non-nil.
func (j *Job) complete(res *Result, err error) {
	j.mu.Lock()
	if err != nil {
		j.status = JobError
		j.message = err.Error()
	} else {
		res.JobID = j.id
		res.Backend = j.backend
		j.status = JobDone
		j.result = res
	}
	j.mu.Unlock()
	close(j.done)
}

// Result waits for the job and returns its result. A failed job returns an
// error matching ErrJobFailed.
func (j *Job) Result(ctx context.Context) (*Result, error) {
	select {
	case <-j.done:
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "waiting for job %s", j.id)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status == JobError {
		return nil, errors.Wrapf(ErrJobFailed, "job %s on %s: %s", j.id, j.backend, j.message)
	}
	return j.result, nil
}

// ErrorMessage returns the diagnostic of a failed job, or "" otherwise.
func (j *Job) ErrorMessage() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.message
}
