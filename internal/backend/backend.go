// Package backend executes circuits. Local backends wrap the statevector
// simulator, emulated devices add a noise model and device limits, and a
// remote backend talks to another process serving the same backends over
// HTTP.
package backend

import (
	"context"

	"github.com/pkg/errors"

	"qdemos/internal/circuit"
)

var (
	// ErrJobFailed is returned by Job.Result when execution failed.
	ErrJobFailed = errors.New("job failed")
	// ErrUnknownBackend is returned when no backend has the requested name.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrTooManyQubits is returned by Run for circuits wider than the
	// backend.
	ErrTooManyQubits = errors.New("circuit has more qubits than the backend")
	// ErrNoBackends is returned by LeastBusy for an empty candidate list.
	ErrNoBackends = errors.New("no backends available")
	// ErrTooManyShots is returned by Run when RunOptions.Shots exceeds
	// MaxShots.
	ErrTooManyShots = errors.New("too many shots")
)

// Configuration describes what a backend can run.
type Configuration struct {
	Name        string   `json:"backend_name"`
	NumQubits   int      `json:"n_qubits"`
	Simulator   bool     `json:"simulator"`
	Local       bool     `json:"local"`
	Conditional bool     `json:"conditional"`
	BasisGates  []string `json:"basis_gates"`
	Description string   `json:"description,omitempty"`
}

// Status is a snapshot of a backend's availability.
type Status struct {
	Name        string `json:"backend_name"`
	Operational bool   `json:"operational"`
	PendingJobs int    `json:"pending_jobs"`
	Message     string `json:"status_msg"`
}

// RunOptions control a single execution.
type RunOptions struct {
	Shots int
	// Seed for the simulator; 0 picks a time-based seed.
	Seed int64
}

const (
	// DefaultShots is used when RunOptions.Shots is not positive.
	DefaultShots = 1024
	// MaxShots bounds RunOptions.Shots.
	MaxShots = 100000
)

func (o RunOptions) validate() error {
	if o.Shots > MaxShots {
		return errors.Wrapf(ErrTooManyShots, "%d shots (limit %d)", o.Shots, MaxShots)
	}
	return nil
}

func (o RunOptions) shots() int {
	if o.Shots <= 0 {
		return DefaultShots
	}
	return o.Shots
}

// Backend runs circuits asynchronously.
type Backend interface {
	Name() string
	Configuration() Configuration
	Status() Status
	// Run submits c. Circuits the backend can never accept are rejected with
	// an error; failures during execution are reported through the job.
	Run(ctx context.Context, c *circuit.Circuit, opts RunOptions) (*Job, error)
}

// Execute submits c to b and waits for the result.
func Execute(ctx context.Context, b Backend, c *circuit.Circuit, opts RunOptions) (*Result, error) {
	job, err := b.Run(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	return job.Result(ctx)
}
