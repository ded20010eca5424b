package backend

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qdemos/internal/circuit"
	"qdemos/internal/sim"
)

type method int

const (
	sampling method = iota
	statevector
	unitary
)

// Local runs circuits in-process.
type Local struct {
	config  Configuration
	method  method
	noise   *sim.NoiseModel
	queue   int // jobs reported as queued ahead of ours
	logger  *zap.Logger
	pending atomic.Int64
}

var deviceBasis = []string{"id", "rz", "sx", "x", "cx", "reset"}

func newLocal(cfg Configuration, m method, logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Local = true
	if cfg.BasisGates == nil {
		cfg.BasisGates = qasmNames(circuit.StandardGates)
	}
	return &Local{config: cfg, method: m, logger: logger.With(zap.String("backend", cfg.Name))}
}

func qasmNames(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, circuit.QASMName(t))
	}
	return out
}

// NewQASMSimulator samples measurement counts.
func NewQASMSimulator(logger *zap.Logger) *Local {
	return newLocal(Configuration{
		Name:        "qasm_simulator",
		NumQubits:   sim.MaxQubits,
		Simulator:   true,
		Conditional: true,
		Description: "statevector sampling simulator",
	}, sampling, logger)
}

// NewStatevectorSimulator returns the final state of one run. Measurements
// collapse the state.
func NewStatevectorSimulator(logger *zap.Logger) *Local {
	return newLocal(Configuration{
		Name:        "statevector_simulator",
		NumQubits:   sim.MaxQubits,
		Simulator:   true,
		Conditional: true,
		Description: "final statevector of a single shot",
	}, statevector, logger)
}

// NewUnitarySimulator returns the matrix of a unitary circuit.
func NewUnitarySimulator(logger *zap.Logger) *Local {
	return newLocal(Configuration{
		Name:        "unitary_simulator",
		NumQubits:   sim.MaxUnitaryQubits,
		Simulator:   true,
		Description: "unitary matrix of a measurement-free circuit",
	}, unitary, logger)
}

// NewFakeDevice emulates a device with the given width and noise. Device
// backends do not support classically conditioned gates.
func NewFakeDevice(name string, qubits, queue int, noise *sim.NoiseModel, logger *zap.Logger) *Local {
	l := newLocal(Configuration{
		Name:        name,
		NumQubits:   qubits,
		BasisGates:  deviceBasis,
		Description: fmt.Sprintf("%d-qubit emulated device", qubits),
	}, sampling, logger)
	l.noise = noise
	l.queue = queue
	return l
}

// DefaultVigoNoise and DefaultMelbourneNoise are the noise models of the
// emulated devices.
var (
	DefaultVigoNoise      = sim.NoiseModel{SingleQubitError: 0.001, TwoQubitError: 0.01, ReadoutError: 0.02}
	DefaultMelbourneNoise = sim.NoiseModel{SingleQubitError: 0.002, TwoQubitError: 0.03, ReadoutError: 0.04}
)

// FakeVigo is a 5-qubit emulated device.
func FakeVigo(noise *sim.NoiseModel, logger *zap.Logger) *Local {
	if noise == nil {
		n := DefaultVigoNoise
		noise = &n
	}
	return NewFakeDevice("fake_vigo", 5, 2, noise, logger)
}

// FakeMelbourne is a 14-qubit emulated device.
func FakeMelbourne(noise *sim.NoiseModel, logger *zap.Logger) *Local {
	if noise == nil {
		n := DefaultMelbourneNoise
		noise = &n
	}
	return NewFakeDevice("fake_melbourne", 14, 5, noise, logger)
}

func (l *Local) Name() string { return l.config.Name }

func (l *Local) Configuration() Configuration { return l.config }

func (l *Local) Status() Status {
	return Status{
		Name:        l.config.Name,
		Operational: true,
		PendingJobs: l.queue + int(l.pending.Load()),
		Message:     "active",
	}
}

// Noise returns the device noise model, nil for ideal simulators.
func (l *Local) Noise() *sim.NoiseModel { return l.noise }

func (l *Local) Run(ctx context.Context, c *circuit.Circuit, opts RunOptions) (*Job, error) {
	if n := c.NumQubits(); n > l.config.NumQubits {
		return nil, errors.Wrapf(ErrTooManyQubits, "%d qubits on %s (%d available)", n, l.config.Name, l.config.NumQubits)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	job := newJob(l.config.Name)
	c = c.Copy()
	l.pending.Add(1)
	pendingJobs.WithLabelValues(l.config.Name).Inc()
	go l.execute(ctx, job, c, opts)
	return job, nil
}

func (l *Local) execute(ctx context.Context, job *Job, c *circuit.Circuit, opts RunOptions) {
	defer func() {
		l.pending.Add(-1)
		pendingJobs.WithLabelValues(l.config.Name).Dec()
	}()
	start := time.Now()
	job.setRunning()

	res, err := l.simulate(ctx, c, opts)
	took := time.Since(start)
	if err != nil {
		l.logger.Warn("job failed", zap.String("job", job.ID()), zap.Error(err))
		recordJob(l.config.Name, JobError, took, 0)
		job.complete(nil, err)
		return
	}
	res.TimeTaken = took
	l.logger.Debug("job done",
		zap.String("job", job.ID()),
		zap.Int("qubits", c.NumQubits()),
		zap.Int("shots", res.Shots),
		zap.Duration("took", took),
	)
	recordJob(l.config.Name, JobDone, took, res.Shots)
	job.complete(res, nil)
}

func (l *Local) simulate(ctx context.Context, c *circuit.Circuit, opts RunOptions) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.config.Conditional {
		for _, g := range c.Gates {
			if g.IsConditioned() {
				return nil, errors.Errorf("instruction c_if is not supported on device %s", l.config.Name)
			}
		}
	}
	switch l.method {
	case statevector:
		s, err := sim.Statevector(c, sim.NewRand(opts.Seed))
		if err != nil {
			return nil, err
		}
		return &Result{Statevector: s.Amplitudes}, nil
	case unitary:
		u, err := sim.Unitary(c)
		if err != nil {
			return nil, err
		}
		return &Result{Unitary: u}, nil
	}
	shots := opts.shots()
	counts, err := sim.RunContext(ctx, c, sim.Options{Shots: shots, Seed: opts.Seed, Noise: l.noise})
	if err != nil {
		return nil, err
	}
	return &Result{Counts: counts, Shots: shots}, nil
}
