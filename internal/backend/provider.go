package backend

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qdemos/internal/sim"
)

// Filter selects backends.
type Filter func(Backend) bool

// MinQubits keeps backends with at least n qubits.
func MinQubits(n int) Filter {
	return func(b Backend) bool { return b.Configuration().NumQubits >= n }
}

// MaxQubits keeps backends with at most n qubits.
func MaxQubits(n int) Filter {
	return func(b Backend) bool { return b.Configuration().NumQubits <= n }
}

// Operational keeps backends that accept jobs.
func Operational() Filter {
	return func(b Backend) bool { return b.Status().Operational }
}

// Devices keeps non-simulator backends.
func Devices() Filter {
	return func(b Backend) bool { return !b.Configuration().Simulator }
}

// Simulators keeps simulator backends.
func Simulators() Filter {
	return func(b Backend) bool { return b.Configuration().Simulator }
}

// Provider is a registry of backends.
type Provider struct {
	mu       sync.RWMutex
	backends []Backend
	logger   *zap.Logger
}

// NewProvider returns a provider holding the given backends.
func NewProvider(logger *zap.Logger, backends ...Backend) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{logger: logger}
	p.Add(backends...)
	return p
}

// NewLocalProvider registers the three simulators and the emulated
// devices. A non-nil noise model replaces the devices' default noise.
func NewLocalProvider(logger *zap.Logger, noise *sim.NoiseModel) *Provider {
	return NewProvider(logger,
		NewQASMSimulator(logger),
		NewStatevectorSimulator(logger),
		NewUnitarySimulator(logger),
		FakeVigo(noise, logger),
		FakeMelbourne(noise, logger),
	)
}

// Add registers backends. A backend with the name of an existing one
// replaces it.
func (p *Provider) Add(backends ...Backend) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range backends {
		replaced := false
		for i, old := range p.backends {
			if old.Name() == b.Name() {
				p.backends[i] = b
				replaced = true
			}
		}
		if !replaced {
			p.backends = append(p.backends, b)
		}
		p.logger.Debug("backend registered", zap.String("backend", b.Name()), zap.Bool("replaced", replaced))
	}
}

// Backends returns the backends passing every filter, in registration
// order.
func (p *Provider) Backends(filters ...Filter) []Backend {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []Backend
outer:
	for _, b := range p.backends {
		for _, f := range filters {
			if !f(b) {
				continue outer
			}
		}
		out = append(out, b)
	}
	return out
}

// Get returns the backend with the given name.
func (p *Provider) Get(name string) (Backend, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, b := range p.backends {
		if b.Name() == name {
			return b, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownBackend, "%q", name)
}

// LeastBusy returns the operational backend with the fewest pending jobs.
// Ties go to the earlier backend.
func LeastBusy(backends []Backend) (Backend, error) {
	type candidate struct {
		b       Backend
		pending int
		order   int
	}
	var cs []candidate
	for i, b := range backends {
		st := b.Status()
		if st.Operational {
			cs = append(cs, candidate{b, st.PendingJobs, i})
		}
	}
	if len(cs) == 0 {
		return nil, errors.WithStack(ErrNoBackends)
	}
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].pending != cs[j].pending {
			return cs[i].pending < cs[j].pending
		}
		return cs[i].order < cs[j].order
	})
	return cs[0].b, nil
}
