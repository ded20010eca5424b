package demos

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"qdemos/internal/backend"
	"qdemos/internal/circuit"
	"qdemos/internal/sim"
)

// NoisyDevice is the emulated device the noise demo runs on.
const NoisyDevice = "fake_melbourne"

type noisy interface {
	Noise() *sim.NoiseModel
}

func runNoise(ctx context.Context, env *Env) error {
	b, err := env.Provider.Get(NoisyDevice)
	if err != nil {
		return err
	}
	if n, ok := b.(noisy); ok && !n.Noise().IsZero() {
		nm := n.Noise()
		env.printf("Emulating %s: single-qubit error %g, two-qubit error %g, readout error %g\n",
			b.Name(), nm.SingleQubitError, nm.TwoQubitError, nm.ReadoutError)
	}
	cfg := b.Configuration()
	env.printf("Basis gates: %s\n", strings.Join(cfg.BasisGates, ", "))

	c := BellCircuit()
	env.println(c.Draw())
	res, err := env.execute(ctx, b, c)
	if err != nil {
		return err
	}
	env.printf("\nTotal counts are: %s\n", res.Counts)
	return nil
}

// BackendTable lists backends with their width and queue length.
func BackendTable(backends []backend.Backend) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "QUBITS", "SIMULATOR", "PENDING", "STATUS")
	for _, b := range backends {
		cfg, st := b.Configuration(), b.Status()
		t.Row(cfg.Name,
			strconv.Itoa(cfg.NumQubits),
			strconv.FormatBool(cfg.Simulator),
			strconv.Itoa(st.PendingJobs),
			st.Message,
		)
	}
	return t.Render()
}

func runLeastBusy(ctx context.Context, env *Env) error {
	env.println(BackendTable(env.Provider.Backends()))
	b, err := backend.LeastBusy(env.Provider.Backends(
		backend.MaxQubits(5),
		backend.Devices(),
		backend.Operational(),
	))
	if err != nil {
		return err
	}
	env.println("least busy backend: ", b.Name())
	return nil
}

// QuickStartCircuit is the Bell state measured with MeasureAll.
func QuickStartCircuit() *circuit.Circuit {
	c := circuit.New(2, 0)
	c.H(0)
	c.CX(0, 1)
	c.MeasureAll()
	return c
}

func runQuickStart(ctx context.Context, env *Env) error {
	b, err := env.Provider.Get("qasm_simulator")
	if err != nil {
		return err
	}
	transpiled := QuickStartCircuit().Optimize()
	res, err := env.execute(ctx, b, transpiled)
	if err != nil {
		return err
	}
	env.println(res.Counts)
	return nil
}
