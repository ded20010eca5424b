package demos

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qdemos/internal/backend"
	"qdemos/internal/circuit"
)

// TeleportPrep starts the teleportation circuit: three qubits, three
// one-bit classical registers, and q[0] rotated by RX(paramX) then
// RY(paramY).
func TeleportPrep(paramX, paramY float64) *circuit.Circuit {
	c := circuit.NewWithRegisters(
		[]circuit.Register{{Name: "q", Size: 3}},
		[]circuit.Register{{Name: "c0", Size: 1}, {Name: "c1", Size: 1}, {Name: "c2", Size: 1}},
	)
	c.RX(paramX, 0)
	c.RY(paramY, 0)
	c.Barrier()
	return c
}

// AppendTeleport moves the state of q[0] onto q[2]: a Bell pair on q[1]
// and q[2], a Bell measurement of q[0] and q[1] into c0 and c1, then X
// and Z on q[2] conditioned on those bits.
func AppendTeleport(c *circuit.Circuit) {
	c.H(1)
	c.CX(1, 2)

	c.CX(0, 1)
	c.H(0)
	c.MeasureRange([]int{0, 1}, []int{0, 1})
	c.Barrier()

	c.X(2).CIf(1)
	c.Z(2).CIf(0)
}

// AppendUndo rotates q[2] back with the negated preparation angles in
// reverse order and measures it into c2, which then always reads 0.
func AppendUndo(c *circuit.Circuit, paramX, paramY float64) {
	c.RY(-paramY, 2)
	c.RX(-paramX, 2)
	c.Measure(2, 2)
}

// TeleportCircuit is the full teleport-and-undo circuit.
func TeleportCircuit(paramX, paramY float64) *circuit.Circuit {
	c := TeleportPrep(paramX, paramY)
	AppendTeleport(c)
	AppendUndo(c, paramX, paramY)
	return c
}

func runTeleport(ctx context.Context, env *Env) error {
	paramX := env.Rand.Float64() * math.Pi
	paramY := env.Rand.Float64() * math.Pi
	env.logger().Debug("teleport angles", zap.Float64("x", paramX), zap.Float64("y", paramY))

	c := TeleportPrep(paramX, paramY)
	in, err := env.statevector(ctx, c)
	if err != nil {
		return errors.Wrap(err, "input state")
	}
	env.printf("\nState vector is: %s\n", in.Format(3))

	AppendTeleport(c)
	env.println("Circuit:")
	env.println(c.Draw())

	out, err := env.statevector(ctx, c)
	if err != nil {
		return errors.Wrap(err, "output state")
	}
	env.printf("\nState vector is: %s\n", out.Format(3))

	AppendUndo(c, paramX, paramY)
	b, err := env.device(backend.MaxQubits(5))
	if err != nil {
		return err
	}
	job, err := b.Run(ctx, c, env.runOptions())
	if err != nil {
		return err
	}
	res, err := job.Result(ctx)
	if errors.Is(err, backend.ErrJobFailed) {
		env.println(job.ErrorMessage())
		return nil
	}
	if err != nil {
		return err
	}
	env.printf("\nTotal counts are: %s\n", res.Counts)
	return nil
}

// TeleportCoherentCircuit teleports q[0] onto q[2] without classical
// control: after the Bell measurement the corrections run as CNOT(q1, q2)
// and CZ(q0, q2). The input is X**paramX then Y**paramY on q[0], with
// exponents in half turns.
func TeleportCoherentCircuit(paramX, paramY float64) *circuit.Circuit {
	c := circuit.New(3, 2)
	c.H(1).CX(1, 2)

	c.RX(math.Pi*paramX, 0)
	c.RY(math.Pi*paramY, 0)

	c.CX(0, 1).H(0)
	c.MeasureRange([]int{0, 1}, []int{0, 1})

	c.CX(1, 2).CZ(0, 2)
	return c
}

func runTeleportCoherent(ctx context.Context, env *Env) error {
	paramX, paramY := env.Rand.Float64(), env.Rand.Float64()
	env.logger().Debug("teleport exponents", zap.Float64("x", paramX), zap.Float64("y", paramY))

	c := TeleportCoherentCircuit(paramX, paramY)
	env.println("Circuit:")
	env.println(c.Draw())

	in := circuit.New(1, 0)
	in.RX(math.Pi*paramX, 0).RY(math.Pi*paramY, 0)
	want, err := env.statevector(ctx, in)
	if err != nil {
		return errors.Wrap(err, "input state")
	}
	got, err := env.statevector(ctx, c)
	if err != nil {
		return errors.Wrap(err, "teleported state")
	}
	env.printf("\nP(1) of q0 before: %.3f\n", want.QubitProbabilities()[0].Prob1)
	env.printf("P(1) of q2 after:  %.3f\n", got.QubitProbabilities()[2].Prob1)
	return nil
}
