package circuit

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bell() *Circuit {
	c := New(2, 2)
	c.H(0)
	c.CX(0, 1)
	c.Measure(0, 0)
	c.Measure(1, 1)
	return c
}

func TestBuilders(t *testing.T) {
	c := bell()
	require.Len(t, c.Gates, 4)
	assert.Equal(t, "H", c.Gates[0].Type)
	assert.Equal(t, -1, c.Gates[0].Control)
	assert.Equal(t, "CX", c.Gates[1].Type)
	assert.Equal(t, 0, c.Gates[1].Control)
	assert.Equal(t, 1, c.Gates[1].Target)
	assert.Equal(t, 1, c.Gates[3].Cbit)

	assert.Panics(t, func() { c.H(2) })
	assert.Panics(t, func() { c.CX(1, 1) })
	assert.Panics(t, func() { c.Measure(0, 5) })
}

func TestRegisters(t *testing.T) {
	c := &Circuit{}
	r := c.AddQReg("r", 1)
	a := c.AddQReg("alice", 1)
	q := c.AddQReg("q", 2)
	assert.Equal(t, 0, r)
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, q)
	assert.Equal(t, "alice", c.QubitLabel(1))
	assert.Equal(t, "q[1]", c.QubitLabel(3))

	c.AddCReg("c0", 1)
	off := c.AddCReg("c1", 2)
	assert.Equal(t, 1, off)
	reg, idx := c.CbitRegister(2)
	assert.Equal(t, "c1", reg.Name)
	assert.Equal(t, 1, idx)
}

func TestMeasureAll(t *testing.T) {
	c := New(2, 0)
	c.H(0).CX(0, 1).MeasureAll()
	require.Len(t, c.CRegs, 1)
	assert.Equal(t, Register{Name: "meas", Size: 2}, c.CRegs[0])
	assert.Equal(t, "BARRIER", c.Gates[2].Type)
	assert.Equal(t, 1, c.Gates[4].Cbit)
}

func TestCompose(t *testing.T) {
	sub := New(2, 0)
	sub.H(0).CX(0, 1).Barrier()

	c := New(3, 0)
	require.NoError(t, c.Compose(sub, []int{2, 0}, nil))
	require.Len(t, c.Gates, 3)
	assert.Equal(t, 2, c.Gates[0].Target)
	assert.Equal(t, 2, c.Gates[1].Control)
	assert.Equal(t, 0, c.Gates[1].Target)
	assert.Equal(t, []int{2, 0}, c.Gates[2].Qubits)

	assert.Error(t, c.Compose(sub, []int{0}, nil))
}

func TestInverse(t *testing.T) {
	c := New(2, 0)
	c.S(0).T(1).RX(0.3, 0).CX(0, 1).U(0.1, 0.2, 0.3, 1)

	inv, err := c.Inverse()
	require.NoError(t, err)
	require.Len(t, inv.Gates, 5)
	assert.Equal(t, "U", inv.Gates[0].Type)
	assert.Equal(t, []float64{-0.1, -0.3, -0.2}, inv.Gates[0].Params)
	assert.Equal(t, "CX", inv.Gates[1].Type)
	assert.Equal(t, -0.3, inv.Gates[2].Params[0])
	assert.Equal(t, "TDG", inv.Gates[3].Type)
	assert.Equal(t, "SDG", inv.Gates[4].Type)

	_, err = bell().Inverse()
	assert.ErrorIs(t, err, ErrNotInvertible)
}

func TestUnitaryChecked(t *testing.T) {
	c := New(1, 0)
	err := c.Unitary(Matrix2{{1, 1}, {0, 1}}, 0, "bad")
	assert.ErrorIs(t, err, ErrNotUnitary)

	third := math.Sqrt(1.0 / 3)
	twoThirds := math.Sqrt(2.0 / 3)
	err = c.Unitary(Matrix2{
		{complex(third, 0), complex(twoThirds, 0)},
		{complex(twoThirds, 0), complex(-third, 0)},
	}, 0, "hardy")
	require.NoError(t, err)
	assert.Equal(t, "hardy", c.Gates[0].Name())
}

func TestInitialize(t *testing.T) {
	c := New(1, 0)
	require.NoError(t, c.Initialize(0, complex(math.Sqrt(1.0/3), 0), complex(math.Sqrt(2.0/3), 0)))
	require.Len(t, c.Gates, 2)
	assert.Equal(t, "RESET", c.Gates[0].Type)
	assert.Equal(t, "RY", c.Gates[1].Type)
	assert.InDelta(t, 2*math.Atan(math.Sqrt2), c.Gates[1].Params[0], 1e-12)

	assert.Error(t, c.Initialize(0, 1, 1))
}

func TestZYZRecoversU3(t *testing.T) {
	angles := [][3]float64{{0.4, 1.1, -0.7}, {math.Pi, 0.3, 0}, {0, 0, 0.9}, {2.2, -2.5, 3.0}}
	for _, a := range angles {
		th, ph, la := a[0], a[1], a[2]
		c, s := complex(math.Cos(th/2), 0), complex(math.Sin(th/2), 0)
		m := Matrix2{
			{c, -cexp(la) * s},
			{cexp(ph) * s, cexp(ph+la) * c},
		}
		gotTh, gotPh, gotLa, gamma := m.ZYZ()
		cg, sg := complex(math.Cos(gotTh/2), 0), complex(math.Sin(gotTh/2), 0)
		rebuilt := Matrix2{
			{cg, -cexp(gotLa) * sg},
			{cexp(gotPh) * sg, cexp(gotPh+gotLa) * cg},
		}
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				want := m[i][j]
				got := cexp(gamma) * rebuilt[i][j]
				assert.InDelta(t, real(want), real(got), 1e-9, "angles %v", a)
				assert.InDelta(t, imag(want), imag(got), 1e-9, "angles %v", a)
			}
		}
	}
}

func cexp(x float64) complex128 {
	return complex(math.Cos(x), math.Sin(x))
}

func TestDraw(t *testing.T) {
	out := bell().Draw()
	lines := strings.Split(out, "\n")

	assert.Contains(t, out, "┤ H ├")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "⊕")
	assert.Contains(t, out, "┤ M ├")
	assert.Contains(t, out, "╩")
	assert.Contains(t, out, "c: 2/")

	var q0, c0 string
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "q[0]:") {
			q0 = l
		}
		if strings.HasPrefix(strings.TrimSpace(l), "c: 2/") {
			c0 = l
		}
	}
	require.NotEmpty(t, q0)
	require.NotEmpty(t, c0)
	assert.Less(t, strings.Index(q0, "H"), strings.Index(q0, "●"))
}

func TestDrawConditionedGate(t *testing.T) {
	c := NewWithRegisters([]Register{{"q", 3}}, []Register{{"c0", 1}, {"c1", 1}})
	c.Measure(1, 1)
	c.X(2).CIf(1)
	out := c.Draw()
	assert.Contains(t, out, "■")
	assert.Contains(t, out, "=1")
	assert.Contains(t, out, "╬")
}

func TestDrawStyledKeepsLayout(t *testing.T) {
	plain := bell().Draw()
	styled := bell().DrawStyled(DefaultStyles())
	assert.Equal(t, strings.Count(plain, "\n"), strings.Count(styled, "\n"))
}

func TestStats(t *testing.T) {
	c := New(2, 0)
	c.H(0).T(0).CX(0, 1).S(1).P(math.Pi/4, 1)
	stats := c.Stats()
	assert.Contains(t, stats, "Circuit on 2 qubits with 5 gates.")
	assert.Contains(t, stats, "2 is the T-count")
	assert.Contains(t, stats, "3 Cliffords among which")
	assert.Contains(t, stats, "1 2-qubit gates (1 CNOT, 0 other) and")
	assert.Contains(t, stats, "1 Hadamard gates.")
}

func TestOptimize(t *testing.T) {
	t.Run("cancels self-inverse pairs", func(t *testing.T) {
		c := New(2, 0)
		c.H(0).H(0).CX(0, 1).CX(0, 1).S(1).Sdg(1)
		assert.Empty(t, c.Optimize().Gates)
	})

	t.Run("merges rotations", func(t *testing.T) {
		c := New(1, 0)
		c.RZ(0.25, 0).RZ(0.5, 0)
		out := c.Optimize()
		require.Len(t, out.Gates, 1)
		assert.InDelta(t, 0.75, out.Gates[0].Params[0], 1e-12)
		assert.Len(t, c.Gates, 2, "input is left untouched")
	})

	t.Run("drops full turns", func(t *testing.T) {
		c := New(1, 0)
		c.RZ(math.Pi, 0).RZ(math.Pi, 0)
		assert.Empty(t, c.Optimize().Gates)
	})

	t.Run("cascades", func(t *testing.T) {
		c := New(1, 0)
		c.H(0).X(0).X(0).H(0)
		assert.Empty(t, c.Optimize().Gates)
	})

	t.Run("respects blocking gates", func(t *testing.T) {
		c := New(2, 0)
		c.CX(0, 1).H(1).CX(0, 1)
		c.X(0).Barrier().X(0)
		assert.Len(t, c.Optimize().Gates, 6)
	})
}

func TestRandom(t *testing.T) {
	c := Random(4, 4, rand.New(rand.NewSource(1)))
	assert.Equal(t, 4, c.NumQubits())
	assert.Equal(t, 4, c.Depth())
	for _, g := range c.Gates {
		assert.True(t, g.IsUnitary(), g.Type)
		assert.Len(t, g.Params, NumParams(g.Type))
	}
}
