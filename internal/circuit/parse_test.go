package circuit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNamedCregs(t *testing.T) {
	qasm := `OPENQASM 2.0;
include "qelib1.inc";

qreg q[3];
creg c0[1];
creg c1[1];

h q[1];
cx q[1], q[2];
cx q[0], q[1];
h q[0];
measure q[0] -> c0[0];
measure q[1] -> c1[0];

if(c1==1) x q[2];
if(c0==1) z q[2];`

	c, err := ParseQASM(qasm)
	require.NoError(t, err)
	require.Len(t, c.Gates, 8)

	assert.Equal(t, 3, c.NumQubits())
	assert.Equal(t, 2, c.NumCbits())

	g6 := c.Gates[6]
	assert.Equal(t, "X", g6.Type)
	assert.Equal(t, 2, g6.Target)
	assert.Equal(t, 1, g6.Condition)

	g7 := c.Gates[7]
	assert.Equal(t, "Z", g7.Type)
	assert.Equal(t, 2, g7.Target)
	assert.Equal(t, 0, g7.Condition)

	assert.Equal(t, 1, c.Gates[5].Cbit)
}

func TestParseIndexedCondition(t *testing.T) {
	qasm := `OPENQASM 2.0;
include "qelib1.inc";

qreg q[3];
creg c[3];

h q[0];
measure q[0] -> c[0];
if (c[0]==1) x q[1];`

	c, err := ParseQASM(qasm)
	require.NoError(t, err)
	require.Len(t, c.Gates, 3)

	g2 := c.Gates[2]
	assert.Equal(t, "X", g2.Type)
	assert.Equal(t, 1, g2.Target)
	assert.Equal(t, 0, g2.Condition)
}

func TestParseBroadcast(t *testing.T) {
	qasm := `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q;
barrier q[0],q[1];
measure q -> c;`

	c, err := ParseQASM(qasm)
	require.NoError(t, err)
	require.Len(t, c.Gates, 5)
	assert.Equal(t, "H", c.Gates[0].Type)
	assert.Equal(t, "H", c.Gates[1].Type)
	assert.Equal(t, 1, c.Gates[1].Target)
	assert.Equal(t, "BARRIER", c.Gates[2].Type)
	assert.Nil(t, c.Gates[2].Qubits)
	assert.Equal(t, 1, c.Gates[4].Cbit)
}

func TestParseRejectsUnknownGate(t *testing.T) {
	_, err := ParseQASM("OPENQASM 2.0;\nqreg q[1];\nfoo q[0];")
	assert.ErrorIs(t, err, ErrUnsupportedGate)

	_, err = ParseQASM("OPENQASM 2.0;\nqreg q[1];\nh r[0];")
	assert.Error(t, err)

	_, err = ParseQASM("OPENQASM 2.0;\nqreg q[1];\nh q[3];")
	assert.Error(t, err)
}

func TestParseRegisterSizes(t *testing.T) {
	tests := []struct {
		name string
		decl string
		ok   bool
	}{
		{"qreg", "qreg q[3];", true},
		{"largest qreg", "qreg q[1024];", true},
		{"qreg overflow", "qreg q[99999999999999999999];", false},
		{"qreg too large", "qreg q[1025];", false},
		{"empty qreg", "qreg q[0];", false},
		{"creg overflow", "creg c[99999999999999999999];", false},
		{"qubit default", "qubit q;", true},
		{"qubit overflow", "qubit[99999999999999999999] q;", false},
		{"bit too large", "bit[5000] c;", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQASM(tt.decl)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrBadRegister)
		})
	}
}

func TestRoundTripQASM(t *testing.T) {
	c := New(3, 1)
	c.H(0)
	c.Measure(0, 0)
	c.X(2).CIf(0)

	qasm := c.ToQASM()
	assert.Contains(t, qasm, "if(c==1) x q[2];")

	c2, err := ParseQASM(qasm)
	require.NoError(t, err)
	require.Len(t, c2.Gates, 3)

	g := c2.Gates[2]
	assert.Equal(t, "X", g.Type)
	assert.Equal(t, 2, g.Target)
	assert.Equal(t, 0, g.Condition)
}

func TestPiParamQASMRoundTrip(t *testing.T) {
	c := New(2, 0)
	c.RX(math.Pi/2, 0)
	c.RY(3*math.Pi/4, 1)
	c.RZ(-math.Pi, 0)

	qasm := c.ToQASM()
	assert.Contains(t, qasm, "rx(pi/2) q[0];")
	assert.Contains(t, qasm, "ry(3*pi/4) q[1];")
	assert.Contains(t, qasm, "rz(-pi) q[0];")

	c2, err := ParseQASM(qasm)
	require.NoError(t, err)
	require.Len(t, c2.Gates, 3)

	assert.InDelta(t, math.Pi/2, c2.Gates[0].Params[0], 1e-10)
	assert.InDelta(t, 3*math.Pi/4, c2.Gates[1].Params[0], 1e-10)
	assert.InDelta(t, -math.Pi, c2.Gates[2].Params[0], 1e-10)
}

func TestPiParamTwoQubitQASMRoundTrip(t *testing.T) {
	c := New(3, 0)
	c.CRX(math.Pi/4, 0, 1)

	qasm := c.ToQASM()
	assert.Contains(t, qasm, "crx(pi/4) q[0], q[1];")

	c2, err := ParseQASM(qasm)
	require.NoError(t, err)
	require.Len(t, c2.Gates, 1)

	g := c2.Gates[0]
	assert.Equal(t, "CRX", g.Type)
	assert.Equal(t, 0, g.Control)
	assert.Equal(t, 1, g.Target)
	assert.InDelta(t, math.Pi/4, g.Params[0], 1e-10)
}

func TestQASM3RoundTrip(t *testing.T) {
	c := NewWithRegisters([]Register{{"q", 3}}, []Register{{"c0", 1}, {"c1", 1}})
	c.H(1).CX(1, 2).CX(0, 1).H(0)
	c.Measure(0, 0).Measure(1, 1)
	c.X(2).CIf(1)
	c.CCX(0, 1, 2)
	c.U(0.1, 0.2, 0.3, 0)

	qasm := c.ToQASM3()
	assert.Contains(t, qasm, "OPENQASM 3.0;")
	assert.Contains(t, qasm, "include \"stdgates.inc\";")
	assert.Contains(t, qasm, "qubit[3] q;")
	assert.Contains(t, qasm, "bit[1] c1;")
	assert.Contains(t, qasm, "c0[0] = measure q[0];")
	assert.Contains(t, qasm, "if (c1 == 1) {\n  x q[2];\n}")
	assert.Contains(t, qasm, "ccx q[0], q[1], q[2];")
	assert.Contains(t, qasm, "U(0.1, 0.2, 0.3) q[0];")

	c2, err := ParseQASM(qasm)
	require.NoError(t, err)
	require.Len(t, c2.Gates, len(c.Gates))
	for i := range c.Gates {
		assert.Equal(t, c.Gates[i].Type, c2.Gates[i].Type, "gate %d", i)
		assert.Equal(t, c.Gates[i].Target, c2.Gates[i].Target, "gate %d", i)
		assert.Equal(t, c.Gates[i].Condition, c2.Gates[i].Condition, "gate %d", i)
	}
}

func TestUnitaryEmittedAsU3(t *testing.T) {
	c := New(1, 0)
	h := 1 / math.Sqrt2
	require.NoError(t, c.Unitary(Matrix2{{complex(h, 0), complex(h, 0)}, {complex(h, 0), complex(-h, 0)}}, 0, "had"))

	qasm := c.ToQASM()
	assert.Contains(t, qasm, "u3(pi/2, 0, pi) q[0];")
}

func TestLayersParallelGates(t *testing.T) {
	c, err := ParseQASM(`OPENQASM 2.0;
include "qelib1.inc";
qreg q[4];
creg c[1];

h q[0];
h q[1];
cx q[0], q[1];
x q[2];
`)
	require.NoError(t, err)

	layers := c.Layers()
	assert.Equal(t, []int{0, 0, 1, 0}, layers)
	assert.Equal(t, 2, c.Depth())
}
