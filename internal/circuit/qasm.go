package circuit

import (
	"fmt"
	"strings"
)

type qasmDialect int

const (
	qasm2 qasmDialect = iota
	qasm3
)

// ToQASM returns the circuit as OpenQASM 2.0 against qelib1.inc.
func (c *Circuit) ToQASM() string {
	return c.writeQASM(qasm2)
}

// ToQASM3 returns the circuit as OpenQASM 3.0 against stdgates.inc.
func (c *Circuit) ToQASM3() string {
	return c.writeQASM(qasm3)
}

func (c *Circuit) writeQASM(d qasmDialect) string {
	var sb strings.Builder
	if d == qasm3 {
		sb.WriteString("OPENQASM 3.0;\n")
		sb.WriteString("include \"stdgates.inc\";\n")
		for _, r := range c.CRegs {
			fmt.Fprintf(&sb, "bit[%d] %s;\n", r.Size, r.Name)
		}
		for _, r := range c.QRegs {
			fmt.Fprintf(&sb, "qubit[%d] %s;\n", r.Size, r.Name)
		}
	} else {
		sb.WriteString("OPENQASM 2.0;\n")
		sb.WriteString("include \"qelib1.inc\";\n")
		for _, r := range c.QRegs {
			fmt.Fprintf(&sb, "qreg %s[%d];\n", r.Name, r.Size)
		}
		for _, r := range c.CRegs {
			fmt.Fprintf(&sb, "creg %s[%d];\n", r.Name, r.Size)
		}
	}
	for _, g := range c.Gates {
		c.writeGateQASM(&sb, g, d)
	}
	return sb.String()
}

func (c *Circuit) qubitRef(q int) string {
	r, i := locate(c.QRegs, q)
	return fmt.Sprintf("%s[%d]", r.Name, i)
}

func (c *Circuit) cbitRef(b int) string {
	r, i := locate(c.CRegs, b)
	return fmt.Sprintf("%s[%d]", r.Name, i)
}

// writeGateQASM writes a single gate's QASM representation.
func (c *Circuit) writeGateQASM(sb *strings.Builder, g Gate, d qasmDialect) {
	var stmt string
	switch g.Type {
	case "BARRIER":
		wires := g.Wires(c.NumQubits())
		refs := make([]string, len(wires))
		for i, q := range wires {
			refs[i] = c.qubitRef(q)
		}
		stmt = "barrier " + strings.Join(refs, ", ")
	case "RESET":
		stmt = "reset " + c.qubitRef(g.Target)
	case "MEASURE":
		if d == qasm3 {
			stmt = fmt.Sprintf("%s = measure %s", c.cbitRef(g.Cbit), c.qubitRef(g.Target))
		} else {
			stmt = fmt.Sprintf("measure %s -> %s", c.qubitRef(g.Target), c.cbitRef(g.Cbit))
		}
	default:
		stmt = c.gateStatement(g, d)
	}

	if !g.IsConditioned() {
		fmt.Fprintf(sb, "%s;\n", stmt)
		return
	}
	r, i := locate(c.CRegs, g.Condition)
	cond := fmt.Sprintf("%s[%d]", r.Name, i)
	if r.Size == 1 {
		cond = r.Name
	}
	if d == qasm3 {
		fmt.Fprintf(sb, "if (%s == 1) {\n  %s;\n}\n", cond, stmt)
		return
	}
	fmt.Fprintf(sb, "if(%s==1) %s;\n", cond, stmt)
}

func (c *Circuit) gateStatement(g Gate, d qasmDialect) string {
	name := gateTable[g.Type].qasm
	params := g.Params
	switch g.Type {
	case "UNITARY":
		theta, phi, lambda, _ := g.Matrix.ZYZ()
		name, params = "u3", []float64{theta, phi, lambda}
		if d == qasm3 {
			name = "U"
		}
	case "U":
		if d == qasm3 {
			name = "U"
		} else {
			name = "u3"
		}
	case "CU":
		if d == qasm2 && params[3] == 0 {
			name, params = "cu3", params[:3]
		}
	}

	var sb strings.Builder
	sb.WriteString(name)
	if len(params) > 0 {
		ps := make([]string, len(params))
		for i, p := range params {
			ps[i] = FormatParam(p)
		}
		fmt.Fprintf(&sb, "(%s)", strings.Join(ps, ", "))
	}
	wires := g.Wires(c.NumQubits())
	refs := make([]string, len(wires))
	for i, q := range wires {
		refs[i] = c.qubitRef(q)
	}
	sb.WriteString(" ")
	sb.WriteString(strings.Join(refs, ", "))
	return sb.String()
}
