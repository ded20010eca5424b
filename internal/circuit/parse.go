package circuit

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxRegisterSize bounds register declarations read by ParseQASM.
const MaxRegisterSize = 1024

// Pre-compiled regexps for QASM parsing.
var (
	qregRegex     = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	cregRegex     = regexp.MustCompile(`^creg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	qubitRegex    = regexp.MustCompile(`^qubit\s*(?:\[\s*(\d+)\s*\])?\s+(\w+)$`)
	bitRegex      = regexp.MustCompile(`^bit\s*(?:\[\s*(\d+)\s*\])?\s+(\w+)$`)
	measureRegex  = regexp.MustCompile(`^measure\s+(.+?)\s*->\s*(.+)$`)
	measure3Regex = regexp.MustCompile(`^(.+?)\s*=\s*measure\s+(.+)$`)
	ifRegex       = regexp.MustCompile(`^if\s*\(\s*(\w+)(?:\s*\[\s*(\d+)\s*\])?\s*==\s*(\d+)\s*\)\s*(.+)$`)
	ifBlockRegex  = regexp.MustCompile(`if\s*\(([^)]*)\)\s*\{([^}]*)\}`)
	gateRegex     = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]*)\))?\s+(.+)$`)
	operandRegex  = regexp.MustCompile(`^(\w+)(?:\s*\[\s*(\d+)\s*\])?$`)
	commentRegex  = regexp.MustCompile(`//[^\n]*`)
)

// qasmNames maps lower-case QASM gate names onto gate types.
var qasmNames = func() map[string]string {
	m := map[string]string{"cnot": "CX", "u": "U", "cu3": "CU", "cphase": "CP"}
	for t, info := range gateTable {
		m[info.qasm] = t
	}
	return m
}()

// ParseQASM reads an OpenQASM 2.0 program. The OpenQASM 3.0 forms used by
// ToQASM3 (qubit/bit declarations, "c[0] = measure q[0]" and braced if
// blocks) are accepted as well.
func ParseQASM(src string) (*Circuit, error) {
	src = commentRegex.ReplaceAllString(src, "")
	src = ifBlockRegex.ReplaceAllStringFunc(src, func(block string) string {
		m := ifBlockRegex.FindStringSubmatch(block)
		var sb strings.Builder
		for _, stmt := range strings.Split(m[2], ";") {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				sb.WriteString("if(" + m[1] + ") " + stmt + ";")
			}
		}
		return sb.String()
	})

	c := &Circuit{}
	for i, stmt := range strings.Split(src, ";") {
		stmt = strings.Join(strings.Fields(stmt), " ")
		if stmt == "" {
			continue
		}
		if err := c.parseStatement(stmt); err != nil {
			return nil, errors.Wrapf(err, "statement %d %q", i+1, stmt)
		}
	}
	return c, nil
}

func (c *Circuit) parseStatement(stmt string) error {
	switch {
	case strings.HasPrefix(stmt, "OPENQASM"), strings.HasPrefix(stmt, "include"):
		return nil
	case strings.HasPrefix(stmt, "gate "), strings.HasPrefix(stmt, "opaque "):
		return errors.Wrap(ErrUnsupportedGate, "custom gate definitions")
	}

	if m := qregRegex.FindStringSubmatch(stmt); m != nil {
		n, err := registerSize(m[1], m[2])
		if err != nil {
			return err
		}
		c.AddQReg(m[1], n)
		return nil
	}
	if m := cregRegex.FindStringSubmatch(stmt); m != nil {
		n, err := registerSize(m[1], m[2])
		if err != nil {
			return err
		}
		c.AddCReg(m[1], n)
		return nil
	}
	if m := qubitRegex.FindStringSubmatch(stmt); m != nil {
		n, err := registerSize(m[2], m[1])
		if err != nil {
			return err
		}
		c.AddQReg(m[2], n)
		return nil
	}
	if m := bitRegex.FindStringSubmatch(stmt); m != nil {
		n, err := registerSize(m[2], m[1])
		if err != nil {
			return err
		}
		c.AddCReg(m[2], n)
		return nil
	}

	cond := -1
	if m := ifRegex.FindStringSubmatch(stmt); m != nil {
		b, err := c.resolveCondition(m[1], m[2], m[3])
		if err != nil {
			return err
		}
		cond = b
		stmt = m[4]
	}

	if m := measureRegex.FindStringSubmatch(stmt); m != nil {
		return c.parseMeasure(m[1], m[2], cond)
	}
	if m := measure3Regex.FindStringSubmatch(stmt); m != nil {
		return c.parseMeasure(m[2], m[1], cond)
	}

	m := gateRegex.FindStringSubmatch(stmt)
	if m == nil {
		return errors.New("unrecognized statement")
	}
	name := strings.ToLower(m[1])
	args, err := c.operands(m[3])
	if err != nil {
		return err
	}

	switch name {
	case "barrier":
		var qs []int
		for _, a := range args {
			qs = append(qs, a...)
		}
		g := single("BARRIER", 0)
		if len(qs) != c.NumQubits() {
			g.Qubits = qs
		}
		return c.Append(g)
	case "reset":
		return c.broadcast(Gate{Type: "RESET"}, args, cond)
	}

	t, ok := qasmNames[name]
	if !ok {
		return errors.Wrapf(ErrUnsupportedGate, "%q", name)
	}
	params, err := ParseParams(m[2])
	if err != nil {
		return err
	}
	if name == "cu3" {
		params = append(params, 0)
	}
	if len(args) != gateTable[t].qubits {
		return errors.Errorf("%s takes %d qubits, got %d", name, gateTable[t].qubits, len(args))
	}
	return c.broadcast(Gate{Type: t, Params: params}, args, cond)
}

// registerSize parses a declared register size; an empty size (QASM 3
// "qubit q;") means one.
func registerSize(name, size string) (int, error) {
	if size == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(size)
	if err != nil || n < 1 || n > MaxRegisterSize {
		return 0, errors.Wrapf(ErrBadRegister, "%s[%s]: size must be between 1 and %d", name, size, MaxRegisterSize)
	}
	return n, nil
}

// resolveCondition turns "c==1", "c[2]==1" into a flat classical bit.
func (c *Circuit) resolveCondition(reg, idx, val string) (int, error) {
	r, off, ok := c.CReg(reg)
	if !ok {
		return -1, errors.Errorf("unknown classical register %q", reg)
	}
	v, _ := strconv.Atoi(val)
	switch {
	case idx != "":
		i, _ := strconv.Atoi(idx)
		if i >= r.Size || v != 1 {
			return -1, errors.Errorf("unsupported condition %s[%s]==%s", reg, idx, val)
		}
		return off + i, nil
	case r.Size == 1 && v == 1:
		return off, nil
	}
	return -1, errors.Errorf("unsupported condition %s==%s", reg, val)
}

// operands resolves "q[0], r" into flat qubit lists; a bare register
// expands to all of its qubits.
func (c *Circuit) operands(s string) ([][]int, error) {
	var out [][]int
	for _, part := range strings.Split(s, ",") {
		bits, err := resolveOperand(c.QRegs, strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, bits)
	}
	return out, nil
}

func resolveOperand(regs []Register, s string) ([]int, error) {
	m := operandRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, errors.Errorf("bad operand %q", s)
	}
	r, off, ok := lookupReg(regs, m[1])
	if !ok {
		return nil, errors.Errorf("unknown register %q", m[1])
	}
	if m[2] != "" {
		i, _ := strconv.Atoi(m[2])
		if i >= r.Size {
			return nil, errors.Errorf("index %d out of range for %s[%d]", i, r.Name, r.Size)
		}
		return []int{off + i}, nil
	}
	bits := make([]int, r.Size)
	for i := range bits {
		bits[i] = off + i
	}
	return bits, nil
}

// broadcast appends one gate per index of the register-sized operands.
func (c *Circuit) broadcast(tmpl Gate, args [][]int, cond int) error {
	n := 1
	for _, a := range args {
		if len(a) > 1 {
			if n > 1 && len(a) != n {
				return errors.New("register sizes differ")
			}
			n = len(a)
		}
	}
	pick := func(a []int, i int) int {
		if len(a) == 1 {
			return a[0]
		}
		return a[i]
	}
	for i := 0; i < n; i++ {
		g := single(tmpl.Type, 0, tmpl.Params...)
		g.Condition = cond
		switch len(args) {
		case 1:
			g.Target = pick(args[0], i)
		case 2:
			g.Control, g.Target = pick(args[0], i), pick(args[1], i)
		case 3:
			g.Controls = []int{pick(args[0], i)}
			g.Control, g.Target = pick(args[1], i), pick(args[2], i)
		}
		if err := c.Append(g); err != nil {
			return err
		}
	}
	return nil
}

func (c *Circuit) parseMeasure(qs, cs string, cond int) error {
	qubits, err := resolveOperand(c.QRegs, strings.TrimSpace(qs))
	if err != nil {
		return err
	}
	cbits, err := resolveOperand(c.CRegs, strings.TrimSpace(cs))
	if err != nil {
		return err
	}
	if len(qubits) != len(cbits) {
		return errors.New("measure: register sizes differ")
	}
	for i := range qubits {
		g := single("MEASURE", qubits[i])
		g.Cbit = cbits[i]
		g.Condition = cond
		if err := c.Append(g); err != nil {
			return err
		}
	}
	return nil
}
