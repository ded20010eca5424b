package zx

// mat2 is a matrix over GF(2).
type mat2 [][]uint8

// rowOp records row dst ^= row src.
type rowOp struct{ dst, src int }

func (m mat2) rowAdd(dst, src int) {
	for j := range m[dst] {
		m[dst][j] ^= m[src][j]
	}
}

func (m mat2) rowWeight(i int) int {
	n := 0
	for _, x := range m[i] {
		n += int(x)
	}
	return n
}

// gauss brings m to reduced row echelon form using only row additions and
// returns the additions performed, in order.
func (m mat2) gauss() []rowOp {
	var ops []rowOp
	if len(m) == 0 {
		return nil
	}
	pr := 0
	for col := 0; col < len(m[0]) && pr < len(m); col++ {
		r := -1
		for i := pr; i < len(m); i++ {
			if m[i][col] == 1 {
				r = i
				break
			}
		}
		if r < 0 {
			continue
		}
		if r != pr {
			m.rowAdd(pr, r)
			ops = append(ops, rowOp{pr, r})
		}
		for i := range m {
			if i != pr && m[i][col] == 1 {
				m.rowAdd(i, pr)
				ops = append(ops, rowOp{i, pr})
			}
		}
		pr++
	}
	return ops
}
