package circuit

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// moments groups gates into columns in which no two gates span a common qubit.
func (c *Circuit) moments() [][]int {
	next := make([]int, c.NumQubits)
	var moments [][]int
	for i, g := range c.Gates {
		lo, hi := slices.Min(g.Qubits), slices.Max(g.Qubits)
		m := 0
		for q := lo; q <= hi; q++ {
			m = max(m, next[q])
		}
		for q := lo; q <= hi; q++ {
			next[q] = m + 1
		}
		for len(moments) <= m {
			moments = append(moments, nil)
		}
		moments[m] = append(moments[m], i)
	}
	return moments
}

func cellLabels(g Gate) map[int]string {
	labels := make(map[int]string)
	q := g.Qubits
	switch g.Kind {
	case CX:
		labels[q[0]], labels[q[1]] = "■", "X"
	case CZ:
		labels[q[0]], labels[q[1]] = "■", "■"
	case Swap:
		labels[q[0]], labels[q[1]] = "x", "x"
	case RZX:
		name := fmt.Sprintf("RZX(%s)", g.Angle)
		if g.Schedule != nil {
			name += "*"
		}
		labels[q[0]], labels[q[1]] = name+":c", name+":t"
	case Measure:
		labels[q[0]] = "M"
	case Barrier:
		for _, b := range q {
			labels[b] = "░"
		}
	case Unitary:
		for i, b := range q {
			labels[b] = fmt.Sprintf("%s:%d", g.Label, i)
		}
	default:
		name := strings.ToUpper(string(g.Kind))
		if g.Kind.Rotation() {
			name = fmt.Sprintf("%s(%s)", name, g.Angle)
		}
		labels[q[0]] = name
	}
	return labels
}

// Draw returns a text diagram with one wire per qubit.
// Calibrated gates are marked with an asterisk.
func (c *Circuit) Draw() string {
	wires := make([]strings.Builder, c.NumQubits)
	prefixWidth := len(fmt.Sprintf("q%d: ", c.NumQubits-1))
	for q := range wires {
		prefix := fmt.Sprintf("q%d: ", q)
		wires[q].WriteString(prefix + strings.Repeat(" ", prefixWidth-len(prefix)) + "─")
	}

	for _, m := range c.moments() {
		cells := make([]string, c.NumQubits)
		for _, gi := range m {
			g := c.Gates[gi]
			for q, l := range cellLabels(g) {
				cells[q] = l
			}
			lo, hi := slices.Min(g.Qubits), slices.Max(g.Qubits)
			for q := lo + 1; q < hi; q++ {
				if cells[q] == "" {
					cells[q] = "│"
				}
			}
		}
		width := 1
		for _, l := range cells {
			width = max(width, utf8.RuneCountInString(l))
		}
		for q, l := range cells {
			pad := width - utf8.RuneCountInString(l)
			wires[q].WriteString(strings.Repeat("─", pad/2) + l + strings.Repeat("─", pad-pad/2) + "─")
		}
	}

	lines := make([]string, 0, c.NumQubits)
	for q := range wires {
		lines = append(lines, wires[q].String())
	}
	return strings.Join(lines, "\n")
}
