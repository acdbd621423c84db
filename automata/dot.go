package automata

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// WriteDOT renders the machine in Graphviz DOT format. Transitions that
// share source and destination are merged onto one edge.
func (m *Machine) WriteDOT(w io.Writer) error {
	var b strings.Builder
	name := m.Name
	if name == "" {
		name = "mealy"
	}
	fmt.Fprintf(&b, "digraph %q {\n", name)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle];\n")
	b.WriteString("  __start [shape=point];\n")
	b.WriteString("  __start -> s0;\n")

	for i, s := range m.States {
		label := s.Name
		if label == "" {
			label = fmt.Sprintf("s%d", i)
		}
		fmt.Fprintf(&b, "  s%d [label=%q];\n", i, label)
	}

	for i, s := range m.States {
		// group edges by destination so parallel transitions collapse
		edges := make(map[int][]string)
		for _, in := range m.Inputs {
			t := s.Transitions[in]
			edges[t.Next] = append(edges[t.Next], fmt.Sprintf("%s/%s", in, t.Output))
		}
		for j := 0; j < len(m.States); j++ {
			labels, ok := edges[j]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  s%d -> s%d [label=%q];\n", i, j, strings.Join(labels, "\\n"))
		}
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// SaveDOT writes the DOT rendering to a file.
func (m *Machine) SaveDOT(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.WriteDOT(f)
}
