package automata

import (
	"fmt"
	"sort"
	"strings"
)

// Minimize returns an equivalent machine with the minimum number of
// states, built by partition refinement over output signatures. The
// result drops unreachable states; the initial state stays at index 0.
func (m *Machine) Minimize() *Machine {
	reachable := m.reachable()

	// initial partition: states grouped by their output row
	block := make(map[int]int, len(reachable))
	sig := make(map[string]int)
	for _, s := range reachable {
		key := m.outputRow(s)
		id, ok := sig[key]
		if !ok {
			id = len(sig)
			sig[key] = id
		}
		block[s] = id
	}

	// refine until stable: split blocks whose members disagree on the
	// block of any successor
	for {
		next := make(map[int]int, len(reachable))
		nextSig := make(map[string]int)
		for _, s := range reachable {
			var key strings.Builder
			fmt.Fprintf(&key, "%d", block[s])
			for _, in := range m.Inputs {
				fmt.Fprintf(&key, "|%d", block[m.States[s].Transitions[in].Next])
			}
			id, ok := nextSig[key.String()]
			if !ok {
				id = len(nextSig)
				nextSig[key.String()] = id
			}
			next[s] = id
		}
		if len(nextSig) == len(sig) {
			break
		}
		block = next
		sig = make(map[string]int, len(nextSig))
		for k, v := range nextSig {
			sig[k] = v
		}
	}

	// renumber blocks so the initial state's block becomes state 0 and
	// the rest follow in BFS order
	order := make([]int, 0, len(sig))
	index := make(map[int]int)
	rep := make(map[int]int)
	for _, s := range reachable {
		if _, ok := rep[block[s]]; !ok {
			rep[block[s]] = s
		}
	}
	queue := []int{block[0]}
	index[block[0]] = 0
	order = append(order, block[0])
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		s := rep[b]
		for _, in := range m.Inputs {
			nb := block[m.States[s].Transitions[in].Next]
			if _, ok := index[nb]; !ok {
				index[nb] = len(order)
				order = append(order, nb)
				queue = append(queue, nb)
			}
		}
	}

	out := &Machine{
		Name:   m.Name,
		Inputs: append([]string(nil), m.Inputs...),
		States: make([]State, len(order)),
	}
	for _, b := range order {
		s := rep[b]
		st := State{
			Name:        fmt.Sprintf("s%d", index[b]),
			Transitions: make(map[string]Transition, len(m.Inputs)),
		}
		for _, in := range m.Inputs {
			t := m.States[s].Transitions[in]
			st.Transitions[in] = Transition{Output: t.Output, Next: index[block[t.Next]]}
		}
		out.States[index[b]] = st
	}
	return out
}

// reachable returns the states reachable from the initial state, sorted.
func (m *Machine) reachable() []int {
	seen := map[int]bool{0: true}
	queue := []int{0}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, in := range m.Inputs {
			n := m.States[s].Transitions[in].Next
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	states := make([]int, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Ints(states)
	return states
}

func (m *Machine) outputRow(state int) string {
	var b strings.Builder
	for _, in := range m.Inputs {
		b.WriteString(m.States[state].Transitions[in].Output)
		b.WriteByte('\x00')
	}
	return b.String()
}
