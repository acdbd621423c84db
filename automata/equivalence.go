package automata

import (
	"errors"
	"fmt"
)

// Distinguish searches for a shortest input word on which the two
// machines produce different outputs. It returns nil when the machines
// are equivalent. Both machines must share the same input alphabet.
func Distinguish(a, b *Machine) ([]string, error) {
	if len(a.Inputs) != len(b.Inputs) {
		return nil, errors.New("input alphabets differ in size")
	}
	inB := make(map[string]bool, len(b.Inputs))
	for _, in := range b.Inputs {
		inB[in] = true
	}
	for _, in := range a.Inputs {
		if !inB[in] {
			return nil, fmt.Errorf("input %q missing from second machine", in)
		}
	}

	type pair struct{ sa, sb int }
	type node struct {
		p      pair
		parent int
		input  string
	}

	visited := map[pair]bool{{0, 0}: true}
	nodes := []node{{p: pair{0, 0}, parent: -1}}

	for head := 0; head < len(nodes); head++ {
		cur := nodes[head]
		for _, in := range a.Inputs {
			ta := a.States[cur.p.sa].Transitions[in]
			tb := b.States[cur.p.sb].Transitions[in]
			if ta.Output != tb.Output {
				// reconstruct the path and append the separating input
				var word []string
				for i := head; nodes[i].parent != -1; i = nodes[i].parent {
					word = append(word, nodes[i].input)
				}
				for l, r := 0, len(word)-1; l < r; l, r = l+1, r-1 {
					word[l], word[r] = word[r], word[l]
				}
				return append(word, in), nil
			}
			np := pair{ta.Next, tb.Next}
			if !visited[np] {
				visited[np] = true
				nodes = append(nodes, node{p: np, parent: head, input: in})
			}
		}
	}
	return nil, nil
}
