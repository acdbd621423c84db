// Package learn implements an observation-table learner that infers a
// Mealy machine for a resettable black box through membership queries
// and an equivalence oracle.
package learn

import (
	"fmt"
	"strings"

	"statelearn/automata"
	"statelearn/sul"
)

const keySep = "\x1f"

func wordKey(word []string) string {
	return strings.Join(word, keySep)
}

// table is the observation table: prefix rows over S and S·A, suffix
// columns over E, cells filled by membership queries. S stays
// prefix-closed and E suffix-closed throughout.
type table struct {
	alphabet []string
	querier  sul.Querier

	prefixes [][]string // S, prefixes[0] is the empty word
	suffixes [][]string // E, starts as the single-symbol suffixes

	cells   map[string][]string // prefix+suffix -> output suffix for E entry
	queries int64
}

func newTable(alphabet []string, querier sul.Querier) *table {
	t := &table{
		alphabet: alphabet,
		querier:  querier,
		prefixes: [][]string{{}},
		cells:    make(map[string][]string),
	}
	for _, a := range alphabet {
		t.suffixes = append(t.suffixes, []string{a})
	}
	return t
}

// cell returns the output word the black box produces for suffix after
// prefix, querying and memoizing on first use.
func (t *table) cell(prefix, suffix []string) ([]string, error) {
	key := wordKey(prefix) + keySep + keySep + wordKey(suffix)
	if out, ok := t.cells[key]; ok {
		return out, nil
	}

	word := append(append([]string{}, prefix...), suffix...)
	outputs, err := t.querier.Query(word)
	if err != nil {
		return nil, err
	}
	t.queries++
	if len(outputs) != len(word) {
		return nil, fmt.Errorf("query returned %d outputs for %d inputs", len(outputs), len(word))
	}
	out := outputs[len(prefix):]
	t.cells[key] = out
	return out, nil
}

// rowSignature identifies the row of a prefix: its cells over all of E.
func (t *table) rowSignature(prefix []string) (string, error) {
	var b strings.Builder
	for _, suffix := range t.suffixes {
		out, err := t.cell(prefix, suffix)
		if err != nil {
			return "", err
		}
		b.WriteString(wordKey(out))
		b.WriteString(keySep + keySep)
	}
	return b.String(), nil
}

func (t *table) hasPrefix(word []string) bool {
	key := wordKey(word)
	for _, p := range t.prefixes {
		if wordKey(p) == key {
			return true
		}
	}
	return false
}

func (t *table) hasSuffix(word []string) bool {
	key := wordKey(word)
	for _, s := range t.suffixes {
		if wordKey(s) == key {
			return true
		}
	}
	return false
}

// close moves one boundary row with an unknown signature into S.
// Reports whether the table changed.
func (t *table) close() (bool, error) {
	known := make(map[string]bool)
	for _, p := range t.prefixes {
		sig, err := t.rowSignature(p)
		if err != nil {
			return false, err
		}
		known[sig] = true
	}
	for _, p := range t.prefixes {
		for _, a := range t.alphabet {
			ext := append(append([]string{}, p...), a)
			sig, err := t.rowSignature(ext)
			if err != nil {
				return false, err
			}
			if !known[sig] {
				t.prefixes = append(t.prefixes, ext)
				return true, nil
			}
		}
	}
	return false, nil
}

// makeConsistent adds one distinguishing suffix when two prefixes with
// equal rows disagree after an input. Reports whether the table changed.
func (t *table) makeConsistent() (bool, error) {
	for i := 0; i < len(t.prefixes); i++ {
		for j := i + 1; j < len(t.prefixes); j++ {
			sigI, err := t.rowSignature(t.prefixes[i])
			if err != nil {
				return false, err
			}
			sigJ, err := t.rowSignature(t.prefixes[j])
			if err != nil {
				return false, err
			}
			if sigI != sigJ {
				continue
			}
			for _, a := range t.alphabet {
				extI := append(append([]string{}, t.prefixes[i]...), a)
				extJ := append(append([]string{}, t.prefixes[j]...), a)
				for _, suffix := range t.suffixes {
					outI, err := t.cell(extI, suffix)
					if err != nil {
						return false, err
					}
					outJ, err := t.cell(extJ, suffix)
					if err != nil {
						return false, err
					}
					if wordKey(outI) != wordKey(outJ) {
						newSuffix := append([]string{a}, suffix...)
						if !t.hasSuffix(newSuffix) {
							t.suffixes = append(t.suffixes, newSuffix)
							return true, nil
						}
					}
				}
			}
		}
	}
	return false, nil
}

// addCounterexample adds every prefix of the counterexample to S.
func (t *table) addCounterexample(cex []string) {
	for i := 1; i <= len(cex); i++ {
		p := cex[:i]
		if !t.hasPrefix(p) {
			t.prefixes = append(t.prefixes, append([]string{}, p...))
		}
	}
}

// hypothesis builds a Mealy machine from a closed, consistent table.
func (t *table) hypothesis(name string) (*automata.Machine, error) {
	index := make(map[string]int)
	var reps [][]string
	for _, p := range t.prefixes {
		sig, err := t.rowSignature(p)
		if err != nil {
			return nil, err
		}
		if _, ok := index[sig]; !ok {
			index[sig] = len(reps)
			reps = append(reps, p)
		}
	}

	m := &automata.Machine{
		Name:   name,
		Inputs: append([]string(nil), t.alphabet...),
		States: make([]automata.State, len(reps)),
	}
	for i, rep := range reps {
		st := automata.State{
			Name:        fmt.Sprintf("s%d", i),
			Transitions: make(map[string]automata.Transition, len(t.alphabet)),
		}
		for _, a := range t.alphabet {
			ext := append(append([]string{}, rep...), a)
			sig, err := t.rowSignature(ext)
			if err != nil {
				return nil, err
			}
			next, ok := index[sig]
			if !ok {
				return nil, fmt.Errorf("table not closed at prefix %v input %q", rep, a)
			}
			out, err := t.cell(rep, []string{a})
			if err != nil {
				return nil, err
			}
			st.Transitions[a] = automata.Transition{Output: out[0], Next: next}
		}
		m.States[i] = st
	}
	return m, m.Validate()
}
