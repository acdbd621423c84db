// Package automata implements deterministic Mealy machines: stepping,
// serialization, DOT export, minimization and equivalence checking.
package automata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrUnknownInput = errors.New("input symbol not in alphabet")

// Transition is the reaction of a state to one input symbol.
type Transition struct {
	Output string `json:"output"`
	Next   int    `json:"next"`
}

// State holds the outgoing transitions of one machine state, keyed by
// input symbol. A valid machine is total: every state has a transition
// for every symbol of the input alphabet.
type State struct {
	Name        string                `json:"name"`
	Transitions map[string]Transition `json:"transitions"`
}

// Machine is a deterministic Mealy machine. State 0 is the initial state.
type Machine struct {
	Name   string   `json:"name"`
	Inputs []string `json:"inputs"`
	States []State  `json:"states"`

	current int
}

// Validate checks determinism bounds and totality over the input alphabet.
func (m *Machine) Validate() error {
	if len(m.States) == 0 {
		return errors.New("machine has no states")
	}
	if len(m.Inputs) == 0 {
		return errors.New("machine has no input alphabet")
	}
	for i, s := range m.States {
		for _, in := range m.Inputs {
			t, ok := s.Transitions[in]
			if !ok {
				return fmt.Errorf("state %d (%s) missing transition for input %q", i, s.Name, in)
			}
			if t.Next < 0 || t.Next >= len(m.States) {
				return fmt.Errorf("state %d (%s) input %q leads to invalid state %d", i, s.Name, in, t.Next)
			}
		}
	}
	return nil
}

// Reset moves the machine back to its initial state.
func (m *Machine) Reset() {
	m.current = 0
}

// Step feeds one input symbol from the current state and returns the output.
func (m *Machine) Step(input string) (string, error) {
	t, ok := m.States[m.current].Transitions[input]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownInput, input)
	}
	m.current = t.Next
	return t.Output, nil
}

// Run resets the machine and returns the outputs for an input word.
func (m *Machine) Run(word []string) ([]string, error) {
	_, outputs, err := m.Walk(0, word)
	return outputs, err
}

// Walk follows word from a given state and returns the destination state
// and the produced outputs. It does not touch the stepping cursor.
func (m *Machine) Walk(from int, word []string) (int, []string, error) {
	if from < 0 || from >= len(m.States) {
		return 0, nil, fmt.Errorf("invalid state %d", from)
	}
	outputs := make([]string, 0, len(word))
	state := from
	for _, in := range word {
		t, ok := m.States[state].Transitions[in]
		if !ok {
			return 0, nil, fmt.Errorf("%w: %q", ErrUnknownInput, in)
		}
		outputs = append(outputs, t.Output)
		state = t.Next
	}
	return state, outputs, nil
}

// Outputs returns the machine's output alphabet in first-seen order.
func (m *Machine) Outputs() []string {
	seen := make(map[string]bool)
	var outputs []string
	for _, s := range m.States {
		for _, in := range m.Inputs {
			t := s.Transitions[in]
			if !seen[t.Output] {
				seen[t.Output] = true
				outputs = append(outputs, t.Output)
			}
		}
	}
	return outputs
}

// Save writes the machine as JSON.
func (m *Machine) Save(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// Load reads a machine from a JSON file written by Save.
func Load(path string) (*Machine, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Machine
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}
