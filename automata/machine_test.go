package automata

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// twoState builds a toggle machine: "a" flips between s0 and s1, output
// reports the state left behind; "b" self-loops with a constant output.
func twoState() *Machine {
	return &Machine{
		Name:   "toggle",
		Inputs: []string{"a", "b"},
		States: []State{
			{Name: "s0", Transitions: map[string]Transition{
				"a": {Output: "left0", Next: 1},
				"b": {Output: "stay", Next: 0},
			}},
			{Name: "s1", Transitions: map[string]Transition{
				"a": {Output: "left1", Next: 0},
				"b": {Output: "stay", Next: 1},
			}},
		},
	}
}

func TestStepAndReset(t *testing.T) {
	m := twoState()
	if err := m.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := m.Step("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "left0" {
		t.Fatalf("expected left0, got %s", out)
	}
	out, _ = m.Step("a")
	if out != "left1" {
		t.Fatalf("expected left1, got %s", out)
	}

	m.Reset()
	out, _ = m.Step("a")
	if out != "left0" {
		t.Fatalf("expected left0 after reset, got %s", out)
	}

	if _, err := m.Step("c"); err == nil {
		t.Fatalf("expected error for unknown input")
	}
}

func TestRunEmptyWord(t *testing.T) {
	m := twoState()
	outputs, err := m.Run(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outputs) != 0 {
		t.Fatalf("expected no outputs, got %v", outputs)
	}
}

func TestWalk(t *testing.T) {
	m := twoState()
	dest, outputs, err := m.Walk(1, []string{"b", "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest != 0 {
		t.Fatalf("expected destination 0, got %d", dest)
	}
	if !reflect.DeepEqual(outputs, []string{"stay", "left1"}) {
		t.Fatalf("unexpected outputs: %v", outputs)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	m := twoState()
	path := filepath.Join(t.TempDir(), "toggle.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sep, err := Distinguish(m, loaded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sep != nil {
		t.Fatalf("loaded machine differs on %v", sep)
	}
}

func TestValidateRejectsPartialMachine(t *testing.T) {
	m := twoState()
	delete(m.States[1].Transitions, "b")
	if err := m.Validate(); err == nil {
		t.Fatalf("expected error for missing transition")
	}
}

func TestMinimizeMergesEquivalentStates(t *testing.T) {
	// s1 and s2 behave identically, s2 only reachable through s1
	m := &Machine{
		Inputs: []string{"a"},
		States: []State{
			{Transitions: map[string]Transition{"a": {Output: "x", Next: 1}}},
			{Transitions: map[string]Transition{"a": {Output: "y", Next: 2}}},
			{Transitions: map[string]Transition{"a": {Output: "y", Next: 1}}},
		},
	}
	min := m.Minimize()
	if len(min.States) != 2 {
		t.Fatalf("expected 2 states, got %d", len(min.States))
	}
	sep, err := Distinguish(m, min)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sep != nil {
		t.Fatalf("minimized machine differs on %v", sep)
	}
}

func TestMinimizeDropsUnreachable(t *testing.T) {
	m := twoState()
	m.States = append(m.States, State{Name: "dead", Transitions: map[string]Transition{
		"a": {Output: "never", Next: 2},
		"b": {Output: "never", Next: 2},
	}})
	min := m.Minimize()
	if len(min.States) != 2 {
		t.Fatalf("expected unreachable state dropped, got %d states", len(min.States))
	}
}

func TestDistinguishFindsShortestWord(t *testing.T) {
	a := twoState()
	b := twoState()
	// divergence only after a transition into s1
	b.States[1].Transitions["b"] = Transition{Output: "changed", Next: 1}

	sep, err := Distinguish(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(sep, []string{"a", "b"}) {
		t.Fatalf("expected [a b], got %v", sep)
	}

	outA, _ := a.Run(sep)
	outB, _ := b.Run(sep)
	if reflect.DeepEqual(outA, outB) {
		t.Fatalf("separating word does not separate: %v vs %v", outA, outB)
	}
}

func TestDistinguishEquivalent(t *testing.T) {
	sep, err := Distinguish(twoState(), twoState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sep != nil {
		t.Fatalf("expected equivalence, got %v", sep)
	}
}

func TestWriteDOT(t *testing.T) {
	m := twoState()
	var b strings.Builder
	if err := m.WriteDOT(&b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dot := b.String()
	for _, want := range []string{"digraph", "__start -> s0", "s0 -> s1", "a/left0"} {
		if !strings.Contains(dot, want) {
			t.Fatalf("DOT output missing %q:\n%s", want, dot)
		}
	}
}
