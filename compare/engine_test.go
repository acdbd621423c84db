package compare

import (
	"reflect"
	"testing"

	"statelearn/automata"
)

func reference() *automata.Machine {
	return &automata.Machine{
		Name:   "reference",
		Inputs: []string{"coin", "button"},
		States: []automata.State{
			{Transitions: map[string]automata.Transition{
				"coin":   {Output: "coin_added", Next: 1},
				"button": {Output: "No_Action", Next: 0},
			}},
			{Transitions: map[string]automata.Transition{
				"coin":   {Output: "coin_returned", Next: 1},
				"button": {Output: "Coke", Next: 0},
			}},
		},
	}
}

// faulty dispenses without consuming the balance.
func faulty() *automata.Machine {
	m := reference()
	m.Name = "faulty"
	m.States[1].Transitions["button"] = automata.Transition{Output: "Coke", Next: 1}
	return m
}

func scenarios() []Scenario {
	return []Scenario{
		{
			Name:     "paid_coke",
			Word:     []string{"coin", "button"},
			Expected: []string{"coin_added", "Coke"},
		},
		{
			Name:     "no_free_coke",
			Word:     []string{"coin", "button", "button"},
			Expected: []string{"coin_added", "Coke", "No_Action"},
		},
	}
}

func TestCompareVerdicts(t *testing.T) {
	engine := NewEngine(reference(), scenarios())
	models := map[string]*automata.Machine{
		"model_good": reference(),
		"model_bad":  faulty(),
	}

	report, err := engine.Compare(models)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(report.Correct, []string{"model_good"}) {
		t.Fatalf("expected model_good correct, got %v", report.Correct)
	}
	if len(report.Models) != 2 {
		t.Fatalf("expected 2 model reports, got %d", len(report.Models))
	}

	// reports come back in name order: model_bad, model_good
	bad := report.Models[0]
	if bad.Name != "model_bad" || bad.Verdict != VerdictFaulty {
		t.Fatalf("unexpected report %+v", bad)
	}
	if bad.Separating == nil {
		t.Fatalf("faulty verdict must carry a separating word")
	}
	if reflect.DeepEqual(bad.Expected, bad.Actual) {
		t.Fatalf("separating word does not separate: %v", bad.Separating)
	}
	if !reflect.DeepEqual(bad.FailedScenarios, []string{"no_free_coke"}) {
		t.Fatalf("expected no_free_coke to fail, got %v", bad.FailedScenarios)
	}

	good := report.Models[1]
	if good.Verdict != VerdictCorrect || good.Separating != nil || good.FailedScenarios != nil {
		t.Fatalf("unexpected report %+v", good)
	}
}

func TestComparePairwise(t *testing.T) {
	engine := NewEngine(reference(), nil)
	report, err := engine.Compare(map[string]*automata.Machine{
		"a": reference(),
		"b": faulty(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Pairwise) != 1 {
		t.Fatalf("expected 1 pairwise diff, got %d", len(report.Pairwise))
	}
	diff := report.Pairwise[0]
	if diff.A != "a" || diff.B != "b" {
		t.Fatalf("unexpected pair %s/%s", diff.A, diff.B)
	}
	if reflect.DeepEqual(diff.OutputsA, diff.OutputsB) {
		t.Fatalf("pairwise word does not separate")
	}
}

func TestCompareIdenticalModelsNoPairwise(t *testing.T) {
	engine := NewEngine(reference(), nil)
	report, err := engine.Compare(map[string]*automata.Machine{
		"a": reference(),
		"b": reference(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Pairwise) != 0 {
		t.Fatalf("expected no pairwise diffs, got %v", report.Pairwise)
	}
	if !reflect.DeepEqual(report.Correct, []string{"a", "b"}) {
		t.Fatalf("expected both correct, got %v", report.Correct)
	}
}
