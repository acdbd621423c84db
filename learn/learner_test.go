package learn

import (
	"context"
	"fmt"
	"testing"

	"statelearn/automata"
	"statelearn/oracle"
	"statelearn/sul"
	"statelearn/vending"
)

func toggle() *automata.Machine {
	return &automata.Machine{
		Name:   "toggle",
		Inputs: []string{"a", "b"},
		States: []automata.State{
			{Transitions: map[string]automata.Transition{
				"a": {Output: "left0", Next: 1},
				"b": {Output: "stay", Next: 0},
			}},
			{Transitions: map[string]automata.Transition{
				"a": {Output: "left1", Next: 0},
				"b": {Output: "stay", Next: 1},
			}},
		},
	}
}

// referenceVending builds the correct vending machine as an explicit
// automaton: one state per reachable balance, 0.5 granularity up to the
// cap.
func referenceVending(t *testing.T) *automata.Machine {
	t.Helper()

	alphabet := vending.Alphabet()
	coins := map[string]int{"add_coin:0.5": 50, "add_coin:1": 100, "add_coin:2": 200}
	prices := map[string]int{
		"push_button:coke":    vending.PriceCoke,
		"push_button:peanuts": vending.PricePeanuts,
		"push_button:water":   vending.PriceWater,
	}
	products := map[string]string{
		"push_button:coke":    "Coke",
		"push_button:peanuts": "Peanuts",
		"push_button:water":   "Water",
	}

	states := make([]automata.State, vending.BalanceCap/50+1)
	for i := range states {
		balance := i * 50
		st := automata.State{
			Name:        fmt.Sprintf("b%d", balance),
			Transitions: make(map[string]automata.Transition),
		}
		for _, in := range alphabet {
			if cents, ok := coins[in]; ok {
				if balance+cents > vending.BalanceCap {
					st.Transitions[in] = automata.Transition{Output: vending.OutCoinReturned, Next: i}
				} else {
					st.Transitions[in] = automata.Transition{Output: vending.OutCoinAdded, Next: (balance + cents) / 50}
				}
				continue
			}
			if balance >= prices[in] {
				st.Transitions[in] = automata.Transition{Output: products[in], Next: (balance - prices[in]) / 50}
			} else {
				st.Transitions[in] = automata.Transition{Output: vending.OutNoAction, Next: i}
			}
		}
		states[i] = st
	}

	m := &automata.Machine{Name: "reference", Inputs: alphabet, States: states}
	if err := m.Validate(); err != nil {
		t.Fatalf("reference machine invalid: %v", err)
	}
	return m
}

func learnMachine(t *testing.T, name string, target sul.Interface, alphabet []string, seed int64) (*automata.Machine, Stats) {
	t.Helper()

	counter := sul.NewCounter(target)
	cache, err := sul.NewCache(sul.AsQuerier(counter), 4096)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eq := oracle.NewRandomWord(cache, alphabet, 500, 1, 12, seed)

	learner := NewLearner(name, alphabet, cache, eq)
	hyp, stats, err := learner.Run(context.Background())
	if err != nil {
		t.Fatalf("learning failed: %v", err)
	}
	return hyp, stats
}

func TestLearnToggleMachine(t *testing.T) {
	target := toggle()
	hyp, stats := learnMachine(t, "toggle", sul.NewMachineSUL(target), target.Inputs, 7)

	if len(hyp.States) != 2 {
		t.Fatalf("expected 2 states, got %d", len(hyp.States))
	}
	sep, err := automata.Distinguish(hyp, toggle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sep != nil {
		t.Fatalf("hypothesis differs from target on %v", sep)
	}
	if stats.Rounds < 1 || stats.MembershipQueries == 0 {
		t.Fatalf("implausible stats: %+v", stats)
	}
}

func TestLearnSingleStateMachine(t *testing.T) {
	target := &automata.Machine{
		Inputs: []string{"a", "b"},
		States: []automata.State{
			{Transitions: map[string]automata.Transition{
				"a": {Output: "x", Next: 0},
				"b": {Output: "y", Next: 0},
			}},
		},
	}
	hyp, stats := learnMachine(t, "single", sul.NewMachineSUL(target), target.Inputs, 7)
	if len(hyp.States) != 1 {
		t.Fatalf("expected 1 state, got %d", len(hyp.States))
	}
	if stats.Rounds != 1 {
		t.Fatalf("expected table to close immediately, got %d rounds", stats.Rounds)
	}
}

func TestLearnCorrectVendingMachine(t *testing.T) {
	hyp, _ := learnMachine(t, "vending", vending.NewSUL(vending.NewCorrect()), vending.Alphabet(), 42)

	reference := referenceVending(t)
	if len(hyp.States) != len(reference.Minimize().States) {
		t.Fatalf("expected %d states, got %d", len(reference.Minimize().States), len(hyp.States))
	}
	sep, err := automata.Distinguish(hyp, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sep != nil {
		t.Fatalf("learned machine differs from reference on %v", sep)
	}
}

func TestLearningIsDeterministicForFixedSeed(t *testing.T) {
	first, _ := learnMachine(t, "vending", vending.NewSUL(vending.NewCorrect()), vending.Alphabet(), 99)
	second, _ := learnMachine(t, "vending", vending.NewSUL(vending.NewCorrect()), vending.Alphabet(), 99)

	if len(first.States) != len(second.States) {
		t.Fatalf("state counts differ: %d vs %d", len(first.States), len(second.States))
	}
	sep, err := automata.Distinguish(first, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sep != nil {
		t.Fatalf("same seed produced different machines, separated by %v", sep)
	}
}

func TestLearnFaultyMachineDiffersFromReference(t *testing.T) {
	hyp, _ := learnMachine(t, "wrong_price", vending.NewSUL(vending.NewWrongPrice()), vending.Alphabet(), 42)

	sep, err := automata.Distinguish(hyp, referenceVending(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sep == nil {
		t.Fatalf("expected faulty machine to differ from reference")
	}
}

// brokenOracle claims a counterexample the hypothesis already explains.
type brokenOracle struct {
	querier sul.Querier
}

func (o brokenOracle) FindCounterexample(hyp *automata.Machine) ([]string, error) {
	return []string{hyp.Inputs[0]}, nil
}

func TestLearnerRejectsBogusCounterexample(t *testing.T) {
	target := toggle()
	counter := sul.NewCounter(sul.NewMachineSUL(target))
	querier := sul.AsQuerier(counter)

	learner := NewLearner("toggle", target.Inputs, querier, brokenOracle{querier: querier})
	if _, _, err := learner.Run(context.Background()); err == nil {
		t.Fatalf("expected error for non-counterexample")
	}
}

func TestLearnerHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := toggle()
	learner := NewLearner("toggle", target.Inputs, sul.AsQuerier(sul.NewMachineSUL(target)), brokenOracle{})
	if _, _, err := learner.Run(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
