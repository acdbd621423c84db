package vending

import (
	"fmt"
	"strings"
)

// Input symbols encode the black-box method and its argument, e.g.
// "add_coin:0.5" or "push_button:coke".
const (
	actionAddCoin    = "add_coin"
	actionPushButton = "push_button"
)

var coinLabels = map[string]int{
	"0.5": 50,
	"1":   100,
	"2":   200,
}

// Alphabet returns the input alphabet of the vending machines: one
// symbol per coin and one per product button.
func Alphabet() []string {
	symbols := []string{
		actionAddCoin + ":0.5",
		actionAddCoin + ":1",
		actionAddCoin + ":2",
	}
	for _, p := range Products {
		symbols = append(symbols, actionPushButton+":"+p)
	}
	return symbols
}

// SUL adapts a vending machine to the learner's SUL interface. Reset
// runs both before and after every query; the original exercise traced
// its non-deterministic learning runs to a missing reset here.
type SUL struct {
	vm Machine
}

func NewSUL(vm Machine) *SUL {
	return &SUL{vm: vm}
}

func (s *SUL) Pre()  { s.vm.Reset() }
func (s *SUL) Post() { s.vm.Reset() }

func (s *SUL) Step(input string) (string, error) {
	action, arg, ok := strings.Cut(input, ":")
	if !ok {
		return "", fmt.Errorf("malformed input symbol %q", input)
	}
	switch action {
	case actionAddCoin:
		cents, ok := coinLabels[arg]
		if !ok {
			return "", fmt.Errorf("unknown coin %q", arg)
		}
		return s.vm.AddCoin(cents), nil
	case actionPushButton:
		return s.vm.PushButton(arg), nil
	default:
		return "", fmt.Errorf("unknown action %q", action)
	}
}
