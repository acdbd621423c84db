// Package compare judges learned models against a reference machine:
// exact equivalence verdicts, pairwise differences and fixed smoke
// scenarios.
package compare

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"statelearn/automata"
	"statelearn/logging"
)

type Verdict string

const (
	VerdictCorrect Verdict = "correct"
	VerdictFaulty  Verdict = "faulty"
)

// Scenario is a fixed input word with the outputs a correct machine
// must produce, the smoke-check style of the original exercise.
type Scenario struct {
	Name     string   `json:"name"`
	Word     []string `json:"word"`
	Expected []string `json:"expected"`
}

// ModelReport is the verdict for one learned model.
type ModelReport struct {
	Name            string   `json:"name"`
	States          int      `json:"states"`
	Verdict         Verdict  `json:"verdict"`
	Separating      []string `json:"separating,omitempty"` // shortest word separating model and reference
	Expected        []string `json:"expected,omitempty"`   // reference outputs on Separating
	Actual          []string `json:"actual,omitempty"`     // model outputs on Separating
	FailedScenarios []string `json:"failed_scenarios,omitempty"`
}

// PairDiff records where two learned models first diverge.
type PairDiff struct {
	A        string   `json:"a"`
	B        string   `json:"b"`
	Word     []string `json:"word"`
	OutputsA []string `json:"outputs_a"`
	OutputsB []string `json:"outputs_b"`
}

// Report aggregates one comparison run.
type Report struct {
	Reference   string        `json:"reference"`
	Models      []ModelReport `json:"models"`
	Pairwise    []PairDiff    `json:"pairwise"`
	Correct     []string      `json:"correct"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Engine compares learned models against one reference machine.
type Engine struct {
	reference *automata.Machine
	scenarios []Scenario
}

func NewEngine(reference *automata.Machine, scenarios []Scenario) *Engine {
	return &Engine{reference: reference, scenarios: scenarios}
}

// Compare produces verdicts for every model and pairwise differences
// between them. Models are processed in name order so reports are
// stable across runs.
func (e *Engine) Compare(models map[string]*automata.Machine) (*Report, error) {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)

	report := &Report{
		Reference:   e.reference.Name,
		GeneratedAt: time.Now().UTC(),
	}

	for _, name := range names {
		mr, err := e.judge(name, models[name])
		if err != nil {
			return nil, fmt.Errorf("judging %s: %w", name, err)
		}
		report.Models = append(report.Models, mr)
		if mr.Verdict == VerdictCorrect {
			report.Correct = append(report.Correct, name)
		}
	}

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			diff, err := e.diff(names[i], models[names[i]], names[j], models[names[j]])
			if err != nil {
				return nil, err
			}
			if diff != nil {
				report.Pairwise = append(report.Pairwise, *diff)
			}
		}
	}

	logging.L().Info("comparison finished",
		zap.Int("models", len(report.Models)),
		zap.Strings("correct", report.Correct))
	return report, nil
}

func (e *Engine) judge(name string, model *automata.Machine) (ModelReport, error) {
	mr := ModelReport{Name: name, States: len(model.States)}

	sep, err := automata.Distinguish(model, e.reference)
	if err != nil {
		return mr, err
	}
	if sep == nil {
		mr.Verdict = VerdictCorrect
	} else {
		mr.Verdict = VerdictFaulty
		mr.Separating = sep
		if mr.Expected, err = e.reference.Run(sep); err != nil {
			return mr, err
		}
		if mr.Actual, err = model.Run(sep); err != nil {
			return mr, err
		}
		logging.L().Warn("model diverges from reference",
			zap.String("model", name),
			zap.Strings("word", sep),
			zap.Strings("expected", mr.Expected),
			zap.Strings("actual", mr.Actual))
	}

	for _, sc := range e.scenarios {
		outputs, err := model.Run(sc.Word)
		if err != nil {
			return mr, err
		}
		if !equal(outputs, sc.Expected) {
			mr.FailedScenarios = append(mr.FailedScenarios, sc.Name)
		}
	}
	return mr, nil
}

func (e *Engine) diff(nameA string, a *automata.Machine, nameB string, b *automata.Machine) (*PairDiff, error) {
	sep, err := automata.Distinguish(a, b)
	if err != nil {
		return nil, err
	}
	if sep == nil {
		return nil, nil
	}
	outA, err := a.Run(sep)
	if err != nil {
		return nil, err
	}
	outB, err := b.Run(sep)
	if err != nil {
		return nil, err
	}
	return &PairDiff{A: nameA, B: nameB, Word: sep, OutputsA: outA, OutputsB: outB}, nil
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
