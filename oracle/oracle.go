// Package oracle provides equivalence oracles for learned hypotheses.
// Every oracle draws from an explicitly seeded source; runs with the
// same seed ask identical test words.
package oracle

import (
	"math/rand"

	"statelearn/automata"
	"statelearn/sul"
)

// shorten trims a failing word to its shortest failing prefix by
// replaying it against hypothesis and black box.
func shorten(hyp *automata.Machine, querier sul.Querier, word []string) ([]string, error) {
	hypOut, err := hyp.Run(word)
	if err != nil {
		return nil, err
	}
	sulOut, err := querier.Query(word)
	if err != nil {
		return nil, err
	}
	for i := range word {
		if hypOut[i] != sulOut[i] {
			return append([]string(nil), word[:i+1]...), nil
		}
	}
	// replay agreed after all; caller treats this as no counterexample
	return nil, nil
}

// RandomWalk walks hypothesis and black box in lockstep with random
// inputs, resetting both with a fixed probability, the oracle the
// original exercise used.
type RandomWalk struct {
	sul       sul.Interface
	alphabet  []string
	steps     int
	resetProb float64
	rng       *rand.Rand
}

func NewRandomWalk(s sul.Interface, alphabet []string, steps int, resetProb float64, seed int64) *RandomWalk {
	return &RandomWalk{
		sul:       s,
		alphabet:  alphabet,
		steps:     steps,
		resetProb: resetProb,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (o *RandomWalk) FindCounterexample(hyp *automata.Machine) ([]string, error) {
	var word []string

	o.sul.Pre()
	hyp.Reset()
	defer o.sul.Post()

	for i := 0; i < o.steps; i++ {
		if len(word) > 0 && o.rng.Float64() < o.resetProb {
			o.sul.Post()
			o.sul.Pre()
			hyp.Reset()
			word = word[:0]
		}

		in := o.alphabet[o.rng.Intn(len(o.alphabet))]
		word = append(word, in)

		sulOut, err := o.sul.Step(in)
		if err != nil {
			return nil, err
		}
		hypOut, err := hyp.Step(in)
		if err != nil {
			return nil, err
		}
		if sulOut != hypOut {
			o.sul.Post()
			o.sul.Pre()
			return shorten(hyp, sul.AsQuerier(o.sul), word)
		}
	}
	return nil, nil
}

// RandomWord queries whole random words of bounded length, comparing
// output words instead of walking stepwise.
type RandomWord struct {
	querier  sul.Querier
	alphabet []string
	words    int
	minLen   int
	maxLen   int
	rng      *rand.Rand
}

func NewRandomWord(querier sul.Querier, alphabet []string, words, minLen, maxLen int, seed int64) *RandomWord {
	if minLen < 1 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	return &RandomWord{
		querier:  querier,
		alphabet: alphabet,
		words:    words,
		minLen:   minLen,
		maxLen:   maxLen,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (o *RandomWord) FindCounterexample(hyp *automata.Machine) ([]string, error) {
	for i := 0; i < o.words; i++ {
		length := o.minLen + o.rng.Intn(o.maxLen-o.minLen+1)
		word := make([]string, length)
		for j := range word {
			word[j] = o.alphabet[o.rng.Intn(len(o.alphabet))]
		}

		sulOut, err := o.querier.Query(word)
		if err != nil {
			return nil, err
		}
		hypOut, err := hyp.Run(word)
		if err != nil {
			return nil, err
		}
		for j := range word {
			if sulOut[j] != hypOut[j] {
				return append([]string(nil), word[:j+1]...), nil
			}
		}
	}
	return nil, nil
}
