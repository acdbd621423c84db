// Package sul defines the system-under-learning interface and the query
// wrappers the learner talks through: reset discipline, statistics
// counting and membership-query caching.
package sul

import (
	"sync/atomic"

	"statelearn/automata"
)

// Interface is a resettable black box. Pre must restore the initial
// state before a query and Post runs after it; skipping either makes
// the observed behavior non-deterministic across queries.
type Interface interface {
	Pre()
	Post()
	Step(input string) (string, error)
}

// Querier answers membership queries: the output word a black box
// produces for an input word, starting from the initial state.
type Querier interface {
	Query(word []string) ([]string, error)
}

// Query runs one membership query against s with the full reset
// discipline.
func Query(s Interface, word []string) ([]string, error) {
	s.Pre()
	defer s.Post()

	outputs := make([]string, 0, len(word))
	for _, in := range word {
		out, err := s.Step(in)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

type direct struct {
	s Interface
}

func (d direct) Query(word []string) ([]string, error) {
	return Query(d.s, word)
}

// AsQuerier adapts a raw SUL into a Querier.
func AsQuerier(s Interface) Querier {
	return direct{s: s}
}

// Counter wraps a SUL and counts resets and steps.
type Counter struct {
	inner   Interface
	queries atomic.Int64
	steps   atomic.Int64
}

func NewCounter(inner Interface) *Counter {
	return &Counter{inner: inner}
}

func (c *Counter) Pre() {
	c.queries.Add(1)
	c.inner.Pre()
}

func (c *Counter) Post() {
	c.inner.Post()
}

func (c *Counter) Step(input string) (string, error) {
	c.steps.Add(1)
	return c.inner.Step(input)
}

// Queries returns the number of queries started so far.
func (c *Counter) Queries() int64 { return c.queries.Load() }

// Steps returns the number of input symbols fed so far.
func (c *Counter) Steps() int64 { return c.steps.Load() }

// MachineSUL exposes an automata.Machine as a SUL. Used to re-learn
// serialized machines and as a test double.
type MachineSUL struct {
	m *automata.Machine
}

func NewMachineSUL(m *automata.Machine) *MachineSUL {
	return &MachineSUL{m: m}
}

func (s *MachineSUL) Pre()  { s.m.Reset() }
func (s *MachineSUL) Post() { s.m.Reset() }

func (s *MachineSUL) Step(input string) (string, error) {
	return s.m.Step(input)
}
