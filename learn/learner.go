package learn

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"statelearn/automata"
	"statelearn/logging"
	"statelearn/sul"
)

// EquivalenceOracle searches for an input word on which the hypothesis
// and the black box disagree. A nil counterexample accepts the
// hypothesis.
type EquivalenceOracle interface {
	FindCounterexample(hyp *automata.Machine) ([]string, error)
}

// Stats summarizes one learning run. Steps counts the input symbols
// actually fed to the black box; the learner cannot see past its
// querier, so the caller fills it from a sul.Counter.
type Stats struct {
	Rounds             int           `json:"rounds"`
	MembershipQueries  int64         `json:"membership_queries"`
	Steps              int64         `json:"steps"`
	EquivalenceQueries int           `json:"equivalence_queries"`
	Duration           time.Duration `json:"duration"`
}

// Event is emitted after every learning round for progress reporting.
type Event struct {
	Round          int      `json:"round"`
	States         int      `json:"states"`
	Counterexample []string `json:"counterexample,omitempty"`
}

// Learner runs the observation-table algorithm against one black box.
type Learner struct {
	name     string
	alphabet []string
	querier  sul.Querier
	oracle   EquivalenceOracle

	// OnRound, when set, receives an Event after each round.
	OnRound func(Event)
}

func NewLearner(name string, alphabet []string, querier sul.Querier, oracle EquivalenceOracle) *Learner {
	return &Learner{name: name, alphabet: alphabet, querier: querier, oracle: oracle}
}

// Run learns until the oracle accepts a hypothesis. The result is
// minimal by construction of the observation table.
func (l *Learner) Run(ctx context.Context) (*automata.Machine, Stats, error) {
	if len(l.alphabet) == 0 {
		return nil, Stats{}, errors.New("empty input alphabet")
	}

	start := time.Now()
	t := newTable(l.alphabet, l.querier)
	stats := Stats{}
	states := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		stats.Rounds++

		// stabilize: alternate closing and consistency fixes until
		// neither changes the table
		for {
			changed, err := t.close()
			if err != nil {
				return nil, stats, err
			}
			if changed {
				continue
			}
			changed, err = t.makeConsistent()
			if err != nil {
				return nil, stats, err
			}
			if !changed {
				break
			}
		}

		hyp, err := t.hypothesis(l.name)
		if err != nil {
			return nil, stats, err
		}
		if len(hyp.States) < states {
			return nil, stats, fmt.Errorf("hypothesis shrank from %d to %d states", states, len(hyp.States))
		}
		states = len(hyp.States)

		logging.L().Debug("hypothesis built",
			zap.String("machine", l.name),
			zap.Int("round", stats.Rounds),
			zap.Int("states", states))

		stats.EquivalenceQueries++
		cex, err := l.oracle.FindCounterexample(hyp)
		if err != nil {
			return nil, stats, err
		}
		if cex == nil {
			stats.MembershipQueries = t.queries
			stats.Duration = time.Since(start)
			if l.OnRound != nil {
				l.OnRound(Event{Round: stats.Rounds, States: states})
			}
			logging.L().Info("learning finished",
				zap.String("machine", l.name),
				zap.Int("states", states),
				zap.Int("rounds", stats.Rounds),
				zap.Int64("membership_queries", stats.MembershipQueries),
				zap.Duration("duration", stats.Duration))
			return hyp, stats, nil
		}

		// a counterexample must actually separate hypothesis and box;
		// anything else is an oracle defect
		hypOut, err := hyp.Run(cex)
		if err != nil {
			return nil, stats, err
		}
		sulOut, err := l.querier.Query(cex)
		if err != nil {
			return nil, stats, err
		}
		if reflect.DeepEqual(hypOut, sulOut) {
			return nil, stats, fmt.Errorf("oracle returned non-counterexample %v", cex)
		}

		logging.L().Debug("counterexample accepted",
			zap.String("machine", l.name),
			zap.Strings("word", cex))
		if l.OnRound != nil {
			l.OnRound(Event{Round: stats.Rounds, States: states, Counterexample: cex})
		}
		t.addCounterexample(cex)
	}
}
