// Package workflow runs the full exercise: learn a Mealy machine for
// every vending machine black box, compare the hypotheses against the
// reference, persist the results and publish progress.
package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"statelearn/automata"
	"statelearn/compare"
	"statelearn/db"
	"statelearn/learn"
	"statelearn/logging"
	"statelearn/monitoring"
	"statelearn/oracle"
	"statelearn/sul"
	"statelearn/vending"
)

// Options configure one learn-and-compare run.
type Options struct {
	Seed        int64
	Oracle      string  // "random_word" or "random_walk"
	OracleWords int     // random words per equivalence query (word oracle)
	OracleSteps int     // walk length per equivalence query (walk oracle)
	MaxWordLen  int     // longest oracle test word
	ResetProb   float64 // reset probability per step (walk oracle)
	CacheSize   int
	Reference   string // name of the machine treated as reference
	OutputDir   string // DOT files land here; empty disables
	Persist     bool   // write runs/models/verdicts through db
}

func (o *Options) defaults() {
	if o.Oracle == "" {
		o.Oracle = "random_word"
	}
	if o.OracleWords <= 0 {
		o.OracleWords = 500
	}
	if o.OracleSteps <= 0 {
		o.OracleSteps = 4000
	}
	if o.MaxWordLen <= 0 {
		o.MaxWordLen = 12
	}
	if o.ResetProb <= 0 {
		o.ResetProb = 0.09
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 4096
	}
	if o.Reference == "" {
		o.Reference = "vending_machine_1"
	}
}

// Runner executes runs against the built-in vending machines.
type Runner struct {
	opts    Options
	hub     *monitoring.Hub
	metrics *monitoring.Metrics
}

func NewRunner(opts Options, hub *monitoring.Hub, metrics *monitoring.Metrics) *Runner {
	opts.defaults()
	return &Runner{opts: opts, hub: hub, metrics: metrics}
}

// Scenarios returns the fixed valid-input smoke checks of the
// assignment: every product dispenses once paid for, over-cap coins
// come back, nothing dispenses for free.
func Scenarios() []compare.Scenario {
	return []compare.Scenario{
		{
			Name:     "coke_for_1_50",
			Word:     []string{"add_coin:1", "add_coin:0.5", "push_button:coke"},
			Expected: []string{vending.OutCoinAdded, vending.OutCoinAdded, "Coke"},
		},
		{
			Name:     "peanuts_for_1",
			Word:     []string{"add_coin:1", "push_button:peanuts"},
			Expected: []string{vending.OutCoinAdded, "Peanuts"},
		},
		{
			Name:     "water_for_0_50",
			Word:     []string{"add_coin:0.5", "push_button:water"},
			Expected: []string{vending.OutCoinAdded, "Water"},
		},
		{
			Name:     "coin_over_cap_returned",
			Word:     []string{"add_coin:2", "add_coin:1", "add_coin:0.5"},
			Expected: []string{vending.OutCoinAdded, vending.OutCoinAdded, vending.OutCoinReturned},
		},
		{
			Name:     "nothing_for_free",
			Word:     []string{"push_button:coke"},
			Expected: []string{vending.OutNoAction},
		},
		{
			Name:     "balance_spent_after_dispense",
			Word:     []string{"add_coin:2", "push_button:coke", "push_button:coke"},
			Expected: []string{vending.OutCoinAdded, "Coke", vending.OutNoAction},
		},
	}
}

// Run learns every registered machine and compares the results.
func (r *Runner) Run(ctx context.Context) (*compare.Report, error) {
	machines := vending.Registry()
	names := make([]string, 0, len(machines))
	for name := range machines {
		names = append(names, name)
	}
	sort.Strings(names)

	alphabet := vending.Alphabet()
	learned := make(map[string]*automata.Machine, len(names))
	runIDs := make(map[string]int64, len(names))

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// derive a per-machine seed so machines are independent but
		// the whole run stays reproducible
		model, runID, err := r.learnOne(ctx, name, machines[name], alphabet, r.opts.Seed+int64(i))
		if err != nil {
			return nil, fmt.Errorf("learning %s: %w", name, err)
		}
		learned[name] = model
		runIDs[name] = runID

		if r.opts.OutputDir != "" {
			if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
				return nil, err
			}
			if err := model.SaveDOT(filepath.Join(r.opts.OutputDir, name+".dot")); err != nil {
				return nil, err
			}
			if err := model.Save(filepath.Join(r.opts.OutputDir, name+".json")); err != nil {
				return nil, err
			}
		}
		if r.opts.Persist {
			if err := db.SaveModel(name, model); err != nil {
				return nil, err
			}
		}
	}

	reference, ok := learned[r.opts.Reference]
	if !ok {
		return nil, fmt.Errorf("reference machine %q was not learned", r.opts.Reference)
	}

	engine := compare.NewEngine(reference, Scenarios())
	report, err := engine.Compare(learned)
	if err != nil {
		return nil, err
	}
	if r.opts.Persist {
		if err := db.SaveVerdicts(runIDs, report); err != nil {
			return nil, err
		}
	}

	for _, m := range report.Models {
		if m.Verdict == compare.VerdictFaulty {
			logging.L().Warn("faulty machine identified",
				zap.String("model", m.Name),
				zap.Strings("separating", m.Separating),
				zap.Strings("expected", m.Expected),
				zap.Strings("actual", m.Actual))
		}
	}
	logging.L().Info("run complete", zap.Strings("correct", report.Correct))
	return report, nil
}

func (r *Runner) learnOne(ctx context.Context, name string, vm vending.Machine, alphabet []string, seed int64) (*automata.Machine, int64, error) {
	startedAt := time.Now()
	if r.metrics != nil {
		r.metrics.RunStarted()
	}
	r.publish(monitoring.RunStarted, map[string]any{"machine": name})

	counter := sul.NewCounter(vending.NewSUL(vm))
	cache, err := sul.NewCache(sul.AsQuerier(counter), r.opts.CacheSize)
	if err != nil {
		return nil, 0, err
	}

	var eq learn.EquivalenceOracle
	switch r.opts.Oracle {
	case "random_walk":
		eq = oracle.NewRandomWalk(counter, alphabet, r.opts.OracleSteps, r.opts.ResetProb, seed)
	default:
		eq = oracle.NewRandomWord(cache, alphabet, r.opts.OracleWords, 1, r.opts.MaxWordLen, seed)
	}

	learner := learn.NewLearner(name, alphabet, cache, eq)
	learner.OnRound = func(ev learn.Event) {
		if ev.Counterexample != nil {
			r.publish(monitoring.Counterexample, map[string]any{
				"machine": name,
				"round":   ev.Round,
				"word":    ev.Counterexample,
			})
			return
		}
		r.publish(monitoring.Hypothesis, map[string]any{
			"machine": name,
			"round":   ev.Round,
			"states":  ev.States,
		})
	}

	model, stats, err := learner.Run(ctx)
	if err != nil {
		return nil, 0, err
	}
	stats.Steps = counter.Steps()

	if r.metrics != nil {
		r.metrics.RunFinished()
		r.metrics.AddMembershipQueries(stats.MembershipQueries)
		r.metrics.AddOracleSteps(stats.Steps)
		r.metrics.AddCacheHits(cache.Hits())
	}
	r.publish(monitoring.RunFinished, map[string]any{
		"machine": name,
		"states":  len(model.States),
		"stats":   stats,
	})

	var runID int64
	if r.opts.Persist {
		runID, err = db.SaveRun(name, len(model.States), stats, startedAt)
		if err != nil {
			return nil, 0, err
		}
	}
	return model, runID, nil
}

func (r *Runner) publish(t monitoring.EventType, data any) {
	if r.hub != nil {
		r.hub.Publish(t, data)
	}
}
