package monitoring

import (
	"sync/atomic"
	"time"
)

// Metrics aggregates counters across learning runs.
type Metrics struct {
	runsStarted       atomic.Int64
	runsFinished      atomic.Int64
	membershipQueries atomic.Int64
	oracleSteps       atomic.Int64
	cacheHits         atomic.Int64
	startTime         time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) RunStarted()  { m.runsStarted.Add(1) }
func (m *Metrics) RunFinished() { m.runsFinished.Add(1) }

func (m *Metrics) AddMembershipQueries(n int64) { m.membershipQueries.Add(n) }
func (m *Metrics) AddOracleSteps(n int64)       { m.oracleSteps.Add(n) }
func (m *Metrics) AddCacheHits(n int64)         { m.cacheHits.Add(n) }

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	RunsStarted       int64         `json:"runs_started"`
	RunsFinished      int64         `json:"runs_finished"`
	MembershipQueries int64         `json:"membership_queries"`
	OracleSteps       int64         `json:"oracle_steps"`
	CacheHits         int64         `json:"cache_hits"`
	Uptime            time.Duration `json:"uptime"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RunsStarted:       m.runsStarted.Load(),
		RunsFinished:      m.runsFinished.Load(),
		MembershipQueries: m.membershipQueries.Load(),
		OracleSteps:       m.oracleSteps.Load(),
		CacheHits:         m.cacheHits.Load(),
		Uptime:            time.Since(m.startTime),
	}
}
