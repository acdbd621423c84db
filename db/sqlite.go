// Package db persists learning runs, verdicts and learned models in
// SQLite.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"statelearn/automata"
	"statelearn/compare"
	"statelearn/learn"
)

var database *sql.DB

// InitDB opens the SQLite database and creates the schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        machine VARCHAR(50),
        states INTEGER,
        rounds INTEGER,
        membership_queries INTEGER,
        steps INTEGER,
        equivalence_queries INTEGER,
        duration_ms INTEGER,
        started_at DATETIME
    );
    CREATE TABLE IF NOT EXISTS verdicts (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id INTEGER,
        model VARCHAR(50),
        verdict VARCHAR(20),
        separating TEXT,
        expected TEXT,
        actual TEXT,
        recorded_at DATETIME
    );
    CREATE TABLE IF NOT EXISTS models (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name VARCHAR(50),
        states INTEGER,
        payload TEXT,
        learned_at DATETIME,
        UNIQUE(name)
    );
    `

	_, err = database.Exec(query)
	return err
}

// Close releases the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveRun records the statistics of one learning run and returns the
// run id, so verdicts derived from the run can reference it.
func SaveRun(machine string, states int, stats learn.Stats, startedAt time.Time) (int64, error) {
	if database == nil {
		return 0, errors.New("database not initialized")
	}
	res, err := database.Exec(`
        INSERT INTO runs (machine, states, rounds, membership_queries, steps, equivalence_queries, duration_ms, started_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		machine, states, stats.Rounds, stats.MembershipQueries, stats.Steps,
		stats.EquivalenceQueries, stats.Duration.Milliseconds(), startedAt.UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID                 int64     `json:"id"`
	Machine            string    `json:"machine"`
	States             int       `json:"states"`
	Rounds             int       `json:"rounds"`
	MembershipQueries  int64     `json:"membership_queries"`
	Steps              int64     `json:"steps"`
	EquivalenceQueries int       `json:"equivalence_queries"`
	DurationMs         int64     `json:"duration_ms"`
	StartedAt          time.Time `json:"started_at"`
}

// LoadRuns returns the most recent learning runs, newest first.
func LoadRuns(limit int) ([]RunRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT id, machine, states, rounds, membership_queries, steps, equivalence_queries, duration_ms, started_at
        FROM runs
        ORDER BY started_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]RunRecord, 0)
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Machine, &r.States, &r.Rounds, &r.MembershipQueries,
			&r.Steps, &r.EquivalenceQueries, &r.DurationMs, &r.StartedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveVerdicts stores every model verdict of a comparison report.
// runIDs maps a model name to the id of the learning run that produced
// it; models without an entry are stored with run id 0.
func SaveVerdicts(runIDs map[string]int64, report *compare.Report) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	stmt, err := database.Prepare(`
        INSERT INTO verdicts (run_id, model, verdict, separating, expected, actual, recorded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range report.Models {
		sep, _ := json.Marshal(m.Separating)
		expected, _ := json.Marshal(m.Expected)
		actual, _ := json.Marshal(m.Actual)
		if _, err := stmt.Exec(runIDs[m.Name], m.Name, string(m.Verdict), string(sep), string(expected), string(actual), report.GeneratedAt); err != nil {
			return err
		}
	}
	return nil
}

// VerdictRecord is one row of the verdicts table.
type VerdictRecord struct {
	RunID      int64     `json:"run_id"`
	Model      string    `json:"model"`
	Verdict    string    `json:"verdict"`
	Separating []string  `json:"separating,omitempty"`
	Expected   []string  `json:"expected,omitempty"`
	Actual     []string  `json:"actual,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// LoadVerdicts returns the most recent verdicts, newest first.
func LoadVerdicts(limit int) ([]VerdictRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT run_id, model, verdict, separating, expected, actual, recorded_at
        FROM verdicts
        ORDER BY recorded_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]VerdictRecord, 0)
	for rows.Next() {
		var r VerdictRecord
		var sep, expected, actual string
		if err := rows.Scan(&r.RunID, &r.Model, &r.Verdict, &sep, &expected, &actual, &r.RecordedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sep), &r.Separating); err != nil {
			return nil, fmt.Errorf("verdict %s: corrupt separating word: %w", r.Model, err)
		}
		if err := json.Unmarshal([]byte(expected), &r.Expected); err != nil {
			return nil, fmt.Errorf("verdict %s: corrupt expected outputs: %w", r.Model, err)
		}
		if err := json.Unmarshal([]byte(actual), &r.Actual); err != nil {
			return nil, fmt.Errorf("verdict %s: corrupt actual outputs: %w", r.Model, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveModel stores a learned machine as JSON, replacing any previous
// version under the same name.
func SaveModel(name string, m *automata.Machine) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = database.Exec(`
        INSERT OR REPLACE INTO models (name, states, payload, learned_at)
        VALUES (?, ?, ?, ?)`,
		name, len(m.States), string(payload), time.Now().UTC())
	return err
}

// LoadModel returns a stored machine by name.
func LoadModel(name string) (*automata.Machine, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	var payload string
	err := database.QueryRow(`SELECT payload FROM models WHERE name = ?`, name).Scan(&payload)
	if err != nil {
		return nil, err
	}
	var m automata.Machine
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ModelInfo is a stored model without its payload.
type ModelInfo struct {
	Name      string    `json:"name"`
	States    int       `json:"states"`
	LearnedAt time.Time `json:"learned_at"`
}

// ListModels returns stored models in name order.
func ListModels() ([]ModelInfo, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`SELECT name, states, learned_at FROM models ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	infos := make([]ModelInfo, 0)
	for rows.Next() {
		var info ModelInfo
		if err := rows.Scan(&info.Name, &info.States, &info.LearnedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
