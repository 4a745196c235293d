package eval

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunRecord is a persisted harness run summary, one row in eval_runs.
type RunRecord struct {
	RunID         string          `json:"run_id"`
	Corpus        string          `json:"corpus"`
	Layout        string          `json:"layout"`
	LexiconSize   int             `json:"lexicon_size"`
	CaseCount     int             `json:"case_count"`
	Top1Rate      float64         `json:"top1_rate"`
	Top3Rate      float64         `json:"top3_rate"`
	MRR           float64         `json:"mrr"`
	MeanResidual  float64         `json:"mean_residual"`
	PruneLosses   int             `json:"prune_losses"`
	MeanElapsedUs float64         `json:"mean_elapsed_us"`
	P95ElapsedUs  float64         `json:"p95_elapsed_us"`
	ParamsJSON    json.RawMessage `json:"params_json,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     int64           `json:"created_at"`
}

// CaseRecord is one persisted per-case outcome, one row in eval_cases.
type CaseRecord struct {
	RunID      string   `json:"run_id"`
	CaseID     string   `json:"case_id"`
	Expected   string   `json:"expected"`
	Rank       int      `json:"rank"`
	Residual   float64  `json:"residual"`
	Pruned     bool     `json:"pruned"`
	Degenerate bool     `json:"degenerate"`
	ElapsedUs  int64    `json:"elapsed_us"`
	Top        []string `json:"top,omitempty"`
}

// Store persists harness reports for regression tracking across runs.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store over an already-migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveReport persists a run summary and all its per-case rows in one
// transaction. paramsJSON records the tuning overlay the run used, if
// any; notes is a free-form operator annotation. If the report has no
// RunID one is generated.
func (s *Store) SaveReport(rep *Report, paramsJSON json.RawMessage, notes string) error {
	if rep.RunID == uuid.Nil {
		rep.RunID = uuid.New()
	}
	createdAt := rep.StartedAt.UnixNano()
	if rep.StartedAt.IsZero() {
		createdAt = time.Now().UnixNano()
	}

	var paramsStr interface{}
	if len(paramsJSON) > 0 {
		paramsStr = string(paramsJSON)
	}
	var notesVal interface{}
	if notes != "" {
		notesVal = notes
	}

	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin save run: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.Exec(`
			INSERT INTO eval_runs (
				run_id, corpus, layout, lexicon_size, case_count,
				top1_rate, top3_rate, mrr, mean_residual, prune_losses,
				mean_elapsed_us, p95_elapsed_us, params_json, notes, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rep.RunID.String(), rep.Corpus, rep.Layout, rep.LexiconSize, rep.CaseCount,
			rep.Top1Rate, rep.Top3Rate, rep.MRR, rep.MeanResidual, rep.PruneLosses,
			rep.MeanElapsedUs, rep.P95ElapsedUs, paramsStr, notesVal, createdAt,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO eval_cases (
				run_id, case_id, expected, got_rank, residual,
				pruned, degenerate, elapsed_us, top_words
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare case insert: %w", err)
		}
		defer stmt.Close()

		for i := range rep.Cases {
			c := &rep.Cases[i]
			var topStr interface{}
			if len(c.Top) > 0 {
				b, err := json.Marshal(c.Top)
				if err != nil {
					return fmt.Errorf("marshal top words for case %s: %w", c.CaseID, err)
				}
				topStr = string(b)
			}
			_, err = stmt.Exec(
				rep.RunID.String(), c.CaseID, c.Expected, c.Rank, c.Residual,
				boolToInt(c.Pruned), boolToInt(c.Degenerate), c.Elapsed.Microseconds(), topStr,
			)
			if err != nil {
				return fmt.Errorf("insert case %s: %w", c.CaseID, err)
			}
		}
		return tx.Commit()
	})
}

// GetRun returns a single run summary by ID.
func (s *Store) GetRun(runID string) (*RunRecord, error) {
	row := s.db.QueryRow(`
		SELECT run_id, corpus, layout, lexicon_size, case_count,
		       top1_rate, top3_rate, mrr, mean_residual, prune_losses,
		       mean_elapsed_us, p95_elapsed_us, params_json, notes, created_at
		FROM eval_runs
		WHERE run_id = ?`, runID)

	var r RunRecord
	var paramsStr, notesStr sql.NullString
	err := row.Scan(
		&r.RunID, &r.Corpus, &r.Layout, &r.LexiconSize, &r.CaseCount,
		&r.Top1Rate, &r.Top3Rate, &r.MRR, &r.MeanResidual, &r.PruneLosses,
		&r.MeanElapsedUs, &r.P95ElapsedUs, &paramsStr, &notesStr, &r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if paramsStr.Valid {
		r.ParamsJSON = json.RawMessage(paramsStr.String)
	}
	if notesStr.Valid {
		r.Notes = notesStr.String
	}
	return &r, nil
}

// ListRuns returns run summaries ordered by creation time descending.
// limit <= 0 means no limit.
func (s *Store) ListRuns(limit int) ([]*RunRecord, error) {
	query := `
		SELECT run_id, corpus, layout, lexicon_size, case_count,
		       top1_rate, top3_rate, mrr, mean_residual, prune_losses,
		       mean_elapsed_us, p95_elapsed_us, params_json, notes, created_at
		FROM eval_runs
		ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListCases returns the per-case rows for a run, worst rank first so
// regressions surface at the top.
func (s *Store) ListCases(runID string) ([]*CaseRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, case_id, expected, got_rank, residual,
		       pruned, degenerate, elapsed_us, top_words
		FROM eval_cases
		WHERE run_id = ?
		ORDER BY got_rank = 0 DESC, got_rank DESC, case_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	var cases []*CaseRecord
	for rows.Next() {
		var c CaseRecord
		var pruned, degenerate int
		var topStr sql.NullString
		err := rows.Scan(
			&c.RunID, &c.CaseID, &c.Expected, &c.Rank, &c.Residual,
			&pruned, &degenerate, &c.ElapsedUs, &topStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}
		c.Pruned = pruned != 0
		c.Degenerate = degenerate != 0
		if topStr.Valid {
			if err := json.Unmarshal([]byte(topStr.String), &c.Top); err != nil {
				return nil, fmt.Errorf("decode top words for case %s: %w", c.CaseID, err)
			}
		}
		cases = append(cases, &c)
	}
	return cases, rows.Err()
}

// DeleteRun removes a run and, via the schema's cascade, its case rows.
func (s *Store) DeleteRun(runID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM eval_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s not found", runID)
		}
		return nil
	})
}

// scanRun scans a run row from a sql.Rows cursor.
func scanRun(rows *sql.Rows) (*RunRecord, error) {
	var r RunRecord
	var paramsStr, notesStr sql.NullString
	err := rows.Scan(
		&r.RunID, &r.Corpus, &r.Layout, &r.LexiconSize, &r.CaseCount,
		&r.Top1Rate, &r.Top3Rate, &r.MRR, &r.MeanResidual, &r.PruneLosses,
		&r.MeanElapsedUs, &r.P95ElapsedUs, &paramsStr, &notesStr, &r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run row: %w", err)
	}
	if paramsStr.Valid {
		r.ParamsJSON = json.RawMessage(paramsStr.String)
	}
	if notesStr.Valid {
		r.Notes = notesStr.String
	}
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// retryOnBusy retries a write a few times when SQLite reports the
// database locked. WAL plus the busy_timeout pragma covers most
// contention; this catches the stragglers when two tools share a file.
func retryOnBusy(fn func() error) error {
	const attempts = 5
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(i+1) * 50 * time.Millisecond)
	}
	return err
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
