// Package store persists runs, their evaluations and bond length scans in sqlite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableRun       = "run"
	tableIteration = "iteration"
	tableScan      = "scan"

	timeout = 3 * time.Second
)

var (
	ErrNotFound = errors.New("not found")
)

// Run is a finished solver run.
type Run struct {
	ID            string
	Created       time.Time
	Label         string
	Ansatz        string
	Backend       string
	Optimizer     string
	Eigenvalue    float64
	Evaluations   int
	OptimizerTime time.Duration
	Params        []float64
}

// Iteration is one recorded energy evaluation of a run.
type Iteration struct {
	Count  int
	Mean   float64
	Std    float64
	Params []float64
}

// Sample is one distance of a bond length scan.
type Sample struct {
	Distance float64
	Exact    float64
	VQE      float64
}

// ScanSummary describes a stored scan.
type ScanSummary struct {
	ID          string
	NumSamples  int
	MinDistance float64
	MaxDistance float64
}

type Store struct {
	Path string
	db   *sql.DB
}

// Open opens or creates the database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, dbPath)
	}
	return &Store{Path: dbPath, db: db}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, created INTEGER, label TEXT, ansatz TEXT, backend TEXT, optimizer TEXT, eigenvalue REAL, evaluations INTEGER, optimizerNanos INTEGER, params TEXT) STRICT`, tableRun),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (run TEXT, i INTEGER, count INTEGER, mean REAL, std REAL, params TEXT, PRIMARY KEY (run, i)) STRICT`, tableIteration),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id TEXT, i INTEGER, distance REAL, exact REAL, vqe REAL, PRIMARY KEY (id, i)) STRICT`, tableScan),
	}
	for _, sqlStr := range stmts {
		if _, err := db.ExecContext(ctx, sqlStr); err != nil {
			return errors.Wrap(err, sqlStr)
		}
	}
	return nil
}

func formatFloats(x []float64) string {
	ss := make([]string, len(x))
	for i, v := range x {
		ss[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(ss, ",")
}

func parseFloats(s string) ([]float64, error) {
	if s == "" {
		return []float64{}, nil
	}
	ss := strings.Split(s, ",")
	x := make([]float64, len(ss))
	for i, v := range ss {
		var err error
		x[i], err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	return x, nil
}

// SaveRun stores a run with its iterations under a new id, which is returned.
func (s *Store) SaveRun(ctx context.Context, run Run, iterations []Iteration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	run.ID = uuid.NewString()
	if run.Created.IsZero() {
		run.Created = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "")
	}
	defer tx.Rollback()

	sqlStr := fmt.Sprintf(`INSERT INTO %s (id, created, label, ansatz, backend, optimizer, eigenvalue, evaluations, optimizerNanos, params) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, tableRun)
	args := []any{run.ID, run.Created.UnixNano(), run.Label, run.Ansatz, run.Backend, run.Optimizer, run.Eigenvalue, run.Evaluations, int64(run.OptimizerTime), formatFloats(run.Params)}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
	}

	sqlStr = fmt.Sprintf(`INSERT INTO %s (run, i, count, mean, std, params) VALUES (?, ?, ?, ?, ?, ?)`, tableIteration)
	for i, it := range iterations {
		if _, err := tx.ExecContext(ctx, sqlStr, run.ID, i, it.Count, it.Mean, it.Std, formatFloats(it.Params)); err != nil {
			return "", errors.Wrap(err, fmt.Sprintf("%s %d", sqlStr, i))
		}
	}
	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "")
	}
	return run.ID, nil
}

const runColumns = `id, created, label, ansatz, backend, optimizer, eigenvalue, evaluations, optimizerNanos, params`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var created, nanos int64
	var params string
	if err := row.Scan(&r.ID, &created, &r.Label, &r.Ansatz, &r.Backend, &r.Optimizer, &r.Eigenvalue, &r.Evaluations, &nanos, &params); err != nil {
		return Run{}, err
	}
	r.Created = time.Unix(0, created)
	r.OptimizerTime = time.Duration(nanos)
	var err error
	r.Params, err = parseFloats(params)
	if err != nil {
		return Run{}, errors.Wrap(err, r.ID)
	}
	return r, nil
}

// Run returns the run with id.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT %s FROM %s WHERE id=?`, runColumns, tableRun)
	r, err := scanRun(s.db.QueryRowContext(ctx, sqlStr, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Run{}, errors.Wrap(ErrNotFound, id)
	case err != nil:
		return Run{}, errors.Wrap(err, "")
	}
	return r, nil
}

// Runs returns every run, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created, id`, runColumns, tableRun)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return runs, nil
}

// Iterations returns the iterations of a run in recorded order.
func (s *Store) Iterations(ctx context.Context, runID string) ([]Iteration, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT count, mean, std, params FROM %s WHERE run=? ORDER BY i`, tableIteration)
	rows, err := s.db.QueryContext(ctx, sqlStr, runID)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	its := make([]Iteration, 0)
	for rows.Next() {
		var it Iteration
		var params string
		if err := rows.Scan(&it.Count, &it.Mean, &it.Std, &params); err != nil {
			return nil, errors.Wrap(err, "")
		}
		if it.Params, err = parseFloats(params); err != nil {
			return nil, errors.Wrap(err, "")
		}
		its = append(its, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return its, nil
}

// SaveScan stores the samples of a scan under a new id, which is returned.
func (s *Store) SaveScan(ctx context.Context, samples []Sample) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "")
	}
	defer tx.Rollback()

	sqlStr := fmt.Sprintf(`INSERT INTO %s (id, i, distance, exact, vqe) VALUES (?, ?, ?, ?, ?)`, tableScan)
	for i, smp := range samples {
		if _, err := tx.ExecContext(ctx, sqlStr, id, i, smp.Distance, smp.Exact, smp.VQE); err != nil {
			return "", errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, smp))
		}
	}
	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "")
	}
	return id, nil
}

// Scan returns the samples of a scan ordered by distance.
func (s *Store) Scan(ctx context.Context, id string) ([]Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT distance, exact, vqe FROM %s WHERE id=? ORDER BY i`, tableScan)
	rows, err := s.db.QueryContext(ctx, sqlStr, id)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	samples := make([]Sample, 0)
	for rows.Next() {
		var smp Sample
		if err := rows.Scan(&smp.Distance, &smp.Exact, &smp.VQE); err != nil {
			return nil, errors.Wrap(err, "")
		}
		samples = append(samples, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if len(samples) == 0 {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	return samples, nil
}

// Scans summarizes every stored scan, oldest first.
func (s *Store) Scans(ctx context.Context) ([]ScanSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT id, COUNT(*), MIN(distance), MAX(distance) FROM %s GROUP BY id ORDER BY MIN(rowid)`, tableScan)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	scans := make([]ScanSummary, 0)
	for rows.Next() {
		var sc ScanSummary
		if err := rows.Scan(&sc.ID, &sc.NumSamples, &sc.MinDistance, &sc.MaxDistance); err != nil {
			return nil, errors.Wrap(err, "")
		}
		scans = append(scans, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return scans, nil
}
