package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RunRecord describes one generator run to be appended to the ledger.
type RunRecord struct {
	ArtifactPath     string
	ArtifactHash     string
	CatalogHash      string
	CaseSetHash      string
	CaseCount        int
	BlockCount       int
	GeneratorVersion string
}

// Run is a ledger row.
type Run struct {
	ID  string `json:"id"`
	Seq int64  `json:"seq"`

	ArtifactPath     string `json:"artifact_path"`
	ArtifactHash     string `json:"artifact_hash"`
	CatalogHash      string `json:"catalog_hash"`
	CaseSetHash      string `json:"case_set_hash,omitempty"`
	CaseCount        int    `json:"case_count"`
	BlockCount       int    `json:"block_count"`
	GeneratorVersion string `json:"generator_version"`
}

// RecordRun appends a run and assigns it the next seq.
// The seq read and the insert share one transaction.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) (Run, error) {
	if rec.ArtifactPath == "" {
		return Run{}, errors.New("record run: artifact path is empty")
	}
	if rec.ArtifactHash == "" {
		return Run{}, errors.New("record run: artifact hash is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var maxSeq sql.NullInt64
	if err := tx.QueryRowContext(ctx, "SELECT MAX(seq) FROM runs").Scan(&maxSeq); err != nil {
		return Run{}, fmt.Errorf("record run: read seq: %w", err)
	}

	run := Run{
		ID:               s.runID.Generate(),
		Seq:              maxSeq.Int64 + 1,
		ArtifactPath:     rec.ArtifactPath,
		ArtifactHash:     rec.ArtifactHash,
		CatalogHash:      rec.CatalogHash,
		CaseSetHash:      rec.CaseSetHash,
		CaseCount:        rec.CaseCount,
		BlockCount:       rec.BlockCount,
		GeneratorVersion: rec.GeneratorVersion,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, artifact_path, artifact_hash, catalog_hash,
		                  case_set_hash, case_count, block_count, generator_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Seq, run.ArtifactPath, run.ArtifactHash, run.CatalogHash,
		run.CaseSetHash, run.CaseCount, run.BlockCount, run.GeneratorVersion)
	if err != nil {
		return Run{}, fmt.Errorf("record run %s: %w", run.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	return run, nil
}

// LatestRun returns the most recent run for artifactPath.
// The bool is false when the path has never been recorded.
func (s *Store) LatestRun(ctx context.Context, artifactPath string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, artifact_path, artifact_hash, catalog_hash,
		       case_set_hash, case_count, block_count, generator_version
		FROM runs
		WHERE artifact_path = ?
		ORDER BY seq DESC, id DESC
		LIMIT 1
	`, artifactPath)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("latest run for %s: %w", artifactPath, err)
	}
	return run, true, nil
}

// ListRuns returns every run in seq order.
// An empty artifactPath lists runs for all paths.
func (s *Store) ListRuns(ctx context.Context, artifactPath string) ([]Run, error) {
	query := `
		SELECT id, seq, artifact_path, artifact_hash, catalog_hash,
		       case_set_hash, case_count, block_count, generator_version
		FROM runs`
	var args []any
	if artifactPath != "" {
		query += " WHERE artifact_path = ?"
		args = append(args, artifactPath)
	}
	query += " ORDER BY seq ASC, id COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (Run, error) {
	var run Run
	err := r.Scan(&run.ID, &run.Seq, &run.ArtifactPath, &run.ArtifactHash,
		&run.CatalogHash, &run.CaseSetHash, &run.CaseCount, &run.BlockCount, &run.GeneratorVersion)
	return run, err
}
