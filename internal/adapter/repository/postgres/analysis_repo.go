package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
)

// analysisRunRepository implements domain.AnalysisRunRepository
type analysisRunRepository struct {
	db *DB
}

// NewAnalysisRunRepository creates a new analysis run repository
func NewAnalysisRunRepository(db *DB) domain.AnalysisRunRepository {
	return &analysisRunRepository{db: db}
}

// Create stores a completed analysis run.
// Results and classification are stored as JSON documents: they are
// write-once records served back whole, never queried field by field
func (r *analysisRunRepository) Create(ctx context.Context, run *domain.AnalysisRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to encode sensitivity results: %w", err)
	}
	classificationJSON, err := json.Marshal(run.Classification)
	if err != nil {
		return fmt.Errorf("failed to encode classification: %w", err)
	}

	query := `
		INSERT INTO analysis_runs (id, created_at, baseline_name, baseline_irr, results, classification)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var baselineIRR sql.NullFloat64
	if run.BaselineIRR != nil {
		baselineIRR = sql.NullFloat64{Float64: *run.BaselineIRR, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.CreatedAt,
		run.BaselineName,
		baselineIRR,
		resultsJSON,
		classificationJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}

	return nil
}

// GetByID retrieves an analysis run by its ID
func (r *analysisRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisRun, error) {
	query := `
		SELECT id, created_at, baseline_name, baseline_irr, results, classification
		FROM analysis_runs
		WHERE id = $1
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("analysis run %s not found", id)
		}
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	return run, nil
}

// List retrieves a paginated list of analysis runs, newest first
func (r *analysisRunRepository) List(ctx context.Context, limit, offset int) ([]*domain.AnalysisRun, error) {
	query := `
		SELECT id, created_at, baseline_name, baseline_irr, results, classification
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis runs: %w", err)
	}

	return runs, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.AnalysisRun, error) {
	var run domain.AnalysisRun
	var baselineIRR sql.NullFloat64
	var resultsJSON, classificationJSON []byte

	if err := row.Scan(
		&run.ID,
		&run.CreatedAt,
		&run.BaselineName,
		&baselineIRR,
		&resultsJSON,
		&classificationJSON,
	); err != nil {
		return nil, err
	}

	if baselineIRR.Valid {
		run.BaselineIRR = &baselineIRR.Float64
	}
	if err := json.Unmarshal(resultsJSON, &run.Results); err != nil {
		return nil, fmt.Errorf("failed to decode sensitivity results: %w", err)
	}
	if err := json.Unmarshal(classificationJSON, &run.Classification); err != nil {
		return nil, fmt.Errorf("failed to decode classification: %w", err)
	}

	return &run, nil
}
