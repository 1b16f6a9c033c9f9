package domain

import (
	"context"

	"github.com/google/uuid"
)

// AnalysisRunRepository defines the interface for analysis run persistence operations
type AnalysisRunRepository interface {
	// Create stores a completed analysis run
	Create(ctx context.Context, run *AnalysisRun) error

	// GetByID retrieves an analysis run by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*AnalysisRun, error)

	// List retrieves a paginated list of analysis runs, newest first
	List(ctx context.Context, limit, offset int) ([]*AnalysisRun, error)
}
