package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AnalysisRun is a completed sensitivity analysis as stored for later
// retrieval. The engine itself never persists anything; the serving layer
// records runs on behalf of callers when a repository is configured
type AnalysisRun struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	BaselineName   string
	BaselineIRR    *float64
	Results        []SensitivityResult
	Classification MilestoneClassification
}

// Validate ensures the analysis run adheres to domain rules
func (r *AnalysisRun) Validate() error {
	if r.ID == uuid.Nil {
		return errors.New("analysis run ID cannot be nil")
	}
	if len(r.Results) == 0 {
		return errors.New("analysis run must have at least one result")
	}
	return nil
}
