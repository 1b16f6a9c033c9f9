package sensitivity

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/cashflow"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/metrics"
)

// Magnitudes are the four fixed perturbation sizes applied to every variable
var Magnitudes = []float64{-0.20, -0.10, 0.10, 0.20}

// Service runs the perturbation study: scale one variable at a time, re-run
// the cash flow and metrics engines end to end, and rank variables by the
// average absolute IRR impact in basis points
type Service struct {
	Projector *cashflow.ProjectionService
	Metrics   *metrics.Service
	Workers   int // parallel scenario workers; values below 1 mean serial
}

// NewService creates a new sensitivity Service instance
func NewService(projector *cashflow.ProjectionService, metricsService *metrics.Service, workers int) *Service {
	return &Service{
		Projector: projector,
		Metrics:   metricsService,
		Workers:   workers,
	}
}

type scenarioJob struct {
	variable  int
	magnitude int
}

// Analyze computes the baseline IRR once, then runs one independent scenario
// per variable x magnitude on its own cloned assumption set. Scenarios fan
// out across a worker pool; results land in an index-keyed grid so output
// ordering is deterministic regardless of completion order. A scenario whose
// IRR fails to converge is recorded as undefined and excluded from the
// average; it never becomes zero and never aborts the rest of the grid.
// The second return value is the baseline IRR the deltas are measured from
func (s *Service) Analyze(baseline *domain.AssumptionSet, catalogue []domain.VariablePath) ([]domain.SensitivityResult, float64, error) {
	if err := baseline.Validate(); err != nil {
		return nil, 0, fmt.Errorf("invalid baseline assumption set: %w", err)
	}
	if len(catalogue) == 0 {
		catalogue = DefaultCatalogue(baseline)
	}

	baselineIRR := s.dealIRR(baseline)
	if baselineIRR == nil {
		return nil, 0, errors.New("baseline IRR is undefined; sensitivity deltas have no reference point")
	}

	grid := make([][]domain.SensitivityPoint, len(catalogue))
	for i := range grid {
		grid[i] = make([]domain.SensitivityPoint, len(Magnitudes))
	}

	jobs := make(chan scenarioJob)
	var wg sync.WaitGroup

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				magnitude := Magnitudes[job.magnitude]
				factor := decimal.NewFromFloat(1 + magnitude)
				scenario := applyScale(baseline, catalogue[job.variable], factor)

				point := domain.SensitivityPoint{Magnitude: magnitude}
				if irr := s.dealIRR(scenario); irr != nil {
					delta := (*irr - *baselineIRR) * 10000
					point.IRR = irr
					point.DeltaBps = &delta
				}
				// Each job owns exactly one grid cell, so no lock is needed
				grid[job.variable][job.magnitude] = point
			}
		}()
	}

	for vi := range catalogue {
		for mi := range Magnitudes {
			jobs <- scenarioJob{variable: vi, magnitude: mi}
		}
	}
	close(jobs)
	wg.Wait()

	results := make([]domain.SensitivityResult, len(catalogue))
	for vi, variable := range catalogue {
		result := domain.SensitivityResult{
			Variable: variable,
			Points:   grid[vi],
		}
		total := 0.0
		for _, point := range grid[vi] {
			if point.DeltaBps == nil {
				continue
			}
			result.DefinedPoints++
			if *point.DeltaBps < 0 {
				total -= *point.DeltaBps
			} else {
				total += *point.DeltaBps
			}
		}
		if result.DefinedPoints > 0 {
			result.AvgAbsImpactBps = total / float64(result.DefinedPoints)
		}
		results[vi] = result
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].AvgAbsImpactBps != results[j].AvgAbsImpactBps {
			return results[i].AvgAbsImpactBps > results[j].AvgAbsImpactBps
		}
		return results[i].Variable < results[j].Variable
	})

	return results, *baselineIRR, nil
}

// dealIRR runs projection and metrics end to end and returns the deal's IRR:
// levered when debt is present, unlevered otherwise. Nil means the scenario
// failed validation or the root search did not converge
func (s *Service) dealIRR(a *domain.AssumptionSet) *float64 {
	projection, err := s.Projector.Project(a)
	if err != nil {
		return nil
	}
	m, err := s.Metrics.Compute(projection.Periods, metrics.ParametersFrom(a, projection))
	if err != nil {
		return nil
	}
	if a.Debt != nil {
		return m.LeveredIRR
	}
	return m.UnleveredIRR
}
