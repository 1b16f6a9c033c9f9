package integration

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/cashflow"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/metrics"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/sensitivity"
)

// TestFullPipeline_UnleveredFlatDeal runs assumptions through projection,
// metrics, sensitivity, and classification end to end.
// The deal: $10M purchase, $700k flat NOI, 5-year hold, 7% exit cap. The
// exit value equals the purchase price, so the whole deal is a pure 7% yield
func TestFullPipeline_UnleveredFlatDeal(t *testing.T) {
	set := &domain.AssumptionSet{
		Name:              "Main Street Office",
		AcquisitionPrice:  decimal.NewFromInt(10_000_000),
		HoldPeriods:       5,
		PeriodType:        domain.PeriodTypeAnnual,
		DiscountRate:      decimal.RequireFromString("0.07"),
		ExitCapRate:       decimal.RequireFromString("0.07"),
		RecoveryTreatment: domain.RecoveryTreatmentNone,
		RevenueLines: []domain.RevenueLine{{
			Name:       "Rent Roll",
			Kind:       domain.RevenueKindBaseRent,
			BaseAmount: decimal.NewFromInt(700_000),
			Escalation: domain.EscalationRule{Kind: domain.EscalationKindNone},
		}},
	}

	projector := cashflow.NewProjectionService()
	projection, err := projector.Project(set)
	require.NoError(t, err)

	require.Len(t, projection.Periods, 6)
	assert.True(t, projection.Periods[0].NOI.IsZero())
	for p := 1; p <= 5; p++ {
		assert.True(t, projection.Periods[p].NOI.Equal(decimal.NewFromInt(700_000)), "period %d", p)
	}

	metricsService := metrics.NewService()
	m, err := metricsService.Compute(projection.Periods, metrics.ParametersFrom(set, projection))
	require.NoError(t, err)

	assert.True(t, m.ExitValue.Equal(decimal.NewFromInt(10_000_000)))
	require.NotNil(t, m.UnleveredIRR)
	assert.InDelta(t, 0.07, *m.UnleveredIRR, 1e-6)

	npv, _ := m.NPV.Float64()
	assert.InDelta(t, 0.0, npv, 1.0, "NPV at the IRR must be ~zero")

	sensitivityService := sensitivity.NewService(projector, metricsService, 4)
	results, baselineIRR, err := sensitivityService.Analyze(set, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.InDelta(t, 0.07, baselineIRR, 1e-6)

	// Ranking is descending and every scenario of this well-behaved deal
	// converges
	for i, r := range results {
		assert.Equal(t, 4, r.DefinedPoints, "variable %s", r.Variable)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].AvgAbsImpactBps, r.AvgAbsImpactBps)
		}
	}

	classification := sensitivity.Classify(results, sensitivity.DefaultThresholds())
	require.Len(t, classification.Assignments, len(results))
	require.Len(t, classification.Milestones, 4)

	// Milestones are cumulative, ending with every variable in the study
	last := classification.Milestones[len(classification.Milestones)-1]
	assert.Equal(t, domain.MilestoneKitchenSink, last.Milestone)
	assert.Len(t, last.Variables, len(results))
	for i := 1; i < len(classification.Milestones); i++ {
		assert.Subset(t, classification.Milestones[i].Variables, classification.Milestones[i-1].Variables)
	}
}

// TestFullPipeline_LeveredDealWithFullStack layers escalations, recoveries,
// capital items, and debt on the same property and checks the engine's
// cross-module identities rather than any single hand-computed value
func TestFullPipeline_LeveredDealWithFullStack(t *testing.T) {
	set := &domain.AssumptionSet{
		Name:              "Levered Retail Center",
		AcquisitionPrice:  decimal.NewFromInt(10_000_000),
		HoldPeriods:       5,
		PeriodType:        domain.PeriodTypeAnnual,
		DiscountRate:      decimal.RequireFromString("0.08"),
		ExitCapRate:       decimal.RequireFromString("0.065"),
		VacancyPct:        decimal.RequireFromString("0.05"),
		CreditLossPct:     decimal.RequireFromString("0.01"),
		RecoveryTreatment: domain.RecoveryTreatmentNNN,
		RevenueLines: []domain.RevenueLine{
			{
				Name:       "Anchor Rent",
				Kind:       domain.RevenueKindBaseRent,
				BaseAmount: decimal.NewFromInt(800_000),
				Escalation: domain.EscalationRule{
					Kind:             domain.EscalationKindFixedPercent,
					Rate:             decimal.RequireFromString("0.02"),
					FrequencyPeriods: 1,
				},
			},
			{
				Name:           "Pad Tenant",
				Kind:           domain.RevenueKindPercentageRent,
				BaseAmount:     decimal.NewFromInt(60_000),
				SalesVolume:    decimal.NewFromInt(1_500_000),
				PercentageRate: decimal.RequireFromString("0.05"),
				Escalation:     domain.EscalationRule{Kind: domain.EscalationKindNone},
			},
		},
		ExpenseLines: []domain.ExpenseLine{{
			Name:        "CAM",
			Category:    domain.ExpenseCategoryCAM,
			BaseAmount:  decimal.NewFromInt(120_000),
			Escalation:  domain.EscalationRule{Kind: domain.EscalationKindNone},
			Recoverable: true,
			RecoveryPct: decimal.NewFromInt(1),
		}},
		CapitalItems: []domain.CapitalItem{{
			Name:        "Reserves",
			Kind:        domain.CapitalKindReserve,
			Amount:      decimal.NewFromInt(25_000),
			StartPeriod: 1,
		}},
		Debt: &domain.DebtTerms{
			Principal:           decimal.NewFromInt(6_000_000),
			AnnualRate:          decimal.RequireFromString("0.05"),
			AmortizationPeriods: 30,
			TermPeriods:         30,
		},
	}

	projector := cashflow.NewProjectionService()
	projection, err := projector.Project(set)
	require.NoError(t, err)

	// Pad tenant overage: 1.5M * 5% - 60k = 15k on top of base rent
	gpr1 := projection.Periods[1].GrossPotentialRevenue
	assert.True(t, gpr1.Equal(decimal.NewFromInt(875_000)), "period 1 GPR = %s", gpr1)

	// CAM recovers at the 95% occupied share
	assert.True(t, projection.Periods[1].RecoveryIncome.Equal(decimal.NewFromInt(114_000)))

	// Debt service is constant and the balance amortizes
	require.Len(t, projection.DebtSchedule, 5)
	for i := 1; i < 5; i++ {
		assert.True(t, projection.DebtSchedule[i].Payment.Equal(projection.DebtSchedule[0].Payment))
		assert.True(t, projection.DebtSchedule[i].EndingBalance.LessThan(projection.DebtSchedule[i-1].EndingBalance))
	}

	metricsService := metrics.NewService()
	params := metrics.ParametersFrom(set, projection)
	m, err := metricsService.Compute(projection.Periods, params)
	require.NoError(t, err)

	require.NotNil(t, m.UnleveredIRR)
	require.NotNil(t, m.LeveredIRR)
	assert.Greater(t, *m.LeveredIRR, *m.UnleveredIRR, "cheap debt on a higher-yielding asset amplifies the equity return")

	// Exit value reflects the terminal NOI capitalized at 6.5%
	terminalNOI := projection.Periods[5].NOI
	assert.True(t, m.ExitValue.Equal(terminalNOI.Div(decimal.RequireFromString("0.065"))))

	// Coverage is reported for every period carrying debt service
	require.Len(t, m.DSCR, 5)
	for _, point := range m.DSCR {
		assert.True(t, point.Value.GreaterThan(decimal.NewFromInt(1)), "period %d DSCR = %s", point.Period, point.Value)
	}

	// The full study converges and the classification covers every variable
	sensitivityService := sensitivity.NewService(projector, metricsService, 8)
	results, _, err := sensitivityService.Analyze(set, nil)
	require.NoError(t, err)

	classification := sensitivity.Classify(results, sensitivity.DefaultThresholds())
	assert.Len(t, classification.Assignments, len(results))
}
