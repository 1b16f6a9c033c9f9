package metrics

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/solver"
)

// DealParameters carries the deal-level inputs metrics computation needs
// beyond the cash-flow sequence itself. LoanPrincipal and ExitDebtBalance
// are zero for an unlevered deal
type DealParameters struct {
	AcquisitionPrice   decimal.Decimal
	DiscountRate       decimal.Decimal // annual, fractional
	ExitCapRate        decimal.Decimal
	DispositionCostPct decimal.Decimal
	PeriodsPerYear     int
	LoanPrincipal      decimal.Decimal
	ExitDebtBalance    decimal.Decimal // balance repaid out of sale proceeds
	AnnualizeDSCR      bool            // report one DSCR per year instead of per period
}

// Service computes scalar return metrics from a cash-flow sequence.
// Stateless apart from solver configuration; results are recomputed fresh
// for every assumption set variant and never cached across them
type Service struct {
	SolverOptions solver.Options
}

// NewService creates a new metrics Service with default solver options
func NewService() *Service {
	return &Service{SolverOptions: solver.DefaultOptions()}
}

const irrSeedAnnual = 0.10

var one = decimal.NewFromInt(1)

// Compute derives exit value, IRR (levered and unlevered), NPV, equity
// multiple, cash-on-cash, and the DSCR series from one projection.
// Money stays in decimal; only the discount-rate search runs in float64.
// An IRR whose root search does not converge is reported as nil, never
// coerced to zero or to the seed rate
func (s *Service) Compute(periods []domain.CashFlowPeriod, p DealParameters) (*domain.InvestmentMetrics, error) {
	if len(periods) < 2 {
		return nil, errors.New("cash-flow sequence must include an acquisition period and at least one operating period")
	}
	if p.AcquisitionPrice.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("acquisition price must be positive")
	}
	if p.ExitCapRate.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("exit cap rate must be positive")
	}
	if p.PeriodsPerYear < 1 {
		return nil, errors.New("periods per year must be at least 1")
	}
	if p.LoanPrincipal.GreaterThanOrEqual(p.AcquisitionPrice) {
		return nil, errors.New("loan principal must be below the acquisition price")
	}

	ppy := decimal.NewFromInt(int64(p.PeriodsPerYear))

	// Exit value: terminal NOI annualized, capitalized, less disposition costs
	terminalNOI := periods[len(periods)-1].NOI
	exitValue := terminalNOI.Mul(ppy).Div(p.ExitCapRate)
	netExitProceeds := exitValue.Mul(one.Sub(p.DispositionCostPct))

	equity := p.AcquisitionPrice.Sub(p.LoanPrincipal)

	unleveredFlows := buildFlows(periods, p.AcquisitionPrice, netExitProceeds, func(cf *domain.CashFlowPeriod) decimal.Decimal {
		return cf.CashFlowBeforeDebt
	})
	leveredFlows := buildFlows(periods, equity, netExitProceeds.Sub(p.ExitDebtBalance), func(cf *domain.CashFlowPeriod) decimal.Decimal {
		return cf.NetCashFlow
	})

	m := &domain.InvestmentMetrics{
		ExitValue:       exitValue,
		NetExitProceeds: netExitProceeds,
		UnleveredIRR:    s.irr(unleveredFlows, p.PeriodsPerYear),
		LeveredIRR:      s.irr(leveredFlows, p.PeriodsPerYear),
		NPV:             s.npvAt(leveredFlows, p.DiscountRate, p.PeriodsPerYear),
		EquityMultiple:  equityMultiple(leveredFlows, equity),
		CashOnCash:      cashOnCash(periods, equity, p.PeriodsPerYear),
		DSCR:            dscrSeries(periods, p.PeriodsPerYear, p.AnnualizeDSCR),
	}
	return m, nil
}

// buildFlows assembles the per-period cash-flow vector for IRR and NPV:
// the initial investment as a negative outflow at t=0 (plus whatever the
// acquisition row carries, which the projection keeps at zero) and the exit
// proceeds added to the final period
func buildFlows(periods []domain.CashFlowPeriod, outflow, exit decimal.Decimal, pick func(*domain.CashFlowPeriod) decimal.Decimal) []decimal.Decimal {
	flows := make([]decimal.Decimal, len(periods))
	for i := range periods {
		flows[i] = pick(&periods[i])
	}
	flows[0] = flows[0].Sub(outflow)
	flows[len(flows)-1] = flows[len(flows)-1].Add(exit)
	return flows
}

// irr solves NPV(r) = 0 for the periodic rate and annualizes it by
// compounding. Returns nil when the search fails to converge
func (s *Service) irr(flows []decimal.Decimal, periodsPerYear int) *float64 {
	f := toFloats(flows)
	result := solver.Solve(func(r float64) float64 {
		return npv(f, r)
	}, irrSeedAnnual/float64(periodsPerYear), s.SolverOptions)
	if !result.Converged {
		return nil
	}
	annual := annualizeRate(result.Root, periodsPerYear)
	return &annual
}

// npvAt discounts the flows at the supplied annual rate; the periodic rate
// is the annual rate divided by periods per year, matching the debt
// convention
func (s *Service) npvAt(flows []decimal.Decimal, annualRate decimal.Decimal, periodsPerYear int) decimal.Decimal {
	rate, _ := annualRate.Float64()
	return decimal.NewFromFloat(npv(toFloats(flows), rate/float64(periodsPerYear)))
}

// npv is the plain discounted sum; t=0 is undiscounted
func npv(flows []float64, rate float64) float64 {
	total := 0.0
	discount := 1.0
	for t, cf := range flows {
		if t > 0 {
			discount *= 1 + rate
		}
		total += cf / discount
	}
	return total
}

func annualizeRate(periodic float64, periodsPerYear int) float64 {
	if periodsPerYear == 1 {
		return periodic
	}
	annual := 1.0
	for i := 0; i < periodsPerYear; i++ {
		annual *= 1 + periodic
	}
	return annual - 1
}

// equityMultiple is total distributions over total equity invested.
// Negative periods are treated as additional capital invested
func equityMultiple(flows []decimal.Decimal, equity decimal.Decimal) decimal.Decimal {
	invested := equity
	distributions := decimal.Zero
	for t, cf := range flows {
		if t == 0 {
			// flows[0] already nets the initial outflow against any
			// period-0 activity; equity itself is counted above
			continue
		}
		if cf.IsNegative() {
			invested = invested.Add(cf.Neg())
		} else {
			distributions = distributions.Add(cf)
		}
	}
	if invested.IsZero() {
		return decimal.Zero
	}
	return distributions.Div(invested)
}

// cashOnCash is the first full year's net cash flow, annualized when the
// hold is shorter than a year, over initial equity
func cashOnCash(periods []domain.CashFlowPeriod, equity decimal.Decimal, periodsPerYear int) decimal.Decimal {
	if equity.IsZero() {
		return decimal.Zero
	}
	count := periodsPerYear
	if len(periods)-1 < count {
		count = len(periods) - 1
	}
	if count <= 0 {
		return decimal.Zero
	}
	yearOne := decimal.Zero
	for t := 1; t <= count; t++ {
		yearOne = yearOne.Add(periods[t].NetCashFlow)
	}
	if count < periodsPerYear {
		yearOne = yearOne.Mul(decimal.NewFromInt(int64(periodsPerYear))).Div(decimal.NewFromInt(int64(count)))
	}
	return yearOne.Div(equity)
}

// dscrSeries computes NOI / debt service for every period with nonzero debt
// service; periods with none get no point at all. With annualize set, NOI
// and debt service are aggregated per year and one point is emitted per
// year (Period = year number)
func dscrSeries(periods []domain.CashFlowPeriod, periodsPerYear int, annualize bool) []domain.DSCRPoint {
	if !annualize {
		var series []domain.DSCRPoint
		for i := range periods {
			cf := &periods[i]
			if cf.DebtService.IsZero() {
				continue
			}
			series = append(series, domain.DSCRPoint{Period: cf.Period, Value: cf.NOI.Div(cf.DebtService)})
		}
		return series
	}

	var series []domain.DSCRPoint
	year := 1
	for start := 1; start < len(periods); start += periodsPerYear {
		noi := decimal.Zero
		ds := decimal.Zero
		for t := start; t < start+periodsPerYear && t < len(periods); t++ {
			noi = noi.Add(periods[t].NOI)
			ds = ds.Add(periods[t].DebtService)
		}
		if !ds.IsZero() {
			series = append(series, domain.DSCRPoint{Period: year, Value: noi.Div(ds)})
		}
		year++
	}
	return series
}

func toFloats(flows []decimal.Decimal) []float64 {
	out := make([]float64, len(flows))
	for i, d := range flows {
		out[i], _ = d.Float64()
	}
	return out
}
