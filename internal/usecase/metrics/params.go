package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/cashflow"
)

// ParametersFrom derives deal parameters for a projection straight from its
// assumption set: loan principal and the debt balance outstanding at exit
// come from the amortization schedule, everything else from the set itself
func ParametersFrom(a *domain.AssumptionSet, projection *cashflow.Projection) DealParameters {
	p := DealParameters{
		AcquisitionPrice:   a.AcquisitionPrice,
		DiscountRate:       a.DiscountRate,
		ExitCapRate:        a.ExitCapRate,
		DispositionCostPct: a.DispositionCostPct,
		PeriodsPerYear:     a.PeriodType.PeriodsPerYear(),
		LoanPrincipal:      decimal.Zero,
		ExitDebtBalance:    decimal.Zero,
	}
	if a.Debt != nil {
		p.LoanPrincipal = a.Debt.Principal
		if n := len(projection.DebtSchedule); n > 0 {
			p.ExitDebtBalance = projection.DebtSchedule[n-1].EndingBalance
		}
	}
	return p
}
