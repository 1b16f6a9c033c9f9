package cashflow

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
)

// Projection is the full output of one cash flow run: the ordered period
// sequence plus the amortization schedule debt service was taken from
type Projection struct {
	Periods      []domain.CashFlowPeriod
	DebtSchedule []domain.DebtServicePeriod
}

// ProjectionService projects an assumption set into per-period cash flows.
// It is stateless: every call is a pure function of its input, so the same
// assumption set always produces an identical sequence
type ProjectionService struct{}

// NewProjectionService creates a new ProjectionService instance
func NewProjectionService() *ProjectionService {
	return &ProjectionService{}
}

var one = decimal.NewFromInt(1)

// Project produces one CashFlowPeriod per period from 0 through the hold
// length. Period 0 is the acquisition period and carries no operating
// activity; the final period is also the terminal/exit period.
// Logic per operating period t:
//  1. Sum active revenue lines (escalated) into gross potential revenue,
//     including percentage-rent overage above the breakpoint
//  2. Apply vacancy and credit loss multiplicatively for effective gross revenue
//  3. Sum active expense lines (escalated) into operating expenses
//  4. Compute recovery income on eligible recoverable expenses, scaled by
//     the occupied share (vacant space cannot generate reimbursement)
//  5. NOI = effective gross revenue + recoveries - operating expenses
//  6. Subtract capital items for cash flow before debt service
//  7. Subtract scheduled debt service for net cash flow
func (s *ProjectionService) Project(a *domain.AssumptionSet) (*Projection, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assumption set: %w", err)
	}

	occupiedShare := one.Sub(a.VacancyPct)
	effectiveFactor := occupiedShare.Mul(one.Sub(a.CreditLossPct))

	var schedule []domain.DebtServicePeriod
	if a.Debt != nil {
		schedule = Amortize(*a.Debt, a.PeriodType.PeriodsPerYear(), a.HoldPeriods)
	}

	periods := make([]domain.CashFlowPeriod, 0, a.HoldPeriods+1)

	// Acquisition row: all zero operating values
	periods = append(periods, domain.CashFlowPeriod{Period: 0})

	for t := 1; t <= a.HoldPeriods; t++ {
		gpr := decimal.Zero
		for i := range a.RevenueLines {
			line := &a.RevenueLines[i]
			if !activeAt(line.StartPeriod, line.EndPeriod, t) {
				continue
			}
			base := escalatedAmount(line.BaseAmount, line.Escalation, line.StartPeriod, t)
			gpr = gpr.Add(base)
			if line.Kind == domain.RevenueKindPercentageRent {
				gpr = gpr.Add(percentageRent(line, base, t))
			}
		}

		expenses := decimal.Zero
		recoveries := decimal.Zero
		for i := range a.ExpenseLines {
			line := &a.ExpenseLines[i]
			if !activeAt(line.StartPeriod, line.EndPeriod, t) {
				continue
			}
			amount := escalatedAmount(line.BaseAmount, line.Escalation, line.StartPeriod, t)
			expenses = expenses.Add(amount)
			if line.Recoverable && a.CategoryRecoverable(line.Category) {
				recoveries = recoveries.Add(amount.Mul(line.RecoveryPct).Mul(occupiedShare))
			}
		}

		capital := decimal.Zero
		for i := range a.CapitalItems {
			item := &a.CapitalItems[i]
			if !activeAt(item.StartPeriod, item.EndPeriod, t) {
				continue
			}
			capital = capital.Add(item.Amount)
		}

		egr := gpr.Mul(effectiveFactor)
		noi := egr.Add(recoveries).Sub(expenses)
		cfbd := noi.Sub(capital)

		debtService := decimal.Zero
		if len(schedule) >= t {
			debtService = schedule[t-1].Payment
		}

		periods = append(periods, domain.CashFlowPeriod{
			Period:                t,
			GrossPotentialRevenue: gpr,
			EffectiveGrossRevenue: egr,
			OperatingExpenses:     expenses,
			RecoveryIncome:        recoveries,
			NOI:                   noi,
			CapitalItems:          capital,
			CashFlowBeforeDebt:    cfbd,
			DebtService:           debtService,
			NetCashFlow:           cfbd.Sub(debtService),
		})
	}

	return &Projection{Periods: periods, DebtSchedule: schedule}, nil
}

// activeAt reports whether a line's window covers operating period t.
// Period 0 is the acquisition period, so a start of 0 begins in period 1.
// A window starting beyond the hold simply never activates
func activeAt(start int, end *int, t int) bool {
	effectiveStart := start
	if effectiveStart < 1 {
		effectiveStart = 1
	}
	if t < effectiveStart {
		return false
	}
	if end != nil && t > *end {
		return false
	}
	return true
}

// percentageRent computes the overage above the breakpoint for one period.
// Natural-breakpoint convention: max(0, sales * rate - base rent for the
// period). A zero base rent makes the natural breakpoint undefined, which is
// treated as "no percentage rent" rather than a division by zero.
// Fixed breakpoint: max(0, (sales - breakpoint) * rate)
func percentageRent(line *domain.RevenueLine, escalatedBase decimal.Decimal, t int) decimal.Decimal {
	if line.PercentageRate.IsZero() {
		return decimal.Zero
	}
	sales := escalatedAmount(line.SalesVolume, line.Escalation, line.StartPeriod, t)

	if line.Breakpoint == nil {
		if escalatedBase.IsZero() {
			return decimal.Zero
		}
		overage := sales.Mul(line.PercentageRate).Sub(escalatedBase)
		if overage.IsNegative() {
			return decimal.Zero
		}
		return overage
	}

	excess := sales.Sub(*line.Breakpoint)
	if excess.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return excess.Mul(line.PercentageRate)
}
