package cashflow

import (
	"github.com/shopspring/decimal"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
)

// Amortize builds a level-payment amortization schedule for the loan, one
// row per projection period from 1 through min(term, horizon).
// During the leading interest-only window the payment is interest alone and
// the balance does not move. After it, the payment is the level amount that
// retires the full principal over AmortizationPeriods. A zero rate amortizes
// the principal linearly. The final amortizing period clamps so the balance
// lands exactly on zero
func Amortize(terms domain.DebtTerms, periodsPerYear int, horizon int) []domain.DebtServicePeriod {
	length := terms.TermPeriods
	if horizon < length {
		length = horizon
	}
	if length <= 0 {
		return nil
	}

	periodicRate := terms.AnnualRate.Div(decimal.NewFromInt(int64(periodsPerYear)))
	payment := levelPayment(terms.Principal, periodicRate, terms.AmortizationPeriods)

	schedule := make([]domain.DebtServicePeriod, 0, length)
	balance := terms.Principal

	for t := 1; t <= length; t++ {
		interest := balance.Mul(periodicRate)

		var principal, total decimal.Decimal
		if t <= terms.InterestOnlyPeriods {
			principal = decimal.Zero
			total = interest
		} else {
			principal = payment.Sub(interest)
			total = payment
			// True up the final amortizing period so the balance retires
			// exactly despite rounding in the level-payment division
			if t == terms.InterestOnlyPeriods+terms.AmortizationPeriods || principal.GreaterThan(balance) {
				principal = balance
				total = interest.Add(principal)
			}
		}

		balance = balance.Sub(principal)
		schedule = append(schedule, domain.DebtServicePeriod{
			Period:        t,
			Payment:       total,
			Interest:      interest,
			Principal:     principal,
			EndingBalance: balance,
		})
	}

	return schedule
}

// levelPayment computes the constant per-period payment that retires
// principal P at periodic rate r over n periods: P * r / (1 - (1+r)^-n),
// evaluated as P * r * (1+r)^n / ((1+r)^n - 1) to stay in exact decimal
// arithmetic. A zero rate degenerates to straight-line principal
func levelPayment(principal, rate decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return principal
	}
	if rate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(n)))
	}

	compound := one
	factor := one.Add(rate)
	for i := 0; i < n; i++ {
		compound = compound.Mul(factor)
	}

	return principal.Mul(rate).Mul(compound).Div(compound.Sub(one))
}
