package domain

import (
	"github.com/shopspring/decimal"
)

// DSCRPoint is the debt service coverage ratio for one period.
// Periods with no debt service have no DSCR point at all (undefined, not zero)
type DSCRPoint struct {
	Period int
	Value  decimal.Decimal
}

// InvestmentMetrics is the scalar summary derived from one cash-flow sequence.
// IRR fields are nil when the root search failed to converge: an undefined
// IRR is reported as such, never coerced to zero or to the seed rate.
// Recomputed fresh for every assumption set variant, never cached across them
type InvestmentMetrics struct {
	ExitValue       decimal.Decimal // terminal NOI annualized / exit cap rate
	NetExitProceeds decimal.Decimal // exit value less disposition costs
	UnleveredIRR    *float64        // annualized, fractional
	LeveredIRR      *float64
	NPV             decimal.Decimal
	EquityMultiple  decimal.Decimal
	CashOnCash      decimal.Decimal // year 1, annualized
	DSCR            []DSCRPoint
}
