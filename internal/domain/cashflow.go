package domain

import (
	"github.com/shopspring/decimal"
)

// CashFlowPeriod represents one row of a projection.
// Period 0 is the acquisition period and carries no operating activity;
// operating periods run from 1 through the hold length, and the final row is
// also the terminal/exit period. Produced by the cash flow engine; never
// mutated afterward
type CashFlowPeriod struct {
	Period                int
	GrossPotentialRevenue decimal.Decimal
	EffectiveGrossRevenue decimal.Decimal
	OperatingExpenses     decimal.Decimal
	RecoveryIncome        decimal.Decimal
	NOI                   decimal.Decimal
	CapitalItems          decimal.Decimal
	CashFlowBeforeDebt    decimal.Decimal
	DebtService           decimal.Decimal
	NetCashFlow           decimal.Decimal
}

// DebtServicePeriod represents one row of an amortization schedule
type DebtServicePeriod struct {
	Period        int
	Payment       decimal.Decimal
	Interest      decimal.Decimal
	Principal     decimal.Decimal
	EndingBalance decimal.Decimal
}
