package cashflow

import (
	"github.com/shopspring/decimal"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
)

// escalatedAmount evaluates a line's escalation rule at operating period t.
// Dispatch is on the rule's tag:
//   - NONE: the base amount, unchanged
//   - FIXED_PERCENT: base compounded by (1 + rate) once per elapsed
//     escalation interval since the line started
//   - STEP_SCHEDULE: the amount of the latest step at or before t, or the
//     base amount before the first step takes effect
func escalatedAmount(base decimal.Decimal, rule domain.EscalationRule, startPeriod int, t int) decimal.Decimal {
	switch rule.Kind {
	case domain.EscalationKindFixedPercent:
		start := startPeriod
		if start < 1 {
			start = 1
		}
		elapsed := t - start
		if elapsed <= 0 || rule.FrequencyPeriods < 1 {
			return base
		}
		escalations := elapsed / rule.FrequencyPeriods
		factor := one.Add(rule.Rate)
		amount := base
		for i := 0; i < escalations; i++ {
			amount = amount.Mul(factor)
		}
		return amount

	case domain.EscalationKindStepSchedule:
		amount := base
		for _, step := range rule.Steps {
			if step.FromPeriod > t {
				break
			}
			amount = step.Amount
		}
		return amount

	default:
		return base
	}
}
