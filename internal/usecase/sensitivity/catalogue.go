package sensitivity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
)

// DefaultCatalogue builds the standard variable catalogue for an assumption
// set: deal-level rates, every revenue and expense line's base amount,
// escalation rates, percentage-rent sales volumes, capital amounts, and debt
// terms when present
func DefaultCatalogue(a *domain.AssumptionSet) []domain.VariablePath {
	paths := []domain.VariablePath{
		"acquisition_price",
		"vacancy",
		"credit_loss",
		"exit_cap_rate",
	}
	for i := range a.RevenueLines {
		paths = append(paths, domain.VariablePath(fmt.Sprintf("revenue[%d].base", i)))
		if a.RevenueLines[i].Escalation.Kind == domain.EscalationKindFixedPercent {
			paths = append(paths, domain.VariablePath(fmt.Sprintf("revenue[%d].escalation", i)))
		}
		if a.RevenueLines[i].Kind == domain.RevenueKindPercentageRent {
			paths = append(paths, domain.VariablePath(fmt.Sprintf("revenue[%d].sales_volume", i)))
		}
	}
	for i := range a.ExpenseLines {
		paths = append(paths, domain.VariablePath(fmt.Sprintf("expense[%d].base", i)))
	}
	for i := range a.CapitalItems {
		paths = append(paths, domain.VariablePath(fmt.Sprintf("capital[%d].amount", i)))
	}
	if a.Debt != nil {
		paths = append(paths, "debt.rate", "debt.principal")
	}
	return paths
}

// applyScale returns a fresh assumption set with only the addressed variable
// multiplied by factor. The original is never touched: all perturbation goes
// through Clone. A path that resolves to nothing on this set returns the
// clone unchanged, which by construction yields zero deltas downstream
func applyScale(a *domain.AssumptionSet, path domain.VariablePath, factor decimal.Decimal) *domain.AssumptionSet {
	set := a.Clone()

	switch string(path) {
	case "acquisition_price":
		set.AcquisitionPrice = set.AcquisitionPrice.Mul(factor)
		return set
	case "vacancy":
		set.VacancyPct = set.VacancyPct.Mul(factor)
		return set
	case "credit_loss":
		set.CreditLossPct = set.CreditLossPct.Mul(factor)
		return set
	case "exit_cap_rate":
		set.ExitCapRate = set.ExitCapRate.Mul(factor)
		return set
	case "discount_rate":
		set.DiscountRate = set.DiscountRate.Mul(factor)
		return set
	case "debt.rate":
		if set.Debt != nil {
			set.Debt.AnnualRate = set.Debt.AnnualRate.Mul(factor)
		}
		return set
	case "debt.principal":
		if set.Debt != nil {
			set.Debt.Principal = set.Debt.Principal.Mul(factor)
		}
		return set
	}

	kind, index, field, ok := parseLinePath(string(path))
	if !ok {
		return set
	}

	switch kind {
	case "revenue":
		if index >= len(set.RevenueLines) {
			return set
		}
		line := &set.RevenueLines[index]
		switch field {
		case "base":
			line.BaseAmount = line.BaseAmount.Mul(factor)
		case "sales_volume":
			line.SalesVolume = line.SalesVolume.Mul(factor)
		case "escalation":
			line.Escalation.Rate = line.Escalation.Rate.Mul(factor)
		}
	case "expense":
		if index >= len(set.ExpenseLines) {
			return set
		}
		line := &set.ExpenseLines[index]
		switch field {
		case "base":
			line.BaseAmount = line.BaseAmount.Mul(factor)
		case "escalation":
			line.Escalation.Rate = line.Escalation.Rate.Mul(factor)
		}
	case "capital":
		if index >= len(set.CapitalItems) {
			return set
		}
		if field == "amount" {
			set.CapitalItems[index].Amount = set.CapitalItems[index].Amount.Mul(factor)
		}
	}
	return set
}

// parseLinePath splits "kind[index].field" into its parts
func parseLinePath(path string) (kind string, index int, field string, ok bool) {
	open := strings.Index(path, "[")
	close := strings.Index(path, "].")
	if open < 1 || close < open+2 || close+2 >= len(path) {
		return "", 0, "", false
	}
	if _, err := fmt.Sscanf(path[open+1:close], "%d", &index); err != nil || index < 0 {
		return "", 0, "", false
	}
	return path[:open], index, path[close+2:], true
}
