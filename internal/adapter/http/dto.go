package http

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/cashflow"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/metrics"
)

// Monetary values cross the wire as strings to keep decimal precision out of
// JSON float territory, the same convention the engine uses for storage.
// Amounts are rounded to cents at this boundary only; rates keep full
// precision. Undefined IRRs serialize as null, never 0.

// EscalationStepDTO is one step of an explicit escalation schedule
type EscalationStepDTO struct {
	FromPeriod int    `json:"from_period"`
	Amount     string `json:"amount"`
}

// EscalationRuleDTO is the wire form of an escalation rule
type EscalationRuleDTO struct {
	Kind             string              `json:"kind"`
	Rate             string              `json:"rate,omitempty"`
	FrequencyPeriods int                 `json:"frequency_periods,omitempty"`
	Steps            []EscalationStepDTO `json:"steps,omitempty"`
}

// RevenueLineDTO is the wire form of a revenue line
type RevenueLineDTO struct {
	Name           string            `json:"name"`
	Kind           string            `json:"kind"`
	StartPeriod    int               `json:"start_period"`
	EndPeriod      *int              `json:"end_period,omitempty"`
	BaseAmount     string            `json:"base_amount"`
	Escalation     EscalationRuleDTO `json:"escalation"`
	SalesVolume    string            `json:"sales_volume,omitempty"`
	PercentageRate string            `json:"percentage_rate,omitempty"`
	Breakpoint     *string           `json:"breakpoint,omitempty"`
}

// ExpenseLineDTO is the wire form of an expense line
type ExpenseLineDTO struct {
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	StartPeriod int               `json:"start_period"`
	EndPeriod   *int              `json:"end_period,omitempty"`
	BaseAmount  string            `json:"base_amount"`
	Escalation  EscalationRuleDTO `json:"escalation"`
	Recoverable bool              `json:"recoverable"`
	RecoveryPct string            `json:"recovery_pct,omitempty"`
}

// CapitalItemDTO is the wire form of a capital item
type CapitalItemDTO struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	StartPeriod int    `json:"start_period"`
	EndPeriod   *int   `json:"end_period,omitempty"`
}

// DebtTermsDTO is the wire form of debt terms
type DebtTermsDTO struct {
	Principal           string `json:"principal"`
	AnnualRate          string `json:"annual_rate"`
	AmortizationPeriods int    `json:"amortization_periods"`
	InterestOnlyPeriods int    `json:"interest_only_periods"`
	TermPeriods         int    `json:"term_periods"`
}

// AssumptionSetDTO is the wire form of an assumption set
type AssumptionSetDTO struct {
	Name                  string           `json:"name"`
	AcquisitionPrice      string           `json:"acquisition_price"`
	AcquisitionDate       string           `json:"acquisition_date,omitempty"` // RFC 3339
	HoldPeriods           int              `json:"hold_periods"`
	PeriodType            string           `json:"period_type"`
	DiscountRate          string           `json:"discount_rate"`
	ExitCapRate           string           `json:"exit_cap_rate"`
	DispositionCostPct    string           `json:"disposition_cost_pct,omitempty"`
	VacancyPct            string           `json:"vacancy_pct,omitempty"`
	CreditLossPct         string           `json:"credit_loss_pct,omitempty"`
	RecoveryTreatment     string           `json:"recovery_treatment,omitempty"`
	RecoverableCategories []string         `json:"recoverable_categories,omitempty"`
	RevenueLines          []RevenueLineDTO `json:"revenue_lines"`
	ExpenseLines          []ExpenseLineDTO `json:"expense_lines,omitempty"`
	CapitalItems          []CapitalItemDTO `json:"capital_items,omitempty"`
	Debt                  *DebtTermsDTO    `json:"debt,omitempty"`
}

// CashFlowPeriodDTO is the wire form of one projection row
type CashFlowPeriodDTO struct {
	Period                int    `json:"period"`
	GrossPotentialRevenue string `json:"gross_potential_revenue"`
	EffectiveGrossRevenue string `json:"effective_gross_revenue"`
	OperatingExpenses     string `json:"operating_expenses"`
	RecoveryIncome        string `json:"recovery_income"`
	NOI                   string `json:"noi"`
	CapitalItems          string `json:"capital_items"`
	CashFlowBeforeDebt    string `json:"cash_flow_before_debt"`
	DebtService           string `json:"debt_service"`
	NetCashFlow           string `json:"net_cash_flow"`
}

// DebtServicePeriodDTO is the wire form of one amortization row
type DebtServicePeriodDTO struct {
	Period        int    `json:"period"`
	Payment       string `json:"payment"`
	Interest      string `json:"interest"`
	Principal     string `json:"principal"`
	EndingBalance string `json:"ending_balance"`
}

// ProjectionResponse is the body of POST /v1/projections
type ProjectionResponse struct {
	Periods      []CashFlowPeriodDTO    `json:"periods"`
	DebtSchedule []DebtServicePeriodDTO `json:"debt_schedule,omitempty"`
}

// DealParametersDTO is the wire form of deal-level metric inputs
type DealParametersDTO struct {
	AcquisitionPrice   string `json:"acquisition_price"`
	DiscountRate       string `json:"discount_rate"`
	ExitCapRate        string `json:"exit_cap_rate"`
	DispositionCostPct string `json:"disposition_cost_pct,omitempty"`
	PeriodsPerYear     int    `json:"periods_per_year"`
	LoanPrincipal      string `json:"loan_principal,omitempty"`
	ExitDebtBalance    string `json:"exit_debt_balance,omitempty"`
}

// MetricsRequest is the body of POST /v1/metrics
type MetricsRequest struct {
	Periods    []CashFlowPeriodDTO `json:"periods"`
	Parameters DealParametersDTO   `json:"parameters"`
}

// DSCRPointDTO is the wire form of one DSCR point
type DSCRPointDTO struct {
	Period int    `json:"period"`
	Value  string `json:"value"`
}

// MetricsResponse is the body of a metrics computation
type MetricsResponse struct {
	ExitValue       string         `json:"exit_value"`
	NetExitProceeds string         `json:"net_exit_proceeds"`
	UnleveredIRR    *float64       `json:"unlevered_irr"`
	LeveredIRR      *float64       `json:"levered_irr"`
	NPV             string         `json:"npv"`
	EquityMultiple  string         `json:"equity_multiple"`
	CashOnCash      string         `json:"cash_on_cash"`
	DSCR            []DSCRPointDTO `json:"dscr"`
}

// AnalysisRequest is the body of POST /v1/analyses
type AnalysisRequest struct {
	Baseline  AssumptionSetDTO `json:"baseline"`
	Catalogue []string         `json:"catalogue,omitempty"`
}

// SensitivityPointDTO is the wire form of one perturbed scenario outcome
type SensitivityPointDTO struct {
	Magnitude float64  `json:"magnitude"`
	IRR       *float64 `json:"irr"`
	DeltaBps  *float64 `json:"delta_bps"`
}

// SensitivityResultDTO is the wire form of one ranked sensitivity row
type SensitivityResultDTO struct {
	Variable        string                `json:"variable"`
	Points          []SensitivityPointDTO `json:"points"`
	AvgAbsImpactBps float64               `json:"avg_abs_impact_bps"`
	DefinedPoints   int                   `json:"defined_points"`
}

// TierAssignmentDTO is the wire form of one tier assignment
type TierAssignmentDTO struct {
	Variable        string  `json:"variable"`
	Tier            string  `json:"tier"`
	AvgAbsImpactBps float64 `json:"avg_abs_impact_bps"`
}

// MilestoneGroupDTO is the wire form of one milestone's variable list
type MilestoneGroupDTO struct {
	Milestone string   `json:"milestone"`
	Variables []string `json:"variables"`
}

// ClassificationDTO is the wire form of a milestone classification
type ClassificationDTO struct {
	Assignments []TierAssignmentDTO `json:"assignments"`
	Milestones  []MilestoneGroupDTO `json:"milestones"`
}

// AnalysisResponse is the body of a sensitivity analysis
type AnalysisResponse struct {
	ID             string                 `json:"id,omitempty"`
	CreatedAt      *time.Time             `json:"created_at,omitempty"`
	BaselineName   string                 `json:"baseline_name"`
	BaselineIRR    *float64               `json:"baseline_irr,omitempty"`
	Results        []SensitivityResultDTO `json:"results"`
	Classification ClassificationDTO      `json:"classification"`
}

// ----- request parsing -----

// parseDecimal parses a required decimal field
func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s format: %q", field, value)
	}
	return d, nil
}

// parseOptionalDecimal treats an absent field as zero
func parseOptionalDecimal(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return parseDecimal(field, value)
}

func (dto *EscalationRuleDTO) toDomain(owner string) (domain.EscalationRule, error) {
	rule := domain.EscalationRule{
		Kind:             domain.EscalationKindNone,
		FrequencyPeriods: dto.FrequencyPeriods,
	}
	if dto.Kind != "" {
		rule.Kind = domain.EscalationKind(dto.Kind)
	}

	var err error
	if rule.Rate, err = parseOptionalDecimal(owner+".escalation.rate", dto.Rate); err != nil {
		return rule, err
	}
	for _, step := range dto.Steps {
		amount, err := parseDecimal(owner+".escalation.steps.amount", step.Amount)
		if err != nil {
			return rule, err
		}
		rule.Steps = append(rule.Steps, domain.EscalationStep{FromPeriod: step.FromPeriod, Amount: amount})
	}
	return rule, nil
}

func (dto *AssumptionSetDTO) toDomain() (*domain.AssumptionSet, error) {
	set := &domain.AssumptionSet{
		Name:              dto.Name,
		HoldPeriods:       dto.HoldPeriods,
		PeriodType:        domain.PeriodType(dto.PeriodType),
		RecoveryTreatment: domain.RecoveryTreatmentNone,
	}
	if dto.RecoveryTreatment != "" {
		set.RecoveryTreatment = domain.RecoveryTreatment(dto.RecoveryTreatment)
	}
	for _, cat := range dto.RecoverableCategories {
		set.RecoverableCategories = append(set.RecoverableCategories, domain.ExpenseCategory(cat))
	}

	if dto.AcquisitionDate != "" {
		date, err := time.Parse(time.RFC3339, dto.AcquisitionDate)
		if err != nil {
			return nil, fmt.Errorf("invalid acquisition_date format: %v", err)
		}
		set.AcquisitionDate = date
	}

	var err error
	if set.AcquisitionPrice, err = parseDecimal("acquisition_price", dto.AcquisitionPrice); err != nil {
		return nil, err
	}
	if set.DiscountRate, err = parseDecimal("discount_rate", dto.DiscountRate); err != nil {
		return nil, err
	}
	if set.ExitCapRate, err = parseDecimal("exit_cap_rate", dto.ExitCapRate); err != nil {
		return nil, err
	}
	if set.DispositionCostPct, err = parseOptionalDecimal("disposition_cost_pct", dto.DispositionCostPct); err != nil {
		return nil, err
	}
	if set.VacancyPct, err = parseOptionalDecimal("vacancy_pct", dto.VacancyPct); err != nil {
		return nil, err
	}
	if set.CreditLossPct, err = parseOptionalDecimal("credit_loss_pct", dto.CreditLossPct); err != nil {
		return nil, err
	}

	for i, lineDTO := range dto.RevenueLines {
		owner := fmt.Sprintf("revenue_lines[%d]", i)
		line := domain.RevenueLine{
			Name:        lineDTO.Name,
			Kind:        domain.RevenueKind(lineDTO.Kind),
			StartPeriod: lineDTO.StartPeriod,
			EndPeriod:   lineDTO.EndPeriod,
		}
		if line.BaseAmount, err = parseDecimal(owner+".base_amount", lineDTO.BaseAmount); err != nil {
			return nil, err
		}
		if line.Escalation, err = lineDTO.Escalation.toDomain(owner); err != nil {
			return nil, err
		}
		if line.SalesVolume, err = parseOptionalDecimal(owner+".sales_volume", lineDTO.SalesVolume); err != nil {
			return nil, err
		}
		if line.PercentageRate, err = parseOptionalDecimal(owner+".percentage_rate", lineDTO.PercentageRate); err != nil {
			return nil, err
		}
		if lineDTO.Breakpoint != nil {
			bp, err := parseDecimal(owner+".breakpoint", *lineDTO.Breakpoint)
			if err != nil {
				return nil, err
			}
			line.Breakpoint = &bp
		}
		set.RevenueLines = append(set.RevenueLines, line)
	}

	for i, lineDTO := range dto.ExpenseLines {
		owner := fmt.Sprintf("expense_lines[%d]", i)
		line := domain.ExpenseLine{
			Name:        lineDTO.Name,
			Category:    domain.ExpenseCategory(lineDTO.Category),
			StartPeriod: lineDTO.StartPeriod,
			EndPeriod:   lineDTO.EndPeriod,
			Recoverable: lineDTO.Recoverable,
		}
		if line.BaseAmount, err = parseDecimal(owner+".base_amount", lineDTO.BaseAmount); err != nil {
			return nil, err
		}
		if line.Escalation, err = lineDTO.Escalation.toDomain(owner); err != nil {
			return nil, err
		}
		if line.RecoveryPct, err = parseOptionalDecimal(owner+".recovery_pct", lineDTO.RecoveryPct); err != nil {
			return nil, err
		}
		set.ExpenseLines = append(set.ExpenseLines, line)
	}

	for i, itemDTO := range dto.CapitalItems {
		owner := fmt.Sprintf("capital_items[%d]", i)
		item := domain.CapitalItem{
			Name:        itemDTO.Name,
			Kind:        domain.CapitalKind(itemDTO.Kind),
			StartPeriod: itemDTO.StartPeriod,
			EndPeriod:   itemDTO.EndPeriod,
		}
		if item.Amount, err = parseDecimal(owner+".amount", itemDTO.Amount); err != nil {
			return nil, err
		}
		set.CapitalItems = append(set.CapitalItems, item)
	}

	if dto.Debt != nil {
		debt := &domain.DebtTerms{
			AmortizationPeriods: dto.Debt.AmortizationPeriods,
			InterestOnlyPeriods: dto.Debt.InterestOnlyPeriods,
			TermPeriods:         dto.Debt.TermPeriods,
		}
		if debt.Principal, err = parseDecimal("debt.principal", dto.Debt.Principal); err != nil {
			return nil, err
		}
		if debt.AnnualRate, err = parseDecimal("debt.annual_rate", dto.Debt.AnnualRate); err != nil {
			return nil, err
		}
		set.Debt = debt
	}

	return set, nil
}

func (dto *CashFlowPeriodDTO) toDomain() (domain.CashFlowPeriod, error) {
	cf := domain.CashFlowPeriod{Period: dto.Period}
	fields := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"gross_potential_revenue", dto.GrossPotentialRevenue, &cf.GrossPotentialRevenue},
		{"effective_gross_revenue", dto.EffectiveGrossRevenue, &cf.EffectiveGrossRevenue},
		{"operating_expenses", dto.OperatingExpenses, &cf.OperatingExpenses},
		{"recovery_income", dto.RecoveryIncome, &cf.RecoveryIncome},
		{"noi", dto.NOI, &cf.NOI},
		{"capital_items", dto.CapitalItems, &cf.CapitalItems},
		{"cash_flow_before_debt", dto.CashFlowBeforeDebt, &cf.CashFlowBeforeDebt},
		{"debt_service", dto.DebtService, &cf.DebtService},
		{"net_cash_flow", dto.NetCashFlow, &cf.NetCashFlow},
	}
	for _, f := range fields {
		d, err := parseOptionalDecimal(f.name, f.value)
		if err != nil {
			return cf, err
		}
		*f.dst = d
	}
	return cf, nil
}

func (dto *DealParametersDTO) toDomain() (metrics.DealParameters, error) {
	p := metrics.DealParameters{PeriodsPerYear: dto.PeriodsPerYear}

	var err error
	if p.AcquisitionPrice, err = parseDecimal("acquisition_price", dto.AcquisitionPrice); err != nil {
		return p, err
	}
	if p.DiscountRate, err = parseDecimal("discount_rate", dto.DiscountRate); err != nil {
		return p, err
	}
	if p.ExitCapRate, err = parseDecimal("exit_cap_rate", dto.ExitCapRate); err != nil {
		return p, err
	}
	if p.DispositionCostPct, err = parseOptionalDecimal("disposition_cost_pct", dto.DispositionCostPct); err != nil {
		return p, err
	}
	if p.LoanPrincipal, err = parseOptionalDecimal("loan_principal", dto.LoanPrincipal); err != nil {
		return p, err
	}
	if p.ExitDebtBalance, err = parseOptionalDecimal("exit_debt_balance", dto.ExitDebtBalance); err != nil {
		return p, err
	}
	return p, nil
}

// ----- response building -----

func projectionToDTO(projection *cashflow.Projection) ProjectionResponse {
	resp := ProjectionResponse{
		Periods: make([]CashFlowPeriodDTO, 0, len(projection.Periods)),
	}
	for _, p := range projection.Periods {
		resp.Periods = append(resp.Periods, CashFlowPeriodDTO{
			Period:                p.Period,
			GrossPotentialRevenue: p.GrossPotentialRevenue.StringFixed(2),
			EffectiveGrossRevenue: p.EffectiveGrossRevenue.StringFixed(2),
			OperatingExpenses:     p.OperatingExpenses.StringFixed(2),
			RecoveryIncome:        p.RecoveryIncome.StringFixed(2),
			NOI:                   p.NOI.StringFixed(2),
			CapitalItems:          p.CapitalItems.StringFixed(2),
			CashFlowBeforeDebt:    p.CashFlowBeforeDebt.StringFixed(2),
			DebtService:           p.DebtService.StringFixed(2),
			NetCashFlow:           p.NetCashFlow.StringFixed(2),
		})
	}
	for _, d := range projection.DebtSchedule {
		resp.DebtSchedule = append(resp.DebtSchedule, DebtServicePeriodDTO{
			Period:        d.Period,
			Payment:       d.Payment.StringFixed(2),
			Interest:      d.Interest.StringFixed(2),
			Principal:     d.Principal.StringFixed(2),
			EndingBalance: d.EndingBalance.StringFixed(2),
		})
	}
	return resp
}

func metricsToDTO(m *domain.InvestmentMetrics) MetricsResponse {
	resp := MetricsResponse{
		ExitValue:       m.ExitValue.StringFixed(2),
		NetExitProceeds: m.NetExitProceeds.StringFixed(2),
		UnleveredIRR:    m.UnleveredIRR,
		LeveredIRR:      m.LeveredIRR,
		NPV:             m.NPV.StringFixed(2),
		EquityMultiple:  m.EquityMultiple.StringFixed(4),
		CashOnCash:      m.CashOnCash.StringFixed(4),
		DSCR:            make([]DSCRPointDTO, 0, len(m.DSCR)),
	}
	for _, point := range m.DSCR {
		resp.DSCR = append(resp.DSCR, DSCRPointDTO{Period: point.Period, Value: point.Value.StringFixed(4)})
	}
	return resp
}

func resultsToDTO(results []domain.SensitivityResult) []SensitivityResultDTO {
	out := make([]SensitivityResultDTO, 0, len(results))
	for _, r := range results {
		dto := SensitivityResultDTO{
			Variable:        string(r.Variable),
			AvgAbsImpactBps: r.AvgAbsImpactBps,
			DefinedPoints:   r.DefinedPoints,
		}
		for _, p := range r.Points {
			dto.Points = append(dto.Points, SensitivityPointDTO{
				Magnitude: p.Magnitude,
				IRR:       p.IRR,
				DeltaBps:  p.DeltaBps,
			})
		}
		out = append(out, dto)
	}
	return out
}

func classificationToDTO(c domain.MilestoneClassification) ClassificationDTO {
	dto := ClassificationDTO{
		Assignments: make([]TierAssignmentDTO, 0, len(c.Assignments)),
		Milestones:  make([]MilestoneGroupDTO, 0, len(c.Milestones)),
	}
	for _, a := range c.Assignments {
		dto.Assignments = append(dto.Assignments, TierAssignmentDTO{
			Variable:        string(a.Variable),
			Tier:            string(a.Tier),
			AvgAbsImpactBps: a.AvgAbsImpactBps,
		})
	}
	for _, g := range c.Milestones {
		group := MilestoneGroupDTO{Milestone: string(g.Milestone), Variables: make([]string, 0, len(g.Variables))}
		for _, v := range g.Variables {
			group.Variables = append(group.Variables, string(v))
		}
		dto.Milestones = append(dto.Milestones, group)
	}
	return dto
}
