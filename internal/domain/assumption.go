package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PeriodType represents the granularity of a projection
type PeriodType string

const (
	PeriodTypeMonthly   PeriodType = "MONTHLY"
	PeriodTypeQuarterly PeriodType = "QUARTERLY"
	PeriodTypeAnnual    PeriodType = "ANNUAL"
)

// PeriodsPerYear returns the number of periods in a calendar year for this granularity
func (pt PeriodType) PeriodsPerYear() int {
	switch pt {
	case PeriodTypeMonthly:
		return 12
	case PeriodTypeQuarterly:
		return 4
	case PeriodTypeAnnual:
		return 1
	default:
		return 0
	}
}

// RevenueKind represents the type of a revenue line
type RevenueKind string

const (
	RevenueKindBaseRent       RevenueKind = "BASE_RENT"
	RevenueKindPercentageRent RevenueKind = "PERCENTAGE_RENT"
	RevenueKindOtherIncome    RevenueKind = "OTHER_INCOME"
)

// ExpenseCategory represents the category of an expense line
// Categories drive recovery eligibility under NNN and modified-gross treatments
type ExpenseCategory string

const (
	ExpenseCategoryTaxes      ExpenseCategory = "TAXES"
	ExpenseCategoryInsurance  ExpenseCategory = "INSURANCE"
	ExpenseCategoryCAM        ExpenseCategory = "CAM"
	ExpenseCategoryManagement ExpenseCategory = "MANAGEMENT"
	ExpenseCategoryUtilities  ExpenseCategory = "UTILITIES"
	ExpenseCategoryOther      ExpenseCategory = "OTHER"
)

// RecoveryTreatment represents how operating expenses are reimbursed by tenants
type RecoveryTreatment string

const (
	RecoveryTreatmentNone          RecoveryTreatment = "NONE"
	RecoveryTreatmentNNN           RecoveryTreatment = "NNN"
	RecoveryTreatmentModifiedGross RecoveryTreatment = "MODIFIED_GROSS"
	RecoveryTreatmentGross         RecoveryTreatment = "GROSS"
)

// CapitalKind represents the type of a capital item
type CapitalKind string

const (
	CapitalKindTenantImprovement CapitalKind = "TENANT_IMPROVEMENT"
	CapitalKindLeasingCommission CapitalKind = "LEASING_COMMISSION"
	CapitalKindReserve           CapitalKind = "RESERVE"
	CapitalKindOther             CapitalKind = "OTHER"
)

// EscalationKind represents the escalation rule variant
type EscalationKind string

const (
	EscalationKindNone         EscalationKind = "NONE"
	EscalationKindFixedPercent EscalationKind = "FIXED_PERCENT"
	EscalationKindStepSchedule EscalationKind = "STEP_SCHEDULE"
)

// EscalationStep is one entry of an explicit step schedule:
// from FromPeriod onward the line amount becomes Amount, until a later step takes over
type EscalationStep struct {
	FromPeriod int
	Amount     decimal.Decimal
}

// EscalationRule is a tagged variant: NONE, FIXED_PERCENT (Rate compounding
// every FrequencyPeriods periods), or STEP_SCHEDULE (explicit Steps).
// Callers dispatch on Kind; only the fields of the active variant are read.
type EscalationRule struct {
	Kind             EscalationKind
	Rate             decimal.Decimal  // FIXED_PERCENT: fractional rate per escalation (e.g. 0.03)
	FrequencyPeriods int              // FIXED_PERCENT: periods between escalations (e.g. 12 on a monthly projection)
	Steps            []EscalationStep // STEP_SCHEDULE: ascending by FromPeriod
}

// Validate ensures the escalation rule adheres to domain rules
func (e *EscalationRule) Validate() error {
	switch e.Kind {
	case EscalationKindNone:
		return nil
	case EscalationKindFixedPercent:
		if e.FrequencyPeriods < 1 {
			return errors.New("fixed-percent escalation frequency must be at least 1 period")
		}
		return nil
	case EscalationKindStepSchedule:
		if len(e.Steps) == 0 {
			return errors.New("step-schedule escalation must have at least one step")
		}
		for i, step := range e.Steps {
			if step.FromPeriod < 0 {
				return errors.New("escalation step period cannot be negative")
			}
			if i > 0 && step.FromPeriod <= e.Steps[i-1].FromPeriod {
				return errors.New("escalation steps must be in strictly ascending period order")
			}
		}
		return nil
	default:
		return fmt.Errorf("escalation kind must be NONE, FIXED_PERCENT, or STEP_SCHEDULE, got %q", e.Kind)
	}
}

// RevenueLine represents one revenue assumption (rent, percentage rent, other income)
type RevenueLine struct {
	ID          uuid.UUID
	Name        string
	Kind        RevenueKind
	StartPeriod int
	EndPeriod   *int // nil = active through the end of the hold
	BaseAmount  decimal.Decimal
	Escalation  EscalationRule

	// Percentage-rent fields (Kind == PERCENTAGE_RENT only)
	SalesVolume    decimal.Decimal  // tenant sales per period
	PercentageRate decimal.Decimal  // fractional rate applied to sales (e.g. 0.06)
	Breakpoint     *decimal.Decimal // nil = natural breakpoint (base rent / percentage rate)
}

// Validate ensures the revenue line adheres to domain rules
func (l *RevenueLine) Validate() error {
	if l.Name == "" {
		return errors.New("revenue line name cannot be empty")
	}
	if l.Kind != RevenueKindBaseRent && l.Kind != RevenueKindPercentageRent && l.Kind != RevenueKindOtherIncome {
		return fmt.Errorf("revenue line kind must be BASE_RENT, PERCENTAGE_RENT, or OTHER_INCOME, got %q", l.Kind)
	}
	if err := validateWindow(l.StartPeriod, l.EndPeriod); err != nil {
		return fmt.Errorf("revenue line %q: %w", l.Name, err)
	}
	if l.Kind == RevenueKindPercentageRent {
		if l.PercentageRate.IsNegative() {
			return fmt.Errorf("revenue line %q: percentage rate cannot be negative", l.Name)
		}
		if l.Breakpoint != nil && l.Breakpoint.IsNegative() {
			return fmt.Errorf("revenue line %q: breakpoint cannot be negative", l.Name)
		}
	}
	if err := l.Escalation.Validate(); err != nil {
		return fmt.Errorf("revenue line %q: %w", l.Name, err)
	}
	return nil
}

// ExpenseLine represents one operating expense assumption
type ExpenseLine struct {
	ID          uuid.UUID
	Name        string
	Category    ExpenseCategory
	StartPeriod int
	EndPeriod   *int
	BaseAmount  decimal.Decimal
	Escalation  EscalationRule
	Recoverable bool
	RecoveryPct decimal.Decimal // fraction of the expense billable to tenants when eligible
}

// Validate ensures the expense line adheres to domain rules
func (l *ExpenseLine) Validate() error {
	if l.Name == "" {
		return errors.New("expense line name cannot be empty")
	}
	if err := validateWindow(l.StartPeriod, l.EndPeriod); err != nil {
		return fmt.Errorf("expense line %q: %w", l.Name, err)
	}
	if l.Recoverable {
		if l.RecoveryPct.IsNegative() || l.RecoveryPct.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("expense line %q: recovery percentage must be between 0 and 1", l.Name)
		}
	}
	if err := l.Escalation.Validate(); err != nil {
		return fmt.Errorf("expense line %q: %w", l.Name, err)
	}
	return nil
}

// CapitalItem represents a capital outflow (TI, leasing commission, reserve)
// charged in every period of its active window; a one-time item has EndPeriod == StartPeriod
type CapitalItem struct {
	ID          uuid.UUID
	Name        string
	Kind        CapitalKind
	Amount      decimal.Decimal
	StartPeriod int
	EndPeriod   *int
}

// Validate ensures the capital item adheres to domain rules
func (c *CapitalItem) Validate() error {
	if c.Name == "" {
		return errors.New("capital item name cannot be empty")
	}
	if err := validateWindow(c.StartPeriod, c.EndPeriod); err != nil {
		return fmt.Errorf("capital item %q: %w", c.Name, err)
	}
	return nil
}

// DebtTerms represents the financing assumptions for a deal
type DebtTerms struct {
	Principal           decimal.Decimal
	AnnualRate          decimal.Decimal // fractional (e.g. 0.055)
	AmortizationPeriods int             // periods over which the loan fully amortizes
	InterestOnlyPeriods int             // leading IO window, 0 = none
	TermPeriods         int             // periods until maturity
}

// Validate ensures the debt terms adhere to domain rules
func (d *DebtTerms) Validate() error {
	if d.Principal.LessThanOrEqual(decimal.Zero) {
		return errors.New("debt principal must be positive")
	}
	if d.AnnualRate.IsNegative() {
		return errors.New("debt rate cannot be negative")
	}
	if d.AmortizationPeriods <= 0 {
		return errors.New("debt amortization periods must be positive")
	}
	if d.InterestOnlyPeriods < 0 {
		return errors.New("debt interest-only periods cannot be negative")
	}
	if d.TermPeriods <= 0 {
		return errors.New("debt term must be positive")
	}
	return nil
}

// AssumptionSet is the unit of analysis: a typed, immutable description of a
// property's revenue, expense, debt, and exit assumptions for one scenario.
// It is never mutated after construction; perturbation goes through Clone so
// sensitivity scenarios can run in parallel without cross-contamination.
type AssumptionSet struct {
	ID   uuid.UUID
	Name string

	AcquisitionPrice   decimal.Decimal
	AcquisitionDate    time.Time
	HoldPeriods        int
	PeriodType         PeriodType
	DiscountRate       decimal.Decimal
	ExitCapRate        decimal.Decimal
	DispositionCostPct decimal.Decimal

	VacancyPct    decimal.Decimal
	CreditLossPct decimal.Decimal

	RecoveryTreatment     RecoveryTreatment
	RecoverableCategories []ExpenseCategory // MODIFIED_GROSS: categories tenants reimburse

	RevenueLines []RevenueLine
	ExpenseLines []ExpenseLine
	CapitalItems []CapitalItem
	Debt         *DebtTerms
}

var one = decimal.NewFromInt(1)

// Validate ensures the assumption set adheres to domain rules
// Returns an error if validation fails; a set that fails validation is
// rejected before any computation begins, never silently corrected
func (a *AssumptionSet) Validate() error {
	if a.AcquisitionPrice.LessThanOrEqual(decimal.Zero) {
		return errors.New("acquisition price must be positive")
	}
	if a.HoldPeriods <= 0 {
		return errors.New("hold period must be positive")
	}
	if a.PeriodType.PeriodsPerYear() == 0 {
		return fmt.Errorf("period type must be MONTHLY, QUARTERLY, or ANNUAL, got %q", a.PeriodType)
	}
	if a.VacancyPct.IsNegative() || a.VacancyPct.GreaterThanOrEqual(one) {
		return errors.New("vacancy percentage must be in [0, 1)")
	}
	if a.CreditLossPct.IsNegative() || a.CreditLossPct.GreaterThanOrEqual(one) {
		return errors.New("credit loss percentage must be in [0, 1)")
	}
	if a.DispositionCostPct.IsNegative() || a.DispositionCostPct.GreaterThanOrEqual(one) {
		return errors.New("disposition cost percentage must be in [0, 1)")
	}
	switch a.RecoveryTreatment {
	case RecoveryTreatmentNone, RecoveryTreatmentNNN, RecoveryTreatmentModifiedGross, RecoveryTreatmentGross:
	default:
		return fmt.Errorf("recovery treatment must be NONE, NNN, MODIFIED_GROSS, or GROSS, got %q", a.RecoveryTreatment)
	}
	for i := range a.RevenueLines {
		if err := a.RevenueLines[i].Validate(); err != nil {
			return err
		}
	}
	for i := range a.ExpenseLines {
		if err := a.ExpenseLines[i].Validate(); err != nil {
			return err
		}
	}
	for i := range a.CapitalItems {
		if err := a.CapitalItems[i].Validate(); err != nil {
			return err
		}
	}
	if a.Debt != nil {
		if err := a.Debt.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CategoryRecoverable reports whether expenses of the given category are
// eligible for tenant reimbursement under the set's recovery treatment.
// NNN recovers taxes, insurance, and CAM; MODIFIED_GROSS recovers the
// configured subset; GROSS and NONE recover nothing
func (a *AssumptionSet) CategoryRecoverable(cat ExpenseCategory) bool {
	switch a.RecoveryTreatment {
	case RecoveryTreatmentNNN:
		return cat == ExpenseCategoryTaxes || cat == ExpenseCategoryInsurance || cat == ExpenseCategoryCAM
	case RecoveryTreatmentModifiedGross:
		for _, c := range a.RecoverableCategories {
			if c == cat {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Clone returns a deep copy of the assumption set with the same ID.
// Every slice and pointer field is copied so that mutating the clone can
// never be observed through the original
func (a *AssumptionSet) Clone() *AssumptionSet {
	clone := *a

	clone.RevenueLines = make([]RevenueLine, len(a.RevenueLines))
	for i, l := range a.RevenueLines {
		clone.RevenueLines[i] = l
		if l.EndPeriod != nil {
			end := *l.EndPeriod
			clone.RevenueLines[i].EndPeriod = &end
		}
		if l.Breakpoint != nil {
			bp := *l.Breakpoint
			clone.RevenueLines[i].Breakpoint = &bp
		}
		if len(l.Escalation.Steps) > 0 {
			steps := make([]EscalationStep, len(l.Escalation.Steps))
			copy(steps, l.Escalation.Steps)
			clone.RevenueLines[i].Escalation.Steps = steps
		}
	}

	clone.ExpenseLines = make([]ExpenseLine, len(a.ExpenseLines))
	for i, l := range a.ExpenseLines {
		clone.ExpenseLines[i] = l
		if l.EndPeriod != nil {
			end := *l.EndPeriod
			clone.ExpenseLines[i].EndPeriod = &end
		}
		if len(l.Escalation.Steps) > 0 {
			steps := make([]EscalationStep, len(l.Escalation.Steps))
			copy(steps, l.Escalation.Steps)
			clone.ExpenseLines[i].Escalation.Steps = steps
		}
	}

	clone.CapitalItems = make([]CapitalItem, len(a.CapitalItems))
	for i, c := range a.CapitalItems {
		clone.CapitalItems[i] = c
		if c.EndPeriod != nil {
			end := *c.EndPeriod
			clone.CapitalItems[i].EndPeriod = &end
		}
	}

	if len(a.RecoverableCategories) > 0 {
		cats := make([]ExpenseCategory, len(a.RecoverableCategories))
		copy(cats, a.RecoverableCategories)
		clone.RecoverableCategories = cats
	}

	if a.Debt != nil {
		debt := *a.Debt
		clone.Debt = &debt
	}

	return &clone
}

// validateWindow checks the shared start/end invariant for lines and capital items
func validateWindow(start int, end *int) error {
	if start < 0 {
		return errors.New("start period cannot be negative")
	}
	if end != nil && *end < start {
		return errors.New("end period cannot precede start period")
	}
	return nil
}
