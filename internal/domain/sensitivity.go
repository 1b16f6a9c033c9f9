package domain

// VariablePath addresses one perturbable assumption, e.g. "vacancy",
// "exit_cap_rate", "revenue[0].base", "expense[1].base", "debt.rate".
// A path that resolves to nothing on a given assumption set perturbs nothing
// and therefore always yields zero deltas
type VariablePath string

// SensitivityPoint is the outcome of one perturbed scenario.
// IRR and DeltaBps are nil when the scenario's IRR failed to converge;
// undefined points are excluded from the average impact, never zeroed
type SensitivityPoint struct {
	Magnitude float64 // fractional perturbation, e.g. -0.20
	IRR       *float64
	DeltaBps  *float64 // (perturbed IRR - baseline IRR) * 10000
}

// SensitivityResult is one row of a sensitivity analysis: the four
// perturbation outcomes for a single variable plus the average absolute
// impact used for ranking
type SensitivityResult struct {
	Variable        VariablePath
	Points          []SensitivityPoint
	AvgAbsImpactBps float64 // mean of |DeltaBps| over defined points
	DefinedPoints   int
}

// Tier represents the criticality classification of a variable
type Tier string

const (
	TierCritical Tier = "CRITICAL"
	TierHigh     Tier = "HIGH"
	TierMedium   Tier = "MEDIUM"
	TierLow      Tier = "LOW"
)

// Milestone names a level of analytical rigor in the progressive-disclosure
// schedule. Each milestone includes every variable from all stricter tiers
type Milestone string

const (
	MilestoneNapkin         Milestone = "NAPKIN"
	MilestoneBackOfEnvelope Milestone = "BACK_OF_ENVELOPE"
	MilestoneFullModel      Milestone = "FULL_MODEL"
	MilestoneKitchenSink    Milestone = "KITCHEN_SINK"
)

// TierAssignment places one variable in exactly one tier
type TierAssignment struct {
	Variable        VariablePath
	Tier            Tier
	AvgAbsImpactBps float64
}

// MilestoneGroup lists the variables a milestone requires, cumulatively
// including every stricter tier's variables
type MilestoneGroup struct {
	Milestone Milestone
	Variables []VariablePath
}

// MilestoneClassification groups ranked sensitivity results into criticality
// tiers and maps tiers onto the progressive-disclosure milestone schedule
type MilestoneClassification struct {
	Assignments []TierAssignment // descending by average absolute impact
	Milestones  []MilestoneGroup // napkin first, kitchen sink last
}
