package sensitivity

import (
	"github.com/Greggwolin/landscape-sub000/internal/domain"
)

// Thresholds are the basis-point cutoffs applied to average absolute impact.
// A variable lands in the strictest tier whose cutoff it meets
type Thresholds struct {
	CriticalBps float64
	HighBps     float64
	MediumBps   float64
}

// DefaultThresholds are the fixed tiering policy: CRITICAL >= 500 bps,
// HIGH 200-499, MEDIUM 50-199, LOW below 50
func DefaultThresholds() Thresholds {
	return Thresholds{CriticalBps: 500, HighBps: 200, MediumBps: 50}
}

// milestoneSchedule maps milestones to the tiers they cumulatively include
var milestoneSchedule = []struct {
	milestone domain.Milestone
	includes  []domain.Tier
}{
	{domain.MilestoneNapkin, []domain.Tier{domain.TierCritical}},
	{domain.MilestoneBackOfEnvelope, []domain.Tier{domain.TierCritical, domain.TierHigh}},
	{domain.MilestoneFullModel, []domain.Tier{domain.TierCritical, domain.TierHigh, domain.TierMedium}},
	{domain.MilestoneKitchenSink, []domain.Tier{domain.TierCritical, domain.TierHigh, domain.TierMedium, domain.TierLow}},
}

// Classify assigns each ranked result to exactly one tier and maps tiers
// onto the cumulative milestone schedule: every milestone includes all
// variables from stricter tiers, so the schedule is monotonic
func Classify(results []domain.SensitivityResult, thresholds Thresholds) domain.MilestoneClassification {
	assignments := make([]domain.TierAssignment, len(results))
	byTier := map[domain.Tier][]domain.VariablePath{}

	for i, result := range results {
		tier := classifyImpact(result.AvgAbsImpactBps, thresholds)
		assignments[i] = domain.TierAssignment{
			Variable:        result.Variable,
			Tier:            tier,
			AvgAbsImpactBps: result.AvgAbsImpactBps,
		}
		byTier[tier] = append(byTier[tier], result.Variable)
	}

	milestones := make([]domain.MilestoneGroup, 0, len(milestoneSchedule))
	for _, entry := range milestoneSchedule {
		group := domain.MilestoneGroup{Milestone: entry.milestone, Variables: []domain.VariablePath{}}
		for _, tier := range entry.includes {
			group.Variables = append(group.Variables, byTier[tier]...)
		}
		milestones = append(milestones, group)
	}

	return domain.MilestoneClassification{
		Assignments: assignments,
		Milestones:  milestones,
	}
}

func classifyImpact(bps float64, t Thresholds) domain.Tier {
	switch {
	case bps >= t.CriticalBps:
		return domain.TierCritical
	case bps >= t.HighBps:
		return domain.TierHigh
	case bps >= t.MediumBps:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}
