package core

import "pocketclinic/pkg"

// Recommendations attached to each urgency level.
const (
	RecommendCritical = "seek emergency medical attention immediately."
	RecommendModerate = "visit a clinic if symptoms persist more than 2 days."
	RecommendLow      = "monitor symptoms at home and rest."
)

// criticalDurationDays is the longest illness that is not escalated on its
// own.
const criticalDurationDays = 4

// Classify maps a symptom record to an urgency and recommendation.  Rules are
// evaluated top-down and must stay in this order: breathing difficulty or a
// long illness escalates regardless of the other flags.
func Classify(r pkg.SymptomRecord) pkg.TriageResult {
	days, _ := r.Duration()
	switch {
	case r.DifficultyBreathing || days > criticalDurationDays:
		return result(pkg.UrgencyCritical, RecommendCritical)
	case r.Fever || r.Cough || r.Diarrhea:
		return result(pkg.UrgencyModerate, RecommendModerate)
	default:
		return result(pkg.UrgencyLow, RecommendLow)
	}
}

func result(u pkg.Urgency, recommendation string) pkg.TriageResult {
	return pkg.TriageResult{Urgency: u, Recommendation: recommendation, Label: u.Label()}
}
