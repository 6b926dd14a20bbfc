package core

import (
	"testing"

	"pocketclinic/pkg"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   pkg.SymptomRecord
		want pkg.Urgency
		rec  string
	}{
		{"breathing", pkg.SymptomRecord{DifficultyBreathing: true}, pkg.UrgencyCritical, RecommendCritical},
		{"long illness", pkg.SymptomRecord{}.WithDuration(5), pkg.UrgencyCritical, RecommendCritical},
		{"four days fever", pkg.SymptomRecord{Fever: true}.WithDuration(4), pkg.UrgencyModerate, RecommendModerate},
		{"cough", pkg.SymptomRecord{Cough: true}, pkg.UrgencyModerate, RecommendModerate},
		{"diarrhea", pkg.SymptomRecord{Diarrhea: true}, pkg.UrgencyModerate, RecommendModerate},
		{"nothing", pkg.SymptomRecord{}, pkg.UrgencyLow, RecommendLow},
		{"nothing for two days", pkg.SymptomRecord{}.WithDuration(2), pkg.UrgencyLow, RecommendLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.in)
			if got.Urgency != tt.want || got.Recommendation != tt.rec {
				t.Fatalf("Classify() = %+v, want %s / %q", got, tt.want, tt.rec)
			}
			if got.Label != tt.want.Label() {
				t.Fatalf("label = %q, want %q", got.Label, tt.want.Label())
			}
		})
	}
}

func TestClassifyBreathingDominates(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		r := pkg.SymptomRecord{
			DifficultyBreathing: true,
			Fever:               mask&1 != 0,
			Cough:               mask&2 != 0,
			Diarrhea:            mask&4 != 0,
		}
		if got := Classify(r).Urgency; got != pkg.UrgencyCritical {
			t.Fatalf("Classify(%+v) = %s, want critical", r, got)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	r := pkg.SymptomRecord{Fever: true, Cough: true}.WithDuration(3)
	first := Classify(r)
	for i := 0; i < 50; i++ {
		if got := Classify(r); got != first {
			t.Fatalf("call %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestUrgencyLabels(t *testing.T) {
	want := map[pkg.Urgency]pkg.Label{
		pkg.UrgencyCritical: pkg.LabelUrgentReferral,
		pkg.UrgencyModerate: pkg.LabelClinicVisit,
		pkg.UrgencyLow:      pkg.LabelAllClear,
	}
	for u, l := range want {
		if got := u.Label(); got != l {
			t.Errorf("%s.Label() = %q, want %q", u, got, l)
		}
	}
}
