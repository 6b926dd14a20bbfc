package core

import (
	"strings"
	"testing"
	"unicode/utf8"

	"pocketclinic/pkg"
)

func TestComposeTriageCritical(t *testing.T) {
	c := NewReferralComposer("https://teleclinic.ng/consult")
	msg := c.ComposeTriage(Classify(pkg.SymptomRecord{Fever: true, Cough: true, DifficultyBreathing: true}.WithDuration(4)))

	want := "Urgent referral [CRITICAL]: Seek emergency medical attention immediately. Teleconsult: https://teleclinic.ng/consult"
	if msg.Body != want {
		t.Fatalf("body = %q, want %q", msg.Body, want)
	}
	if msg.Truncated {
		t.Fatal("short body marked truncated")
	}
	if msg.Recommendation != RecommendCritical {
		t.Fatalf("recommendation = %q", msg.Recommendation)
	}
}

func TestComposeTriageNamesNoCondition(t *testing.T) {
	c := NewReferralComposer("https://teleclinic.ng/consult")
	tests := []struct {
		name   string
		rec    pkg.SymptomRecord
		prefix string
	}{
		{"diarrhea alone", pkg.SymptomRecord{Diarrhea: true}, "Clinic visit advised [MODERATE]:"},
		{"six days of diarrhea", pkg.SymptomRecord{Diarrhea: true}.WithDuration(6), "Urgent referral [CRITICAL]:"},
		{"nothing reported", pkg.SymptomRecord{}, "All clear [LOW]:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := c.ComposeTriage(Classify(tt.rec)).Body
			if !strings.HasPrefix(body, tt.prefix) {
				t.Fatalf("body = %q, want prefix %q", body, tt.prefix)
			}
			lower := strings.ToLower(body)
			for _, word := range []string{"malaria", "pneumonia"} {
				if strings.Contains(lower, word) {
					t.Fatalf("body names a condition the rules never decided: %q", body)
				}
			}
		})
	}
}

func TestComposeWithoutReference(t *testing.T) {
	c := NewReferralComposer("")
	msg := c.Compose("All clear [LOW]", RecommendLow)
	if want := "All clear [LOW]: Monitor symptoms at home and rest."; msg.Body != want {
		t.Fatalf("body = %q, want %q", msg.Body, want)
	}
}

func TestComposeTruncation(t *testing.T) {
	c := NewReferralComposer("")
	tests := []struct {
		name      string
		recLen    int
		wantLen   int
		truncated bool
	}{
		// "X: " + recommendation + "."
		{"fits exactly", MaxSMSLength - 4, MaxSMSLength, false},
		{"one over", MaxSMSLength - 3, MaxSMSLength, true},
		{"far over", 400, MaxSMSLength, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := c.Compose("X", strings.Repeat("a", tt.recLen))
			if n := utf8.RuneCountInString(msg.Body); n != tt.wantLen {
				t.Fatalf("len = %d, want %d", n, tt.wantLen)
			}
			if msg.Truncated != tt.truncated {
				t.Fatalf("truncated = %v, want %v", msg.Truncated, tt.truncated)
			}
			if tt.truncated && !strings.HasSuffix(msg.Body, "...") {
				t.Fatalf("truncated body %q lacks marker", msg.Body)
			}
			if !strings.HasPrefix(msg.Body, "X: A") {
				t.Fatalf("body lost its prefix: %q", msg.Body)
			}
		})
	}
}

func TestComposeCountsCharactersNotBytes(t *testing.T) {
	c := NewReferralComposer("")
	msg := c.Compose("Ọmọ", strings.Repeat("é", 200))
	if n := utf8.RuneCountInString(msg.Body); n != MaxSMSLength {
		t.Fatalf("len = %d runes, want %d", n, MaxSMSLength)
	}
	if !utf8.ValidString(msg.Body) {
		t.Fatal("truncation split a character")
	}
}

func TestComposeFallback(t *testing.T) {
	c := NewReferralComposer("https://teleclinic.ng/consult")
	tests := []struct {
		name, condition, action, want string
	}{
		{"missing condition", "", "rest at home.", "ALERT: You may have an unidentified condition. Rest at home."},
		{"missing action", "malaria", "", "ALERT: You may have malaria. Seek medical attention."},
		{"missing both", " ", " ", "ALERT: You may have an unidentified condition. Seek medical attention."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Compose(tt.condition, tt.action).Body; got != tt.want {
				t.Fatalf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposeTriageWithoutUrgencyFallsBack(t *testing.T) {
	c := NewReferralComposer("")
	msg := c.ComposeTriage(pkg.TriageResult{Recommendation: "see a doctor"})
	if want := "ALERT: You may have an unidentified condition. See a doctor."; msg.Body != want {
		t.Fatalf("body = %q, want %q", msg.Body, want)
	}
}

func TestFromText(t *testing.T) {
	c := NewReferralComposer("https://teleclinic.ng/consult")
	triage := Classify(pkg.SymptomRecord{Fever: true})

	msg := c.FromText("Please visit a clinic soon.", triage)
	if !strings.HasSuffix(msg.Body, "Teleconsult: https://teleclinic.ng/consult") {
		t.Fatalf("reference not appended: %q", msg.Body)
	}

	msg = c.FromText("Visit a clinic or see https://teleclinic.ng/consult today", triage)
	if strings.Count(msg.Body, "teleclinic.ng") != 1 {
		t.Fatalf("reference duplicated: %q", msg.Body)
	}

	msg = c.FromText(strings.Repeat("word ", 60), triage)
	if n := utf8.RuneCountInString(msg.Body); n != MaxSMSLength || !strings.HasSuffix(msg.Body, "...") {
		t.Fatalf("long model text not bounded: %d %q", n, msg.Body)
	}

	msg = c.FromText("  ", triage)
	if !strings.HasPrefix(msg.Body, "Clinic visit advised [MODERATE]:") {
		t.Fatalf("blank model text did not fall back to template: %q", msg.Body)
	}
}
