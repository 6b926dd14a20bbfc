package core

import (
	"fmt"
	"strings"
)

// UnspecifiedSymptoms is returned by NormalizeTranscript when the input carries
// nothing usable.
const UnspecifiedSymptoms = "unspecified symptoms"

// Input is one of the accepted raw input shapes: TextInput, TokenInput or
// PartialRecord.  The interface is sealed so NormalizeTranscript can match
// every case.
type Input interface {
	isInput()
}

// TextInput is free text as reported by the patient or transcribed from audio.
type TextInput string

// TokenInput is a list of symptom tokens such as ["fever", "cough"].
type TokenInput []string

// PartialRecord is the loosely structured answer of a model that was asked to
// list symptoms, duration and severity.
type PartialRecord struct {
	Symptoms     []string
	DurationDays *int
	Severity     string
}

func (TextInput) isInput()     {}
func (TokenInput) isInput()    {}
func (PartialRecord) isInput() {}

// NormalizeTranscript coerces any accepted input into a single string for
// pattern matching.  It never fails.
func NormalizeTranscript(in Input) string {
	switch v := in.(type) {
	case TextInput:
		if strings.TrimSpace(string(v)) == "" {
			return UnspecifiedSymptoms
		}
		return string(v)
	case TokenInput:
		if joined := joinTokens(v); joined != "" {
			return joined
		}
	case PartialRecord:
		joined := joinTokens(v.Symptoms)
		if joined == "" {
			return UnspecifiedSymptoms
		}
		parts := []string{joined}
		if v.DurationDays != nil {
			parts = append(parts, fmt.Sprintf("for %d days", *v.DurationDays))
		}
		if sev := strings.TrimSpace(v.Severity); sev != "" {
			parts = append(parts, fmt.Sprintf("with %s severity", sev))
		}
		return strings.Join(parts, " ")
	}
	return UnspecifiedSymptoms
}

func joinTokens(tokens []string) string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, ", ")
}
