package core

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"pocketclinic/pkg"
)

const (
	// MaxSMSLength is the longest body a referral may carry.
	MaxSMSLength = 160

	truncationMarker = "..."

	defaultCondition = "an unidentified condition"
	defaultAction    = "Seek medical attention"
)

// ReferralComposer builds the advisory SMS body.  TeleconsultURL is appended
// to every composed message when set.
type ReferralComposer struct {
	TeleconsultURL string
}

// NewReferralComposer constructs a composer for the given teleconsult URL.
func NewReferralComposer(url string) *ReferralComposer {
	return &ReferralComposer{TeleconsultURL: strings.TrimSpace(url)}
}

func (c *ReferralComposer) reference() string {
	if c.TeleconsultURL == "" {
		return ""
	}
	return "Teleconsult: " + c.TeleconsultURL
}

// ComposeTriage composes a referral for a triage result, leading with the
// categorical label and the urgency.
func (c *ReferralComposer) ComposeTriage(t pkg.TriageResult) pkg.ReferralMessage {
	if t.Urgency == "" {
		return c.Compose("", t.Recommendation)
	}
	condition := fmt.Sprintf("%s [%s]", t.Label, strings.ToUpper(string(t.Urgency)))
	return c.Compose(condition, t.Recommendation)
}

// Compose builds "<condition>: <recommendation>. <reference>".  Missing input
// falls back to the ALERT template built from whatever is available.
func (c *ReferralComposer) Compose(condition, recommendation string) pkg.ReferralMessage {
	condition = strings.TrimSpace(condition)
	action := sentence(recommendation)
	if condition == "" || action == "" {
		return Fallback(condition, recommendation)
	}
	body := fmt.Sprintf("%s: %s.", condition, action)
	if ref := c.reference(); ref != "" {
		body += " " + ref
	}
	return bounded(body, condition, recommendation)
}

// FromText bounds a body produced elsewhere, such as by a model, appending the
// teleconsult reference when the text does not already carry it.
func (c *ReferralComposer) FromText(text string, t pkg.TriageResult) pkg.ReferralMessage {
	text = strings.TrimSpace(text)
	if text == "" {
		return c.ComposeTriage(t)
	}
	if c.TeleconsultURL != "" && !strings.Contains(text, c.TeleconsultURL) {
		text += " " + c.reference()
	}
	return bounded(text, string(t.Label), t.Recommendation)
}

// Fallback renders "ALERT: You may have <condition>. <action>." using defaults
// for missing parts.
func Fallback(condition, action string) pkg.ReferralMessage {
	cond := strings.TrimSpace(condition)
	if cond == "" {
		cond = defaultCondition
	}
	act := sentence(action)
	if act == "" {
		act = defaultAction
	}
	return bounded(fmt.Sprintf("ALERT: You may have %s. %s.", cond, act), condition, action)
}

func bounded(body, condition, recommendation string) pkg.ReferralMessage {
	msg := pkg.ReferralMessage{Body: body, Condition: condition, Recommendation: recommendation}
	if utf8.RuneCountInString(body) > MaxSMSLength {
		runes := []rune(body)
		msg.Body = string(runes[:MaxSMSLength-len(truncationMarker)]) + truncationMarker
		msg.Truncated = true
	}
	return msg
}

// sentence trims the text, drops trailing periods and capitalises the first
// letter.
func sentence(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), ". ")
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
