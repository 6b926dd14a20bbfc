package pkg

import "time"

// SymptomRecord holds the structured symptoms extracted from a single report.
// Every flag is explicit once extraction completes; DurationDays is nil when
// the report carried no duration evidence.
type SymptomRecord struct {
	Fever               bool `json:"fever"`
	Cough               bool `json:"cough"`
	DifficultyBreathing bool `json:"difficulty_breathing"`
	Diarrhea            bool `json:"diarrhea"`
	DurationDays        *int `json:"duration_days,omitempty"`
}

// WithDuration returns a copy of the record carrying the given duration.
// Negative durations are dropped.
func (r SymptomRecord) WithDuration(days int) SymptomRecord {
	if days < 0 {
		r.DurationDays = nil
		return r
	}
	d := days
	r.DurationDays = &d
	return r
}

// Duration reports the duration in days and whether it was present.
func (r SymptomRecord) Duration() (int, bool) {
	if r.DurationDays == nil {
		return 0, false
	}
	return *r.DurationDays, true
}

// Urgency is the triage severity bucket.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyModerate Urgency = "moderate"
	UrgencyCritical Urgency = "critical"
)

// Label is the categorical form of a triage decision.  The set is closed and
// maps one-to-one onto Urgency.  Labels name the action the patient should
// take and never a condition: the rules only rank urgency.
type Label string

const (
	LabelAllClear       Label = "All clear"
	LabelClinicVisit    Label = "Clinic visit advised"
	LabelUrgentReferral Label = "Urgent referral"
)

// Label returns the categorical label for the urgency.
func (u Urgency) Label() Label {
	switch u {
	case UrgencyCritical:
		return LabelUrgentReferral
	case UrgencyModerate:
		return LabelClinicVisit
	default:
		return LabelAllClear
	}
}

// TriageResult is the outcome of the rule engine.
type TriageResult struct {
	Urgency        Urgency `json:"urgency"`
	Recommendation string  `json:"recommendation"`
	Label          Label   `json:"label"`
}

// ReferralMessage is the advisory SMS body together with the decision it was
// composed from.  Body never exceeds 160 characters.
type ReferralMessage struct {
	Body           string `json:"body"`
	Condition      string `json:"condition"`
	Recommendation string `json:"recommendation"`
	Truncated      bool   `json:"truncated,omitempty"`
}

// DispatchStatus describes the terminal state of a send attempt.
type DispatchStatus string

const (
	DispatchSent      DispatchStatus = "sent"
	DispatchSimulated DispatchStatus = "simulated"
	DispatchError     DispatchStatus = "error"
)

// DispatchOutcome is the result of handing a referral to the SMS provider.
// MessageID is only set when Status is sent and Cause only when Status is
// error.  Body is always populated so callers can display the message.
type DispatchOutcome struct {
	Status    DispatchStatus `json:"status"`
	MessageID string         `json:"message_id,omitempty"`
	Cause     string         `json:"cause,omitempty"`
	To        string         `json:"to,omitempty"`
	Body      string         `json:"message_text"`
}

// ProcessRequest is the JSON body accepted by the text endpoint.  Symptoms is
// an optional pre-tokenised list used instead of free text.
type ProcessRequest struct {
	PhoneNumber string   `json:"phone_number"`
	TextMessage string   `json:"text_message,omitempty"`
	Symptoms    []string `json:"symptoms,omitempty"`
}

// ProcessResponse is the envelope returned by every API endpoint.
type ProcessResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// TriageReport is everything the pipeline produced for one request.
type TriageReport struct {
	RequestID  string          `json:"request_id"`
	Transcript string          `json:"transcript"`
	Strategy   string          `json:"extraction_strategy"`
	Symptoms   SymptomRecord   `json:"symptoms"`
	Triage     TriageResult    `json:"triage"`
	Referral   ReferralMessage `json:"referral"`
	Dispatch   DispatchOutcome `json:"sms_status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}
