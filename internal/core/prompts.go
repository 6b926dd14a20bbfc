package core

// prompts.go holds the prompts sent to the language model.  Keeping them in
// one place makes them easy to tweak without touching the pipeline.

const (
	// AnalysisPrompt asks the model for a structured symptom record.  The
	// extractor copes with answers that ignore the requested shape.
	AnalysisPrompt = "You are a medical symptom analyzer for a remote Nigerian clinic following WHO IMCI guidance. " +
		"Read the patient message and answer with a single JSON object and nothing else, using the keys " +
		`"fever", "cough", "difficulty_breathing", "diarrhea" (true or false) and "duration_days" ` +
		"(an integer, omitted when the message gives no duration). Do not guess symptoms that are not mentioned."

	// PhrasingPrompt asks the model to word the outbound SMS.  The result is
	// bounded to 160 characters before sending.
	PhrasingPrompt = "You are a healthcare provider in Nigeria sending an SMS to a patient. " +
		"Write one clear, culturally appropriate SMS of at most 160 characters that states the triage result " +
		"with the right urgency and the recommended action. Do not name a disease or diagnosis. Return only the SMS text."
)
