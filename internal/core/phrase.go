package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pocketclinic/internal/llm"
	"pocketclinic/pkg"
)

// Phraser lets the language model word the outbound SMS.  Its output is
// untrusted: the composer bounds it and the pipeline falls back to the
// deterministic template when it is empty or the call fails.
type Phraser struct {
	LLM Completer
}

// NewPhraser constructs a Phraser.
func NewPhraser(client Completer) *Phraser {
	return &Phraser{LLM: client}
}

// Phrase returns the model's SMS text for a triage result.
func (p *Phraser) Phrase(ctx context.Context, t pkg.TriageResult, teleconsultURL string) (string, error) {
	if p == nil || p.LLM == nil {
		return "", errors.New("phraser: no llm client")
	}
	prompt := fmt.Sprintf("Triage result: %s (%s urgency)\nRecommended action: %s", t.Label, t.Urgency, t.Recommendation)
	if teleconsultURL != "" {
		prompt += "\nFollow-up teleconsult: " + teleconsultURL
	}
	resp, err := p.LLM.Chat(ctx, []llm.Message{
		{Role: "system", Content: PhrasingPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(resp), `"`), nil
}
