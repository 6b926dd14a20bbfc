package core

import (
	"context"
	"errors"

	"pocketclinic/internal/llm"
)

// Completer is the part of the LLM client used for text generation.
type Completer interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// Analyzer asks the language model for a first-pass structured reading of a
// transcript.  The answer is free-form text and is handed to the extractor.
type Analyzer struct {
	LLM Completer
}

// NewAnalyzer constructs an Analyzer with the given LLM client.
func NewAnalyzer(client Completer) *Analyzer {
	return &Analyzer{LLM: client}
}

// Analyze returns the model's raw answer for the transcript.  This is a
// blocking call; callers fall back to the transcript itself on error.
func (a *Analyzer) Analyze(ctx context.Context, transcript string) (string, error) {
	if a == nil || a.LLM == nil {
		return "", errors.New("analyzer: no llm client")
	}
	return a.LLM.Chat(ctx, []llm.Message{
		{Role: "system", Content: AnalysisPrompt},
		{Role: "user", Content: "Patient message: " + transcript},
	})
}
