package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"pocketclinic/pkg"
)

var (
	// ErrNoInput is returned when a request carries neither text, symptom
	// tokens nor audio.
	ErrNoInput = errors.New("provide either text_message, symptoms or audio_file")
	// ErrTranscription wraps failures of the speech-to-text collaborator.
	ErrTranscription = errors.New("transcription failed")
	// ErrInternal is returned when a stage fails unexpectedly.
	ErrInternal = errors.New("internal error")
)

// Transcriber converts a speech recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Audio is a recorded symptom report.
type Audio struct {
	Filename string
	Data     []byte
}

// Request is one triage invocation.  Exactly one of Audio, Symptoms or Text is
// used, in that order of preference.
type Request struct {
	PhoneNumber string
	Text        string
	Symptoms    []string
	Audio       *Audio
}

// Pipeline runs normalize, extract, classify, compose and dispatch in order.
// Analyzer, Phraser and Transcriber are optional collaborators.
type Pipeline struct {
	Extractor   *SymptomExtractor
	Composer    *ReferralComposer
	Gateway     *DispatchGateway
	Analyzer    *Analyzer
	Phraser     *Phraser
	Transcriber Transcriber
	Logger      *slog.Logger
}

// NewPipeline wires the mandatory stages.  Optional collaborators are set on
// the returned value.
func NewPipeline(composer *ReferralComposer, gateway *DispatchGateway, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Extractor: NewSymptomExtractor(),
		Composer:  composer,
		Gateway:   gateway,
		Logger:    logger,
	}
}

// Process runs one request to completion.  The only errors returned are
// ErrNoInput, ErrTranscription and ErrInternal; dispatch problems are reported
// in the report's Dispatch outcome.
func (p *Pipeline) Process(ctx context.Context, req Request) (report *pkg.TriageReport, err error) {
	requestID := uuid.NewString()
	log := p.Logger.With("request_id", requestID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panic", "panic", r, "stack", string(debug.Stack()))
			report, err = nil, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	started := time.Now()
	in, err := p.input(ctx, req)
	if err != nil {
		return nil, err
	}
	transcript := NormalizeTranscript(in)
	log.Info("transcript normalized", "transcript", transcript)

	ext := p.extract(ctx, log, transcript)
	log.Info("symptoms extracted", "strategy", ext.Strategy, "symptoms", ext.Record)

	triage := Classify(ext.Record)
	log.Info("triage decided", "urgency", triage.Urgency, "label", triage.Label)

	referral := p.compose(ctx, log, triage)
	outcome := p.Gateway.Dispatch(ctx, req.PhoneNumber, referral)
	log.Info("referral dispatched", "status", outcome.Status)

	return &pkg.TriageReport{
		RequestID:  requestID,
		Transcript: transcript,
		Strategy:   string(ext.Strategy),
		Symptoms:   ext.Record,
		Triage:     triage,
		Referral:   referral,
		Dispatch:   outcome,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}, nil
}

func (p *Pipeline) input(ctx context.Context, req Request) (Input, error) {
	switch {
	case req.Audio != nil && len(req.Audio.Data) > 0:
		if p.Transcriber == nil {
			return nil, fmt.Errorf("%w: no speech-to-text service configured", ErrTranscription)
		}
		text, err := p.Transcriber.Transcribe(ctx, req.Audio.Filename, bytes.NewReader(req.Audio.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
		}
		return TextInput(text), nil
	case len(req.Symptoms) > 0:
		return TokenInput(req.Symptoms), nil
	case strings.TrimSpace(req.Text) != "":
		return TextInput(req.Text), nil
	}
	return nil, ErrNoInput
}

// extract always scans the patient's own words.  A structured answer from the
// analyzer is merged on top, so the model can add symptoms but never clear one
// the transcript mentions.
func (p *Pipeline) extract(ctx context.Context, log *slog.Logger, transcript string) Extraction {
	own := p.Extractor.Extract(transcript)
	if p.Analyzer == nil {
		return own
	}
	answer, err := p.Analyzer.Analyze(ctx, transcript)
	if err != nil {
		log.Warn("symptom analysis failed, using transcript", "err", err)
		return own
	}
	ext := p.Extractor.Extract(answer)
	if !ext.Strategy.Structured() {
		log.Warn("analysis answer was not structured, using transcript")
		return own
	}
	ext.Record = Merge(ext.Record, own.Record)
	return ext
}

func (p *Pipeline) compose(ctx context.Context, log *slog.Logger, triage pkg.TriageResult) pkg.ReferralMessage {
	if p.Phraser != nil {
		text, err := p.Phraser.Phrase(ctx, triage, p.Composer.TeleconsultURL)
		if err == nil && text != "" {
			return p.Composer.FromText(text, triage)
		}
		log.Warn("sms phrasing unavailable, using template", "err", err)
	}
	return p.Composer.ComposeTriage(triage)
}
