// internal/assistant/service.go
// Package assistant composes fan-out, context building and synthesis
// into the single per-query entry point.
package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"

	"omnisearch/internal/common/logger"
	"omnisearch/internal/common/observability"
	"omnisearch/internal/fanout"
	"omnisearch/internal/sources"
	"omnisearch/internal/synthesis"
)

// RunRequest is one user submission. Temperature and MaxTokens are
// pointers so an explicit zero survives to the engine; nil means "use
// the configured default".
type RunRequest struct {
	Text        string   `json:"text"`
	Persona     string   `json:"persona,omitempty"` // preset name; empty = first preset
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	MaxResults  int      `json:"maxResults,omitempty"`
}

// RunResult pairs the raw aggregate with the synthesis outcome. The
// aggregate is always populated, even when synthesis fails.
type RunResult struct {
	RequestID string            `json:"requestId"`
	Aggregate *fanout.Aggregate `json:"aggregate"`
	Context   synthesis.Context `json:"-"`
	Answer    synthesis.Outcome `json:"answer"`
	Elapsed   time.Duration     `json:"elapsedMs"`
}

// Defaults carries the configured generation parameters applied when a
// request leaves them unset.
type Defaults struct {
	ContextBudget int
	Temperature   float64
	MaxTokens     int
}

// Service runs queries end to end. Fan-outs for different queries
// overlap freely; generations serialize inside the engine.
type Service struct {
	coordinator *fanout.Coordinator
	builder     *synthesis.Builder
	engine      *synthesis.Engine
	personas    *synthesis.PersonaSet
	defaults    Defaults
	obs         *observability.Observability
	log         logger.Logger
}

func NewService(
	coordinator *fanout.Coordinator,
	builder *synthesis.Builder,
	engine *synthesis.Engine,
	personas *synthesis.PersonaSet,
	defaults Defaults,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		coordinator: coordinator,
		builder:     builder,
		engine:      engine,
		personas:    personas,
		defaults:    defaults,
		obs:         obs,
		log:         log,
	}
}

// RunQuery fans the query out, builds the bounded context and asks the
// model for an answer. A synthesis failure is recorded in the outcome;
// the raw aggregate is delivered regardless.
func (s *Service) RunQuery(ctx context.Context, req RunRequest) (*RunResult, error) {
	requestID := uuid.New().String()
	log := s.log.WithFields(map[string]interface{}{"requestId": requestID})
	start := time.Now()

	persona, err := s.personas.Resolve(req.Persona)
	if err != nil {
		return nil, err
	}

	agg, err := s.coordinator.Run(ctx, sources.Query{Text: req.Text, MaxResults: req.MaxResults})
	if err != nil {
		return nil, err
	}

	promptContext := s.builder.Build(agg, s.defaults.ContextBudget)
	log.Debug("Context built", map[string]interface{}{
		"includedSources": len(promptContext.Included),
		"contextBytes":    len(promptContext.Text),
		"truncated":       promptContext.Truncated,
	})

	temperature := s.defaults.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := s.defaults.MaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	outcome := s.engine.Synthesize(ctx, synthesis.Request{
		Persona:     persona.Prompt,
		Context:     promptContext,
		QueryText:   req.Text,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if !outcome.OK() {
		log.Warn("Synthesis failed, returning raw aggregate only", map[string]interface{}{
			"errorKind": string(outcome.ErrorKind),
			"message":   outcome.Message,
		})
	}

	elapsed := time.Since(start)
	status := "success"
	if !outcome.OK() {
		status = "failure"
	}
	if s.obs != nil {
		s.obs.RecordQueryProcessed(ctx, status)
		s.obs.RecordQueryDuration(ctx, elapsed, status)
	}
	log.Info("Query complete", map[string]interface{}{
		"elapsedMs": elapsed.Milliseconds(),
		"succeeded": len(agg.Succeeded()),
		"answered":  outcome.OK(),
	})

	return &RunResult{
		RequestID: requestID,
		Aggregate: agg,
		Context:   promptContext,
		Answer:    outcome,
		Elapsed:   elapsed,
	}, nil
}
