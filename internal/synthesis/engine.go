// internal/synthesis/engine.go
package synthesis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	apperrors "omnisearch/internal/common/errors"
	"omnisearch/internal/common/logger"
	"omnisearch/internal/common/metrics"
)

// State is the engine lifecycle state. The model moves Unloaded →
// Loading → Ready once at startup, oscillates Ready ↔ Busy per
// generation, and returns to Unloaded on Close.
type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateBusy
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Request carries everything one generation needs.
type Request struct {
	Persona     string
	Context     Context
	QueryText   string
	Temperature float64
	MaxTokens   int
}

// Outcome is the terminal result of one synthesis attempt. Failures are
// values, never panics; a zero ErrorKind means Answer is valid.
type Outcome struct {
	Answer    string         `json:"answer,omitempty"`
	ErrorKind apperrors.Code `json:"errorKind,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// OK reports whether the synthesis produced an answer.
func (o Outcome) OK() bool {
	return o.ErrorKind == ""
}

func failure(err *apperrors.SynthesisError) Outcome {
	return Outcome{ErrorKind: err.Code, Message: err.Message}
}

// charsPerToken is the rough byte-per-token estimate used to check that
// the prompt plus the requested output fits the model window.
const charsPerToken = 4

// Engine owns the single model instance. One generation runs at a time;
// concurrent Synthesize calls for different queries queue on the
// generation mutex.
type Engine struct {
	model         Model
	contextWindow int
	log           logger.Logger

	state atomic.Int32
	genMu sync.Mutex
}

func NewEngine(model Model, contextWindow int, log logger.Logger) *Engine {
	return &Engine{
		model:         model,
		contextWindow: contextWindow,
		log:           log,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Load brings the model from Unloaded to Ready. Safe to call once;
// concurrent or repeated loads are rejected.
func (e *Engine) Load(ctx context.Context) error {
	if !e.state.CompareAndSwap(int32(StateUnloaded), int32(StateLoading)) {
		return fmt.Errorf("model is %s, cannot load", e.State())
	}
	e.log.Info("Loading model", nil)

	if err := e.model.Load(ctx); err != nil {
		e.state.Store(int32(StateUnloaded))
		return fmt.Errorf("model load failed: %w", err)
	}

	e.state.Store(int32(StateReady))
	e.log.Info("Model ready", nil)
	return nil
}

// Close unloads the model. In-flight generations finish first.
func (e *Engine) Close() error {
	e.genMu.Lock()
	defer e.genMu.Unlock()
	e.state.Store(int32(StateUnloaded))
	return e.model.Close()
}

// Synthesize composes a prompt from persona, context and query, and runs
// one blocking generation. Parameters are validated before the model is
// touched; an engine that is not Ready rejects instead of queuing behind
// the load.
func (e *Engine) Synthesize(ctx context.Context, req Request) Outcome {
	if detail := validateRequest(req, e.contextWindow); detail != "" {
		metrics.SynthesisRequests.WithLabelValues("invalid_parameters").Inc()
		return failure(apperrors.NewInvalidParametersError(detail))
	}

	switch e.State() {
	case StateReady, StateBusy:
		// Busy is fine: the request queues on the generation mutex.
	default:
		metrics.SynthesisRequests.WithLabelValues("model_not_ready").Inc()
		return failure(apperrors.NewModelNotReadyError(e.State().String()))
	}

	e.genMu.Lock()
	defer e.genMu.Unlock()

	// The model may have been closed while this request queued.
	if !e.state.CompareAndSwap(int32(StateReady), int32(StateBusy)) {
		metrics.SynthesisRequests.WithLabelValues("model_not_ready").Inc()
		return failure(apperrors.NewModelNotReadyError(e.State().String()))
	}
	defer e.state.CompareAndSwap(int32(StateBusy), int32(StateReady))

	prompt := buildPrompt(req)
	answer, err := e.model.Generate(ctx, prompt, req.Temperature, req.MaxTokens)
	if err != nil {
		e.log.WithError(err).Error("Generation failed", nil)
		metrics.SynthesisRequests.WithLabelValues("generation_error").Inc()
		return failure(apperrors.NewGenerationError(err))
	}

	metrics.SynthesisRequests.WithLabelValues("success").Inc()
	return Outcome{Answer: answer}
}

func validateRequest(req Request, contextWindow int) string {
	if req.Temperature < 0.0 || req.Temperature > 2.0 {
		return fmt.Sprintf("temperature must be within [0.0, 2.0], got %v", req.Temperature)
	}
	if req.MaxTokens <= 0 {
		return fmt.Sprintf("max_tokens must be positive, got %d", req.MaxTokens)
	}
	if contextWindow > 0 {
		promptTokens := len(buildPrompt(req)) / charsPerToken
		if req.MaxTokens > contextWindow-promptTokens {
			return fmt.Sprintf("max_tokens %d exceeds remaining window (%d of %d tokens left)",
				req.MaxTokens, contextWindow-promptTokens, contextWindow)
		}
	}
	return ""
}

// buildPrompt joins persona, search context and question into one prompt.
// An empty context is legal; the model is told nothing was found and
// asked for a best-effort answer.
func buildPrompt(req Request) string {
	var parts []string
	if req.Persona != "" {
		parts = append(parts, req.Persona)
	}
	if req.Context.Text != "" {
		parts = append(parts, "Search results:\n"+req.Context.Text)
	} else {
		parts = append(parts, "No search results were found for this query. Answer from general knowledge and say that no sources were available.")
	}
	parts = append(parts, "Question: "+req.QueryText, "Answer:")
	return strings.Join(parts, "\n\n")
}
