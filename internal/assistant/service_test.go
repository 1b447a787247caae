// internal/assistant/service_test.go
package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "omnisearch/internal/common/errors"
	"omnisearch/internal/common/logger"
	"omnisearch/internal/fanout"
	"omnisearch/internal/sources"
	"omnisearch/internal/synthesis"
)

// ==========================
// Test Doubles
// ==========================

type stubClient struct {
	id    sources.SourceID
	items []sources.SourceItem
	err   error
}

func (s *stubClient) ID() sources.SourceID { return s.id }

func (s *stubClient) Fetch(ctx context.Context, q sources.Query) ([]sources.SourceItem, error) {
	return s.items, s.err
}

type echoModel struct {
	generateErr     error
	lastTemperature float64
	lastMaxTokens   int
}

func (m *echoModel) Load(ctx context.Context) error { return nil }

func (m *echoModel) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	m.lastTemperature = temperature
	m.lastMaxTokens = maxTokens
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return "Paris is the capital of France.", nil
}

func (m *echoModel) Close() error { return nil }

const testPersonas = `{"personas": [{"name": "assistant", "prompt": "You are helpful."}]}`

func newTestService(t *testing.T, clients []sources.Client, model synthesis.Model) *Service {
	t.Helper()
	log := logger.NewNoOpLogger()

	coordinator := fanout.New(clients, fanout.Config{PerSourceTimeout: time.Second}, log)
	engine := synthesis.NewEngine(model, 4096, log)
	require.NoError(t, engine.Load(context.Background()))

	personas, err := synthesis.ParsePersonas([]byte(testPersonas))
	require.NoError(t, err)

	return NewService(coordinator, synthesis.NewBuilder(nil), engine, personas, Defaults{
		ContextBudget: 6000,
		Temperature:   0.7,
		MaxTokens:     128,
	}, nil, log)
}

// wikipediaPlusFailures builds the canonical partial-failure fixture:
// Wikipedia succeeds, every other source fails with a transport error.
func wikipediaPlusFailures() []sources.Client {
	clients := make([]sources.Client, 0, len(sources.All))
	for _, id := range sources.All {
		if id == sources.SourceWikipedia {
			clients = append(clients, &stubClient{
				id:    id,
				items: []sources.SourceItem{{Title: "France", Snippet: "Paris is the capital of France."}},
			})
			continue
		}
		clients = append(clients, &stubClient{id: id, err: errors.New("stub")})
	}
	return clients
}

// ==========================
// End-to-End Tests
// ==========================

func TestRunQuery_OneSuccessFifteenFailures(t *testing.T) {
	service := newTestService(t, wikipediaPlusFailures(), &echoModel{})

	result, err := service.RunQuery(context.Background(), RunRequest{Text: "capital of France"})
	require.NoError(t, err)

	require.Len(t, result.Aggregate.Results, len(sources.All))
	assert.Equal(t, []sources.SourceID{sources.SourceWikipedia}, result.Aggregate.Succeeded())

	failures := 0
	for id, res := range result.Aggregate.Results {
		if id == sources.SourceWikipedia {
			assert.Equal(t, sources.StatusSuccess, res.Status)
			continue
		}
		assert.Equal(t, sources.StatusFailure, res.Status, "source %s", id)
		assert.Equal(t, apperrors.CodeTransport, res.ErrorKind, "source %s", id)
		failures++
	}
	assert.Equal(t, len(sources.All)-1, failures)

	assert.Contains(t, result.Context.Text, "[wikipedia]")
	assert.Contains(t, result.Context.Text, "Paris")

	require.True(t, result.Answer.OK())
	assert.NotEmpty(t, result.Answer.Answer)
	assert.NotEmpty(t, result.RequestID)
}

func TestRunQuery_SynthesisFailureStillDeliversAggregate(t *testing.T) {
	service := newTestService(t, wikipediaPlusFailures(), &echoModel{generateErr: errors.New("oom")})

	result, err := service.RunQuery(context.Background(), RunRequest{Text: "capital of France"})
	require.NoError(t, err)

	assert.False(t, result.Answer.OK())
	assert.Equal(t, apperrors.CodeGenerationError, result.Answer.ErrorKind)
	require.NotNil(t, result.Aggregate)
	assert.Len(t, result.Aggregate.Results, len(sources.All))
}

func TestRunQuery_AllSourcesDownStillAnswers(t *testing.T) {
	clients := make([]sources.Client, 0, len(sources.All))
	for _, id := range sources.All {
		clients = append(clients, &stubClient{id: id, err: errors.New("stub")})
	}
	service := newTestService(t, clients, &echoModel{})

	result, err := service.RunQuery(context.Background(), RunRequest{Text: "anything"})
	require.NoError(t, err)

	assert.Empty(t, result.Context.Text)
	assert.True(t, result.Answer.OK(), "an empty context must still produce an answer")
}

func TestRunQuery_GenerationParameterDefaults(t *testing.T) {
	t.Run("unset parameters fall back to configured defaults", func(t *testing.T) {
		model := &echoModel{}
		service := newTestService(t, wikipediaPlusFailures(), model)

		_, err := service.RunQuery(context.Background(), RunRequest{Text: "capital of France"})
		require.NoError(t, err)

		assert.Equal(t, 0.7, model.lastTemperature)
		assert.Equal(t, 128, model.lastMaxTokens)
	})

	t.Run("explicit zero temperature reaches the model", func(t *testing.T) {
		model := &echoModel{}
		service := newTestService(t, wikipediaPlusFailures(), model)

		zero := 0.0
		tokens := 32
		_, err := service.RunQuery(context.Background(), RunRequest{
			Text:        "capital of France",
			Temperature: &zero,
			MaxTokens:   &tokens,
		})
		require.NoError(t, err)

		assert.Equal(t, 0.0, model.lastTemperature, "greedy decoding must not be replaced by the default")
		assert.Equal(t, 32, model.lastMaxTokens)
	})
}

func TestRunQuery_UnknownPersona(t *testing.T) {
	service := newTestService(t, wikipediaPlusFailures(), &echoModel{})

	_, err := service.RunQuery(context.Background(), RunRequest{Text: "q", Persona: "nonexistent"})
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "persona"))
}
