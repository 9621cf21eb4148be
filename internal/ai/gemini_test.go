package ai

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

// fakeGenerator replays scripted outcomes in order; the last one repeats.
type fakeGenerator struct {
	mu       sync.Mutex
	outcomes []func() (*genai.GenerateContentResponse, error)
	calls    []generateCall
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, generateCall{model: model, contents: contents, config: config})
	i := len(f.calls) - 1
	if i >= len(f.outcomes) {
		i = len(f.outcomes) - 1
	}
	return f.outcomes[i]()
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func reply(text string) func() (*genai.GenerateContentResponse, error) {
	return func() (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}}},
			},
		}, nil
	}
}

func failWith(code int) func() (*genai.GenerateContentResponse, error) {
	return func() (*genai.GenerateContentResponse, error) {
		return nil, genai.APIError{Code: code, Message: http.StatusText(code)}
	}
}

func newTestClient(gen *fakeGenerator, maxAttempts int) *GeminiClient {
	return newGeminiClient(gen, GeminiConfig{
		MaxAttempts: maxAttempts,
		Backoff: BackoffPolicy{
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
			Multiplier:      1,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestGeminiClient_ParseText(t *testing.T) {
	gen := &fakeGenerator{outcomes: []func() (*genai.GenerateContentResponse, error){
		reply(`[
			{"text": "2 + 2 = ?", "type": "single", "options": [{"label": "A", "text": "4"}], "correctAnswers": ["A"]},
			{"text": "Go is {{dropdown}}", "type": "dropdown",
			 "dropdowns": [{"label": "d1", "options": ["fast", "slow"], "correctAnswer": "fast"}]}
		]`),
	}}

	questions, err := newTestClient(gen, 3).ParseText(context.Background(), "What is 2 + 2?")
	require.NoError(t, err)
	require.Len(t, questions, 2)

	require.Len(t, gen.calls, 1)
	call := gen.calls[0]
	assert.Equal(t, "gemini-2.5-flash", call.model)
	assert.Equal(t, "application/json", call.config.ResponseMIMEType)
	assert.Same(t, questionListSchema, call.config.ResponseSchema)
	require.Len(t, call.contents, 1)
	assert.Equal(t, "user", call.contents[0].Role)
	assert.Contains(t, call.contents[0].Parts[0].Text, "What is 2 + 2?")

	assert.NotEmpty(t, questions[0].ID)
	assert.NotEqual(t, questions[0].ID, questions[1].ID)
	assert.Equal(t, []models.DropZone{}, questions[0].DropZones)
	assert.Equal(t, []models.Option{}, questions[1].Options)
	assert.Equal(t, []string{"fast"}, questions[1].CorrectAnswers)
}

func TestGeminiClient_ParseImage(t *testing.T) {
	gen := &fakeGenerator{outcomes: []func() (*genai.GenerateContentResponse, error){reply(`[]`)}}

	questions, err := newTestClient(gen, 1).ParseImage(context.Background(), "aGVsbG8=", "image/png")
	require.NoError(t, err)
	assert.Empty(t, questions)

	parts := gen.calls[0].contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte("hello"), parts[1].InlineData.Data)

	_, err = newTestClient(gen, 1).ParseImage(context.Background(), "not base64!", "image/png")
	assert.Error(t, err)
	assert.Equal(t, 1, gen.callCount())
}

func TestGeminiClient_EmptyResponse(t *testing.T) {
	gen := &fakeGenerator{outcomes: []func() (*genai.GenerateContentResponse, error){reply("  ")}}

	_, err := newTestClient(gen, 3).ParseText(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, 1, gen.callCount())
}

func TestGeminiClient_Retry(t *testing.T) {
	t.Run("transient errors are retried", func(t *testing.T) {
		gen := &fakeGenerator{outcomes: []func() (*genai.GenerateContentResponse, error){
			failWith(http.StatusServiceUnavailable),
			failWith(http.StatusServiceUnavailable),
			reply(`[{"text": "q", "type": "multiple"}]`),
		}}

		questions, err := newTestClient(gen, 3).GenerateFromTopic(context.Background(), "Go", 1)
		require.NoError(t, err)
		assert.Len(t, questions, 1)
		assert.Equal(t, 3, gen.callCount())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		gen := &fakeGenerator{outcomes: []func() (*genai.GenerateContentResponse, error){
			failWith(http.StatusTooManyRequests),
		}}

		_, err := newTestClient(gen, 2).ParseText(context.Background(), "x")
		var apiErr genai.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.Code)
		assert.Equal(t, 2, gen.callCount())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		gen := &fakeGenerator{outcomes: []func() (*genai.GenerateContentResponse, error){
			failWith(http.StatusBadRequest),
		}}

		_, err := newTestClient(gen, 3).ParseText(context.Background(), "x")
		assert.Error(t, err)
		assert.False(t, IsTransient(err))
		assert.Equal(t, 1, gen.callCount())
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		gen := &fakeGenerator{outcomes: []func() (*genai.GenerateContentResponse, error){
			func() (*genai.GenerateContentResponse, error) {
				cancel()
				return nil, genai.APIError{Code: http.StatusServiceUnavailable}
			},
		}}

		_, err := newTestClient(gen, 5).ParseText(ctx, "x")
		assert.Error(t, err)
		assert.Equal(t, 1, gen.callCount())
	})
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(genai.APIError{Code: http.StatusTooManyRequests}))
	assert.True(t, IsTransient(&genai.APIError{Code: http.StatusGatewayTimeout}))
	assert.False(t, IsTransient(genai.APIError{Code: http.StatusNotFound}))
	assert.False(t, IsTransient(context.Canceled))
}

func TestGeminiClient_MissingKey(t *testing.T) {
	c, err := NewGeminiClient(context.Background(), GeminiConfig{})
	require.NoError(t, err)
	_, err = c.ParseText(context.Background(), "x")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNormalize(t *testing.T) {
	raw := []rawQuestion{
		{ID: "keep", Text: "a", Type: "Single"},
		{ID: "keep", Text: "b", Type: "drag-drop"},
		{Text: "c", Type: "essay"},
		{Text: "d", Type: "dropdown", CorrectAnswers: []string{"given"},
			Dropdowns: []rawDropdown{{Options: []string{"given", "other"}, CorrectAnswer: "other"}}},
	}

	questions := normalize(raw)
	require.Len(t, questions, 4)
	assert.Equal(t, "keep", questions[0].ID)
	assert.NotEqual(t, "keep", questions[1].ID)
	assert.Equal(t, models.QuestionSingle, questions[0].Type)
	assert.Equal(t, models.QuestionDragDrop, questions[1].Type)
	assert.Equal(t, models.QuestionSingle, questions[2].Type)
	assert.Equal(t, []string{"given"}, questions[3].CorrectAnswers, "explicit answers win")
	assert.Equal(t, []string{}, questions[2].CorrectAnswers)
}
