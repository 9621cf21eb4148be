package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultMaxAttempts = 3
)

var (
	ErrMissingAPIKey = errors.New("gemini api key is not configured")
	ErrEmptyResponse = errors.New("gemini returned no content")
)

// Extractor turns free text, images or a topic into questions. Every returned
// question has an id and non-nil lists.
type Extractor interface {
	ParseText(ctx context.Context, text string) ([]models.Question, error)
	ParseImage(ctx context.Context, base64Data, mimeType string) ([]models.Question, error)
	GenerateFromTopic(ctx context.Context, topic string, count int) ([]models.Question, error)
}

// contentGenerator is the slice of the genai client the extractor calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxAttempts int
	Backoff     BackoffPolicy
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// GeminiClient asks Gemini for questions as JSON constrained by a response schema.
type GeminiClient struct {
	models      contentGenerator
	model       string
	maxAttempts int
	backoff     BackoffPolicy
	logger      *slog.Logger
}

// NewGeminiClient builds the client. Without an API key every call fails with
// ErrMissingAPIKey so the rest of the service can still run.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return newGeminiClient(nil, cfg), nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newGeminiClient(client.Models, cfg), nil
}

func newGeminiClient(generator contentGenerator, cfg GeminiConfig) *GeminiClient {
	c := &GeminiClient{
		models:      generator,
		model:       cfg.Model,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		logger:      cfg.Logger,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.backoff == (BackoffPolicy{}) {
		c.backoff = DefaultBackoffPolicy()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *GeminiClient) ParseText(ctx context.Context, text string) ([]models.Question, error) {
	return c.generate(ctx, "parse_text", []*genai.Part{{Text: textPrompt(text)}})
}

func (c *GeminiClient) ParseImage(ctx context.Context, base64Data, mimeType string) ([]models.Question, error) {
	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return c.generate(ctx, "parse_image", []*genai.Part{
		{Text: imagePrompt},
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
	})
}

func (c *GeminiClient) GenerateFromTopic(ctx context.Context, topic string, count int) ([]models.Question, error) {
	return c.generate(ctx, "generate_topic", []*genai.Part{{Text: topicPrompt(topic, count)}})
}

func (c *GeminiClient) generate(ctx context.Context, operation string, parts []*genai.Part) ([]models.Question, error) {
	if c.models == nil {
		return nil, ErrMissingAPIKey
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   questionListSchema,
	}

	var text string
	call := func() error {
		resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			if IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if text, err = responseText(resp); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	notify := func(err error, delay time.Duration) {
		c.logger.Warn("Transient gemini failure, retrying",
			"operation", operation,
			"delay", delay,
			"error", err)
	}
	if err := backoff.RetryNotify(call, c.backoff.newBackOff(ctx, c.maxAttempts), notify); err != nil {
		return nil, err
	}

	var raw []rawQuestion
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	questions := normalize(raw)

	c.logger.Info("Gemini extraction completed",
		"operation", operation,
		"model", c.model,
		"questions", len(questions))
	return questions, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
