// Package advisory wraps the external generative capabilities behind one
// adapter: reply generation, diagnosis analysis, translation, and the
// weather notification composer. The concrete LLM vendor is swappable via
// the provider switch in model.go; every failure mode of an untrusted
// external call is handled here, at the boundary.
package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/krishi-ai/krishi-go/internal/metrics"
	"github.com/krishi-ai/krishi-go/internal/models"
	"github.com/tmc/langchaingo/llms"
)

// Prediction is one classifier output row.
type Prediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// Diagnosis is the envelope for a vision-analysis call: both classifier
// prediction lists, the raw image, and the target language.
type Diagnosis struct {
	Disease   []Prediction
	Pest      []Prediction
	Image     []byte
	ImageMIME string
	Language  string
}

// Client is the advisory adapter over a langchaingo model.
type Client struct {
	llm       llms.Model
	modelName string
	logger    *slog.Logger
	metrics   *metrics.Collector
}

// NewWithModel wraps an existing model. Used by NewClient and by tests
// that inject a scripted model.
func NewWithModel(m llms.Model, modelName string, logger *slog.Logger, collector *metrics.Collector) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{llm: m, modelName: modelName, logger: logger, metrics: collector}
}

// ModelName returns the underlying LLM model name.
func (c *Client) ModelName() string {
	return c.modelName
}

// GenerateReply produces a single assistant utterance from the ordered
// prior turns. The model is instructed to respond only in the requested
// language and to be concise.
func (c *Client) GenerateReply(ctx context.Context, history []models.Turn, language string) (string, error) {
	prompt := chatPrompt(history, language)

	start := time.Now()
	reply, err := c.generate(ctx, llms.TextPart(prompt))
	c.record(metrics.OpLLMGenerate, start)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return reply, nil
}

// AnalyseDiagnosis produces a farmer-facing diagnosis and treatment
// recommendation from classifier predictions and the input image. Empty
// prediction lists degrade to an image-only analysis rather than failing.
func (c *Client) AnalyseDiagnosis(ctx context.Context, diag Diagnosis) (string, error) {
	prompt := diagnosisPrompt(diag)

	parts := []llms.ContentPart{llms.TextPart(prompt)}
	if len(diag.Image) > 0 {
		mime := diag.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, llms.BinaryPart(mime, diag.Image))
	}

	start := time.Now()
	analysis, err := c.generate(ctx, parts...)
	c.record(metrics.OpVisionAnalyse, start)
	if err != nil {
		return "", fmt.Errorf("analyse diagnosis: %w", err)
	}
	return analysis, nil
}

// NotificationMessage composes a push-notification body from weather
// alert data in the farmer's language.
func (c *Client) NotificationMessage(ctx context.Context, alert models.WeatherAlert, language string) (string, error) {
	prompt := notificationPrompt(alert, language)

	start := time.Now()
	msg, err := c.generate(ctx, llms.TextPart(prompt))
	c.record(metrics.OpLLMGenerate, start)
	if err != nil {
		return "", fmt.Errorf("notification message: %w", err)
	}
	return msg, nil
}

// generate runs one human-role content request and returns the first choice.
func (c *Client) generate(ctx context.Context, parts ...llms.ContentPart) (string, error) {
	resp, err := c.llm.GenerateContent(ctx, []llms.MessageContent{
		{Role: llms.ChatMessageTypeHuman, Parts: parts},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return resp.Choices[0].Content, nil
}

func (c *Client) record(op string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordTiming(op, time.Since(start))
	}
}
